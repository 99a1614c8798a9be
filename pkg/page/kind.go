package page

// Kind is the closed set of page variants governing which trie shape
// and which start reference the navigator uses.
type Kind int

const (
	RecordPageKind Kind = iota
	NamePageKind
	PathPageKind
	CasPageKind
	PathSummaryPageKind
	UberPageKind

	// IndirectPageKind is not part of the closed set that governs trie
	// choice — every kind's trie is built from indirect pages — but it
	// still needs a tag for the reader's dispatch table.
	IndirectPageKind

	// RevisionRootPageKind tags revision-root pages, the leaves of the
	// uber page's trie, for the reader's decode dispatch.
	RevisionRootPageKind
)

func (k Kind) String() string {
	switch k {
	case RecordPageKind:
		return "RECORDPAGE"
	case NamePageKind:
		return "NAMEPAGE"
	case PathPageKind:
		return "PATHPAGE"
	case CasPageKind:
		return "CASPAGE"
	case PathSummaryPageKind:
		return "PATHSUMMARYPAGE"
	case UberPageKind:
		return "UBERPAGE"
	case IndirectPageKind:
		return "INDIRECTPAGE"
	case RevisionRootPageKind:
		return "REVISIONROOTPAGE"
	default:
		return "UNKNOWN"
	}
}

// Page is the tagged-variant interface every page type implements.
type Page interface {
	Kind() Kind
}

// NamedPage is a page reachable from the revision root by name that
// itself roots a secondary-index trie selected by index slot.
type NamedPage interface {
	Page
	IndirectReference(index int64) *Reference
}
