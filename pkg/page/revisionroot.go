package page

// RevisionRootPage is the per-revision entry point: it holds the start
// reference into the record trie and into each secondary-index subtree.
type RevisionRootPage struct {
	Revision        int64
	RecordTrie      *Reference
	NameTrie        *Reference
	PathTrie        *Reference
	CasTrie         *Reference
	PathSummaryTrie *Reference
}

func (p *RevisionRootPage) Kind() Kind { return RevisionRootPageKind }

// StartReference returns the start reference for the given trie kind,
// rooted at this revision.
func (p *RevisionRootPage) StartReference(kind Kind) *Reference {
	switch kind {
	case RecordPageKind:
		return p.RecordTrie
	case NamePageKind:
		return p.NameTrie
	case PathPageKind:
		return p.PathTrie
	case CasPageKind:
		return p.CasTrie
	case PathSummaryPageKind:
		return p.PathSummaryTrie
	default:
		return nil
	}
}
