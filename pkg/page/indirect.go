package page

// IndirectPage is a fixed-fan-out vector of page references forming one
// level of a per-kind trie.
type IndirectPage struct {
	References []*Reference
}

// NewIndirectPage creates an indirect page with INPReferenceCount empty
// slots.
func NewIndirectPage() *IndirectPage {
	refs := make([]*Reference, INPReferenceCount)
	for i := range refs {
		refs[i] = &Reference{PersistentKey: NullID}
	}
	return &IndirectPage{References: refs}
}

func (p *IndirectPage) Kind() Kind { return IndirectPageKind }

// Reference returns the child reference at offset, or nil with ok=false
// if offset is out of bounds (the navigator turns this into an IO
// "key too large" error).
func (p *IndirectPage) Reference(offset int64) (*Reference, bool) {
	if offset < 0 || offset >= int64(len(p.References)) {
		return nil, false
	}
	return p.References[offset], true
}
