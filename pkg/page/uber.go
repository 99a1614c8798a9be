package page

// UberPage is the durable root of the store. It locates revision roots
// through RevisionTrie and carries, per page kind, the array of
// per-level shift exponents that defines that kind's trie height and
// fan-out.
type UberPage struct {
	// RevisionTrie is the start reference for navigating to a revision
	// root page by revision number (navigated with Kind=UberPageKind,
	// Index=-1).
	RevisionTrie *Reference
	Shifts       map[Kind][]uint
}

func (p *UberPage) Kind() Kind { return UberPageKind }

// ShiftsFor returns the per-level shift exponents for kind, and the
// trie height (its length).
func (p *UberPage) ShiftsFor(kind Kind) []uint {
	return p.Shifts[kind]
}
