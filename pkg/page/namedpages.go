package page

// NamePage holds the name dictionary and roots the per-index-slot name
// tries. Alongside the decoded name, it keeps the undecoded raw bytes
// and a reference count for each dictionary entry.
type NamePage struct {
	indirectRefs []*Reference
	names        map[int64]string
	rawNames     map[int64][]byte
	counts       map[int64]int64
}

func NewNamePage() *NamePage {
	return &NamePage{
		indirectRefs: make([]*Reference, 0),
		names:        make(map[int64]string),
		rawNames:     make(map[int64][]byte),
		counts:       make(map[int64]int64),
	}
}

func (p *NamePage) Kind() Kind { return NamePageKind }

func (p *NamePage) IndirectReference(index int64) *Reference {
	if index < 0 || index >= int64(len(p.indirectRefs)) {
		return nil
	}
	return p.indirectRefs[index]
}

func (p *NamePage) SetIndirectReference(index int64, ref *Reference) {
	for int64(len(p.indirectRefs)) <= index {
		p.indirectRefs = append(p.indirectRefs, &Reference{PersistentKey: NullID})
	}
	p.indirectRefs[index] = ref
}

// Name returns the decoded name stored at key.
func (p *NamePage) Name(key int64) (string, bool) {
	n, ok := p.names[key]
	return n, ok
}

// RawName returns the undecoded byte form of the name dictionary entry
// at key.
func (p *NamePage) RawName(key int64) ([]byte, bool) {
	n, ok := p.rawNames[key]
	return n, ok
}

// NameCount returns the reference count the name dictionary keeps for
// key.
func (p *NamePage) NameCount(key int64) int64 {
	return p.counts[key]
}

// SetName records a decoded/raw name pair and its reference count.
func (p *NamePage) SetName(key int64, name string, raw []byte, count int64) {
	p.names[key] = name
	p.rawNames[key] = raw
	p.counts[key] = count
}

// PathPage roots the per-index-slot path tries.
type PathPage struct {
	indirectRefs []*Reference
}

func NewPathPage() *PathPage { return &PathPage{indirectRefs: make([]*Reference, 0)} }

func (p *PathPage) Kind() Kind { return PathPageKind }

func (p *PathPage) IndirectReference(index int64) *Reference {
	if index < 0 || index >= int64(len(p.indirectRefs)) {
		return nil
	}
	return p.indirectRefs[index]
}

func (p *PathPage) SetIndirectReference(index int64, ref *Reference) {
	for int64(len(p.indirectRefs)) <= index {
		p.indirectRefs = append(p.indirectRefs, &Reference{PersistentKey: NullID})
	}
	p.indirectRefs[index] = ref
}

// CasPage roots the per-index-slot content-and-structure (CAS) tries.
type CasPage struct {
	indirectRefs []*Reference
}

func NewCasPage() *CasPage { return &CasPage{indirectRefs: make([]*Reference, 0)} }

func (p *CasPage) Kind() Kind { return CasPageKind }

func (p *CasPage) IndirectReference(index int64) *Reference {
	if index < 0 || index >= int64(len(p.indirectRefs)) {
		return nil
	}
	return p.indirectRefs[index]
}

func (p *CasPage) SetIndirectReference(index int64, ref *Reference) {
	for int64(len(p.indirectRefs)) <= index {
		p.indirectRefs = append(p.indirectRefs, &Reference{PersistentKey: NullID})
	}
	p.indirectRefs[index] = ref
}

// PathSummaryPage roots the per-index-slot path-summary tries, keeping
// the depth recorded for each node alongside its reference.
type PathSummaryPage struct {
	indirectRefs []*Reference
	levels       map[int64]int64
}

func NewPathSummaryPage() *PathSummaryPage {
	return &PathSummaryPage{indirectRefs: make([]*Reference, 0), levels: make(map[int64]int64)}
}

func (p *PathSummaryPage) Kind() Kind { return PathSummaryPageKind }

func (p *PathSummaryPage) IndirectReference(index int64) *Reference {
	if index < 0 || index >= int64(len(p.indirectRefs)) {
		return nil
	}
	return p.indirectRefs[index]
}

func (p *PathSummaryPage) SetIndirectReference(index int64, ref *Reference) {
	for int64(len(p.indirectRefs)) <= index {
		p.indirectRefs = append(p.indirectRefs, &Reference{PersistentKey: NullID})
	}
	p.indirectRefs[index] = ref
}

// Level returns the depth recorded for a path-summary node key.
func (p *PathSummaryPage) Level(key int64) (int64, bool) {
	lvl, ok := p.levels[key]
	return lvl, ok
}

// SetLevel records the depth for a path-summary node key.
func (p *PathSummaryPage) SetLevel(key int64, level int64) {
	p.levels[key] = level
}
