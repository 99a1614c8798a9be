package txlog

import "revtree/pkg/page"

// WriterPageLog is the in-memory view a sibling write transaction
// exposes directly to a read transaction: an in-process map from log
// key to not-yet-persisted page, queried only, never mutated, by the
// read path.
type WriterPageLog interface {
	PageAt(logKey page.LogKey) (page.Page, bool)
}

// InMemoryWriterLog is a trivial WriterPageLog backed by a plain map,
// the shape a write transaction's own log would take.
type InMemoryWriterLog struct {
	entries map[page.LogKey]page.Page
}

func NewInMemoryWriterLog() *InMemoryWriterLog {
	return &InMemoryWriterLog{entries: make(map[page.LogKey]page.Page)}
}

func (l *InMemoryWriterLog) Put(logKey page.LogKey, p page.Page) {
	l.entries[logKey] = p
}

func (l *InMemoryWriterLog) PageAt(logKey page.LogKey) (page.Page, bool) {
	p, ok := l.entries[logKey]
	return p, ok
}
