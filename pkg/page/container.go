package page

// Container is a materialised leaf record page plus the empty sentinel.
// A Container is value-equal to Empty iff the leaf does not exist in
// this revision.
type Container struct {
	Fragment *RecordPage
}

// Empty is the sentinel container denoting "no such leaf page".
var Empty = Container{}

// IsEmpty reports whether c carries no fragment.
func (c Container) IsEmpty() bool {
	return c.Fragment == nil
}

// Record returns the record stored at key in this container's fragment,
// filtering out the deleted sentinel.
func (c Container) Record(key int64) (Record, bool) {
	if c.IsEmpty() {
		return Record{}, false
	}
	r, ok := c.Fragment.Get(key)
	if !ok || r.Deleted {
		return Record{}, false
	}
	return r, true
}
