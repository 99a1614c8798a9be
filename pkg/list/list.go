// Package list implements the doubly-linked list backing each cache
// shard's LRU order: a list.Entry carries exactly the (key, value) pair
// a buffer shard evicts by, so eviction never needs a second index
// lookup to find out what it just dropped.
package list

import "revtree/pkg/page"

// Entry is one cache slot's payload: the key a shard's index looks it
// up by, alongside the cached value itself.
type Entry struct {
	Key   page.Key
	Value any
}

// List is an LRU order: PushTail marks an entry most-recently-used,
// PeekHead finds the next eviction candidate.
type List struct {
	head *Link
	tail *Link
}

// NewList builds an empty list.
func NewList() *List {
	return &List{}
}

// PeekHead returns the least-recently-used link, or nil if empty.
func (list *List) PeekHead() *Link {
	return list.head
}

// PushTail marks value as most-recently-used, appending it to the tail.
// Returns the new link so the caller can index it for O(1) removal.
func (list *List) PushTail(value Entry) *Link {
	newlink := &Link{list: list, prev: list.tail, value: value}
	if list.tail != nil {
		list.tail.next = newlink
	}
	list.tail = newlink
	if list.head == nil {
		list.head = newlink
	}
	return newlink
}

// Link is one node in a List.
type Link struct {
	list  *List
	prev  *Link
	next  *Link
	value Entry
}

// GetValue returns the link's entry.
func (link *Link) GetValue() Entry {
	return link.value
}

// PopSelf removes link from its list.
//
// Cases to consider:
//   - link is the only link in the list
//   - link is the tail
//   - link is the head
//   - link is in the middle of the list
func (link *Link) PopSelf() {
	if link.prev == nil && link.next == nil {
		link.list.head = nil
		link.list.tail = nil
		link.list = nil
	} else if link.prev == nil {
		link.next.prev = nil
		link.list.head = link.next
		link.list = nil
		link.next = nil
	} else if link.next == nil {
		link.prev.next = nil
		link.list.tail = link.prev
		link.list = nil
		link.prev = nil
	} else {
		link.prev.next = link.next
		link.next.prev = link.prev
		link.list = nil
		link.next = nil
		link.prev = nil
	}
}
