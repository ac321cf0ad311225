// Package model holds the orchestrator's plain-data application state: the
// entity types that make up AppState and their persisted form. Nothing in
// this package performs I/O.
package model

// ProjectID, WorkspaceID and WorkspaceThreadID are opaque dense identifiers,
// scoped by entity kind. They are never reused within a process lifetime.
type ProjectID uint64

type WorkspaceID uint64

type WorkspaceThreadID uint64

// IDAllocator hands out strictly increasing dense ids for one entity kind.
// Not safe for concurrent use; callers serialize access the same way they
// serialize access to the reducer itself.
type IDAllocator struct {
	next uint64
}

// NewIDAllocator returns an allocator whose first Next() is 1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: 1}
}

// Next returns the next id and advances the allocator.
func (a *IDAllocator) Next() uint64 {
	id := a.next
	a.next++
	return id
}

// Peek returns the id Next() would return without advancing the allocator.
func (a *IDAllocator) Peek() uint64 {
	return a.next
}

// Restore sets the allocator so that Next() will not return any id below n.
// Used when reloading persisted state: the allocator must strictly exceed
// every id ever allocated in the reloaded snapshot.
func (a *IDAllocator) Restore(n uint64) {
	if n > a.next {
		a.next = n
	}
}
