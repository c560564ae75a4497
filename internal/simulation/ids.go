package simulation

import "sync/atomic"

// IDAllocator hands out node identifiers.
type IDAllocator interface {
	Next() uint64
}

// SequentialIDs allocates increasing identifiers starting at 1.
// It is safe for concurrent use; the zero value is ready.
type SequentialIDs struct {
	last atomic.Uint64
}

// Next returns the next identifier.
func (s *SequentialIDs) Next() uint64 {
	return s.last.Add(1)
}
