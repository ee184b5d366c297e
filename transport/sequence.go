package transport

import "sync/atomic"

// sequence hands out request ids for one session: 0, 1, 2, ...
// Every call returns a distinct value, no locking required.
type sequence struct {
	n atomic.Uint64
}

func (s *sequence) next() uint64 {
	return s.n.Add(1) - 1
}
