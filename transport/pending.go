package transport

import (
	"encoding/json"
	"fmt"
	"sync"
)

// completion is the single value delivered to a waiting caller.
// Exactly one of result or err is meaningful.
type completion struct {
	result json.RawMessage
	err    error
}

// pendingTable maps request ids to the channel their caller waits on.
//
// Each channel has capacity one and is written at most once, by whoever
// removes the entry from the map. Writers therefore never block, and a
// caller is only ever woken for its own id.
type pendingTable struct {
	mu      sync.Mutex
	entries map[uint64]chan completion
	closed  bool
	reason  error
}

func newPendingTable() *pendingTable {
	return &pendingTable{entries: make(map[uint64]chan completion)}
}

// register adds an entry for id. Once the table has been drained it refuses
// new entries so nothing can be left waiting on a dead session.
func (p *pendingTable) register(id uint64) (<-chan completion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, &ClosedError{Reason: p.reason}
	}
	if _, dup := p.entries[id]; dup {
		panic(fmt.Sprintf("transport: duplicate pending id %d", id))
	}
	ch := make(chan completion, 1)
	p.entries[id] = ch
	return ch, nil
}

// resolve removes the entry for id and fulfils it with c. It reports false
// for unknown ids (duplicate or late replies), which are dropped.
func (p *pendingTable) resolve(id uint64, c completion) bool {
	p.mu.Lock()
	ch, ok := p.entries[id]
	if ok {
		delete(p.entries, id)
	}
	p.mu.Unlock()

	if ok {
		ch <- c
	}
	return ok
}

// remove drops the entry for id without fulfilling it.
func (p *pendingTable) remove(id uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.entries[id]
	delete(p.entries, id)
	return ok
}

// drainAll empties the table, closes it to new entries and fulfils every
// removed entry with a ClosedError carrying reason. The fulfilled channels
// are returned. Calling it again returns an empty slice.
func (p *pendingTable) drainAll(reason error) []chan completion {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		p.reason = reason
	}
	drained := make([]chan completion, 0, len(p.entries))
	for id, ch := range p.entries {
		drained = append(drained, ch)
		delete(p.entries, id)
	}
	p.mu.Unlock()

	for _, ch := range drained {
		ch <- completion{err: &ClosedError{Reason: reason}}
	}
	return drained
}

func (p *pendingTable) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
