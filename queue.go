package svo

import (
	"sync"
	"sync/atomic"
)

// OpKind tags a queued Mutation.
type OpKind uint8

const (
	// OpInsert overwrites or creates the cell at Pos with Value.
	OpInsert OpKind = iota + 1
	// OpRemove deletes the cell at Pos.
	OpRemove
)

func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpRemove:
		return "remove"
	}
	return "unknown"
}

// Mutation is a pending change. It is never modified after enqueueing.
type Mutation[T any] struct {
	Kind  OpKind
	Pos   Coord
	Value T
}

type queueNode[T any] struct {
	next     atomic.Pointer[queueNode[T]]
	mutation Mutation[T]
}

// MutationQueue is an unbounded multi-producer, single-consumer FIFO.
// Enqueue never blocks and never takes a lock; Drain hands each mutation
// to exactly one consumer.
//
// A producer that has swapped itself in as head but not yet linked its
// predecessor makes the queue look empty from that point on; the
// mutation, and everything queued behind it, is seen by the next Drain.
type MutationQueue[T any] struct {
	head    atomic.Pointer[queueNode[T]]
	tail    *queueNode[T]
	pending atomic.Int64
	drainMu sync.Mutex
}

// NewMutationQueue returns an empty queue.
func NewMutationQueue[T any]() *MutationQueue[T] {
	stub := &queueNode[T]{}
	q := &MutationQueue[T]{tail: stub}
	q.head.Store(stub)
	return q
}

// Enqueue appends m. Safe for any number of concurrent callers.
func (q *MutationQueue[T]) Enqueue(m Mutation[T]) {
	n := &queueNode[T]{mutation: m}
	q.pending.Add(1)
	prev := q.head.Swap(n)
	prev.next.Store(n)
}

// Insert enqueues an OpInsert.
func (q *MutationQueue[T]) Insert(pos Coord, value T) {
	q.Enqueue(Mutation[T]{Kind: OpInsert, Pos: pos, Value: value})
}

// Remove enqueues an OpRemove.
func (q *MutationQueue[T]) Remove(pos Coord) {
	q.Enqueue(Mutation[T]{Kind: OpRemove, Pos: pos})
}

// Len is the number of mutations enqueued but not yet drained.
func (q *MutationQueue[T]) Len() int {
	return int(q.pending.Load())
}

// Drain passes every visible mutation to f in enqueue order and returns
// how many were consumed. Concurrent Drain calls are serialized.
func (q *MutationQueue[T]) Drain(f func(Mutation[T])) int {
	q.drainMu.Lock()
	defer q.drainMu.Unlock()
	n := 0
	for {
		m, ok := q.dequeue()
		if !ok {
			return n
		}
		f(m)
		n++
	}
}

func (q *MutationQueue[T]) dequeue() (Mutation[T], bool) {
	next := q.tail.next.Load()
	if next == nil {
		return Mutation[T]{}, false
	}
	m := next.mutation
	next.mutation = Mutation[T]{}
	q.tail = next
	q.pending.Add(-1)
	return m, true
}
