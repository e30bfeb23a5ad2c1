package synth

import (
	"errors"
	"sync/atomic"
)

var ErrQueueFull = errors.New("synth: note event queue full")

// queueSize must be a power of two.
const queueSize = 64

type eventKind uint8

const (
	eventNoteOn eventKind = iota
	eventNoteOff
)

type noteEvent struct {
	kind eventKind
	time float64
}

// eventQueue is a bounded single-producer/single-consumer ring. The input
// goroutine is the only caller of push, the render goroutine the only caller
// of pop. head and tail only ever grow; the atomic store of each publishes
// the slot written before it.
type eventQueue struct {
	head  atomic.Uint64 // next slot to pop, owned by the consumer
	tail  atomic.Uint64 // next slot to push, owned by the producer
	slots [queueSize]noteEvent
}

func (q *eventQueue) push(ev noteEvent) error {
	tail := q.tail.Load()
	if tail-q.head.Load() == queueSize {
		return ErrQueueFull
	}
	q.slots[tail&(queueSize-1)] = ev
	q.tail.Store(tail + 1)
	return nil
}

func (q *eventQueue) pop() (noteEvent, bool) {
	head := q.head.Load()
	if head == q.tail.Load() {
		return noteEvent{}, false
	}
	ev := q.slots[head&(queueSize-1)]
	q.head.Store(head + 1)
	return ev, true
}

