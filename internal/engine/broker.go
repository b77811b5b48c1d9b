package engine

import (
	"sync"

	"github.com/seantiz/algolab/internal/model"
)

// subscriberBufferSize is the channel buffer for each record subscriber.
// Records are dropped if a subscriber falls this far behind.
const subscriberBufferSize = 64

// RecordBroker fans history records out to live subscribers.
// It is safe for concurrent use.
type RecordBroker struct {
	mu     sync.Mutex
	subs   map[int]chan model.HistoryRecord
	nextID int
	closed bool
}

// NewRecordBroker creates a broker with no subscribers.
func NewRecordBroker() *RecordBroker {
	return &RecordBroker{subs: make(map[int]chan model.HistoryRecord)}
}

// Subscribe returns a channel of records published from now on and an
// unsubscribe function. After Close the returned channel is already closed.
func (b *RecordBroker) Subscribe() (<-chan model.HistoryRecord, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan model.HistoryRecord, subscriberBufferSize)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
}

// Publish delivers rec to every subscriber with buffer space.
func (b *RecordBroker) Publish(rec model.HistoryRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- rec:
		default:
			// Slow subscriber; never block an execution on it.
		}
	}
}

// Subscribers returns the number of live subscribers.
func (b *RecordBroker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close closes every subscriber channel. Later Subscribe calls get a closed
// channel and Publish becomes a no-op.
func (b *RecordBroker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}
