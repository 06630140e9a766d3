package events

import (
	"fmt"
	"sync"

	"github.com/utakatalp/virtual-football/internal/telemetry"
)

// DefaultQueueSize is the buffer of a Worker created with size <= 0.
const DefaultQueueSize = 1024

// Worker moves a slow handler off the publisher's goroutine. Events are
// queued and handled in order by a single goroutine. When the queue is full
// the event is dropped and onDrop is called; the publisher never waits.
type Worker struct {
	name   string
	h      Handler
	onDrop func()

	mu     sync.RWMutex
	closed bool
	queue  chan Event
	done   chan struct{}
}

// NewWorker starts a worker around h. onDrop may be nil.
func NewWorker(name string, size int, h Handler, onDrop func()) *Worker {
	if size <= 0 {
		size = DefaultQueueSize
	}
	w := &Worker{
		name:   name,
		h:      h,
		onDrop: onDrop,
		queue:  make(chan Event, size),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

// Handle enqueues e. It is a Handler, so it can be subscribed directly.
func (w *Worker) Handle(e Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.drop()
		return fmt.Errorf("%s: stopped, dropped %s", w.name, e.Type)
	}
	select {
	case w.queue <- e:
		return nil
	default:
		w.drop()
		return fmt.Errorf("%s: queue full, dropped %s", w.name, e.Type)
	}
}

func (w *Worker) drop() {
	if w.onDrop != nil {
		w.onDrop()
	}
}

func (w *Worker) run() {
	defer close(w.done)
	for e := range w.queue {
		if err := w.h(e); err != nil {
			telemetry.Warnf("%s: %s for session %s: %v", w.name, e.Type, e.SessionID, err)
		}
	}
}

// Pending is the number of queued events not yet handled.
func (w *Worker) Pending() int {
	return len(w.queue)
}

// Close stops accepting events and waits for the queue to drain.
func (w *Worker) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	<-w.done
}
