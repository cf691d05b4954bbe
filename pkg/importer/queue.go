package importer

import (
	"sync"
	"time"
)

// PacingQueue keeps fast-arriving status labels readable by holding each
// one on display for a minimum dwell time. Numeric progress never goes
// through it; only labels do.
type PacingQueue struct {
	dwell time.Duration

	mu         sync.Mutex
	items      []string
	displayed  string
	processing bool
}

func NewPacingQueue(dwell time.Duration) *PacingQueue {
	return &PacingQueue{dwell: dwell}
}

// Enqueue appends a label unless it repeats the queue tail, or repeats
// the displayed label while the queue is empty. Rapid duplicate
// enqueues collapse into one.
func (q *PacingQueue) Enqueue(label string) {
	if label == "" {
		return
	}

	q.mu.Lock()

	if len(q.items) == 0 && q.displayed == label {
		q.mu.Unlock()
		return
	}
	if len(q.items) > 0 && q.items[len(q.items)-1] == label {
		q.mu.Unlock()
		return
	}

	q.items = append(q.items, label)
	start := !q.processing
	if start {
		q.processing = true
	}
	q.mu.Unlock()

	if start {
		go q.run()
	}
}

// SetImmediate shows a label right away, skipping the dwell rule. Used
// for high-frequency "processing item X of Y" updates.
func (q *PacingQueue) SetImmediate(label string) {
	q.mu.Lock()
	q.displayed = label
	q.mu.Unlock()
}

// run is the single pacing loop. Only one runs at a time per queue; the
// processing flag guards re-entry.
func (q *PacingQueue) run() {
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.processing = false
			q.mu.Unlock()
			return
		}
		q.displayed = q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		time.Sleep(q.dwell)
	}
}

// Displayed returns the label currently on display.
func (q *PacingQueue) Displayed() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.displayed
}

// Reset clears the queue and the displayed label. A pacing loop in
// flight drains out on its next iteration.
func (q *PacingQueue) Reset() {
	q.mu.Lock()
	q.items = nil
	q.displayed = ""
	q.mu.Unlock()
}
