package importer

import (
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not reached within %s", timeout)
}

func TestPacingQueueDuplicateSuppression(t *testing.T) {
	q := NewPacingQueue(10 * time.Millisecond)

	// same label twice within the dwell window shows up once
	q.Enqueue("a")
	q.Enqueue("a")

	waitFor(t, time.Second, func() bool { return q.Displayed() == "a" })

	q.mu.Lock()
	pending := len(q.items)
	q.mu.Unlock()

	if pending != 0 {
		t.Errorf("queue holds %d pending items, want 0", pending)
	}
}

func TestPacingQueueRepeatOfDisplayed(t *testing.T) {
	q := NewPacingQueue(5 * time.Millisecond)

	q.Enqueue("a")
	waitFor(t, time.Second, func() bool { return q.Displayed() == "a" })

	// drain the pacing loop, then repeat the displayed label
	waitFor(t, time.Second, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return !q.processing
	})

	q.Enqueue("a")

	q.mu.Lock()
	pending := len(q.items)
	q.mu.Unlock()

	if pending != 0 {
		t.Errorf("repeat of displayed label was queued")
	}
}

func TestPacingQueueOrderAndDwell(t *testing.T) {
	dwell := 30 * time.Millisecond
	q := NewPacingQueue(dwell)

	start := time.Now()
	q.Enqueue("a")
	q.Enqueue("b")

	waitFor(t, time.Second, func() bool { return q.Displayed() == "a" })

	waitFor(t, time.Second, func() bool { return q.Displayed() == "b" })
	if elapsed := time.Since(start); elapsed < dwell {
		t.Errorf("label advanced after %s, dwell is %s", elapsed, dwell)
	}
}

func TestPacingQueueImmediateBypass(t *testing.T) {
	q := NewPacingQueue(time.Hour)

	q.Enqueue("slow")
	waitFor(t, time.Second, func() bool { return q.Displayed() == "slow" })

	q.SetImmediate("processing 5 of 100")
	if got := q.Displayed(); got != "processing 5 of 100" {
		t.Errorf("Displayed() = %q after SetImmediate", got)
	}
}

func TestPacingQueueReset(t *testing.T) {
	q := NewPacingQueue(10 * time.Millisecond)

	q.Enqueue("a")
	waitFor(t, time.Second, func() bool { return q.Displayed() == "a" })

	q.Reset()

	if got := q.Displayed(); got != "" {
		t.Errorf("Displayed() = %q after Reset, want empty", got)
	}

	// the queue accepts the same label again once the loop drained
	waitFor(t, time.Second, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return !q.processing
	})

	q.Enqueue("a")
	waitFor(t, time.Second, func() bool { return q.Displayed() == "a" })
}
