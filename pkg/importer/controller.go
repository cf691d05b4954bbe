package importer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/crlszmr/vuln-scanner-sub000/pkg/api"
	"github.com/crlszmr/vuln-scanner-sub000/pkg/i18n"
	"github.com/crlszmr/vuln-scanner-sub000/pkg/session"
	"github.com/crlszmr/vuln-scanner-sub000/pkg/stream"
)

// Notification levels passed to the Notifier.
const (
	NotifyInfo    = "info"
	NotifySuccess = "success"
	NotifyError   = "error"
)

// Notifier receives one-shot user notifications (success/error toasts in
// the original console).
type Notifier func(level, message string)

// Controller drives one import job of one kind: it issues the start and
// stop control calls, owns the progress stream connection, routes labels
// through the pacing queue and keeps the durable running flag in sync.
type Controller struct {
	kind   Kind
	api    *api.Client
	store  *session.Store
	queue  *PacingQueue
	notify Notifier
	log    *logrus.Entry

	mu         sync.Mutex
	state      State
	stream     *stream.Client
	framesSeen int
}

func New(kind Kind, client *api.Client, store *session.Store, notify Notifier) *Controller {
	return &Controller{
		kind:   kind,
		api:    client,
		store:  store,
		queue:  NewPacingQueue(kind.Dwell),
		notify: notify,
		log:    logrus.WithField("kind", kind.Name),
	}
}

// Snapshot returns a value copy of the current state for display.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	s := c.state
	c.mu.Unlock()

	s.DisplayedLabel = c.queue.Displayed()
	return s
}

// Running reports whether an import attempt is currently in flight.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Status == StatusRunning
}

// Open shows the progress dialog without starting anything.
func (c *Controller) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Status == StatusRunning {
		return
	}
	c.state = State{Status: StatusIdle, PendingImport: true}
}

// Start launches the backend import job and attaches the progress
// stream. Calling it while already running is a no-op.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Status == StatusRunning {
		c.mu.Unlock()
		return nil
	}
	c.state = State{Status: StatusIdle, WaitingForSSE: true}
	c.framesSeen = 0
	c.mu.Unlock()

	c.queue.Reset()

	if err := c.store.MarkRunning(c.kind.FlagKey); err != nil {
		c.log.Warnf("could not persist running flag: %v", err)
	}

	if err := c.api.StartImport(ctx, c.kind.StartPath); err != nil {
		c.failStart(c.kind.LabelKey("error_starting"))
		return err
	}

	return c.openStream(ctx)
}

// Resume reattaches to an import that was in flight when a previous
// console run ended. Returns false when no import is believed running.
func (c *Controller) Resume(ctx context.Context) (bool, error) {
	if !c.store.IsRunning(c.kind.FlagKey) {
		return false, nil
	}

	c.mu.Lock()
	c.state = State{Status: StatusRunning, WaitingForSSE: true}
	c.framesSeen = 0
	c.mu.Unlock()

	c.queue.Reset()

	if err := c.openStream(ctx); err != nil {
		return true, err
	}

	// Best-effort recovery of last known progress; the stream becomes
	// the source of truth the moment its first frame arrives.
	if c.kind.StatusPath != "" {
		go c.pollStatus(ctx)
	}

	return true, nil
}

// Stop detaches from the job optimistically: the stream closes and the
// flag clears immediately, the backend stop request is fire-and-forget.
func (c *Controller) Stop() {
	c.mu.Lock()
	sc := c.stream
	c.stream = nil
	label := c.kind.LabelKey("aborted_by_user")
	c.state = State{
		Status:        StatusIdle,
		PendingImport: true,
		Label:         label,
		Imported:      c.state.Imported,
		Total:         c.state.Total,
	}
	c.mu.Unlock()

	if sc != nil {
		sc.Close()
	}

	c.queue.Reset()
	c.queue.SetImmediate(label)

	if err := c.store.ClearRunning(c.kind.FlagKey); err != nil {
		c.log.Warnf("could not clear running flag: %v", err)
	}

	if c.kind.StopPath != "" {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := c.api.StopImport(ctx, c.kind.StopPath); err != nil {
				c.log.Debugf("stop request failed: %v", err)
			}
		}()
	}
}

// Close tears everything down and clears all state. The display layer
// must not offer Close while running; the controller does not re-check.
func (c *Controller) Close() {
	c.mu.Lock()
	sc := c.stream
	c.stream = nil
	c.state = State{Status: StatusIdle}
	c.framesSeen = 0
	c.mu.Unlock()

	if sc != nil {
		sc.Close()
	}

	c.queue.Reset()

	if err := c.store.ClearRunning(c.kind.FlagKey); err != nil {
		c.log.Warnf("could not clear running flag: %v", err)
	}
}

func (c *Controller) openStream(ctx context.Context) error {
	sc := stream.NewClient(nil)
	sc.Header = c.api.Header()

	if err := sc.Open(ctx, c.api.URL(c.kind.StreamPath)); err != nil {
		c.failStart(c.kind.LabelKey("connection_error"))
		return err
	}

	c.mu.Lock()
	c.stream = sc
	c.mu.Unlock()

	go c.consume(sc)

	return nil
}

// consume processes stream events strictly in arrival order until a
// terminal frame, a transport failure or an idle timeout.
func (c *Controller) consume(sc *stream.Client) {
	var idle *time.Timer
	var idleC <-chan time.Time
	if c.kind.IdleTimeout > 0 {
		idle = time.NewTimer(c.kind.IdleTimeout)
		idleC = idle.C
		defer idle.Stop()
	}

	for {
		select {
		case ev, ok := <-sc.Events():
			if !ok {
				// stream ended without a terminal frame
				c.failStream(sc)
				return
			}
			if idle != nil {
				if !idle.Stop() {
					<-idle.C
				}
				idle.Reset(c.kind.IdleTimeout)
			}
			if ev.Err != nil {
				c.failStream(sc)
				return
			}
			if c.handleFrame(sc, ev.Data) {
				return
			}
		case <-idleC:
			c.log.Warnf("stream silent for %s", c.kind.IdleTimeout)
			c.failStream(sc)
			return
		}
	}
}

// handleFrame applies one frame to the state. It returns true when the
// frame was terminal (or fatal) and the consume loop should stop.
func (c *Controller) handleFrame(sc *stream.Client, data string) bool {
	frame, err := stream.Parse(data, c.kind.PlainText)
	if err != nil {
		c.log.Debugf("dropping session on malformed frame: %v", err)
		c.failStream(sc)
		return true
	}

	c.mu.Lock()
	if c.stream != sc {
		// a Stop/Close/terminal already detached this stream
		c.mu.Unlock()
		return true
	}

	c.framesSeen++
	c.state.WaitingForSSE = false

	if frame.HasImported {
		c.state.Imported = frame.Imported
	}
	if frame.HasTotal {
		c.state.Total = frame.Total
	}
	if frame.HasPercentage {
		c.state.Percentage = frame.Percentage
	}
	if frame.Count != "" {
		c.state.Count = frame.Count
	}
	if frame.Current != "" {
		c.state.Current = frame.Current
	}

	if c.state.Total > 0 && c.state.Imported > c.state.Total {
		c.log.Warnf("server reported imported %d above total %d",
			c.state.Imported, c.state.Total)
	}

	var immediateLabel string
	var pacedLabel string
	if frame.HasLabel && frame.Label != "" {
		c.state.Label = frame.Label
		if c.kind.ImmediateLabels[frame.Label] || frame.Type == stream.FrameStartInserting {
			immediateLabel = frame.Label
		} else {
			pacedLabel = frame.Label
		}
	}

	terminal := false
	var finished, warned bool
	var importedFinal int
	var warningMessage string

	switch frame.Type {
	case stream.FrameStart:
		c.state.Status = StatusRunning
		c.state.PendingImport = false

	case stream.FrameProgress, stream.FrameStartInserting, stream.FrameLabel, "":
		// numeric/label updates never change a running status

	case stream.FrameDone:
		c.state.Status = StatusCompleted
		c.state.Percentage = 0
		importedFinal = c.state.Imported
		finished = true
		terminal = true
		c.stream = nil

	case stream.FrameWarning:
		warningMessage = frame.Message
		if warningMessage == "" {
			warningMessage = c.kind.LabelKey("too_many_new_warning")
		}
		c.state.Status = StatusWarning
		c.state.WarningMessage = warningMessage
		c.state.Imported = 0
		c.state.Total = 0
		c.state.Percentage = 0
		warned = true
		terminal = true
		c.stream = nil

	case stream.FrameError:
		c.mu.Unlock()
		c.failStream(sc)
		return true
	}
	c.mu.Unlock()

	if immediateLabel != "" {
		c.queue.SetImmediate(immediateLabel)
	}
	if pacedLabel != "" {
		c.queue.Enqueue(pacedLabel)
	}

	if terminal {
		sc.Close()
		if err := c.store.ClearRunning(c.kind.FlagKey); err != nil {
			c.log.Warnf("could not clear running flag: %v", err)
		}
	}
	if finished {
		c.notifyf(NotifySuccess,
			i18n.T(c.kind.LabelKey("import_success"),
				map[string]interface{}{"count": importedFinal}))
	}
	if warned {
		c.log.Infof("import refused by server: %s", warningMessage)
	}

	return terminal
}

// failStream is the shared terminal path for transport failures and
// malformed frames: error status, closed connection, cleared flag.
func (c *Controller) failStream(sc *stream.Client) {
	label := c.kind.LabelKey("connection_error")

	c.mu.Lock()
	if sc != nil && c.stream != sc {
		c.mu.Unlock()
		return
	}
	c.stream = nil
	c.state.Status = StatusError
	c.state.Label = label
	c.state.WaitingForSSE = false
	c.mu.Unlock()

	if sc != nil {
		sc.Close()
	}

	if err := c.store.ClearRunning(c.kind.FlagKey); err != nil {
		c.log.Warnf("could not clear running flag: %v", err)
	}

	c.notifyf(NotifyError, i18n.T(label, nil))
}

// failStart covers a rejected start request or a stream that never
// opened.
func (c *Controller) failStart(label string) {
	c.mu.Lock()
	c.state.Status = StatusError
	c.state.Label = label
	c.state.WaitingForSSE = false
	c.mu.Unlock()

	if err := c.store.ClearRunning(c.kind.FlagKey); err != nil {
		c.log.Warnf("could not clear running flag: %v", err)
	}

	c.notifyf(NotifyError, i18n.T(label, nil))
}

// pollStatus reconciles last known progress after a reload. The poll
// result only applies while no stream frame has been processed; once the
// stream speaks, it wins.
func (c *Controller) pollStatus(ctx context.Context) {
	status, err := c.api.ImportStatus(ctx, c.kind.StatusPath)
	if err != nil {
		c.log.Debugf("status poll failed: %v", err)
		return
	}

	c.mu.Lock()
	if c.framesSeen > 0 {
		c.mu.Unlock()
		return
	}

	if !status.Running {
		// the job finished while no console was watching
		sc := c.stream
		c.stream = nil
		c.state = State{Status: StatusIdle}
		c.mu.Unlock()

		if sc != nil {
			sc.Close()
		}
		c.queue.Reset()
		if err := c.store.ClearRunning(c.kind.FlagKey); err != nil {
			c.log.Warnf("could not clear running flag: %v", err)
		}
		return
	}

	c.state.Imported = status.Imported
	c.state.Total = status.Total
	c.state.Percentage = status.Percentage
	if status.Count != "" {
		c.state.Count = status.Count
	}
	if status.Current != "" {
		c.state.Current = status.Current
	}
	label := status.Label
	if label != "" {
		c.state.Label = label
	}
	c.mu.Unlock()

	if label != "" {
		c.queue.Enqueue(label)
	}
}

func (c *Controller) notifyf(level, message string) {
	if c.notify == nil {
		return
	}
	c.notify(level, message)
}
