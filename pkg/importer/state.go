package importer

// Status is the lifecycle phase of an import attempt.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusWarning   Status = "warning"
	StatusError     Status = "error"
	StatusAborted   Status = "aborted"
)

// Terminal reports whether the stream connection is definitively closed
// in this status.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusWarning, StatusError, StatusAborted:
		return true
	}
	return false
}

// State is the controller's snapshot handed to the display layer. It is
// copied on read; callers never alias controller internals.
type State struct {
	Status Status

	Imported   int
	Total      int
	Percentage float64

	// Label is the latest label reported by the stream. DisplayedLabel
	// is what the pacing queue currently shows and is what a renderer
	// should print.
	Label          string
	DisplayedLabel string

	Count   string
	Current string

	WarningMessage string

	// WaitingForSSE is set between opening the stream and its first
	// frame. PendingImport marks the dialog-open-but-not-started phase.
	WaitingForSSE bool
	PendingImport bool
}
