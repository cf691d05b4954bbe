package render

import (
	"fmt"
	"io"
	"time"

	"github.com/crlszmr/vuln-scanner-sub000/config"
	"github.com/crlszmr/vuln-scanner-sub000/pkg/i18n"
	"github.com/crlszmr/vuln-scanner-sub000/pkg/importer"
)

// Notify prints a one-shot notification line.
func Notify(level, message string) {
	switch level {
	case importer.NotifySuccess:
		fmt.Printf("\n%s\n", config.Green(message))
	case importer.NotifyError:
		fmt.Printf("\n%s\n", config.Red(message))
	default:
		fmt.Printf("\n%s\n", message)
	}
}

// Line formats one progress line from a state snapshot.
func Line(s importer.State) string {
	label := s.DisplayedLabel
	if label == "" {
		label = s.Label
	}

	text := i18n.T(label, map[string]interface{}{
		"imported":   s.Imported,
		"total":      s.Total,
		"count":      s.Count,
		"current":    s.Current,
		"percentage": int(s.Percentage),
	})

	switch {
	case s.WaitingForSSE:
		if text == "" {
			text = "Waiting for the server..."
		}
		return text
	case s.Status == importer.StatusWarning:
		return i18n.T(s.WarningMessage, nil)
	case s.Total > 0:
		counts := fmt.Sprintf("%s / %s",
			i18n.Thousands(s.Imported), i18n.Thousands(s.Total))
		if s.Percentage > 0 && s.Percentage < 100 {
			counts = fmt.Sprintf("%s (%d%%)", counts, int(s.Percentage))
		}
		if text == "" {
			return counts
		}
		return fmt.Sprintf("%s  %s", text, counts)
	default:
		return text
	}
}

// Watch repaints the progress line until the controller reaches a
// terminal state or stop reports true, then prints the closing line.
func (w *Watcher) Watch(ctrl *importer.Controller, stop func() bool) importer.State {
	var last string

	for {
		s := ctrl.Snapshot()

		line := Line(s)
		if line != last {
			fmt.Fprintf(w.Out, "\r\033[K%s", line)
			last = line
		}

		if s.Status.Terminal() || (stop != nil && stop()) {
			fmt.Fprintln(w.Out)
			w.closing(s)
			return s
		}

		time.Sleep(w.Interval)
	}
}

// Watcher owns the repaint cadence of a progress view.
type Watcher struct {
	Out      io.Writer
	Interval time.Duration
}

func NewWatcher(out io.Writer) *Watcher {
	return &Watcher{Out: out, Interval: 200 * time.Millisecond}
}

func (w *Watcher) closing(s importer.State) {
	switch s.Status {
	case importer.StatusCompleted:
		fmt.Fprintln(w.Out, config.Green("Import completed"))
	case importer.StatusWarning:
		fmt.Fprintln(w.Out, config.Yellow(i18n.T(s.WarningMessage, nil)))
	case importer.StatusError:
		fmt.Fprintln(w.Out, config.Red(i18n.T(s.Label, nil)))
	}
}
