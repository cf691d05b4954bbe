package importer

import (
	"fmt"
	"time"

	"github.com/crlszmr/vuln-scanner-sub000/config"
	"github.com/crlszmr/vuln-scanner-sub000/pkg/session"
)

// Kind parameterizes the controller for one resource. The CVE, CPE and
// CWE flows are identical except for endpoints, labels and pacing; the
// device matching flow additionally speaks plain-text frames.
type Kind struct {
	Name    string
	FlagKey string

	StartPath  string
	StopPath   string
	StreamPath string
	StatusPath string
	CountPath  string
	DeletePath string

	// Dwell is the minimum display time per status label.
	Dwell time.Duration

	// ImmediateLabels bypass the pacing queue to keep live counters
	// responsive.
	ImmediateLabels map[string]bool

	// PlainText allows non-JSON frames ("[DONE]", "N / M ...").
	PlainText bool

	// IdleTimeout, when set, fails the attempt if the stream stays
	// silent for this long. Zero disables it.
	IdleTimeout time.Duration
}

// LabelKey builds the kind-scoped label key, e.g. "cve.connection_error".
func (k Kind) LabelKey(suffix string) string {
	return k.Name + "." + suffix
}

func nvdKind(name string, cfg *config.Config) Kind {
	return Kind{
		Name:        name,
		FlagKey:     session.ImportFlag(name),
		StartPath:   fmt.Sprintf("/nvd/%s-import-start", name),
		StopPath:    fmt.Sprintf("/nvd/%s-import-stop", name),
		StreamPath:  fmt.Sprintf("/nvd/%s-import-stream", name),
		StatusPath:  fmt.Sprintf("/nvd/%s-import-status", name),
		DeletePath:  fmt.Sprintf("/nvd/%s-delete-all", name),
		Dwell:       cfg.ImportDwell(),
		IdleTimeout: cfg.StreamIdleTimeout,
		ImmediateLabels: map[string]bool{
			name + ".inserting_items":      true,
			name + ".processing_new_items": true,
		},
	}
}

// CVE is the vulnerability import kind.
func CVE(cfg *config.Config) Kind {
	k := nvdKind("cve", cfg)
	k.CountPath = "/nvd/cve-count"
	return k
}

// CPE is the platform dictionary import kind.
func CPE(cfg *config.Config) Kind {
	return nvdKind("cpe", cfg)
}

// CWE is the weakness catalog import kind. The backend exposes no
// status-poll endpoint for it; reload recovery relies on the stream
// alone.
func CWE(cfg *config.Config) Kind {
	k := nvdKind("cwe", cfg)
	k.StatusPath = ""
	return k
}

// Matching is the per-device matching kind. There is no backend stop
// endpoint; stopping only detaches the console.
func Matching(deviceID string, cfg *config.Config) Kind {
	return Kind{
		Name:        "matching",
		FlagKey:     session.MatchingFlag(deviceID),
		StartPath:   fmt.Sprintf("/devices/%s/match-start", deviceID),
		StreamPath:  fmt.Sprintf("/devices/%s/match-platforms/progress", deviceID),
		StatusPath:  fmt.Sprintf("/devices/%s/match-status", deviceID),
		Dwell:       cfg.MatchingDwell(),
		IdleTimeout: cfg.StreamIdleTimeout,
		PlainText:   true,
		ImmediateLabels: map[string]bool{
			"matching.processing_platform": true,
		},
	}
}
