package stream

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Frame kinds sent by the import and matching streams.
const (
	FrameStart          = "start"
	FrameProgress       = "progress"
	FrameDone           = "done"
	FrameWarning        = "warning"
	FrameLabel          = "label"
	FrameStartInserting = "start_inserting"
	FrameError          = "error"
)

// Frame is one decoded server-push event.
type Frame struct {
	Type       string
	Imported   int
	Total      int
	Percentage float64
	Count      string
	Current    string
	Label      string
	Message    string

	HasImported   bool
	HasTotal      bool
	HasPercentage bool
	HasLabel      bool
}

// doneSentinel is emitted by the matching progress stream instead of a
// JSON done frame.
const doneSentinel = "[DONE]"

var plainProgress = regexp.MustCompile(`(\d+)\s*/\s*(\d+)`)

// Parse decodes a raw event payload. The payload may carry a redundant
// "data: " prefix. plainText allows the matching stream's non-JSON
// frames ("[DONE]", "processing 3 / 17 ..."); without it any non-JSON
// payload is an error.
func Parse(data string, plainText bool) (Frame, error) {
	data = strings.TrimPrefix(data, "data: ")
	data = strings.TrimSpace(data)

	if plainText {
		if data == doneSentinel {
			return Frame{Type: FrameDone}, nil
		}
		if !gjson.Valid(data) {
			return parsePlain(data), nil
		}
	}

	if !gjson.Valid(data) {
		return Frame{}, fmt.Errorf("malformed frame: %q", data)
	}

	value := gjson.Parse(data)
	f := Frame{
		Type:    value.Get("type").String(),
		Count:   value.Get("count").String(),
		Current: value.Get("current").String(),
		Message: value.Get("message").String(),
	}

	if label := value.Get("label"); label.Exists() {
		f.Label = label.String()
		f.HasLabel = true
	}
	if imported := value.Get("imported"); imported.Exists() {
		f.Imported = LocaleInt(imported)
		f.HasImported = true
	}

	// The CWE insertion phase reports its batch total as total_to_insert.
	total := value.Get("total")
	if !total.Exists() {
		total = value.Get("total_to_insert")
	}
	if total.Exists() {
		f.Total = LocaleInt(total)
		f.HasTotal = true
	}

	if percentage := value.Get("percentage"); percentage.Exists() {
		f.Percentage = LocaleFloat(percentage)
		f.HasPercentage = true
	}

	return f, nil
}

func parsePlain(data string) Frame {
	f := Frame{Type: FrameProgress}

	match := plainProgress.FindStringSubmatch(data)
	if match == nil {
		f.Type = FrameLabel
		f.Label = data
		f.HasLabel = true
		return f
	}

	f.Imported, _ = strconv.Atoi(match[1])
	f.Total, _ = strconv.Atoi(match[2])
	f.HasImported = true
	f.HasTotal = true
	f.Label = strings.TrimSpace(strings.Replace(data, match[0], "", 1))
	f.HasLabel = f.Label != ""

	return f
}

// LocaleInt reads a numeric field that may arrive as a locale-formatted
// string with dot thousands separators ("12.345" -> 12345).
func LocaleInt(value gjson.Result) int {
	if value.Type == gjson.Number {
		return int(value.Int())
	}

	cleaned := strings.NewReplacer(".", "", ",", "", " ", "").Replace(value.String())
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0
	}
	return n
}

func LocaleFloat(value gjson.Result) float64 {
	if value.Type == gjson.Number {
		return value.Float()
	}

	cleaned := strings.ReplaceAll(value.String(), ",", ".")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return f
}
