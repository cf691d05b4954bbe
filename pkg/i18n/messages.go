package i18n

import (
	"fmt"
	"strings"
)

// messages maps the backend's label keys to display text. The backend
// sends keys, not sentences, so unknown keys fall through verbatim.
var messages = map[string]string{
	// CVE import
	"cve.import_modal_title": "CVE import",
	"cve.from_nvd":           "Import CVE entries from the NVD API",
	"cve.start":              "Start",
	"cve.stop_import":        "Stop import",
	"cve.waiting_sse":        "Waiting for the server...",
	"cve.connecting_nvd":     "Connecting to the NVD API...",
	"cve.downloading":        "Downloading CVE data...",
	"cve.inserting_items":    "Inserting CVE entries ({imported} of {total})",
	"cve.import_success":     "{count} CVE entries imported",
	"cve.import_completed":   "CVE import completed",
	"cve.completed":          "Import completed",
	"cve.connection_error":   "Connection error during the CVE import",
	"cve.error_starting":     "The CVE import could not be started",
	"cve.aborted_by_user":    "CVE import stopped by the user",
	"cve.too_many_new_warning": "Too many new CVE entries are pending. " +
		"Review the import threshold before retrying.",
	"cve.delete_title":        "Delete all CVE entries",
	"cve.delete_confirmation": "This removes {count} CVE entries. Continue?",
	"cve.nothing_to_delete":   "There are no CVE entries to delete",
	"cve.deleting_status":     "Deleting CVE entries...",
	"cve.delete_success":      "All CVE entries were deleted",
	"cve.delete_error":        "The CVE entries could not be deleted",

	// CPE import
	"cpe.import_modal_title":  "CPE import",
	"cpe.from_xml":            "Import CPE entries from the official dictionary",
	"cpe.start":               "Start",
	"cpe.stop_import":         "Stop import",
	"cpe.waiting_sse":         "Waiting for the server...",
	"cpe.downloading_xml":     "Downloading the CPE dictionary...",
	"cpe.parsing_xml":         "Parsing the CPE dictionary...",
	"cpe.parsing_completed":   "Parsed {count} platforms",
	"cpe.processing_new_items": "Processing platform {current} of {count}",
	"cpe.inserting_items":     "Inserting platforms ({imported} of {total})",
	"cpe.import_success":      "{count} platforms imported",
	"cpe.import_completed":    "CPE import completed",
	"cpe.completed":           "Import completed",
	"cpe.connection_error":    "Connection error during the CPE import",
	"cpe.error_starting":      "The CPE import could not be started",
	"cpe.aborted_by_user":     "CPE import stopped by the user",
	"cpe.too_many_new_warning": "Too many new platforms are pending. " +
		"Review the import threshold before retrying.",
	"cpe.delete_title":        "Delete all CPE entries",
	"cpe.delete_confirmation": "This removes {count} CPE entries. Continue?",
	"cpe.nothing_to_delete":   "There are no CPE entries to delete",
	"cpe.delete_success":      "All CPE entries were deleted",
	"cpe.delete_error":        "The CPE entries could not be deleted",

	// CWE import
	"cwe.import_modal_title": "CWE import",
	"cwe.from_xml":           "Import CWE entries from the MITRE catalog",
	"cwe.start":              "Start",
	"cwe.stop_import":        "Stop import",
	"cwe.ready":              "Ready",
	"cwe.waiting_sse":        "Waiting for the server...",
	"cwe.connecting_mitre":   "Connecting to the MITRE catalog...",
	"cwe.downloading_xml":    "Downloading the CWE catalog...",
	"cwe.xml_checked":        "CWE catalog verified",
	"cwe.parsing_xml":        "Parsing the CWE catalog...",
	"cwe.parsing_completed":  "Parsed {count} weaknesses",
	"cwe.inserting_items":    "Inserting weaknesses ({imported} of {total})",
	"cwe.importing_from_nvd": "Importing weaknesses...",
	"cwe.completion_percentage": "{percentage}% completed",
	"cwe.import_success":     "{count} weaknesses imported",
	"cwe.import_completed":   "CWE import completed",
	"cwe.completed":          "Import completed",
	"cwe.connection_error":   "Connection error during the CWE import",
	"cwe.error_starting":     "The CWE import could not be started",
	"cwe.aborted_by_user":    "CWE import stopped by the user",
	"cwe.too_many_new_warning": "Too many new weaknesses are pending. " +
		"Review the import threshold before retrying.",
	"cwe.delete_success": "All CWE entries were deleted",
	"cwe.delete_error":   "The CWE entries could not be deleted",

	// Device matching
	"matching.modal_title":         "Device matching",
	"matching.preparing":           "Preparing the matching run...",
	"matching.checking_status":     "Checking matching status...",
	"matching.processing_platform": "Processing platform {current} of {count}",
	"matching.progress":            "{percentage}% matched",
	"matching.completed":           "Matching completed",
	"matching.import_success":      "Matching completed",
	"matching.aborted_by_user":     "Matching stopped by the user",
	"matching.connection_error":    "Connection error during the matching run",
	"matching.error_starting":      "The matching run could not be started",
	"matching.error":               "Connection error during the matching run",
}

// T resolves a label key and applies {placeholder} substitutions.
// Integer values are formatted with dot thousands separators, the way
// the backend reports large counts.
func T(key string, vars map[string]interface{}) string {
	text, ok := messages[key]
	if !ok {
		text = key
	}

	for name, value := range vars {
		text = strings.ReplaceAll(text, "{"+name+"}", formatVar(value))
	}

	return text
}

func formatVar(value interface{}) string {
	switch v := value.(type) {
	case int:
		return Thousands(v)
	case int64:
		return Thousands(int(v))
	case float64:
		if v == float64(int(v)) {
			return Thousands(int(v))
		}
		return fmt.Sprintf("%.1f", v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Thousands renders 12345 as "12.345".
func Thousands(n int) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	digits := fmt.Sprintf("%d", n)
	if len(digits) <= 3 {
		return sign + digits
	}

	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	return sign + strings.Join(groups, ".")
}
