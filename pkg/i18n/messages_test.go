package i18n

import "testing"

func TestT(t *testing.T) {
	tests := []struct {
		name string
		key  string
		vars map[string]interface{}
		want string
	}{
		{
			name: "plainKey",
			key:  "cve.waiting_sse",
			want: "Waiting for the server...",
		},
		{
			name: "countSubstitution",
			key:  "cve.import_success",
			vars: map[string]interface{}{"count": 1234},
			want: "1.234 CVE entries imported",
		},
		{
			name: "importedOfTotal",
			key:  "cwe.inserting_items",
			vars: map[string]interface{}{"imported": 5, "total": 964},
			want: "Inserting weaknesses (5 of 964)",
		},
		{
			name: "stringVars",
			key:  "matching.processing_platform",
			vars: map[string]interface{}{"current": "12", "count": "9.876"},
			want: "Processing platform 12 of 9.876",
		},
		{
			name: "unknownKeyFallsThrough",
			key:  "cve.some_future_label",
			want: "cve.some_future_label",
		},
		{
			name: "percentageFloat",
			key:  "cwe.completion_percentage",
			vars: map[string]interface{}{"percentage": 42.0},
			want: "42% completed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := T(tt.key, tt.vars); got != tt.want {
				t.Errorf("T(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestThousands(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.000"},
		{12345, "12.345"},
		{240606, "240.606"},
		{1234567, "1.234.567"},
		{-12345, "-12.345"},
	}

	for _, tt := range tests {
		if got := Thousands(tt.in); got != tt.want {
			t.Errorf("Thousands(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
