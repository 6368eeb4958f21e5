package pkg

import (
	"bytes"
	"strings"
	"testing"
)

func TestInteractiveManager_Confirm(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		defaultYes bool
		expected   bool
	}{
		{name: "yes", input: "y\n", defaultYes: false, expected: true},
		{name: "full no", input: "No\n", defaultYes: true, expected: false},
		{name: "empty uses default yes", input: "\n", defaultYes: true, expected: true},
		{name: "empty uses default no", input: "\n", defaultYes: false, expected: false},
		{name: "eof uses default", input: "", defaultYes: true, expected: true},
		{name: "answer without newline", input: "yes", defaultYes: false, expected: true},
		{name: "invalid then valid", input: "maybe\nn\n", defaultYes: true, expected: false},
		{name: "invalid then eof", input: "maybe\n", defaultYes: false, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			im := NewInteractiveManagerWithIO(testLogger(), strings.NewReader(tt.input), &out)

			got, err := im.Confirm("Install the i3 window manager?", tt.defaultYes)
			if err != nil {
				t.Fatalf("Confirm failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Confirm() = %v, expected %v", got, tt.expected)
			}
			if !strings.Contains(out.String(), "Install the i3 window manager?") {
				t.Errorf("question was not printed: %q", out.String())
			}
		})
	}
}

func TestInteractiveManager_HintShowsDefault(t *testing.T) {
	var out bytes.Buffer
	im := NewInteractiveManagerWithIO(testLogger(), strings.NewReader("\n"), &out)

	if _, err := im.Confirm("Install optional tools?", false); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if !strings.Contains(out.String(), "[y/N]") {
		t.Errorf("expected [y/N] hint, got %q", out.String())
	}
}
