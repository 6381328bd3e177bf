package gate

import (
	"bytes"
	"strings"
	"testing"
)

func TestConfirmMatrix(t *testing.T) {
	tests := []struct {
		name       string
		policy     Policy
		input      string
		want       State
		wantPrompt bool
	}{
		{"auto yes never prompts", AutoYes, "", Confirmed, false},
		{"never ask proceeds unguarded", NeverAsk, "", Confirmed, false},
		{"always ask with y", AlwaysAsk, "y\n", Confirmed, true},
		{"always ask with yes", AlwaysAsk, "YES\n", Confirmed, true},
		{"always ask with n", AlwaysAsk, "n\n", Skipped, true},
		{"always ask with empty line", AlwaysAsk, "\n", Skipped, true},
		{"always ask with garbage", AlwaysAsk, "sure why not\n", Skipped, true},
		{"always ask at EOF", AlwaysAsk, "", Skipped, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			g := New(tt.policy, strings.NewReader(tt.input), &out)

			got, err := g.Confirm("restore ssh from SSH-20260829T071500")
			if err != nil {
				t.Fatalf("Confirm() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm() = %v, want %v", got, tt.want)
			}

			prompted := strings.Contains(out.String(), "[y/N]")
			if prompted != tt.wantPrompt {
				t.Errorf("prompted = %t, want %t (output %q)", prompted, tt.wantPrompt, out.String())
			}
		})
	}
}

func TestNeverAskWarns(t *testing.T) {
	var out bytes.Buffer
	g := New(NeverAsk, strings.NewReader(""), &out)

	if _, err := g.Confirm("restore"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "WARNING") {
		t.Errorf("unguarded confirmation must warn, got %q", out.String())
	}
}
