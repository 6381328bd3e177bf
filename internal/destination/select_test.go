package destination

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	cberrors "github.com/carrybak/carrybak/internal/errors"
)

func TestSelectEmptyFailsFast(t *testing.T) {
	var out bytes.Buffer
	s := NewSelector(strings.NewReader(""), &out)

	_, err := s.Select(nil)
	if !errors.Is(err, cberrors.ErrNoDestination) {
		t.Errorf("Select() = %v, want ErrNoDestination", err)
	}
	if strings.Contains(out.String(), "Select destination") {
		t.Error("no prompt should appear with zero candidates")
	}
}

func TestSelectSingleAutoSelects(t *testing.T) {
	var out bytes.Buffer
	s := NewSelector(strings.NewReader(""), &out)
	dests := []Destination{{Path: "/run/media/jane/vault", Fstype: "ext4"}}

	got, err := s.Select(dests)
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if got.Path != dests[0].Path {
		t.Errorf("Select() = %+v, want %+v", got, dests[0])
	}
	if !strings.Contains(out.String(), dests[0].Path) {
		t.Error("auto-selection should announce the chosen destination")
	}
}

func TestSelectMultiple(t *testing.T) {
	dests := []Destination{
		{Path: "/run/media/jane/vault"},
		{Path: "/media/jane/spare"},
	}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"first entry", "1\n", "/run/media/jane/vault", false},
		{"second entry", "2\n", "/media/jane/spare", false},
		{"zero is out of range", "0\n", "", true},
		{"beyond range", "3\n", "", true},
		{"non-numeric", "vault\n", "", true},
		{"empty line", "\n", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			s := NewSelector(strings.NewReader(tt.input), &out)

			got, err := s.Select(dests)
			if tt.wantErr {
				if !errors.Is(err, cberrors.ErrInvalidSelection) {
					t.Errorf("Select() = %v, want ErrInvalidSelection", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Select() error: %v", err)
			}
			if got.Path != tt.want {
				t.Errorf("Select() = %s, want %s", got.Path, tt.want)
			}
		})
	}
}

func TestPreselect(t *testing.T) {
	dests := []Destination{{Path: "/run/media/jane/vault"}}

	got, err := Preselect(dests, "/run/media/jane/vault")
	if err != nil || got.Path != "/run/media/jane/vault" {
		t.Errorf("Preselect() = %+v, %v", got, err)
	}

	_, err = Preselect(dests, "/mnt/elsewhere")
	if !errors.Is(err, cberrors.ErrNoDestination) {
		t.Errorf("Preselect() = %v, want ErrNoDestination", err)
	}
}
