package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cberrors "github.com/carrybak/carrybak/internal/errors"
	"github.com/carrybak/carrybak/internal/gate"
	"github.com/carrybak/carrybak/internal/retention"
)

func sampleRuns() []retention.Run {
	newest := time.Date(2026, 8, 29, 7, 15, 0, 0, time.UTC)
	return []retention.Run{
		{Path: "/mnt/vault/SSH/SSH-20260829T071500", ModTime: newest.UnixNano()},
		{Path: "/mnt/vault/SSH/SSH-20260822T071500", ModTime: newest.Add(-7 * 24 * time.Hour).UnixNano()},
	}
}

func TestConfirmPolicyMapping(t *testing.T) {
	tests := []struct {
		name    string
		confirm bool
		autoYes bool
		want    gate.Policy
	}{
		{"no flags proceeds unguarded", false, false, gate.NeverAsk},
		{"yes alone stays unguarded", false, true, gate.NeverAsk},
		{"confirm requires a prompt", true, false, gate.AlwaysAsk},
		{"confirm plus yes skips the prompt", true, true, gate.AutoYes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, confirmPolicy(tt.confirm, tt.autoYes))
		})
	}
}

func TestConfirmFlagDecliningCancels(t *testing.T) {
	var out bytes.Buffer
	g := gate.New(confirmPolicy(true, false), strings.NewReader("n\n"), &out)

	state, err := g.Confirm("Restore dots from DOTS-20260101T000000 over current files")
	require.NoError(t, err)
	assert.Equal(t, gate.Skipped, state)
	assert.Contains(t, out.String(), "[y/N]")
}

func TestPickRunExplicitID(t *testing.T) {
	var out bytes.Buffer

	got, err := pickRun(&out, sampleRuns(), "SSH-20260822T071500")
	require.NoError(t, err)
	assert.Equal(t, "/mnt/vault/SSH/SSH-20260822T071500", got)
}

func TestPickRunUnknownID(t *testing.T) {
	var out bytes.Buffer

	_, err := pickRun(&out, sampleRuns(), "SSH-20200101T000000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, cberrors.ErrNoRunsFound))
}

func TestPickRunYesTakesMostRecent(t *testing.T) {
	origYes := yesFlag
	t.Cleanup(func() { yesFlag = origYes })
	yesFlag = true

	var out bytes.Buffer
	got, err := pickRun(&out, sampleRuns(), "")
	require.NoError(t, err)
	assert.Equal(t, "/mnt/vault/SSH/SSH-20260829T071500", got)
	assert.Contains(t, out.String(), "most recent")
}

func TestPickRunSingleRunNeedsNoPicker(t *testing.T) {
	var out bytes.Buffer
	runs := sampleRuns()[:1]

	got, err := pickRun(&out, runs, "")
	require.NoError(t, err)
	assert.Equal(t, runs[0].Path, got)
}
