package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-steps-api/internal/steps"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderJSON(t *testing.T) {
	out, err := run(t, "render", "--state", "submitted", "--attempt", "2", "-o", "json")
	require.NoError(t, err)

	var ladder steps.Ladder
	require.NoError(t, json.Unmarshal([]byte(out), &ladder))
	assert.Equal(t, steps.StateSubmitted, ladder.State)
	require.Len(t, ladder.Steps, 5)
	assert.Equal(t, steps.Step{Label: steps.LabelNewAttempt, Status: steps.StatusButton}, ladder.Steps[4])
}

func TestRenderAttemptLimit(t *testing.T) {
	out, err := run(t, "render", "--state", "graded", "--attempt", "2", "--allowed-attempts", "2", "-o", "json")
	require.NoError(t, err)

	var ladder steps.Ladder
	require.NoError(t, json.Unmarshal([]byte(out), &ladder))
	assert.Equal(t, steps.StateGraded, ladder.State)
	assert.Len(t, ladder.Steps, 4)
}

func TestRenderWithoutSubmission(t *testing.T) {
	out, err := run(t, "render", "--locked", "--collapsed")
	require.NoError(t, err)
	assert.Contains(t, out, "Unavailable")
}

func TestRenderDraftReadyText(t *testing.T) {
	out, err := run(t, "render", "--draft-ready")
	require.NoError(t, err)
	assert.Contains(t, out, "Uploaded")
	assert.Contains(t, out, "Submit")
}

func TestRenderRejectsUnknownOutput(t *testing.T) {
	_, err := run(t, "render", "--state", "graded", "-o", "yaml")
	require.ErrorContains(t, err, "unsupported output")
}
