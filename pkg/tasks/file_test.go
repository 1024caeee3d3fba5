package tasks

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFile = `# Tasks

Some free-form preamble that should be ignored.

## Completed
- [high] Set up the project skeleton (@developer): initial commit

## In Progress
- [normal] Implement login flow (@developer): waiting on design review

## Backlog
- [critical] Fix data loss on save
- Write user documentation

## Decisions
- This table-ish section is not task data.
`

func TestParse(t *testing.T) {
	f, err := Parse(sampleFile)
	require.NoError(t, err)
	require.Len(t, f.Tasks, 4)

	completed := f.ByStatus(StatusCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, "Set up the project skeleton", completed[0].Title)
	assert.Equal(t, PriorityHigh, completed[0].Priority)
	assert.Equal(t, "developer", completed[0].Owner)
	assert.Equal(t, "initial commit", completed[0].Notes)

	backlog := f.ByStatus(StatusBacklog)
	require.Len(t, backlog, 2)
	assert.Equal(t, PriorityCritical, backlog[0].Priority)
	assert.Equal(t, "Write user documentation", backlog[1].Title)
	assert.Equal(t, PriorityNormal, backlog[1].Priority, "priority defaults to normal")
	assert.Empty(t, backlog[1].Owner)
}

func TestParseRejectsUnknownPriority(t *testing.T) {
	_, err := Parse("## Backlog\n- [urgent] Do a thing\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown priority")
}

func TestRenderParseRoundTrip(t *testing.T) {
	f, err := Parse(sampleFile)
	require.NoError(t, err)

	rendered := f.Render()
	reparsed, err := Parse(rendered)
	require.NoError(t, err)

	assert.Equal(t, f.Tasks, reparsed.Tasks)
	// Rendering the reparsed file reproduces the same text byte-for-byte
	assert.Equal(t, rendered, reparsed.Render())
}

func TestLoadFileMissingIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	f, err := LoadFile(path)
	require.NoError(t, err)
	assert.Empty(t, f.Tasks)
	assert.Equal(t, path, f.Path)
}

func TestLoadAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(sampleFile), 0644))

	f, err := LoadFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Add("New backlog item", PriorityLow, ""))
	require.NoError(t, f.Save())

	reloaded, err := LoadFile(path)
	require.NoError(t, err)
	_, err = reloaded.Find("New backlog item")
	assert.NoError(t, err)
}

func TestAdd(t *testing.T) {
	f := &File{}
	require.NoError(t, f.Add("Ship it", PriorityHigh, "before friday"))

	task, err := f.Find("Ship it")
	require.NoError(t, err)
	assert.Equal(t, StatusBacklog, task.Status)
	assert.Equal(t, PriorityHigh, task.Priority)
	assert.Equal(t, "before friday", task.Notes)

	assert.Error(t, f.Add("Ship it", PriorityLow, ""), "duplicate titles rejected")
	assert.Error(t, f.Add("  ", PriorityLow, ""))
	assert.Error(t, f.Add("x", Priority("urgent"), ""))
}

func TestAddRejectsTitlesTheLineGrammarCannotHold(t *testing.T) {
	f := &File{}
	assert.Error(t, f.Add("Fix login (OAuth)", PriorityNormal, ""))
	assert.Error(t, f.Add("Fix: login flow", PriorityNormal, ""))
	assert.Error(t, f.Add("[high] already tagged", PriorityNormal, ""))

	// Characters outside the markers are fine and must round-trip.
	require.NoError(t, f.Add("Fix login - OAuth & #42", PriorityNormal, ""))
	reparsed, err := Parse(f.Render())
	require.NoError(t, err)
	_, err = reparsed.Find("Fix login - OAuth & #42")
	assert.NoError(t, err)
}

func TestStartAndComplete(t *testing.T) {
	f := &File{}
	require.NoError(t, f.Add("Implement login", PriorityNormal, ""))

	require.NoError(t, f.Start("Implement login", "developer"))
	task, err := f.Find("Implement login")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, task.Status)
	assert.Equal(t, "developer", task.Owner)

	require.NoError(t, f.Complete("Implement login"))
	task, err = f.Find("Implement login")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, task.Status)
}

func TestCompleteDirectFromBacklogFails(t *testing.T) {
	f := &File{}
	require.NoError(t, f.Add("Skip states", PriorityNormal, ""))

	err := f.Complete("Skip states")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStartUnknownTask(t *testing.T) {
	f := &File{}
	err := f.Start("ghost", "developer")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestSaveWithoutPath(t *testing.T) {
	f := &File{}
	assert.Error(t, f.Save())
}
