package presenter

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func newTestPresenter() (*TerminalPresenter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	p := NewWithOptions(&out, &errOut, ColorNever)
	return p, &out, &errOut
}

func TestErrorOutput(t *testing.T) {
	p, out, errOut := newTestPresenter()

	p.Error(errors.New("boom"), "loading agents")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "[ERROR] loading agents: boom")
}

func TestErrorNilIsSilent(t *testing.T) {
	p, _, errOut := newTestPresenter()
	p.Error(nil, "context")
	assert.Empty(t, errOut.String())
}

func TestSuccessWarningInfo(t *testing.T) {
	p, out, _ := newTestPresenter()

	p.Success("validated")
	p.Warning("skill missing")
	p.Info("3 agents loaded")

	assert.Contains(t, out.String(), "✓ validated")
	assert.Contains(t, out.String(), "⚠ skill missing")
	assert.Contains(t, out.String(), "3 agents loaded")
}

func TestQuietSuppressesNonErrors(t *testing.T) {
	p, out, errOut := newTestPresenter()
	p.SetQuiet(true)

	p.Success("hidden")
	p.Warning("hidden")
	p.Info("hidden")
	p.Section("hidden")
	p.Separator()
	p.Summary(&ValidationSummary{Agents: 1})

	assert.Empty(t, out.String())

	// Errors still surface in quiet mode
	p.Error(errors.New("boom"), "")
	assert.Contains(t, errOut.String(), "boom")

	assert.True(t, p.IsQuiet())
}

func TestSection(t *testing.T) {
	p, out, _ := newTestPresenter()
	p.Section("Agents")
	assert.Contains(t, out.String(), "Agents\n------")
}

func TestSummary(t *testing.T) {
	p, out, _ := newTestPresenter()
	p.Summary(&ValidationSummary{Agents: 3, Skills: 2, Edges: 4, Problems: 1})
	assert.Contains(t, out.String(), "Agents: 3 | Skills: 2 | Hand-off edges: 4 | Problems: 1")
}
