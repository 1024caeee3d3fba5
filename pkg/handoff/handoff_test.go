package handoff

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handofflabs/baton/pkg/agent"
	"github.com/handofflabs/baton/pkg/registry"
)

func buildGraph(t *testing.T) (*Graph, *registry.Registry) {
	t.Helper()

	orchestrator := &agent.Agent{
		Metadata: agent.Metadata{
			Name:        "orchestrator",
			Description: "Routes work",
			Model:       "gpt-4.1",
			Handoffs: []agent.HandoffDecl{
				{Label: "Development", Agent: "developer", Prompt: "Implement: {{.Task}}", Send: false},
				{Label: "Testing", Agent: "tester", Prompt: "Verify: {{.Task}}", Send: true},
			},
		},
		SystemPrompt: "route",
	}
	developer := &agent.Agent{
		Metadata:     agent.Metadata{Name: "developer", Description: "Implements", Model: "gpt-4.1"},
		SystemPrompt: "develop",
	}
	tester := &agent.Agent{
		Metadata:     agent.Metadata{Name: "tester", Description: "Tests", Model: "gpt-4.1"},
		SystemPrompt: "test",
	}

	reg, err := registry.New([]*agent.Agent{orchestrator, developer, tester})
	require.NoError(t, err)

	return New(reg), reg
}

func TestOutgoingDeclarationOrder(t *testing.T) {
	g, _ := buildGraph(t)

	var labels []string
	for e := range g.Outgoing("orchestrator") {
		labels = append(labels, e.Label)
	}
	assert.Equal(t, []string{"Development", "Testing"}, labels)
}

func TestOutgoingIsRestartable(t *testing.T) {
	g, _ := buildGraph(t)
	seq := g.Outgoing("orchestrator")

	count := func() int {
		n := 0
		for range seq {
			n++
		}
		return n
	}

	assert.Equal(t, 2, count())
	assert.Equal(t, 2, count())
}

func TestOutgoingStopsEarly(t *testing.T) {
	g, _ := buildGraph(t)

	var first *Edge
	for e := range g.Outgoing("orchestrator") {
		first = &e
		break
	}
	require.NotNil(t, first)
	assert.Equal(t, "Development", first.Label)
}

func TestOutgoingUnknownSourceIsEmpty(t *testing.T) {
	g, _ := buildGraph(t)
	for range g.Outgoing("ghost") {
		t.Fatal("expected no edges for unknown source")
	}
}

func TestTransferConstructsRequestWithoutDispatch(t *testing.T) {
	g, _ := buildGraph(t)

	req, err := g.Transfer(context.Background(), "orchestrator", "Development", map[string]string{"Task": "add login"})
	require.NoError(t, err)

	assert.NotEmpty(t, req.ID)
	assert.Equal(t, "orchestrator", req.Source)
	assert.Equal(t, "developer", req.Target)
	assert.Equal(t, "Development", req.Label)
	assert.Equal(t, "Implement: add login", req.Prompt)
	assert.False(t, req.Send)
	assert.False(t, req.CreatedAt.IsZero())
}

func TestTransferSendFlagCarriedThrough(t *testing.T) {
	g, _ := buildGraph(t)

	req, err := g.Transfer(context.Background(), "orchestrator", "Testing", map[string]string{"Task": "run suite"})
	require.NoError(t, err)
	assert.True(t, req.Send)
	assert.Equal(t, "tester", req.Target)
}

func TestTransferUnknownEdge(t *testing.T) {
	g, _ := buildGraph(t)

	_, err := g.Transfer(context.Background(), "orchestrator", "Nonexistent", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownEdge)
}

func TestTransferUnknownSource(t *testing.T) {
	g, _ := buildGraph(t)

	_, err := g.Transfer(context.Background(), "ghost", "Development", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestTransferDanglingTarget(t *testing.T) {
	orchestrator := &agent.Agent{
		Metadata: agent.Metadata{
			Name:        "orchestrator",
			Description: "Routes work",
			Model:       "gpt-4.1",
			Handoffs: []agent.HandoffDecl{
				{Label: "Development", Agent: "ghost", Prompt: "p"},
			},
		},
		SystemPrompt: "route",
	}
	reg, err := registry.New([]*agent.Agent{orchestrator})
	require.NoError(t, err)

	g := New(reg)
	_, err = g.Transfer(context.Background(), "orchestrator", "Development", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDanglingTarget)
}

func TestTransferRenderingIsIdempotent(t *testing.T) {
	g, _ := buildGraph(t)
	payload := map[string]string{"Task": "refactor parser"}

	first, err := g.Transfer(context.Background(), "orchestrator", "Development", payload)
	require.NoError(t, err)
	second, err := g.Transfer(context.Background(), "orchestrator", "Development", payload)
	require.NoError(t, err)

	assert.Equal(t, first.Prompt, second.Prompt)
	assert.Equal(t, first.Target, second.Target)
	assert.Equal(t, first.Label, second.Label)
	// Each request is a distinct proposal
	assert.NotEqual(t, first.ID, second.ID)
}

func TestEdgesGroupedBySource(t *testing.T) {
	g, _ := buildGraph(t)

	edges := g.Edges()
	require.Len(t, edges, 2)
	assert.Equal(t, "orchestrator", edges[0].Source)
	assert.Equal(t, "Development", edges[0].Label)
	assert.Equal(t, "Testing", edges[1].Label)
}

func TestResolveEdge(t *testing.T) {
	g, _ := buildGraph(t)

	edges := g.Edges()
	target, err := g.Resolve(edges[0])
	require.NoError(t, err)
	assert.Equal(t, "developer", target.Name())

	_, err = g.Resolve(Edge{Source: "orchestrator", Target: "ghost", Label: "X"})
	assert.ErrorIs(t, err, ErrDanglingTarget)
}
