package validate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handofflabs/baton/pkg/agent"
	"github.com/handofflabs/baton/pkg/handoff"
	"github.com/handofflabs/baton/pkg/registry"
	"github.com/handofflabs/baton/pkg/skills"
)

func validAgent(name string) *agent.Agent {
	return &agent.Agent{
		Metadata: agent.Metadata{
			Name:        name,
			Description: name + " persona",
			Model:       "gpt-4.1",
		},
		SystemPrompt: "You are " + name + ".",
		Path:         name + ".md",
	}
}

func TestRunCleanConfiguration(t *testing.T) {
	orchestrator := validAgent("orchestrator")
	orchestrator.Metadata.Infer = true
	orchestrator.Metadata.Skills = []string{"security-checklist"}
	orchestrator.Metadata.Handoffs = []agent.HandoffDecl{
		{Label: "Development", Agent: "developer", Prompt: "Implement: {{.Task}}"},
	}

	skillSet := map[string]*skills.Skill{
		"security-checklist": {Name: "security-checklist"},
	}

	report := Run(context.Background(), []*agent.Agent{orchestrator, validAgent("developer")}, skillSet)

	assert.NoError(t, report.Err())
	assert.Equal(t, 2, report.Agents)
	assert.Equal(t, 1, report.Skills)
	assert.Equal(t, 1, report.Edges)
	assert.Empty(t, report.Problems)
}

func TestRunDuplicateNames(t *testing.T) {
	report := Run(context.Background(), []*agent.Agent{validAgent("developer"), validAgent("developer")}, nil)

	err := report.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, registry.ErrDuplicateName)
}

func TestRunDanglingTarget(t *testing.T) {
	orchestrator := validAgent("orchestrator")
	orchestrator.Metadata.Handoffs = []agent.HandoffDecl{
		{Label: "Development", Agent: "ghost", Prompt: "p"},
	}

	report := Run(context.Background(), []*agent.Agent{orchestrator}, nil)

	err := report.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, handoff.ErrDanglingTarget)
}

func TestRunDuplicateLabels(t *testing.T) {
	orchestrator := validAgent("orchestrator")
	orchestrator.Metadata.Handoffs = []agent.HandoffDecl{
		{Label: "Development", Agent: "developer", Prompt: "p"},
		{Label: "Development", Agent: "tester", Prompt: "p"},
	}

	report := Run(context.Background(), []*agent.Agent{orchestrator, validAgent("developer"), validAgent("tester")}, nil)

	err := report.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateLabel)
}

func TestRunInferRequiresDescription(t *testing.T) {
	inferred := validAgent("router")
	inferred.Metadata.Infer = true
	inferred.Metadata.Description = ""

	report := Run(context.Background(), []*agent.Agent{inferred}, nil)

	err := report.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "infer: true")
}

func TestRunMissingRequiredFields(t *testing.T) {
	broken := &agent.Agent{Path: "broken.md"}

	report := Run(context.Background(), []*agent.Agent{broken}, nil)

	err := report.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing a name")
	assert.Contains(t, err.Error(), "missing a model")
	assert.Contains(t, err.Error(), "missing a description")
	assert.Contains(t, err.Error(), "empty system prompt")
}

func TestRunUnresolvedSkillReference(t *testing.T) {
	a := validAgent("developer")
	a.Metadata.Skills = []string{"missing-skill"}

	report := Run(context.Background(), []*agent.Agent{a}, map[string]*skills.Skill{})

	err := report.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownSkill)
}

func TestRunBadPromptTemplate(t *testing.T) {
	a := validAgent("orchestrator")
	a.Metadata.Handoffs = []agent.HandoffDecl{
		{Label: "Development", Agent: "developer", Prompt: "Implement {{.Task"},
	}

	report := Run(context.Background(), []*agent.Agent{a, validAgent("developer")}, nil)

	err := report.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt template")
}

func TestRunBadCapabilityToken(t *testing.T) {
	a := validAgent("developer")
	a.Metadata.Tools = []string{"valid_tool", "[unclosed"}

	report := Run(context.Background(), []*agent.Agent{a}, nil)

	err := report.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capability token")
}

func TestRunCollectsAllProblems(t *testing.T) {
	first := validAgent("orchestrator")
	first.Metadata.Handoffs = []agent.HandoffDecl{
		{Label: "Development", Agent: "ghost", Prompt: "p"},
	}
	second := validAgent("helper")
	second.Metadata.Model = ""

	report := Run(context.Background(), []*agent.Agent{first, second}, nil)

	require.Len(t, report.Problems, 2)
}
