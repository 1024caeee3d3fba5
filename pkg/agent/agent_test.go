package agent

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAgentFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoaderLoad(t *testing.T) {
	tempDir := t.TempDir()
	agentFile := writeAgentFile(t, tempDir, "orchestrator.md", `---
name: orchestrator
description: Coordinates the team and routes work
model: gpt-4.1
infer: true
tools: [read_file, edit_file, "git *"]
skills: [security-checklist]
handoffs:
  - label: Development
    agent: developer
    prompt: "Implement the following task: {{.Task}}"
    send: false
  - label: Testing
    agent: tester
    prompt: "Verify the change described in {{.Task}}"
    send: true
---

You are the orchestrator. Route tasks to the right specialist.
`)

	loader, err := NewLoader(WithAgentDirs(tempDir))
	require.NoError(t, err)

	ctx := context.Background()
	loaded, err := loader.Load(ctx, "orchestrator")
	require.NoError(t, err)

	assert.Equal(t, "orchestrator", loaded.Metadata.Name)
	assert.Equal(t, "Coordinates the team and routes work", loaded.Metadata.Description)
	assert.Equal(t, "gpt-4.1", loaded.Metadata.Model)
	assert.True(t, loaded.Metadata.Infer)
	assert.Equal(t, []string{"read_file", "edit_file", "git *"}, loaded.Metadata.Tools)
	assert.Equal(t, []string{"security-checklist"}, loaded.Metadata.Skills)
	assert.Equal(t, agentFile, loaded.Path)
	assert.Contains(t, loaded.SystemPrompt, "You are the orchestrator.")

	require.Len(t, loaded.Metadata.Handoffs, 2)
	assert.Equal(t, HandoffDecl{
		Label:  "Development",
		Agent:  "developer",
		Prompt: "Implement the following task: {{.Task}}",
		Send:   false,
	}, loaded.Metadata.Handoffs[0])
	assert.Equal(t, "Testing", loaded.Metadata.Handoffs[1].Label)
	assert.True(t, loaded.Metadata.Handoffs[1].Send)
}

func TestLoaderLoadMissingAgent(t *testing.T) {
	loader, err := NewLoader(WithAgentDirs(t.TempDir()))
	require.NoError(t, err)

	_, err = loader.Load(context.Background(), "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestLoaderNameDefaultsToFilename(t *testing.T) {
	tempDir := t.TempDir()
	writeAgentFile(t, tempDir, "reviewer.md", `---
description: Reviews pull requests
model: gpt-4.1
---

Review carefully.
`)

	loader, err := NewLoader(WithAgentDirs(tempDir))
	require.NoError(t, err)

	loaded, err := loader.Load(context.Background(), "reviewer")
	require.NoError(t, err)
	assert.Equal(t, "reviewer", loaded.Metadata.Name)
}

func TestLoaderHandoffValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing label",
			content: `---
name: a
description: d
model: m
handoffs:
  - agent: developer
    prompt: p
---
body
`,
			wantErr: "missing a label",
		},
		{
			name: "missing target",
			content: `---
name: a
description: d
model: m
handoffs:
  - label: Development
    prompt: p
---
body
`,
			wantErr: "missing a target agent",
		},
		{
			name: "not a list",
			content: `---
name: a
description: d
model: m
handoffs: Development
---
body
`,
			wantErr: "must be a list",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			writeAgentFile(t, tempDir, "a.md", tt.content)

			loader, err := NewLoader(WithAgentDirs(tempDir))
			require.NoError(t, err)

			_, err = loader.Load(context.Background(), "a")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoaderLoadAllPrecedence(t *testing.T) {
	repoDir := t.TempDir()
	homeDir := t.TempDir()

	writeAgentFile(t, repoDir, "developer.md", `---
name: developer
description: Repo-local developer
model: gpt-4.1
---
repo body
`)
	writeAgentFile(t, homeDir, "developer.md", `---
name: developer
description: Home developer
model: gpt-4.1
---
home body
`)
	writeAgentFile(t, homeDir, "tester.md", `---
name: tester
description: Runs the test suite
model: gpt-4.1
---
test body
`)

	loader, err := NewLoader(WithAgentDirs(repoDir, homeDir))
	require.NoError(t, err)

	agents, err := loader.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, agents, 2)

	byName := make(map[string]*Agent)
	for _, a := range agents {
		byName[a.Name()] = a
	}
	assert.Equal(t, "Repo-local developer", byName["developer"].Metadata.Description)
	assert.Equal(t, "Runs the test suite", byName["tester"].Metadata.Description)
}

func TestLoaderIncludePatterns(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "team"), 0755))
	writeAgentFile(t, tempDir, "notes.txt", "not an agent")
	writeAgentFile(t, filepath.Join(tempDir, "team"), "nested.md", `---
name: nested
description: Lives in a subdirectory
model: gpt-4.1
---
body
`)

	loader, err := NewLoader(WithAgentDirs(tempDir), WithIncludePatterns("team/*.md"))
	require.NoError(t, err)

	agents, err := loader.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, "nested", agents[0].Name())
}

func TestAgentAllows(t *testing.T) {
	a := &Agent{Metadata: Metadata{Tools: []string{"read_file", "git *"}}}

	assert.True(t, a.Allows("read_file"))
	assert.True(t, a.Allows("git status"))
	assert.False(t, a.Allows("rm"))
	assert.False(t, a.Allows("read_files"))
}

func TestValidate(t *testing.T) {
	valid := &Agent{
		Metadata: Metadata{
			Name:        "developer",
			Description: "Implements changes",
			Model:       "gpt-4.1",
			Tools:       []string{"edit_file"},
		},
		SystemPrompt: "You write code.",
	}

	loader, err := NewLoader(WithAgentDirs(t.TempDir()))
	require.NoError(t, err)

	assert.NoError(t, loader.Validate(valid))

	missingName := *valid
	missingName.Metadata.Name = ""
	assert.ErrorContains(t, loader.Validate(&missingName), "name is required")

	missingModel := *valid
	missingModel.Metadata.Model = ""
	assert.ErrorContains(t, loader.Validate(&missingModel), "model is required")

	emptyPrompt := *valid
	emptyPrompt.SystemPrompt = "   \n"
	assert.ErrorContains(t, loader.Validate(&emptyPrompt), "system prompt")
}

func TestMetadataSchemaJSON(t *testing.T) {
	out, err := MetadataSchemaJSON()
	require.NoError(t, err)
	assert.Contains(t, out, `"handoffs"`)
	assert.Contains(t, out, `"tools"`)
	assert.Contains(t, out, `"infer"`)
}
