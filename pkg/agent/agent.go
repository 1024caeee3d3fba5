// Package agent defines persona records and loads them from markdown files
// with YAML frontmatter. An agent definition carries identity, model,
// capability tokens, skill references, and hand-off declarations; the prose
// body becomes the persona's system prompt. This package only produces data
// for an external host runtime, it never executes a persona.
package agent

import (
	"github.com/gobwas/glob"
)

// Metadata represents the YAML frontmatter configuration for an agent
type Metadata struct {
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	Model       string        `json:"model" yaml:"model"`
	Infer       bool          `json:"infer,omitempty" yaml:"infer,omitempty"`       // host may auto-select this persona
	Tools       []string      `json:"tools,omitempty" yaml:"tools,omitempty"`       // capability tokens, glob patterns allowed
	Skills      []string      `json:"skills,omitempty" yaml:"skills,omitempty"`     // referenced skill documents
	Handoffs    []HandoffDecl `json:"handoffs,omitempty" yaml:"handoffs,omitempty"` // declaration order is display order
}

// HandoffDecl is one permitted delegation declared in an agent's frontmatter.
// Agent is a lookup key into the registry, not an owning reference.
type HandoffDecl struct {
	Label  string `json:"label" yaml:"label"`
	Agent  string `json:"agent" yaml:"agent"`
	Prompt string `json:"prompt" yaml:"prompt"`
	Send   bool   `json:"send,omitempty" yaml:"send,omitempty"` // true = auto-dispatch intended, false = human approval required
}

// Agent represents a loaded persona with its metadata, system prompt, and file path
type Agent struct {
	Metadata     Metadata
	SystemPrompt string
	Path         string
}

// Name returns the persona's unique name.
func (a *Agent) Name() string {
	return a.Metadata.Name
}

// Capabilities returns the ordered capability tokens the persona may invoke.
// Pure accessor, no side effects.
func (a *Agent) Capabilities() []string {
	return a.Metadata.Tools
}

// Allows reports whether the persona may invoke the given tool. Capability
// tokens are matched as glob patterns, so "git *" permits "git status".
func (a *Agent) Allows(tool string) bool {
	for _, token := range a.Metadata.Tools {
		g, err := glob.Compile(token)
		if err != nil {
			// An unparseable token never matches; validation reports it.
			continue
		}
		if g.Match(tool) {
			return true
		}
	}
	return false
}
