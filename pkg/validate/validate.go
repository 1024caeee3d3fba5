// Package validate implements the load-time integrity pass over the whole
// declarative configuration: agents, hand-off edges, and skill references.
// Every failure it reports is an authoring mistake in static configuration;
// none are retryable or transient, so the pass collects all of them and the
// caller fails loudly instead of degrading.
package validate

import (
	"context"
	"strings"

	"github.com/gobwas/glob"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/handofflabs/baton/pkg/agent"
	"github.com/handofflabs/baton/pkg/handoff"
	"github.com/handofflabs/baton/pkg/logger"
	"github.com/handofflabs/baton/pkg/registry"
	"github.com/handofflabs/baton/pkg/skills"
)

var (
	// ErrDuplicateLabel is reported when two edges from the same source
	// share a label. Labels must be unique per source so that a transfer
	// request is unambiguous.
	ErrDuplicateLabel = errors.New("duplicate hand-off label")

	// ErrUnknownSkill is reported when an agent references a skill document
	// that no configured directory provides.
	ErrUnknownSkill = errors.New("unresolved skill reference")
)

// Report summarizes one integrity pass.
type Report struct {
	Agents   int
	Skills   int
	Edges    int
	Problems []error
}

// Err returns all collected problems as a single error, or nil when the
// configuration is sound.
func (r *Report) Err() error {
	var result *multierror.Error
	for _, p := range r.Problems {
		result = multierror.Append(result, p)
	}
	return result.ErrorOrNil()
}

func (r *Report) add(err error) {
	r.Problems = append(r.Problems, err)
}

// Run checks the full configuration and returns a report carrying every
// problem found. It never stops at the first failure.
func Run(ctx context.Context, agents []*agent.Agent, skillSet map[string]*skills.Skill) *Report {
	report := &Report{
		Agents: len(agents),
		Skills: len(skillSet),
	}

	byName := make(map[string]*agent.Agent, len(agents))
	for _, a := range agents {
		checkRequiredFields(report, a)

		name := a.Name()
		if name == "" {
			continue
		}
		if _, exists := byName[name]; exists {
			report.add(errors.Wrapf(registry.ErrDuplicateName, "%q (defined again at %s)", name, a.Path))
			continue
		}
		byName[name] = a
	}

	for _, a := range agents {
		checkCapabilities(report, a)
		checkSkillReferences(report, a, skillSet)
		checkHandoffs(report, a, byName)
		report.Edges += len(a.Metadata.Handoffs)
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"agents":   report.Agents,
		"skills":   report.Skills,
		"edges":    report.Edges,
		"problems": len(report.Problems),
	}).Debug("Completed integrity pass")

	return report
}

func checkRequiredFields(report *Report, a *agent.Agent) {
	if a.Name() == "" {
		report.add(errors.Errorf("agent at %s is missing a name", a.Path))
	}
	if a.Metadata.Model == "" {
		report.add(errors.Errorf("agent %q is missing a model", describeAgent(a)))
	}
	if a.Metadata.Description == "" {
		if a.Metadata.Infer {
			// The host's auto-selection heuristic depends on the description.
			report.add(errors.Errorf("agent %q declares infer: true but has no description", describeAgent(a)))
		} else {
			report.add(errors.Errorf("agent %q is missing a description", describeAgent(a)))
		}
	}
	if strings.TrimSpace(a.SystemPrompt) == "" {
		report.add(errors.Errorf("agent %q has an empty system prompt", describeAgent(a)))
	}
}

func checkCapabilities(report *Report, a *agent.Agent) {
	for _, token := range a.Metadata.Tools {
		if strings.TrimSpace(token) == "" {
			report.add(errors.Errorf("agent %q declares an empty capability token", describeAgent(a)))
			continue
		}
		if _, err := glob.Compile(token); err != nil {
			report.add(errors.Wrapf(err, "agent %q has an unparseable capability token %q", describeAgent(a), token))
		}
	}
}

func checkSkillReferences(report *Report, a *agent.Agent, skillSet map[string]*skills.Skill) {
	for _, ref := range a.Metadata.Skills {
		if _, exists := skillSet[ref]; !exists {
			report.add(errors.Wrapf(ErrUnknownSkill, "agent %q references %q", describeAgent(a), ref))
		}
	}
}

func checkHandoffs(report *Report, a *agent.Agent, byName map[string]*agent.Agent) {
	seenLabels := make(map[string]bool)
	for _, decl := range a.Metadata.Handoffs {
		if seenLabels[decl.Label] {
			report.add(errors.Wrapf(ErrDuplicateLabel, "%q declared twice on agent %q", decl.Label, describeAgent(a)))
		}
		seenLabels[decl.Label] = true

		if _, exists := byName[decl.Agent]; !exists {
			report.add(errors.Wrapf(handoff.ErrDanglingTarget, "edge %q from %q references %q", decl.Label, describeAgent(a), decl.Agent))
		}

		if err := handoff.ParsePrompt(decl.Prompt); err != nil {
			report.add(errors.Wrapf(err, "edge %q from %q", decl.Label, describeAgent(a)))
		}
	}
}

func describeAgent(a *agent.Agent) string {
	if a.Name() != "" {
		return a.Name()
	}
	return a.Path
}
