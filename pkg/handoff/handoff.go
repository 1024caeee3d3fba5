// Package handoff models the declarative delegation graph between personas.
// Edges are declared in agent frontmatter and validated against the registry;
// the graph answers one-hop lookups only. Constructing a transfer never
// dispatches it: requests with send=false wait for human approval, and even
// send=true dispatch belongs entirely to the host runtime.
package handoff

import (
	"context"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/handofflabs/baton/pkg/agent"
	"github.com/handofflabs/baton/pkg/logger"
	"github.com/handofflabs/baton/pkg/registry"
)

var (
	// ErrUnknownEdge is returned when no edge with the requested label
	// leaves the source agent.
	ErrUnknownEdge = errors.New("unknown hand-off edge")

	// ErrDanglingTarget is returned when an edge references a target agent
	// that does not exist in the registry. This is a configuration
	// integrity failure, never transient.
	ErrDanglingTarget = errors.New("hand-off target not in registry")
)

// Edge is one permitted delegation from a source agent to a target agent.
// It holds lookup keys into the registry, not the agents themselves.
type Edge struct {
	Source string
	Target string
	Label  string
	Prompt string
	Send   bool
}

// TransferRequest is the product of Transfer: everything the host runtime
// needs to dispatch a delegation, without the dispatch itself.
type TransferRequest struct {
	ID        string
	Source    string
	Target    string
	Label     string
	Prompt    string // rendered prompt template
	Send      bool   // false = requires explicit human approval
	CreatedAt time.Time
}

// Graph is the set of declared hand-off edges over a registry snapshot.
type Graph struct {
	registry *registry.Registry
	edges    map[string][]Edge // keyed by source name, declaration order
}

// New builds the hand-off graph from the registry's agents. Edge endpoints
// are not resolved here; integrity checking is the validation pass's job
// and Transfer re-checks at lookup time.
func New(reg *registry.Registry) *Graph {
	g := &Graph{
		registry: reg,
		edges:    make(map[string][]Edge),
	}

	for _, a := range reg.Agents() {
		for _, decl := range a.Metadata.Handoffs {
			g.edges[a.Name()] = append(g.edges[a.Name()], Edge{
				Source: a.Name(),
				Target: decl.Agent,
				Label:  decl.Label,
				Prompt: decl.Prompt,
				Send:   decl.Send,
			})
		}
	}

	return g
}

// Outgoing returns the edges leaving the named source agent as a lazy,
// restartable sequence in declaration order. Declaration order is meaningful:
// it determines default display and selection order in the host UI.
func (g *Graph) Outgoing(source string) iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		for _, e := range g.edges[source] {
			if !yield(e) {
				return
			}
		}
	}
}

// Edges returns every edge in the graph, grouped by source in registry
// registration order.
func (g *Graph) Edges() []Edge {
	var all []Edge
	for _, a := range g.registry.Agents() {
		all = append(all, g.edges[a.Name()]...)
	}
	return all
}

// Transfer validates that an edge with the given label leaves the source
// agent, resolves the target, renders the prompt template with the payload,
// and returns the resulting request. It never marks the target active or
// dispatches anything.
func (g *Graph) Transfer(ctx context.Context, source, label string, payload map[string]string) (*TransferRequest, error) {
	if _, err := g.registry.Resolve(source); err != nil {
		return nil, errors.Wrapf(err, "hand-off source %q", source)
	}

	var edge *Edge
	for e := range g.Outgoing(source) {
		if e.Label == label {
			edge = &e
			break
		}
	}
	if edge == nil {
		return nil, errors.Wrapf(ErrUnknownEdge, "no edge labeled %q from %q", label, source)
	}

	target, err := g.registry.Resolve(edge.Target)
	if err != nil {
		return nil, errors.Wrapf(ErrDanglingTarget, "edge %q from %q references %q", label, source, edge.Target)
	}

	prompt, err := RenderPrompt(edge.Prompt, payload)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to render prompt for edge %q from %q", label, source)
	}

	req := &TransferRequest{
		ID:        uuid.NewString(),
		Source:    source,
		Target:    target.Name(),
		Label:     label,
		Prompt:    prompt,
		Send:      edge.Send,
		CreatedAt: time.Now().UTC(),
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"id":     req.ID,
		"source": req.Source,
		"target": req.Target,
		"label":  req.Label,
		"send":   req.Send,
	}).Debug("Constructed transfer request")

	return req, nil
}

// Resolve returns the target agent of the given edge via the registry.
func (g *Graph) Resolve(e Edge) (*agent.Agent, error) {
	target, err := g.registry.Resolve(e.Target)
	if err != nil {
		return nil, errors.Wrapf(ErrDanglingTarget, "edge %q from %q references %q", e.Label, e.Source, e.Target)
	}
	return target, nil
}
