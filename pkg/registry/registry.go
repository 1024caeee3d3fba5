// Package registry holds the canonical, immutable set of personas for one
// session and answers identity lookups. The registry is built once from
// loaded agent definitions; duplicate names are rejected at build time and
// no mutation is possible afterwards.
package registry

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/handofflabs/baton/pkg/agent"
	"github.com/handofflabs/baton/pkg/logger"
)

// ErrNotFound is returned by Resolve when no agent with the requested name
// is registered. Because the registry is a static snapshot, this is a
// configuration error, not a runtime-recoverable condition.
var ErrNotFound = errors.New("agent not found in registry")

// ErrDuplicateName is returned by New when two definitions share a name.
var ErrDuplicateName = errors.New("duplicate agent name")

// Registry is a read-only snapshot of the loaded personas.
type Registry struct {
	byName map[string]*agent.Agent
	order  []string // registration order, for deterministic listings
}

// New builds a registry from loaded agents, rejecting duplicate names.
func New(agents []*agent.Agent) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]*agent.Agent, len(agents)),
	}

	for _, a := range agents {
		name := a.Name()
		if name == "" {
			return nil, errors.Errorf("agent loaded from %s has no name", a.Path)
		}
		if _, exists := r.byName[name]; exists {
			return nil, errors.Wrapf(ErrDuplicateName, "%q", name)
		}
		r.byName[name] = a
		r.order = append(r.order, name)
	}

	return r, nil
}

// Load builds a registry using the given loader's configured directories.
func Load(ctx context.Context, loader *agent.Loader) (*Registry, error) {
	agents, err := loader.LoadAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load agents")
	}

	r, err := New(agents)
	if err != nil {
		return nil, err
	}

	logger.G(ctx).WithField("count", len(agents)).Debug("Built agent registry")
	return r, nil
}

// Resolve returns the agent with the given name or ErrNotFound.
func (r *Registry) Resolve(name string) (*agent.Agent, error) {
	a, ok := r.byName[name]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%q", name)
	}
	return a, nil
}

// Capabilities returns the capability tokens of the named agent.
func (r *Registry) Capabilities(name string) ([]string, error) {
	a, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	return a.Capabilities(), nil
}

// Agents returns all registered agents in registration order.
func (r *Registry) Agents() []*agent.Agent {
	agents := make([]*agent.Agent, 0, len(r.order))
	for _, name := range r.order {
		agents = append(agents, r.byName[name])
	}
	return agents
}

// Names returns the sorted names of all registered agents.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	return len(r.byName)
}
