package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/handofflabs/baton/pkg/agent"
	"github.com/handofflabs/baton/pkg/config"
	batondb "github.com/handofflabs/baton/pkg/db"
	"github.com/handofflabs/baton/pkg/handoff"
	"github.com/handofflabs/baton/pkg/journal"
	"github.com/handofflabs/baton/pkg/registry"
	"github.com/handofflabs/baton/pkg/skills"
)

// workspace bundles the loaded configuration surfaces most commands need.
type workspace struct {
	cfg    config.Config
	agents []*agent.Agent
	skills map[string]*skills.Skill
}

// loadWorkspace loads agents and skills per the effective configuration but
// performs no integrity checking; commands decide how strict to be.
func loadWorkspace(ctx context.Context) (*workspace, error) {
	cfg, err := config.GetConfigFromViper()
	if err != nil {
		return nil, err
	}

	loader, err := newAgentLoader(cfg)
	if err != nil {
		return nil, err
	}

	agents, err := loader.LoadAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load agents")
	}

	discovery, err := newSkillDiscovery(cfg)
	if err != nil {
		return nil, err
	}

	skillSet, err := discovery.DiscoverSkills()
	if err != nil {
		return nil, errors.Wrap(err, "failed to discover skills")
	}

	return &workspace{cfg: cfg, agents: agents, skills: skillSet}, nil
}

func newAgentLoader(cfg config.Config) (*agent.Loader, error) {
	var opts []agent.LoaderOption
	if len(cfg.AgentDirs) > 0 {
		opts = append(opts, agent.WithAgentDirs(cfg.AgentDirs...))
	}
	if len(cfg.Include) > 0 {
		opts = append(opts, agent.WithIncludePatterns(cfg.Include...))
	}
	return agent.NewLoader(opts...)
}

func newSkillDiscovery(cfg config.Config) (*skills.Discovery, error) {
	if len(cfg.SkillDirs) > 0 {
		return skills.NewDiscovery(skills.WithSkillDirs(cfg.SkillDirs...))
	}
	return skills.NewDiscovery()
}

// buildRegistry builds the immutable registry snapshot, failing on duplicate
// or missing names.
func (w *workspace) buildRegistry() (*registry.Registry, error) {
	return registry.New(w.agents)
}

// buildGraph builds the hand-off graph over a fresh registry snapshot.
func (w *workspace) buildGraph() (*handoff.Graph, *registry.Registry, error) {
	reg, err := w.buildRegistry()
	if err != nil {
		return nil, nil, err
	}
	return handoff.New(reg), reg, nil
}

// openJournal opens the transfer journal at the configured or default path.
func (w *workspace) openJournal(ctx context.Context) (*journal.Store, error) {
	path := w.cfg.JournalPath
	if path == "" {
		var err error
		path, err = batondb.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}
	return journal.Open(ctx, path)
}
