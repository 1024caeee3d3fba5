package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/handofflabs/baton/pkg/logger"
	"github.com/handofflabs/baton/pkg/presenter"
	"github.com/handofflabs/baton/pkg/telemetry"
	"github.com/handofflabs/baton/pkg/validate"
)

// ValidateConfig holds configuration for the validate command
type ValidateConfig struct {
	Watch        bool
	DebounceTime int
}

// NewValidateConfig creates a new ValidateConfig with default values
func NewValidateConfig() *ValidateConfig {
	return &ValidateConfig{
		Watch:        false,
		DebounceTime: 500,
	}
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the integrity of the workspace configuration",
	Long: `Load every agent definition and skill document and run the full
integrity pass: duplicate names, dangling hand-off targets, duplicate
labels, unresolved skill references, and malformed prompt templates.

All failures are authoring mistakes in static configuration; the command
lists every problem and exits non-zero if any were found.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg := getValidateConfigFromFlags(cmd)

		if !cfg.Watch {
			if ok := runValidation(ctx); !ok {
				os.Exit(1)
			}
			return nil
		}

		return watchAndValidate(ctx, cfg)
	},
}

func init() {
	defaults := NewValidateConfig()
	validateCmd.Flags().BoolP("watch", "w", defaults.Watch, "Re-run validation whenever configuration files change")
	validateCmd.Flags().Int("debounce", defaults.DebounceTime, "Milliseconds to wait after a change before revalidating")
	rootCmd.AddCommand(validateCmd)
}

func getValidateConfigFromFlags(cmd *cobra.Command) *ValidateConfig {
	cfg := NewValidateConfig()
	if watch, err := cmd.Flags().GetBool("watch"); err == nil {
		cfg.Watch = watch
	}
	if debounce, err := cmd.Flags().GetInt("debounce"); err == nil {
		cfg.DebounceTime = debounce
	}
	return cfg
}

// runValidation executes one full integrity pass and reports the outcome.
// Returns true when the configuration is sound.
func runValidation(ctx context.Context) bool {
	var report *validate.Report

	err := telemetry.WithSpan(ctx, "validate.run", func(ctx context.Context) error {
		ws, err := loadWorkspace(ctx)
		if err != nil {
			return err
		}
		report = validate.Run(ctx, ws.agents, ws.skills)
		telemetry.SetAttributes(ctx,
			attribute.Int("agents", report.Agents),
			attribute.Int("problems", len(report.Problems)),
		)
		return nil
	})
	if err != nil {
		presenter.Error(err, "Failed to load workspace")
		return false
	}

	presenter.Summary(&presenter.ValidationSummary{
		Agents:   report.Agents,
		Skills:   report.Skills,
		Edges:    report.Edges,
		Problems: len(report.Problems),
	})

	if verr := report.Err(); verr != nil {
		if merr, ok := verr.(*multierror.Error); ok {
			for _, p := range merr.Errors {
				presenter.Error(p, "")
			}
		} else {
			presenter.Error(verr, "")
		}
		return false
	}

	presenter.Success("Configuration is valid")
	return true
}

// watchAndValidate re-runs the integrity pass whenever a watched directory
// changes, until interrupted.
func watchAndValidate(ctx context.Context, cfg *ValidateConfig) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		presenter.Info("Stopping watch mode")
		cancel()
	}()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	ws, err := loadWorkspace(ctx)
	if err != nil {
		return err
	}
	for _, dir := range watchableDirs(ws) {
		if err := watcher.Add(dir); err != nil {
			logger.G(ctx).WithField("dir", dir).WithError(err).Debug("Cannot watch directory, skipping")
			continue
		}
		logger.G(ctx).WithField("dir", dir).Debug("Watching directory")
	}

	runValidation(ctx)
	presenter.Info("Watching for configuration changes (Ctrl-C to stop)...")

	debounce := time.Duration(cfg.DebounceTime) * time.Millisecond
	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			logger.G(ctx).WithField("file", event.Name).Debug("Configuration change detected")
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			presenter.Error(err, "Watcher error")
		case <-pending:
			presenter.Separator()
			runValidation(ctx)
		}
	}
}

// watchableDirs returns the configured directories that exist on disk. The
// watch list is a fresh slice so it never aliases the config's backing array.
func watchableDirs(ws *workspace) []string {
	agentDirs := ws.cfg.AgentDirs
	if len(agentDirs) == 0 {
		agentDirs = []string{"./agents"}
	}
	skillDirs := ws.cfg.SkillDirs
	if len(skillDirs) == 0 {
		skillDirs = []string{"./.baton/skills"}
	}

	dirs := make([]string, 0, len(agentDirs)+len(skillDirs))
	dirs = append(dirs, agentDirs...)
	dirs = append(dirs, skillDirs...)

	var existing []string
	for _, dir := range dirs {
		if _, err := os.Stat(dir); err == nil {
			existing = append(existing, dir)
		}
	}
	return existing
}
