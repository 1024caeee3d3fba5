// Package config loads baton's typed configuration from viper, merging the
// config file, BATON_* environment variables, and the active profile.
package config

import (
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the resolved baton configuration.
type Config struct {
	AgentDirs   []string                 `mapstructure:"agent_dirs"`
	Include     []string                 `mapstructure:"include"`
	SkillDirs   []string                 `mapstructure:"skill_dirs"`
	TasksFile   string                   `mapstructure:"tasks_file"`
	JournalPath string                   `mapstructure:"journal_path"`
	LogLevel    string                   `mapstructure:"log_level"`
	LogFormat   string                   `mapstructure:"log_format"`
	Tracing     TracingConfig            `mapstructure:"tracing"`
	Profile     string                   `mapstructure:"profile"`
	Profiles    map[string]ProfileConfig `mapstructure:"profiles"`
}

// ProfileConfig overrides a subset of the base configuration. Profiles let
// one machine switch between workspaces (different agent and skill roots)
// without editing the base file. It is a map rather than a struct so only
// the keys a profile actually sets are decoded; a struct source would write
// its zero-valued fields over the base config.
type ProfileConfig map[string]interface{}

// TracingConfig controls the OpenTelemetry exporter.
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	SamplerType  string  `mapstructure:"sampler_type"`
	SamplerRatio float64 `mapstructure:"sampler_ratio"`
}

// GetConfigFromViper builds the effective configuration, applying the active
// profile on top of the base settings.
func GetConfigFromViper() (Config, error) {
	var config Config

	if err := viper.Unmarshal(&config); err != nil {
		return config, errors.Wrap(err, "failed to unmarshal configuration")
	}

	if config.Profiles != nil {
		delete(config.Profiles, "default")
	}

	profileName := activeProfile()
	if profileName != "" {
		profile, exists := config.Profiles[profileName]
		if !exists {
			return config, errors.Errorf("profile %q is not defined", profileName)
		}
		if err := applyProfile(&config, profile); err != nil {
			return config, err
		}
	}

	applyDefaults(&config)
	return config, nil
}

func activeProfile() string {
	profile := viper.GetString("profile")
	if profile == "default" {
		return ""
	}
	return profile
}

func applyProfile(config *Config, profile ProfileConfig) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           config,
		WeaklyTypedInput: true,
		ZeroFields:       false,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create profile decoder")
	}

	if err := decoder.Decode(profile); err != nil {
		return errors.Wrap(err, "failed to apply profile configuration")
	}

	return nil
}

func applyDefaults(config *Config) {
	if config.TasksFile == "" {
		config.TasksFile = "TASKS.md"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "fmt"
	}
	if config.Tracing.SamplerType == "" {
		config.Tracing.SamplerType = "always"
	}
}
