package main

import (
	"context"

	"github.com/spf13/viper"

	"github.com/handofflabs/baton/pkg/telemetry"
	"github.com/handofflabs/baton/pkg/version"
)

// initTracing initializes the OpenTelemetry tracing system
func initTracing(ctx context.Context) (func(context.Context) error, error) {
	config := telemetry.Config{
		Enabled:        viper.GetBool("tracing.enabled"),
		ServiceName:    "baton",
		ServiceVersion: version.Get().Version,
		SamplerType:    viper.GetString("tracing.sampler_type"),
		SamplerRatio:   viper.GetFloat64("tracing.sampler_ratio"),
	}

	return telemetry.InitTracer(ctx, config)
}

func init() {
	rootCmd.PersistentFlags().Bool("tracing-enabled", false, "Enable OpenTelemetry tracing")
	rootCmd.PersistentFlags().String("tracing-sampler", "always", "Tracing sampler type (always, never, ratio)")
	rootCmd.PersistentFlags().Float64("tracing-ratio", 1, "Sampling ratio when using ratio sampler")

	viper.BindPFlag("tracing.enabled", rootCmd.PersistentFlags().Lookup("tracing-enabled"))
	viper.BindPFlag("tracing.sampler_type", rootCmd.PersistentFlags().Lookup("tracing-sampler"))
	viper.BindPFlag("tracing.sampler_ratio", rootCmd.PersistentFlags().Lookup("tracing-ratio"))
}
