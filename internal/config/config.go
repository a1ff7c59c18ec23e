package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/dataset"
	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/pipeline"
	"github.com/Vincent-Maladiere/time-varying-survival-analysis/internal/sampling"
)

const cutoffDateFormat = "2006-01-02"

// RegisterDefaults installs the default settings for every configurable key.
func RegisterDefaults() {
	viper.SetDefault("database.path", "$HOME/.local/share/risk/risk.db")
	viper.SetDefault("model.name", "empirical-incidence")
	viper.SetDefault("model.version", "dev")
	viper.SetDefault("model.artifact_dir", "$HOME/.local/share/risk/models")
	viper.SetDefault("model.termination_limit_days", 150)

	defaults := sampling.DefaultConfig()
	viper.SetDefault("sampling.period_days", defaults.PeriodDays)
	viper.SetDefault("sampling.max_draws", defaults.MaxDraws)
	viper.SetDefault("sampling.term_limit_days", defaults.TermLimitDays)
	viper.SetDefault("sampling.seed", defaults.Seed)

	viper.SetDefault("dataset.cutoff_date", dataset.DefaultCutoffDate.Format(cutoffDateFormat))
	viper.SetDefault("dataset.fraud_denylist", dataset.DefaultFraudDenylist)
}

// DatabasePath returns the configured database location with ~ and
// environment variables expanded.
func DatabasePath() string {
	return ExpandPath(viper.GetString("database.path"))
}

// LoadPipeline assembles the batch task configuration from viper.
func LoadPipeline() (pipeline.Config, error) {
	var cfg pipeline.Config

	cutoffRaw := viper.GetString("dataset.cutoff_date")
	cutoff, err := time.ParseInLocation(cutoffDateFormat, cutoffRaw, time.UTC)
	if err != nil {
		return cfg, fmt.Errorf("invalid dataset.cutoff_date %q: %w", cutoffRaw, err)
	}

	cfg.ModelName = viper.GetString("model.name")
	cfg.ModelVersion = viper.GetString("model.version")
	cfg.ArtifactDir = ExpandPath(viper.GetString("model.artifact_dir"))
	cfg.TerminationLimitDays = viper.GetInt("model.termination_limit_days")

	cfg.Dataset = dataset.Config{
		Now:        time.Now().UTC(),
		CutoffDate: cutoff,
		FraudList:  viper.GetStringSlice("dataset.fraud_denylist"),
		Sampling: sampling.Config{
			PeriodDays:    viper.GetInt("sampling.period_days"),
			MaxDraws:      viper.GetInt("sampling.max_draws"),
			TermLimitDays: viper.GetInt("sampling.term_limit_days"),
			Seed:          viper.GetInt64("sampling.seed"),
		},
	}

	return cfg, nil
}
