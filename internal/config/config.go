package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"semgate/internal/compare"
	"semgate/internal/detect"
	"semgate/internal/report"
	"semgate/internal/rules"
	"semgate/internal/verify"
)

type Config struct {
	Verify struct {
		SeverityThreshold  string  `yaml:"severity_threshold"`
		ComplexityRatioMin float64 `yaml:"complexity_ratio_min"`
		ComplexityRatioMax float64 `yaml:"complexity_ratio_max"`
		ValidationPolicy   string  `yaml:"validation_policy"`
		StrictStateKinds   bool    `yaml:"strict_state_kinds"`
		Workers            int     `yaml:"workers"`
		PairTimeoutSec     int     `yaml:"pair_timeout_sec"`
	} `yaml:"verify"`
	Rules   rules.Config `yaml:"rules"`
	History struct {
		Path string `yaml:"path"`
	} `yaml:"history"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.Verify.SeverityThreshold = string(compare.SeverityHigh)
	cfg.Verify.ComplexityRatioMin = 0.8
	cfg.Verify.ComplexityRatioMax = 1.2
	cfg.Verify.ValidationPolicy = string(detect.MatchByCount)
	cfg.Verify.Workers = 4
	cfg.Verify.PairTimeoutSec = 30
	cfg.History.Path = "semgate.db"
	return cfg
}

// Load reads the YAML config, falling back to defaults when the file is
// missing, then applies environment overrides.
func Load(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config when present
	file, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// 3. Override with environment variables if present
	if v := os.Getenv("SEMGATE_STRICT"); v != "" {
		cfg.Rules.Strict = v == "1" || v == "true"
	}
	if v := os.Getenv("SEMGATE_HISTORY_DB"); v != "" {
		cfg.History.Path = v
	}
	if v := os.Getenv("SEMGATE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Verify.Workers = n
		}
	}

	return cfg, nil
}

// VerifierOptions maps the file configuration onto engine options.
func (c *Config) VerifierOptions() verify.Options {
	opts := verify.DefaultOptions()
	opts.Compare = compare.Options{
		ComplexityRatioMin: c.Verify.ComplexityRatioMin,
		ComplexityRatioMax: c.Verify.ComplexityRatioMax,
	}
	opts.Detect = detect.Options{
		ValidationPolicy: detect.MatchPolicy(c.Verify.ValidationPolicy),
		StrictStateKinds: c.Verify.StrictStateKinds,
	}
	if c.Verify.SeverityThreshold != "" {
		opts.Report = report.Options{SeverityThreshold: compare.Severity(c.Verify.SeverityThreshold)}
	}
	opts.Rules = c.Rules
	if c.Verify.Workers > 0 {
		opts.Workers = c.Verify.Workers
	}
	if c.Verify.PairTimeoutSec > 0 {
		opts.PairTimeout = time.Duration(c.Verify.PairTimeoutSec) * time.Second
	}
	return opts
}
