package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semgate/internal/compare"
	"semgate/internal/detect"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, string(compare.SeverityHigh), cfg.Verify.SeverityThreshold)
	assert.InDelta(t, 0.8, cfg.Verify.ComplexityRatioMin, 0.001)
	assert.InDelta(t, 1.2, cfg.Verify.ComplexityRatioMax, 0.001)
	assert.Equal(t, 4, cfg.Verify.Workers)
	assert.Equal(t, "semgate.db", cfg.History.Path)
}

func TestLoad_YAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "semgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
verify:
  severity_threshold: medium
  validation_policy: names
  strict_state_kinds: true
  workers: 2
  pair_timeout_sec: 5
rules:
  strict: true
  disabled_rules:
    - artifact-naming
history:
  path: runs.db
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "medium", cfg.Verify.SeverityThreshold)
	assert.Equal(t, "names", cfg.Verify.ValidationPolicy)
	assert.True(t, cfg.Verify.StrictStateKinds)
	assert.True(t, cfg.Rules.Strict)
	assert.Equal(t, []string{"artifact-naming"}, cfg.Rules.DisabledRules)
	assert.Equal(t, "runs.db", cfg.History.Path)

	opts := cfg.VerifierOptions()
	assert.Equal(t, compare.SeverityMedium, opts.Report.SeverityThreshold)
	assert.Equal(t, detect.MatchByNames, opts.Detect.ValidationPolicy)
	assert.Equal(t, 2, opts.Workers)
	assert.Equal(t, 5*time.Second, opts.PairTimeout)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "semgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("verify: ["), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SEMGATE_STRICT", "true")
	t.Setenv("SEMGATE_HISTORY_DB", "/tmp/override.db")
	t.Setenv("SEMGATE_WORKERS", "8")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.True(t, cfg.Rules.Strict)
	assert.Equal(t, "/tmp/override.db", cfg.History.Path)
	assert.Equal(t, 8, cfg.Verify.Workers)
}

func TestVerifierOptions_PreservesDefaults(t *testing.T) {
	opts := Default().VerifierOptions()

	assert.InDelta(t, 0.8, opts.Compare.ComplexityRatioMin, 0.001)
	assert.InDelta(t, 1.2, opts.Compare.ComplexityRatioMax, 0.001)
	assert.Equal(t, detect.MatchByCount, opts.Detect.ValidationPolicy)
	assert.Equal(t, compare.SeverityHigh, opts.Report.SeverityThreshold)
	assert.Equal(t, 30*time.Second, opts.PairTimeout)
}
