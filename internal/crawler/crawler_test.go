package crawler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrawler_DiscoverPairs(t *testing.T) {
	baseRoot := t.TempDir()
	candRoot := t.TempDir()

	writeFile(t, baseRoot, "src/login.jsx", "function login() { return true; }")
	writeFile(t, baseRoot, "src/utils/format.js", "export function format(v) { return v; }")
	writeFile(t, baseRoot, "src/removed.js", "function gone() {}")
	writeFile(t, baseRoot, "README.md", "not an artifact")
	writeFile(t, baseRoot, "node_modules/dep/index.js", "module.exports = {};")

	writeFile(t, candRoot, "src/login.jsx", "function login() { return true; }")
	writeFile(t, candRoot, "src/utils/format.js", "export function format(v) { return v; }")
	writeFile(t, candRoot, "src/added.js", "function fresh() {}")

	c := NewCrawler()
	pairing, err := c.DiscoverPairs(baseRoot, candRoot)
	require.NoError(t, err)

	t.Run("Matched pairs", func(t *testing.T) {
		require.Len(t, pairing.Pairs, 2)
		assert.Equal(t, filepath.ToSlash(filepath.Join(baseRoot, "src/login.jsx")), pairing.Pairs[0].Baseline.ID)
		assert.Equal(t, filepath.ToSlash(filepath.Join(candRoot, "src/login.jsx")), pairing.Pairs[0].Candidate.ID)
		assert.Equal(t, "function login() { return true; }", string(pairing.Pairs[0].Baseline.Source))
	})

	t.Run("Unmatched artifacts surfaced", func(t *testing.T) {
		assert.Equal(t, []string{"src/removed.js"}, pairing.BaselineOnly)
		assert.Equal(t, []string{"src/added.js"}, pairing.CandidateOnly)
	})

	t.Run("Ignored directories and non-artifacts skipped", func(t *testing.T) {
		for _, pair := range pairing.Pairs {
			assert.NotContains(t, pair.Baseline.ID, "node_modules")
			assert.NotContains(t, pair.Baseline.ID, "README")
		}
	})
}

func TestCrawler_DiscoverPairs_MissingRoot(t *testing.T) {
	c := NewCrawler()
	_, err := c.DiscoverPairs(filepath.Join(t.TempDir(), "nope"), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "baseline")
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
