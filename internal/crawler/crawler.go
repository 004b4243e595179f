package crawler

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"semgate/internal/verify"
)

// Crawler discovers verification pairs by walking a baseline tree and a
// candidate tree and matching artifacts on their relative path.
type Crawler struct {
	ignored    []string
	extensions map[string]bool
}

// NewCrawler creates a new crawler instance.
func NewCrawler() *Crawler {
	return &Crawler{
		ignored: []string{".git", "vendor", "node_modules", "testdata", "dist", "build"},
		extensions: map[string]bool{
			".js":  true,
			".jsx": true,
			".mjs": true,
			".cjs": true,
		},
	}
}

// Pairing is the result of matching two trees. Unmatched artifacts are
// surfaced rather than silently dropped so a rename in the transform output
// is visible before verification even starts.
type Pairing struct {
	Pairs         []verify.Pair
	BaselineOnly  []string
	CandidateOnly []string
}

// DiscoverPairs walks both roots and pairs artifacts by relative path.
func (c *Crawler) DiscoverPairs(baselineRoot, candidateRoot string) (*Pairing, error) {
	baseline, err := c.scanTree(baselineRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to scan baseline tree: %w", err)
	}
	candidate, err := c.scanTree(candidateRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to scan candidate tree: %w", err)
	}

	p := &Pairing{}
	for _, rel := range sortedKeys(baseline) {
		candPath, ok := candidate[rel]
		if !ok {
			p.BaselineOnly = append(p.BaselineOnly, rel)
			continue
		}

		basePair, err := loadArtifact(baseline[rel])
		if err != nil {
			return nil, err
		}
		candPair, err := loadArtifact(candPath)
		if err != nil {
			return nil, err
		}
		p.Pairs = append(p.Pairs, verify.Pair{Baseline: basePair, Candidate: candPair})
	}

	for _, rel := range sortedKeys(candidate) {
		if _, ok := baseline[rel]; !ok {
			p.CandidateOnly = append(p.CandidateOnly, rel)
		}
	}

	return p, nil
}

// scanTree walks root and returns relative path -> absolute path for every
// artifact found.
func (c *Crawler) scanTree(root string) (map[string]string, error) {
	found := make(map[string]string)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip ignored directories
		if d.IsDir() {
			for _, ign := range c.ignored {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !c.extensions[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		found[filepath.ToSlash(rel)] = path

		return nil
	})
	if err != nil {
		return nil, err
	}

	return found, nil
}

// loadArtifact reads one artifact; the slashed source path doubles as its ID.
func loadArtifact(path string) (verify.Artifact, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return verify.Artifact{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return verify.Artifact{ID: filepath.ToSlash(path), Source: source}, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
