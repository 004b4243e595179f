package git

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

var artifactExtensions = map[string]bool{
	".js":  true,
	".jsx": true,
	".mjs": true,
	".cjs": true,
}

// IsArtifact reports whether the path looks like a verifiable script.
func IsArtifact(path string) bool {
	return artifactExtensions[strings.ToLower(filepath.Ext(path))]
}

// ShowFile returns the content of a file at the given revision, so a
// transformed working-tree file can be verified against its pre-transform
// baseline without checking the revision out.
func ShowFile(dir, rev, path string) ([]byte, error) {
	cmd := exec.Command("git", "show", rev+":"+path)
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git show %s:%s failed: %w", rev, path, err)
	}
	return output, nil
}

// ChangedArtifacts runs git diff against the base ref and returns the
// changed script files.
func ChangedArtifacts(dir, baseRef string) ([]string, error) {
	cmd := exec.Command("git", "diff", "--name-only", "--diff-filter=d", baseRef)
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w", err)
	}

	var paths []string
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		path := strings.TrimSpace(scanner.Text())
		if path == "" || !IsArtifact(path) {
			continue
		}
		paths = append(paths, path)
	}
	return paths, scanner.Err()
}
