package extractor

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeBody collapses all whitespace runs so that pure formatting changes
// do not register as structural diffs.
func NormalizeBody(body string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(body, " "))
}

// ContentHash computes a fixed-length digest of the normalized body text.
func ContentHash(body string) string {
	sum := sha256.Sum256([]byte(NormalizeBody(body)))
	return hex.EncodeToString(sum[:8])
}
