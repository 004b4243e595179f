package ast

import "fmt"

// ParseError reports syntactically invalid source. It is fatal for the
// affected artifact pair only; batch runs record it and continue.
type ParseError struct {
	ArtifactID string
	Line       int
	Column     int
	Snippet    string
}

func (e *ParseError) Error() string {
	if e.Snippet != "" {
		return fmt.Sprintf("syntax error in %s at %d:%d near %q", e.ArtifactID, e.Line, e.Column, e.Snippet)
	}
	return fmt.Sprintf("syntax error in %s at %d:%d", e.ArtifactID, e.Line, e.Column)
}
