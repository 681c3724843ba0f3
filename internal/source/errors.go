package source

import (
	"errors"
	"fmt"
)

// ErrMalformed is matched by every ParseError.
var ErrMalformed = errors.New("malformed source file")

// ParseError reports a file whose syntax tree contains errors.
// Line and Column are 1-indexed and point at the first error node.
type ParseError struct {
	Path   string
	Line   int
	Column int
	// Detail is a short description of the offending node.
	Detail string
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s:%d:%d: syntax error", e.Path, e.Line, e.Column)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ParseError) Is(target error) bool {
	return target == ErrMalformed
}
