package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPolicy is returned for unknown parse-error policies.
var ErrInvalidPolicy = errors.New("invalid parse error policy")

// Policy decides what happens when a selected file failed to parse.
// It is applied to every file of an analysis.
type Policy string

const (
	// PolicyAbort fails the whole analysis on the first malformed file.
	PolicyAbort Policy = "abort"
	// PolicySkip leaves malformed files out of the result and continues.
	PolicySkip Policy = "skip"
)

// ParsePolicy converts a configuration value into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyAbort, PolicySkip:
		return p, nil
	case "":
		return PolicyAbort, nil
	default:
		return "", fmt.Errorf("%w: must be 'abort' or 'skip', got '%s'", ErrInvalidPolicy, s)
	}
}
