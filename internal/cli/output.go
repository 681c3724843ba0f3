package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mvp-joe/declcat/internal/catalog"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// writeResult encodes result to w.
func writeResult(w io.Writer, result catalog.AnalysisResult, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(result)
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (valid: json, yaml)", format)
	}
}

// writeResultFile replaces path with the encoded result.
func writeResultFile(path string, result catalog.AnalysisResult, format string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".declcat-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeResult(tmp, result, format); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
