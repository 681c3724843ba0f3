package catalog

import (
	"strings"

	"github.com/mvp-joe/declcat/internal/source"
)

// DefaultVendorMarker identifies third-party dependency trees.
const DefaultVendorMarker = "node_modules"

// Selector filters a project's files down to the ones worth analyzing.
type Selector struct {
	// Marker is matched as a plain substring of the file path.
	// An empty marker excludes nothing.
	Marker string
}

// NewSelector returns a Selector using the given marker.
func NewSelector(marker string) Selector {
	return Selector{Marker: marker}
}

// Select returns every file whose path does not contain the marker, in the
// project's original order. No other filtering is applied.
func (s Selector) Select(p *source.Project) []*source.SourceFile {
	selected := []*source.SourceFile{}
	if p == nil {
		return selected
	}
	for _, f := range p.Files {
		if s.Marker != "" && strings.Contains(f.Path, s.Marker) {
			continue
		}
		selected = append(selected, f)
	}
	return selected
}
