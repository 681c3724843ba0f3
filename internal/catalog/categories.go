package catalog

import (
	"fmt"
	"strings"
)

// Category names one of the seven declaration lists.
type Category string

const (
	CategoryFunctions       Category = "functions"
	CategoryArrowFunctions  Category = "arrowFunctions"
	CategoryReactComponents Category = "reactComponents"
	CategoryClasses         Category = "classes"
	CategoryInterfaces      Category = "interfaces"
	CategoryEnums           Category = "enums"
	CategoryTypeAliases     Category = "typeAliases"
)

// Categories lists every category in output order.
var Categories = []Category{
	CategoryFunctions,
	CategoryArrowFunctions,
	CategoryReactComponents,
	CategoryClasses,
	CategoryInterfaces,
	CategoryEnums,
	CategoryTypeAliases,
}

// ParseCategories resolves category names case-insensitively.
func ParseCategories(names []string) ([]Category, error) {
	out := make([]Category, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		found := false
		for _, c := range Categories {
			if strings.EqualFold(string(c), name) {
				out = append(out, c)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown category %q", name)
		}
	}
	return out, nil
}

// Records returns the list for a category.
func (fa *FileAnalysis) Records(c Category) []DeclarationRecord {
	switch c {
	case CategoryFunctions:
		return fa.Functions
	case CategoryArrowFunctions:
		return fa.ArrowFunctions
	case CategoryReactComponents:
		return fa.ReactComponents
	case CategoryClasses:
		return fa.Classes
	case CategoryInterfaces:
		return fa.Interfaces
	case CategoryEnums:
		return fa.Enums
	case CategoryTypeAliases:
		return fa.TypeAliases
	}
	return nil
}

// Only returns a copy of the result where lists outside keep are emptied.
// An empty keep returns the result unchanged. Files are never dropped.
func (r AnalysisResult) Only(keep ...Category) AnalysisResult {
	if len(keep) == 0 {
		return r
	}
	wanted := make(map[Category]bool, len(keep))
	for _, c := range keep {
		wanted[c] = true
	}

	out := AnalysisResult{Files: make([]FileAnalysis, 0, len(r.Files))}
	for _, fa := range r.Files {
		filtered := FileAnalysis{FilePath: fa.FilePath}
		filtered.Functions = keepIf(wanted[CategoryFunctions], fa.Functions)
		filtered.ArrowFunctions = keepIf(wanted[CategoryArrowFunctions], fa.ArrowFunctions)
		filtered.ReactComponents = keepIf(wanted[CategoryReactComponents], fa.ReactComponents)
		filtered.Classes = keepIf(wanted[CategoryClasses], fa.Classes)
		filtered.Interfaces = keepIf(wanted[CategoryInterfaces], fa.Interfaces)
		filtered.Enums = keepIf(wanted[CategoryEnums], fa.Enums)
		filtered.TypeAliases = keepIf(wanted[CategoryTypeAliases], fa.TypeAliases)
		out.Files = append(out.Files, filtered)
	}
	return out
}

// Count returns the number of records per category across all files.
func (r AnalysisResult) Count() map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for i := range r.Files {
		for _, c := range Categories {
			counts[c] += len(r.Files[i].Records(c))
		}
	}
	return counts
}

func keepIf(keep bool, records []DeclarationRecord) []DeclarationRecord {
	if keep {
		return records
	}
	return []DeclarationRecord{}
}
