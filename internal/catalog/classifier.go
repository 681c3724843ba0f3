package catalog

import (
	"strings"

	"github.com/mvp-joe/declcat/internal/source"
)

// reactMarker is the textual hint that an initializer builds UI.
const reactMarker = "React."

// Classify runs the seven category passes over one file. A file that failed
// to parse returns its parse error and no record.
func Classify(f *source.SourceFile) (FileAnalysis, error) {
	if f.Err != nil {
		return FileAnalysis{}, f.Err
	}

	return FileAnalysis{
		FilePath:        f.Path,
		Functions:       collectFunctions(f.Decls),
		ArrowFunctions:  collectArrowFunctions(f.Decls),
		ReactComponents: collectReactComponents(f.Decls),
		Classes:         collectClasses(f.Decls),
		Interfaces:      collectInterfaces(f.Decls),
		Enums:           collectEnums(f.Decls),
		TypeAliases:     collectTypeAliases(f.Decls),
	}, nil
}

func collectFunctions(decls []source.Decl) []DeclarationRecord {
	records := []DeclarationRecord{}
	for _, d := range decls {
		if fn, ok := d.(*source.FunctionDecl); ok {
			records = append(records, DeclarationRecord{Name: fn.Name, SourceText: fn.Source})
		}
	}
	return records
}

func collectArrowFunctions(decls []source.Decl) []DeclarationRecord {
	return collectVariables(decls, isArrowFunction)
}

func collectReactComponents(decls []source.Decl) []DeclarationRecord {
	return collectVariables(decls, isReactComponent)
}

func collectClasses(decls []source.Decl) []DeclarationRecord {
	records := []DeclarationRecord{}
	for _, d := range decls {
		if c, ok := d.(*source.ClassDecl); ok {
			records = append(records, DeclarationRecord{Name: c.Name, SourceText: c.Source})
		}
	}
	return records
}

func collectInterfaces(decls []source.Decl) []DeclarationRecord {
	records := []DeclarationRecord{}
	for _, d := range decls {
		if i, ok := d.(*source.InterfaceDecl); ok {
			records = append(records, DeclarationRecord{Name: i.Name, SourceText: i.Source})
		}
	}
	return records
}

func collectEnums(decls []source.Decl) []DeclarationRecord {
	records := []DeclarationRecord{}
	for _, d := range decls {
		if e, ok := d.(*source.EnumDecl); ok {
			records = append(records, DeclarationRecord{Name: e.Name, SourceText: e.Source})
		}
	}
	return records
}

func collectTypeAliases(decls []source.Decl) []DeclarationRecord {
	records := []DeclarationRecord{}
	for _, d := range decls {
		if ta, ok := d.(*source.TypeAliasDecl); ok {
			records = append(records, DeclarationRecord{Name: ta.Name, SourceText: ta.Source})
		}
	}
	return records
}

// collectVariables records the initializer text of every variable whose
// initializer satisfies match. Variables without an initializer never match.
func collectVariables(decls []source.Decl, match func(*source.Initializer) bool) []DeclarationRecord {
	records := []DeclarationRecord{}
	for _, d := range decls {
		v, ok := d.(*source.VariableDecl)
		if !ok || v.Initializer == nil || !match(v.Initializer) {
			continue
		}
		records = append(records, DeclarationRecord{Name: v.Name, SourceText: v.Initializer.Text})
	}
	return records
}

func isArrowFunction(init *source.Initializer) bool {
	return init.Kind == source.KindArrowFunction
}

// isReactComponent is a textual heuristic: any initializer mentioning
// "React." counts, including string literals.
func isReactComponent(init *source.Initializer) bool {
	return init.Kind == source.KindJSXElement || strings.Contains(init.Text, reactMarker)
}
