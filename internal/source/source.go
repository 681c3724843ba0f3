// Package source models a parsed TypeScript/JavaScript project as plain data.
//
// A Project is an ordered list of SourceFiles. Each SourceFile carries its
// top-level declarations as a closed set of Decl variants, already lowered from
// the syntax tree, so consumers never touch parser handles.
package source

// Project is an ordered collection of parsed files plus the compiler
// configuration that produced the file set.
type Project struct {
	// Root is the directory the project was loaded from.
	Root string

	// ConfigPath is the compiler configuration file used, empty when the
	// project was built from defaults.
	ConfigPath string

	// Files are in project order: explicit "files" entries first, then
	// include matches in lexical walk order.
	Files []*SourceFile
}

// SourceFile is one parsed file and its top-level declarations in source order.
type SourceFile struct {
	// Path is slash-separated and relative to Project.Root.
	Path string

	// Language is the grammar the file was parsed with.
	Language Language

	Decls []Decl

	// Err is set when the file could not be parsed into a usable tree.
	// Decls is empty in that case.
	Err error
}

// Language identifies the grammar used for a file.
type Language string

const (
	TypeScript Language = "typescript"
	TSX        Language = "tsx"
	JavaScript Language = "javascript"
)

// Functions returns the file's function declarations in source order.
func (f *SourceFile) Functions() []*FunctionDecl {
	return declsOf[*FunctionDecl](f)
}

// Variables returns the file's variable declarations in source order.
// A statement like `const a = 1, b = 2` contributes two entries.
func (f *SourceFile) Variables() []*VariableDecl {
	return declsOf[*VariableDecl](f)
}

// Classes returns the file's class declarations in source order.
func (f *SourceFile) Classes() []*ClassDecl {
	return declsOf[*ClassDecl](f)
}

// Interfaces returns the file's interface declarations in source order.
func (f *SourceFile) Interfaces() []*InterfaceDecl {
	return declsOf[*InterfaceDecl](f)
}

// Enums returns the file's enum declarations in source order.
func (f *SourceFile) Enums() []*EnumDecl {
	return declsOf[*EnumDecl](f)
}

// TypeAliases returns the file's type alias declarations in source order.
func (f *SourceFile) TypeAliases() []*TypeAliasDecl {
	return declsOf[*TypeAliasDecl](f)
}

func declsOf[T Decl](f *SourceFile) []T {
	var out []T
	for _, d := range f.Decls {
		if v, ok := d.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
