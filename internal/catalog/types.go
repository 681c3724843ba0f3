// Package catalog classifies the top-level declarations of a parsed project
// into a per-file inventory.
//
// The engine has three stages. Select drops vendored files, Classify runs the
// seven category passes over one file, and Assemble wraps the per-file
// records in selector order. Analyzer fans Classify out over a worker pool.
package catalog

// DeclarationRecord is one matched declaration.
type DeclarationRecord struct {
	// Name is empty when the declaration form has no name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// SourceText is the verbatim source span: the whole declaration, or the
	// initializer expression for variable-bound values.
	SourceText string `json:"sourceText" yaml:"sourceText"`
}

// FileAnalysis is the inventory of one file. The lists are independent views;
// a variable can appear in both ArrowFunctions and ReactComponents.
type FileAnalysis struct {
	FilePath        string              `json:"filePath" yaml:"filePath"`
	Functions       []DeclarationRecord `json:"functions" yaml:"functions"`
	ArrowFunctions  []DeclarationRecord `json:"arrowFunctions" yaml:"arrowFunctions"`
	ReactComponents []DeclarationRecord `json:"reactComponents" yaml:"reactComponents"`
	Classes         []DeclarationRecord `json:"classes" yaml:"classes"`
	Interfaces      []DeclarationRecord `json:"interfaces" yaml:"interfaces"`
	Enums           []DeclarationRecord `json:"enums" yaml:"enums"`
	TypeAliases     []DeclarationRecord `json:"typeAliases" yaml:"typeAliases"`
}

// AnalysisResult is the inventory of a project, one entry per selected file.
type AnalysisResult struct {
	Files []FileAnalysis `json:"files" yaml:"files"`
}

// Summary describes a completed analysis.
type Summary struct {
	Selected   int
	Classified int
	Skipped    []string
}
