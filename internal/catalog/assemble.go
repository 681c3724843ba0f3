package catalog

// Assemble wraps per-file records into a result without reordering,
// deduplicating or merging them.
func Assemble(files []FileAnalysis) AnalysisResult {
	result := AnalysisResult{Files: make([]FileAnalysis, 0, len(files))}
	result.Files = append(result.Files, files...)
	return result
}
