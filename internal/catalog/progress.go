package catalog

// ProgressReporter receives analysis events. Methods may be called from
// several goroutines at once.
type ProgressReporter interface {
	OnClassifyStart(totalFiles int)
	OnFileClassified(path string)
	OnFileSkipped(path string, err error)
	OnClassifyComplete(summary Summary)
	// OnClassifyFailed ends an analysis that stopped early; OnClassifyComplete
	// is not called in that case.
	OnClassifyFailed(err error)
}

// NoOpProgressReporter ignores all events.
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnClassifyStart(int)         {}
func (NoOpProgressReporter) OnFileClassified(string)     {}
func (NoOpProgressReporter) OnFileSkipped(string, error) {}
func (NoOpProgressReporter) OnClassifyComplete(Summary)  {}
func (NoOpProgressReporter) OnClassifyFailed(error)      {}
