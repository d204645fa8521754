package recorder

import "StockBoard/internal/model"

// Recorder keeps a journal of fetch runs for diagnostics. It stores outcomes
// only, never price history.
type Recorder interface {
	RecordRun(rep *model.RunReport) error
	Close() error
}
