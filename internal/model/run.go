package model

import "time"

// InstrumentResult is the outcome of collecting one symbol.
type InstrumentResult struct {
	Symbol string
	Record *Record
	Err    error
}

// OK reports whether the symbol made it into the snapshot.
func (r InstrumentResult) OK() bool { return r.Err == nil && r.Record != nil }

// RunReport describes one fetch run.
type RunReport struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Rate       Rate
	Results    []InstrumentResult
	// Err is set when the run itself failed (FX or persistence).
	Err error
}

// Snapshot returns the records of all successful symbols.
func (r *RunReport) Snapshot() Snapshot {
	snap := make(Snapshot, len(r.Results))
	for _, res := range r.Results {
		if res.OK() {
			snap[res.Symbol] = res.Record
		}
	}
	return snap
}

// Succeeded returns the symbols that were collected, in batch order.
func (r *RunReport) Succeeded() []string {
	var out []string
	for _, res := range r.Results {
		if res.OK() {
			out = append(out, res.Symbol)
		}
	}
	return out
}

// Failed returns the results that did not produce a record, in batch order.
func (r *RunReport) Failed() []InstrumentResult {
	var out []InstrumentResult
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}
