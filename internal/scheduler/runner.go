package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"StockBoard/internal/model"
	"StockBoard/internal/recorder"
	"StockBoard/internal/snapshot"
)

// FXResolver yields the conversion rate of a run.
type FXResolver interface {
	Resolve(ctx context.Context) (model.Rate, error)
}

// Aggregator collects the record of one symbol.
type Aggregator interface {
	Collect(ctx context.Context, symbol string, index int, rate model.Rate) (*model.Record, error)
}

// Notifier reports a finished run.
type Notifier interface {
	Notify(ctx context.Context, rep *model.RunReport) error
}

// Runner executes one fetch run: resolve FX once, collect every symbol in
// order, then persist the snapshot once.
type Runner struct {
	Symbols   []string
	FX        FXResolver
	Collector Aggregator
	Writer    snapshot.Writer
	Recorder  recorder.Recorder
	// Notifier is optional.
	Notifier Notifier
	Now      func() time.Time
}

// Run performs a full run. The returned error is non-nil only when the run
// as a whole failed: FX could not be resolved, the context was canceled,
// or the snapshot could not be written. A canceled run never writes. Failed symbols are reported in the
// RunReport and simply left out of the snapshot.
func (r *Runner) Run(ctx context.Context) (*model.RunReport, error) {
	rep := &model.RunReport{ID: uuid.NewString(), StartedAt: r.now()}
	logger := log.With().Str("run", rep.ID).Logger()
	defer r.finish(ctx, rep)

	logger.Info().Msg("resolving USD→EUR rate")
	rate, err := r.FX.Resolve(ctx)
	if err != nil {
		rep.Err = fmt.Errorf("resolve FX: %w", err)
		return rep, rep.Err
	}
	rep.Rate = rate

	logger.Info().Int("symbols", len(r.Symbols)).Msg("collecting instruments")
	for i, symbol := range r.Symbols {
		if err := ctx.Err(); err != nil {
			rep.Err = fmt.Errorf("run interrupted before %s: %w", symbol, err)
			return rep, rep.Err
		}
		rec, err := r.Collector.Collect(ctx, symbol, i, rate)
		if ctxErr := ctx.Err(); ctxErr != nil {
			// A record collected under a canceled context may be degraded.
			rep.Err = fmt.Errorf("run interrupted during %s: %w", symbol, ctxErr)
			return rep, rep.Err
		}
		if err != nil {
			logger.Warn().Err(err).Str("symbol", symbol).Msg("instrument failed")
			rep.Results = append(rep.Results, model.InstrumentResult{Symbol: symbol, Err: err})
			continue
		}
		logger.Info().Str("symbol", symbol).Msg("instrument collected")
		rep.Results = append(rep.Results, model.InstrumentResult{Symbol: symbol, Record: rec})
	}

	if err := ctx.Err(); err != nil {
		rep.Err = fmt.Errorf("run interrupted before persisting: %w", err)
		return rep, rep.Err
	}

	snap := rep.Snapshot()
	if err := r.Writer.Write(snap); err != nil {
		rep.Err = fmt.Errorf("persist snapshot: %w", err)
		return rep, rep.Err
	}
	logger.Info().
		Int("written", len(snap)).
		Int("failed", len(rep.Failed())).
		Msg("snapshot updated")
	return rep, nil
}

// finish journals and announces the run. Failures here never fail the run.
func (r *Runner) finish(ctx context.Context, rep *model.RunReport) {
	rep.FinishedAt = r.now()
	if r.Recorder != nil {
		if err := r.Recorder.RecordRun(rep); err != nil {
			log.Error().Err(err).Str("run", rep.ID).Msg("record run")
		}
	}
	if r.Notifier != nil {
		if err := r.Notifier.Notify(context.WithoutCancel(ctx), rep); err != nil {
			log.Error().Err(err).Str("run", rep.ID).Msg("send run summary")
		}
	}
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}
