package fx

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"StockBoard/internal/model"
)

// ProviderFailure is the reason one source could not deliver a rate.
type ProviderFailure struct {
	Provider string
	Err      error
}

func (f ProviderFailure) Error() string {
	return f.Provider + ": " + f.Err.Error()
}

func (f ProviderFailure) Unwrap() error { return f.Err }

// ExhaustedError is returned when every source failed. It keeps each
// individual reason in the order the sources were tried.
type ExhaustedError struct {
	Failures []ProviderFailure
}

func (e *ExhaustedError) Error() string {
	reasons := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		reasons[i] = f.Error()
	}
	return "all FX sources failed: " + strings.Join(reasons, " | ")
}

func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// Resolver tries its providers one after another and returns the first valid rate.
type Resolver struct {
	Providers []Provider
	Now       func() time.Time
}

// NewResolver creates a resolver that tries providers in the given order.
func NewResolver(providers ...Provider) *Resolver {
	return &Resolver{Providers: providers, Now: time.Now}
}

// Resolve returns the USD→EUR rate from the first provider that succeeds.
func (r *Resolver) Resolve(ctx context.Context) (model.Rate, error) {
	failures := make([]ProviderFailure, 0, len(r.Providers))
	for _, p := range r.Providers {
		v, err := p.Rate(ctx)
		if err == nil {
			err = validate(v)
		}
		if err == nil {
			log.Info().Str("provider", p.Name()).Msgf("FX via %s: 1 USD = %.4f EUR", p.Name(), v)
			return model.Rate{Value: v, Source: p.Name(), ResolvedAt: r.now()}, nil
		}
		log.Warn().Err(err).Str("provider", p.Name()).Msg("FX source failed")
		failures = append(failures, ProviderFailure{Provider: p.Name(), Err: err})
		if ctx.Err() != nil {
			return model.Rate{}, fmt.Errorf("resolve FX: %w", ctx.Err())
		}
	}
	return model.Rate{}, &ExhaustedError{Failures: failures}
}

func (r *Resolver) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}
