package resolver

import (
	"context"
	"errors"
	"time"

	"bookingdesk/pkg/logger"
)

// ErrSourceUnavailable means no candidate produced a usable value.
var ErrSourceUnavailable = errors.New("no metric source available")

// Fetcher retrieves the raw body behind a source URL. client.HttpClient
// implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Descriptor is one candidate source for a metric. A nil Parse uses
// DefaultParse.
type Descriptor struct {
	Name  string
	URL   string
	Parse ParseFunc
}

type Resolver struct {
	fetcher Fetcher
	timeout time.Duration
	log     *logger.Logger
}

// New builds a Resolver. timeout bounds each candidate attempt; zero means
// the caller's context alone applies.
func New(fetcher Fetcher, timeout time.Duration, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{
		fetcher: fetcher,
		timeout: timeout,
		log:     log,
	}
}

// Resolve returns the value of the first candidate that answers with a
// parseable body, or 0 when none does.
func (r *Resolver) Resolve(ctx context.Context, candidates []Descriptor) int64 {
	v, err := r.Lookup(ctx, candidates)
	if err != nil {
		return 0
	}
	return v
}

// Lookup is Resolve with the exhaustion reported as ErrSourceUnavailable.
// Candidates are tried once each, in order, and the first success wins.
func (r *Resolver) Lookup(ctx context.Context, candidates []Descriptor) (int64, error) {
	for i, c := range candidates {
		if ctx.Err() != nil {
			r.log.Warn("Metric resolution abandoned",
				"candidate", c.Name,
				"remaining", len(candidates)-i,
				"error", ctx.Err(),
			)
			break
		}

		v, err := r.attempt(ctx, c)
		if err == nil {
			r.log.Debug("Metric source resolved", "candidate", c.Name, "attempt", i+1, "value", v)
			return v, nil
		}
		r.log.Warn("Metric source failed, trying next candidate",
			"candidate", c.Name,
			"url", c.URL,
			"attempt", i+1,
			"error", err,
		)
	}
	return 0, ErrSourceUnavailable
}

var errUnparseable = errors.New("unrecognized response shape")

func (r *Resolver) attempt(ctx context.Context, c Descriptor) (int64, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	raw, err := r.fetcher.Fetch(ctx, c.URL)
	if err != nil {
		return 0, err
	}

	parse := c.Parse
	if parse == nil {
		parse = DefaultParse
	}
	v, ok := parse(raw)
	if !ok {
		return 0, errUnparseable
	}
	return v, nil
}
