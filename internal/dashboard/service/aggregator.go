package service

import (
	"context"
	"fmt"

	"bookingdesk/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Query is one member of an aggregation batch.
type Query struct {
	Metric string
	Run    func(ctx context.Context) (float64, error)
}

// Results holds every member's value. Failed members read as zero and are
// listed in Failed in batch order.
type Results struct {
	Values map[string]float64
	Failed []string
}

func (r Results) Value(metric string) float64 {
	return r.Values[metric]
}

type Aggregator struct {
	limit int
	log   *logger.Logger
}

// NewAggregator bounds the batch to limit concurrent members; limit <= 0
// runs them all at once.
func NewAggregator(limit int, log *logger.Logger) *Aggregator {
	if log == nil {
		log = logger.Nop()
	}
	return &Aggregator{limit: limit, log: log}
}

// Collect runs every query concurrently and waits for all of them. A failing
// member never cancels or hides the others.
func (a *Aggregator) Collect(ctx context.Context, queries []Query) Results {
	values := make([]float64, len(queries))
	errs := make([]error, len(queries))

	var g errgroup.Group
	if a.limit > 0 {
		g.SetLimit(a.limit)
	}
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			values[i], errs[i] = a.run(ctx, q)
			return nil
		})
	}
	_ = g.Wait()

	results := Results{Values: make(map[string]float64, len(queries))}
	for i, q := range queries {
		if errs[i] != nil {
			a.log.Warn("Metric query failed", "metric", q.Metric, "error", errs[i])
			results.Values[q.Metric] = 0
			results.Failed = append(results.Failed, q.Metric)
			continue
		}
		results.Values[q.Metric] = values[i]
	}
	return results
}

func (a *Aggregator) run(ctx context.Context, q Query) (v float64, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("metric query panicked: %v", p)
		}
	}()
	return q.Run(ctx)
}
