// Package backfill completes a date's missing categories. It runs at most
// one pass per session: plan the missing categories once, fetch them
// strictly one after another, and never revisit categories that already
// have rows.
package backfill

import (
	"context"

	"go.uber.org/zap"

	"github.com/linqiu/marketlens/internal/ingest"
	"github.com/linqiu/marketlens/internal/market"
	"github.com/linqiu/marketlens/internal/store"
)

// Step is one pending fetch in a backfill plan.
type Step struct {
	Category market.Category
}

// Progress reports scheduler state after each attempt, successful or not.
type Progress struct {
	Finished int
	Total    int
	Current  market.Category
}

type Scheduler struct {
	store    *store.Store
	pipeline *ingest.Pipeline
	log      *zap.Logger
}

func New(st *store.Store, p *ingest.Pipeline, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{store: st, pipeline: p, log: log}
}

// Plan returns one step per category missing for date, in enumeration
// order.
func (s *Scheduler) Plan(date string) ([]Step, error) {
	missing, err := s.store.MissingCategories(date)
	if err != nil {
		return nil, err
	}
	steps := make([]Step, 0, len(missing))
	for _, c := range missing {
		steps = append(steps, Step{Category: c})
	}
	return steps, nil
}

// Run executes steps sequentially: the next fetch is not issued until the
// previous one's store write (or failure) has resolved. A failed category
// is logged and skipped; it never aborts the remaining steps. notify, when
// non-nil, is called as each step starts and again after it resolves.
func (s *Scheduler) Run(ctx context.Context, date string, steps []Step, notify func(Progress)) {
	total := len(steps)
	for i, step := range steps {
		if notify != nil {
			notify(Progress{Finished: i, Total: total, Current: step.Category})
		}
		if _, err := s.pipeline.Fetch(ctx, step.Category, date); err != nil {
			s.log.Warn("backfill fetch failed, skipping category",
				zap.String("category", string(step.Category)),
				zap.String("date", date),
				zap.Error(err))
		}
		if notify != nil {
			notify(Progress{Finished: i + 1, Total: total, Current: step.Category})
		}
	}
}
