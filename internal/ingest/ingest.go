// Package ingest runs the fetch-and-store pipeline for one category at a
// time: grounded search, response repair, normalization, batch insert.
//
// Known race, kept on purpose: an in-flight fetch is never cancelled. If
// the user moves to another date while a fetch runs, the late result is
// still written under the date and category it was requested for.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/linqiu/marketlens/internal/ai"
	"github.com/linqiu/marketlens/internal/market"
	"github.com/linqiu/marketlens/internal/normalize"
	"github.com/linqiu/marketlens/internal/repair"
	"github.com/linqiu/marketlens/internal/store"
)

// ErrBusy is returned when a fetch for the same category is already in
// flight. The duplicate request is a no-op, not queued.
var ErrBusy = errors.New("fetch already in flight for this category")

type Pipeline struct {
	searcher ai.Searcher
	repairer *repair.Repairer
	store    *store.Store
	log      *zap.Logger

	mu       sync.Mutex
	inFlight map[market.Category]bool
}

// New builds a pipeline. The busy-flag table is fixed at construction to
// hold exactly the category enumeration.
func New(searcher ai.Searcher, st *store.Store, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	inFlight := make(map[market.Category]bool, len(market.Categories()))
	for _, c := range market.Categories() {
		inFlight[c] = false
	}
	return &Pipeline{
		searcher: searcher,
		repairer: repair.New(log),
		store:    st,
		log:      log,
		inFlight: inFlight,
	}
}

// Fetch performs one grounded search for cat and date, repairs and
// normalizes the response, and appends the records to the store.
//
// A malformed response body is not an error: it degrades to an empty
// result. A store-write failure is returned as an error, but the in-memory
// result is returned alongside it so the caller can still display it.
func (p *Pipeline) Fetch(ctx context.Context, cat market.Category, date string) (market.SearchResult, error) {
	if !cat.Valid() {
		return market.SearchResult{}, fmt.Errorf("unknown category %q", cat)
	}
	if !p.acquire(cat) {
		return market.SearchResult{}, ErrBusy
	}
	defer p.release(cat)

	resp, err := p.searcher.Search(ctx, cat, date)
	if err != nil {
		return market.SearchResult{}, fmt.Errorf("fetching %s for %s: %w", cat, date, err)
	}

	outcome := p.repairer.Repair(resp.Text)
	if outcome.Fallback {
		p.log.Info("response repaired to empty item list",
			zap.String("category", string(cat)), zap.String("date", date))
	}

	result := normalize.Result(outcome.Items, cat, date, resp.Sources)

	if err := p.store.Insert(result.Items); err != nil {
		return result, fmt.Errorf("storing %s items for %s: %w", cat, date, err)
	}

	p.log.Debug("ingested",
		zap.String("category", string(cat)),
		zap.String("date", date),
		zap.Int("items", len(result.Items)),
		zap.Int("sources", len(result.Sources)))
	return result, nil
}

func (p *Pipeline) acquire(cat market.Category) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inFlight[cat] {
		return false
	}
	p.inFlight[cat] = true
	return true
}

func (p *Pipeline) release(cat market.Category) {
	p.mu.Lock()
	p.inFlight[cat] = false
	p.mu.Unlock()
}
