// Package normalize converts repaired, loosely-typed model items into
// canonical market records. Every output field is defined and printable no
// matter how partial the input was; absent fields get fixed sentinel values.
package normalize

import (
	"strings"
	"time"
	"unicode"

	"github.com/linqiu/marketlens/internal/citation"
	"github.com/linqiu/marketlens/internal/market"
	"github.com/linqiu/marketlens/internal/repair"
)

// Item builds the canonical record for one raw item. sources is the full
// grounding-source list of the fetch the item arrived in; the item's own
// citations are resolved against it here so the record stays citable after
// the response is discarded. Never fails.
func Item(raw repair.RawItem, cat market.Category, date string, sources []market.GroundingSource) market.Item {
	indices := []int(raw.SourceIndices)
	if indices == nil {
		indices = []int{}
	}
	return market.Item{
		Category:      cat,
		Date:          date,
		Title:         fieldOr(raw.Title.String(), market.UntitledSentinel),
		Region:        fieldOr(raw.Region.String(), market.NationwideSentinel),
		Entity:        fieldOr(raw.Entity.String(), market.UnknownEntity),
		Amount:        fieldOr(raw.Amount.String(), market.UndisclosedSentinel),
		Summary:       clean(raw.Summary.String()),
		SourceIndices: indices,
		Sources:       citation.Resolve(indices, sources),
		FetchedAt:     time.Now(),
	}
}

// Result normalizes a whole repaired response into one ingestion unit.
func Result(items []repair.RawItem, cat market.Category, date string, sources []market.GroundingSource) market.SearchResult {
	out := make([]market.Item, 0, len(items))
	for _, raw := range items {
		out = append(out, Item(raw, cat, date, sources))
	}
	return market.SearchResult{
		Items:     out,
		Sources:   sources,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func fieldOr(s, sentinel string) string {
	s = clean(s)
	if s == "" {
		return sentinel
	}
	return s
}

// clean collapses whitespace runs and strips control characters so every
// stored field is a single printable line.
func clean(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
