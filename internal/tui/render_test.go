package tui

import (
	"strings"
	"testing"

	"github.com/linqiu/marketlens/internal/market"
)

func TestRenderResultResolvesInlineMarkers(t *testing.T) {
	res := market.SearchResult{
		Items: []market.Item{{
			Category: market.Trading,
			Date:     "2026-09-01",
			Title:    "Spot prices climb",
			Region:   "nationwide",
			Amount:   "undisclosed",
			Summary:  "Prices rose sharply [2], and stayed up [2]. Analysts disagree [9].",
		}},
		Sources: []market.GroundingSource{
			{Title: "Exchange bulletin", URI: "https://a.example/bulletin"},
			{Title: "Trade desk note", URI: "https://b.example/note"},
		},
	}

	out := RenderResult(res)

	if got := strings.Count(out, "https://b.example/note"); got != 1 {
		t.Fatalf("marker [2] should resolve exactly once, URI appeared %d times\n%s", got, out)
	}
	if strings.Contains(out, "https://a.example/bulletin") {
		t.Errorf("source 1 has no marker and should not be listed\n%s", out)
	}
	if !strings.Contains(out, "Trade desk note") {
		t.Errorf("resolved source title missing from output\n%s", out)
	}
}

func TestRenderResultEmpty(t *testing.T) {
	out := RenderResult(market.SearchResult{})
	if !strings.Contains(out, "No records.") {
		t.Fatalf("empty result should render the placeholder, got %q", out)
	}
}

func TestRenderItemsSummaryAndLink(t *testing.T) {
	items := []market.Item{{
		Category: market.Tender,
		Date:     "2026-08-30",
		Title:    "Capacity tender opens",
		Region:   "north",
		Entity:   "Grid Co",
		Amount:   "12 MW",
		Summary:  "Bids due next month.",
		Sources:  []market.GroundingSource{{Title: "Notice", URI: "https://c.example/notice"}},
	}}

	out := RenderItems(items)
	for _, want := range []string{"Capacity tender opens", "Bids due next month.", "https://c.example/notice", "12 MW"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}
