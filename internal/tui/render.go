package tui

import (
	"fmt"
	"strings"

	"github.com/linqiu/marketlens/internal/citation"
	"github.com/linqiu/marketlens/internal/market"
)

// RenderItems formats stored records for terminal output, newest first as
// the store returns them.
func RenderItems(items []market.Item) string {
	if len(items) == 0 {
		return dimStyle.Render("No records.") + "\n"
	}

	var b strings.Builder
	for i, it := range items {
		writeItem(&b, i, it)
		b.WriteString("\n")
	}
	return b.String()
}

// RenderResult formats one fresh fetch. Unlike stored records, a fetch
// still carries the response's full source list, so inline [n] markers in
// summaries are resolved and listed under their item.
func RenderResult(res market.SearchResult) string {
	if len(res.Items) == 0 {
		return dimStyle.Render("No records.") + "\n"
	}

	var b strings.Builder
	for i, it := range res.Items {
		writeItem(&b, i, it)
		seen := make(map[string]bool)
		for _, src := range citation.ResolveMarkers(it.Summary, res.Sources) {
			if seen[src.URI] {
				continue
			}
			seen[src.URI] = true
			b.WriteString("    " + dimStyle.Render(fmt.Sprintf("%s <%s>", src.Title, src.URI)) + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeItem(b *strings.Builder, i int, it market.Item) {
	b.WriteString(fmt.Sprintf("%s %s %s\n",
		dimStyle.Render(fmt.Sprintf("%2d.", i+1)),
		headerStyle.Render(it.Title),
		categoryStyle.Render("["+it.Category.Label()+"]")))
	b.WriteString(fmt.Sprintf("    %s · %s · %s\n",
		dimStyle.Render(it.Date),
		it.Region,
		amountStyle.Render(it.Amount)))
	if it.Summary != "" {
		b.WriteString("    " + it.Summary + "\n")
	}
	if link := it.SourceLink(); link != "" {
		b.WriteString("    " + dimStyle.Render(link) + "\n")
	}
}

// RenderStatus formats a per-category presence report for a date.
func RenderStatus(date string, missing []market.Category) string {
	missingSet := make(map[market.Category]bool, len(missing))
	for _, c := range missing {
		missingSet[c] = true
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Coverage for "+date) + "\n")
	for _, c := range market.Categories() {
		mark := categoryStyle.Render("present")
		if missingSet[c] {
			mark = amountStyle.Render("missing")
		}
		b.WriteString(fmt.Sprintf("  %-10s %s\n", c.Label(), mark))
	}
	return b.String()
}
