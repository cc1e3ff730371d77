// Package citation maps the 1-based citation positions used by the model
// (both in structured source_indices fields and in bracketed [n] markers
// inside free text) onto a response's 0-based grounding-source list.
package citation

import (
	"regexp"
	"strconv"

	"github.com/linqiu/marketlens/internal/market"
)

// Resolve looks up each 1-based index in sources. Indices outside
// [1, len(sources)] are dropped silently; valid entries keep the order of
// indices, and duplicates are not collapsed.
func Resolve(indices []int, sources []market.GroundingSource) []market.GroundingSource {
	if len(indices) == 0 || len(sources) == 0 {
		return nil
	}
	out := make([]market.GroundingSource, 0, len(indices))
	for _, n := range indices {
		if n < 1 || n > len(sources) {
			continue
		}
		out = append(out, sources[n-1])
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

var markerRe = regexp.MustCompile(`\[(\d+)\]`)

// Markers returns every bracketed citation marker in text, in order of
// appearance. Duplicates are kept.
func Markers(text string) []int {
	matches := markerRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// ResolveMarkers resolves the inline markers of a free-text field against
// the full source list, using the same 1-based mapping as Resolve. A marker
// resolves independently of whether its number also appears in an item's
// source_indices.
func ResolveMarkers(text string, sources []market.GroundingSource) []market.GroundingSource {
	return Resolve(Markers(text), sources)
}
