package market

import "time"

// Category identifies one of the fixed market-intelligence feeds.
type Category string

const (
	Trading  Category = "trading"
	Tender   Category = "tender"
	BidAward Category = "bid-award"
	Demand   Category = "demand"
)

// Categories returns every category in canonical order. Backfill,
// completeness checks, and status output all iterate in this order.
func Categories() []Category {
	return []Category{Trading, Tender, BidAward, Demand}
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	switch c {
	case Trading, Tender, BidAward, Demand:
		return true
	}
	return false
}

// Label returns a human-readable name for display.
func (c Category) Label() string {
	switch c {
	case Trading:
		return "Trading"
	case Tender:
		return "Tender"
	case BidAward:
		return "Bid Award"
	case Demand:
		return "Demand"
	}
	return string(c)
}

// Sentinel values substituted for absent fields during normalization.
const (
	UntitledSentinel    = "untitled"
	NationwideSentinel  = "nationwide"
	UnknownEntity       = "unknown subject"
	UndisclosedSentinel = "undisclosed"
)

// DateFormat is the fixed-width ISO form used everywhere a date is stored
// or compared. Lexicographic comparison of dates in this form is
// date-order-correct.
const DateFormat = "2006-01-02"

// Today returns the current local date in DateFormat.
func Today() string {
	return time.Now().Format(DateFormat)
}

// GroundingSource is a web citation returned alongside a model response.
// Identity is positional within a single response's source list.
type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Item is one canonical market-intelligence record. Items are created only
// by normalization and appended to the store exactly once per fetch; the
// store assigns ID on insert (zero until then).
type Item struct {
	ID       int64
	Category Category
	Date     string
	Title    string
	Region   string
	Entity   string
	Amount   string
	Summary  string

	// SourceIndices are the 1-based citation positions the model reported,
	// kept verbatim for traceability even when out of range.
	SourceIndices []int

	// Sources are the grounding sources SourceIndices resolved to at
	// ingestion time, so records stay citable after the originating
	// response is gone. len(Sources) <= len(SourceIndices).
	Sources []GroundingSource

	FetchedAt time.Time
}

// SourceLink returns the first resolved source URI, or "" when the item
// carries no resolvable citation.
func (it Item) SourceLink() string {
	if len(it.Sources) == 0 {
		return ""
	}
	return it.Sources[0].URI
}

// SearchResult is one ingestion unit: the normalized items of a single
// fetch plus the full grounding-source list they index into.
type SearchResult struct {
	Items     []Item
	Sources   []GroundingSource
	Timestamp string
}

// QueryParams filters a store scan. Zero-valued fields match everything;
// all set fields must match (conjunctive).
type QueryParams struct {
	StartDate     string   // inclusive lower date bound, DateFormat
	EndDate       string   // inclusive upper date bound, DateFormat
	Region        string   // substring match on region
	EntityKeyword string   // case-insensitive substring match on entity or title
	Category      Category // exact match
}
