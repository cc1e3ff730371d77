package store

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/linqiu/marketlens/internal/market"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	st, err := Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleItems() []market.Item {
	now := time.Now()
	return []market.Item{
		{Category: market.Trading, Date: "2024-01-02", Title: "Spot prices up", Region: "Guangdong", Entity: "Southern Exchange", Amount: "undisclosed", Summary: "Prices rose [1].", SourceIndices: []int{1}, Sources: []market.GroundingSource{{Title: "Exchange", URI: "https://e"}}, FetchedAt: now},
		{Category: market.Tender, Date: "2024-01-01", Title: "Grid tender opens", Region: "Jiangsu", Entity: "State Grid", Amount: "120M", SourceIndices: []int{}, FetchedAt: now},
		{Category: market.Demand, Date: "2024-01-03", Title: "Load forecast revised", Region: "nationwide", Entity: "Planning Bureau", Amount: "undisclosed", SourceIndices: []int{2, 9}, FetchedAt: now},
	}
}

func TestInsertAssignsIDs(t *testing.T) {
	st := testStore(t)
	items := sampleItems()

	if err := st.Insert(items); err != nil {
		t.Fatalf("insert: %v", err)
	}
	for i, it := range items {
		if it.ID == 0 {
			t.Errorf("item %d: id not assigned", i)
		}
	}
}

func TestQueryNoFiltersDateDescending(t *testing.T) {
	st := testStore(t)
	if err := st.Insert(sampleItems()); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := st.Query(market.QueryParams{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Date > got[i-1].Date {
			t.Errorf("dates not non-increasing: %s after %s", got[i].Date, got[i-1].Date)
		}
	}
}

func TestQueryRoundTripsSources(t *testing.T) {
	st := testStore(t)
	if err := st.Insert(sampleItems()); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := st.Query(market.QueryParams{Category: market.Trading})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 trading item, got %d", len(got))
	}
	if !reflect.DeepEqual(got[0].SourceIndices, []int{1}) {
		t.Errorf("indices = %v", got[0].SourceIndices)
	}
	want := []market.GroundingSource{{Title: "Exchange", URI: "https://e"}}
	if !reflect.DeepEqual(got[0].Sources, want) {
		t.Errorf("sources = %v", got[0].Sources)
	}
}

func TestQueryDateBounds(t *testing.T) {
	st := testStore(t)
	if err := st.Insert(sampleItems()); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := st.Query(market.QueryParams{StartDate: "2024-01-02", EndDate: "2024-01-03"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 items in range, got %d", len(got))
	}

	// Bounds are inclusive
	got, err = st.Query(market.QueryParams{StartDate: "2024-01-01", EndDate: "2024-01-01"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Grid tender opens" {
		t.Errorf("expected the tender item, got %v", got)
	}
}

func TestQueryRegionSubstring(t *testing.T) {
	st := testStore(t)
	if err := st.Insert(sampleItems()); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := st.Query(market.QueryParams{Region: "uangdon"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || got[0].Region != "Guangdong" {
		t.Errorf("expected Guangdong item, got %v", got)
	}
}

func TestQueryEntityKeywordCaseInsensitive(t *testing.T) {
	st := testStore(t)
	if err := st.Insert(sampleItems()); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// Matches entity
	got, err := st.Query(market.QueryParams{EntityKeyword: "state grid"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || got[0].Entity != "State Grid" {
		t.Errorf("entity match failed: %v", got)
	}

	// Matches title
	got, err = st.Query(market.QueryParams{EntityKeyword: "FORECAST"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || got[0].Category != market.Demand {
		t.Errorf("title match failed: %v", got)
	}
}

func TestQueryConjunctive(t *testing.T) {
	st := testStore(t)
	if err := st.Insert(sampleItems()); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := st.Query(market.QueryParams{Region: "Guangdong", Category: market.Tender})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no matches, got %d", len(got))
	}
}

func TestDoubleInsertDuplicatesRows(t *testing.T) {
	st := testStore(t)
	items := sampleItems()

	if err := st.Insert(items); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := st.Insert(sampleItems()); err != nil {
		t.Fatalf("second insert: %v", err)
	}

	got, err := st.Query(market.QueryParams{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	// No dedupe: n items inserted twice is 2n rows.
	if len(got) != 2*len(items) {
		t.Errorf("expected %d rows, got %d", 2*len(items), len(got))
	}
}

func TestInsertOrderBreaksDateTies(t *testing.T) {
	st := testStore(t)
	batch := []market.Item{
		{Category: market.Trading, Date: "2024-01-01", Title: "first", Region: "r", Entity: "e", Amount: "a", FetchedAt: time.Now()},
		{Category: market.Trading, Date: "2024-01-01", Title: "second", Region: "r", Entity: "e", Amount: "a", FetchedAt: time.Now()},
	}
	if err := st.Insert(batch); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := st.Query(market.QueryParams{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if got[0].Title != "first" || got[1].Title != "second" {
		t.Errorf("tie not broken by insertion order: %v, %v", got[0].Title, got[1].Title)
	}
}

func TestMissingCategories(t *testing.T) {
	st := testStore(t)

	missing, err := st.MissingCategories("2024-01-01")
	if err != nil {
		t.Fatalf("missing: %v", err)
	}
	if !reflect.DeepEqual(missing, market.Categories()) {
		t.Errorf("empty store should miss all categories, got %v", missing)
	}

	trading := []market.Item{{Category: market.Trading, Date: "2024-01-01", Title: "t", Region: "r", Entity: "e", Amount: "a", FetchedAt: time.Now()}}
	if err := st.Insert(trading); err != nil {
		t.Fatalf("insert: %v", err)
	}

	missing, err = st.MissingCategories("2024-01-01")
	if err != nil {
		t.Fatalf("missing: %v", err)
	}
	want := []market.Category{market.Tender, market.BidAward, market.Demand}
	if !reflect.DeepEqual(missing, want) {
		t.Errorf("missing = %v, want %v", missing, want)
	}

	// Other dates are unaffected
	missing, err = st.MissingCategories("2024-01-02")
	if err != nil {
		t.Fatalf("missing: %v", err)
	}
	if len(missing) != len(market.Categories()) {
		t.Errorf("other date should miss everything, got %v", missing)
	}
}

func TestMissingCategoriesNoneLeft(t *testing.T) {
	st := testStore(t)
	now := time.Now()
	var batch []market.Item
	for _, c := range market.Categories() {
		batch = append(batch, market.Item{Category: c, Date: "2024-01-01", Title: "t", Region: "r", Entity: "e", Amount: "a", FetchedAt: now})
	}
	if err := st.Insert(batch); err != nil {
		t.Fatalf("insert: %v", err)
	}

	missing, err := st.MissingCategories("2024-01-01")
	if err != nil {
		t.Fatalf("missing: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("expected no missing categories, got %v", missing)
	}
}

func TestEmptyInsertIsNoOp(t *testing.T) {
	st := testStore(t)
	if err := st.Insert(nil); err != nil {
		t.Fatalf("empty insert: %v", err)
	}
}

func TestSchemaVersionMismatchRefusesOpen(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	st, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := st.writeDB.Exec("UPDATE meta SET value = '99' WHERE key = 'schema_version'"); err != nil {
		t.Fatalf("bumping version: %v", err)
	}
	st.Close()

	_, err = Open(dbPath)
	if !errors.Is(err, ErrSchemaVersion) {
		t.Errorf("expected ErrSchemaVersion, got %v", err)
	}
}

func TestStats(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	st, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close()

	if err := st.Insert(sampleItems()); err != nil {
		t.Fatalf("insert: %v", err)
	}

	count, size, err := st.Stats(dbPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}
	if size == 0 {
		t.Error("expected non-zero db size")
	}
}
