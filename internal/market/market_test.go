package market

import (
	"reflect"
	"testing"
)

func TestCategoriesOrderFixed(t *testing.T) {
	want := []Category{Trading, Tender, BidAward, Demand}
	if got := Categories(); !reflect.DeepEqual(got, want) {
		t.Errorf("Categories() = %v, want %v", got, want)
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories() {
		if !c.Valid() {
			t.Errorf("%q should be valid", c)
		}
	}
	for _, c := range []Category{"", "futures", "Trading"} {
		if c.Valid() {
			t.Errorf("%q should be invalid", c)
		}
	}
}

func TestSourceLink(t *testing.T) {
	it := Item{}
	if it.SourceLink() != "" {
		t.Error("no sources should mean empty link")
	}
	it.Sources = []GroundingSource{{Title: "A", URI: "https://a"}, {Title: "B", URI: "https://b"}}
	if it.SourceLink() != "https://a" {
		t.Errorf("link = %q", it.SourceLink())
	}
}
