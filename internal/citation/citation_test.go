package citation

import (
	"reflect"
	"testing"

	"github.com/linqiu/marketlens/internal/market"
)

var testSources = []market.GroundingSource{
	{Title: "Gov Portal", URI: "https://x"},
	{Title: "Exchange Notice", URI: "https://y"},
	{Title: "Provincial Bureau", URI: "https://z"},
}

func TestResolveBasic(t *testing.T) {
	got := Resolve([]int{2, 1}, testSources)
	want := []market.GroundingSource{testSources[1], testSources[0]}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve = %v, want %v", got, want)
	}
}

func TestResolveDropsOutOfRange(t *testing.T) {
	got := Resolve([]int{0, 1, 4, -2, 3}, testSources)
	want := []market.GroundingSource{testSources[0], testSources[2]}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve = %v, want %v", got, want)
	}
}

func TestResolveKeepsDuplicates(t *testing.T) {
	got := Resolve([]int{1, 1, 1}, testSources)
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	for _, s := range got {
		if s != testSources[0] {
			t.Errorf("unexpected source %v", s)
		}
	}
}

func TestResolveEmpty(t *testing.T) {
	if got := Resolve(nil, testSources); got != nil {
		t.Errorf("nil indices: got %v", got)
	}
	if got := Resolve([]int{1}, nil); got != nil {
		t.Errorf("nil sources: got %v", got)
	}
	if got := Resolve([]int{5, 99}, testSources); got != nil {
		t.Errorf("all out of range: got %v", got)
	}
}

func TestMarkers(t *testing.T) {
	got := Markers("Price up 4% [1], volume flat [2]; see also [1].")
	want := []int{1, 2, 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Markers = %v, want %v", got, want)
	}
}

func TestMarkersNone(t *testing.T) {
	if got := Markers("no citations here [no] [ 1 ]"); got != nil {
		t.Errorf("Markers = %v, want nil", got)
	}
}

func TestResolveMarkers(t *testing.T) {
	got := ResolveMarkers("See [3] and [99].", testSources)
	want := []market.GroundingSource{testSources[2]}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveMarkers = %v, want %v", got, want)
	}
}
