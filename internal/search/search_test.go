package search

import (
	"testing"

	"github.com/hinto-janai/festival-sub001/internal/collection"
)

func testCollection() *collection.Collection {
	return &collection.Collection{
		Artists: []collection.Artist{
			{Name: "Daft Punk"},
			{Name: "Beyoncé"},
		},
		Albums: []collection.Album{
			{Title: "Discovery", Artist: 0},
			{Title: "Renaissance", Artist: 1},
		},
		Songs: []collection.Song{
			{Title: "One More Time", Album: 0},
			{Title: "Digital Love", Album: 0},
			{Title: "Break My Soul", Album: 1},
		},
	}
}

func TestQuerySubstringMatchScoresExact(t *testing.T) {
	col := testCollection()
	kc := Query(col, "daft", ModeAll)
	if len(kc.Artists) != 1 || kc.Artists[0] != 0 {
		t.Fatalf("got %+v, want artist 0", kc.Artists)
	}
}

func TestQueryFoldsDiacritics(t *testing.T) {
	col := testCollection()
	kc := Query(col, "beyonce", ModeAll)
	if len(kc.Artists) != 1 || kc.Artists[0] != 1 {
		t.Fatalf("got %+v, want artist 1 (diacritic-folded match)", kc.Artists)
	}
}

func TestQueryTop1ReturnsSingleBestMatch(t *testing.T) {
	col := testCollection()
	kc := Query(col, "soul", ModeTop1)
	if len(kc.Songs) != 1 || kc.Songs[0] != 2 {
		t.Fatalf("got %+v, want song 2 only", kc.Songs)
	}
}

func TestQuerySim70ExcludesWeakMatches(t *testing.T) {
	col := testCollection()
	kc := Query(col, "xyz completely unrelated string", ModeSim70)
	if !kc.IsEmpty() {
		t.Fatalf("got %+v, want no matches above 0.70 similarity", kc)
	}
}

func TestQueryEmptyStringMatchesNothing(t *testing.T) {
	col := testCollection()
	kc := Query(col, "", ModeAll)
	if !kc.IsEmpty() {
		t.Fatalf("got %+v, want empty keychain for empty query", kc)
	}
}

func TestLevenshteinDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
	}
	for _, c := range cases {
		if got := levenshtein(c.a, c.b); got != c.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestEngineRunServicesRequests(t *testing.T) {
	col := testCollection()
	e := NewEngine(col)
	stop := make(chan struct{})
	go e.Run(stop)
	defer close(stop)

	resp := make(chan collection.Keychain, 1)
	e.Requests() <- Request{Query: "discovery", Mode: ModeAll, Resp: resp}
	kc := <-resp
	// ModeAll keeps every non-zero score: "renaissance" scores 1-10/11.
	if len(kc.Albums) != 2 || kc.Albums[0] != 0 || kc.Albums[1] != 1 {
		t.Fatalf("got %+v, want albums [0 1]", kc.Albums)
	}
}

func TestEngineDropCollectionServesEmptyResults(t *testing.T) {
	col := testCollection()
	e := NewEngine(col)
	e.DropCollection()
	stop := make(chan struct{})
	go e.Run(stop)
	defer close(stop)

	resp := make(chan collection.Keychain, 1)
	e.Requests() <- Request{Query: "discovery", Mode: ModeAll, Resp: resp}
	kc := <-resp
	if !kc.IsEmpty() {
		t.Fatalf("got %+v, want empty keychain against a dropped collection", kc)
	}
}
