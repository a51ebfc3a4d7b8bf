package collection

import "testing"

func isPermutation(n int, ks []ArtistKey) bool {
	if len(ks) != n {
		return false
	}
	seen := make([]bool, n)
	for _, k := range ks {
		if int(k) >= n || seen[k] {
			return false
		}
		seen[k] = true
	}
	return true
}

func TestReverseIsBitwiseRev(t *testing.T) {
	fwd := []ArtistKey{0, 1, 2, 3}
	rev := ReverseArtistKeys(fwd)
	want := []ArtistKey{3, 2, 1, 0}
	for i := range want {
		if rev[i] != want[i] {
			t.Fatalf("rev[%d] = %d, want %d", i, rev[i], want[i])
		}
	}
}

func TestReverseIsPermutation(t *testing.T) {
	fwd := []ArtistKey{0, 1, 2, 3, 4}
	if !isPermutation(5, fwd) {
		t.Fatal("fwd not a permutation")
	}
	if !isPermutation(5, ReverseArtistKeys(fwd)) {
		t.Fatal("rev not a permutation")
	}
}

func TestDateRoundTripThroughString(t *testing.T) {
	// Date parsing round-trips through String() for full precision dates.
	d := ParseDate("2020-12-25")
	if d.String() != "2020-12-25" {
		t.Fatalf("got %q", d.String())
	}
}

func TestParseDateFormats(t *testing.T) {
	want := Date{Year: 2020, Month: 12, Day: 25, HasMonth: true, HasDay: true}
	cases := []string{
		"2020-12-25",
		"20201225",
		"2020/12/25",
		"12-25-2020",
		"25.12.2020",
	}
	for _, c := range cases {
		got := ParseDate(c)
		if got != want {
			t.Errorf("ParseDate(%q) = %+v, want %+v", c, got, want)
		}
	}
}

func TestParseDateYearOnly(t *testing.T) {
	got := ParseDate("2020")
	if got.Year != 2020 || got.HasMonth || got.HasDay {
		t.Fatalf("got %+v", got)
	}
}

func TestParseDatePrefixedNoise(t *testing.T) {
	got := ParseDate("sejfioswe-joifewijfio_25-12-2020")
	want := Date{Year: 2020, Month: 12, Day: 25, HasMonth: true, HasDay: true}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestEmptyCollection(t *testing.T) {
	c := EmptyCollection()
	if !c.Empty {
		t.Fatal("want Empty true")
	}
	if c.CountArtists() != 0 || c.CountAlbums() != 0 || c.CountSongs() != 0 {
		t.Fatal("want all counts zero")
	}
}

func TestLookupMiss(t *testing.T) {
	c := EmptyCollection()
	if _, ok := c.Lookup("a", "b", "c"); ok {
		t.Fatal("want miss on empty collection")
	}
}
