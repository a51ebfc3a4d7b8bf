package ccd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hinto-janai/festival-sub001/internal/collection"
)

func TestFoldGroupsByArtistAndAlbum(t *testing.T) {
	results := []*probed{
		{path: "/m/a/x/01.mp3", artist: "X", album: "First", title: "One"},
		{path: "/m/a/x/02.mp3", artist: "X", album: "First", title: "Two"},
		{path: "/m/a/y/01.mp3", artist: "Y", album: "Second", title: "One"},
		nil, // a failed probe must be skipped, not panic
	}

	artists, albums, songs, _ := fold(results)

	if len(artists) != 2 {
		t.Fatalf("got %d artists, want 2", len(artists))
	}
	if len(albums) != 2 {
		t.Fatalf("got %d albums, want 2", len(albums))
	}
	if len(songs) != 3 {
		t.Fatalf("got %d songs, want 3", len(songs))
	}
	if albums[0].SongCount != 0 {
		// SongCount is assigned in fix(), not fold(); this just checks
		// fold() didn't prematurely set it.
		t.Fatalf("fold() should not set SongCount, got %d", albums[0].SongCount)
	}
}

func TestFixSumsRuntimeUpTheTree(t *testing.T) {
	artists := []collection.Artist{{Name: "A", Albums: []collection.AlbumKey{0}}}
	albums := []collection.Album{{Title: "Alb", Artist: 0, Songs: []collection.SongKey{0, 1}}}
	songs := []collection.Song{
		{RuntimeSecs: 100, Album: 0},
		{RuntimeSecs: 200, Album: 0},
	}

	fix(artists, albums, songs)

	if albums[0].RuntimeSecs != 300 {
		t.Fatalf("album runtime = %v, want 300", albums[0].RuntimeSecs)
	}
	if artists[0].RuntimeSecs != 300 {
		t.Fatalf("artist runtime = %v, want 300", artists[0].RuntimeSecs)
	}
	if albums[0].DiscCount != 1 {
		t.Fatalf("disc count = %d, want 1 (default)", albums[0].DiscCount)
	}
}

func TestFixOrdersAlbumSongsByTrackNumber(t *testing.T) {
	track1, track2 := uint32(1), uint32(2)
	artists := []collection.Artist{{Name: "A", Albums: []collection.AlbumKey{0}}}
	// Parse/fold appended these out of order, as concurrent probe
	// workers can finish in any order.
	albums := []collection.Album{{Title: "Alb", Artist: 0, Songs: []collection.SongKey{1, 0}}}
	songs := []collection.Song{
		{Title: "First", TrackNo: &track1},
		{Title: "Second", TrackNo: &track2},
	}

	fix(artists, albums, songs)

	if albums[0].Songs[0] != 0 || albums[0].Songs[1] != 1 {
		t.Fatalf("album songs = %v, want track order [0 1]", albums[0].Songs)
	}
}

func TestComputeSortOrdersDerivesSongsFromAlbumWalk(t *testing.T) {
	trackA1, trackA2 := uint32(1), uint32(2)
	artists := []collection.Artist{{Name: "Artist"}}
	albums := []collection.Album{
		{Title: "Zebra", Artist: 0, Songs: []collection.SongKey{2, 3}},
		{Title: "Apple", Artist: 0, Songs: []collection.SongKey{0, 1}},
	}
	songs := []collection.Song{
		{Title: "Apple Track 1", Album: 1, TrackNo: &trackA1},
		{Title: "Apple Track 2", Album: 1, TrackNo: &trackA2},
		{Title: "Zebra Track 1", Album: 0, TrackNo: &trackA1},
		{Title: "Zebra Track 2", Album: 0, TrackNo: &trackA2},
	}

	s := computeSortOrders(artists, albums, songs)

	// AlbumsByTitleArtist visits "Apple" (album 1) before "Zebra" (album
	// 0); SongsByTitleArtist walks in that same album order, each album's
	// songs in track order. With these titles a plain sort of songs by
	// their own titles gives the same [0 1 2 3].
	want := []collection.SongKey{0, 1, 2, 3}
	for i, sk := range s.SongsByTitleArtist {
		if sk != want[i] {
			t.Fatalf("SongsByTitleArtist = %v, want %v", s.SongsByTitleArtist, want)
		}
	}
}

func TestComputeSortOrdersIsPermutationAndAscending(t *testing.T) {
	albums := []collection.Album{
		{Title: "C", RuntimeSecs: 3},
		{Title: "A", RuntimeSecs: 1},
		{Title: "B", RuntimeSecs: 2},
	}
	songs := []collection.Song{}
	artists := []collection.Artist{{Name: "Solo"}}
	for i := range albums {
		albums[i].Artist = 0
	}

	s := computeSortOrders(artists, albums, songs)

	if len(s.AlbumsByTitle) != 3 {
		t.Fatalf("want 3 entries")
	}
	if albums[s.AlbumsByTitle[0]].Title != "A" || albums[s.AlbumsByTitle[2]].Title != "C" {
		t.Fatalf("AlbumsByTitle not ascending: %+v", s.AlbumsByTitle)
	}
	if albums[s.AlbumsByRuntime[0]].RuntimeSecs != 1 {
		t.Fatalf("AlbumsByRuntime not ascending")
	}
	if albums[s.AlbumsByTitleRev[0]].Title != "C" {
		t.Fatalf("AlbumsByTitleRev not the reverse of AlbumsByTitle")
	}
}

func TestSniffMimeByMagicBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "no_ext_but_flac")
	if err := os.WriteFile(path, append([]byte("fLaC"), make([]byte, 12)...), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := sniffMime(path); got != "audio/flac" {
		t.Fatalf("sniffMime = %q, want audio/flac", got)
	}
}

func TestSniffMimeExtensionFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.mp3")
	if err := os.WriteFile(path, []byte("not really audio but has the right extension"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := sniffMime(path); got != "audio/mpeg" {
		t.Fatalf("sniffMime = %q, want audio/mpeg", got)
	}
}

func TestSniffMimeRejectsUnknown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("just some text"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := sniffMime(path); got != "" {
		t.Fatalf("sniffMime = %q, want empty", got)
	}
}

func TestWalkDirDeduplicatesAndSkipsUnknown(t *testing.T) {
	dir := t.TempDir()
	mp3 := filepath.Join(dir, "a.mp3")
	txt := filepath.Join(dir, "notes.txt")
	os.WriteFile(mp3, []byte("ID3"), 0o644)
	os.WriteFile(txt, []byte("hello"), 0o644)

	c := New(Options{Paths: []string{dir, dir}})
	found := c.walkDir(c.opts.Paths)

	if len(found) != 1 {
		t.Fatalf("got %d candidates, want 1 (deduped, txt skipped)", len(found))
	}
	if found[0].path != mp3 {
		t.Fatalf("got %q, want %q", found[0].path, mp3)
	}
}

func TestBuildExactMapResolvesKnownTriple(t *testing.T) {
	artists := []collection.Artist{{Name: "A", Albums: []collection.AlbumKey{0}}}
	albums := []collection.Album{{Title: "Alb", Artist: 0, Songs: []collection.SongKey{0}}}
	songs := []collection.Song{{Title: "Song", Album: 0}}

	m := buildExactMap(artists, albums, songs)

	key, ok := m["A"]["Alb"]["Song"]
	if !ok {
		t.Fatal("expected a hit")
	}
	if key.Artist != 0 || key.Album != 0 || key.Song != 0 {
		t.Fatalf("got %+v", key)
	}
}
