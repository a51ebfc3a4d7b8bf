// Package search implements the fuzzy query engine over a Collection,
// per spec.md §6's `Search(string, All|Sim70|Top25|Top1)` command and
// §2's "returns keychains" responsibility.
package search

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/hinto-janai/festival-sub001/internal/collection"
)

// Mode selects how a query's scored matches are filtered down to a
// Keychain, per spec.md §6.
type Mode uint8

const (
	// ModeAll returns every entry with a non-zero similarity score.
	ModeAll Mode = iota
	// ModeSim70 returns entries scoring at least 0.70 against the query.
	ModeSim70
	// ModeTop25 returns the 25 highest-scoring entries.
	ModeTop25
	// ModeTop1 returns only the single highest-scoring entry.
	ModeTop1
)

type scoredArtist struct {
	key   collection.ArtistKey
	score float64
}
type scoredAlbum struct {
	key   collection.AlbumKey
	score float64
}
type scoredSong struct {
	key   collection.SongKey
	score float64
}

// Query scores every Artist/Album/Song name in col against query and
// returns the Keychain selected by mode.
func Query(col *collection.Collection, query string, mode Mode) collection.Keychain {
	nq := normalize(query)
	if nq == "" {
		return collection.Keychain{}
	}

	artists := make([]scoredArtist, 0, col.CountArtists())
	for i := 0; i < col.CountArtists(); i++ {
		k := collection.ArtistKey(i)
		s := similarity(nq, normalize(col.Artist(k).Name))
		if s > 0 {
			artists = append(artists, scoredArtist{k, s})
		}
	}
	albums := make([]scoredAlbum, 0, col.CountAlbums())
	for i := 0; i < col.CountAlbums(); i++ {
		k := collection.AlbumKey(i)
		s := similarity(nq, normalize(col.Album(k).Title))
		if s > 0 {
			albums = append(albums, scoredAlbum{k, s})
		}
	}
	songs := make([]scoredSong, 0, col.CountSongs())
	for i := 0; i < col.CountSongs(); i++ {
		k := collection.SongKey(i)
		s := similarity(nq, normalize(col.Song(k).Title))
		if s > 0 {
			songs = append(songs, scoredSong{k, s})
		}
	}

	sort.SliceStable(artists, func(i, j int) bool { return artists[i].score > artists[j].score })
	sort.SliceStable(albums, func(i, j int) bool { return albums[i].score > albums[j].score })
	sort.SliceStable(songs, func(i, j int) bool { return songs[i].score > songs[j].score })

	switch mode {
	case ModeSim70:
		artists = filterArtists(artists, 0.70)
		albums = filterAlbums(albums, 0.70)
		songs = filterSongs(songs, 0.70)
	case ModeTop25:
		artists = capArtists(artists, 25)
		albums = capAlbums(albums, 25)
		songs = capSongs(songs, 25)
	case ModeTop1:
		artists = capArtists(artists, 1)
		albums = capAlbums(albums, 1)
		songs = capSongs(songs, 1)
	case ModeAll:
		// no further filtering
	}

	return collection.Keychain{
		Artists: artistKeys(artists),
		Albums:  albumKeys(albums),
		Songs:   songKeys(songs),
	}
}

func filterArtists(in []scoredArtist, min float64) []scoredArtist {
	out := in[:0:0]
	for _, a := range in {
		if a.score >= min {
			out = append(out, a)
		}
	}
	return out
}
func filterAlbums(in []scoredAlbum, min float64) []scoredAlbum {
	out := in[:0:0]
	for _, a := range in {
		if a.score >= min {
			out = append(out, a)
		}
	}
	return out
}
func filterSongs(in []scoredSong, min float64) []scoredSong {
	out := in[:0:0]
	for _, a := range in {
		if a.score >= min {
			out = append(out, a)
		}
	}
	return out
}

func capArtists(in []scoredArtist, n int) []scoredArtist {
	if len(in) > n {
		return in[:n]
	}
	return in
}
func capAlbums(in []scoredAlbum, n int) []scoredAlbum {
	if len(in) > n {
		return in[:n]
	}
	return in
}
func capSongs(in []scoredSong, n int) []scoredSong {
	if len(in) > n {
		return in[:n]
	}
	return in
}

func artistKeys(in []scoredArtist) []collection.ArtistKey {
	out := make([]collection.ArtistKey, len(in))
	for i, a := range in {
		out[i] = a.key
	}
	return out
}
func albumKeys(in []scoredAlbum) []collection.AlbumKey {
	out := make([]collection.AlbumKey, len(in))
	for i, a := range in {
		out[i] = a.key
	}
	return out
}
func songKeys(in []scoredSong) []collection.SongKey {
	out := make([]collection.SongKey, len(in))
	for i, a := range in {
		out[i] = a.key
	}
	return out
}

// foldDiacritics strips combining marks after Unicode NFD decomposition,
// so "Beyoncé" and "Beyonce" compare equal. Built on golang.org/x/text,
// already part of the dependency stack, applied here to a new concern
// (fuzzy-search normalization) rather than its original message-catalog
// use.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func normalize(s string) string {
	folded, _, err := transform.String(foldDiacritics, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// similarity scores candidate against query in 0..1. An exact substring
// match scores 1.0 (queries are usually fragments of the real title);
// otherwise it falls back to a normalized Levenshtein distance so
// near-miss spellings still surface, per spec.md §2's "fuzzy query
// engine" description.
func similarity(query, candidate string) float64 {
	if candidate == "" {
		return 0
	}
	if strings.Contains(candidate, query) {
		return 1.0
	}
	dist := levenshtein(query, candidate)
	maxLen := len([]rune(query))
	if cl := len([]rune(candidate)); cl > maxLen {
		maxLen = cl
	}
	if maxLen == 0 {
		return 0
	}
	return 1.0 - float64(dist)/float64(maxLen)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min3(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
