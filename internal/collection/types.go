package collection

import "time"

// Art is an Album's cover image. It starts as raw bytes straight out of
// CCD's Parse phase and is resolved to a Known handle during CCD's
// Convert phase; it never regresses.
type Art struct {
	kind  artKind
	bytes []byte // valid when kind == artBytes
	path  string // valid when kind == artKnown: on-disk path under the art directory
	mime  string
	size  int64
}

type artKind uint8

const (
	ArtUnknown artKind = iota
	ArtBytes
	ArtKnown
)

// Kind reports which of Unknown/Bytes/Known this Art currently is.
func (a Art) Kind() artKind { return a.kind }

// NewArtBytes wraps raw, pre-conversion image bytes.
func NewArtBytes(b []byte) Art { return Art{kind: ArtBytes, bytes: b} }

// NewArtKnown wraps a resolved on-disk handle.
func NewArtKnown(path, mime string, size int64) Art {
	return Art{kind: ArtKnown, path: path, mime: mime, size: size}
}

// Bytes returns the raw bytes of an ArtBytes value.
func (a Art) Bytes() []byte { return a.bytes }

// Path, Mime, Size return the resolved handle fields of an ArtKnown value.
func (a Art) Path() string { return a.path }
func (a Art) Mime() string { return a.mime }
func (a Art) Size() int64  { return a.size }

// Artist is a music artist: its albums in release order and the flat
// concatenation of all songs across those albums in play order.
type Artist struct {
	Name         string
	OriginalName string
	Albums       []AlbumKey
	Songs        []SongKey
	RuntimeSecs  float64
}

// Album is a music album: its songs in track/disc order, a release date,
// and cover art.
type Album struct {
	Title       string
	Artist      ArtistKey
	Release     Date
	Songs       []SongKey
	DiscCount   uint32
	SongCount   uint32
	RuntimeSecs float64
	Path        string
	Art         Art
}

// Song is a single music track.
type Song struct {
	Title      string
	Album      AlbumKey
	RuntimeSecs float64
	SampleRate  uint32
	TrackNo     *uint32
	DiscNo      *uint32
	Path        string
}

// ExactKey is the (ArtistKey, AlbumKey, SongKey) triple the exact-match
// lookup map resolves a (artist, album, song) name triple to.
type ExactKey struct {
	Artist ArtistKey
	Album  AlbumKey
	Song   SongKey
}

// SortOrders holds every pre-computed ordering described in spec.md §3,
// each forward array paired with its reverse. All are permutations of
// 0..N for the corresponding entity array.
type SortOrders struct {
	ArtistsByName         []ArtistKey
	ArtistsByNameRev       []ArtistKey
	ArtistsByOriginalName  []ArtistKey
	ArtistsByOriginalNameRev []ArtistKey
	ArtistsByAlbumCount    []ArtistKey
	ArtistsByAlbumCountRev []ArtistKey
	ArtistsBySongCount     []ArtistKey
	ArtistsBySongCountRev  []ArtistKey
	ArtistsByRuntime       []ArtistKey
	ArtistsByRuntimeRev    []ArtistKey

	AlbumsByReleaseArtist     []AlbumKey
	AlbumsByReleaseArtistRev  []AlbumKey
	AlbumsByReleaseRevArtist    []AlbumKey
	AlbumsByReleaseRevArtistRev []AlbumKey
	AlbumsByTitleArtist       []AlbumKey
	AlbumsByTitleArtistRev    []AlbumKey
	AlbumsByTitle             []AlbumKey
	AlbumsByTitleRev          []AlbumKey
	AlbumsByRelease           []AlbumKey
	AlbumsByReleaseRev        []AlbumKey
	AlbumsByRuntime           []AlbumKey
	AlbumsByRuntimeRev        []AlbumKey

	SongsByReleaseArtist     []SongKey
	SongsByReleaseArtistRev  []SongKey
	SongsByReleaseRevArtist    []SongKey
	SongsByReleaseRevArtistRev []SongKey
	SongsByTitleArtist       []SongKey
	SongsByTitleArtistRev    []SongKey
	SongsByTitle             []SongKey
	SongsByTitleRev          []SongKey
	SongsByRelease           []SongKey
	SongsByReleaseRev        []SongKey
	SongsByRuntime           []SongKey
	SongsByRuntimeRev        []SongKey
}

// ExactMap is the case-sensitive artist -> album -> song -> keys lookup
// built in CCD's Map phase.
type ExactMap map[string]map[string]map[string]ExactKey

// Collection is Festival's immutable, shared music library. It is
// constructed only by CCD; once published it is never mutated.
type Collection struct {
	Artists []Artist
	Albums  []Album
	Songs   []Song

	Sort SortOrders
	Map  ExactMap

	Created time.Time
	Empty   bool
}

// CountArtists, CountAlbums, CountSongs report the size of each array.
func (c *Collection) CountArtists() int { return len(c.Artists) }
func (c *Collection) CountAlbums() int  { return len(c.Albums) }
func (c *Collection) CountSongs() int   { return len(c.Songs) }

// Empty returns a zero-sized Collection usable as the dummy handle
// exchanged during Kernel reset handoffs, per spec.md's "Dummy
// Collection" glossary entry.
func EmptyCollection() *Collection {
	return &Collection{
		Map:     make(ExactMap),
		Created: time.Now(),
		Empty:   true,
	}
}

// Artist/Album/Song look up an entity by key. Callers are expected to
// only hold keys that index into this same Collection; out-of-range
// keys are a programmer error elsewhere (validated at load time, see
// internal/state).
func (c *Collection) Artist(k ArtistKey) *Artist { return &c.Artists[k] }
func (c *Collection) Album(k AlbumKey) *Album     { return &c.Albums[k] }
func (c *Collection) Song(k SongKey) *Song        { return &c.Songs[k] }

// ValidArtist, ValidAlbum, ValidSong bounds-check a key against this
// Collection's arrays.
func (c *Collection) ValidArtist(k ArtistKey) bool { return int(k) < len(c.Artists) }
func (c *Collection) ValidAlbum(k AlbumKey) bool    { return int(k) < len(c.Albums) }
func (c *Collection) ValidSong(k SongKey) bool      { return int(k) < len(c.Songs) }

// Lookup resolves an (artist, album, song) name triple through the
// exact-match map built in CCD's Map phase.
func (c *Collection) Lookup(artist, album, song string) (ExactKey, bool) {
	byAlbum, ok := c.Map[artist]
	if !ok {
		return ExactKey{}, false
	}
	bySong, ok := byAlbum[album]
	if !ok {
		return ExactKey{}, false
	}
	key, ok := bySong[song]
	return key, ok
}
