package state

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/ushis/m3u"

	"github.com/hinto-janai/festival-sub001/internal/collection"
)

// PlaylistRef is one playlist entry that currently resolves against a
// Collection: fresh keys plus the name strings the exact-match Map was
// keyed on, per spec.md §3's `Valid{artist_key, album_key, song_key,
// artist, album, song}`.
type PlaylistRef struct {
	ArtistKey collection.ArtistKey
	AlbumKey  collection.AlbumKey
	SongKey   collection.SongKey
	Artist    string
	Album     string
	Song      string
}

// InvalidRef is a playlist entry that no longer resolves: only the
// (artist, album, song) name triple survives, per spec.md §3's
// `Invalid{artist, album, song}`.
type InvalidRef struct {
	Artist string
	Album  string
	Song   string
}

// PlaylistEntry is one playlist's resolved contents.
type PlaylistEntry struct {
	Valid   []PlaylistRef
	Invalid []InvalidRef
}

// Playlists is every known playlist, keyed by name (its file's stem).
// Guarded by a single writer lock, typically held by the Kernel during
// command handling, per spec.md §5's "Playlists are guarded by a
// single writer lock" — but also taken internally here so the Audio
// thread's read-only AddQueuePlaylist lookups never race a concurrent
// Kernel mutation of the same map.
type Playlists struct {
	mu    sync.RWMutex
	Lists map[string]PlaylistEntry
}

// NewPlaylists returns an empty Playlists.
func NewPlaylists() *Playlists {
	return &Playlists{Lists: make(map[string]PlaylistEntry)}
}

// resolve looks artist/album/song up in the Collection's exact map and
// builds a PlaylistRef from the hit, sharing the Collection's own name
// strings rather than keeping separately-allocated copies, per spec.md
// §4.4's "upgrade to Valid with fresh keys and shared strings".
func resolve(col *collection.Collection, artist, album, song string) (PlaylistRef, bool) {
	key, ok := col.Lookup(artist, album, song)
	if !ok {
		return PlaylistRef{}, false
	}
	return PlaylistRef{
		ArtistKey: key.Artist,
		AlbumKey:  key.Album,
		SongKey:   key.Song,
		Artist:    col.Artist(key.Artist).Name,
		Album:     col.Album(key.Album).Title,
		Song:      col.Song(key.Song).Title,
	}, true
}

// ImportM3U parses an m3u playlist file and resolves each line against
// col by file path, then re-expresses every hit as the canonical
// (artist, album, song) name-triple entry the rest of Playlists works
// in. Grounded on the teacher's playlist-loading flow in
// internal/content/playlist.go (path normalization: absolute
// passthrough, relative-to-playlist-dir resolution, external http(s)
// URLs rejected as out of scope for a local-library queue); a line
// that doesn't resolve to any cataloged Song is dropped rather than
// stored, since an m3u line carries no artist/album/song strings of
// its own to fall back to.
func (p *Playlists) ImportM3U(path string, col *collection.Collection) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "cannot open playlist '%s'", path)
	}
	defer f.Close()

	list, err := m3u.Parse(f)
	if err != nil {
		return errors.Wrapf(err, "cannot parse playlist '%s'", path)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	entry := PlaylistEntry{}

	for _, item := range list {
		itemPath := strings.TrimSpace(item.Path)
		if itemPath == "" {
			continue
		}
		if !filepath.IsAbs(itemPath) {
			if u, err := url.ParseRequestURI(itemPath); err == nil && u.Scheme != "" {
				continue
			}
			dir := filepath.Dir(path)
			itemPath = filepath.Join(dir, itemPath)
		}

		sk, ok := findSongByPath(col, itemPath)
		if !ok {
			continue
		}
		song := col.Song(sk)
		album := col.Album(song.Album)
		artist := col.Artist(album.Artist)
		entry.Valid = append(entry.Valid, PlaylistRef{
			ArtistKey: album.Artist,
			AlbumKey:  song.Album,
			SongKey:   sk,
			Artist:    artist.Name,
			Album:     album.Title,
			Song:      song.Title,
		})
	}

	p.mu.Lock()
	p.Lists[name] = entry
	p.mu.Unlock()
	return nil
}

// ExportM3U writes the named playlist's valid entries out as an m3u
// file of absolute song paths, the inverse of ImportM3U.
func (p *Playlists) ExportM3U(name, path string, col *collection.Collection) error {
	p.mu.RLock()
	entry, ok := p.Lists[name]
	p.mu.RUnlock()
	if !ok {
		return errors.Errorf("no such playlist '%s'", name)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create playlist file '%s'", path)
	}
	defer f.Close()

	list := make(m3u.Playlist, 0, len(entry.Valid))
	for _, ref := range entry.Valid {
		list = append(list, m3u.Track{Path: col.Song(ref.SongKey).Path})
	}
	return m3u.Write(f, list)
}

// findSongByPath is only used to bootstrap an m3u line's (artist,
// album, song) triple at import time; every other lookup in this file
// goes through the Collection's exact-match Map.
func findSongByPath(col *collection.Collection, path string) (collection.SongKey, bool) {
	for i, s := range col.Songs {
		if s.Path == path {
			return collection.SongKey(i), true
		}
	}
	return 0, false
}

// Get returns a copy of the named playlist's entry, safe to call
// concurrently with any mutating method above.
func (p *Playlists) Get(name string) (PlaylistEntry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	entry, ok := p.Lists[name]
	return entry, ok
}

// New creates an empty, named playlist if one doesn't already exist,
// per spec.md §4.3's `PlaylistNew(name)` command.
func (p *Playlists) New(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.Lists[name]; !ok {
		p.Lists[name] = PlaylistEntry{}
	}
}

// Remove deletes a named playlist, per `PlaylistRemove(name)`.
func (p *Playlists) Remove(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.Lists, name)
}

// Clone copies from's entries into a new or overwritten playlist named
// into, per `PlaylistClone(from, into)`. Reports whether from existed.
func (p *Playlists) Clone(from, into string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.Lists[from]
	if !ok {
		return false
	}
	p.Lists[into] = PlaylistEntry{
		Valid:   append([]PlaylistRef{}, entry.Valid...),
		Invalid: append([]InvalidRef{}, entry.Invalid...),
	}
	return true
}

// RemoveSong deletes the Valid entry at index from the named playlist,
// per `PlaylistRemoveSong(index, name)`. Invalid entries carry no
// queue-useful key, so index addresses the Valid list only; this is
// the documented resolution for indexing a playlist whose entries are
// split into Valid/Invalid buckets rather than kept as one ordered
// list of tagged variants.
func (p *Playlists) RemoveSong(name string, index int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.Lists[name]
	if !ok || index < 0 || index >= len(entry.Valid) {
		return false
	}
	entry.Valid = append(entry.Valid[:index:index], entry.Valid[index+1:]...)
	p.Lists[name] = entry
	return true
}

// insertRefsAt splices refs into valid per app, mirroring
// AudioState.insertAt's Front/Back/Index placement rules.
func insertRefsAt(valid []PlaylistRef, refs []PlaylistRef, app Append) []PlaylistRef {
	switch {
	case app.Front:
		return append(append([]PlaylistRef{}, refs...), valid...)
	case app.Back:
		return append(valid, refs...)
	default:
		idx := app.Index
		if idx < 0 || idx > len(valid) {
			idx = 0
		}
		out := make([]PlaylistRef, 0, len(valid)+len(refs))
		out = append(out, valid[:idx]...)
		out = append(out, refs...)
		out = append(out, valid[idx:]...)
		return out
	}
}

// AddSong inserts a single Song into the named playlist (creating it if
// absent), per `PlaylistAddSong(name, keys, Append)`.
func (p *Playlists) AddSong(col *collection.Collection, name string, key collection.SongKey, app Append) {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry := p.Lists[name]
	song := col.Song(key)
	album := col.Album(song.Album)
	ref := PlaylistRef{
		ArtistKey: album.Artist,
		AlbumKey:  song.Album,
		SongKey:   key,
		Artist:    col.Artist(album.Artist).Name,
		Album:     album.Title,
		Song:      song.Title,
	}
	entry.Valid = insertRefsAt(entry.Valid, []PlaylistRef{ref}, app)
	p.Lists[name] = entry
}

// AddAlbum inserts every Song of an Album, in its pre-ordered
// (track/disc) order, per `PlaylistAddAlbum(name, keys, Append)`.
func (p *Playlists) AddAlbum(col *collection.Collection, name string, key collection.AlbumKey, app Append) {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry := p.Lists[name]
	album := col.Album(key)
	artist := col.Artist(album.Artist)
	var refs []PlaylistRef
	for _, sk := range album.Songs {
		refs = append(refs, PlaylistRef{
			ArtistKey: album.Artist,
			AlbumKey:  key,
			SongKey:   sk,
			Artist:    artist.Name,
			Album:     album.Title,
			Song:      col.Song(sk).Title,
		})
	}
	entry.Valid = insertRefsAt(entry.Valid, refs, app)
	p.Lists[name] = entry
}

// AddArtist inserts every Song of an Artist, in its pre-ordered play
// order, per `PlaylistAddArtist(name, keys, Append)`.
func (p *Playlists) AddArtist(col *collection.Collection, name string, key collection.ArtistKey, app Append) {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry := p.Lists[name]
	artist := col.Artist(key)
	var refs []PlaylistRef
	for _, sk := range artist.Songs {
		song := col.Song(sk)
		refs = append(refs, PlaylistRef{
			ArtistKey: key,
			AlbumKey:  song.Album,
			SongKey:   sk,
			Artist:    artist.Name,
			Album:     col.Album(song.Album).Title,
			Song:      song.Title,
		})
	}
	entry.Valid = insertRefsAt(entry.Valid, refs, app)
	p.Lists[name] = entry
}

// Rebuild re-validates every playlist's entries against a freshly
// published Collection by looking each entry's (artist, album, song)
// triple up in the Collection's exact map: a Valid entry whose triple
// no longer resolves is demoted to Invalid; an Invalid entry whose
// triple now resolves is promoted back to Valid with fresh keys, per
// spec.md §4.4's rebuild-on-reset rule.
func (p *Playlists) Rebuild(col *collection.Collection) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for name, entry := range p.Lists {
		var valid []PlaylistRef
		var invalid []InvalidRef

		for _, ref := range entry.Valid {
			if fresh, ok := resolve(col, ref.Artist, ref.Album, ref.Song); ok {
				valid = append(valid, fresh)
			} else {
				invalid = append(invalid, InvalidRef{Artist: ref.Artist, Album: ref.Album, Song: ref.Song})
			}
		}
		for _, ref := range entry.Invalid {
			if fresh, ok := resolve(col, ref.Artist, ref.Album, ref.Song); ok {
				valid = append(valid, fresh)
			} else {
				invalid = append(invalid, ref)
			}
		}

		p.Lists[name] = PlaylistEntry{Valid: valid, Invalid: invalid}
	}
}
