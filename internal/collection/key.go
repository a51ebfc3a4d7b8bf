// Package collection implements Festival's immutable in-memory music
// library: artists, albums and songs addressed by typed array indices,
// plus the pre-sorted key orderings the rest of the core reads from.
package collection

import "fmt"

// ArtistKey is a typed, dense index into a Collection's Artists array.
type ArtistKey uint32

// AlbumKey is a typed, dense index into a Collection's Albums array.
type AlbumKey uint32

// SongKey is a typed, dense index into a Collection's Songs array.
type SongKey uint32

// Invalid marks a key that does not (or no longer) refer to an entity.
// Collections never produce it; callers use it as a sentinel when a
// lookup fails.
const Invalid = ^uint32(0)

func (k ArtistKey) String() string { return fmt.Sprintf("ArtistKey(%d)", uint32(k)) }
func (k AlbumKey) String() string  { return fmt.Sprintf("AlbumKey(%d)", uint32(k)) }
func (k SongKey) String() string   { return fmt.Sprintf("SongKey(%d)", uint32(k)) }

// Keychain bundles the three key slices returned by Search.
type Keychain struct {
	Artists []ArtistKey
	Albums  []AlbumKey
	Songs   []SongKey
}

// IsEmpty reports whether the keychain carries no keys at all.
func (k Keychain) IsEmpty() bool {
	return len(k.Artists) == 0 && len(k.Albums) == 0 && len(k.Songs) == 0
}
