package collection

// ReverseArtistKeys returns a new slice with ks in reverse order,
// grounding every "Rev" ordering as "the forward array iterated in
// reverse" per spec.md §3/§8.
func ReverseArtistKeys(ks []ArtistKey) []ArtistKey {
	r := make([]ArtistKey, len(ks))
	for i, k := range ks {
		r[len(ks)-1-i] = k
	}
	return r
}

// ReverseAlbumKeys mirrors ReverseArtistKeys for AlbumKey.
func ReverseAlbumKeys(ks []AlbumKey) []AlbumKey {
	r := make([]AlbumKey, len(ks))
	for i, k := range ks {
		r[len(ks)-1-i] = k
	}
	return r
}

// ReverseSongKeys mirrors ReverseArtistKeys for SongKey.
func ReverseSongKeys(ks []SongKey) []SongKey {
	r := make([]SongKey, len(ks))
	for i, k := range ks {
		r[len(ks)-1-i] = k
	}
	return r
}
