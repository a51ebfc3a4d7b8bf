package ccd

import "github.com/hinto-janai/festival-sub001/internal/collection"

// buildExactMap builds the artist -> album -> song -> key lookup used by
// Collection.Lookup, per spec.md §3/§4.1's Map phase.
func buildExactMap(artists []collection.Artist, albums []collection.Album, songs []collection.Song) collection.ExactMap {
	m := make(collection.ExactMap, len(artists))

	for ai, ar := range artists {
		byAlbum, ok := m[ar.Name]
		if !ok {
			byAlbum = make(map[string]map[string]collection.ExactKey)
			m[ar.Name] = byAlbum
		}
		for _, alK := range ar.Albums {
			al := albums[alK]
			bySong, ok := byAlbum[al.Title]
			if !ok {
				bySong = make(map[string]collection.ExactKey)
				byAlbum[al.Title] = bySong
			}
			for _, sk := range al.Songs {
				bySong[songs[sk].Title] = collection.ExactKey{
					Artist: collection.ArtistKey(ai),
					Album:  alK,
					Song:   sk,
				}
			}
		}
	}

	return m
}
