package ccd

import (
	"sort"

	"github.com/hinto-janai/festival-sub001/internal/collection"
)

// computeSortOrders builds every ordering spec.md §3 requires the
// Collection to carry pre-computed, plus each one's Rev companion.
func computeSortOrders(artists []collection.Artist, albums []collection.Album, songs []collection.Song) collection.SortOrders {
	var s collection.SortOrders

	s.ArtistsByName = sortedArtistKeys(artists, func(a, b collection.Artist) bool { return a.Name < b.Name })
	s.ArtistsByNameRev = collection.ReverseArtistKeys(s.ArtistsByName)
	s.ArtistsByOriginalName = sortedArtistKeys(artists, func(a, b collection.Artist) bool { return a.OriginalName < b.OriginalName })
	s.ArtistsByOriginalNameRev = collection.ReverseArtistKeys(s.ArtistsByOriginalName)
	s.ArtistsByAlbumCount = sortedArtistKeys(artists, func(a, b collection.Artist) bool { return len(a.Albums) < len(b.Albums) })
	s.ArtistsByAlbumCountRev = collection.ReverseArtistKeys(s.ArtistsByAlbumCount)
	s.ArtistsBySongCount = sortedArtistKeys(artists, func(a, b collection.Artist) bool { return len(a.Songs) < len(b.Songs) })
	s.ArtistsBySongCountRev = collection.ReverseArtistKeys(s.ArtistsBySongCount)
	s.ArtistsByRuntime = sortedArtistKeys(artists, func(a, b collection.Artist) bool { return a.RuntimeSecs < b.RuntimeSecs })
	s.ArtistsByRuntimeRev = collection.ReverseArtistKeys(s.ArtistsByRuntime)

	artistName := func(ak collection.ArtistKey) string { return artists[ak].Name }

	s.AlbumsByReleaseArtist = sortedAlbumKeys(albums, func(a, b collection.Album) bool {
		if c := collection.Compare(a.Release, b.Release); c != 0 {
			return c < 0
		}
		return artistName(a.Artist) < artistName(b.Artist)
	})
	s.AlbumsByReleaseArtistRev = collection.ReverseAlbumKeys(s.AlbumsByReleaseArtist)

	s.AlbumsByReleaseRevArtist = sortedAlbumKeys(albums, func(a, b collection.Album) bool {
		if c := collection.Compare(a.Release, b.Release); c != 0 {
			return c > 0
		}
		return artistName(a.Artist) < artistName(b.Artist)
	})
	s.AlbumsByReleaseRevArtistRev = collection.ReverseAlbumKeys(s.AlbumsByReleaseRevArtist)

	s.AlbumsByTitleArtist = sortedAlbumKeys(albums, func(a, b collection.Album) bool {
		if artistName(a.Artist) != artistName(b.Artist) {
			return artistName(a.Artist) < artistName(b.Artist)
		}
		return a.Title < b.Title
	})
	s.AlbumsByTitleArtistRev = collection.ReverseAlbumKeys(s.AlbumsByTitleArtist)

	s.AlbumsByTitle = sortedAlbumKeys(albums, func(a, b collection.Album) bool { return a.Title < b.Title })
	s.AlbumsByTitleRev = collection.ReverseAlbumKeys(s.AlbumsByTitle)

	s.AlbumsByRelease = sortedAlbumKeys(albums, func(a, b collection.Album) bool {
		return collection.Compare(a.Release, b.Release) < 0
	})
	s.AlbumsByReleaseRev = collection.ReverseAlbumKeys(s.AlbumsByRelease)

	s.AlbumsByRuntime = sortedAlbumKeys(albums, func(a, b collection.Album) bool { return a.RuntimeSecs < b.RuntimeSecs })
	s.AlbumsByRuntimeRev = collection.ReverseAlbumKeys(s.AlbumsByRuntime)

	albumRelease := func(alk collection.AlbumKey) collection.Date { return albums[alk].Release }

	// Per spec.md §3: these three orderings are derived by visiting
	// albums in the corresponding album ordering and appending each
	// album's own (already track/disc-ordered, by the Fix phase)
	// Songs slice — not by sorting songs independently of their album.
	s.SongsByReleaseArtist = flattenAlbumSongs(albums, s.AlbumsByReleaseArtist)
	s.SongsByReleaseArtistRev = flattenAlbumSongs(albums, s.AlbumsByReleaseArtistRev)

	s.SongsByReleaseRevArtist = flattenAlbumSongs(albums, s.AlbumsByReleaseRevArtist)
	s.SongsByReleaseRevArtistRev = flattenAlbumSongs(albums, s.AlbumsByReleaseRevArtistRev)

	s.SongsByTitleArtist = flattenAlbumSongs(albums, s.AlbumsByTitleArtist)
	s.SongsByTitleArtistRev = flattenAlbumSongs(albums, s.AlbumsByTitleArtistRev)

	s.SongsByTitle = sortedSongKeys(songs, func(a, b collection.Song) bool { return a.Title < b.Title })
	s.SongsByTitleRev = collection.ReverseSongKeys(s.SongsByTitle)

	s.SongsByRelease = sortedSongKeys(songs, func(a, b collection.Song) bool {
		return collection.Compare(albumRelease(a.Album), albumRelease(b.Album)) < 0
	})
	s.SongsByReleaseRev = collection.ReverseSongKeys(s.SongsByRelease)

	s.SongsByRuntime = sortedSongKeys(songs, func(a, b collection.Song) bool { return a.RuntimeSecs < b.RuntimeSecs })
	s.SongsByRuntimeRev = collection.ReverseSongKeys(s.SongsByRuntime)

	return s
}

// flattenAlbumSongs visits albums in albumOrder and appends each
// album's own Songs slice (already track/disc-ordered by Fix), giving
// a song ordering derived purely from an album ordering.
func flattenAlbumSongs(albums []collection.Album, albumOrder []collection.AlbumKey) []collection.SongKey {
	var out []collection.SongKey
	for _, alk := range albumOrder {
		out = append(out, albums[alk].Songs...)
	}
	return out
}

func sortedArtistKeys(artists []collection.Artist, less func(a, b collection.Artist) bool) []collection.ArtistKey {
	ks := make([]collection.ArtistKey, len(artists))
	for i := range artists {
		ks[i] = collection.ArtistKey(i)
	}
	sort.SliceStable(ks, func(i, j int) bool { return less(artists[ks[i]], artists[ks[j]]) })
	return ks
}

func sortedAlbumKeys(albums []collection.Album, less func(a, b collection.Album) bool) []collection.AlbumKey {
	ks := make([]collection.AlbumKey, len(albums))
	for i := range albums {
		ks[i] = collection.AlbumKey(i)
	}
	sort.SliceStable(ks, func(i, j int) bool { return less(albums[ks[i]], albums[ks[j]]) })
	return ks
}

func sortedSongKeys(songs []collection.Song, less func(a, b collection.Song) bool) []collection.SongKey {
	ks := make([]collection.SongKey, len(songs))
	for i := range songs {
		ks[i] = collection.SongKey(i)
	}
	sort.SliceStable(ks, func(i, j int) bool { return less(songs[ks[i]], songs[ks[j]]) })
	return ks
}
