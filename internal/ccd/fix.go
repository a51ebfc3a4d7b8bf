package ccd

import (
	"sort"

	"github.com/hinto-janai/festival-sub001/internal/collection"
)

// fix runs the cheap post-parse repairs spec.md §4.1 assigns to the Fix
// phase: reordering each Album's songs into track/disc order (Parse
// appends them in whatever order the concurrent probe workers finished
// in), summing song runtimes up into their Album and Artist, computing
// each Album's disc count from its songs' disc numbers, ordering each
// Artist's albums by release date (stable, unknown dates first) and
// rebuilding the Artist's flat song list by walking those albums. Every
// song-level ordering Sort derives from an album walk depends on
// Album.Songs already being in this order.
func fix(artists []collection.Artist, albums []collection.Album, songs []collection.Song) {
	for li := range albums {
		sortAlbumSongs(albums[li].Songs, songs)

		var runtime float64
		maxDisc := uint32(0)
		for _, sk := range albums[li].Songs {
			runtime += songs[sk].RuntimeSecs
			if songs[sk].DiscNo != nil && *songs[sk].DiscNo > maxDisc {
				maxDisc = *songs[sk].DiscNo
			}
		}
		albums[li].RuntimeSecs = runtime
		if maxDisc == 0 {
			maxDisc = 1
		}
		albums[li].DiscCount = maxDisc
	}

	for ai := range artists {
		alKeys := artists[ai].Albums
		sort.SliceStable(alKeys, func(i, j int) bool {
			return collection.Compare(albums[alKeys[i]].Release, albums[alKeys[j]].Release) < 0
		})
		var runtime float64
		artists[ai].Songs = artists[ai].Songs[:0]
		for _, alK := range alKeys {
			runtime += albums[alK].RuntimeSecs
			artists[ai].Songs = append(artists[ai].Songs, albums[alK].Songs...)
		}
		artists[ai].RuntimeSecs = runtime
	}
}

// sortAlbumSongs orders an album's song keys by disc number then track
// number, missing disc numbers treated as disc 1 and missing track
// numbers sorted first — stable, so songs sharing both numbers keep
// their parse order.
func sortAlbumSongs(keys []collection.SongKey, songs []collection.Song) {
	sort.SliceStable(keys, func(i, j int) bool {
		si, sj := songs[keys[i]], songs[keys[j]]
		di, dj := discOf(si), discOf(sj)
		if di != dj {
			return di < dj
		}
		return trackOf(si) < trackOf(sj)
	})
}

func discOf(s collection.Song) uint32 {
	if s.DiscNo == nil {
		return 1
	}
	return *s.DiscNo
}

func trackOf(s collection.Song) uint32 {
	if s.TrackNo == nil {
		return 0
	}
	return *s.TrackNo
}
