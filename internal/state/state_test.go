package state

import (
	"math/rand"
	"testing"

	"github.com/hinto-janai/festival-sub001/internal/collection"
)

func idx(i int) *int { return &i }

func key(k int) *collection.SongKey {
	sk := collection.SongKey(k)
	return &sk
}

func TestVolumeRoundTripClamp(t *testing.T) {
	cases := []struct {
		in   int
		want uint8
	}{
		{0, 0}, {50, 50}, {100, 100}, {101, 100}, {253, 100}, {-5, 0},
	}
	for _, c := range cases {
		if got := NewVolume(c.in).Inner(); got != c.want {
			t.Errorf("NewVolume(%d).Inner() = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestVolumeMath(t *testing.T) {
	if NewVolume(50).Add(NewVolume(60)) != NewVolume(100) {
		t.Fatal("overflowed add should saturate at 100")
	}
	if NewVolume(30).Sub(NewVolume(50)) != NewVolume(0) {
		t.Fatal("underflowed sub should saturate at 0")
	}
}

func TestNextRawAndPrevRaw(t *testing.T) {
	a := New()
	a.QueueIdx = nil
	if a.NextRaw() != nil || a.PrevRaw() != nil {
		t.Fatal("want nil when queue_idx is unset")
	}

	a.Queue = []collection.SongKey{10, 20, 30}
	a.QueueIdx = idx(0)
	got := a.NextRaw()
	if got == nil || *got != 20 || *a.QueueIdx != 1 {
		t.Fatalf("NextRaw = %v, idx = %v", got, a.QueueIdx)
	}

	a.QueueIdx = idx(0)
	got = a.PrevRaw()
	if got == nil || *got != 10 || *a.QueueIdx != 0 {
		t.Fatalf("PrevRaw from 0 = %v, idx = %v, want stay at 0", got, a.QueueIdx)
	}
}

func TestFinishClearsEverything(t *testing.T) {
	a := &AudioState{
		Queue: []collection.SongKey{1}, QueueIdx: idx(0),
		Playing: true, Song: key(1), Elapsed: 123, Runtime: 321,
	}
	a.Finish()
	if a.Queue != nil || a.QueueIdx != nil || a.Playing || a.Song != nil || a.Elapsed != 0 || a.Runtime != 0 {
		t.Fatalf("got %+v", a)
	}
}

func TestSkipForwardWithRepeatQueue(t *testing.T) {
	a := &AudioState{
		Queue:   []collection.SongKey{100, 101, 102}, // A, B, C
		QueueIdx: idx(2),
		Repeat:  RepeatQueue,
	}
	got := a.Next(1)
	if a.QueueIdx == nil || *a.QueueIdx != 0 {
		t.Fatalf("queue_idx = %v, want 0", a.QueueIdx)
	}
	if got == nil || *got != 100 {
		t.Fatalf("next song = %v, want queue[0]", got)
	}
	if len(a.Queue) != 3 {
		t.Fatal("queue should be unchanged")
	}
}

func TestBackWithThreshold(t *testing.T) {
	a := &AudioState{Queue: []collection.SongKey{1, 2, 3}, QueueIdx: idx(1), Elapsed: 4}
	a.Back(1, 3)
	if a.Elapsed != 0 || *a.QueueIdx != 1 {
		t.Fatalf("elapsed=%v idx=%v, want elapsed=0 idx=1 (restart current)", a.Elapsed, *a.QueueIdx)
	}

	a.Elapsed = 2
	a.Back(1, 3)
	if *a.QueueIdx != 0 {
		t.Fatalf("idx=%v, want 0", *a.QueueIdx)
	}
}

func TestRemoveQueueRangeBeforeCurrentShiftsIndex(t *testing.T) {
	a := &AudioState{
		Queue:    []collection.SongKey{0, 1, 2, 3, 4, 5, 6},
		QueueIdx: idx(5),
	}
	a.RemoveQueueRange(1, 4, false)

	want := []collection.SongKey{0, 4, 5, 6}
	if len(a.Queue) != len(want) {
		t.Fatalf("queue = %v, want %v", a.Queue, want)
	}
	for i := range want {
		if a.Queue[i] != want[i] {
			t.Fatalf("queue = %v, want %v", a.Queue, want)
		}
	}
	if a.QueueIdx == nil || *a.QueueIdx != 2 {
		t.Fatalf("queue_idx = %v, want 2", a.QueueIdx)
	}
}

func TestSetQueueIndexOutOfRangeFinishes(t *testing.T) {
	a := &AudioState{Queue: []collection.SongKey{1, 2}, QueueIdx: idx(0), Playing: true}
	a.SetQueueIndex(5)
	if a.QueueIdx != nil || a.Playing {
		t.Fatalf("want Finish(), got %+v", a)
	}
}

func TestShuffleResetsToFirstEntry(t *testing.T) {
	a := &AudioState{Queue: []collection.SongKey{1, 2, 3, 4, 5}}
	a.Shuffle(rand.New(rand.NewSource(1)))
	if *a.QueueIdx != 0 {
		t.Fatalf("queue_idx = %v, want 0", *a.QueueIdx)
	}
	if *a.Song != a.Queue[0] {
		t.Fatal("song should be queue[0] after shuffle")
	}
	seen := map[collection.SongKey]bool{}
	for _, k := range a.Queue {
		seen[k] = true
	}
	if len(seen) != 5 {
		t.Fatal("shuffle should not duplicate or drop entries")
	}
}

func TestValidateDropsDanglingKeysAndClampsVolume(t *testing.T) {
	col := &collection.Collection{Songs: make([]collection.Song, 2)}
	a := &AudioState{
		Queue:    []collection.SongKey{0, 1, 5, 6},
		QueueIdx: idx(2),
		Song:     key(5),
		Playing:  true,
		Volume:   Volume(253 % 256),
	}
	a.Validate(col)

	if len(a.Queue) != 2 {
		t.Fatalf("queue = %v, want 2 surviving entries", a.Queue)
	}
	if a.QueueIdx != nil {
		t.Fatal("queue_idx pointed past the truncated queue, should be nilled")
	}
	if a.Song != nil {
		t.Fatal("song no longer resolves, should be nilled")
	}
	if a.Playing {
		t.Fatal("playing should be false once queue_idx is nilled")
	}
	if a.Volume.Inner() != 100 {
		t.Fatalf("volume = %d, want clamped to 100", a.Volume.Inner())
	}
}

func exactMapOf(col *collection.Collection) collection.ExactMap {
	m := make(collection.ExactMap)
	for ak, artist := range col.Artists {
		byAlbum := make(map[string]map[string]collection.ExactKey)
		m[artist.Name] = byAlbum
		for _, alk := range artist.Albums {
			album := col.Album(alk)
			bySong := make(map[string]collection.ExactKey)
			byAlbum[album.Title] = bySong
			for _, sk := range album.Songs {
				bySong[col.Song(sk).Title] = collection.ExactKey{Artist: collection.ArtistKey(ak), Album: alk, Song: sk}
			}
		}
	}
	return m
}

func TestPlaylistsRebuildPromotesAndDemotes(t *testing.T) {
	col1 := &collection.Collection{
		Artists: []collection.Artist{{Name: "Artist", Albums: []collection.AlbumKey{0}}},
		Albums:  []collection.Album{{Title: "Album", Artist: 0, Songs: []collection.SongKey{0, 1}}},
		Songs:   []collection.Song{{Title: "Song A", Album: 0}, {Title: "Song B", Album: 0}},
	}
	col1.Map = exactMapOf(col1)

	p := NewPlaylists()
	p.Lists["mix"] = PlaylistEntry{
		Valid:   []PlaylistRef{{Artist: "Artist", Album: "Album", Song: "Song A", ArtistKey: 0, AlbumKey: 0, SongKey: 0}},
		Invalid: []InvalidRef{{Artist: "Artist", Album: "Album", Song: "Song B"}, {Artist: "Artist", Album: "Album", Song: "Missing"}},
	}

	p.Rebuild(col1)
	entry := p.Lists["mix"]
	if len(entry.Valid) != 2 {
		t.Fatalf("want 2 valid after promoting Song B, got %+v", entry)
	}
	if len(entry.Invalid) != 1 || entry.Invalid[0].Song != "Missing" {
		t.Fatalf("want only the missing song left invalid, got %v", entry.Invalid)
	}

	col2 := &collection.Collection{
		Artists: []collection.Artist{{Name: "Artist", Albums: []collection.AlbumKey{0}}},
		Albums:  []collection.Album{{Title: "Album", Artist: 0, Songs: []collection.SongKey{0}}},
		Songs:   []collection.Song{{Title: "Song A", Album: 0}},
	}
	col2.Map = exactMapOf(col2)

	p.Rebuild(col2)
	entry = p.Lists["mix"]
	if len(entry.Valid) != 1 || len(entry.Invalid) != 2 {
		t.Fatalf("want Song B demoted after it disappeared, got %+v", entry)
	}
}
