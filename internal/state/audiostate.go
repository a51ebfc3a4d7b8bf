// Package state defines the persisted, validated playback state that
// ties a Collection to what is currently playing: the song queue, the
// repeat/volume settings, and the live reset-progress snapshot. See
// spec.md §4.4.
package state

import (
	"math/rand"

	"github.com/hinto-janai/festival-sub001/internal/collection"
)

// DefaultBackThresholdSecs is how far into a song `back` must be before
// it restarts the song instead of moving to the previous queue entry.
const DefaultBackThresholdSecs = 3

// Append describes where AddQueue* inserts new entries into the queue.
type Append struct {
	Front bool
	Back  bool
	Index int // valid only when neither Front nor Back is set
}

// SeekMode selects how Seek interprets its argument.
type SeekMode uint8

const (
	SeekForward SeekMode = iota
	SeekBackward
	SeekAbsolute
)

// AudioState is the full playback snapshot: queue, current position,
// and the settings that persist across restarts. It is owned by the
// Kernel and exposed to frontends through a read-only lock (see
// internal/kernel).
type AudioState struct {
	Queue    []collection.SongKey
	QueueIdx *int

	Playing bool
	Song    *collection.SongKey
	Elapsed float64
	Runtime float64
	Repeat  Repeat
	Volume  Volume
}

// New returns an empty AudioState at the default volume, matching
// original_source's AudioState::new().
func New() *AudioState {
	return &AudioState{Volume: DefaultVolume}
}

// Finish clears queue, position, and playback flags: the "nothing left
// to play" state.
func (a *AudioState) Finish() {
	a.Queue = nil
	a.QueueIdx = nil
	a.Playing = false
	a.Song = nil
	a.Elapsed = 0
	a.Runtime = 0
}

// NextRaw advances queue_idx by one and loads the song now there,
// returning nil if queue_idx is unset or nothing follows. This is the
// low-level single-step primitive; Next(skip) below is the queue/repeat
// state machine frontends actually call.
func (a *AudioState) NextRaw() *collection.SongKey {
	if a.QueueIdx == nil {
		return nil
	}
	i := *a.QueueIdx + 1
	if i >= len(a.Queue) {
		return nil
	}
	a.QueueIdx = &i
	key := a.Queue[i]
	a.Song = &key
	return &key
}

// PrevRaw decrements queue_idx by one (floored at 0) and loads the song
// now there, returning nil only when the queue is empty or queue_idx is
// unset.
func (a *AudioState) PrevRaw() *collection.SongKey {
	if a.QueueIdx == nil {
		return nil
	}
	i := *a.QueueIdx - 1
	if i < 0 {
		i = 0
	}
	if i >= len(a.Queue) {
		return nil
	}
	a.QueueIdx = &i
	key := a.Queue[i]
	a.Song = &key
	return &key
}

// Next is the queue/repeat state machine's forward step: reload the
// current song under Repeat.Song, advance `skip` entries otherwise,
// wrap to the start under Repeat.Queue, or Finish if nothing follows.
func (a *AudioState) Next(skip int) *collection.SongKey {
	if a.Repeat == RepeatSong && a.Song != nil {
		a.Elapsed = 0
		return a.Song
	}

	if a.QueueIdx != nil {
		newIdx := *a.QueueIdx + skip
		if newIdx >= 0 && newIdx < len(a.Queue) {
			a.QueueIdx = &newIdx
			key := a.Queue[newIdx]
			a.Song = &key
			a.Elapsed = 0
			return &key
		}
	}

	if a.Repeat == RepeatQueue && len(a.Queue) > 0 {
		zero := 0
		a.QueueIdx = &zero
		key := a.Queue[0]
		a.Song = &key
		a.Elapsed = 0
		return &key
	}

	a.Finish()
	return nil
}

// Back seeks to 0 in the current song when elapsed exceeds threshold
// (threshold<=0 uses DefaultBackThresholdSecs), else moves back `step`
// queue entries, clamped at 0.
func (a *AudioState) Back(step int, threshold float64) {
	if threshold <= 0 {
		threshold = DefaultBackThresholdSecs
	}
	if a.Elapsed > threshold {
		a.Elapsed = 0
		return
	}
	if a.QueueIdx == nil {
		return
	}
	i := *a.QueueIdx - step
	if i < 0 {
		i = 0
	}
	a.QueueIdx = &i
	if i < len(a.Queue) {
		key := a.Queue[i]
		a.Song = &key
	}
	a.Elapsed = 0
}

// Seek computes a new elapsed per mode and secs, falling through to
// Next(1) when the target would run past the current song's runtime.
func (a *AudioState) Seek(mode SeekMode, secs float64) {
	switch mode {
	case SeekForward:
		target := a.Elapsed + secs
		if target > a.Runtime {
			a.Next(1)
			return
		}
		a.Elapsed = target
	case SeekBackward:
		if secs > a.Elapsed {
			a.Elapsed = 0
			return
		}
		a.Elapsed -= secs
	case SeekAbsolute:
		if secs > a.Runtime {
			a.Next(1)
			return
		}
		a.Elapsed = secs
	}
}

// Shuffle shuffles the queue in place with rng, then resets playback to
// the new first entry.
func (a *AudioState) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(a.Queue), func(i, j int) { a.Queue[i], a.Queue[j] = a.Queue[j], a.Queue[i] })
	if len(a.Queue) == 0 {
		a.QueueIdx = nil
		a.Song = nil
		return
	}
	zero := 0
	a.QueueIdx = &zero
	key := a.Queue[0]
	a.Song = &key
	a.Elapsed = 0
}

// Clear empties the queue. When keepPlaying is false the current song,
// elapsed, and runtime are dropped too (a full stop).
func (a *AudioState) Clear(keepPlaying bool) {
	a.Queue = nil
	a.QueueIdx = nil
	if !keepPlaying {
		a.Song = nil
		a.Elapsed = 0
		a.Runtime = 0
		a.Playing = false
	}
}

// insertAt splices keys into the queue per append, returning the index
// the first inserted key landed at.
func insertAt(queue []collection.SongKey, keys []collection.SongKey, app Append) ([]collection.SongKey, int) {
	switch {
	case app.Front:
		return append(append([]collection.SongKey{}, keys...), queue...), 0
	case app.Back:
		start := len(queue)
		return append(queue, keys...), start
	default:
		idx := app.Index
		if idx < 0 || idx > len(queue) {
			idx = 0
		}
		out := make([]collection.SongKey, 0, len(queue)+len(keys))
		out = append(out, queue[:idx]...)
		out = append(out, keys...)
		out = append(out, queue[idx:]...)
		return out, idx
	}
}

// addQueue is the common tail of every AddQueue{Song,Album,Artist,
// Playlist} operation: optionally clear, splice in keys, and if nothing
// was playing, start from `offset` (clamped into the newly inserted
// range, wrapping to 0 when out of range).
func (a *AudioState) addQueue(keys []collection.SongKey, app Append, clear bool, offset int) {
	if clear {
		a.Clear(false)
	}
	if len(keys) == 0 {
		return
	}

	wasPlaying := a.QueueIdx != nil
	var insertionStart int
	a.Queue, insertionStart = insertAt(a.Queue, keys, app)

	if !wasPlaying {
		if offset < 0 || offset >= len(keys) {
			offset = 0
		}
		startIdx := insertionStart + offset
		a.QueueIdx = &startIdx
		key := a.Queue[startIdx]
		a.Song = &key
		a.Elapsed = 0
	}
}

// AddQueueSong inserts a single song key.
func (a *AudioState) AddQueueSong(key collection.SongKey, app Append, clear bool) {
	a.addQueue([]collection.SongKey{key}, app, clear, 0)
}

// AddQueueAlbum inserts every song of an Album in its pre-ordered
// (track/disc) order.
func (a *AudioState) AddQueueAlbum(col *collection.Collection, key collection.AlbumKey, app Append, clear bool, offset int) {
	a.addQueue(append([]collection.SongKey{}, col.Album(key).Songs...), app, clear, offset)
}

// AddQueueArtist inserts every song of an Artist in its pre-ordered
// play order (album order, then track order within each album).
func (a *AudioState) AddQueueArtist(col *collection.Collection, key collection.ArtistKey, app Append, clear bool, offset int) {
	a.addQueue(append([]collection.SongKey{}, col.Artist(key).Songs...), app, clear, offset)
}

// AddQueuePlaylist inserts every valid entry of a Playlist, looked up by
// name in pls.
func (a *AudioState) AddQueuePlaylist(pls *Playlists, name string, app Append, clear bool, offset int) {
	entry, ok := pls.Get(name)
	if !ok {
		return
	}
	var keys []collection.SongKey
	for _, ref := range entry.Valid {
		keys = append(keys, ref.SongKey)
	}
	a.addQueue(keys, app, clear, offset)
}

// SetQueueIndex jumps playback to queue index i, or Finishes if i is out
// of range.
func (a *AudioState) SetQueueIndex(i int) {
	if i < 0 || i >= len(a.Queue) {
		a.Finish()
		return
	}
	a.QueueIdx = &i
	key := a.Queue[i]
	a.Song = &key
	a.Elapsed = 0
}

// RemoveQueueRange drains queue[start:end] and repositions queue_idx so
// playback continues sensibly:
//   - current index inside the removed range and skip=true: load the
//     song now sitting at `start` (i.e. what follows the removed range).
//   - current index inside the removed range and skip=false: keep
//     playing what's already decoded, clamping queue_idx to `start`.
//   - current index at or past `end`: shift left by (end-start).
//   - current index strictly before `start`: unaffected (also covers
//     the resolved Open Question for a range entirely after queue_idx).
func (a *AudioState) RemoveQueueRange(start, end int, skip bool) {
	if start < 0 {
		start = 0
	}
	if end > len(a.Queue) {
		end = len(a.Queue)
	}
	if start >= end {
		return
	}

	removed := end - start
	a.Queue = append(a.Queue[:start], a.Queue[end:]...)

	if a.QueueIdx == nil {
		return
	}
	i := *a.QueueIdx

	switch {
	case i >= start && i < end:
		newIdx := start
		if newIdx >= len(a.Queue) {
			a.Finish()
			return
		}
		a.QueueIdx = &newIdx
		if skip {
			key := a.Queue[newIdx]
			a.Song = &key
			a.Elapsed = 0
		}
	case i >= end:
		newIdx := i - removed
		a.QueueIdx = &newIdx
	}
}
