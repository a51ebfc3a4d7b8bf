package state

import "github.com/hinto-janai/festival-sub001/internal/collection"

// Validate repairs an AudioState loaded from disk (or carried across a
// reset) against a freshly published Collection, per spec.md §4.4:
// clamp volume, drop queue entries whose key no longer exists, and
// nullify song/queue_idx if they fall outside what remains.
func (a *AudioState) Validate(col *collection.Collection) {
	a.Volume = NewVolume(int(a.Volume))

	kept := a.Queue[:0:0]
	for _, k := range a.Queue {
		if col.ValidSong(k) {
			kept = append(kept, k)
		}
	}
	a.Queue = kept

	if a.QueueIdx != nil && (*a.QueueIdx < 0 || *a.QueueIdx >= len(a.Queue)) {
		a.QueueIdx = nil
	}
	if a.Song != nil && !col.ValidSong(*a.Song) {
		a.Song = nil
	}
	if a.QueueIdx == nil {
		a.Song = nil
		a.Playing = false
	}
}
