package kernel

import (
	"os"

	"github.com/hinto-janai/festival-sub001/internal/audio"
	"github.com/hinto-janai/festival-sub001/internal/ccd"
	"github.com/hinto-janai/festival-sub001/internal/collection"
	"github.com/hinto-janai/festival-sub001/internal/persist"
	"github.com/hinto-janai/festival-sub001/internal/search"
	"github.com/hinto-janai/festival-sub001/internal/state"
	"github.com/hinto-janai/festival-sub001/internal/watch"
)

// Boot runs the once-before-serving-commands sequence from spec.md
// §4.3: load Collection/AudioState/Playlists from disk (tolerating
// absence on a first run), validate state against whatever Collection
// was loaded, start the audio/search engines and, if configured, the
// signal watcher and an art-only reconversion CCD pass.
func (k *Kernel) Boot(out audio.Output) error {
	col := k.loadCollection()
	k.col.Store(col)

	k.audioState = k.loadAudioState()
	k.playlists = k.loadPlaylists()
	k.audioState.Validate(col)
	k.playlists.Rebuild(col)

	k.audioEngine = audio.NewEngine(col, k.audioState, k.playlists, out)
	k.searchEngine = search.NewEngine(col)

	if k.opts.SignalDir != "" {
		w, err := watch.New(k.opts.SignalDir)
		if err != nil {
			log.Errorf("cannot start signal watcher: %v", err)
		} else {
			k.watcher = w
		}
	}

	if !col.Empty && !k.opts.NoArt {
		// Art-conversion pass: turns any remaining raw art bytes into
		// resolved handles without rebuilding the Collection from
		// scratch, per spec.md §4.3 boot step 2.
		go k.reconvertArt(col)
	}

	return nil
}

func (k *Kernel) loadCollection() *collection.Collection {
	if k.opts.CollectionPath == "" {
		return collection.EmptyCollection()
	}
	var col collection.Collection
	if err := persist.Load(k.opts.CollectionPath, persist.MagicCollection, persist.VersionCollection, &col); err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("cannot load collection: %v (starting empty)", err)
		}
		return collection.EmptyCollection()
	}
	return &col
}

func (k *Kernel) loadAudioState() *state.AudioState {
	if k.opts.AudioStatePath != "" {
		var a state.AudioState
		if err := persist.Load(k.opts.AudioStatePath, persist.MagicAudioState, persist.VersionAudioState, &a); err == nil {
			return &a
		} else if !os.IsNotExist(err) {
			log.Warnf("cannot load audio state: %v (starting fresh)", err)
		}
	}
	return state.New()
}

func (k *Kernel) loadPlaylists() *state.Playlists {
	if k.opts.PlaylistsPath != "" {
		var p state.Playlists
		if err := persist.Load(k.opts.PlaylistsPath, persist.MagicPlaylists, persist.VersionPlaylists, &p); err == nil {
			return &p
		} else if !os.IsNotExist(err) {
			log.Warnf("cannot load playlists: %v (starting fresh)", err)
		}
	}
	return state.NewPlaylists()
}

// reconvertArt resolves any art CCD left as raw bytes on a previous
// build (e.g. a Collection persisted before art conversion completed)
// in place, without re-walking directories or rebuilding the graph.
func (k *Kernel) reconvertArt(col *collection.Collection) {
	c := ccd.New(ccd.Options{ArtDir: k.opts.ArtDir})
	c.ReconvertArt(col)
}
