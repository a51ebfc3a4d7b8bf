package kernel

import (
	"os"

	"github.com/hinto-janai/festival-sub001/internal/audio"
	"github.com/hinto-janai/festival-sub001/internal/collection"
	"github.com/hinto-janai/festival-sub001/internal/persist"
	"github.com/hinto-janai/festival-sub001/internal/search"
	"github.com/hinto-janai/festival-sub001/internal/state"
	"github.com/hinto-janai/festival-sub001/internal/watch"
)

// Run is the Kernel's command loop: a select over the frontend command
// channel, Audio's error events, and the signal watcher, per spec.md
// §4.3's "select over four message sources" (Audio and Search service
// their own command/request channels from their own Run loops, which
// this function starts). A nil watcher channel blocks forever in the
// select, which is exactly the desired behavior when no signal
// directory was configured.
func (k *Kernel) Run() {
	audioStop := make(chan struct{})
	searchStop := make(chan struct{})
	go k.audioEngine.Run(audioStop)
	go k.searchEngine.Run(searchStop)

	var watchStop chan struct{}
	var signals <-chan watch.Signal
	if k.watcher != nil {
		watchStop = make(chan struct{})
		go k.watcher.Run(watchStop)
		signals = k.watcher.Signals()
	}

	for {
		select {
		case <-k.quit:
			close(audioStop)
			close(searchStop)
			if watchStop != nil {
				close(watchStop)
			}
			return

		case c := <-k.cmd:
			k.dispatch(c)

		case ev := <-k.audioEngine.Events():
			k.forwardAudioEvent(ev)

		case sig := <-signals:
			k.dispatchSignal(sig)
		}
	}
}

func (k *Kernel) dispatch(c Command) {
	switch c.Kind {
	case CmdToggle:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdToggle}
	case CmdPlay:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdPlay}
	case CmdPause:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdPause}
	case CmdNext:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdNext}
	case CmdPrevious:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdPrevious}
	case CmdStop:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdClear, Clear: false}

	case CmdRepeat:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdRepeat, Repeat: c.Repeat}
	case CmdVolume:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdVolume, Volume: c.Volume}
	case CmdSeek:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdSeek, SeekMode: c.SeekMode, SeekSecs: c.SeekSecs}

	case CmdAddQueueSong:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdAddQueueSong, SongKey: c.SongKey, Append: c.Append, Clear: c.ClearKeepPlaying}
	case CmdAddQueueAlbum:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdAddQueueAlbum, AlbumKey: c.AlbumKey, Append: c.Append, Clear: c.ClearKeepPlaying, Offset: c.Offset}
	case CmdAddQueueArtist:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdAddQueueArtist, ArtistKey: c.ArtistKey, Append: c.Append, Clear: c.ClearKeepPlaying, Offset: c.Offset}
	case CmdAddQueuePlaylist:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdAddQueuePlaylist, PlaylistName: c.PlaylistName, Append: c.Append, Clear: c.ClearKeepPlaying, Offset: c.Offset}
	case CmdShuffle:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdShuffle}
	case CmdClear:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdClear, Clear: c.ClearKeepPlaying}
	case CmdSkip:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdNext, Skip: c.Skip}
	case CmdBack:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdPrevious, Skip: c.Back}

	case CmdSetQueueIndex:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdSetQueueIndex, QueueIndex: c.QueueIndex}
	case CmdRemoveQueueRange:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdRemoveQueueRange, RangeStart: c.RangeStart, RangeEnd: c.RangeEnd, SkipOnRemove: c.SkipOnRemove}

	case CmdPlaylistNew:
		k.playlists.New(c.PlaylistName)
	case CmdPlaylistRemove:
		k.playlists.Remove(c.PlaylistName)
	case CmdPlaylistClone:
		k.playlists.Clone(c.PlaylistFrom, c.PlaylistInto)
	case CmdPlaylistRemoveSong:
		k.playlists.RemoveSong(c.PlaylistName, c.PlaylistIndex)
	case CmdPlaylistAddArtist:
		k.playlists.AddArtist(k.Collection(), c.PlaylistName, c.ArtistKey, c.Append)
	case CmdPlaylistAddAlbum:
		k.playlists.AddAlbum(k.Collection(), c.PlaylistName, c.AlbumKey, c.Append)
	case CmdPlaylistAddSong:
		k.playlists.AddSong(k.Collection(), c.PlaylistName, c.SongKey, c.Append)

	case CmdRestoreAudioState:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdRestoreAudioState}
	case CmdCachePath:
		go k.cachePath(c.Paths)

	case CmdNewCollection:
		go k.resetCollection(c.Paths)
	case CmdSearch:
		k.dispatchSearch(c)

	case CmdExit:
		k.handleExit(c)
	}
}

func (k *Kernel) dispatchSearch(c Command) {
	resp := make(chan collection.Keychain, 1)
	k.searchEngine.Requests() <- search.Request{Query: c.SearchText, Mode: c.SearchMode, Resp: resp}
	if c.Resp == nil {
		<-resp
		return
	}
	kc := <-resp
	c.Resp <- Event{Kind: EvtSearchResp, Keychain: kc}
}

// cachePath touches every file under paths to warm OS filesystem
// caches ahead of a reset, per spec.md §4.3's CachePath command. It
// bails out early if a reset starts while it's running.
func (k *Kernel) cachePath(paths []string) {
	for _, root := range paths {
		if k.resetting.Load() {
			return
		}
		walkTouch(root, k.resetting.Load)
	}
}

func walkTouch(root string, resetting func() bool) {
	entries, err := os.ReadDir(root)
	if err != nil {
		f, ferr := os.Open(root)
		if ferr == nil {
			f.Close()
		}
		return
	}
	for _, e := range entries {
		if resetting() {
			return
		}
		path := root + string(os.PathSeparator) + e.Name()
		if e.IsDir() {
			walkTouch(path, resetting)
			continue
		}
		f, err := os.Open(path)
		if err == nil {
			f.Close()
		}
	}
}

func (k *Kernel) handleExit(c Command) {
	err := k.saveAll()
	if c.Resp != nil {
		c.Resp <- Event{Kind: EvtExit, ExitErr: err}
	}
	close(k.quit)
}

// saveAll persists AudioState and Playlists via the tmp-write-then-
// rename protocol, guarded by the SAVING atomic per spec.md §4.4/§5.
func (k *Kernel) saveAll() error {
	k.saving.Store(true)
	defer k.saving.Store(false)

	if k.opts.AudioStatePath != "" {
		if err := saveAtomic(k.opts.AudioStatePath, persist.MagicAudioState, persist.VersionAudioState, k.audioState); err != nil {
			return err
		}
	}
	if k.opts.PlaylistsPath != "" {
		if err := saveAtomic(k.opts.PlaylistsPath, persist.MagicPlaylists, persist.VersionPlaylists, k.playlists); err != nil {
			return err
		}
	}
	return nil
}

func saveAtomic(path string, magic [24]byte, version byte, v interface{}) error {
	tmp := path + ".tmp"
	if err := persist.Save(tmp, magic, version, v); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func (k *Kernel) forwardAudioEvent(ev audio.Event) {
	switch {
	case ev.DeviceError != nil:
		log.Errorf("device error: %v", ev.DeviceError)
	case ev.PlayError != nil:
		log.Errorf("play error: %v", ev.PlayError)
	case ev.SeekError != nil:
		log.Errorf("seek error: %v", ev.SeekError)
	case ev.PathError != nil:
		log.Errorf("path error: %v", ev.PathError)
	}
}

// dispatchSignal translates one sentinel-file signal into the matching
// Audio command, per spec.md §6's filesystem signal vocabulary. It
// reuses the same Audio command surface the frontend Command dispatch
// above uses; playlist/search sentinels don't exist, so every Kind
// maps onto Audio.
func (k *Kernel) dispatchSignal(sig watch.Signal) {
	switch sig.Kind {
	case watch.Toggle:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdToggle}
	case watch.Play:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdPlay}
	case watch.Pause:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdPause}
	case watch.Next:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdNext, Skip: 1}
	case watch.Previous:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdPrevious, Skip: 1}
	case watch.Stop:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdClear, Clear: false}
	case watch.Shuffle:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdShuffle}

	case watch.RepeatSong:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdRepeat, Repeat: state.RepeatSong}
	case watch.RepeatQueue:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdRepeat, Repeat: state.RepeatQueue}
	case watch.RepeatOff:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdRepeat, Repeat: state.RepeatOff}

	case watch.Volume:
		v := sig.IntArg
		if v < 0 {
			v = 0
		}
		if v > 100 {
			v = 100
		}
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdVolume, Volume: uint8(v)}

	case watch.Seek:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdSeek, SeekMode: state.SeekAbsolute, SeekSecs: float64(sig.UintArg)}
	case watch.SeekForward:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdSeek, SeekMode: state.SeekForward, SeekSecs: float64(sig.UintArg)}
	case watch.SeekBackward:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdSeek, SeekMode: state.SeekBackward, SeekSecs: float64(sig.UintArg)}

	case watch.Index:
		// Sentinel indices are 1-based; the queue is 0-based.
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdSetQueueIndex, QueueIndex: sig.IntArg - 1}
	case watch.Clear:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdClear, Clear: sig.BoolArg}
	case watch.Skip:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdNext, Skip: int(sig.UintArg)}
	case watch.Back:
		k.audioEngine.Commands() <- audio.Command{Kind: audio.CmdPrevious, Skip: int(sig.UintArg)}
	}
}
