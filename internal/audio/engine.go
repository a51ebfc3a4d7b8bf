package audio

import (
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hinto-janai/festival-sub001/internal/collection"
	"github.com/hinto-janai/festival-sub001/internal/state"
)

var errInvalidSongKey = errors.New("song key does not resolve in the current collection")

// MediaControlSink publishes now-playing metadata and accepts OS-level
// media-key signals (play/pause/next/previous/stop/seek/setpos),
// per spec.md §4.2's optional media-control integration. noopMediaSink
// is the default; a platform build wires a real implementation in.
type MediaControlSink interface {
	PublishMetadata(title, artist, album string, durationSecs float64, coverPath string)
	PublishProgress(elapsedSecs float64, playing bool)
	Signals() <-chan MediaSignal
}

// MediaSignal is one inbound OS media-key event.
type MediaSignal int

const (
	MediaPlay MediaSignal = iota
	MediaPause
	MediaNext
	MediaPrevious
	MediaStop
	MediaSeek
	MediaSetPos
)

type noopMediaSink struct{ ch chan MediaSignal }

// NewNoopMediaSink returns a MediaControlSink that publishes nothing and
// never emits signals.
func NewNoopMediaSink() MediaControlSink { return &noopMediaSink{ch: make(chan MediaSignal)} }

func (n *noopMediaSink) PublishMetadata(string, string, string, float64, string) {}
func (n *noopMediaSink) PublishProgress(float64, bool)                           {}
func (n *noopMediaSink) Signals() <-chan MediaSignal                            { return n.ch }

// Event is what the Engine reports back to the Kernel.
type Event struct {
	DeviceError error
	PlayError   error
	SeekError   error
	PathError   *PathError
}

// Command is one Kernel-to-Audio instruction, mirroring the operations
// in spec.md §4.2/§6.
type Command struct {
	Kind CommandKind

	Append        state.Append
	Clear         bool
	Offset        int
	SongKey       collection.SongKey
	AlbumKey      collection.AlbumKey
	ArtistKey     collection.ArtistKey
	PlaylistName  string
	QueueIndex    int
	RangeStart    int
	RangeEnd      int
	SkipOnRemove  bool
	Skip          int
	Volume        uint8
	Repeat        state.Repeat
	SeekMode      state.SeekMode
	SeekSecs      float64
	NewCollection *collection.Collection
}

type CommandKind int

const (
	CmdToggle CommandKind = iota
	CmdPlay
	CmdPause
	CmdNext
	CmdPrevious
	CmdShuffle
	CmdRepeat
	CmdVolume
	CmdSeek
	CmdAddQueueSong
	CmdAddQueueAlbum
	CmdAddQueueArtist
	CmdAddQueuePlaylist
	CmdSetQueueIndex
	CmdRemoveQueueRange
	CmdClear
	CmdRestoreAudioState
	CmdNewCollection
	CmdDropCollection
)

// Engine owns the decode/output real-time loop and the AudioState it
// drives, per spec.md §4.2. Each song's Output is opened at the
// decoder's own sample rate and channel count; no Resampler is used.
type Engine struct {
	col atomic.Pointer[collection.Collection]

	state     *state.AudioState
	stateMu   sync.RWMutex
	playlists *state.Playlists

	output Output
	media  MediaControlSink

	decoder    Decoder
	decoderKey *collection.SongKey

	cmd    chan Command
	events chan Event
	rng    *rand.Rand

	seekPending *float64
}

// NewEngine constructs an Engine with the given Collection, initial
// AudioState, and Output (pass NewDummyOutput() for headless runs).
func NewEngine(col *collection.Collection, st *state.AudioState, pls *state.Playlists, out Output) *Engine {
	e := &Engine{
		state:     st,
		playlists: pls,
		output:    out,
		media:     NewNoopMediaSink(),
		cmd:       make(chan Command, 64),
		events:    make(chan Event, 64),
		rng:       rand.New(rand.NewSource(1)),
	}
	e.col.Store(col)
	return e
}

// Commands returns the channel Kernel sends Commands on.
func (e *Engine) Commands() chan<- Command { return e.cmd }

// Events returns the channel the Engine reports errors on.
func (e *Engine) Events() <-chan Event { return e.events }

// SetMediaSink swaps in a real MediaControlSink (wired by the platform
// entrypoint); must be called before Run.
func (e *Engine) SetMediaSink(m MediaControlSink) { e.media = m }

// collection returns the currently active Collection.
func (e *Engine) collection() *collection.Collection { return e.col.Load() }

// Run is the real-time loop: alternates between draining pending
// commands (non-blocking while playing, blocking while paused) and
// performing one decode+write cycle per iteration, per
// spec.md §4.2's scheduling model.
func (e *Engine) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case c := <-e.cmd:
			e.dispatch(c)
			continue
		case <-ticker.C:
			if e.state.Playing {
				e.media.PublishProgress(e.state.Elapsed, true)
			}
		default:
		}

		if !e.state.Playing {
			select {
			case <-stop:
				return
			case c := <-e.cmd:
				e.dispatch(c)
			}
			continue
		}

		e.decodeWriteCycle()
	}
}

// Snapshot returns a read-locked copy of the AudioState, safe to read
// concurrently with the Run loop (dispatch and decodeWriteCycle write
// the state while holding the same lock).
func (e *Engine) Snapshot() state.AudioState {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return *e.state
}

func (e *Engine) dispatch(c Command) {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()

	col := e.collection()

	switch c.Kind {
	case CmdToggle:
		if e.state.Playing {
			e.pause()
		} else {
			e.play()
		}
	case CmdPlay:
		e.play()
	case CmdPause:
		e.pause()
	case CmdNext:
		n := c.Skip
		if n < 1 {
			n = 1
		}
		e.loadAndPlay(e.state.Next(n))
	case CmdPrevious:
		n := c.Skip
		if n < 1 {
			n = 1
		}
		e.state.Back(n, 0)
		e.loadAndPlay(e.state.Song)
	case CmdShuffle:
		e.state.Shuffle(e.rng)
		e.loadAndPlay(e.state.Song)
	case CmdRepeat:
		e.state.Repeat = c.Repeat
	case CmdVolume:
		e.state.Volume = state.NewVolume(int(c.Volume))
		SetVolume(e.state.Volume.Inner())
	case CmdSeek:
		e.state.Seek(c.SeekMode, c.SeekSecs)
		if e.decoder != nil {
			if err := e.decoder.Seek(e.state.Elapsed); err != nil {
				e.events <- Event{SeekError: err}
			}
		}
	case CmdAddQueueSong:
		e.state.AddQueueSong(c.SongKey, c.Append, c.Clear)
		e.maybeStart()
	case CmdAddQueueAlbum:
		e.state.AddQueueAlbum(col, c.AlbumKey, c.Append, c.Clear, c.Offset)
		e.maybeStart()
	case CmdAddQueueArtist:
		e.state.AddQueueArtist(col, c.ArtistKey, c.Append, c.Clear, c.Offset)
		e.maybeStart()
	case CmdAddQueuePlaylist:
		e.state.AddQueuePlaylist(e.playlists, c.PlaylistName, c.Append, c.Clear, c.Offset)
		e.maybeStart()
	case CmdSetQueueIndex:
		e.state.SetQueueIndex(c.QueueIndex)
		e.loadAndPlay(e.state.Song)
	case CmdRemoveQueueRange:
		e.state.RemoveQueueRange(c.RangeStart, c.RangeEnd, c.SkipOnRemove)
		if c.SkipOnRemove {
			e.loadAndPlay(e.state.Song)
		}
	case CmdClear:
		e.state.Clear(c.Clear)
		if !c.Clear {
			e.closeDecoder()
			e.output.Flush()
		}
	case CmdRestoreAudioState:
		SetVolume(e.state.Volume.Inner())
		e.loadAndPlay(e.state.Song)
		if e.decoder != nil {
			e.decoder.Seek(e.state.Elapsed)
		}
	case CmdNewCollection:
		e.col.Store(c.NewCollection)
	case CmdDropCollection:
		e.closeDecoder()
		e.state.Finish()
	}
}

func (e *Engine) maybeStart() {
	if !e.state.Playing && e.state.Song != nil {
		e.loadAndPlay(e.state.Song)
	}
}

func (e *Engine) play() {
	if e.state.Song == nil && len(e.state.Queue) > 0 {
		i := 0
		if e.state.QueueIdx != nil {
			i = *e.state.QueueIdx
		}
		e.state.SetQueueIndex(i)
	}
	e.loadAndPlay(e.state.Song)
}

func (e *Engine) pause() {
	e.state.Playing = false
	e.output.Pause()
	e.media.PublishProgress(e.state.Elapsed, false)
}

func (e *Engine) loadAndPlay(key *collection.SongKey) {
	if key == nil {
		e.closeDecoder()
		e.state.Playing = false
		return
	}
	if e.decoderKey == nil || *e.decoderKey != *key {
		e.closeDecoder()
		col := e.collection()
		if !col.ValidSong(*key) {
			e.events <- Event{PathError: &PathError{Path: "", Err: errInvalidSongKey}}
			e.loadAndPlay(e.state.Next(1))
			return
		}
		song := col.Song(*key)
		d, err := OpenDecoder(song.Path)
		if err != nil {
			if pe, ok := err.(*PathError); ok {
				e.events <- Event{PathError: pe}
			}
			e.loadAndPlay(e.state.Next(1))
			return
		}
		e.decoder = d
		e.decoderKey = key
		e.state.Runtime = song.RuntimeSecs
		if err := e.output.TryOpen(d.SampleRate(), d.Channels()); err != nil {
			e.events <- Event{DeviceError: err}
			e.state.Playing = false
			return
		}
		e.media.PublishMetadata(song.Title, "", "", song.RuntimeSecs, "")
	}
	e.state.Playing = true
	e.output.Play()
}

func (e *Engine) closeDecoder() {
	if e.decoder != nil {
		e.decoder.Close()
		e.decoder = nil
		e.decoderKey = nil
	}
}

// decodeWriteCycle performs one demux+decode+write step, then
// advances the queue on end-of-stream, per spec.md §4.2's scheduling
// model and failure semantics.
func (e *Engine) decodeWriteCycle() {
	if e.decoder == nil {
		e.stateMu.Lock()
		e.pause()
		e.stateMu.Unlock()
		return
	}

	buf := make([]float32, ResampleChunkFrames*int(e.decoder.Channels()))
	n, err := e.decoder.Read(buf)

	e.stateMu.Lock()
	defer e.stateMu.Unlock()

	if n > 0 {
		frame := buf[:n]
		ApplyVolume(frame)
		if werr := e.output.Write(frame); werr != nil {
			e.events <- Event{DeviceError: werr}
			e.pause()
			return
		}
		e.state.Elapsed += float64(n) / float64(int(e.decoder.Channels())) / float64(e.decoder.SampleRate())
	}
	if err != nil {
		// End of stream (or an IO error treated the same way per
		// spec.md §4.2): advance as if the song finished.
		e.loadAndPlay(e.state.Next(1))
	}
}
