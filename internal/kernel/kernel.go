// Package kernel implements the sole coordinator: the single owner of
// the current Collection pointer, which routes commands between
// frontends, CCD, Audio, Search, and the signal watcher, and performs
// the boot and reset protocols. See spec.md §4.3.
package kernel

import (
	"sync"
	"sync/atomic"

	l "github.com/sirupsen/logrus"

	"github.com/hinto-janai/festival-sub001/internal/audio"
	"github.com/hinto-janai/festival-sub001/internal/ccd"
	"github.com/hinto-janai/festival-sub001/internal/collection"
	"github.com/hinto-janai/festival-sub001/internal/persist"
	"github.com/hinto-janai/festival-sub001/internal/search"
	"github.com/hinto-janai/festival-sub001/internal/state"
	"github.com/hinto-janai/festival-sub001/internal/watch"
)

var log = l.WithFields(l.Fields{"srv": "kernel"})

// Options configures one Kernel: where its persisted files live and
// what it scans on a NewCollection command.
type Options struct {
	CollectionPath string
	AudioStatePath string
	PlaylistsPath  string
	ArtDir         string
	SignalDir      string // sentinel directory; empty disables the watcher
	NoArt          bool
	Separator      string // multi-value tag separator CCD splits on; "" means CCD's own default
}

// Kernel is the single-threaded coordinator described in spec.md §4.3.
// Every field the command loop touches is either owned exclusively by
// that loop or is one of the three documented process-wide atomics
// (resetting, saving; volume is delegated to internal/audio's own
// atomic rather than duplicated here, see DESIGN.md).
type Kernel struct {
	opts Options

	col atomic.Pointer[collection.Collection]

	audioState *state.AudioState
	playlists  *state.Playlists
	audioMu    sync.RWMutex // guards frontend reads of audioState/playlists

	resetState   atomic.Pointer[state.ResetState]
	resetting    atomic.Bool
	saving       atomic.Bool

	audioEngine  *audio.Engine
	searchEngine *search.Engine
	watcher      *watch.Watcher

	cmd  chan Command
	quit chan struct{}
}

// New constructs a Kernel; call Boot before Run.
func New(opts Options) *Kernel {
	k := &Kernel{
		opts: opts,
		cmd:  make(chan Command, 128),
		quit: make(chan struct{}),
	}
	k.col.Store(collection.EmptyCollection())
	k.resetState.Store(state.NewResetState())
	return k
}

// Commands returns the channel frontends send Commands on.
func (k *Kernel) Commands() chan<- Command { return k.cmd }

// Collection returns the currently published Collection handle.
func (k *Kernel) Collection() *collection.Collection { return k.col.Load() }

// ResetState returns the current reset-progress snapshot, safe to poll
// from any goroutine, per spec.md §6's "ResetState snapshot is exposed
// via a read-only lock for polling."
func (k *Kernel) ResetState() state.ResetState { return *k.resetState.Load() }

// AudioSnapshot returns a consistent read of the playback state.
func (k *Kernel) AudioSnapshot() state.AudioState {
	return k.audioEngine.Snapshot()
}
