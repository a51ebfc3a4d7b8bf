package kernel

import (
	"github.com/hinto-janai/festival-sub001/internal/collection"
	"github.com/hinto-janai/festival-sub001/internal/search"
	"github.com/hinto-janai/festival-sub001/internal/state"
)

// CommandKind enumerates every frontend-to-core command in spec.md §6.
type CommandKind int

const (
	CmdToggle CommandKind = iota
	CmdPlay
	CmdPause
	CmdNext
	CmdPrevious
	CmdStop

	CmdRepeat
	CmdVolume
	CmdSeek

	CmdAddQueueSong
	CmdAddQueueAlbum
	CmdAddQueueArtist
	CmdAddQueuePlaylist
	CmdShuffle
	CmdClear
	CmdSkip
	CmdBack

	CmdSetQueueIndex
	CmdRemoveQueueRange

	CmdPlaylistNew
	CmdPlaylistRemove
	CmdPlaylistClone
	CmdPlaylistRemoveSong
	CmdPlaylistAddArtist
	CmdPlaylistAddAlbum
	CmdPlaylistAddSong

	CmdRestoreAudioState
	CmdCachePath

	CmdNewCollection
	CmdSearch

	CmdExit
)

// Command is one frontend-to-core message, per spec.md §6's "Commands
// from frontend to core" table. Only the fields relevant to Kind are
// read.
type Command struct {
	Kind CommandKind

	// Playback / queue
	PreviousThreshold float64
	Repeat            state.Repeat
	Volume            uint8
	SeekMode          state.SeekMode
	SeekSecs          float64

	SongKey      collection.SongKey
	AlbumKey     collection.AlbumKey
	ArtistKey    collection.ArtistKey
	PlaylistName string
	Append       state.Append
	ClearKeepPlaying bool
	Offset       int
	Skip         int
	Back         int

	QueueIndex   int
	RangeStart   int
	RangeEnd     int
	SkipOnRemove bool

	// Playlists
	PlaylistFrom  string
	PlaylistInto  string
	PlaylistIndex int

	// State / collection
	Paths      []string
	SearchText string
	SearchMode search.Mode

	// Every command carries a response channel; frontends that don't
	// care about a reply pass nil.
	Resp chan Event
}

// EventKind enumerates every core-to-frontend event in spec.md §6.
type EventKind int

const (
	EvtDropCollection EventKind = iota
	EvtNewCollection
	EvtFailed
	EvtDeviceError
	EvtPlayError
	EvtSeekError
	EvtPathError
	EvtSearchResp
	EvtExit
)

// Event is one core-to-frontend message.
type Event struct {
	Kind EventKind

	Collection *collection.Collection
	OldHandle  *collection.Collection
	Message    string
	SongKey    collection.SongKey
	Keychain   collection.Keychain
	ExitErr    error
}
