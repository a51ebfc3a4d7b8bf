package kernel

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/hinto-janai/festival-sub001/internal/audio"
	"github.com/hinto-janai/festival-sub001/internal/search"
	"github.com/hinto-janai/festival-sub001/internal/state"
)

func newTestKernel(t *testing.T) *Kernel {
	t.Helper()
	dir := t.TempDir()
	k := New(Options{
		CollectionPath: filepath.Join(dir, "collection.bin"),
		AudioStatePath: filepath.Join(dir, "audio_state.bin"),
		PlaylistsPath:  filepath.Join(dir, "playlists.bin"),
		ArtDir:         filepath.Join(dir, "art"),
		NoArt:          true,
	})
	if err := k.Boot(audio.NewDummyOutput()); err != nil {
		t.Fatalf("boot: %v", err)
	}
	go k.Run()
	t.Cleanup(func() {
		resp := make(chan Event, 1)
		k.Commands() <- Command{Kind: CmdExit, Resp: resp}
		<-resp
	})
	return k
}

func TestBootFromEmptyDiskStartsEmpty(t *testing.T) {
	k := newTestKernel(t)
	col := k.Collection()
	if !col.Empty {
		t.Fatalf("expected an empty collection on first boot, got %d artists", len(col.Artists))
	}
	rs := k.ResetState()
	if rs.Resetting {
		t.Fatalf("expected no reset in flight right after boot")
	}
}

func TestSearchRoundTrip(t *testing.T) {
	k := newTestKernel(t)
	resp := make(chan Event, 1)
	k.Commands() <- Command{
		Kind:       CmdSearch,
		SearchText: "anything",
		SearchMode: search.ModeAll,
		Resp:       resp,
	}

	select {
	case ev := <-resp:
		if ev.Kind != EvtSearchResp {
			t.Fatalf("got event kind %v, want EvtSearchResp", ev.Kind)
		}
		if !ev.Keychain.IsEmpty() {
			t.Fatalf("expected an empty keychain against an empty collection")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for search response")
	}
}

func TestPlaylistCommandsMutateInPlace(t *testing.T) {
	k := newTestKernel(t)

	k.Commands() <- Command{Kind: CmdPlaylistNew, PlaylistName: "favorites"}
	k.Commands() <- Command{Kind: CmdPlaylistClone, PlaylistFrom: "favorites", PlaylistInto: "favorites-copy"}

	deadline := time.After(time.Second)
	for {
		_, fav := k.playlists.Get("favorites")
		_, copy := k.playlists.Get("favorites-copy")
		if fav && copy {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for playlist commands to apply")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestResetWithNoPathsPublishesEmptyCollection(t *testing.T) {
	k := newTestKernel(t)
	resp := make(chan Event, 1)
	k.Commands() <- Command{Kind: CmdNewCollection, Paths: nil, Resp: resp}

	deadline := time.After(2 * time.Second)
	for {
		rs := k.ResetState()
		if !rs.Resetting && rs.Phase == state.ResetPhaseDone {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for reset to finish")
		case <-time.After(10 * time.Millisecond):
		}
	}

	col := k.Collection()
	if !col.Empty {
		t.Fatalf("expected an empty collection after scanning no paths, got %d artists", len(col.Artists))
	}
}
