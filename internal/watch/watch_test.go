package watch

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestWatcher(t *testing.T) (*Watcher, string) {
	t.Helper()
	dir := t.TempDir()
	w, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	return w, dir
}

func TestScanEmitsSimpleSignal(t *testing.T) {
	w, dir := newTestWatcher(t)
	touch(t, dir, "toggle", "")
	w.scan()

	select {
	case sig := <-w.out:
		if sig.Kind != Toggle {
			t.Fatalf("got %v, want Toggle", sig.Kind)
		}
	default:
		t.Fatal("expected a Toggle signal")
	}
	if _, err := os.Stat(filepath.Join(dir, "toggle")); !os.IsNotExist(err) {
		t.Fatal("sentinel file should have been consumed")
	}
}

func TestScanDecodesIntegerArgs(t *testing.T) {
	w, dir := newTestWatcher(t)
	touch(t, dir, "volume", "42")
	touch(t, dir, "index", "3")
	w.scan()

	got := map[Kind]Signal{}
	for i := 0; i < 2; i++ {
		sig := <-w.out
		got[sig.Kind] = sig
	}
	if got[Volume].IntArg != 42 {
		t.Fatalf("volume = %d, want 42", got[Volume].IntArg)
	}
	if got[Index].IntArg != 3 {
		t.Fatalf("index = %d, want 3", got[Index].IntArg)
	}
}

func TestScanStopBeatsPauseAndPlay(t *testing.T) {
	w, dir := newTestWatcher(t)
	touch(t, dir, "stop", "")
	touch(t, dir, "pause", "")
	touch(t, dir, "play", "")
	w.scan()

	sig := <-w.out
	if sig.Kind != Stop {
		t.Fatalf("got %v, want only Stop", sig.Kind)
	}
	select {
	case extra := <-w.out:
		t.Fatalf("got unexpected extra signal %v", extra.Kind)
	default:
	}
}

func TestScanPauseBeatsPlay(t *testing.T) {
	w, dir := newTestWatcher(t)
	touch(t, dir, "pause", "")
	touch(t, dir, "play", "")
	w.scan()

	sig := <-w.out
	if sig.Kind != Pause {
		t.Fatalf("got %v, want only Pause", sig.Kind)
	}
	select {
	case extra := <-w.out:
		t.Fatalf("got unexpected extra signal %v", extra.Kind)
	default:
	}
}

func TestScanNextAndPreviousCancel(t *testing.T) {
	w, dir := newTestWatcher(t)
	touch(t, dir, "next", "")
	touch(t, dir, "previous", "")
	w.scan()

	select {
	case sig := <-w.out:
		t.Fatalf("got unexpected signal %v, want next/previous to cancel", sig.Kind)
	default:
	}
	if _, err := os.Stat(filepath.Join(dir, "next")); !os.IsNotExist(err) {
		t.Fatal("next sentinel should still be consumed even though it cancelled")
	}
}

func TestScanClearDecodesBoolArg(t *testing.T) {
	w, dir := newTestWatcher(t)
	touch(t, dir, "clear", "true")
	w.scan()

	sig := <-w.out
	if sig.Kind != Clear || !sig.BoolArg {
		t.Fatalf("got %+v, want Clear{BoolArg:true}", sig)
	}
}

func TestScanMalformedIntArgIsDropped(t *testing.T) {
	w, dir := newTestWatcher(t)
	touch(t, dir, "volume", "not-a-number")
	w.scan()

	select {
	case sig := <-w.out:
		t.Fatalf("got unexpected signal %v for malformed volume body", sig.Kind)
	default:
	}
}
