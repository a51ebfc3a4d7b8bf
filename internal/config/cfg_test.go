package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromAppliesDefaults(t *testing.T) {
	path := writeTestConfig(t, `{"music_dirs": ["/music"], "cache_dir": "/var/lib/festivald"}`)

	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Separator != ";" {
		t.Errorf("got separator %q, want default ';'", cfg.Separator)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("got log level %q, want default 'info'", cfg.LogLevel)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	if _, err := loadFrom(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestLoadFromInvalidJSON(t *testing.T) {
	path := writeTestConfig(t, `{not valid json`)
	if _, err := loadFrom(path); err == nil {
		t.Fatal("expected an error for invalid JSON")
	}
}

func TestValidateRejectsMissingMusicDirs(t *testing.T) {
	dir := t.TempDir()
	cfg := Cfg{CacheDir: dir, LogDir: dir, LogLevel: "info"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error when music_dirs is empty")
	}
}

func TestValidateRejectsNonexistentDir(t *testing.T) {
	dir := t.TempDir()
	cfg := Cfg{
		MusicDirs: []string{filepath.Join(dir, "does-not-exist")},
		CacheDir:  dir,
		LogDir:    dir,
		LogLevel:  "info",
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for a music dir that doesn't exist")
	}
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	dir := t.TempDir()
	cfg := Cfg{MusicDirs: []string{dir}, CacheDir: dir, LogDir: dir, LogLevel: "not-a-level"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for an invalid log_level")
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := Cfg{MusicDirs: []string{dir}, CacheDir: dir, LogDir: dir, LogLevel: "info"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPathHelpersJoinCacheDir(t *testing.T) {
	cfg := Cfg{CacheDir: "/var/lib/festivald"}
	if got, want := cfg.CollectionPath(), "/var/lib/festivald/collection.bin"; got != want {
		t.Errorf("CollectionPath() = %q, want %q", got, want)
	}
	if got, want := cfg.AudioStatePath(), "/var/lib/festivald/audio.bin"; got != want {
		t.Errorf("AudioStatePath() = %q, want %q", got, want)
	}
	if got, want := cfg.PlaylistsPath(), "/var/lib/festivald/playlists.bin"; got != want {
		t.Errorf("PlaylistsPath() = %q, want %q", got, want)
	}
	if got, want := cfg.ArtDir(), "/var/lib/festivald/image"; got != want {
		t.Errorf("ArtDir() = %q, want %q", got, want)
	}
}
