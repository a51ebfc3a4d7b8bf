// Package config loads and validates festivald's on-disk configuration:
// where to scan for music, where persisted state and logs live, and
// the daemon's audio/signal settings. Grounded on the teacher's
// internal/config/cfg.go load/validate idiom, generalized from a
// UPnP/DLNA server's hierarchy config to Festival's scan/playback
// settings. See spec.md §4.1, §4.4, §6.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	l "github.com/sirupsen/logrus"
	"gitlab.com/go-utilities/file"
)

// CfgDir is the directory festivald looks for its configuration file
// in, matching the teacher's fixed-path convention.
const CfgDir = "/etc/festivald"

const cfgFilename = "config.json"

// Cfg stores festivald's full configuration, read from CfgDir/config.json.
type Cfg struct {
	MusicDirs []string `json:"music_dirs"`
	Separator string   `json:"separator"`
	NoArt     bool     `json:"no_art"`

	SignalDir string `json:"signal_dir"`

	CacheDir string `json:"cache_dir"`
	LogDir   string `json:"log_dir"`
	LogLevel string `json:"log_level"`
}

// CollectionPath returns where the built Collection is persisted.
func (c *Cfg) CollectionPath() string { return filepath.Join(c.CacheDir, "collection.bin") }

// AudioStatePath returns where AudioState is persisted.
func (c *Cfg) AudioStatePath() string { return filepath.Join(c.CacheDir, "audio.bin") }

// PlaylistsPath returns where Playlists is persisted.
func (c *Cfg) PlaylistsPath() string { return filepath.Join(c.CacheDir, "playlists.bin") }

// ArtDir returns the directory resolved art handles are written under.
// CCD's Convert phase names each file by the sha256 of its bytes
// (`image/{sha256}.jpg`); there are no per-run timestamp directories
// and no album-index file names.
func (c *Cfg) ArtDir() string { return filepath.Join(c.CacheDir, "image") }

func cfgFilepath() string { return filepath.Join(CfgDir, cfgFilename) }

// Load reads and JSON-unmarshals the configuration file at the fixed
// CfgDir location, applying defaults for anything the file leaves
// unset.
func Load() (Cfg, error) {
	return loadFrom(cfgFilepath())
}

func loadFrom(path string) (Cfg, error) {
	var cfg Cfg

	raw, err := os.ReadFile(path)
	if err != nil {
		return Cfg{}, errors.Wrapf(err, "config file '%s' couldn't be read", path)
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Cfg{}, errors.Wrapf(err, "config file '%s' couldn't be parsed", path)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Cfg) applyDefaults() {
	if c.Separator == "" {
		c.Separator = ";"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks that the configuration is complete and usable,
// returning the first problem found. Mirrors the teacher's
// Cfg.Validate/cnt.validate shape: directory-existence checks first,
// then domain-specific rules.
func (c *Cfg) Validate() error {
	if err := validateDir(c.CacheDir, "cache_dir"); err != nil {
		return err
	}
	if err := validateDir(c.LogDir, "log_dir"); err != nil {
		return err
	}
	if len(c.MusicDirs) == 0 {
		return fmt.Errorf("at least one entry in music_dirs must be configured")
	}
	for _, d := range c.MusicDirs {
		if err := validateDir(d, "music_dirs"); err != nil {
			return err
		}
	}
	if c.SignalDir != "" {
		if err := validateDir(c.SignalDir, "signal_dir"); err != nil {
			return err
		}
	}
	if _, err := l.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(err, "log_level '%s' is invalid", c.LogLevel)
	}
	return nil
}

// Test reads the configuration file and reports whether it is complete
// and consistent, matching the teacher's config.Test() used by
// `festivald test`.
func Test() error {
	cfg, err := Load()
	if err != nil {
		return errors.Wrapf(err, "the festivald configuration file '%s' couldn't be read", cfgFilepath())
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	fmt.Println("Congrats: The festivald configuration is complete and consistent :)")
	return nil
}

func validateDir(dir, name string) error {
	if dir == "" {
		return fmt.Errorf("no %s configured", name)
	}
	exists, err := file.Exists(dir)
	if err != nil {
		return errors.Wrapf(err, "cannot check if %s '%s' exists", name, dir)
	}
	if !exists {
		return fmt.Errorf("%s '%s' doesn't exist", name, dir)
	}
	return nil
}
