// Package festival wires together config, logging, the Kernel, and OS
// signal handling into the daemon's main control loop, mirroring the
// teacher's internal/server.Run. See spec.md §4.3 and §7.
package festival

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	l "github.com/sirupsen/logrus"

	"github.com/hinto-janai/festival-sub001/internal/audio"
	"github.com/hinto-janai/festival-sub001/internal/config"
	"github.com/hinto-janai/festival-sub001/internal/kernel"
	"github.com/hinto-janai/festival-sub001/internal/logging"
)

var log = l.WithFields(l.Fields{"srv": "festival"})

// Version is set at build time via -ldflags; "dev" otherwise.
var Version = "dev"

// Run loads and validates config, sets up logging and the panic hook,
// boots the Kernel against an initial scan of the configured music
// directories, and blocks until SIGINT/SIGTERM, then sends the Kernel
// an Exit command and returns its save result. It is the single
// entrypoint cmd/festivald's `run`
// subcommand calls, exactly mirroring the teacher's
// internal/server.Run(version).
func Run(version string) error {
	Version = version

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "cannot run festivald")
	}
	if err = cfg.Validate(); err != nil {
		return errors.Wrap(err, "cannot run festivald")
	}

	if err = logging.Setup(cfg.LogDir, cfg.LogLevel); err != nil {
		return errors.Wrap(err, "cannot run festivald")
	}

	defer setPanicHook(cfg.CacheDir)()

	log.Trace("running ...")

	k := kernel.New(kernel.Options{
		CollectionPath: cfg.CollectionPath(),
		AudioStatePath: cfg.AudioStatePath(),
		PlaylistsPath:  cfg.PlaylistsPath(),
		ArtDir:         cfg.ArtDir(),
		SignalDir:      cfg.SignalDir,
		NoArt:          cfg.NoArt,
		Separator:      cfg.Separator,
	})

	out := audio.NewDummyOutput()
	if err := k.Boot(out); err != nil {
		return errors.Wrap(err, "cannot run festivald")
	}

	go k.Run()

	if len(cfg.MusicDirs) > 0 {
		resp := make(chan kernel.Event, 1)
		k.Commands() <- kernel.Command{Kind: kernel.CmdNewCollection, Paths: cfg.MusicDirs, Resp: resp}
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	sig := <-interrupt
	log.Tracef("signal received: %v", sig)
	log.Trace("stopping ...")

	resp := make(chan kernel.Event, 1)
	k.Commands() <- kernel.Command{Kind: kernel.CmdExit, Resp: resp}
	ev := <-resp
	log.Trace("stopped")
	return ev.ExitErr
}
