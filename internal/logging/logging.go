// Package logging sets up Festival's process-wide logrus output: a
// single log file under the configured log directory, opened once at
// boot and never touched again. See spec.md §7.
package logging

import (
	"os"
	"path/filepath"

	l "github.com/sirupsen/logrus"
	"gitlab.com/go-utilities/file"
)

const filename = "festivald.log"

// Setup points logrus at logDir/festivald.log (created if it doesn't
// already exist) and applies level, which must parse via
// logrus.ParseLevel ("trace".."panic"). Grounded on the teacher's
// internal/server.setupLogging: no log entry is possible before this
// call returns, so Setup must run before anything else logs.
func Setup(logDir, level string) error {
	lvl, err := l.ParseLevel(level)
	if err != nil {
		return err
	}

	path := filepath.Join(logDir, filename)
	exists, err := file.Exists(path)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	l.SetOutput(f)
	l.SetLevel(lvl)
	l.SetFormatter(&l.TextFormatter{FullTimestamp: true})

	if exists {
		l.Trace("log file already existed, appending")
	} else {
		l.Trace("created new log file")
	}
	return nil
}
