package logging

import (
	"os"
	"path/filepath"
	"testing"

	l "github.com/sirupsen/logrus"
)

func TestSetupCreatesLogFileAndAppliesLevel(t *testing.T) {
	dir := t.TempDir()

	if err := Setup(dir, "warn"); err != nil {
		t.Fatal(err)
	}
	if l.GetLevel() != l.WarnLevel {
		t.Errorf("got level %v, want warn", l.GetLevel())
	}

	if _, err := os.Stat(filepath.Join(dir, filename)); err != nil {
		t.Errorf("expected log file to exist: %v", err)
	}
}

func TestSetupRejectsBadLevel(t *testing.T) {
	if err := Setup(t.TempDir(), "not-a-level"); err == nil {
		t.Fatal("expected an error for an invalid level")
	}
}
