package festival

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"
)

var startedAt = time.Now()

// setPanicHook installs a deferred recover in the calling goroutine
// that writes a crash.txt report under dir before re-panicking, per
// spec.md §7's crash-report requirement. Grounded on
// original_source/src/panic.rs's panic hook: OS/arch, process args,
// version, uptime, and a stack trace, written to a fixed file before
// the process exits. Go has no process-wide panic hook equivalent to
// Rust's std::panic::set_hook: Run defers this once config and logging
// are set up, and it catches only panics that unwind through Run's own
// goroutine. A panic in any other goroutine (the Kernel loop, Audio,
// Search, CCD) is not recovered here and writes no crash.txt.
func setPanicHook(dir string) func() {
	return func() {
		r := recover()
		if r == nil {
			return
		}

		report := fmt.Sprintf(
			`%v

info:
  os      | %s %s
  args    | %v
  version | %s
  uptime  | %.3f seconds

stack backtrace:
%s`,
			r,
			runtime.GOOS, runtime.GOARCH,
			os.Args,
			Version,
			time.Since(startedAt).Seconds(),
			debug.Stack(),
		)

		path := filepath.Join(dir, "crash.txt")
		if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "panic: could not save crash report: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "panic: saved crash report to %s\n", path)
		}

		panic(r)
	}
}
