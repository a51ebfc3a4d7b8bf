// Package ccd implements Collection Construction: the multi-phase
// pipeline that walks directories, probes audio files, folds them into
// an Artist/Album/Song graph, computes sort orderings, converts art and
// persists the result. See spec.md §4.1.
package ccd

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	l "github.com/sirupsen/logrus"

	"github.com/hinto-janai/festival-sub001/internal/collection"
	"github.com/hinto-janai/festival-sub001/internal/persist"
)

var log = l.WithFields(l.Fields{"srv": "ccd"})

// Phase names the 13 CCD phases in spec.md §4.1, in order.
type Phase string

const (
	PhaseDeconstruct Phase = "deconstruct"
	PhaseWalkDir      Phase = "walkdir"
	PhaseParse        Phase = "parse"
	PhaseFix          Phase = "fix"
	PhaseSort         Phase = "sort"
	PhaseMap          Phase = "map"
	PhasePrepare      Phase = "prepare"
	PhaseArt          Phase = "art"
	PhaseClone        Phase = "clone"
	PhaseConvert      Phase = "convert"
	PhaseFinalize     Phase = "finalize"
	PhasePublish      Phase = "publish"
	PhaseDisk         Phase = "disk"
)

// Progress is one update emitted on the CCD progress channel.
type Progress struct {
	Phase   Phase
	Percent uint8 // 0..=100
	Detail  string
	Err     error // non-nil for a non-fatal, logged-and-skipped error
}

// percentTable assigns each phase a percent-complete checkpoint. Every
// progress update a phase emits carries that phase's checkpoint; no
// intermediate percentages are emitted within a phase.
var percentTable = map[Phase]uint8{
	PhaseDeconstruct: 0,
	PhaseWalkDir:      5,
	PhaseParse:        10,
	PhaseFix:          55,
	PhaseSort:         65,
	PhaseMap:          75,
	PhasePrepare:      80,
	PhaseArt:          82,
	PhaseClone:        92,
	PhaseConvert:      94,
	PhaseFinalize:     96,
	PhasePublish:      97,
	PhaseDisk:         98,
}

// Options configures one CCD run.
type Options struct {
	Paths       []string // directories to scan
	ArtDir      string   // root dir under which resolved art is written (daemon flavor)
	CollectionPath string // destination path for collection.bin
	NoArt       bool     // skip the Art phases entirely (headless-without-art builds)
	Separator   string   // multi-value tag separator, default ";"
}

// Result is what a completed CCD run hands back to the Kernel.
type Result struct {
	Collection *collection.Collection
	Perf       Perf
	Err        error
}

// Perf is the per-phase timing breakdown of one run, returned in
// Result. It is not written to disk.
type Perf struct {
	RunID          string                  `json:"run_id"`
	PhaseDurations map[Phase]time.Duration `json:"phase_durations"`
	ArtistCount    int                     `json:"artist_count"`
	AlbumCount     int                     `json:"album_count"`
	SongCount      int                     `json:"song_count"`
	FileSizeBytes  int64                   `json:"file_size_bytes"`
}

// Ccd runs one Collection Construction. Deconstruct drops this run's
// reference to Prev (the previous Collection) without waiting for
// other holders; pass nil on first boot.
type Ccd struct {
	Prev     *collection.Collection
	Progress chan Progress
	opts     Options
	runID    string
}

// New creates a Ccd ready to Run. runID tags every log line this run
// emits so concurrent or back-to-back runs (a reset racing a prior
// run's tail) can be told apart in festivald.log.
func New(opts Options) *Ccd {
	if opts.Separator == "" {
		opts.Separator = ";"
	}
	return &Ccd{
		Progress: make(chan Progress, 64),
		opts:     opts,
		runID:    uuid.New().String(),
	}
}

// emit sends a progress update, never blocking the caller for long: the
// channel is buffered and progress is best-effort.
func (c *Ccd) emit(p Phase, detail string) {
	select {
	case c.Progress <- Progress{Phase: p, Percent: percentTable[p], Detail: detail}:
	default:
	}
}

func (c *Ccd) emitErr(p Phase, err error) {
	select {
	case c.Progress <- Progress{Phase: p, Percent: percentTable[p], Err: err}:
	default:
	}
	log.WithField("run", c.runID).Errorf("%s: %v", p, err)
}

// Run executes all 13 phases and returns the finished Collection. It
// never aborts for a single bad file. Per-file, directory and Disk-phase
// errors are reported on the Progress channel and logged; Result.Err is
// always nil and the in-memory Collection is always returned, per
// spec.md §4.1's failure semantics.
func (c *Ccd) Run(ctx context.Context) Result {
	perf := Perf{RunID: c.runID, PhaseDurations: make(map[Phase]time.Duration)}
	timed := func(p Phase, fn func()) {
		start := time.Now()
		c.emit(p, "")
		fn()
		perf.PhaseDurations[p] = time.Since(start)
	}

	// 1. Deconstruct: let go of Prev.
	timed(PhaseDeconstruct, func() { c.deconstruct() })

	// 2. WalkDir
	var files []candidate
	timed(PhaseWalkDir, func() { files = c.walkDir(c.opts.Paths) })

	// 3. Parse (The Loop)
	var artists []collection.Artist
	var albums []collection.Album
	var songs []collection.Song
	var artCount int
	timed(PhaseParse, func() {
		artists, albums, songs, artCount = c.parse(files)
	})

	// 4. Fix
	timed(PhaseFix, func() { fix(artists, albums, songs) })

	// 5. Sort
	var sorts collection.SortOrders
	timed(PhaseSort, func() { sorts = computeSortOrders(artists, albums, songs) })

	// 6. Map
	var exact collection.ExactMap
	timed(PhaseMap, func() { exact = buildExactMap(artists, albums, songs) })

	// 7. Prepare
	var col *collection.Collection
	timed(PhasePrepare, func() {
		col = &collection.Collection{
			Artists: artists,
			Albums:  albums,
			Songs:   songs,
			Sort:    sorts,
			Map:     exact,
			Created: time.Now(),
			Empty:   len(artists) == 0,
		}
	})

	var diskCol *collection.Collection

	if !c.opts.NoArt {
		// 8. Art (resize)
		timed(PhaseArt, func() { c.resizeArt(col) })

		// 9. Clone
		timed(PhaseClone, func() { diskCol = cloneCollection(col) })

		// 10. Convert
		timed(PhaseConvert, func() { c.convertArt(col) })
	} else {
		diskCol = col
	}

	// 11. Finalize: GUI-only texture preregistration, a no-op for the
	// headless/daemon flavor this core targets.
	timed(PhaseFinalize, func() {})

	// 12. Publish
	timed(PhasePublish, func() { c.emit(PhasePublish, "publishing") })

	// 13. Disk
	var diskErr error
	timed(PhaseDisk, func() { diskErr = c.saveToDisk(diskCol) })

	perf.ArtistCount = len(artists)
	perf.AlbumCount = len(albums)
	perf.SongCount = len(songs)
	if diskErr != nil {
		c.emitErr(PhaseDisk, diskErr)
	}

	close(c.Progress)

	return Result{Collection: col, Perf: perf, Err: nil}
}

// ReconvertArt re-runs the Art and Convert phases against an
// already-built Collection in place, without re-walking directories or
// re-probing files. This is the job the Kernel's boot sequence spawns
// when a Collection loads successfully from disk, per spec.md §4.3
// step 2: "start an art-conversion CCD job that turns raw art bytes
// into resolved art handles without rebuilding."
func (c *Ccd) ReconvertArt(col *collection.Collection) {
	if col.Empty {
		return
	}
	c.emit(PhaseArt, "reconvert")
	c.resizeArt(col)
	c.emit(PhaseConvert, "reconvert")
	c.convertArt(col)
	close(c.Progress)
}

// deconstruct drops this run's reference to Prev and cannot fail. It
// does not wait: goroutines still holding Prev keep reading it, and the
// garbage collector frees it once the last of them lets go.
func (c *Ccd) deconstruct() {
	if c.Prev == nil {
		return
	}
	c.Prev = nil
}

type candidate struct {
	path string
	mime string
}

// saveToDisk writes the Collection to opts.CollectionPath using the
// tmp-write-then-rename protocol from spec.md §4.1 step 13 / §4.4.
func (c *Ccd) saveToDisk(col *collection.Collection) error {
	if c.opts.CollectionPath == "" {
		return nil
	}
	tmp := c.opts.CollectionPath + ".tmp"
	if err := persist.Save(tmp, persist.MagicCollection, persist.VersionCollection, col); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("ccd: save collection: %w", err)
	}
	if err := os.Rename(tmp, c.opts.CollectionPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("ccd: rename collection: %w", err)
	}
	return nil
}

// chunkCount returns how many worker goroutines Parse/Art-resize should
// use: ~25% of available parallelism, at least 1, per spec.md §4.1.
func chunkCount() int {
	n := runtime.NumCPU() / 4
	if n < 1 {
		n = 1
	}
	return n
}
