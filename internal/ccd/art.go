package ccd

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/hinto-janai/festival-sub001/internal/collection"
)

const artTargetSize = 500 // px, per SPEC_FULL.md's art-resize grounding

const folderArtMaxDepth = 2

// resizeArt fills in directory-fallback art for any Album that has
// none, then resizes every Album's art down to a square thumbnail, all
// in memory. Resizing (decode plus disintegration/imaging's
// NearestNeighbor resize) runs across chunkCount() workers.
func (c *Ccd) resizeArt(col *collection.Collection) {
	for i := range col.Albums {
		if col.Albums[i].Art.Kind() == collection.ArtUnknown {
			if b := findFolderArt(col.Albums[i].Path); b != nil {
				col.Albums[i].Art = collection.NewArtBytes(b)
			}
		}
	}

	workers := chunkCount()
	n := len(col.Albums)
	chunkSize := (n + workers - 1) / workers
	if chunkSize == 0 {
		return
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		if start >= n {
			break
		}
		end := start + chunkSize
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				al := &col.Albums[i]
				if al.Art.Kind() != collection.ArtBytes {
					continue
				}
				resized, err := resizeOne(al.Art.Bytes())
				if err != nil {
					c.emitErr(PhaseArt, err)
					continue
				}
				al.Art = collection.NewArtBytes(resized)
			}
		}(start, end)
	}
	wg.Wait()
}

// findFolderArt walks an album's own directory up to folderArtMaxDepth
// levels deep looking for any file whose content matches an accepted
// image format by magic bytes, per spec.md §4.1's folder-art fallback.
// Entries are visited in directory order, breadth-first by depth, and
// the first match wins.
func findFolderArt(dir string) []byte {
	if dir == "" {
		return nil
	}

	dirs := []string{dir}
	for depth := 0; depth <= folderArtMaxDepth && len(dirs) > 0; depth++ {
		var next []string
		for _, d := range dirs {
			entries, err := os.ReadDir(d)
			if err != nil {
				continue
			}
			for _, e := range entries {
				path := filepath.Join(d, e.Name())
				if e.IsDir() {
					next = append(next, path)
					continue
				}
				if sniffImageMime(path) {
					b, err := os.ReadFile(path)
					if err == nil {
						return b
					}
				}
			}
		}
		dirs = next
	}
	return nil
}

func resizeOne(raw []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	thumb := imaging.Fill(img, artTargetSize, artTargetSize, imaging.Center, imaging.NearestNeighbor)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// cloneCollection makes a deep-enough copy of col for Disk persistence:
// the Collection handed to the rest of the process keeps resized art in
// memory (Convert phase swaps it to ArtKnown disk handles), while the
// disk copy keeps the raw resized bytes so collection.bin is
// self-contained.
func cloneCollection(col *collection.Collection) *collection.Collection {
	clone := *col
	clone.Albums = make([]collection.Album, len(col.Albums))
	copy(clone.Albums, col.Albums)
	return &clone
}

// convertArt resolves each in-memory Album's art to a content-addressed
// file under the CCD art directory, replacing ArtBytes with ArtKnown so
// the hot Collection never pins raw image bytes in memory longer than
// necessary.
func (c *Ccd) convertArt(col *collection.Collection) {
	if c.opts.ArtDir == "" {
		return
	}
	if err := os.MkdirAll(c.opts.ArtDir, 0o755); err != nil {
		c.emitErr(PhaseConvert, err)
		return
	}
	for i := range col.Albums {
		al := &col.Albums[i]
		if al.Art.Kind() != collection.ArtBytes {
			continue
		}
		sum := sha256.Sum256(al.Art.Bytes())
		name := hex.EncodeToString(sum[:]) + ".jpg"
		path := filepath.Join(c.opts.ArtDir, name)
		if _, err := os.Stat(path); err != nil {
			if err := os.WriteFile(path, al.Art.Bytes(), 0o644); err != nil {
				c.emitErr(PhaseConvert, err)
				continue
			}
		}
		al.Art = collection.NewArtKnown(path, "image/jpeg", int64(len(al.Art.Bytes())))
	}
}
