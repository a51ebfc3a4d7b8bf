package ccd

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
)

// walkDir recursively expands the configured music directories into a
// deduplicated, sorted list of audio-file candidates, skipping anything
// sniffMime doesn't recognize. Paths are deduplicated by their
// filepath.Clean form so the same directory listed twice doesn't
// double-count songs.
func (c *Ccd) walkDir(paths []string) []candidate {
	seen := make(map[string]bool)
	var out []candidate

	for _, root := range paths {
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				c.emitErr(PhaseWalkDir, err)
				return nil // keep walking; one bad dir entry doesn't abort the scan
			}
			if d.IsDir() {
				return nil
			}
			path = filepath.Clean(path)
			if seen[path] {
				return nil
			}
			mime := sniffMime(path)
			if mime == "" {
				return nil
			}
			seen[path] = true
			out = append(out, candidate{path: path, mime: mime})
			return nil
		})
		if err != nil {
			c.emitErr(PhaseWalkDir, err)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].path < out[j].path })
	c.emit(PhaseWalkDir, "found "+strconv.Itoa(len(out))+" candidate files")
	return out
}
