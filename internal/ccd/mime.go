package ccd

import (
	"bytes"
	"os"
)

// acceptedExt is the fallback extension allowlist used when magic-byte
// sniffing can't determine a format (some FLAC/APE files in the wild
// lack a clean leading tag block behind layers of padding).
var acceptedExt = map[string]string{
	".mp3":  "audio/mpeg",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".opus": "audio/opus",
	".wav":  "audio/wav",
	".aac":  "audio/aac",
	".aiff": "audio/aiff",
	".aif":  "audio/aiff",
	".wv":   "audio/x-wavpack",
}

// magicSniffers are checked in order against a file's first 16 bytes.
var magicSniffers = []struct {
	mime string
	sig  []byte
	off  int
}{
	{"audio/flac", []byte("fLaC"), 0},
	{"audio/mpeg", []byte{0xFF, 0xFB}, 0},
	{"audio/mpeg", []byte{0xFF, 0xFA}, 0},
	{"audio/mpeg", []byte("ID3"), 0},
	{"audio/wav", []byte("RIFF"), 0},
	{"audio/ogg", []byte("OggS"), 0},
	{"audio/mp4", []byte("ftyp"), 4},
	{"audio/x-wavpack", []byte("wvpk"), 0},
}

// sniffMime reads the leading bytes of path and returns the audio MIME
// type it matches, falling back to the extension table when no magic
// bytes match. It returns "" when the file is not a recognized audio
// container at all.
func sniffMime(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	buf := make([]byte, 16)
	n, _ := f.Read(buf)
	buf = buf[:n]

	// AIFF/AIFC nest their real tag 8 bytes into the FORM container, so
	// it needs its own check rather than a fixed-offset table entry.
	if len(buf) >= 12 && bytes.Equal(buf[0:4], []byte("FORM")) {
		if bytes.Equal(buf[8:12], []byte("AIFF")) || bytes.Equal(buf[8:12], []byte("AIFC")) {
			return "audio/aiff"
		}
	}

	for _, s := range magicSniffers {
		if s.off+len(s.sig) > len(buf) {
			continue
		}
		if bytes.Equal(buf[s.off:s.off+len(s.sig)], s.sig) {
			return s.mime
		}
	}

	return extMime(path)
}

// imageMagicSniffers are checked in order against a candidate folder-art
// file's first 16 bytes, per spec.md §4.1's "jpg/png/bmp/ico/tiff/webp/avif"
// magic-byte list.
var imageMagicSniffers = []struct {
	sig []byte
	off int
}{
	{[]byte{0xFF, 0xD8, 0xFF}, 0},                            // jpg
	{[]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, 0},  // png
	{[]byte{'B', 'M'}, 0},                                    // bmp
	{[]byte{0x00, 0x00, 0x01, 0x00}, 0},                      // ico
	{[]byte{0x49, 0x49, 0x2A, 0x00}, 0},                      // tiff, little-endian
	{[]byte{0x4D, 0x4D, 0x00, 0x2A}, 0},                      // tiff, big-endian
	{[]byte("ftypavif"), 4},                                  // avif
	{[]byte("ftypavis"), 4},                                  // avif image sequence
}

// sniffImageMime reports whether path's leading bytes match one of the
// accepted folder-art image formats, by magic bytes only — no reliance
// on the file's extension.
func sniffImageMime(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 16)
	n, _ := f.Read(buf)
	buf = buf[:n]

	// WebP nests its real tag 8 bytes into a generic RIFF container, so
	// it needs both checks rather than a fixed-offset table entry.
	if len(buf) >= 12 && bytes.Equal(buf[0:4], []byte("RIFF")) && bytes.Equal(buf[8:12], []byte("WEBP")) {
		return true
	}

	for _, s := range imageMagicSniffers {
		if s.off+len(s.sig) > len(buf) {
			continue
		}
		if bytes.Equal(buf[s.off:s.off+len(s.sig)], s.sig) {
			return true
		}
	}
	return false
}

func extMime(path string) string {
	ext := lowerExt(path)
	return acceptedExt[ext]
}

func lowerExt(path string) string {
	i := len(path) - 1
	for ; i >= 0 && path[i] != '.' && path[i] != '/'; i-- {
	}
	if i < 0 || path[i] != '.' {
		return ""
	}
	ext := path[i:]
	out := make([]byte, len(ext))
	for j := 0; j < len(ext); j++ {
		c := ext[j]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[j] = c
	}
	return string(out)
}
