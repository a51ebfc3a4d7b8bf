package ccd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dhowden/tag"

	"github.com/hinto-janai/festival-sub001/internal/collection"
)

// probed is what one file yields out of tag reading, before folding
// into the artist/album/song arrays.
type probed struct {
	path        string
	artist      string
	album       string
	title       string
	trackNo     *uint32
	discNo      *uint32
	release     collection.Date
	picture     []byte
	runtimeSecs float64
	sampleRate  uint32
}

// parse is CCD's "The Loop": probe every candidate file concurrently
// across chunkCount() workers, then fold the results into Artist/Album/
// Song arrays and link them by index. A file that can't be opened, is a
// compilation, or yields no runtime/sample rate is reported and skipped,
// never aborting the whole run; a file whose tags can't be read is still
// indexed under filename-derived metadata.
func (c *Ccd) parse(files []candidate) ([]collection.Artist, []collection.Album, []collection.Song, int) {
	results := make([]*probed, len(files))

	workers := chunkCount()
	chunkSize := (len(files) + workers - 1) / workers
	if chunkSize == 0 {
		chunkSize = 1
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		if start >= len(files) {
			break
		}
		end := start + chunkSize
		if end > len(files) {
			end = len(files)
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				p, err := probeFile(files[i].path, files[i].mime)
				if err != nil {
					c.emitErr(PhaseParse, err)
					continue
				}
				if p.runtimeSecs <= 0 || p.sampleRate == 0 {
					// Per the "skip on missing runtime" rule: a file whose
					// duration/sample rate couldn't be determined from its
					// container headers isn't indexed as a playable song.
					c.emitErr(PhaseParse, fmt.Errorf("%s: no runtime/sample rate recovered from container headers", files[i].path))
					continue
				}
				results[i] = p
			}
		}(start, end)
	}
	wg.Wait()

	return fold(results)
}

// probeFile reads tags with dhowden/tag and falls back to filename-
// derived metadata for anything the format doesn't carry. Runtime and
// sample rate are always recovered from the container's own headers
// (never from the decoder), since CCD only catalogs files; it never
// decodes audio.
func probeFile(path, mime string) (*probed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		// Tagless file (bare WAV, stripped FLAC): still index it under
		// filename-derived metadata rather than dropping it.
		base := filepath.Base(path)
		p := &probed{path: path, title: stripExt(base), artist: "Unknown Artist", album: "Unknown Album"}
		p.runtimeSecs, p.sampleRate, _ = probeDuration(path, mime)
		return p, nil
	}

	if m.AlbumArtist() == "Various Artists" {
		return nil, fmt.Errorf("%s: compilation (album artist %q), skipped", path, m.AlbumArtist())
	}

	p := &probed{
		path:   path,
		artist: firstNonEmpty(m.AlbumArtist(), m.Artist(), m.Composer(), "Unknown Artist"),
		album:  firstNonEmpty(m.Album(), "Unknown Album"),
		title:  firstNonEmpty(m.Title(), stripExt(filepath.Base(path))),
	}

	if track, _ := m.Track(); track > 0 {
		t := uint32(track)
		p.trackNo = &t
	}
	if disc, _ := m.Disc(); disc > 0 {
		d := uint32(disc)
		p.discNo = &d
	}
	if year := m.Year(); year > 0 {
		p.release = collection.Date{Year: year}
	}
	if pic := m.Picture(); pic != nil {
		p.picture = pic.Data
	}

	p.runtimeSecs, p.sampleRate, _ = probeDuration(path, mime)

	return p, nil
}

// probeWavDuration reads a RIFF/WAVE header's fmt and data chunks to
// compute exact duration without decoding the whole file. byteRate
// comes straight out of the fmt chunk regardless of the codec tag, so
// this covers PCM and ADPCM WAV alike.
func probeWavDuration(path string) (secs float64, sampleRate uint32, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()

	var riff [12]byte
	if _, err := f.Read(riff[:]); err != nil || string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return 0, 0, false
	}

	var byteRate uint32
	var dataSize uint32
	var header [8]byte
	for {
		if _, err := f.Read(header[:]); err != nil {
			break
		}
		id := string(header[0:4])
		size := uint32(header[4]) | uint32(header[5])<<8 | uint32(header[6])<<16 | uint32(header[7])<<24
		switch id {
		case "fmt ":
			body := make([]byte, size)
			if _, err := f.Read(body); err != nil || len(body) < 16 {
				return 0, 0, false
			}
			sampleRate = uint32(body[4]) | uint32(body[5])<<8 | uint32(body[6])<<16 | uint32(body[7])<<24
			byteRate = uint32(body[8]) | uint32(body[9])<<8 | uint32(body[10])<<16 | uint32(body[11])<<24
		case "data":
			dataSize = size
			if byteRate > 0 {
				return float64(dataSize) / float64(byteRate), sampleRate, true
			}
			return 0, sampleRate, sampleRate > 0
		default:
			f.Seek(int64(size), 1)
		}
	}
	return 0, 0, false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func stripExt(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return name
	}
	return name[:i]
}

// fold groups probed results by (artist, album) and emits the final
// Artist/Album/Song arrays with cross-referencing keys, per spec.md §9's
// Arena+Index design note. Duplicate (artist, album, title) triples are
// all kept as separate Songs here; the Map phase's exact map keeps the
// later one, per the resolved Open Question.
func fold(results []*probed) ([]collection.Artist, []collection.Album, []collection.Song, int) {
	type albumAcc struct {
		key       collection.AlbumKey
		songs     []collection.SongKey
		release   collection.Date
		picture   []byte
		artistIdx collection.ArtistKey
	}

	artistIdx := map[string]collection.ArtistKey{}
	albumIdx := map[string]map[string]*albumAcc{}

	var artists []collection.Artist
	var albums []collection.Album
	var songs []collection.Song
	artCount := 0

	for _, p := range results {
		if p == nil {
			continue
		}

		ak, ok := artistIdx[p.artist]
		if !ok {
			ak = collection.ArtistKey(len(artists))
			artistIdx[p.artist] = ak
			artists = append(artists, collection.Artist{Name: p.artist, OriginalName: p.artist})
			albumIdx[p.artist] = map[string]*albumAcc{}
		}

		acc, ok := albumIdx[p.artist][p.album]
		if !ok {
			alK := collection.AlbumKey(len(albums))
			albums = append(albums, collection.Album{Title: p.album, Artist: ak, Release: p.release, Path: filepath.Dir(p.path)})
			acc = &albumAcc{key: alK, release: p.release, picture: p.picture, artistIdx: ak}
			albumIdx[p.artist][p.album] = acc
			artists[ak].Albums = append(artists[ak].Albums, alK)
		}

		sk := collection.SongKey(len(songs))
		songs = append(songs, collection.Song{
			Title:       p.title,
			Album:       acc.key,
			RuntimeSecs: p.runtimeSecs,
			SampleRate:  p.sampleRate,
			TrackNo:     p.trackNo,
			DiscNo:      p.discNo,
			Path:        p.path,
		})
		acc.songs = append(acc.songs, sk)
		albums[acc.key].Songs = append(albums[acc.key].Songs, sk)
		artists[ak].Songs = append(artists[ak].Songs, sk)
		if len(acc.picture) > 0 {
			albums[acc.key].Art = collection.NewArtBytes(acc.picture)
		}
		if p.picture != nil {
			artCount++
		}
	}

	for i := range albums {
		albums[i].SongCount = uint32(len(albums[i].Songs))
	}

	return artists, albums, songs, artCount
}
