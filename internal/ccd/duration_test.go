package ccd

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeProbeFile(t *testing.T, body []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "probe.bin")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProbeFlacDurationReadsStreamInfo(t *testing.T) {
	const sampleRate = 44100
	const totalSamples = 88200 // 2.0s

	body := make([]byte, 4+4+34)
	copy(body[0:4], "fLaC")
	body[4] = 0x00 // not-last, STREAMINFO
	body[5], body[6], body[7] = 0x00, 0x00, 0x22

	packed := uint64(sampleRate)<<44 | uint64(1)<<41 | uint64(15)<<36 | uint64(totalSamples)
	binary.BigEndian.PutUint64(body[8+10:8+18], packed)

	path := writeProbeFile(t, body)
	secs, rate, ok := probeFlacDuration(path)
	if !ok {
		t.Fatal("expected ok")
	}
	if rate != sampleRate {
		t.Errorf("sampleRate = %d, want %d", rate, sampleRate)
	}
	if math.Abs(secs-2.0) > 0.001 {
		t.Errorf("secs = %v, want 2.0", secs)
	}
}

func TestProbeMp3DurationEstimatesFromBitrate(t *testing.T) {
	// MPEG1 Layer III, 128kbps, 44100Hz, no padding.
	header := []byte{0xFF, 0xFB, 0x90, 0x00}
	frameSize := (1152/8*128*1000)/44100 + 0

	const frames = 20
	body := make([]byte, frameSize*frames)
	copy(body[0:4], header)

	path := writeProbeFile(t, body)
	secs, rate, ok := probeMp3Duration(path)
	if !ok {
		t.Fatal("expected ok")
	}
	if rate != 44100 {
		t.Errorf("sampleRate = %d, want 44100", rate)
	}
	want := float64(frames) * 1152 / 44100
	if math.Abs(secs-want) > 0.05 {
		t.Errorf("secs = %v, want ~%v", secs, want)
	}
}

func TestProbeOggDurationReadsGranulePosition(t *testing.T) {
	var buf []byte

	ident := make([]byte, 30)
	ident[0] = 0x01
	copy(ident[1:7], "vorbis")
	binary.LittleEndian.PutUint32(ident[12:16], 44100)

	buf = append(buf, oggPage(0, ident)...)
	buf = append(buf, oggPage(88200, make([]byte, 5))...)

	path := writeProbeFile(t, buf)
	secs, rate, ok := probeOggDuration(path)
	if !ok {
		t.Fatal("expected ok")
	}
	if rate != 44100 {
		t.Errorf("sampleRate = %d, want 44100", rate)
	}
	if math.Abs(secs-2.0) > 0.001 {
		t.Errorf("secs = %v, want 2.0", secs)
	}
}

func oggPage(granule uint64, body []byte) []byte {
	page := make([]byte, 27+1+len(body))
	copy(page[0:4], "OggS")
	page[4] = 0  // version
	page[5] = 0  // header type
	binary.LittleEndian.PutUint64(page[6:14], granule)
	// serial/seq/checksum left zero; unused by probeOggDuration.
	page[26] = 1 // one segment
	page[27] = byte(len(body))
	copy(page[28:], body)
	return page
}

func TestProbeWavPackDurationReadsFirstBlockHeader(t *testing.T) {
	const sampleRate = 44100
	const totalSamples = 132300 // 3.0s
	const rateIdx = 9           // wavPackSampleRates[9] == 44100

	hdr := make([]byte, 32)
	copy(hdr[0:4], "wvpk")
	binary.LittleEndian.PutUint32(hdr[12:16], totalSamples)
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(rateIdx)<<23)

	path := writeProbeFile(t, hdr)
	secs, rate, ok := probeWavPackDuration(path)
	if !ok {
		t.Fatal("expected ok")
	}
	if rate != sampleRate {
		t.Errorf("sampleRate = %d, want %d", rate, sampleRate)
	}
	if math.Abs(secs-3.0) > 0.001 {
		t.Errorf("secs = %v, want 3.0", secs)
	}
}

func TestProbeDurationSkipsUnrecognizedMime(t *testing.T) {
	path := writeProbeFile(t, []byte("not audio"))
	if _, _, ok := probeDuration(path, "text/plain"); ok {
		t.Fatal("expected ok=false for an unhandled mime")
	}
}
