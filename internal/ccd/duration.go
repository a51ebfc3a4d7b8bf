package ccd

import (
	"encoding/binary"
	"io"
	"os"
)

// probeDuration recovers exact runtime and sample rate from a file's
// own container/stream headers, dispatching on the MIME sniffMime
// already determined. It never decodes audio frames; every codec
// carries enough in its header to compute duration directly, the same
// way a tag-reading library never plays the file it's reading.
func probeDuration(path, mime string) (secs float64, sampleRate uint32, ok bool) {
	switch mime {
	case "audio/wav":
		return probeWavDuration(path)
	case "audio/flac":
		return probeFlacDuration(path)
	case "audio/ogg", "audio/opus":
		return probeOggDuration(path)
	case "audio/mpeg":
		return probeMp3Duration(path)
	case "audio/mp4":
		return probeMp4Duration(path)
	case "audio/aac":
		return probeAdtsDuration(path)
	case "audio/aiff":
		return probeAiffDuration(path)
	case "audio/x-wavpack":
		return probeWavPackDuration(path)
	}
	return 0, 0, false
}

// probeFlacDuration reads the mandatory STREAMINFO metadata block,
// always the first block after the "fLaC" marker, and pulls the exact
// sample rate and total sample count straight out of its bit-packed
// fields.
func probeFlacDuration(path string) (float64, uint32, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()

	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil || string(magic[:]) != "fLaC" {
		return 0, 0, false
	}

	var header [4]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		return 0, 0, false
	}
	blockType := header[0] & 0x7F
	size := uint32(header[1])<<16 | uint32(header[2])<<8 | uint32(header[3])
	if blockType != 0 || size < 34 {
		return 0, 0, false
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(f, body); err != nil {
		return 0, 0, false
	}

	// bytes[10:18]: sample_rate(20) | channels-1(3) | bits_per_sample-1(5) | total_samples(36)
	packed := binary.BigEndian.Uint64(body[10:18])
	sampleRate := uint32(packed >> 44)
	totalSamples := packed & ((1 << 36) - 1)
	if sampleRate == 0 {
		return 0, 0, false
	}
	return float64(totalSamples) / float64(sampleRate), sampleRate, true
}

// probeOggDuration walks an Ogg bitstream's page headers (skipping
// page payloads via their segment tables, never reading audio data it
// doesn't need) far enough to learn the codec's sample rate from the
// first page's identification packet and the stream's total granule
// position from the last page it finds.
func probeOggDuration(path string) (float64, uint32, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()

	var sampleRate uint32
	var preSkip uint32
	var lastGranule uint64
	first := true

	for {
		var hdr [27]byte
		if _, err := io.ReadFull(f, hdr[:]); err != nil {
			break
		}
		if string(hdr[0:4]) != "OggS" {
			break
		}
		granule := binary.LittleEndian.Uint64(hdr[6:14])
		segCount := int(hdr[26])

		segTable := make([]byte, segCount)
		if _, err := io.ReadFull(f, segTable); err != nil {
			break
		}
		var bodySize int
		for _, s := range segTable {
			bodySize += int(s)
		}

		if first {
			ident := make([]byte, bodySize)
			if _, err := io.ReadFull(f, ident); err != nil {
				break
			}
			switch {
			case bodySize >= 30 && ident[0] == 0x01 && string(ident[1:7]) == "vorbis":
				sampleRate = binary.LittleEndian.Uint32(ident[12:16])
			case bodySize >= 19 && string(ident[0:8]) == "OpusHead":
				sampleRate = 48000 // Opus always decodes at 48kHz regardless of the input rate field.
				preSkip = uint32(binary.LittleEndian.Uint16(ident[10:12]))
			default:
				return 0, 0, false
			}
			first = false
		} else {
			if _, err := f.Seek(int64(bodySize), io.SeekCurrent); err != nil {
				break
			}
		}

		if granule != 0xFFFFFFFFFFFFFFFF {
			lastGranule = granule
		}
	}

	if sampleRate == 0 || lastGranule <= uint64(preSkip) {
		return 0, 0, false
	}
	return float64(lastGranule-uint64(preSkip)) / float64(sampleRate), sampleRate, true
}

var mp3BitrateTableV1L3 = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0}
var mp3BitrateTableV2L3 = [16]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0}
var mp3SampleRateTableV1 = [4]int{44100, 48000, 32000, 0}
var mp3SampleRateTableV2 = [4]int{22050, 24000, 16000, 0}
var mp3SampleRateTableV25 = [4]int{11025, 12000, 8000, 0}

// probeMp3Duration finds the first MPEG audio frame header (skipping
// any leading ID3v2 tag), prefers an embedded Xing/Info VBR header for
// an exact frame count, and otherwise falls back to a CBR estimate
// from the frame's own bitrate and the remaining file size.
func probeMp3Duration(path string) (float64, uint32, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return 0, 0, false
	}
	size := fi.Size()

	offset, err := skipID3v2(f)
	if err != nil {
		return 0, 0, false
	}

	var hdr [4]byte
	if _, err := f.ReadAt(hdr[:], offset); err != nil {
		return 0, 0, false
	}
	if hdr[0] != 0xFF || hdr[1]&0xE0 != 0xE0 {
		return 0, 0, false
	}

	versionBits := (hdr[1] >> 3) & 0x03
	layerBits := (hdr[1] >> 1) & 0x03
	if layerBits != 0x01 { // Layer III only
		return 0, 0, false
	}
	bitrateIdx := (hdr[2] >> 4) & 0x0F
	sampleRateIdx := (hdr[2] >> 2) & 0x03
	padding := (hdr[2] >> 1) & 0x01

	var sampleRate int
	var mpeg1 bool
	switch versionBits {
	case 0x03:
		sampleRate = mp3SampleRateTableV1[sampleRateIdx]
		mpeg1 = true
	case 0x02:
		sampleRate = mp3SampleRateTableV2[sampleRateIdx]
	case 0x00:
		sampleRate = mp3SampleRateTableV25[sampleRateIdx]
	default:
		return 0, 0, false
	}
	if sampleRate == 0 {
		return 0, 0, false
	}

	var bitrateKbps int
	if mpeg1 {
		bitrateKbps = mp3BitrateTableV1L3[bitrateIdx]
	} else {
		bitrateKbps = mp3BitrateTableV2L3[bitrateIdx]
	}
	if bitrateKbps == 0 {
		return 0, 0, false
	}

	samplesPerFrame := 1152
	if !mpeg1 {
		samplesPerFrame = 576
	}
	frameSize := (samplesPerFrame/8*bitrateKbps*1000)/sampleRate + int(padding)

	// A Xing/Info header replaces the side-info bytes right after the
	// 4-byte frame header plus the fixed side-info size; when present
	// it carries the exact total frame count for VBR files.
	sideInfoSize := 32
	if !mpeg1 {
		sideInfoSize = 17
	}
	xingOff := offset + 4 + int64(sideInfoSize)
	tag := make([]byte, 8)
	if _, err := f.ReadAt(tag, xingOff); err == nil {
		if string(tag[0:4]) == "Xing" || string(tag[0:4]) == "Info" {
			flags := binary.BigEndian.Uint32(tag[4:8])
			if flags&0x01 != 0 {
				frames := make([]byte, 4)
				if _, err := f.ReadAt(frames, xingOff+8); err == nil {
					n := binary.BigEndian.Uint32(frames)
					if n > 0 {
						return float64(n) * float64(samplesPerFrame) / float64(sampleRate), uint32(sampleRate), true
					}
				}
			}
		}
	}

	if frameSize <= 0 {
		return 0, 0, false
	}
	remaining := size - offset
	frames := float64(remaining) / float64(frameSize)
	return frames * float64(samplesPerFrame) / float64(sampleRate), uint32(sampleRate), true
}

func skipID3v2(f *os.File) (int64, error) {
	var hdr [10]byte
	if _, err := f.ReadAt(hdr[:], 0); err != nil {
		return 0, err
	}
	if string(hdr[0:3]) != "ID3" {
		return 0, nil
	}
	size := syncSafeInt(hdr[6:10])
	return 10 + int64(size), nil
}

func syncSafeInt(b []byte) uint32 {
	return uint32(b[0])<<21 | uint32(b[1])<<14 | uint32(b[2])<<7 | uint32(b[3])
}

// probeAdtsDuration walks raw ADTS AAC frames (the container used by
// bare .aac files, as opposed to AAC-in-MP4), summing 1024 samples per
// frame the way every ADTS decoder does.
func probeAdtsDuration(path string) (float64, uint32, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()

	var sampleRate uint32
	var totalSamples uint64
	var offset int64

	for {
		var hdr [7]byte
		n, _ := f.ReadAt(hdr[:], offset)
		if n < 7 {
			break
		}
		if hdr[0] != 0xFF || hdr[1]&0xF0 != 0xF0 {
			break
		}
		freqIdx := (hdr[2] >> 2) & 0x0F
		if int(freqIdx) >= len(adtsSampleRates) {
			break
		}
		rate := adtsSampleRates[freqIdx]
		if rate == 0 {
			break
		}
		sampleRate = uint32(rate)

		frameLen := int64(hdr[3]&0x03)<<11 | int64(hdr[4])<<3 | int64(hdr[5]>>5)
		if frameLen < 7 {
			break
		}

		totalSamples += 1024
		offset += frameLen
	}

	if sampleRate == 0 || totalSamples == 0 {
		return 0, 0, false
	}
	return float64(totalSamples) / float64(sampleRate), sampleRate, true
}

var adtsSampleRates = [13]int{96000, 88200, 64000, 48000, 44100, 32000, 24000, 22050, 16000, 12000, 11025, 8000, 7350}

// probeMp4Duration walks the box tree of an MP4/M4A container (used
// for both AAC and ALAC) to find moov/mvhd's movie timescale and
// duration, the same fields QuickTime-family tooling reads.
func probeMp4Duration(path string) (float64, uint32, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()

	mvhd, ok := findMp4Box(f, 0, "moov", "mvhd")
	if !ok {
		return 0, 0, false
	}

	version := mvhd[0]
	var timescale, duration uint64
	if version == 1 {
		if len(mvhd) < 28 {
			return 0, 0, false
		}
		timescale = uint64(binary.BigEndian.Uint32(mvhd[20:24]))
		duration = binary.BigEndian.Uint64(mvhd[24:32])
	} else {
		if len(mvhd) < 20 {
			return 0, 0, false
		}
		timescale = uint64(binary.BigEndian.Uint32(mvhd[12:16]))
		duration = uint64(binary.BigEndian.Uint32(mvhd[16:20]))
	}
	if timescale == 0 {
		return 0, 0, false
	}

	sampleRate := mp4SampleRate(f)
	if sampleRate == 0 {
		// mvhd's timescale is the movie timescale, not necessarily the
		// audio sample rate; without stsd we can't report one, so the
		// file is treated as unprobed per the "skip on missing sample
		// rate" rule.
		return 0, 0, false
	}
	return float64(duration) / float64(timescale), sampleRate, true
}

// mp4SampleRate descends moov/trak/mdia/minf/stbl/stsd to the first
// sample entry's sample rate field, which sits at the same 16.16
// fixed-point offset for both 'mp4a' (AAC) and 'alac' (ALAC) entries.
func mp4SampleRate(f *os.File) uint32 {
	stsd, ok := findMp4BoxPath(f, 0, []string{"moov", "trak", "mdia", "minf", "stbl", "stsd"})
	if !ok || len(stsd) < 44 {
		return 0
	}
	// stsd: version(1) flags(3) entry_count(4) then the first sample
	// entry: size(4) format(4) reserved(6) data_ref_idx(2) version(2)
	// revision(2) vendor(4) channels(2) sample_size(2) pre_defined(2)
	// reserved(2) sample_rate(4, 16.16 fixed point).
	entry := stsd[8:]
	if len(entry) < 36 {
		return 0
	}
	rateFixed := binary.BigEndian.Uint32(entry[32:36])
	return rateFixed >> 16
}

// findMp4Box locates child/grandchild by walking two box-name levels
// from the given reader position, returning the inner box's payload.
func findMp4Box(f *os.File, start int64, outer, inner string) ([]byte, bool) {
	return findMp4BoxPath(f, start, []string{outer, inner})
}

// findMp4BoxPath descends a chain of box names from a file offset,
// returning the payload of the final box in the chain.
func findMp4BoxPath(f *os.File, start int64, path []string) ([]byte, bool) {
	if len(path) == 0 {
		return nil, false
	}
	fi, err := f.Stat()
	if err != nil {
		return nil, false
	}
	end := fi.Size()

	offset := start
	for offset+8 <= end {
		var hdr [8]byte
		if _, err := f.ReadAt(hdr[:], offset); err != nil {
			return nil, false
		}
		boxSize := int64(binary.BigEndian.Uint32(hdr[0:4]))
		boxType := string(hdr[4:8])
		if boxSize < 8 {
			return nil, false
		}
		if boxType == path[0] {
			if len(path) == 1 {
				payload := make([]byte, boxSize-8)
				if _, err := f.ReadAt(payload, offset+8); err != nil {
					return nil, false
				}
				return payload, true
			}
			return findMp4BoxPath(f, offset+8, path[1:])
		}
		offset += boxSize
	}
	return nil, false
}

// probeAiffDuration reads the mandatory COMM chunk for sample rate (an
// 80-bit IEEE extended float, the one oddity of the format) and frame
// count.
func probeAiffDuration(path string) (float64, uint32, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()

	var form [12]byte
	if _, err := io.ReadFull(f, form[:]); err != nil || string(form[0:4]) != "FORM" {
		return 0, 0, false
	}

	offset := int64(12)
	for {
		var hdr [8]byte
		if _, err := f.ReadAt(hdr[:], offset); err != nil {
			return 0, 0, false
		}
		id := string(hdr[0:4])
		size := int64(binary.BigEndian.Uint32(hdr[4:8]))
		if id == "COMM" {
			body := make([]byte, size)
			if _, err := f.ReadAt(body, offset+8); err != nil || len(body) < 18 {
				return 0, 0, false
			}
			numFrames := binary.BigEndian.Uint32(body[2:6])
			rate := extendedToFloat(body[8:18])
			if rate <= 0 {
				return 0, 0, false
			}
			return float64(numFrames) / rate, uint32(rate), true
		}
		offset += 8 + size + size%2 // chunks are word-aligned
		fi, err := f.Stat()
		if err != nil || offset >= fi.Size() {
			return 0, 0, false
		}
	}
}

// extendedToFloat decodes the 80-bit IEEE 754 extended precision float
// AIFF uses for its sample rate field.
func extendedToFloat(b []byte) float64 {
	if len(b) < 10 {
		return 0
	}
	sign := 1.0
	if b[0]&0x80 != 0 {
		sign = -1.0
	}
	exponent := int(binary.BigEndian.Uint16(b[0:2]) & 0x7FFF)
	mantissa := binary.BigEndian.Uint64(b[2:10])
	if exponent == 0 && mantissa == 0 {
		return 0
	}
	return sign * float64(mantissa) * pow2(exponent-16383-63)
}

func pow2(n int) float64 {
	result := 1.0
	if n >= 0 {
		for i := 0; i < n; i++ {
			result *= 2
		}
		return result
	}
	for i := 0; i < -n; i++ {
		result /= 2
	}
	return result
}

// probeWavPackDuration reads the first block's common header, whose
// total_samples field (when not the "unknown" sentinel) already covers
// the whole file, and decodes the sample rate out of the flags word's
// 4-bit rate index.
func probeWavPackDuration(path string) (float64, uint32, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()

	var hdr [32]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil || string(hdr[0:4]) != "wvpk" {
		return 0, 0, false
	}

	totalSamples := binary.LittleEndian.Uint32(hdr[12:16])
	flags := binary.LittleEndian.Uint32(hdr[24:28])
	rateIdx := (flags >> 23) & 0x0F
	if totalSamples == 0 || totalSamples == 0xFFFFFFFF || int(rateIdx) >= len(wavPackSampleRates) {
		return 0, 0, false
	}
	rate := wavPackSampleRates[rateIdx]
	if rate == 0 {
		return 0, 0, false
	}
	return float64(totalSamples) / float64(rate), uint32(rate), true
}

var wavPackSampleRates = [16]int{
	6000, 8000, 9600, 11025, 12000, 16000, 22050, 24000,
	32000, 44100, 48000, 64000, 88200, 96000, 192000, 0,
}
