package audio

import "sync/atomic"

// currentVolume is the process-wide volume atomic the real-time loop
// reads per-sample, bypassing the command channel so a frontend's
// volume-slider drags are lock-free and low-latency, per spec.md §4.2/
// §4.3's documented-atomics list.
var currentVolume atomic.Uint32

func init() {
	currentVolume.Store(25)
}

// SetVolume updates the process-wide volume atomic (0..=100, clamped by
// the caller via state.Volume before this is reached).
func SetVolume(v uint8) { currentVolume.Store(uint32(v)) }

// GetVolume reads the process-wide volume atomic.
func GetVolume() uint8 { return uint8(currentVolume.Load()) }

// ApplyVolume scales samples in place by the current volume, per
// spec.md §4.2's "sample * (volume/100)" rule.
func ApplyVolume(samples []float32) {
	f := float32(currentVolume.Load()) / 100.0
	for i := range samples {
		samples[i] *= f
	}
}
