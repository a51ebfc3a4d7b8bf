package audio

// Resampler converts interleaved PCM from one sample rate to another
// via linear interpolation, processing fixed-size input chunks so the
// real-time loop's per-cycle work stays bounded. Grounded on spec.md
// §4.2's "a resampler is inserted when the decoded sample rate differs
// from the device rate" requirement; see SPEC_FULL.md's Resampler scope
// note for why linear interpolation was chosen over an FFT-based design
// (the decoder/Resampler Open Question resolution).
type Resampler struct {
	inRate, outRate uint32
	channels        uint8
}

// ResampleChunkFrames is the fixed frame count the real-time loop
// decodes per cycle. The loop writes those frames straight to the
// Output; it does not pass them through a Resampler.
const ResampleChunkFrames = 4096

// NewResampler returns a Resampler from inRate to outRate for the given
// channel count. If inRate == outRate, Process is a cheap passthrough.
func NewResampler(inRate, outRate uint32, channels uint8) *Resampler {
	return &Resampler{inRate: inRate, outRate: outRate, channels: channels}
}

// Process resamples one chunk of interleaved input frames and returns
// the resampled interleaved output.
func (r *Resampler) Process(in []float32) []float32 {
	if r.inRate == r.outRate || r.inRate == 0 {
		return in
	}

	ch := int(r.channels)
	if ch == 0 {
		ch = 1
	}
	inFrames := len(in) / ch
	if inFrames == 0 {
		return nil
	}

	ratio := float64(r.inRate) / float64(r.outRate)
	outFrames := int(float64(inFrames) / ratio)
	out := make([]float32, outFrames*ch)

	for of := 0; of < outFrames; of++ {
		srcPos := float64(of) * ratio
		i0 := int(srcPos)
		frac := srcPos - float64(i0)
		i1 := i0 + 1
		if i1 >= inFrames {
			i1 = inFrames - 1
		}
		if i0 >= inFrames {
			i0 = inFrames - 1
		}
		for c := 0; c < ch; c++ {
			a := in[i0*ch+c]
			b := in[i1*ch+c]
			out[of*ch+c] = a + float32(frac)*(b-a)
		}
	}

	return out
}
