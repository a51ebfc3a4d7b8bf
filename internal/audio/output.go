// Package audio implements the real-time decode/resample/output loop:
// a dedicated goroutine that owns at most one active Song's decoder
// state and drains it into an Output, driven by the queue/repeat state
// machine in internal/state. See spec.md §4.2.
package audio

import "sync"

// Output abstracts the audio sink. dummyOutput discards everything
// (headless/CI); ringOutput buffers PCM frames in an SPSC ring for a
// real device's pull-based callback, absorbing the timing mismatch
// between the decode loop and the device clock.
type Output interface {
	// Write pushes interleaved float32 PCM frames. ringOutput never
	// blocks: when its buffer is full it drops the oldest frames.
	Write(samples []float32) error
	// Flush drops any buffered, not-yet-played audio (used on seek/stop).
	Flush()
	// TryOpen (re)opens the device for the given spec, returning an
	// error if the device rejects it.
	TryOpen(sampleRate uint32, channels uint8) error
	// Play/Pause set the output's playing flag; ringOutput.Read drains
	// the buffer whether or not it is set.
	Play()
	Pause()
}

// dummyOutput discards all audio. It's used for headless test runs and
// as the fallback when no real device is available, matching the
// trait's required `dummy()` implementation from spec.md §4.2.
type dummyOutput struct{}

// NewDummyOutput returns an Output that discards everything it's given.
func NewDummyOutput() Output { return dummyOutput{} }

func (dummyOutput) Write(_ []float32) error                { return nil }
func (dummyOutput) Flush()                                 {}
func (dummyOutput) TryOpen(_ uint32, _ uint8) error         { return nil }
func (dummyOutput) Play()                                  {}
func (dummyOutput) Pause()                                 {}

// ringOutput is a fixed-capacity SPSC ring buffer between the decode
// loop (producer) and a device callback (consumer). Underrun is filled
// with silence by the consumer rather than blocking the device thread,
// per spec.md §4.2's CPAL-path description.
type ringOutput struct {
	mu       sync.Mutex
	buf      []float32
	capacity int
	read     int
	write    int
	size     int
	playing  bool

	sampleRate uint32
	channels   uint8
}

// ringBufferMillis is the target buffer depth: ~50ms, per spec.md §4.2.
const ringBufferMillis = 50

// NewRingOutput returns an Output backed by a ~50ms SPSC ring buffer.
func NewRingOutput() Output {
	return &ringOutput{capacity: 1}
}

func (r *ringOutput) TryOpen(sampleRate uint32, channels uint8) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sampleRate = sampleRate
	r.channels = channels
	frames := int(sampleRate) * ringBufferMillis / 1000
	r.capacity = frames * int(channels)
	if r.capacity < int(channels) {
		r.capacity = int(channels)
	}
	r.buf = make([]float32, r.capacity)
	r.read, r.write, r.size = 0, 0, 0
	return nil
}

func (r *ringOutput) Write(samples []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.buf) == 0 {
		return nil
	}
	for _, s := range samples {
		if r.size == r.capacity {
			// Buffer full: drop the oldest frame rather than blocking
			// the decode loop, matching the ring's lossy-under-pressure
			// contract.
			drop := int(r.channels)
			if drop < 1 {
				drop = 1
			}
			r.read = (r.read + drop) % r.capacity
			r.size -= drop
		}
		r.buf[r.write] = s
		r.write = (r.write + 1) % r.capacity
		r.size++
	}
	return nil
}

// Read drains up to len(out) samples for the device callback, filling
// any shortfall with silence (an underrun).
func (r *ringOutput) Read(out []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range out {
		if r.size == 0 {
			out[i] = 0
			continue
		}
		out[i] = r.buf[r.read]
		r.read = (r.read + 1) % r.capacity
		r.size--
	}
}

func (r *ringOutput) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.read, r.write, r.size = 0, 0, 0
}

func (r *ringOutput) Play()  { r.mu.Lock(); r.playing = true; r.mu.Unlock() }
func (r *ringOutput) Pause() { r.mu.Lock(); r.playing = false; r.mu.Unlock() }
