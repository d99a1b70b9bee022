package feedback

import (
	"math"
	"sync/atomic"
)

// Monitor passes input samples through to the output mix so the player can
// hear what the tuner hears. A fixed-capacity ring sits between exactly one
// writer (the input callback) and one reader (the output callback); both
// paths are lock-free and allocation-free.
type Monitor struct {
	buf  []float32
	mask uint64

	writePos atomic.Uint64
	readPos  atomic.Uint64

	enabled    atomic.Bool
	volumeBits atomic.Uint64
}

// NewMonitor creates a disabled monitor holding at least capacity samples.
// The ring size is rounded up to the next power of two.
func NewMonitor(capacity int) *Monitor {
	size := 1
	for size < capacity {
		size <<= 1
	}
	m := &Monitor{buf: make([]float32, size), mask: uint64(size - 1)}
	m.SetVolume(1.0)
	return m
}

// SetEnabled switches monitoring on or off. Samples already buffered keep
// draining after a disable; call Flush to drop them.
func (m *Monitor) SetEnabled(on bool) {
	m.enabled.Store(on)
}

// Enabled reports whether monitoring is on.
func (m *Monitor) Enabled() bool {
	return m.enabled.Load()
}

// SetVolume updates the pass-through level, clamped to [0, 1].
func (m *Monitor) SetVolume(v float64) {
	if v < 0 || math.IsNaN(v) {
		v = 0
	} else if v > 1 {
		v = 1
	}
	m.volumeBits.Store(math.Float64bits(v))
}

// Volume returns the current pass-through level.
func (m *Monitor) Volume() float64 {
	return math.Float64frombits(m.volumeBits.Load())
}

// Write buffers one input callback's samples. Samples that do not fit are
// dropped rather than overwriting unread audio. Only the input callback
// goroutine may call this.
func (m *Monitor) Write(in []float32) {
	if !m.enabled.Load() {
		return
	}

	w := m.writePos.Load()
	free := uint64(len(m.buf)) - (w - m.readPos.Load())
	n := uint64(len(in))
	if n > free {
		n = free
	}
	for i := uint64(0); i < n; i++ {
		m.buf[(w+i)&m.mask] = in[i]
	}
	m.writePos.Store(w + n)
}

// MixInto adds buffered samples to out at the monitoring volume, clipping to
// [-1, 1]. It consumes at most len(out) samples and leaves the tail of out
// untouched when the ring runs dry. Only the output callback goroutine may
// call this.
func (m *Monitor) MixInto(out []float32) {
	vol := float32(math.Float64frombits(m.volumeBits.Load()))

	r := m.readPos.Load()
	avail := m.writePos.Load() - r
	n := uint64(len(out))
	if n > avail {
		n = avail
	}
	for i := uint64(0); i < n; i++ {
		out[i] = clip(out[i] + m.buf[(r+i)&m.mask]*vol)
	}
	m.readPos.Store(r + n)
}

// Buffered returns the number of samples waiting to be mixed.
func (m *Monitor) Buffered() int {
	return int(m.writePos.Load() - m.readPos.Load())
}

// Flush drops all buffered samples.
func (m *Monitor) Flush() {
	m.readPos.Store(m.writePos.Load())
}
