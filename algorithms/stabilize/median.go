package stabilize

import (
	"fmt"

	"github.com/amesford/tunerkit/algorithms/pitch"
)

// MedianFilter smooths with a sliding-window median over the most recent
// samples. Isolated spikes shorter than half the window vanish entirely,
// which makes it the outlier stage of choice ahead of an averaging filter.
//
// The ring and the sort scratch are allocated once at construction; Update
// performs an insertion sort over at most WindowSize elements and never
// allocates.
type MedianFilter struct {
	window []pitch.Result
	pos    int
	count  int

	freqScratch []float64
	confScratch []float64
}

// NewMedian creates a median filter over a window of the given size. A
// window of 1 degenerates to a passthrough.
func NewMedian(windowSize int) (*MedianFilter, error) {
	if windowSize < 1 {
		return nil, fmt.Errorf("median window size must be >= 1, got %d", windowSize)
	}
	return &MedianFilter{
		window:      make([]pitch.Result, windowSize),
		freqScratch: make([]float64, windowSize),
		confScratch: make([]float64, windowSize),
	}, nil
}

func (f *MedianFilter) Update(raw pitch.Result) {
	f.window[f.pos] = raw
	f.pos = (f.pos + 1) % len(f.window)
	if f.count < len(f.window) {
		f.count++
	}
}

func (f *MedianFilter) Stabilized() pitch.Result {
	if f.count == 0 {
		return pitch.Result{}
	}

	freqs := f.freqScratch[:f.count]
	confs := f.confScratch[:f.count]
	for i := 0; i < f.count; i++ {
		freqs[i] = f.window[i].Frequency
		confs[i] = f.window[i].Confidence
	}
	insertionSort(freqs)
	insertionSort(confs)

	return pitch.Result{
		Frequency:  middle(freqs),
		Confidence: middle(confs),
	}
}

func (f *MedianFilter) Reset() {
	f.pos = 0
	f.count = 0
}

// insertionSort keeps Stabilized allocation-free; windows are tiny so the
// quadratic cost is irrelevant.
func insertionSort(data []float64) {
	for i := 1; i < len(data); i++ {
		v := data[i]
		j := i - 1
		for j >= 0 && data[j] > v {
			data[j+1] = data[j]
			j--
		}
		data[j+1] = v
	}
}

// middle returns the median of sorted data, averaging the two central
// elements for even lengths.
func middle(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
