package pitch

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TrackStats summarizes a sequence of per-frame pitch estimates, typically
// one sustained note analyzed offline. Unvoiced frames are represented as
// zero frequency in the input and excluded from the voiced statistics.
type TrackStats struct {
	MeanFrequency float64 `json:"mean_frequency"` // Mean of voiced frames (Hz)
	StdDev        float64 `json:"std_dev"`        // Sample standard deviation (Hz)
	Jitter        float64 `json:"jitter"`         // Mean absolute frame-to-frame change (Hz)
	Stability     float64 `json:"stability"`      // 1 / (1 + coefficient of variation)
	VoicedRatio   float64 `json:"voiced_ratio"`   // Fraction of frames with a pitch
}

// AnalyzeTrack computes track statistics over a frequency sequence. Frames
// without a detection are passed as 0.
func AnalyzeTrack(frequencies []float64) TrackStats {
	if len(frequencies) == 0 {
		return TrackStats{}
	}

	voiced := make([]float64, 0, len(frequencies))
	for _, f := range frequencies {
		if f > 0 {
			voiced = append(voiced, f)
		}
	}

	stats := TrackStats{
		VoicedRatio: float64(len(voiced)) / float64(len(frequencies)),
	}
	if len(voiced) == 0 {
		return stats
	}

	stats.MeanFrequency = stat.Mean(voiced, nil)
	if len(voiced) >= 2 {
		stats.StdDev = math.Sqrt(stat.Variance(voiced, nil))

		jitter := 0.0
		for i := 1; i < len(voiced); i++ {
			jitter += math.Abs(voiced[i] - voiced[i-1])
		}
		stats.Jitter = jitter / float64(len(voiced)-1)
	}

	if stats.MeanFrequency > 0 {
		stats.Stability = 1.0 / (1.0 + stats.StdDev/stats.MeanFrequency)
	}

	return stats
}
