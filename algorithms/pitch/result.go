package pitch

// Result is a single-frame pitch estimate.
//
// A Result only exists for frames where a detector found a pitch; "no
// detection" is signaled by the second return value of Detect, never by a
// zero-frequency Result.
type Result struct {
	Frequency  float64 `json:"frequency"`  // Fundamental frequency (Hz), > 0
	Confidence float64 `json:"confidence"` // Detection quality score [0, 1]
}
