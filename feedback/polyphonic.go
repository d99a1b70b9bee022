package feedback

// PolyphonicGenerator renders a fixed set of sine voices, one per guitar
// string, for playing a whole tuning as a reference chord. A voice with
// frequency zero is silent; the mix is scaled by the number of voices so a
// full chord cannot clip on its own.
type PolyphonicGenerator struct {
	voices []*SineGenerator
}

// NewPolyphonicGenerator creates a generator with the given number of
// silent voices.
func NewPolyphonicGenerator(sampleRate float64, voiceCount int) *PolyphonicGenerator {
	if voiceCount < 1 {
		voiceCount = 1
	}
	voices := make([]*SineGenerator, voiceCount)
	for i := range voices {
		voices[i] = NewSineGenerator(sampleRate)
	}
	return &PolyphonicGenerator{voices: voices}
}

// VoiceCount returns the number of voices.
func (p *PolyphonicGenerator) VoiceCount() int {
	return len(p.voices)
}

// SetVoice sets one voice's frequency. Frequency zero disables the voice.
// Out-of-range indices are ignored.
func (p *PolyphonicGenerator) SetVoice(index int, hz float64) {
	if index < 0 || index >= len(p.voices) {
		return
	}
	p.voices[index].SetFrequency(hz)
}

// SetAmplitude sets the per-voice level; the headroom division happens at
// mix time.
func (p *PolyphonicGenerator) SetAmplitude(a float64) {
	for _, v := range p.voices {
		v.SetAmplitude(a)
	}
}

// MixInto adds the voice mix to out, clipping to [-1, 1].
func (p *PolyphonicGenerator) MixInto(out []float32) {
	scale := float32(1.0 / float64(len(p.voices)))
	for i := range out {
		var sum float32
		for _, v := range p.voices {
			sum += v.NextSample()
		}
		out[i] = clip(out[i] + sum*scale)
	}
}

// Silence disables every voice.
func (p *PolyphonicGenerator) Silence() {
	for _, v := range p.voices {
		v.SetFrequency(0)
	}
}
