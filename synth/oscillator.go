package synth

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// Waveform selects the oscillator shape evaluated by a Bank.
type Waveform int

const (
	Sine Waveform = iota
	Square
	Triangle
	SawAnalog
	SawMath
	Noise
)

// DefaultHarmonics is the number of partials summed by the analog sawtooth.
const DefaultHarmonics = 99

var ErrInvalidHarmonics = errors.New("synth: harmonic count must be positive")

var waveformNames = map[Waveform]string{
	Sine:      "sine",
	Square:    "square",
	Triangle:  "triangle",
	SawAnalog: "saw-analog",
	SawMath:   "saw-math",
	Noise:     "noise",
}

func (w Waveform) String() string {
	if name, ok := waveformNames[w]; ok {
		return name
	}
	return fmt.Sprintf("Waveform(%d)", int(w))
}

// w converts Hertz to angular velocity.
func w(hertz float64) float64 {
	return hertz * 2.0 * math.Pi
}

func SineAt(hertz, t float64) float64 {
	return math.Sin(w(hertz) * t)
}

// SquareAt returns exactly +1 or -1; a zero crossing counts as -1.
func SquareAt(hertz, t float64) float64 {
	if math.Sin(w(hertz)*t) > 0.0 {
		return 1.0
	}
	return -1.0
}

func TriangleAt(hertz, t float64) float64 {
	return math.Asin(math.Sin(w(hertz)*t)) * 2.0 / math.Pi
}

// SawAnalogAt sums the first harmonics partials of the sawtooth series.
func SawAnalogAt(hertz, t float64, harmonics int) float64 {
	out := 0.0
	wt := w(hertz) * t
	for n := 1; n <= harmonics; n++ {
		fn := float64(n)
		out += math.Sin(fn*wt) / fn
	}
	return out * 2.0 / math.Pi
}

// SawMathAt is the closed-form sawtooth. Non-positive or non-finite
// frequencies are silent.
func SawMathAt(hertz, t float64) float64 {
	if !(hertz > 0) || math.IsInf(hertz, 1) {
		return 0.0
	}
	return (2.0 / math.Pi) * (hertz*math.Pi*math.Mod(t, 1.0/hertz) - math.Pi/2.0)
}

// Bank evaluates waveforms for the audio goroutine. Everything but Noise is a
// pure function of its arguments; Noise draws from the bank's own generator,
// so a Bank must not be shared between goroutines.
type Bank struct {
	harmonics int
	rng       *rand.Rand
}

// NewBank returns a bank whose noise generator is seeded with seed.
func NewBank(harmonics int, seed uint64) (*Bank, error) {
	if harmonics <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHarmonics, harmonics)
	}
	return &Bank{
		harmonics: harmonics,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}, nil
}

// Harmonics reports the partial count used for SawAnalog.
func (b *Bank) Harmonics() int {
	return b.harmonics
}

// Evaluate returns the sample of kind at frequency hertz and time t.
// Unknown kinds are silent.
func (b *Bank) Evaluate(hertz, t float64, kind Waveform) float64 {
	switch kind {
	case Sine:
		return SineAt(hertz, t)
	case Square:
		return SquareAt(hertz, t)
	case Triangle:
		return TriangleAt(hertz, t)
	case SawAnalog:
		return SawAnalogAt(hertz, t, b.harmonics)
	case SawMath:
		return SawMathAt(hertz, t)
	case Noise:
		return 2.0*b.rng.Float64() - 1.0
	default:
		return 0.0
	}
}
