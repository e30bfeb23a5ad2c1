package synth

import (
	"errors"
	"fmt"
	"math"
)

// NumKeys is the size of the playable key table.
const NumKeys = 16

const DefaultBaseFrequency = 110.0 // A2

var ErrInvalidTuning = errors.New("synth: invalid tuning")

// Tuning maps scale-degree indices to frequencies in equal temperament.
type Tuning struct {
	BaseFrequency float64
	SemitoneRatio float64
}

// DefaultTuning assumes western 12 notes per octave starting at A2.
func DefaultTuning() Tuning {
	return Tuning{
		BaseFrequency: DefaultBaseFrequency,
		SemitoneRatio: math.Pow(2.0, 1.0/12.0),
	}
}

func (t Tuning) validate() error {
	if !(t.BaseFrequency > 0) || math.IsInf(t.BaseFrequency, 1) {
		return fmt.Errorf("%w: base frequency %v", ErrInvalidTuning, t.BaseFrequency)
	}
	if !(t.SemitoneRatio > 0) || math.IsInf(t.SemitoneRatio, 1) {
		return fmt.Errorf("%w: semitone ratio %v", ErrInvalidTuning, t.SemitoneRatio)
	}
	return nil
}

// Frequency returns BaseFrequency * SemitoneRatio^k. k is not limited to the
// key table so callers can reason about octaves above it.
func (t Tuning) Frequency(k int) float64 {
	return t.BaseFrequency * math.Pow(t.SemitoneRatio, float64(k))
}

// Table precomputes the frequencies of all NumKeys keys.
func (t Tuning) Table() [NumKeys]float64 {
	var table [NumKeys]float64
	for k := range table {
		table[k] = t.Frequency(k)
	}
	return table
}
