package synth

import (
	"errors"
	"fmt"
)

// Amplitudes below this are snapped to zero to keep denormals out of the
// output.
const amplitudeEpsilon = 0.0001

var ErrInvalidEnvelope = errors.New("synth: invalid envelope")

// EnvelopeConfig holds the ADSR shape. Times are in seconds.
type EnvelopeConfig struct {
	AttackTime       float64
	DecayTime        float64
	ReleaseTime      float64
	StartAmplitude   float64
	SustainAmplitude float64

	// ReleaseFromCurrent starts the release ramp from the amplitude reached
	// at note-off instead of from SustainAmplitude.
	ReleaseFromCurrent bool
}

func DefaultEnvelopeConfig() EnvelopeConfig {
	return EnvelopeConfig{
		AttackTime:       0.1,
		DecayTime:        0.01,
		ReleaseTime:      0.2,
		StartAmplitude:   1.0,
		SustainAmplitude: 0.8,
	}
}

func (c EnvelopeConfig) validate() error {
	switch {
	case !(c.AttackTime > 0):
		return fmt.Errorf("%w: attack time %v must be > 0", ErrInvalidEnvelope, c.AttackTime)
	case !(c.DecayTime > 0):
		return fmt.Errorf("%w: decay time %v must be > 0", ErrInvalidEnvelope, c.DecayTime)
	case !(c.ReleaseTime > 0):
		return fmt.Errorf("%w: release time %v must be > 0", ErrInvalidEnvelope, c.ReleaseTime)
	case !(c.StartAmplitude >= 0):
		return fmt.Errorf("%w: start amplitude %v must be >= 0", ErrInvalidEnvelope, c.StartAmplitude)
	case !(c.SustainAmplitude >= 0) || c.SustainAmplitude > c.StartAmplitude:
		return fmt.Errorf("%w: sustain amplitude %v must be in [0, %v]",
			ErrInvalidEnvelope, c.SustainAmplitude, c.StartAmplitude)
	}
	return nil
}

// Envelope is a linear ADSR amplitude generator driven by note-on/off
// timestamps. It is not safe for concurrent use; Synth confines it to the
// render goroutine.
type Envelope struct {
	cfg EnvelopeConfig

	triggerOnTime  float64
	triggerOffTime float64
	releaseLevel   float64
	noteOn         bool
	triggered      bool
}

func NewEnvelope(cfg EnvelopeConfig) (*Envelope, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Envelope{cfg: cfg, releaseLevel: cfg.SustainAmplitude}, nil
}

func (e *Envelope) Config() EnvelopeConfig {
	return e.cfg
}

// NoteOn restarts the attack at t, even if a previous note is still sounding.
func (e *Envelope) NoteOn(t float64) {
	e.triggerOnTime = t
	e.noteOn = true
	e.triggered = true
}

// NoteOff enters the release phase at t.
func (e *Envelope) NoteOff(t float64) {
	if e.cfg.ReleaseFromCurrent {
		e.releaseLevel = e.Amplitude(t)
	} else {
		e.releaseLevel = e.cfg.SustainAmplitude
	}
	e.triggerOffTime = t
	e.noteOn = false
}

// IsOn reports whether a note is held.
func (e *Envelope) IsOn() bool {
	return e.noteOn
}

// Amplitude returns the envelope level at time t. It does not mutate state.
func (e *Envelope) Amplitude(t float64) float64 {
	if !e.triggered {
		return 0.0
	}

	c := &e.cfg
	var amp float64
	if e.noteOn {
		life := t - e.triggerOnTime
		switch {
		case life <= c.AttackTime:
			amp = (life / c.AttackTime) * c.StartAmplitude
		case life <= c.AttackTime+c.DecayTime:
			amp = ((life-c.AttackTime)/c.DecayTime)*(c.SustainAmplitude-c.StartAmplitude) + c.StartAmplitude
		default:
			amp = c.SustainAmplitude
		}
	} else {
		amp = (t-e.triggerOffTime)/c.ReleaseTime*(0.0-e.releaseLevel) + e.releaseLevel
	}

	// also catches NaN
	if !(amp >= amplitudeEpsilon) {
		return 0.0
	}
	return amp
}
