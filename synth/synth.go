// Package synth is the signal-generation core of a monophonic synthesizer:
// oscillators, an ADSR envelope, a note controller and the render callback
// invoked once per output sample by the audio engine.
//
// A Synth is shared by two goroutines. The input goroutine calls
// NoteController.Poll (or Synth.NoteOn/NoteOff directly) and the audio
// goroutine calls Render. Note events cross over through a lock-free
// single-producer/single-consumer queue that Render drains before computing
// each sample, so the envelope is only ever touched by the audio goroutine.
// The current frequency is a single atomic value.
package synth

import (
	"fmt"
	"math"
	"sync/atomic"
)

// DefaultMasterVolume scales the final mix.
const DefaultMasterVolume = 0.5

// Partial is one oscillator in the voice mix, sounding at Ratio times the
// note frequency.
type Partial struct {
	Ratio    float64
	Waveform Waveform
}

// DefaultPartials is a sawtooth an octave below the note layered with an
// additive sawtooth a fifth above it.
func DefaultPartials() []Partial {
	return []Partial{
		{Ratio: 0.5, Waveform: SawMath},
		{Ratio: 1.5, Waveform: SawAnalog},
	}
}

type Config struct {
	Tuning       Tuning
	Envelope     EnvelopeConfig
	MasterVolume float64
	Harmonics    int
	Seed         uint64
	Partials     []Partial
}

func DefaultConfig() Config {
	return Config{
		Tuning:       DefaultTuning(),
		Envelope:     DefaultEnvelopeConfig(),
		MasterVolume: DefaultMasterVolume,
		Harmonics:    DefaultHarmonics,
		Partials:     DefaultPartials(),
	}
}

// Synth owns the envelope and current frequency of one voice.
type Synth struct {
	tuning   Tuning
	volume   float64
	partials []Partial

	frequency atomic.Uint64 // math.Float64bits of the note frequency in Hz
	events    eventQueue

	// owned by the render goroutine
	env  *Envelope
	bank *Bank
}

func New(cfg Config) (*Synth, error) {
	if err := cfg.Tuning.validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(cfg.MasterVolume) || math.IsInf(cfg.MasterVolume, 0) {
		return nil, fmt.Errorf("synth: invalid master volume %v", cfg.MasterVolume)
	}
	env, err := NewEnvelope(cfg.Envelope)
	if err != nil {
		return nil, err
	}
	bank, err := NewBank(cfg.Harmonics, cfg.Seed)
	if err != nil {
		return nil, err
	}

	partials := cfg.Partials
	if partials == nil {
		partials = DefaultPartials()
	}
	return &Synth{
		tuning:   cfg.Tuning,
		volume:   cfg.MasterVolume,
		partials: append([]Partial(nil), partials...),
		env:      env,
		bank:     bank,
	}, nil
}

func (s *Synth) Tuning() Tuning {
	return s.tuning
}

// Frequency returns the most recently published note frequency.
func (s *Synth) Frequency() float64 {
	return math.Float64frombits(s.frequency.Load())
}

func (s *Synth) SetFrequency(hertz float64) {
	s.frequency.Store(math.Float64bits(hertz))
}

// NoteOn queues an envelope trigger at time t. Must only be called from one
// goroutine.
func (s *Synth) NoteOn(t float64) error {
	return s.events.push(noteEvent{kind: eventNoteOn, time: t})
}

// NoteOff queues an envelope release at time t. Same caller rule as NoteOn.
func (s *Synth) NoteOff(t float64) error {
	return s.events.push(noteEvent{kind: eventNoteOff, time: t})
}

func (s *Synth) drain() {
	for {
		ev, ok := s.events.pop()
		if !ok {
			return
		}
		switch ev.kind {
		case eventNoteOn:
			s.env.NoteOn(ev.time)
		case eventNoteOff:
			s.env.NoteOff(ev.time)
		}
	}
}

// Render returns the output sample at time t. It is the audio engine's user
// function: it never blocks or allocates, and its cost is bounded by the
// partial mix and harmonic count.
func (s *Synth) Render(t float64) float64 {
	s.drain()

	amp := s.env.Amplitude(t)
	if amp == 0 {
		return 0.0
	}

	freq := s.Frequency()
	mix := 0.0
	for _, p := range s.partials {
		mix += s.bank.Evaluate(freq*p.Ratio, t, p.Waveform)
	}
	return amp * mix * s.volume
}
