package NoiseMaker

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/oto"
)

var ErrInvalidFormat = errors.New("NoiseMaker: invalid audio format")

// UserFunc returns the sample for an absolute time in seconds.
type UserFunc func(t float64) float64

// Audio renders fixed-size blocks of samples by calling the user function
// once per frame and streams them to the output device. Blocks cycle between
// the render goroutine and the play goroutine through a free list, so a block
// is never refilled while it is still being played.
type Audio struct {
	sampleRate int
	channels   int

	blocks [][]float32
	pcm    [][]byte
	free   chan int
	ready  chan int

	userFunction atomic.Pointer[UserFunc]
	globalTime   atomic.Uint64 // math.Float64bits, seconds
	frames       uint64

	sink    io.Writer
	closers []func() error

	done     chan struct{}
	thread   sync.WaitGroup
	stopOnce sync.Once
}

// NewAudio opens the default output device as signed 16-bit PCM and starts
// rendering silence until a user function is set.
func NewAudio(sampleRate, channels, blocks, blockSamples int) (*Audio, error) {
	if err := checkFormat(sampleRate, channels, blocks, blockSamples); err != nil {
		return nil, err
	}

	ctx, err := oto.NewContext(sampleRate, channels, 2, blockSamples*channels*2)
	if err != nil {
		return nil, fmt.Errorf("NoiseMaker: create oto context: %w", err)
	}
	player := ctx.NewPlayer()

	a := newAudio(sampleRate, channels, blocks, blockSamples, player)
	a.closers = []func() error{player.Close, ctx.Close}
	a.start()
	return a, nil
}

func checkFormat(sampleRate, channels, blocks, blockSamples int) error {
	switch {
	case sampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidFormat, sampleRate)
	case channels <= 0:
		return fmt.Errorf("%w: %d channels", ErrInvalidFormat, channels)
	case blocks <= 0:
		return fmt.Errorf("%w: %d blocks", ErrInvalidFormat, blocks)
	case blockSamples <= 0:
		return fmt.Errorf("%w: %d samples per block", ErrInvalidFormat, blockSamples)
	}
	return nil
}

func newAudio(sampleRate, channels, blocks, blockSamples int, sink io.Writer) *Audio {
	a := &Audio{
		sampleRate: sampleRate,
		channels:   channels,
		blocks:     make([][]float32, blocks),
		pcm:        make([][]byte, blocks),
		free:       make(chan int, blocks),
		ready:      make(chan int, blocks),
		sink:       sink,
		done:       make(chan struct{}),
	}
	for i := range a.blocks {
		a.blocks[i] = make([]float32, blockSamples)
		a.pcm[i] = make([]byte, blockSamples*channels*2)
		a.free <- i
	}
	return a
}

func (a *Audio) start() {
	a.thread.Add(2)
	go a.mainThread()
	go a.playThread()
}

// Stop halts both goroutines and releases the device. It is safe to call
// more than once.
func (a *Audio) Stop() error {
	var errs []error
	a.stopOnce.Do(func() {
		close(a.done)
		a.thread.Wait()
		for _, c := range a.closers {
			if err := c(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}

func (a *Audio) SampleRate() int {
	return a.sampleRate
}

// GetTime returns the time of the most recently rendered frame. Safe to call
// from any goroutine.
func (a *Audio) GetTime() float64 {
	return math.Float64frombits(a.globalTime.Load())
}

// SetUserFunction installs f; a nil f renders silence. Safe to call while
// running.
func (a *Audio) SetUserFunction(f UserFunc) {
	if f == nil {
		a.userFunction.Store(nil)
		return
	}
	a.userFunction.Store(&f)
}

func (a *Audio) mainThread() {
	defer a.thread.Done()
	rate := float64(a.sampleRate)

	for {
		var i int
		select {
		case <-a.done:
			return
		case i = <-a.free:
		}

		block := a.blocks[i]
		fn := a.userFunction.Load()
		for j := range block {
			t := float64(a.frames) / rate
			a.globalTime.Store(math.Float64bits(t))
			var sample float64
			if fn != nil {
				sample = (*fn)(t)
			}
			block[j] = float32(clip(sample, 1.0))
			a.frames++
		}
		encodePCM16(a.pcm[i], block, a.channels)

		select {
		case <-a.done:
			return
		case a.ready <- i:
		}
	}
}

func (a *Audio) playThread() {
	defer a.thread.Done()
	for {
		select {
		case <-a.done:
			return
		case i := <-a.ready:
			// device errors surface as silence; the render side keeps running
			_, _ = a.sink.Write(a.pcm[i])
			a.free <- i
		}
	}
}

// encodePCM16 writes each sample as little-endian int16, repeated for every
// channel.
func encodePCM16(dst []byte, samples []float32, channels int) {
	n := 0
	for _, s := range samples {
		v := toInt16(s)
		for c := 0; c < channels; c++ {
			dst[n] = byte(v)
			dst[n+1] = byte(v >> 8)
			n += 2
		}
	}
}

func toInt16(s float32) int16 {
	return int16(s * 32767)
}

// clip also maps NaN to silence.
func clip(sample, limit float64) float64 {
	if sample != sample {
		return 0
	}
	return math.Max(-limit, math.Min(sample, limit))
}
