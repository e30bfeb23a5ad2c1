package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abhishek-jha-96/Go_SoundSynth/NoiseMaker"
	"github.com/Abhishek-jha-96/Go_SoundSynth/input"
	"github.com/Abhishek-jha-96/Go_SoundSynth/synth"
	"golang.org/x/sync/errgroup"
)

var (
	sampleRate   = flag.Int("rate", 44100, "output sample rate in Hz")
	channels     = flag.Int("channels", 1, "output channels")
	blocks       = flag.Int("blocks", 8, "number of audio blocks")
	blockSamples = flag.Int("block-samples", 512, "samples per audio block")

	baseFrequency = flag.Float64("base", synth.DefaultBaseFrequency, "frequency of the lowest key in Hz")
	attack        = flag.Float64("attack", 0.1, "attack time in seconds")
	decay         = flag.Float64("decay", 0.01, "decay time in seconds")
	release       = flag.Float64("release", 0.2, "release time in seconds")
	sustain       = flag.Float64("sustain", 0.8, "sustain amplitude")
	start         = flag.Float64("start", 1.0, "peak amplitude reached at the end of the attack")
	fromCurrent   = flag.Bool("release-from-current", false, "release from the current amplitude instead of the sustain level")

	volume    = flag.Float64("volume", synth.DefaultMasterVolume, "master volume")
	harmonics = flag.Int("harmonics", synth.DefaultHarmonics, "partials summed by the analog sawtooth")
	seed      = flag.Uint64("seed", 0, "noise seed (0 picks one from the clock)")
	hold      = flag.Duration("hold", 0, "release a note after this long without key repeat (0 holds until another key)")
)

const keyChart = `
|   |   |   |   |   | |   |   |   |   | |   | |   |   |   |
|   | S |   |   | F | | G |   |   | J | | K | | L |   |   |
|   |___|   |   |___| |___|   |   |___| |___| |___|   |   |__
|     |     |     |     |     |     |     |     |     |     |
|  Z  |  X  |  C  |  V  |  B  |  N  |  M  |  ,  |  .  |  /  |
|_____|_____|_____|_____|_____|_____|_____|_____|_____|_____|

Space releases the note, Esc quits.
`

func main() {
	flag.Parse()
	log.SetFlags(log.Lshortfile)

	cfg := synth.DefaultConfig()
	cfg.Tuning.BaseFrequency = *baseFrequency
	cfg.Envelope = synth.EnvelopeConfig{
		AttackTime:         *attack,
		DecayTime:          *decay,
		ReleaseTime:        *release,
		StartAmplitude:     *start,
		SustainAmplitude:   *sustain,
		ReleaseFromCurrent: *fromCurrent,
	}
	cfg.MasterVolume = *volume
	cfg.Harmonics = *harmonics
	cfg.Seed = *seed
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	s, err := synth.New(cfg)
	if err != nil {
		log.Fatal(err)
	}

	audioInstance, err := NoiseMaker.NewAudio(*sampleRate, *channels, *blocks, *blockSamples)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Audio initialized")
	audioInstance.SetUserFunction(s.Render)

	fmt.Print(keyChart)

	controller := synth.NewNoteController(s)
	kb := input.NewKeyboard(input.NewAdapter(controller, audioInstance.GetTime))
	kb.Hold = *hold

	last := synth.NoKey
	kb.Notify = func() {
		current := controller.Current()
		if current == last {
			return
		}
		last = current
		if current == synth.NoKey {
			fmt.Printf("\rNote Off: %.3fs                        ", audioInstance.GetTime())
			return
		}
		fmt.Printf("\rNote On : %.3fs %.2fHz", audioInstance.GetTime(), s.Frequency())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stop()
		err := kb.Run(ctx)
		if errors.Is(err, input.ErrQuit) || errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		return audioInstance.Stop()
	})
	err = g.Wait()

	fmt.Println("\nAudio stopped")
	fmt.Printf("Global Time: %.3fs\n", audioInstance.GetTime())
	if err != nil {
		log.Fatal(err)
	}
}
