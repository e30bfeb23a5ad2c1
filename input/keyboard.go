package input

import (
	"context"
	"errors"
	"time"

	"github.com/Abhishek-jha-96/Go_SoundSynth/synth"
	"github.com/eiannone/keyboard"
)

// ErrQuit is returned by Keyboard.Run when the user asks to leave.
var ErrQuit = errors.New("input: quit requested")

const retryDelay = 5 * time.Millisecond

// Keyboard reads the terminal and drives an Adapter. A mapped key starts its
// note; any other key releases it. With Hold set, a note is also released
// when its key has not repeated for that long.
type Keyboard struct {
	Keymap Keymap
	Hold   time.Duration

	// Notify, if set, is called after every applied key change.
	Notify func()

	adapter *Adapter
}

func NewKeyboard(a *Adapter) *Keyboard {
	return &Keyboard{Keymap: DefaultKeymap, adapter: a}
}

// Run takes over the terminal until ctx is done, Esc or Ctrl-C is pressed,
// or the terminal fails.
func (k *Keyboard) Run(ctx context.Context) error {
	events, err := keyboard.GetKeys(16)
	if err != nil {
		return err
	}
	defer func() {
		_ = keyboard.Close()
	}()
	return k.serve(ctx, events)
}

func (k *Keyboard) serve(ctx context.Context, events <-chan keyboard.KeyEvent) error {
	var (
		hold  *time.Timer
		holdC <-chan time.Time
		retry <-chan time.Time
	)
	defer func() {
		if hold != nil {
			hold.Stop()
		}
	}()

	apply := func(change func() error) error {
		err := change()
		switch {
		case errors.Is(err, synth.ErrQueueFull):
			retry = time.After(retryDelay)
			return nil
		case err != nil:
			return err
		}
		retry = nil
		if k.Notify != nil {
			k.Notify()
		}
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Err != nil {
				return ev.Err
			}
			if ev.Key == keyboard.KeyEsc || ev.Key == keyboard.KeyCtrlC {
				return ErrQuit
			}

			idx, mapped := k.Keymap.Index(ev.Rune)
			if !mapped {
				if err := apply(k.adapter.ReleaseAll); err != nil {
					return err
				}
				continue
			}
			if err := apply(func() error { return k.adapter.Press(idx) }); err != nil {
				return err
			}
			if k.Hold > 0 {
				if hold == nil {
					hold = time.NewTimer(k.Hold)
				} else {
					if !hold.Stop() {
						select {
						case <-hold.C:
						default:
						}
					}
					hold.Reset(k.Hold)
				}
				holdC = hold.C
			}

		case <-holdC:
			holdC = nil
			if err := apply(k.adapter.ReleaseAll); err != nil {
				return err
			}

		case <-retry:
			if err := apply(k.adapter.Sync); err != nil {
				return err
			}
		}
	}
}
