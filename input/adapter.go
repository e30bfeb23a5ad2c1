package input

import (
	"github.com/Abhishek-jha-96/Go_SoundSynth/synth"
)

// Poller consumes key-state snapshots. *synth.NoteController implements it.
type Poller interface {
	Poll(held synth.KeyState, now float64) error
}

// Event is a single key transition.
type Event struct {
	Key  int
	Down bool
}

// Adapter keeps the held-key set up to date from discrete transitions and
// hands a snapshot to the Poller after each one, stamped with clock().
type Adapter struct {
	poller Poller
	clock  func() float64
	held   synth.KeyState
}

func NewAdapter(p Poller, clock func() float64) *Adapter {
	return &Adapter{poller: p, clock: clock}
}

func (a *Adapter) Held() synth.KeyState {
	return a.held
}

// Apply records ev and polls. Key indices outside the table are rejected
// here, before anything reaches the controller.
func (a *Adapter) Apply(ev Event) error {
	if err := CheckIndex(ev.Key); err != nil {
		return err
	}
	if ev.Down {
		a.held = a.held.With(ev.Key)
	} else {
		a.held = a.held.Without(ev.Key)
	}
	return a.Sync()
}

// Press holds key alone, releasing any other held key first. Terminals
// report presses but never releases, so this is how a keyboard source moves
// between notes.
func (a *Adapter) Press(key int) error {
	if err := CheckIndex(key); err != nil {
		return err
	}
	a.held = synth.KeyState(0).With(key)
	return a.Sync()
}

func (a *Adapter) ReleaseAll() error {
	a.held = 0
	return a.Sync()
}

// Sync re-polls with the current snapshot, e.g. after a Poll was refused
// because the note queue was full.
func (a *Adapter) Sync() error {
	return a.poller.Poll(a.held, a.clock())
}
