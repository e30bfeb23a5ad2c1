package synth

// KeyState is a snapshot of the 16 keys, bit k set when key k is held.
type KeyState uint16

// Held reports whether key k is down. Out-of-range keys are never held.
func (ks KeyState) Held(k int) bool {
	return k >= 0 && k < NumKeys && ks&(1<<uint(k)) != 0
}

func (ks KeyState) With(k int) KeyState {
	if k < 0 || k >= NumKeys {
		return ks
	}
	return ks | 1<<uint(k)
}

func (ks KeyState) Without(k int) KeyState {
	if k < 0 || k >= NumKeys {
		return ks
	}
	return ks &^ (1 << uint(k))
}

// NoKey marks that no key is active.
const NoKey = -1

// NoteController turns key-state snapshots into note transitions on a Synth.
// It belongs to the input goroutine.
type NoteController struct {
	synth       *Synth
	frequencies [NumKeys]float64
	current     int
}

func NewNoteController(s *Synth) *NoteController {
	return &NoteController{
		synth:       s,
		frequencies: s.Tuning().Table(),
		current:     NoKey,
	}
}

// Current returns the active key index or NoKey.
func (nc *NoteController) Current() int {
	return nc.current
}

// Poll applies one key-state snapshot taken at time now. Keys are scanned in
// index order without stopping, so when several keys are held the highest one
// ends up sounding. If the event queue is full the pending transition is not
// recorded and the next Poll retries it.
func (nc *NoteController) Poll(held KeyState, now float64) error {
	pressed := false
	for k := 0; k < NumKeys; k++ {
		if !held.Held(k) {
			continue
		}
		pressed = true
		if nc.current == k {
			continue
		}
		if err := nc.synth.NoteOn(now); err != nil {
			return err
		}
		nc.synth.SetFrequency(nc.frequencies[k])
		nc.current = k
	}

	if !pressed && nc.current != NoKey {
		if err := nc.synth.NoteOff(now); err != nil {
			return err
		}
		nc.current = NoKey
	}
	return nil
}
