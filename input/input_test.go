package input

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abhishek-jha-96/Go_SoundSynth/synth"
	"github.com/eiannone/keyboard"
)

type poll struct {
	held synth.KeyState
	now  float64
}

type recordingPoller struct {
	polls []poll
	fail  int // refuse this many polls with ErrQueueFull
}

func (p *recordingPoller) Poll(held synth.KeyState, now float64) error {
	if p.fail > 0 {
		p.fail--
		return synth.ErrQueueFull
	}
	p.polls = append(p.polls, poll{held, now})
	return nil
}

func fixedClock(t float64) func() float64 {
	return func() float64 { return t }
}

func TestKeymapIndex(t *testing.T) {
	tests := []struct {
		r    rune
		want int
		ok   bool
	}{
		{'z', 0, true},
		{'Z', 0, true},
		{'s', 1, true},
		{',', 12, true},
		{'/', 15, true},
		{'q', synth.NoKey, false},
		{0, synth.NoKey, false},
	}
	for _, tt := range tests {
		got, ok := DefaultKeymap.Index(tt.r)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Index(%q) = %d, %v; want %d, %v", tt.r, got, ok, tt.want, tt.ok)
		}
	}

	for k := 0; k < synth.NumKeys; k++ {
		r, err := DefaultKeymap.Rune(k)
		if err != nil {
			t.Fatal(err)
		}
		if back, _ := DefaultKeymap.Index(r); back != k {
			t.Errorf("key %d round-trips to %d", k, back)
		}
	}
	if _, err := DefaultKeymap.Rune(16); !errors.Is(err, ErrKeyOutOfRange) {
		t.Errorf("Rune(16) error = %v", err)
	}
}

func TestAdapterRejectsOutOfRange(t *testing.T) {
	p := &recordingPoller{}
	a := NewAdapter(p, fixedClock(0))
	for _, k := range []int{-1, 16, 100} {
		if err := a.Apply(Event{Key: k, Down: true}); !errors.Is(err, ErrKeyOutOfRange) {
			t.Errorf("Apply(%d) = %v, want ErrKeyOutOfRange", k, err)
		}
		if err := a.Press(k); !errors.Is(err, ErrKeyOutOfRange) {
			t.Errorf("Press(%d) = %v, want ErrKeyOutOfRange", k, err)
		}
	}
	if len(p.polls) != 0 {
		t.Errorf("rejected keys reached the poller: %+v", p.polls)
	}
}

func TestAdapterTracksHeldKeys(t *testing.T) {
	p := &recordingPoller{}
	now := 0.0
	a := NewAdapter(p, func() float64 { now += 0.5; return now })

	steps := []Event{
		{Key: 2, Down: true},
		{Key: 5, Down: true},
		{Key: 2, Down: false},
		{Key: 5, Down: false},
	}
	for _, ev := range steps {
		if err := a.Apply(ev); err != nil {
			t.Fatal(err)
		}
	}
	want := []poll{
		{synth.KeyState(0).With(2), 0.5},
		{synth.KeyState(0).With(2).With(5), 1.0},
		{synth.KeyState(0).With(5), 1.5},
		{0, 2.0},
	}
	if len(p.polls) != len(want) {
		t.Fatalf("polls = %+v", p.polls)
	}
	for i := range want {
		if p.polls[i] != want[i] {
			t.Errorf("poll %d = %+v, want %+v", i, p.polls[i], want[i])
		}
	}
}

func TestAdapterDrivesController(t *testing.T) {
	cfg := synth.DefaultConfig()
	s, err := synth.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	nc := synth.NewNoteController(s)
	a := NewAdapter(nc, fixedClock(1))

	_ = a.Apply(Event{Key: 2, Down: true})
	_ = a.Apply(Event{Key: 5, Down: true})
	if nc.Current() != 5 {
		t.Fatalf("Current = %d, want 5", nc.Current())
	}
	if err := a.Press(9); err != nil {
		t.Fatal(err)
	}
	if nc.Current() != 9 || a.Held() != synth.KeyState(0).With(9) {
		t.Fatalf("Current = %d, held = %016b", nc.Current(), a.Held())
	}
	_ = a.ReleaseAll()
	if nc.Current() != synth.NoKey {
		t.Fatalf("Current = %d after ReleaseAll", nc.Current())
	}
}

func TestKeyboardServe(t *testing.T) {
	p := &recordingPoller{}
	kb := NewKeyboard(NewAdapter(p, fixedClock(0)))
	notified := 0
	kb.Notify = func() { notified++ }

	events := make(chan keyboard.KeyEvent, 8)
	events <- keyboard.KeyEvent{Rune: 'x'}
	events <- keyboard.KeyEvent{Rune: 'L'}
	events <- keyboard.KeyEvent{Key: keyboard.KeySpace}
	events <- keyboard.KeyEvent{Key: keyboard.KeyEsc}

	err := kb.serve(context.Background(), events)
	if !errors.Is(err, ErrQuit) {
		t.Fatalf("serve = %v, want ErrQuit", err)
	}
	want := []synth.KeyState{
		synth.KeyState(0).With(2),
		synth.KeyState(0).With(13),
		0,
	}
	if len(p.polls) != len(want) {
		t.Fatalf("polls = %+v", p.polls)
	}
	for i, held := range want {
		if p.polls[i].held != held {
			t.Errorf("poll %d held = %016b, want %016b", i, p.polls[i].held, held)
		}
	}
	if notified != 3 {
		t.Errorf("Notify called %d times, want 3", notified)
	}
}

func TestKeyboardHoldReleases(t *testing.T) {
	p := &recordingPoller{}
	kb := NewKeyboard(NewAdapter(p, fixedClock(0)))
	kb.Hold = 10 * time.Millisecond
	released := make(chan struct{})
	kb.Notify = func() {
		if len(p.polls) == 2 {
			close(released)
		}
	}

	events := make(chan keyboard.KeyEvent, 1)
	events <- keyboard.KeyEvent{Rune: 'z'}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- kb.serve(ctx, events) }()

	select {
	case <-released:
	case <-time.After(5 * time.Second):
		t.Fatal("note was not released by the hold timer")
	}
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("serve = %v, want context.Canceled", err)
	}
	if p.polls[1].held != 0 {
		t.Errorf("second poll held = %016b, want none", p.polls[1].held)
	}
}

func TestKeyboardRetriesFullQueue(t *testing.T) {
	p := &recordingPoller{fail: 2}
	kb := NewKeyboard(NewAdapter(p, fixedClock(0)))
	done := make(chan struct{})
	kb.Notify = func() { close(done) }

	events := make(chan keyboard.KeyEvent, 1)
	events <- keyboard.KeyEvent{Rune: 'v'}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- kb.serve(ctx, events) }()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("refused poll was never retried")
	}
	cancel()
	<-errc
	if len(p.polls) != 1 || p.polls[0].held != synth.KeyState(0).With(5) {
		t.Errorf("polls = %+v", p.polls)
	}
}

func TestKeyboardPropagatesTerminalError(t *testing.T) {
	kb := NewKeyboard(NewAdapter(&recordingPoller{}, fixedClock(0)))
	boom := errors.New("tty gone")
	events := make(chan keyboard.KeyEvent, 1)
	events <- keyboard.KeyEvent{Err: boom}
	if err := kb.serve(context.Background(), events); !errors.Is(err, boom) {
		t.Fatalf("serve = %v, want %v", err, boom)
	}
}
