// Package input turns terminal key presses into key-state snapshots for the
// synth note controller.
package input

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/Abhishek-jha-96/Go_SoundSynth/synth"
)

var ErrKeyOutOfRange = errors.New("input: key index out of range")

// Keymap binds one rune to each scale degree, lowest first.
type Keymap [synth.NumKeys]rune

// DefaultKeymap is the two-row piano layout: the bottom row plays naturals,
// the row above it plays sharps.
var DefaultKeymap = Keymap{
	'z', 's', 'x', 'c', 'f', 'v', 'g', 'b', 'n', 'j', 'm', 'k', ',', 'l', '.', '/',
}

// Index returns the key index bound to r. Letters match case-insensitively.
func (m *Keymap) Index(r rune) (int, bool) {
	r = unicode.ToLower(r)
	for k, bound := range m {
		if bound == r {
			return k, true
		}
	}
	return synth.NoKey, false
}

// Rune returns the rune bound to key index k.
func (m *Keymap) Rune(k int) (rune, error) {
	if err := CheckIndex(k); err != nil {
		return 0, err
	}
	return m[k], nil
}

// CheckIndex rejects indices outside the key table.
func CheckIndex(k int) error {
	if k < 0 || k >= synth.NumKeys {
		return fmt.Errorf("%w: %d not in [0,%d]", ErrKeyOutOfRange, k, synth.NumKeys-1)
	}
	return nil
}
