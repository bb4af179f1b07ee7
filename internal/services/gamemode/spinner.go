package gamemode

import (
	"github.com/cantorhq/cantor/internal/dependencies/random"
	"github.com/cantorhq/cantor/internal/model"
)

// spinner outcomes; "take all" is the terminal spin
var spinnerOutcomes = []string{
	"take all", "take two", "take one", "put one", "put two", "all put",
}

// Spinner spins a six-sided outcome each tick until "take all" lands
type Spinner struct {
	history
	rnd  random.Random
	done bool
}

var _ Driver = (*Spinner)(nil)

// NewSpinner creates a Spinner ready to spin
func NewSpinner(rnd random.Random) *Spinner {
	s := &Spinner{rnd: rnd}
	s.Reset()
	return s
}

// Mode returns the spinner mode tag
func (s *Spinner) Mode() model.GameMode {
	return model.ModeSpinner
}

// Reset re-arms the spinner and clears the spin history
func (s *Spinner) Reset() {
	s.done = false
	s.clear()
}

// Ready reports whether the spinner can still spin this round
func (s *Spinner) Ready() bool {
	return !s.done
}

// Tick spins. A "take all" outcome ends the round.
func (s *Spinner) Tick() (model.ContentUnit, bool) {
	if s.done {
		return model.ContentUnit{}, false
	}

	face := s.rnd.Intn(len(spinnerOutcomes))
	final := face == 0
	s.done = final

	unit := model.ContentUnit{
		Kind:  "spin",
		Label: spinnerOutcomes[face],
		Value: face + 1,
		Final: final,
	}
	s.record(unit)
	return unit, true
}
