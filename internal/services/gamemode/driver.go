package gamemode

import (
	"github.com/cantorhq/cantor/internal/dependencies/random"
	"github.com/cantorhq/cantor/internal/model"
)

// Driver advances one room's round content on a clock. Variants differ only
// in content-unit shape and terminal condition; betting and claims never
// reach into a driver.
type Driver interface {
	// Mode returns the driver's game-mode tag
	Mode() model.GameMode

	// Reset re-deals content for a new round
	Reset()

	// Ready reports whether the driver has content to run a round
	Ready() bool

	// Tick emits the next content unit. The second return is false once the
	// driver is exhausted for this round.
	Tick() (model.ContentUnit, bool)

	// History returns the content emitted so far this round, for late joiners
	History() []model.ContentUnit
}

// ForMode constructs the driver for a game mode
func ForMode(mode model.GameMode, rnd random.Random) (Driver, error) {
	switch mode {
	case model.ModeCardCaller:
		return NewCardCaller(rnd), nil
	case model.ModeBoardWalker:
		return NewBoardWalker(rnd), nil
	case model.ModeSpinner:
		return NewSpinner(rnd), nil
	default:
		return nil, model.ErrInvalidMode
	}
}

// history is the shared emitted-content log embedded by the variants
type history struct {
	units []model.ContentUnit
}

func (h *history) record(u model.ContentUnit) {
	h.units = append(h.units, u)
}

func (h *history) clear() {
	h.units = nil
}

// History returns the content emitted so far this round
func (h *history) History() []model.ContentUnit {
	out := make([]model.ContentUnit, len(h.units))
	copy(out, h.units)
	return out
}
