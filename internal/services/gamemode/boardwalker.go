package gamemode

import (
	"fmt"

	"github.com/cantorhq/cantor/internal/dependencies/random"
	"github.com/cantorhq/cantor/internal/model"
)

// BoardCells is the number of cells on the walking board
const BoardCells = 24

// BoardWalker steps a token along a board; the round ends when the token
// reaches the final cell
type BoardWalker struct {
	history
	rnd      random.Random
	position int
}

var _ Driver = (*BoardWalker)(nil)

// NewBoardWalker creates a BoardWalker with the token at the start
func NewBoardWalker(rnd random.Random) *BoardWalker {
	b := &BoardWalker{rnd: rnd}
	b.Reset()
	return b
}

// Mode returns the board-walker mode tag
func (b *BoardWalker) Mode() model.GameMode {
	return model.ModeBoardWalker
}

// Reset returns the token to the start and clears the step history
func (b *BoardWalker) Reset() {
	b.position = 0
	b.clear()
}

// Ready reports whether the token has cells left to walk
func (b *BoardWalker) Ready() bool {
	return b.position < BoardCells
}

// Tick rolls a die and advances the token, clamping at the final cell
func (b *BoardWalker) Tick() (model.ContentUnit, bool) {
	if b.position >= BoardCells {
		return model.ContentUnit{}, false
	}

	step := 1 + b.rnd.Intn(6)
	b.position += step
	if b.position > BoardCells {
		b.position = BoardCells
	}

	unit := model.ContentUnit{
		Kind:  "step",
		Label: fmt.Sprintf("cell %d", b.position),
		Value: b.position,
		Final: b.position == BoardCells,
	}
	b.record(unit)
	return unit, true
}
