package gamemode

import (
	"github.com/cantorhq/cantor/internal/dependencies/random"
	"github.com/cantorhq/cantor/internal/model"
)

// CardNames is the canonical 54-card calling deck
var CardNames = []string{
	"El Gallo", "El Diablito", "La Dama", "El Catrín", "El Paraguas",
	"La Sirena", "La Escalera", "La Botella", "El Barril", "El Árbol",
	"El Melón", "El Valiente", "El Gorrito", "La Muerte", "La Pera",
	"La Bandera", "El Bandolón", "El Violoncello", "La Garza", "El Pájaro",
	"La Mano", "La Bota", "La Luna", "El Cotorro", "El Borracho",
	"El Negrito", "El Corazón", "La Sandía", "El Tambor", "El Camarón",
	"Las Jaras", "El Músico", "La Araña", "El Soldado", "La Estrella",
	"El Cazo", "El Mundo", "El Apache", "El Nopal", "El Alacrán",
	"La Rosa", "La Calavera", "La Campana", "El Cantarito", "El Venado",
	"El Sol", "La Corona", "La Chalupa", "El Pino", "El Pescado",
	"La Palma", "La Maceta", "El Arpa", "La Rana",
}

// CardCaller calls cards from a shuffled deck until it runs out
type CardCaller struct {
	history
	rnd  random.Random
	deck []int // indices into CardNames, called from the front
}

var _ Driver = (*CardCaller)(nil)

// NewCardCaller creates a CardCaller with a freshly shuffled deck
func NewCardCaller(rnd random.Random) *CardCaller {
	c := &CardCaller{rnd: rnd}
	c.Reset()
	return c
}

// Mode returns the card-caller mode tag
func (c *CardCaller) Mode() model.GameMode {
	return model.ModeCardCaller
}

// Reset reshuffles the full deck and clears the call history
func (c *CardCaller) Reset() {
	c.deck = make([]int, len(CardNames))
	for i := range c.deck {
		c.deck[i] = i
	}
	c.rnd.Shuffle(len(c.deck), func(i, j int) {
		c.deck[i], c.deck[j] = c.deck[j], c.deck[i]
	})
	c.clear()
}

// Ready reports whether cards remain to be called
func (c *CardCaller) Ready() bool {
	return len(c.deck) > 0
}

// Tick calls the next card. The last card of the deck is the terminal unit.
func (c *CardCaller) Tick() (model.ContentUnit, bool) {
	if len(c.deck) == 0 {
		return model.ContentUnit{}, false
	}

	idx := c.deck[0]
	c.deck = c.deck[1:]

	unit := model.ContentUnit{
		Kind:  "card",
		Label: CardNames[idx],
		Value: idx + 1,
		Final: len(c.deck) == 0,
	}
	c.record(unit)
	return unit, true
}
