package game

import (
	"github.com/XCI9/CardGame/card31"
)

// Player is a seat at the table. Players are owned by a Table and change
// only through Table and PlayerAction methods.
type Player struct {
	Name     string
	Hand     card31.Cards
	Selected card31.Cards
	// Turn is set while the seat holds the token.
	Turn bool
	// FreePlay is set for the last seat to play; when the token comes back
	// to it, the table is cleared.
	FreePlay bool
	// Active is cleared once the seat runs out of cards.
	Active bool
	// Departed is set when the seat's connection was lost mid-round.
	Departed bool
}

func NewPlayer(name string) *Player {
	return &Player{Name: name}
}

func (p *Player) reset() {
	p.Hand = nil
	p.Selected = nil
	p.Turn = false
	p.FreePlay = false
	p.Active = false
}

func (p *Player) clone() Player {
	c := *p
	c.Hand = p.Hand.Clone()
	c.Selected = p.Selected.Clone()
	return c
}

// removeCards takes the played cards out of the hand. A card the viewer
// cannot see is matched against a hidden placeholder instead.
func (p *Player) removeCards(cards card31.Cards) {
	for _, card := range cards {
		idx := indexOf(p.Hand, card)
		if idx < 0 {
			idx = indexOf(p.Hand, card31.Hidden)
		}
		if idx < 0 {
			continue
		}
		p.Hand = append(p.Hand[:idx:idx], p.Hand[idx+1:]...)
	}
	p.Selected = nil
}

func indexOf(cards card31.Cards, card card31.Card) int {
	for i, c := range cards {
		if c == card {
			return i
		}
	}
	return -1
}
