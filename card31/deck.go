package card31

import (
	"fmt"
	"math/rand"

	"github.com/XCI9/CardGame/util/random"
)

// Deal is the outcome of dealing a round: the seat holding card 1 and the
// hand of every seat.
type Deal struct {
	Dealer int
	Hands  []Cards
}

// Dealer produces deals. Deck deals randomly; ScriptedDealer replays a
// fixed deal.
type Dealer interface {
	Deal(numPlayers int) (Deal, error)
}

// Deck shuffles cards 2..31 and hands card 1 to a random dealer.
type Deck struct {
	randGen *rand.Rand
}

// NewDeck uses the given source, or a crypto seeded one when source is nil.
func NewDeck(source rand.Source) *Deck {
	if source == nil {
		source = random.NewSource()
	}
	return &Deck{randGen: rand.New(source)}
}

// CardsPerPlayer is the share dealt from cards 2..31. Card 1 is extra for
// the dealer; in a two player game six cards stay undealt.
func CardsPerPlayer(numPlayers int) int {
	switch numPlayers {
	case 2:
		return 12
	case 3:
		return 10
	}
	return 0
}

func (d *Deck) Deal(numPlayers int) (Deal, error) {
	perPlayer := CardsPerPlayer(numPlayers)
	if perPlayer == 0 {
		return Deal{}, fmt.Errorf("Cannot deal to %d players", numPlayers)
	}
	cards := make(Cards, 0, int(MaxCard)-1)
	for c := MinCard + 1; c <= MaxCard; c++ {
		cards = append(cards, c)
	}
	d.randGen.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })

	deal := Deal{Dealer: d.randGen.Intn(numPlayers), Hands: make([]Cards, numPlayers)}
	for seat := 0; seat < numPlayers; seat++ {
		hand := cards[seat*perPlayer : (seat+1)*perPlayer].Clone()
		if seat == deal.Dealer {
			hand = append(hand, MinCard)
		}
		hand.Sort()
		deal.Hands[seat] = hand
	}
	return deal, nil
}

// ScriptedDealer always returns the same deal.
type ScriptedDealer struct {
	deal Deal
}

func NewScriptedDealer(dealer int, hands []Cards) *ScriptedDealer {
	d := Deal{Dealer: dealer, Hands: make([]Cards, len(hands))}
	for i, h := range hands {
		d.Hands[i] = h.Clone()
		d.Hands[i].Sort()
	}
	return &ScriptedDealer{deal: d}
}

func (s *ScriptedDealer) Deal(numPlayers int) (Deal, error) {
	if len(s.deal.Hands) != numPlayers {
		return Deal{}, fmt.Errorf("Scripted deal has %d hands, table has %d players", len(s.deal.Hands), numPlayers)
	}
	if s.deal.Dealer < 0 || s.deal.Dealer >= numPlayers {
		return Deal{}, fmt.Errorf("Invalid dealer seat %d", s.deal.Dealer)
	}
	seen := make(map[Card]bool)
	d := Deal{Dealer: s.deal.Dealer, Hands: make([]Cards, numPlayers)}
	for i, h := range s.deal.Hands {
		for _, c := range h {
			if !c.Valid() || seen[c] {
				return Deal{}, fmt.Errorf("Invalid or duplicate card %d in scripted deal", c)
			}
			seen[c] = true
		}
		d.Hands[i] = h.Clone()
	}
	return d, nil
}
