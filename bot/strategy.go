package bot

import (
	caches "github.com/XCI9/CardGame/caching"
	"github.com/XCI9/CardGame/card31"
	"github.com/XCI9/CardGame/game"
)

// Decision is what the bot does on its turn. Exactly one of Pass, Hand
// and Erase applies; Erase == card31.Hidden with EraseTurn set skips the
// erase.
type Decision struct {
	Pass      bool
	Hand      card31.Hand
	EraseTurn bool
	Erase     card31.Card
}

// Decide picks the weakest legal play for seat. It passes only when
// nothing can be played, and erases the lowest card it is allowed to.
func Decide(snap game.TableSnapshot, seat int, cache *caches.HandCache) Decision {
	if seat < 0 || seat >= len(snap.Players) {
		return Decision{Pass: true}
	}
	table := game.FromSnapshot(snap)
	hand := snap.Players[seat].Hand

	if snap.ErasePending == seat {
		for _, card := range hand {
			if ok, _ := table.IsErasable(card); ok {
				return Decision{EraseTurn: true, Erase: card}
			}
		}
		return Decision{EraseTurn: true, Erase: card31.Hidden}
	}

	candidates := playableHands(table, hand, cache)
	if len(candidates) == 0 {
		return Decision{Pass: true}
	}
	card31.SortHands(candidates)
	return Decision{Hand: candidates[0]}
}

func playableHands(table *game.Table, hand card31.Cards, cache *caches.HandCache) []card31.Hand {
	var playable []card31.Hand
	check := func(cards card31.Cards) {
		for _, h := range cache.Evaluate(cards) {
			if ok, _ := table.IsPlayable(h); ok {
				playable = append(playable, h)
			}
		}
	}
	n := len(hand)
	for i := 0; i < n; i++ {
		check(card31.Cards{hand[i]})
		for j := i + 1; j < n; j++ {
			check(card31.Cards{hand[i], hand[j]})
			for k := j + 1; k < n; k++ {
				check(card31.Cards{hand[i], hand[j], hand[k]})
			}
		}
	}
	return playable
}
