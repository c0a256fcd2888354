package card31

import (
	"fmt"
	"sort"
	"strings"
)

// Rank is the hand type. Lower values are stronger.
type Rank int

const (
	Void3 Rank = iota
	RareTriple
	Triangle
	Straight
	Triple
	Void2
	RareDouble
	Square
	Double
	RareSingle
	Single
	None
)

var rankNames = []string{
	"void3",
	"rare triple",
	"triangle",
	"straight",
	"triple",
	"void2",
	"rare double",
	"square",
	"double",
	"rare single",
	"single",
	"none",
}

func (r Rank) String() string {
	if r < Void3 || r > None {
		return fmt.Sprintf("rank(%d)", int(r))
	}
	return rankNames[r]
}

func (r Rank) Valid() bool {
	return r >= Void3 && r <= None
}

// ParseRank accepts the names produced by Rank.String, case-insensitive.
func ParseRank(s string) (Rank, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range rankNames {
		if name == s {
			return Rank(i), nil
		}
	}
	return None, fmt.Errorf("Unknown rank [%s]", s)
}

// NoSuit marks a hand without a secondary tie-break.
const NoSuit = -1

// Hand is one interpretation of a set of cards. Values returned by Evaluate
// must be treated as immutable.
type Hand struct {
	Cards     Cards
	Rank      Rank
	Value     int
	Suit      int
	Eraseable bool
}

// NoHand is the empty hand left on the table when a player has free play.
func NoHand() Hand {
	return Hand{Rank: None, Value: -1, Suit: NoSuit}
}

func (h Hand) IsNone() bool {
	return h.Rank == None
}

func (h Hand) Size() int {
	return len(h.Cards)
}

func (h Hand) Contains(card Card) bool {
	return h.Cards.Contains(card)
}

// Same reports whether both hands are the same interpretation of the same
// cards.
func (h Hand) Same(other Hand) bool {
	if !Equal(h, other) || len(h.Cards) != len(other.Cards) {
		return false
	}
	for i := range h.Cards {
		if h.Cards[i] != other.Cards[i] {
			return false
		}
	}
	return true
}

// Sorted returns h with its cards in ascending order, the order Evaluate
// produces.
func (h Hand) Sorted() Hand {
	h.Cards = h.Cards.Clone()
	h.Cards.Sort()
	return h
}

func (h Hand) String() string {
	if h.IsNone() {
		return "none"
	}
	if h.Suit == NoSuit {
		return fmt.Sprintf("%s %s(%d)", h.Cards, h.Rank, h.Value)
	}
	return fmt.Sprintf("%s %s(%d,%d)", h.Cards, h.Rank, h.Value, h.Suit)
}

// Compare orders hands by rank, then value, then suit. It returns a positive
// number when a beats b, a negative number when b beats a and 0 when they
// are equal.
func Compare(a, b Hand) int {
	if a.Rank != b.Rank {
		if a.Rank < b.Rank {
			return 1
		}
		return -1
	}
	if a.Value != b.Value {
		if a.Value > b.Value {
			return 1
		}
		return -1
	}
	if a.Suit != b.Suit {
		if a.Suit > b.Suit {
			return 1
		}
		return -1
	}
	return 0
}

// Equal ignores the cards: two hands are equal when rank, value and suit
// match.
func Equal(a, b Hand) bool {
	return Compare(a, b) == 0
}

// Less reports whether a is weaker than b.
func Less(a, b Hand) bool {
	return Compare(a, b) < 0
}

// SortHands orders hands from weakest to strongest.
func SortHands(hands []Hand) {
	sort.SliceStable(hands, func(i, j int) bool { return Less(hands[i], hands[j]) })
}
