package card31

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Card is a face value in [MinCard, MaxCard].
type Card int

const (
	MinCard Card = 1
	MaxCard Card = 31

	// Hidden stands in for a card the viewer is not allowed to see.
	Hidden Card = 0
)

func (c Card) Valid() bool {
	return c >= MinCard && c <= MaxCard
}

// Digits returns the representative digits of the card: the tens digit
// when the card is 10 or more, followed by the units digit.
func (c Card) Digits() []int {
	v := int(c)
	if v/10 != 0 {
		return []int{v / 10, v % 10}
	}
	return []int{v % 10}
}

// maxDigit is the largest decimal digit of the face value.
func (c Card) maxDigit() int {
	max := 0
	for _, d := range c.Digits() {
		if d > max {
			max = d
		}
	}
	return max
}

func (c Card) String() string {
	if c == Hidden {
		return "?"
	}
	return strconv.Itoa(int(c))
}

// Cards is a set of cards kept in ascending order.
type Cards []Card

// NewCards copies and sorts the given values.
func NewCards(values ...int) Cards {
	cards := make(Cards, len(values))
	for i, v := range values {
		cards[i] = Card(v)
	}
	cards.Sort()
	return cards
}

func (cards Cards) Sort() {
	sort.Slice(cards, func(i, j int) bool { return cards[i] < cards[j] })
}

func (cards Cards) Clone() Cards {
	if cards == nil {
		return nil
	}
	c := make(Cards, len(cards))
	copy(c, cards)
	return c
}

func (cards Cards) Contains(card Card) bool {
	for _, c := range cards {
		if c == card {
			return true
		}
	}
	return false
}

// ContainsAll reports whether every card of other is present.
func (cards Cards) ContainsAll(other Cards) bool {
	for _, c := range other {
		if !cards.Contains(c) {
			return false
		}
	}
	return true
}

// Remove returns the cards without the given ones. The receiver is not
// modified.
func (cards Cards) Remove(other Cards) Cards {
	left := make(Cards, 0, len(cards))
	for _, c := range cards {
		if !other.Contains(c) {
			left = append(left, c)
		}
	}
	return left
}

// Distinct reports whether no card value repeats.
func (cards Cards) Distinct() bool {
	seen := make(map[Card]bool, len(cards))
	for _, c := range cards {
		if seen[c] {
			return false
		}
		seen[c] = true
	}
	return true
}

func (cards Cards) Ints() []int {
	ints := make([]int, len(cards))
	for i, c := range cards {
		ints[i] = int(c)
	}
	return ints
}

func (cards Cards) String() string {
	strs := make([]string, len(cards))
	for i, c := range cards {
		strs[i] = c.String()
	}
	return fmt.Sprintf("[%s]", strings.Join(strs, " "))
}

// ParseCards parses a space or comma separated list of face values,
// such as "9 19" or "1,30,31".
func ParseCards(s string) (Cards, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
	cards := make(Cards, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("Invalid card [%s]", f)
		}
		c := Card(v)
		if !c.Valid() {
			return nil, fmt.Errorf("Card [%d] is out of range", v)
		}
		cards = append(cards, c)
	}
	cards.Sort()
	return cards, nil
}
