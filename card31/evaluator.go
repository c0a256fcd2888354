package card31

import (
	"sort"
	"strconv"
)

// Evaluate returns every hand the given cards can be played as. An empty
// result means the combination cannot be played; it is not an error.
// Invalid input (wrong count, out of range or repeated cards) also yields
// no hands.
func Evaluate(cards Cards) []Hand {
	if len(cards) < 1 || len(cards) > 3 || !cards.Distinct() {
		return nil
	}
	for _, c := range cards {
		if !c.Valid() {
			return nil
		}
	}

	sorted := cards.Clone()
	sorted.Sort()
	digits := representativeDigits(sorted)

	var hands []Hand
	switch len(sorted) {
	case 3:
		hands = evaluateThree(sorted, digits)
	case 2:
		hands = evaluateTwo(sorted, digits)
	case 1:
		hands = evaluateOne(sorted, digits)
	}
	for i := range hands {
		hands[i].Eraseable = isEraseable(hands[i].Value, hands[i].Suit)
	}
	return hands
}

func representativeDigits(cards Cards) []int {
	digits := make([]int, 0, 2*len(cards))
	for _, c := range cards {
		digits = append(digits, c.Digits()...)
	}
	sort.Ints(digits)
	return digits
}

func evaluateThree(cards Cards, digits []int) []Hand {
	var hands []Hand
	a, b, c := int(cards[0]), int(cards[1]), int(cards[2])

	if a*a+b*b == c*c {
		hands = append(hands, newHand(cards, Triangle, sum(digits), NoSuit))
	}

	if isStraight(a, b, c) {
		value := 0
		for _, card := range cards {
			value += card.maxDigit()
		}
		hands = append(hands, newHand(cards, Straight, value, NoSuit))
	}

	if value, rest, ok := takeRepeated(digits, 3); ok {
		rank := Triple
		if value > 3 {
			rank = RareTriple
		} else if value == 0 {
			rank = Void3
		}
		hands = append(hands, newHand(cards, rank, value, sum(rest)))
	}
	return hands
}

// isStraight accepts three consecutive cards and the two triples that wrap
// from 31 back to 1.
func isStraight(a, b, c int) bool {
	if b-a == 1 && c-b == 1 {
		return true
	}
	return (a == 1 && b == 30 && c == 31) || (a == 1 && b == 2 && c == 31)
}

func evaluateTwo(cards Cards, digits []int) []Hand {
	var hands []Hand
	a, b := int(cards[0]), int(cards[1])

	if a*a == b {
		hands = append(hands, newHand(cards, Square, b, NoSuit))
	}

	// RareDouble is part of the rank table but never assigned.
	if value, rest, ok := takeRepeated(digits, 2); ok {
		rank := Double
		if value == 0 {
			rank = Void2
		}
		hands = append(hands, newHand(cards, rank, value, sum(rest)))
	}
	return hands
}

func evaluateOne(cards Cards, digits []int) []Hand {
	if len(digits) == 1 {
		return []Hand{newHand(cards, Single, digits[0], NoSuit)}
	}
	// digits are sorted, so the larger digit leads
	hands := []Hand{newHand(cards, Single, digits[1], digits[0])}
	if digits[0] != digits[1] {
		hands = append(hands, newHand(cards, Single, digits[0], digits[1]))
	}
	return hands
}

// takeRepeated finds the largest digit occurring at least n times and
// returns it together with the digits left after removing n occurrences.
func takeRepeated(digits []int, n int) (int, []int, bool) {
	counts := make(map[int]int)
	for _, d := range digits {
		counts[d]++
	}
	value := -1
	for d, count := range counts {
		if count >= n && d > value {
			value = d
		}
	}
	if value < 0 {
		return 0, nil, false
	}
	rest := make([]int, 0, len(digits)-n)
	removed := 0
	for _, d := range digits {
		if d == value && removed < n {
			removed++
			continue
		}
		rest = append(rest, d)
	}
	return value, rest, true
}

// isEraseable requires a suit and a single repeated digit across value and
// suit, e.g. value 11 with suit 1.
func isEraseable(value, suit int) bool {
	if suit == NoSuit {
		return false
	}
	s := strconv.Itoa(value) + strconv.Itoa(suit)
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

func newHand(cards Cards, rank Rank, value, suit int) Hand {
	return Hand{Cards: cards.Clone(), Rank: rank, Value: value, Suit: suit}
}

func sum(ints []int) int {
	total := 0
	for _, v := range ints {
		total += v
	}
	return total
}
