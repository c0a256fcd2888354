package game

import (
	"github.com/XCI9/CardGame/card31"
)

// PlayerAction is what a seat can do on its turn. A nil error means the
// action was applied.
type PlayerAction interface {
	PassTurn() error
	PlayHand(hand card31.Hand) error
	// PlayErase finishes an erase-pending turn. card31.Hidden skips the
	// erase.
	PlayErase(card card31.Card) error
}

// CheckedAction validates every action against the table before applying
// it. The server runs one per seat.
type CheckedAction struct {
	table *Table
	seat  int
}

func NewCheckedAction(table *Table, seat int) *CheckedAction {
	return &CheckedAction{table: table, seat: seat}
}

func (a *CheckedAction) Seat() int {
	return a.seat
}

func (a *CheckedAction) checkTurn() error {
	t := a.table
	if t.state != Playing {
		return RoundNotActiveError{State: t.state}
	}
	if !t.validSeat(a.seat) {
		return InvalidSeatError{Seat: a.seat}
	}
	if t.token != a.seat {
		return NotYourTurnError{Seat: a.seat, Current: t.token}
	}
	return nil
}

// PlayHand plays hand, or passes when hand is the empty hand. An eraseable
// hand keeps the turn until PlayErase.
func (a *CheckedAction) PlayHand(hand card31.Hand) error {
	if hand.IsNone() {
		return a.PassTurn()
	}
	if err := a.checkTurn(); err != nil {
		return err
	}
	t := a.table
	if t.erasePending == a.seat {
		return ErasePendingError{Seat: a.seat}
	}
	hand = hand.Sorted()
	if !isLegalHand(hand) {
		return InvalidHandError{Hand: hand}
	}
	if !t.players[a.seat].Hand.ContainsAll(hand.Cards) {
		return CardsNotHeldError{Seat: a.seat, Cards: hand.Cards.Clone()}
	}
	if ok, reason := t.IsPlayable(hand); !ok {
		return NotPlayableError{Reason: reason}
	}
	t.play(a.seat, hand)
	return nil
}

// PassTurn is refused to a seat with free play; it has to lead.
func (a *CheckedAction) PassTurn() error {
	if err := a.checkTurn(); err != nil {
		return err
	}
	t := a.table
	if t.erasePending == a.seat {
		return ErasePendingError{Seat: a.seat}
	}
	if t.previous.IsNone() {
		return CannotPassError{Reason: ReasonFreePlayNoPass}
	}
	t.pass(a.seat)
	return nil
}

func (a *CheckedAction) PlayErase(card card31.Card) error {
	if err := a.checkTurn(); err != nil {
		return err
	}
	t := a.table
	if t.erasePending != a.seat {
		return NoErasePendingError{Seat: a.seat}
	}
	if card != card31.Hidden {
		if !t.players[a.seat].Hand.Contains(card) {
			return CardsNotHeldError{Seat: a.seat, Cards: card31.Cards{card}}
		}
		if ok, reason := t.IsErasable(card); !ok {
			return NotPlayableError{Reason: reason}
		}
	}
	t.erase(a.seat, card)
	return nil
}

// isLegalHand accepts a hand only when it is one of the evaluations of its
// cards, so clients cannot claim a rank their cards do not make.
func isLegalHand(hand card31.Hand) bool {
	for _, candidate := range card31.Evaluate(hand.Cards) {
		if candidate.Same(hand) && candidate.Eraseable == hand.Eraseable {
			return true
		}
	}
	return false
}
