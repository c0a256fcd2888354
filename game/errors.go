package game

import (
	"fmt"

	"github.com/XCI9/CardGame/card31"
)

const (
	ReasonFirstPlayNeedsOne  = "first play must include card 1"
	ReasonFirstEraseNeedsOne = "first erase must be card 1"
	ReasonTwoOverOne         = "2 over 1 not allowed"
	ReasonThreeOverTwo       = "3 over 2 not allowed"
	ReasonThreeOverOne       = "3 over 1 not allowed"
	ReasonCannotBeat         = "cannot beat the hand on the table"
	ReasonFreePlayNoPass     = "leading player cannot pass"
	ReasonNotYourTurn        = "not your turn"
	ReasonErasePending       = "erase a card first"
)

type NotYourTurnError struct {
	Seat    int
	Current int
}

func (e NotYourTurnError) Error() string {
	return fmt.Sprintf("Seat %d acted on seat %d's turn", e.Seat, e.Current)
}

type RoundNotActiveError struct {
	State RoundState
}

func (e RoundNotActiveError) Error() string {
	return fmt.Sprintf("No round in progress (state: %s)", e.State)
}

type RoundInProgressError struct{}

func (e RoundInProgressError) Error() string {
	return "A round is in progress"
}

type CardsNotHeldError struct {
	Seat  int
	Cards card31.Cards
}

func (e CardsNotHeldError) Error() string {
	return fmt.Sprintf("Seat %d does not hold %s", e.Seat, e.Cards)
}

type InvalidHandError struct {
	Hand card31.Hand
}

func (e InvalidHandError) Error() string {
	return fmt.Sprintf("%s is not a valid hand", e.Hand)
}

type NotPlayableError struct {
	Reason string
}

func (e NotPlayableError) Error() string {
	return e.Reason
}

type CannotPassError struct {
	Reason string
}

func (e CannotPassError) Error() string {
	return e.Reason
}

type ErasePendingError struct {
	Seat int
}

func (e ErasePendingError) Error() string {
	return fmt.Sprintf("Seat %d must erase or skip the erase", e.Seat)
}

type NoErasePendingError struct {
	Seat int
}

func (e NoErasePendingError) Error() string {
	return fmt.Sprintf("Seat %d has no erase pending", e.Seat)
}

type TableFullError struct {
	Size int
}

func (e TableFullError) Error() string {
	return fmt.Sprintf("Table is full (%d players)", e.Size)
}

type DuplicatePlayerError struct {
	Name string
}

func (e DuplicatePlayerError) Error() string {
	return fmt.Sprintf("Player [%s] is already at the table", e.Name)
}

type InvalidSeatError struct {
	Seat int
}

func (e InvalidSeatError) Error() string {
	return fmt.Sprintf("Invalid seat %d", e.Seat)
}

type NotReadyToStartError struct {
	Msg string
}

func (e NotReadyToStartError) Error() string {
	return e.Msg
}

// IsRuleViolation reports whether err is an illegal action by a player, as
// opposed to a broken caller.
func IsRuleViolation(err error) bool {
	switch err.(type) {
	case NotYourTurnError, RoundNotActiveError, CardsNotHeldError, InvalidHandError,
		NotPlayableError, CannotPassError, ErasePendingError, NoErasePendingError:
		return true
	}
	return false
}
