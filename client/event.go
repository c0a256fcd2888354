package client

import (
	"github.com/XCI9/CardGame/card31"
)

type EventKind int

const (
	// EventRoster carries the seated names and the table size.
	EventRoster EventKind = iota
	// EventSync means the mirror was rebuilt from the server's table.
	EventSync
	// EventPlayed is another seat playing a hand or passing.
	EventPlayed
	// EventErased is another seat finishing an erase. Card is
	// card31.Hidden when the erase was skipped.
	EventErased
	EventGameOver
	// EventRejected means the server refused the player and is closing
	// the connection.
	EventRejected
	// EventDisconnected is always the last event.
	EventDisconnected
)

var eventKindNames = map[EventKind]string{
	EventRoster:       "roster",
	EventSync:         "sync",
	EventPlayed:       "played",
	EventErased:       "erased",
	EventGameOver:     "game_over",
	EventRejected:     "rejected",
	EventDisconnected: "disconnected",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return "unknown"
}

type Event struct {
	Kind EventKind
	Seat int
	Hand card31.Hand
	Card card31.Card

	Names     []string
	FullCount int
	Winner    string
	Reason    string
	// Err is set on EventDisconnected when the connection failed rather
	// than closed.
	Err error
}
