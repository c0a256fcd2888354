package server

import (
	"time"
)

const (
	EventPlayerJoined = "player_joined"
	EventPlayerLeft   = "player_left"
	EventRoundStarted = "round_started"
	EventHandPlayed   = "hand_played"
	EventPassed       = "passed"
	EventErased       = "erased"
	EventRoundOver    = "round_over"
)

// TableEvent is the public record of something that happened at the table.
// It never carries a card that is still in a player's hand.
type TableEvent struct {
	Type   string    `json:"type"`
	Table  string    `json:"table"`
	Seat   int       `json:"seat"`
	Player string    `json:"player,omitempty"`
	Cards  []int     `json:"cards,omitempty"`
	Rank   string    `json:"rank,omitempty"`
	Winner string    `json:"winner,omitempty"`
	Turn   int       `json:"turn"`
	Time   time.Time `json:"time"`
}

// EventSink receives table events. Publish is called with the table lock
// held and must not block.
type EventSink interface {
	Publish(ev TableEvent)
}
