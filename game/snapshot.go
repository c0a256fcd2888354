package game

import (
	"github.com/XCI9/CardGame/card31"
)

// Spectator is the recipient that may not see any hand.
const Spectator = -1

type PlayerSnapshot struct {
	Name     string
	Hand     card31.Cards
	Turn     bool
	FreePlay bool
	Active   bool
	Departed bool
}

// TableSnapshot is a copy of the table as one seat is allowed to see it.
type TableSnapshot struct {
	Players      []PlayerSnapshot
	Played       card31.Cards
	Turn         int
	Token        int
	Previous     card31.Hand
	Rules        Rules
	State        RoundState
	ErasePending int
	Winner       int
	FinishOrder  []int
}

// Snapshot copies the table for recipient. Every card held by another seat
// is replaced with card31.Hidden so hand sizes stay visible but values do
// not.
func (t *Table) Snapshot(recipient int) TableSnapshot {
	s := TableSnapshot{
		Players:      make([]PlayerSnapshot, len(t.players)),
		Played:       t.played.Clone(),
		Turn:         t.turn,
		Token:        t.token,
		Previous:     t.previous,
		Rules:        t.rules,
		State:        t.state,
		ErasePending: t.erasePending,
		Winner:       t.winner,
		FinishOrder:  t.FinishOrder(),
	}
	s.Previous.Cards = t.previous.Cards.Clone()
	for i, p := range t.players {
		ps := PlayerSnapshot{
			Name:     p.Name,
			Turn:     p.Turn,
			FreePlay: p.FreePlay,
			Active:   p.Active,
			Departed: p.Departed,
		}
		if i == recipient {
			ps.Hand = p.Hand.Clone()
		} else {
			ps.Hand = make(card31.Cards, len(p.Hand))
		}
		s.Players[i] = ps
	}
	return s
}

// FromSnapshot rebuilds a table from a snapshot. Clients use it to reset
// their mirror after a resync.
func FromSnapshot(s TableSnapshot) *Table {
	t := &Table{
		players:      make([]*Player, len(s.Players)),
		played:       s.Played.Clone(),
		turn:         s.Turn,
		token:        s.Token,
		previous:     s.Previous,
		rules:        s.Rules,
		state:        s.State,
		erasePending: s.ErasePending,
		winner:       s.Winner,
		finishOrder:  append([]int(nil), s.FinishOrder...),
	}
	t.previous.Cards = s.Previous.Cards.Clone()
	for i, ps := range s.Players {
		t.players[i] = &Player{
			Name:     ps.Name,
			Hand:     ps.Hand.Clone(),
			Turn:     ps.Turn,
			FreePlay: ps.FreePlay,
			Active:   ps.Active,
			Departed: ps.Departed,
		}
	}
	return t
}
