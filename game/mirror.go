package game

import (
	"github.com/XCI9/CardGame/card31"
)

// MirrorAction applies actions the server already accepted. It performs
// the same transitions as CheckedAction without checking anything, so a
// client can follow seats whose cards it cannot see.
type MirrorAction struct {
	table *Table
	seat  int
}

func NewMirrorAction(table *Table, seat int) *MirrorAction {
	return &MirrorAction{table: table, seat: seat}
}

func (m *MirrorAction) apply() bool {
	if m.table.state != Playing || !m.table.validSeat(m.seat) {
		return false
	}
	m.table.setActor(m.seat)
	return true
}

func (m *MirrorAction) PlayHand(hand card31.Hand) error {
	if hand.IsNone() {
		return m.PassTurn()
	}
	if m.apply() {
		m.table.play(m.seat, hand)
	}
	return nil
}

func (m *MirrorAction) PassTurn() error {
	if m.apply() {
		m.table.pass(m.seat)
	}
	return nil
}

func (m *MirrorAction) PlayErase(card card31.Card) error {
	if m.apply() {
		m.table.erase(m.seat, card)
	}
	return nil
}
