package game

import (
	caches "github.com/XCI9/CardGame/caching"
	"github.com/XCI9/CardGame/card31"
)

// Hint is one way to play the current selection together with the
// table's verdict on it.
type Hint struct {
	Hand card31.Hand
	// Erase is set instead of Hand when the hint is the erase of a single
	// card.
	Erase    card31.Card
	Playable bool
	Reason   string
}

// LocalAction drives the local player's seat. It validates like
// CheckedAction and keeps hints for the cards currently selected.
type LocalAction struct {
	checked *CheckedAction
	cache   *caches.HandCache
	hints   []Hint
}

func NewLocalAction(table *Table, seat int, cache *caches.HandCache) *LocalAction {
	if cache == nil {
		cache = caches.Default()
	}
	return &LocalAction{checked: NewCheckedAction(table, seat), cache: cache}
}

func (l *LocalAction) Seat() int {
	return l.checked.seat
}

// Select replaces the selection and returns the new hints. Selecting
// nothing clears the hints.
func (l *LocalAction) Select(cards card31.Cards) ([]Hint, error) {
	t := l.checked.table
	seat := l.checked.seat
	if !t.validSeat(seat) {
		return nil, InvalidSeatError{Seat: seat}
	}
	p := t.players[seat]
	if !p.Hand.ContainsAll(cards) || !cards.Distinct() {
		return nil, CardsNotHeldError{Seat: seat, Cards: cards.Clone()}
	}
	p.Selected = cards.Clone()
	p.Selected.Sort()
	l.refresh()
	return l.Hints(), nil
}

// Refresh recomputes hints after the table changed under the selection.
func (l *LocalAction) Refresh() []Hint {
	t := l.checked.table
	seat := l.checked.seat
	if t.validSeat(seat) {
		p := t.players[seat]
		var kept card31.Cards
		for _, c := range p.Selected {
			if p.Hand.Contains(c) {
				kept = append(kept, c)
			}
		}
		p.Selected = kept
	}
	l.refresh()
	return l.Hints()
}

func (l *LocalAction) refresh() {
	l.hints = nil
	t := l.checked.table
	seat := l.checked.seat
	selected := t.players[seat].Selected
	if len(selected) == 0 {
		return
	}

	turnErr := l.checked.checkTurn()
	if t.erasePending == seat && turnErr == nil {
		if len(selected) == 1 {
			ok, reason := t.IsErasable(selected[0])
			l.hints = append(l.hints, Hint{Hand: card31.NoHand(), Erase: selected[0], Playable: ok, Reason: reason})
			return
		}
		turnErr = ErasePendingError{Seat: seat}
	}

	for _, hand := range l.cache.Evaluate(selected) {
		hint := Hint{Hand: hand}
		switch turnErr.(type) {
		case nil:
			hint.Playable, hint.Reason = t.IsPlayable(hand)
		case NotYourTurnError:
			hint.Reason = ReasonNotYourTurn
		case ErasePendingError:
			hint.Reason = ReasonErasePending
		default:
			hint.Reason = turnErr.Error()
		}
		l.hints = append(l.hints, hint)
	}
}

// Hints returns a copy of the current hints.
func (l *LocalAction) Hints() []Hint {
	return append([]Hint(nil), l.hints...)
}

// PlayableHints returns only the hints that can be played now.
func (l *LocalAction) PlayableHints() []Hint {
	var playable []Hint
	for _, h := range l.hints {
		if h.Playable {
			playable = append(playable, h)
		}
	}
	return playable
}

func (l *LocalAction) PlayHand(hand card31.Hand) error {
	if err := l.checked.PlayHand(hand); err != nil {
		return err
	}
	l.hints = nil
	return nil
}

func (l *LocalAction) PassTurn() error {
	if err := l.checked.PassTurn(); err != nil {
		return err
	}
	l.hints = nil
	return nil
}

func (l *LocalAction) PlayErase(card card31.Card) error {
	if err := l.checked.PlayErase(card); err != nil {
		return err
	}
	l.hints = nil
	return nil
}
