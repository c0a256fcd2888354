package game

import (
	"github.com/rs/zerolog/log"

	"github.com/XCI9/CardGame/card31"
	"github.com/XCI9/CardGame/logging"
)

var tableLogger = log.With().Str("logger_name", "game::table").Logger()

const MaxPlayers = 3

type RoundState int

const (
	NotStarted RoundState = iota
	Playing
	RoundOver
)

func (s RoundState) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Playing:
		return "playing"
	case RoundOver:
		return "round_over"
	}
	return "unknown"
}

// Rules are the escalation flags. Allow9 lets two cards beat one, Allow19
// lets three cards beat two and Allow29 lets three cards beat one.
type Rules struct {
	Allow9  bool `json:"allow9"`
	Allow19 bool `json:"allow19"`
	Allow29 bool `json:"allow29"`
}

// Table is the turn state machine of one match. It is not safe for
// concurrent use; the server serializes access.
type Table struct {
	players      []*Player
	played       card31.Cards
	turn         int
	token        int
	previous     card31.Hand
	rules        Rules
	state        RoundState
	erasePending int
	winner       int
	finishOrder  []int
}

func NewTable() *Table {
	return &Table{
		token:        -1,
		previous:     card31.NoHand(),
		erasePending: -1,
		winner:       -1,
	}
}

// Join seats a player and returns the seat index.
func (t *Table) Join(p *Player) (int, error) {
	if t.state == Playing {
		return -1, RoundInProgressError{}
	}
	if len(t.players) >= MaxPlayers {
		return -1, TableFullError{Size: MaxPlayers}
	}
	for _, existing := range t.players {
		if existing == p || existing.Name == p.Name {
			return -1, DuplicatePlayerError{Name: p.Name}
		}
	}
	t.players = append(t.players, p)
	return len(t.players) - 1, nil
}

// Leave removes a seat between rounds. Later seats move down by one.
func (t *Table) Leave(seat int) error {
	if t.state == Playing {
		return RoundInProgressError{}
	}
	if !t.validSeat(seat) {
		return InvalidSeatError{Seat: seat}
	}
	t.players = append(t.players[:seat:seat], t.players[seat+1:]...)
	return nil
}

// Rename changes a seat's name, failing when another seat already uses it.
func (t *Table) Rename(seat int, name string) error {
	if !t.validSeat(seat) {
		return InvalidSeatError{Seat: seat}
	}
	for i, p := range t.players {
		if i != seat && p.Name == name {
			return DuplicatePlayerError{Name: name}
		}
	}
	t.players[seat].Name = name
	return nil
}

// Start resets the round and deals. Nothing changes when it fails.
func (t *Table) Start(dealer card31.Dealer) error {
	if t.state == Playing {
		return RoundInProgressError{}
	}
	if len(t.players) != 2 && len(t.players) != 3 {
		return NotReadyToStartError{Msg: "A round needs 2 or 3 players"}
	}
	deal, err := dealer.Deal(len(t.players))
	if err != nil {
		return err
	}

	t.played = nil
	t.previous = card31.NoHand()
	t.rules = Rules{}
	t.erasePending = -1
	t.winner = -1
	t.finishOrder = nil
	for i, p := range t.players {
		p.reset()
		p.Departed = false
		p.Active = true
		p.Hand = deal.Hands[i].Clone()
	}
	dealerSeat := t.players[deal.Dealer]
	dealerSeat.FreePlay = true
	dealerSeat.Turn = true
	t.token = deal.Dealer
	t.turn = 1
	t.state = Playing

	tableLogger.Info().
		Int(logging.SeatNumKey, deal.Dealer).
		Str(logging.PlayerNameKey, dealerSeat.Name).
		Msgf("Round started with %d players", len(t.players))
	return nil
}

// IsPlayable checks hand against the table. The reason is empty when the
// hand can be played.
func (t *Table) IsPlayable(hand card31.Hand) (bool, string) {
	if t.turn == 1 {
		if !hand.Contains(card31.MinCard) && !hand.Eraseable {
			return false, ReasonFirstPlayNeedsOne
		}
	}
	prev := t.previous
	if prev.IsNone() {
		return true, ""
	}
	switch {
	case prev.Size() == 1 && hand.Size() == 2:
		if t.rules.Allow9 {
			return true, ""
		}
		return false, ReasonTwoOverOne
	case prev.Size() == 2 && hand.Size() == 3:
		if t.rules.Allow19 {
			return true, ""
		}
		return false, ReasonThreeOverTwo
	case prev.Size() == 1 && hand.Size() == 3:
		if t.rules.Allow29 {
			return true, ""
		}
		return false, ReasonThreeOverOne
	}

	cmp := card31.Compare(hand, prev)
	switch prev.Rank {
	case card31.Triangle, card31.Straight, card31.Square:
		if cmp >= 0 {
			return true, ""
		}
	default:
		if cmp > 0 {
			return true, ""
		}
	}
	return false, ReasonCannotBeat
}

// IsErasable checks the card chosen for an erase. On the first turn card 1
// has to reach the table before anything else.
func (t *Table) IsErasable(card card31.Card) (bool, string) {
	if t.turn == 1 && !t.played.Contains(card31.MinCard) && card != card31.MinCard {
		return false, ReasonFirstEraseNeedsOne
	}
	return true, ""
}

// PlayHand puts the cards on the pile and updates the escalation flags.
// Cards 9, 19 and 29 arm a rule; 8, 18 and 28 disarm it.
func (t *Table) PlayHand(hand card31.Hand) {
	t.previous = hand
	t.played = append(t.played, hand.Cards...)
	has := hand.Contains
	if has(9) {
		t.rules.Allow9 = true
	}
	if has(19) {
		t.rules.Allow19 = true
	}
	if has(29) {
		t.rules.Allow29 = true
	}
	if has(8) {
		t.rules.Allow9 = false
	}
	if has(18) {
		t.rules.Allow19 = false
	}
	if has(28) {
		t.rules.Allow29 = false
	}
}

// Erase puts one card on the pile without touching any rule.
func (t *Table) Erase(card card31.Card) {
	t.played = append(t.played, card)
}

// AdvanceTurn passes the token on after the current seat played (or
// erased) or passed.
func (t *Table) AdvanceTurn(played bool) {
	if t.state != Playing {
		return
	}
	actor := t.players[t.token]
	if actor.Active && len(actor.Hand) == 0 {
		actor.Active = false
		t.finishOrder = append(t.finishOrder, t.token)
		tableLogger.Info().
			Int(logging.SeatNumKey, t.token).
			Str(logging.PlayerNameKey, actor.Name).
			Msg("Player is out of cards")
	}
	if t.ActiveCount() <= 1 {
		t.endRound()
		return
	}

	if played {
		for _, p := range t.players {
			p.FreePlay = false
		}
		actor.FreePlay = true
	}
	actor.Turn = false

	// A seat that dropped out while holding free play hands it to the seat
	// that actually receives the turn.
	n := len(t.players)
	next := t.token
	transfer := false
	for i := 0; i < n; i++ {
		next = (next + 1) % n
		p := t.players[next]
		if p.Active {
			break
		}
		if p.FreePlay {
			p.FreePlay = false
			transfer = true
		}
	}
	receiver := t.players[next]
	if transfer {
		receiver.FreePlay = true
	}
	receiver.Turn = true
	if receiver.FreePlay {
		t.previous = card31.NoHand()
	}
	t.token = next
	t.turn++
}

// Drop removes a seat whose connection was lost. Mid-round the seat's
// cards are discarded; the round ends when one active seat remains and
// the turn moves on when the seat held it. A hand played before an
// unfinished erase still has to be answered by the other seats. Between rounds the caller is
// expected to Leave the seat instead.
func (t *Table) Drop(seat int) error {
	if !t.validSeat(seat) {
		return InvalidSeatError{Seat: seat}
	}
	p := t.players[seat]
	p.Departed = true
	if t.state != Playing {
		return nil
	}
	wasTurn := seat == t.token
	hadFreePlay := p.FreePlay
	erasing := t.erasePending == seat
	p.Hand = nil
	p.Selected = nil
	p.Active = false
	if erasing {
		t.erasePending = -1
	}

	if t.ActiveCount() <= 1 {
		t.endRound()
		return nil
	}
	if erasing {
		// The hand stays on the table and the seat keeps the lead over it.
		t.AdvanceTurn(true)
	} else if wasTurn {
		p.FreePlay = false
		t.AdvanceTurn(false)
		if hadFreePlay {
			t.players[t.token].FreePlay = true
			t.previous = card31.NoHand()
		}
	}
	return nil
}

// RemoveDeparted drops departed seats from the roster between rounds and
// returns the removed seat indices in descending order.
func (t *Table) RemoveDeparted() []int {
	if t.state == Playing {
		return nil
	}
	var removed []int
	for seat := len(t.players) - 1; seat >= 0; seat-- {
		if t.players[seat].Departed {
			t.players = append(t.players[:seat:seat], t.players[seat+1:]...)
			removed = append(removed, seat)
		}
	}
	return removed
}

// ClearPrevious empties the table so the next hand can be anything.
func (t *Table) ClearPrevious() {
	t.previous = card31.NoHand()
}

func (t *Table) endRound() {
	t.state = RoundOver
	t.erasePending = -1
	t.winner = -1
	for seat, p := range t.players {
		if p.Active {
			t.winner = seat
			break
		}
	}
	ev := tableLogger.Info().Int(logging.TurnKey, t.turn)
	if t.winner >= 0 {
		ev = ev.Int(logging.SeatNumKey, t.winner).Str(logging.PlayerNameKey, t.players[t.winner].Name)
	}
	ev.Msg("Round over")
}

// play applies a hand for seat without any validation.
func (t *Table) play(seat int, hand card31.Hand) {
	p := t.players[seat]
	p.removeCards(hand.Cards)
	t.PlayHand(hand)
	if hand.Eraseable && len(p.Hand) > 0 {
		t.erasePending = seat
		return
	}
	t.AdvanceTurn(true)
}

func (t *Table) pass(seat int) {
	t.players[seat].Selected = nil
	t.AdvanceTurn(false)
}

// erase finishes an erase-pending turn. card31.Hidden skips the erase.
func (t *Table) erase(seat int, card card31.Card) {
	p := t.players[seat]
	if card != card31.Hidden {
		p.removeCards(card31.Cards{card})
		t.Erase(card)
	}
	t.erasePending = -1
	t.AdvanceTurn(true)
}

// setActor moves the token to seat. Mirrors use it to follow the server
// when their local view has drifted.
func (t *Table) setActor(seat int) {
	if t.token == seat {
		return
	}
	if t.validSeat(t.token) {
		t.players[t.token].Turn = false
	}
	t.token = seat
	t.players[seat].Turn = true
}

func (t *Table) validSeat(seat int) bool {
	return seat >= 0 && seat < len(t.players)
}

func (t *Table) State() RoundState {
	return t.state
}

// IsActive reports whether a round is being played.
func (t *Table) IsActive() bool {
	return t.state == Playing
}

func (t *Table) IsFirstTurn() bool {
	return t.turn == 1
}

func (t *Table) Turn() int {
	return t.turn
}

func (t *Table) CurrentSeat() int {
	return t.token
}

// NextSeat is the next seat after the current one that still holds cards.
func (t *Table) NextSeat() int {
	return t.activeFrom(t.token, 1)
}

// PreviousSeat is the closest seat before the current one that still holds
// cards.
func (t *Table) PreviousSeat() int {
	return t.activeFrom(t.token, -1)
}

func (t *Table) activeFrom(seat int, step int) int {
	n := len(t.players)
	if n == 0 || seat < 0 {
		return -1
	}
	for i := 1; i <= n; i++ {
		s := ((seat+step*i)%n + n) % n
		if t.players[s].Active {
			return s
		}
	}
	return -1
}

func (t *Table) PreviousHand() card31.Hand {
	return t.previous
}

func (t *Table) Rules() Rules {
	return t.rules
}

func (t *Table) PlayedCards() card31.Cards {
	return t.played.Clone()
}

func (t *Table) ErasePendingSeat() int {
	return t.erasePending
}

// Winner is the seat left holding cards when the round ended, or -1.
func (t *Table) Winner() int {
	return t.winner
}

// FinishOrder lists seats in the order they ran out of cards.
func (t *Table) FinishOrder() []int {
	return append([]int(nil), t.finishOrder...)
}

func (t *Table) NumPlayers() int {
	return len(t.players)
}

func (t *Table) ActiveCount() int {
	count := 0
	for _, p := range t.players {
		if p.Active {
			count++
		}
	}
	return count
}

// Player returns a copy of the seat.
func (t *Table) Player(seat int) (Player, bool) {
	if !t.validSeat(seat) {
		return Player{}, false
	}
	return t.players[seat].clone(), true
}

func (t *Table) PlayerNames() []string {
	names := make([]string, len(t.players))
	for i, p := range t.players {
		names[i] = p.Name
	}
	return names
}

// SeatOf returns the seat of the named player, or -1.
func (t *Table) SeatOf(name string) int {
	for i, p := range t.players {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// CardCounts returns how many cards each seat holds.
func (t *Table) CardCounts() []int {
	counts := make([]int, len(t.players))
	for i, p := range t.players {
		counts[i] = len(p.Hand)
	}
	return counts
}
