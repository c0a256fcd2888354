package server

import (
	"github.com/XCI9/CardGame/game"
	"github.com/XCI9/CardGame/logging"
	"github.com/XCI9/CardGame/protocol"
)

func (s *Server) dispatch(sess *session, m protocol.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.left {
		return
	}
	switch msg := m.(type) {
	case *protocol.SendName:
		s.onSendName(sess, msg)
	case *protocol.PlayHand:
		s.onPlayHand(sess, msg)
	case *protocol.PlayErase:
		s.onPlayErase(sess, msg)
	case *protocol.AgainChk:
		s.onAgainChk(sess, msg)
	default:
		sess.logger.Warn().Str(logging.MsgKindKey, m.Kind().String()).Msg("Ignoring server-bound message of unexpected kind")
	}
}

func (s *Server) onSendName(sess *session, m *protocol.SendName) {
	if sess.named {
		sess.logger.Warn().Str(logging.PlayerNameKey, m.Name).Msg("Player is already named")
		return
	}
	seat := s.indexOf(sess)
	reason := ""
	if m.Name == "" {
		reason = "name must not be empty"
	} else if err := s.table.Rename(seat, m.Name); err != nil {
		reason = err.Error()
	}
	if reason != "" {
		Metrics.ConnectionRejected()
		sess.logger.Info().Str(logging.PlayerNameKey, m.Name).Msgf("Rejecting name: %s", reason)
		sess.send(&protocol.Rejected{Reason: reason})
		sess.closeAfterFlush()
		return
	}

	sess.name = m.Name
	sess.named = true
	sess.ready = true
	sess.logger.Info().Int(logging.SeatNumKey, seat).Str(logging.PlayerNameKey, m.Name).Msg("Player joined")
	s.publish(TableEvent{Type: EventPlayerJoined, Seat: seat, Player: m.Name})
	s.broadcastPlayers()
	s.maybeStart()
}

func (s *Server) onPlayHand(sess *session, m *protocol.PlayHand) {
	seat := s.indexOf(sess)
	action := game.NewCheckedAction(s.table, seat)
	if err := action.PlayHand(m.Hand); err != nil {
		s.reject(sess, seat, err)
		return
	}

	hand := m.Hand.Sorted()
	s.broadcastExcept(sess, &protocol.PlayHand{PlayerID: seat, Hand: hand})
	if m.IsPass() {
		s.publish(TableEvent{Type: EventPassed, Seat: seat, Player: sess.name})
	} else {
		s.publish(TableEvent{
			Type:   EventHandPlayed,
			Seat:   seat,
			Player: sess.name,
			Cards:  hand.Cards.Ints(),
			Rank:   hand.Rank.String(),
		})
	}
	s.afterAction()
}

func (s *Server) onPlayErase(sess *session, m *protocol.PlayErase) {
	seat := s.indexOf(sess)
	action := game.NewCheckedAction(s.table, seat)
	if err := action.PlayErase(m.Card); err != nil {
		s.reject(sess, seat, err)
		return
	}

	s.broadcastExcept(sess, &protocol.PlayErase{PlayerID: seat, Card: m.Card})
	ev := TableEvent{Type: EventErased, Seat: seat, Player: sess.name}
	if !m.IsSkip() {
		ev.Cards = []int{int(m.Card)}
	}
	s.publish(ev)
	s.afterAction()
}

func (s *Server) onAgainChk(sess *session, m *protocol.AgainChk) {
	if !m.Agree {
		sess.logger.Info().Msg("Player declined another round")
		sess.closeAfterFlush()
		return
	}
	if s.table.IsActive() {
		sess.logger.Debug().Msg("Ignoring play-again during a round")
		return
	}
	sess.ready = true
	s.maybeStart()
}

// reject answers an illegal action with a full resync to the offender only.
func (s *Server) reject(sess *session, seat int, err error) {
	Metrics.ActionRejected()
	ev := sess.logger.Info()
	if !game.IsRuleViolation(err) {
		ev = sess.logger.Warn()
	}
	ev.Int(logging.SeatNumKey, seat).Err(err).Msg("Rejected action")
	s.resync(sess, seat)
}

func (s *Server) afterAction() {
	if !s.table.IsActive() {
		s.finishRound()
	}
}

// maybeStart deals when every configured seat is taken by a named, ready
// player.
func (s *Server) maybeStart() {
	if s.table.IsActive() || len(s.sessions) != s.cfg.Players {
		return
	}
	for _, c := range s.sessions {
		if !c.named || !c.ready || c.left {
			return
		}
	}
	s.start()
}

func (s *Server) start() {
	if err := s.table.Start(s.dealer); err != nil {
		serverLogger.Error().Err(err).Str(logging.TableKey, s.cfg.Table).Msg("Cannot start the round")
		return
	}
	s.rounds++
	Metrics.RoundStarted()
	for seat, c := range s.sessions {
		c.ready = false
		c.send(&protocol.SyncGame{Table: s.table.Snapshot(seat), RecipientID: seat})
	}
	dealer := s.table.CurrentSeat()
	s.publish(TableEvent{Type: EventRoundStarted, Seat: dealer, Player: s.sessions[dealer].name})
}

// finishRound announces the winner and frees the seats of players who left
// during the round.
func (s *Server) finishRound() {
	Metrics.RoundFinished()
	winner := s.table.Winner()
	name := ""
	if p, ok := s.table.Player(winner); ok {
		name = p.Name
	}
	s.publish(TableEvent{Type: EventRoundOver, Seat: winner, Winner: name})
	s.broadcast(&protocol.GameOver{WinnerName: name})
	for _, c := range s.sessions {
		c.ready = false
	}

	removed := s.table.RemoveDeparted()
	for _, seat := range removed {
		s.sessions = append(s.sessions[:seat:seat], s.sessions[seat+1:]...)
	}
	if len(removed) > 0 {
		s.broadcastPlayers()
	}
}

// SeatSummary is the public view of one seat.
type SeatSummary struct {
	Seat     int    `json:"seat"`
	Name     string `json:"name"`
	Cards    int    `json:"cards"`
	Turn     bool   `json:"turn"`
	FreePlay bool   `json:"free_play"`
	Active   bool   `json:"active"`
}

// Summary is what the control plane exposes about the table. Only card
// counts are shown for hands.
type Summary struct {
	Table    string        `json:"table"`
	State    string        `json:"state"`
	Players  int           `json:"players"`
	Rounds   int           `json:"rounds"`
	Turn     int           `json:"turn"`
	Seats    []SeatSummary `json:"seats"`
	Previous []int         `json:"previous,omitempty"`
	Rank     string        `json:"rank,omitempty"`
	Played   []int         `json:"played"`
	Rules    game.Rules    `json:"rules"`
	Winner   string        `json:"winner,omitempty"`
}

func (s *Server) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.table
	sum := Summary{
		Table:   s.cfg.Table,
		State:   t.State().String(),
		Players: s.cfg.Players,
		Rounds:  s.rounds,
		Turn:    t.Turn(),
		Played:  t.PlayedCards().Ints(),
		Rules:   t.Rules(),
		Seats:   []SeatSummary{},
	}
	counts := t.CardCounts()
	for seat := 0; seat < t.NumPlayers(); seat++ {
		p, _ := t.Player(seat)
		name := p.Name
		if seat < len(s.sessions) && !s.sessions[seat].named {
			name = ""
		}
		sum.Seats = append(sum.Seats, SeatSummary{
			Seat:     seat,
			Name:     name,
			Cards:    counts[seat],
			Turn:     p.Turn,
			FreePlay: p.FreePlay,
			Active:   p.Active,
		})
	}
	if prev := t.PreviousHand(); !prev.IsNone() {
		sum.Previous = prev.Cards.Ints()
		sum.Rank = prev.Rank.String()
	}
	if p, ok := t.Player(t.Winner()); ok {
		sum.Winner = p.Name
	}
	return sum
}
