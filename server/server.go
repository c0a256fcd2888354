package server

import (
	"context"
	"io"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/XCI9/CardGame/card31"
	"github.com/XCI9/CardGame/game"
	"github.com/XCI9/CardGame/logging"
	"github.com/XCI9/CardGame/protocol"
)

var serverLogger = log.With().Str("logger_name", "server::server").Logger()

// Server is the authoritative side of one table. The table, the roster and
// every session's seat state live behind mu; each message handler runs
// with mu held so turn checks and turn changes never interleave.
type Server struct {
	cfg Config

	mu       sync.Mutex
	table    *game.Table
	sessions []*session
	dealer   card31.Dealer
	sinks    []EventSink
	rounds   int
}

func NewServer(cfg Config) *Server {
	return &Server{
		cfg:    cfg,
		table:  game.NewTable(),
		dealer: card31.NewDeck(nil),
	}
}

// SetDealer replaces the random deck, e.g. with a scripted deal.
func (s *Server) SetDealer(d card31.Dealer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dealer = d
}

func (s *Server) AddSink(sink EventSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, sink)
}

func (s *Server) Config() Config {
	return s.cfg
}

// ListenAndServe accepts TCP connections until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return errors.Wrapf(err, "Cannot listen on %s", s.cfg.ListenAddr)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	serverLogger.Info().Str(logging.TableKey, s.cfg.Table).Msgf("Listening on %s", ln.Addr())
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				time.Sleep(50 * time.Millisecond)
				continue
			}
			return errors.Wrap(err, "Accept failed")
		}
		go s.ServeConn(ctx, conn)
	}
}

// ServeConn runs one player connection until it closes. Any transport that
// yields a net.Conn carrying length-prefixed frames can be served.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) {
	sess := newSession(conn, s.cfg)
	logging.ConnEvent(&sess.logger, logging.Connected, sess.addr, "connected")
	Metrics.Connected()
	defer Metrics.Disconnected()

	go sess.writeLoop()
	stop := context.AfterFunc(ctx, sess.close)
	defer stop()

	if !s.join(sess) {
		// wait for the rejection to be written
		<-sess.done
		return
	}

	reason := "disconnected"
	for {
		if err := sess.limiter.Wait(ctx); err != nil {
			reason = "server shutting down"
			break
		}
		m, err := protocol.ReadMessage(conn)
		if err != nil {
			switch {
			case err == io.EOF:
			case protocol.IsMalformed(err):
				reason = "malformed frame"
				sess.logger.Warn().Err(err).Msg("Closing connection")
			case sess.isClosed():
				reason = "closed by server"
			default:
				reason = err.Error()
			}
			break
		}
		logging.ConnEvent(&sess.logger, logging.Inbound, sess.addr, m.Kind().String())
		Metrics.MessageReceived(m.Kind().String())
		s.dispatch(sess, m)
	}

	s.leave(sess)
	sess.close()
	logging.ConnEvent(&sess.logger, logging.Closed, sess.addr, reason)
}

func (s *Server) indexOf(sess *session) int {
	for i, c := range s.sessions {
		if c == sess {
			return i
		}
	}
	return -1
}

// join gives the connection a seat. The seat is held under a placeholder
// name until SendName arrives.
func (s *Server) join(sess *session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	reason := ""
	if s.table.IsActive() {
		reason = "a round is in progress"
	} else if len(s.sessions) >= s.cfg.Players {
		reason = "table is full"
	} else if _, err := s.table.Join(game.NewPlayer(sess.id)); err != nil {
		reason = err.Error()
	}
	if reason != "" {
		Metrics.ConnectionRejected()
		sess.logger.Info().Msgf("Rejecting connection: %s", reason)
		sess.send(&protocol.Rejected{Reason: reason})
		sess.closeAfterFlush()
		return false
	}
	s.sessions = append(s.sessions, sess)
	return true
}

// leave handles a closed connection. Between rounds the seat is freed;
// mid-round it is dropped from the table and purged when the round ends.
func (s *Server) leave(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.left {
		return
	}
	sess.left = true
	seat := s.indexOf(sess)
	if seat < 0 {
		return
	}
	if sess.named {
		s.publish(TableEvent{Type: EventPlayerLeft, Seat: seat, Player: sess.name})
	}

	if !s.table.IsActive() {
		if err := s.table.Leave(seat); err != nil {
			sess.logger.Error().Err(err).Msg("Cannot remove seat")
		}
		s.sessions = append(s.sessions[:seat:seat], s.sessions[seat+1:]...)
		s.broadcastPlayers()
		return
	}

	sess.logger.Info().Int(logging.SeatNumKey, seat).Msg("Player left mid-round")
	if err := s.table.Drop(seat); err != nil {
		sess.logger.Error().Err(err).Msg("Cannot drop seat")
		return
	}
	if !s.table.IsActive() {
		s.finishRound()
		return
	}
	for i, c := range s.sessions {
		if !c.left {
			s.resync(c, i)
		}
	}
}

func (s *Server) namedPlayers() []string {
	names := make([]string, 0, len(s.sessions))
	for _, c := range s.sessions {
		if c.named && !c.left {
			names = append(names, c.name)
		}
	}
	return names
}

func (s *Server) broadcastPlayers() {
	m := &protocol.GetPlayer{Names: s.namedPlayers(), FullCount: s.cfg.Players}
	for _, c := range s.sessions {
		if c.named && !c.left {
			c.send(m)
		}
	}
}

// broadcastExcept sends m to every live connection but one.
func (s *Server) broadcastExcept(except *session, m protocol.Message) {
	for _, c := range s.sessions {
		if c != except && !c.left {
			c.send(m)
		}
	}
}

func (s *Server) broadcast(m protocol.Message) {
	s.broadcastExcept(nil, m)
}

func (s *Server) resync(c *session, seat int) {
	c.send(&protocol.SyncGame{Table: s.table.Snapshot(seat), RecipientID: seat})
	Metrics.ResyncSent()
}

func (s *Server) publish(ev TableEvent) {
	ev.Table = s.cfg.Table
	ev.Turn = s.table.Turn()
	ev.Time = time.Now().UTC()
	for _, sink := range s.sinks {
		sink.Publish(ev)
	}
}
