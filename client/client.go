package client

import (
	"context"
	"io"
	"net"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	caches "github.com/XCI9/CardGame/caching"
	"github.com/XCI9/CardGame/card31"
	"github.com/XCI9/CardGame/game"
	"github.com/XCI9/CardGame/logging"
	"github.com/XCI9/CardGame/protocol"
)

var clientLogger = log.With().Str("logger_name", "client::client").Logger()

// EventQueueSize is how many events may wait for the consumer before the
// receive loop stops reading.
const EventQueueSize = 64

// NoTableError is returned by actions attempted before the first deal.
type NoTableError struct{}

func (e NoTableError) Error() string {
	return "No round has been dealt yet"
}

// GameCoreClient keeps a local mirror of the table in step with the
// server. Own actions are checked and applied locally before they are
// sent; other seats are followed from the server's broadcasts. A resync
// replaces the mirror.
type GameCoreClient struct {
	name   string
	conn   net.Conn
	addr   string
	cache  *caches.HandCache
	logger zerolog.Logger
	events chan Event

	writeMu sync.Mutex

	mu        sync.Mutex
	table     *game.Table
	local     *game.LocalAction
	seat      int
	roster    []string
	fullCount int

	closeOnce sync.Once
	done      chan struct{}
}

// Dial connects to a server over TCP and announces name.
func Dial(ctx context.Context, addr string, name string) (*GameCoreClient, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot connect to %s", addr)
	}
	c, err := NewClient(ctx, conn, name)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// NewClient runs a client over an established connection. The receive
// loop ends when ctx is cancelled or the connection closes.
func NewClient(ctx context.Context, conn net.Conn, name string) (*GameCoreClient, error) {
	addr := conn.RemoteAddr().String()
	c := &GameCoreClient{
		name:   name,
		conn:   conn,
		addr:   addr,
		cache:  caches.Default(),
		logger: clientLogger.With().Str(logging.PlayerNameKey, name).Logger(),
		events: make(chan Event, EventQueueSize),
		seat:   game.Spectator,
		done:   make(chan struct{}),
	}
	logging.ConnEvent(&c.logger, logging.Connected, addr, "connected")
	if err := c.send(&protocol.SendName{Name: name}); err != nil {
		return nil, err
	}
	go c.receiveLoop(ctx)
	return c, nil
}

func (c *GameCoreClient) Name() string {
	return c.name
}

// Events is closed after EventDisconnected.
func (c *GameCoreClient) Events() <-chan Event {
	return c.events
}

func (c *GameCoreClient) Done() <-chan struct{} {
	return c.done
}

func (c *GameCoreClient) send(m protocol.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := protocol.WriteMessage(c.conn, m); err != nil {
		return errors.Wrapf(err, "Cannot send %s", m.Kind())
	}
	logging.ConnEvent(&c.logger, logging.Outbound, c.addr, m.Kind().String())
	return nil
}

func (c *GameCoreClient) receiveLoop(ctx context.Context) {
	stop := context.AfterFunc(ctx, c.close)
	defer stop()
	defer close(c.events)

	var cause error
	for {
		m, err := protocol.ReadMessage(c.conn)
		if err != nil {
			if err != io.EOF && !c.isClosed() {
				cause = err
			}
			break
		}
		logging.ConnEvent(&c.logger, logging.Inbound, c.addr, m.Kind().String())
		if ev, ok := c.apply(m); ok {
			c.emit(ctx, ev)
		}
	}

	c.close()
	reason := "closed"
	if cause != nil {
		reason = cause.Error()
	}
	logging.ConnEvent(&c.logger, logging.Closed, c.addr, reason)
	c.emit(ctx, Event{Kind: EventDisconnected, Seat: c.Seat(), Err: cause})
}

func (c *GameCoreClient) emit(ctx context.Context, ev Event) {
	select {
	case c.events <- ev:
	case <-ctx.Done():
	}
}

// apply updates the mirror with one server message.
func (c *GameCoreClient) apply(m protocol.Message) (Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch msg := m.(type) {
	case *protocol.GetPlayer:
		c.roster = append([]string(nil), msg.Names...)
		c.fullCount = msg.FullCount
		return Event{Kind: EventRoster, Seat: c.seat, Names: c.roster, FullCount: msg.FullCount}, true
	case *protocol.SyncGame:
		c.table = game.FromSnapshot(msg.Table)
		c.seat = msg.RecipientID
		c.local = game.NewLocalAction(c.table, c.seat, c.cache)
		return Event{Kind: EventSync, Seat: c.seat}, true
	case *protocol.PlayHand:
		if c.table == nil {
			return Event{}, false
		}
		game.NewMirrorAction(c.table, msg.PlayerID).PlayHand(msg.Hand)
		c.local.Refresh()
		return Event{Kind: EventPlayed, Seat: msg.PlayerID, Hand: msg.Hand}, true
	case *protocol.PlayErase:
		if c.table == nil {
			return Event{}, false
		}
		game.NewMirrorAction(c.table, msg.PlayerID).PlayErase(msg.Card)
		c.local.Refresh()
		return Event{Kind: EventErased, Seat: msg.PlayerID, Card: msg.Card}, true
	case *protocol.GameOver:
		return Event{Kind: EventGameOver, Seat: c.seat, Winner: msg.WinnerName}, true
	case *protocol.Rejected:
		c.logger.Warn().Msgf("Server refused the player: %s", msg.Reason)
		return Event{Kind: EventRejected, Seat: c.seat, Reason: msg.Reason}, true
	default:
		c.logger.Warn().Str(logging.MsgKindKey, m.Kind().String()).Msg("Ignoring client-bound message of unexpected kind")
		return Event{}, false
	}
}

func (c *GameCoreClient) Seat() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seat
}

// Roster returns the names the server last announced and the table size.
func (c *GameCoreClient) Roster() ([]string, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.roster...), c.fullCount
}

// Table returns the mirror as this seat sees it.
func (c *GameCoreClient) Table() (game.TableSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.table == nil {
		return game.TableSnapshot{}, false
	}
	return c.table.Snapshot(c.seat), true
}

func (c *GameCoreClient) Rules() game.Rules {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.table == nil {
		return game.Rules{}
	}
	return c.table.Rules()
}

func (c *GameCoreClient) IsMyTurn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.table != nil && c.table.IsActive() && c.table.CurrentSeat() == c.seat
}

// IsErasePending reports whether this seat owes an erase decision.
func (c *GameCoreClient) IsErasePending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.table != nil && c.table.ErasePendingSeat() == c.seat
}

// SelectCards replaces the selection and returns every way to play it.
func (c *GameCoreClient) SelectCards(cards card31.Cards) ([]game.Hint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.local == nil {
		return nil, NoTableError{}
	}
	return c.local.Select(cards)
}

func (c *GameCoreClient) Hints() []game.Hint {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.local == nil {
		return nil
	}
	return c.local.Hints()
}

// PlayHand plays hand locally and sends it. Nothing is sent when the local
// table refuses it.
func (c *GameCoreClient) PlayHand(hand card31.Hand) error {
	return c.act(func(l *game.LocalAction) (protocol.Message, error) {
		if err := l.PlayHand(hand); err != nil {
			return nil, err
		}
		return &protocol.PlayHand{PlayerID: protocol.UnsetPlayer, Hand: hand}, nil
	})
}

// PassTurn passes, or skips the erase when one is pending.
func (c *GameCoreClient) PassTurn() error {
	return c.act(func(l *game.LocalAction) (protocol.Message, error) {
		if c.table.ErasePendingSeat() == c.seat {
			if err := l.PlayErase(card31.Hidden); err != nil {
				return nil, err
			}
			return &protocol.PlayErase{PlayerID: protocol.UnsetPlayer, Card: card31.Hidden}, nil
		}
		if err := l.PassTurn(); err != nil {
			return nil, err
		}
		return protocol.NewPass(protocol.UnsetPlayer), nil
	})
}

func (c *GameCoreClient) PlayErase(card card31.Card) error {
	return c.act(func(l *game.LocalAction) (protocol.Message, error) {
		if err := l.PlayErase(card); err != nil {
			return nil, err
		}
		return &protocol.PlayErase{PlayerID: protocol.UnsetPlayer, Card: card}, nil
	})
}

// act applies an own action to the mirror and sends it while still holding
// the mirror lock, so a broadcast cannot be applied in between.
func (c *GameCoreClient) act(do func(l *game.LocalAction) (protocol.Message, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.local == nil {
		return NoTableError{}
	}
	m, err := do(c.local)
	if err != nil {
		return err
	}
	return c.send(m)
}

// PlayAgain answers the play-again question. Declining makes the server
// close the connection.
func (c *GameCoreClient) PlayAgain(agree bool) error {
	return c.send(&protocol.AgainChk{Agree: agree})
}

// Leave closes the connection. Mid-round the server drops the seat.
func (c *GameCoreClient) Leave() {
	c.close()
}

func (c *GameCoreClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *GameCoreClient) isClosed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
