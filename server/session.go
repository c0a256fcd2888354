package server

import (
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/XCI9/CardGame/logging"
	"github.com/XCI9/CardGame/protocol"
)

// session is one player connection. Outbound frames go through a bounded
// queue drained by writeLoop, so a slow peer never blocks the table lock.
type session struct {
	id      string
	conn    net.Conn
	addr    string
	logger  zerolog.Logger
	limiter *rate.Limiter

	writeTimeout time.Duration
	out          chan []byte
	flush        chan struct{}
	done         chan struct{}
	closeOnce    sync.Once
	flushOnce    sync.Once

	// guarded by Server.mu
	name  string
	named bool
	ready bool
	left  bool
}

func newSession(conn net.Conn, cfg Config) *session {
	id := uuid.New().String()
	addr := conn.RemoteAddr().String()
	return &session{
		id:   id,
		conn: conn,
		addr: addr,
		logger: serverLogger.With().
			Str(logging.SessionIDKey, id).
			Str(logging.RemoteAddrKey, addr).
			Logger(),
		limiter:      rate.NewLimiter(rate.Limit(cfg.MessagesPerSecond), cfg.MessageBurst),
		writeTimeout: cfg.WriteTimeout,
		out:          make(chan []byte, cfg.OutboundQueue),
		flush:        make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// send queues m. A full queue means the peer stopped reading; the session
// is closed rather than letting the queue grow.
func (c *session) send(m protocol.Message) bool {
	payload, err := protocol.Encode(m)
	if err != nil {
		c.logger.Error().Err(err).Msg("Cannot encode outbound message")
		return false
	}
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.out <- payload:
		logging.ConnEvent(&c.logger, logging.Outbound, c.addr, m.Kind().String())
		return true
	default:
		c.logger.Warn().Msg("Outbound queue is full. Closing the connection.")
		c.close()
		return false
	}
}

func (c *session) writeLoop() {
	for {
		select {
		case payload := <-c.out:
			if !c.write(payload) {
				return
			}
		case <-c.flush:
			for {
				select {
				case payload := <-c.out:
					if !c.write(payload) {
						return
					}
				default:
					c.close()
					return
				}
			}
		case <-c.done:
			return
		}
	}
}

func (c *session) write(payload []byte) bool {
	if c.writeTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	if err := protocol.WriteFrame(c.conn, payload); err != nil {
		c.logger.Debug().Err(err).Msg("Write failed")
		c.close()
		return false
	}
	return true
}

// closeAfterFlush closes the connection once the queued messages are
// written.
func (c *session) closeAfterFlush() {
	c.flushOnce.Do(func() { close(c.flush) })
}

func (c *session) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *session) isClosed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
