package nats

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	natsgo "github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/XCI9/CardGame/card31"
	"github.com/XCI9/CardGame/logging"
	"github.com/XCI9/CardGame/server"
)

// driver messages to the table
const (
	DriverGetTable  = "D2GGetTable"
	DriverSetupDeck = "D2GSetupDeck"
)

// table replies to the driver
const (
	TableStatus    = "G2DTableStatus"
	TableDeckReady = "G2DDeckReady"
	TableError     = "G2DError"
)

type DriverMessage struct {
	MessageType string  `json:"message-type"`
	Dealer      int     `json:"dealer"`
	Hands       [][]int `json:"hands"`
}

type DriverReply struct {
	MessageType string          `json:"message-type"`
	Error       string          `json:"error,omitempty"`
	Table       *server.Summary `json:"table,omitempty"`
}

var driverLogger = log.With().Str("logger_name", "nats::driver").Logger()

// DriverListener lets a test driver inspect the table and fix the deal of
// the following rounds over nats.
type DriverListener struct {
	nc  *natsgo.Conn
	srv *server.Server
	sub *natsgo.Subscription
}

func NewDriverListener(nc *natsgo.Conn, srv *server.Server) (*DriverListener, error) {
	l := &DriverListener{nc: nc, srv: srv}
	subject := DriverSubject(srv.Config().Table)
	sub, err := nc.Subscribe(subject, l.listenForMessages)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to subscribe to %s", subject)
	}
	l.sub = sub
	driverLogger.Info().Msg(fmt.Sprintf("Listening nats subject: %s for driver messages", subject))
	return l, nil
}

func (l *DriverListener) Close() error {
	return l.sub.Unsubscribe()
}

func (l *DriverListener) listenForMessages(msg *natsgo.Msg) {
	var message DriverMessage
	if err := jsoniter.Unmarshal(msg.Data, &message); err != nil {
		driverLogger.Error().Msg(fmt.Sprintf("Invalid driver message: %s", string(msg.Data)))
		l.reply(msg, DriverReply{MessageType: TableError, Error: err.Error()})
		return
	}

	switch message.MessageType {
	case DriverGetTable:
		sum := l.srv.Summary()
		l.reply(msg, DriverReply{MessageType: TableStatus, Table: &sum})
	case DriverSetupDeck:
		hands := make([]card31.Cards, len(message.Hands))
		for i, hand := range message.Hands {
			hands[i] = card31.NewCards(hand...)
		}
		dealer := card31.NewScriptedDealer(message.Dealer, hands)
		if _, err := dealer.Deal(len(hands)); err != nil {
			l.reply(msg, DriverReply{MessageType: TableError, Error: err.Error()})
			return
		}
		l.srv.SetDealer(dealer)
		l.reply(msg, DriverReply{MessageType: TableDeckReady})
	default:
		driverLogger.Warn().Msg(fmt.Sprintf("Unhandled driver message: %s", string(msg.Data)))
		l.reply(msg, DriverReply{MessageType: TableError, Error: fmt.Sprintf("unknown message type [%s]", message.MessageType)})
	}
}

func (l *DriverListener) reply(msg *natsgo.Msg, reply DriverReply) {
	if msg.Reply == "" {
		return
	}
	data, err := jsoniter.Marshal(reply)
	if err != nil {
		driverLogger.Error().Err(err).Msg("Cannot marshal driver reply")
		return
	}
	if err := msg.Respond(data); err != nil {
		driverLogger.Error().Err(err).Str(logging.TableKey, l.srv.Config().Table).Msg("Failed to deliver message to driver")
	}
}
