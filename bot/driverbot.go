package bot

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	natsgo "github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/XCI9/CardGame/card31"
	"github.com/XCI9/CardGame/nats"
	"github.com/XCI9/CardGame/server"
)

var driverBotLogger = log.With().Str("logger_name", "bot::driverbot").Logger()

const driverRequestTimeout = 5 * time.Second

// DriverBot talks to a table's driver listener over nats. Bot runners use
// it to fix the deal before seating bots and to read the table afterwards.
type DriverBot struct {
	nc    *natsgo.Conn
	table string
}

func NewDriverBot(nc *natsgo.Conn, table string) *DriverBot {
	return &DriverBot{nc: nc, table: table}
}

func (b *DriverBot) request(m nats.DriverMessage) (nats.DriverReply, error) {
	data, err := jsoniter.Marshal(m)
	if err != nil {
		return nats.DriverReply{}, err
	}
	msg, err := b.nc.Request(nats.DriverSubject(b.table), data, driverRequestTimeout)
	if err != nil {
		return nats.DriverReply{}, errors.Wrapf(err, "No reply from table [%s] to %s", b.table, m.MessageType)
	}
	var reply nats.DriverReply
	if err := jsoniter.Unmarshal(msg.Data, &reply); err != nil {
		return nats.DriverReply{}, errors.Wrap(err, "Invalid reply from table")
	}
	if reply.MessageType == nats.TableError {
		return reply, fmt.Errorf("Table [%s] refused %s: %s", b.table, m.MessageType, reply.Error)
	}
	return reply, nil
}

// SetupDeck makes the table deal hands, with dealer leading, from the
// next round on.
func (b *DriverBot) SetupDeck(dealer int, hands []card31.Cards) error {
	m := nats.DriverMessage{MessageType: nats.DriverSetupDeck, Dealer: dealer}
	for _, h := range hands {
		m.Hands = append(m.Hands, h.Ints())
	}
	_, err := b.request(m)
	if err == nil {
		driverBotLogger.Info().Msgf("Deck set up for table [%s]", b.table)
	}
	return err
}

func (b *DriverBot) TableStatus() (server.Summary, error) {
	reply, err := b.request(nats.DriverMessage{MessageType: nats.DriverGetTable})
	if err != nil {
		return server.Summary{}, err
	}
	if reply.Table == nil {
		return server.Summary{}, fmt.Errorf("Table [%s] sent an empty status", b.table)
	}
	return *reply.Table, nil
}
