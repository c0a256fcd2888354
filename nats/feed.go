package nats

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	natsgo "github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/XCI9/CardGame/logging"
	"github.com/XCI9/CardGame/server"
)

var natsLogger = log.With().Str("logger_name", "nats::feed").Logger()

/**
Each table uses two subjects.
card31.<table>.events : public table events, one JSON object per message
card31.<table>.driver : requests from test drivers, answered on the reply subject

Hands are never published; an event carries only cards that are already
on the pile.
*/

func EventSubject(table string) string {
	return fmt.Sprintf("card31.%s.events", table)
}

func DriverSubject(table string) string {
	return fmt.Sprintf("card31.%s.driver", table)
}

// Connect opens a connection that keeps reconnecting for the life of the
// process.
func Connect(url string, name string) (*natsgo.Conn, error) {
	nc, err := natsgo.Connect(url, natsgo.Name(name), natsgo.MaxReconnects(-1))
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to connect to nats server at %s", url)
	}
	return nc, nil
}

// TableFeed publishes table events of one table. It implements
// server.EventSink.
type TableFeed struct {
	nc      *natsgo.Conn
	table   string
	subject string
}

func NewTableFeed(nc *natsgo.Conn, table string) *TableFeed {
	return &TableFeed{
		nc:      nc,
		table:   table,
		subject: EventSubject(table),
	}
}

func (f *TableFeed) Subject() string {
	return f.subject
}

// Publish only queues the message in the nats client, so it never waits on
// the network.
func (f *TableFeed) Publish(ev server.TableEvent) {
	data, err := jsoniter.Marshal(ev)
	if err != nil {
		natsLogger.Error().Err(err).Str(logging.TableKey, f.table).Msg("Cannot marshal table event")
		return
	}
	if err := f.nc.Publish(f.subject, data); err != nil {
		natsLogger.Warn().Err(err).Str(logging.TableKey, f.table).Msgf("Failed to publish %s event", ev.Type)
	}
}
