package nats

import (
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	natsserver "github.com/nats-io/nats-server/v2/test"
	natsgo "github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XCI9/CardGame/server"
)

func connectTestServer(t *testing.T) *natsgo.Conn {
	s := natsserver.RunRandClientPortServer()
	t.Cleanup(s.Shutdown)
	nc, err := Connect(s.ClientURL(), "card31-test")
	require.NoError(t, err)
	t.Cleanup(nc.Close)
	return nc
}

func TestSubjects(t *testing.T) {
	assert.Equal(t, "card31.main.events", EventSubject("main"))
	assert.Equal(t, "card31.main.driver", DriverSubject("main"))
}

func TestTableFeed(t *testing.T) {
	nc := connectTestServer(t)
	feed := NewTableFeed(nc, "main")
	sub, err := nc.SubscribeSync(feed.Subject())
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	sent := server.TableEvent{
		Type:   server.EventHandPlayed,
		Table:  "main",
		Seat:   1,
		Player: "brian",
		Cards:  []int{3, 4, 5},
		Rank:   "triangle",
		Turn:   4,
		Time:   time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	feed.Publish(sent)
	require.NoError(t, nc.Flush())

	msg, err := sub.NextMsg(2 * time.Second)
	require.NoError(t, err)
	var got server.TableEvent
	require.NoError(t, jsoniter.Unmarshal(msg.Data, &got))
	assert.True(t, sent.Time.Equal(got.Time))
	got.Time = sent.Time
	assert.Equal(t, sent, got)
}

func request(t *testing.T, nc *natsgo.Conn, table string, m DriverMessage) DriverReply {
	t.Helper()
	data, err := jsoniter.Marshal(m)
	require.NoError(t, err)
	msg, err := nc.Request(DriverSubject(table), data, 2*time.Second)
	require.NoError(t, err)
	var reply DriverReply
	require.NoError(t, jsoniter.Unmarshal(msg.Data, &reply))
	return reply
}

func TestDriverListener(t *testing.T) {
	nc := connectTestServer(t)
	cfg := server.DefaultConfig()
	cfg.Table = "driven"
	srv := server.NewServer(cfg)
	l, err := NewDriverListener(nc, srv)
	require.NoError(t, err)
	defer l.Close()
	require.NoError(t, nc.Flush())

	reply := request(t, nc, "driven", DriverMessage{MessageType: DriverGetTable})
	assert.Equal(t, TableStatus, reply.MessageType)
	require.NotNil(t, reply.Table)
	assert.Equal(t, "driven", reply.Table.Table)
	assert.Equal(t, 3, reply.Table.Players)

	reply = request(t, nc, "driven", DriverMessage{
		MessageType: DriverSetupDeck,
		Dealer:      0,
		Hands:       [][]int{{1, 2}, {3, 4}, {5, 6}},
	})
	assert.Equal(t, TableDeckReady, reply.MessageType)

	reply = request(t, nc, "driven", DriverMessage{
		MessageType: DriverSetupDeck,
		Dealer:      5,
		Hands:       [][]int{{1, 2}, {3, 4}},
	})
	assert.Equal(t, TableError, reply.MessageType)
	assert.NotEmpty(t, reply.Error)

	reply = request(t, nc, "driven", DriverMessage{MessageType: "bogus"})
	assert.Equal(t, TableError, reply.MessageType)
}
