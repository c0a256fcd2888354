package bot

import (
	"context"
	"io/ioutil"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	caches "github.com/XCI9/CardGame/caching"
	"github.com/XCI9/CardGame/card31"
	"github.com/XCI9/CardGame/client"
	"github.com/XCI9/CardGame/game"
	"github.com/XCI9/CardGame/nats"
	"github.com/XCI9/CardGame/server"
)

func dealt(t *testing.T, dealer int, hands ...card31.Cards) *game.Table {
	t.Helper()
	table := game.NewTable()
	for _, name := range []string{"a", "b", "c"}[:len(hands)] {
		_, err := table.Join(game.NewPlayer(name))
		require.NoError(t, err)
	}
	require.NoError(t, table.Start(card31.NewScriptedDealer(dealer, hands)))
	return table
}

func TestDecide(t *testing.T) {
	cache := caches.Default()

	table := dealt(t, 0, card31.NewCards(1, 4, 9), card31.NewCards(2, 6))
	d := Decide(table.Snapshot(0), 0, cache)
	require.False(t, d.Pass)
	assert.True(t, d.Hand.Contains(1), "the first play has to hold card 1: %s", d.Hand)

	one := card31.Evaluate(card31.NewCards(1))[0]
	require.NoError(t, game.NewCheckedAction(table, 0).PlayHand(one))
	d = Decide(table.Snapshot(1), 1, cache)
	require.False(t, d.Pass)
	assert.Equal(t, card31.Single, d.Hand.Rank)
	assert.Equal(t, card31.Cards{2}, d.Hand.Cards)

	// a lone 2 cannot beat the 9
	table = dealt(t, 0, card31.NewCards(1, 9, 20), card31.NewCards(2, 6))
	require.NoError(t, game.NewCheckedAction(table, 0).PlayHand(one))
	require.NoError(t, game.NewCheckedAction(table, 1).PlayHand(card31.Evaluate(card31.NewCards(6))[0]))
	nine := card31.Evaluate(card31.NewCards(9))[0]
	require.NoError(t, game.NewCheckedAction(table, 0).PlayHand(nine))
	d = Decide(table.Snapshot(1), 1, cache)
	assert.True(t, d.Pass)
}

func TestDecideErase(t *testing.T) {
	table := dealt(t, 0, card31.NewCards(1, 5, 11), card31.NewCards(3, 7))
	var double card31.Hand
	for _, h := range card31.Evaluate(card31.NewCards(1, 11)) {
		if h.Rank == card31.Double {
			double = h
		}
	}
	require.True(t, double.Eraseable)
	require.NoError(t, game.NewCheckedAction(table, 0).PlayHand(double))

	d := Decide(table.Snapshot(0), 0, caches.Default())
	assert.True(t, d.EraseTurn)
	assert.Equal(t, card31.Card(5), d.Erase)
}

func TestParseDelayConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "delays.yaml")
	require.NoError(t, ioutil.WriteFile(file, []byte("minAction: 100\nmaxAction: 300\nplayAgain: 50\n"), 0644))
	delays, err := ParseDelayConfig(file)
	require.NoError(t, err)
	assert.Equal(t, Delays{MinAction: 100, MaxAction: 300, PlayAgain: 50}, delays)

	require.NoError(t, ioutil.WriteFile(file, []byte("minAction: 300\nmaxAction: 100\n"), 0644))
	_, err = ParseDelayConfig(file)
	assert.Error(t, err)

	_, err = ParseDelayConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestBotsPlayRounds(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	cfg := server.DefaultConfig()
	srv := server.NewServer(cfg)

	names := []string{"yong", "brian", "tom"}
	bots := make([]*PlayerBot, len(names))
	errs := make([]error, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		clientSide, serverSide := net.Pipe()
		go srv.ServeConn(ctx, serverSide)
		c, err := client.NewClient(ctx, clientSide, name)
		require.NoError(t, err)
		bots[i] = NewPlayerBot(c, Config{Name: name, Rounds: 2})

		// seat the players in order
		for len(srv.Summary().Seats) < i+1 {
			time.Sleep(5 * time.Millisecond)
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = bots[i].Run(ctx)
		}(i)
	}
	wg.Wait()
	require.NoError(t, ctx.Err())

	for i, b := range bots {
		assert.NoError(t, errs[i], names[i])
		assert.Equal(t, BotState__LEFT, b.State())
		assert.NotEmpty(t, b.BotID())
	}
	// the first bot to decline ends the last round for everyone
	assert.Equal(t, 2, bots[0].RoundsPlayed())
	assert.Equal(t, 2, srv.Summary().Rounds)
}

func TestDriverBot(t *testing.T) {
	ns := natsserver.RunRandClientPortServer()
	defer ns.Shutdown()
	nc, err := nats.Connect(ns.ClientURL(), "driverbot-test")
	require.NoError(t, err)
	defer nc.Close()

	cfg := server.DefaultConfig()
	cfg.Table = "bots"
	srv := server.NewServer(cfg)
	l, err := nats.NewDriverListener(nc, srv)
	require.NoError(t, err)
	defer l.Close()
	require.NoError(t, nc.Flush())

	driver := NewDriverBot(nc, "bots")
	require.NoError(t, driver.SetupDeck(0, []card31.Cards{{1, 2}, {3, 4}, {5, 6}}))
	assert.Error(t, driver.SetupDeck(0, []card31.Cards{{1, 2}, {1, 4}}))

	sum, err := driver.TableStatus()
	require.NoError(t, err)
	assert.Equal(t, "bots", sum.Table)
}
