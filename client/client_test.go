package client

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XCI9/CardGame/card31"
	"github.com/XCI9/CardGame/game"
	"github.com/XCI9/CardGame/server"
)

type fixture struct {
	t   *testing.T
	ctx context.Context
	srv *server.Server
}

func newFixture(t *testing.T, dealer int, hands ...card31.Cards) *fixture {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	cfg := server.DefaultConfig()
	cfg.Players = len(hands)
	srv := server.NewServer(cfg)
	srv.SetDealer(card31.NewScriptedDealer(dealer, hands))
	return &fixture{t: t, ctx: ctx, srv: srv}
}

func (f *fixture) connect(name string) *GameCoreClient {
	f.t.Helper()
	clientSide, serverSide := net.Pipe()
	go f.srv.ServeConn(f.ctx, serverSide)
	c, err := NewClient(f.ctx, clientSide, name)
	require.NoError(f.t, err)
	f.t.Cleanup(c.Leave)
	return c
}

// waitFor skips events until one of kind arrives.
func waitFor(t *testing.T, c *GameCoreClient, kind EventKind) Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-c.Events():
			require.True(t, ok, "%s: event stream ended while waiting for %s", c.Name(), kind)
			if ev.Kind == kind {
				return ev
			}
		case <-timeout:
			t.Fatalf("%s: timed out waiting for %s", c.Name(), kind)
		}
	}
}

// playable selects cards and returns the first playable way to play them.
func playable(t *testing.T, c *GameCoreClient, cards ...int) card31.Hand {
	t.Helper()
	hints, err := c.SelectCards(card31.NewCards(cards...))
	require.NoError(t, err)
	for _, h := range hints {
		if h.Playable {
			return h.Hand
		}
	}
	t.Fatalf("%v is not playable: %+v", cards, hints)
	return card31.Hand{}
}

func startPair(t *testing.T, hands ...card31.Cards) (*GameCoreClient, *GameCoreClient) {
	f := newFixture(t, 0, hands...)
	alice := f.connect("alice")
	ev := waitFor(t, alice, EventRoster)
	assert.Equal(t, []string{"alice"}, ev.Names)
	assert.Equal(t, 2, ev.FullCount)

	bob := f.connect("bob")
	waitFor(t, alice, EventSync)
	waitFor(t, bob, EventSync)
	require.Equal(t, 0, alice.Seat())
	require.Equal(t, 1, bob.Seat())
	return alice, bob
}

func TestClientRound(t *testing.T) {
	alice, bob := startPair(t, card31.NewCards(1, 5), card31.NewCards(3, 7))

	names, full := bob.Roster()
	assert.Equal(t, []string{"alice", "bob"}, names)
	assert.Equal(t, 2, full)
	assert.True(t, alice.IsMyTurn())
	assert.False(t, bob.IsMyTurn())

	// bob is refused locally and nothing reaches the server
	_, err := bob.SelectCards(card31.NewCards(3))
	require.NoError(t, err)
	assert.IsType(t, game.NotYourTurnError{}, bob.PlayHand(card31.Evaluate(card31.NewCards(3))[0]))

	// a led 5 would be refused too; the first play needs the 1
	hints, err := alice.SelectCards(card31.NewCards(5))
	require.NoError(t, err)
	require.Len(t, hints, 1)
	assert.False(t, hints[0].Playable)
	assert.Equal(t, game.ReasonFirstPlayNeedsOne, hints[0].Reason)

	one := playable(t, alice, 1)
	require.NoError(t, alice.PlayHand(one))
	ev := waitFor(t, bob, EventPlayed)
	assert.Equal(t, 0, ev.Seat)

	aliceView, _ := alice.Table()
	bobView, _ := bob.Table()
	if diff := cmp.Diff(aliceView.Previous, bobView.Previous, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("mirrors disagree on the previous hand (-alice +bob):\n%s", diff)
	}
	assert.Equal(t, 1, bobView.Token)
	assert.Equal(t, card31.Cards{0}, bobView.Players[0].Hand)

	require.NoError(t, bob.PlayHand(playable(t, bob, 7)))
	waitFor(t, alice, EventPlayed)

	require.NoError(t, alice.PassTurn())
	ev = waitFor(t, bob, EventPlayed)
	assert.True(t, ev.Hand.IsNone())
	bobView, _ = bob.Table()
	assert.True(t, bobView.Previous.IsNone())
	assert.True(t, bobView.Players[1].FreePlay)

	require.NoError(t, bob.PlayHand(playable(t, bob, 3)))
	assert.Equal(t, "alice", waitFor(t, alice, EventGameOver).Winner)
	assert.Equal(t, "alice", waitFor(t, bob, EventGameOver).Winner)

	for _, c := range []*GameCoreClient{alice, bob} {
		view, ok := c.Table()
		require.True(t, ok)
		assert.Equal(t, game.RoundOver, view.State)
		assert.Equal(t, 0, view.Winner)
	}
}

func TestClientEraseSkip(t *testing.T) {
	alice, bob := startPair(t, card31.NewCards(1, 5, 11), card31.NewCards(3, 7))

	double := card31.Hand{}
	hints, err := alice.SelectCards(card31.NewCards(1, 11))
	require.NoError(t, err)
	for _, h := range hints {
		if h.Playable && h.Hand.Rank == card31.Double {
			double = h.Hand
		}
	}
	require.True(t, double.Eraseable)
	require.NoError(t, alice.PlayHand(double))
	assert.True(t, alice.IsErasePending())
	assert.True(t, alice.IsMyTurn())

	waitFor(t, bob, EventPlayed)
	require.NoError(t, alice.PassTurn())
	ev := waitFor(t, bob, EventErased)
	assert.Equal(t, card31.Hidden, ev.Card)
	assert.True(t, bob.IsMyTurn())

	view, _ := bob.Table()
	assert.Len(t, view.Players[0].Hand, 1)
	assert.Equal(t, -1, view.ErasePending)
}

func TestClientDisconnect(t *testing.T) {
	alice, bob := startPair(t, card31.NewCards(1, 5), card31.NewCards(3, 7))

	bob.Leave()
	ev := waitFor(t, bob, EventDisconnected)
	assert.NoError(t, ev.Err)
	_, open := <-bob.Events()
	assert.False(t, open)

	assert.Equal(t, "alice", waitFor(t, alice, EventGameOver).Winner)
	ev = waitFor(t, alice, EventRoster)
	assert.Equal(t, []string{"alice"}, ev.Names)

	require.NoError(t, alice.PlayAgain(false))
	waitFor(t, alice, EventDisconnected)
}

func TestClientRejectedName(t *testing.T) {
	f := newFixture(t, 0, card31.NewCards(1), card31.NewCards(2), card31.NewCards(3))
	alice := f.connect("alice")
	waitFor(t, alice, EventRoster)

	imposter := f.connect("alice")
	ev := waitFor(t, imposter, EventRejected)
	assert.Contains(t, ev.Reason, "alice")
	waitFor(t, imposter, EventDisconnected)

	_, err := imposter.SelectCards(card31.NewCards(1))
	assert.IsType(t, NoTableError{}, err)
}
