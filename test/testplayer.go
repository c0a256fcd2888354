package test

import (
	"fmt"
	"time"

	"github.com/XCI9/CardGame/client"
	"github.com/XCI9/CardGame/game"
	"github.com/XCI9/CardGame/gamescript"
)

const eventTimeout = 3 * time.Second

// TestPlayer drives one seat through a real client and follows the
// events the server sends it.
type TestPlayer struct {
	name   string
	client *client.GameCoreClient
}

func NewTestPlayer(name string, c *client.GameCoreClient) *TestPlayer {
	return &TestPlayer{name: name, client: c}
}

// waitFor consumes events until one of kind from seat arrives. A seat of
// -1 matches any seat.
func (p *TestPlayer) waitFor(kind client.EventKind, seat int) (client.Event, error) {
	timer := time.NewTimer(eventTimeout)
	defer timer.Stop()
	for {
		select {
		case ev, ok := <-p.client.Events():
			if !ok {
				return client.Event{}, fmt.Errorf("Player [%s] lost the connection waiting for %s", p.name, kind)
			}
			if ev.Kind == kind && (seat < 0 || ev.Seat == seat) {
				return ev, nil
			}
			switch ev.Kind {
			case client.EventRejected:
				return ev, fmt.Errorf("Player [%s] was rejected: %s", p.name, ev.Reason)
			case client.EventDisconnected:
				return ev, fmt.Errorf("Player [%s] was disconnected waiting for %s", p.name, kind)
			}
		case <-timer.C:
			return client.Event{}, fmt.Errorf("Player [%s] timed out waiting for %s", p.name, kind)
		}
	}
}

// act performs a script action through the client's local checks.
func (p *TestPlayer) act(a gamescript.Action) error {
	switch a.Type {
	case gamescript.ActionPass:
		return p.client.PassTurn()
	case gamescript.ActionErase:
		return p.client.PlayErase(a.Erase())
	case gamescript.ActionPlay:
		hand, err := a.Hand()
		if err != nil {
			return err
		}
		return p.client.PlayHand(hand)
	}
	return fmt.Errorf("Unknown action [%s]", a.Type)
}

func (p *TestPlayer) table() (game.TableSnapshot, error) {
	snap, ok := p.client.Table()
	if !ok {
		return game.TableSnapshot{}, client.NoTableError{}
	}
	return snap, nil
}
