package test

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/XCI9/CardGame/card31"
	"github.com/XCI9/CardGame/client"
	"github.com/XCI9/CardGame/game"
	"github.com/XCI9/CardGame/gamescript"
	"github.com/XCI9/CardGame/server"
)

var testGameLogger = log.With().Str("logger_name", "test::testgame").Logger()

// AnyError in expect-error accepts every refusal.
const AnyError = "any"

// TestGame plays a script at a fresh table, one client per seat.
type TestGame struct {
	script  *gamescript.Script
	name    string
	result  *ScriptTestResult
	server  *server.Server
	players []*TestPlayer
}

func NewTestGame(script *gamescript.Script, filename string, result *ScriptTestResult) *TestGame {
	cfg := server.DefaultConfig()
	cfg.Players = len(script.Players)
	cfg.Table = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	cfg.MessagesPerSecond = 1000
	cfg.MessageBurst = 100
	return &TestGame{
		script: script,
		name:   cfg.Table,
		result: result,
		server: server.NewServer(cfg),
	}
}

func (g *TestGame) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g.server.SetDealer(g.script.Rounds[0].Deal.ScriptedDealer())
	if err := g.seatPlayers(ctx); err != nil {
		return err
	}
	defer func() {
		for _, p := range g.players {
			p.client.Leave()
		}
	}()

	for i, round := range g.script.Rounds {
		roundNum := i + 1
		if i > 0 {
			g.server.SetDealer(round.Deal.ScriptedDealer())
			for _, p := range g.players {
				if err := p.client.PlayAgain(true); err != nil {
					return errors.Wrapf(err, "Round %d", roundNum)
				}
			}
		}
		for _, p := range g.players {
			if _, err := p.waitFor(client.EventSync, -1); err != nil {
				return errors.Wrapf(err, "Round %d did not start", roundNum)
			}
		}
		testGameLogger.Info().Msgf("Table [%s] round %d started", g.name, roundNum)
		if err := g.playRound(roundNum, round); err != nil {
			return errors.Wrapf(err, "Round %d", roundNum)
		}
	}
	return nil
}

// seatPlayers connects the players one at a time so that seats follow the
// script's order.
func (g *TestGame) seatPlayers(ctx context.Context) error {
	for i, name := range g.script.Players {
		clientSide, serverSide := net.Pipe()
		go g.server.ServeConn(ctx, serverSide)
		c, err := client.NewClient(ctx, clientSide, name)
		if err != nil {
			return errors.Wrapf(err, "Cannot connect player [%s]", name)
		}
		g.players = append(g.players, NewTestPlayer(name, c))

		deadline := time.Now().Add(eventTimeout)
		for len(g.server.Summary().Seats) < i+1 {
			if time.Now().After(deadline) {
				return fmt.Errorf("Player [%s] was not seated", name)
			}
			time.Sleep(5 * time.Millisecond)
		}
	}
	return nil
}

func (g *TestGame) playRound(roundNum int, round gamescript.Round) error {
	for i, step := range round.Steps {
		stepNum := i + 1
		a := step.Action
		p := g.players[a.Seat]
		err := p.act(a)

		if step.ExpectError != "" {
			if err == nil {
				// the table has moved on, the rest of the round is meaningless
				return fmt.Errorf("Step %d [%s]: expected error [%s] but the action was accepted", stepNum, a, step.ExpectError)
			}
			if step.ExpectError != AnyError && !strings.Contains(err.Error(), step.ExpectError) {
				g.result.addError(fmt.Errorf("Round %d step %d [%s]: expected error [%s], got [%s]",
					roundNum, stepNum, a, step.ExpectError, err.Error()))
			}
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "Step %d [%s] failed", stepNum, a)
		}

		kind := client.EventPlayed
		if a.Type == gamescript.ActionErase {
			kind = client.EventErased
		}
		for seat, other := range g.players {
			if seat == a.Seat {
				continue
			}
			if _, err := other.waitFor(kind, a.Seat); err != nil {
				return errors.Wrapf(err, "Step %d [%s]", stepNum, a)
			}
		}

		if err := g.checkMirrors(); err != nil {
			g.result.addError(fmt.Errorf("Round %d step %d [%s]: %s", roundNum, stepNum, a, err))
		}
		if step.Verify != nil {
			for _, e := range g.verify(p, step.Verify) {
				g.result.addError(fmt.Errorf("Round %d step %d [%s]: %s", roundNum, stepNum, a, e))
			}
		}
	}

	return g.verifyResult(roundNum, round.Result)
}

// checkMirrors compares every client's mirror with the server's table.
func (g *TestGame) checkMirrors() error {
	sum := g.server.Summary()
	for seat, p := range g.players {
		snap, err := p.table()
		if err != nil {
			return err
		}
		if snap.State.String() != sum.State {
			return fmt.Errorf("Seat %d sees state %s, server has %s", seat, snap.State, sum.State)
		}
		if snap.Token != turnSeat(sum) && sum.State == game.Playing.String() {
			return fmt.Errorf("Seat %d sees seat %d to act, server has seat %d", seat, snap.Token, turnSeat(sum))
		}
		if diff := cmp.Diff(sum.Played, snap.Played.Ints()); diff != "" {
			return fmt.Errorf("Seat %d played pile differs from the server: %s", seat, diff)
		}
		if snap.Rules != sum.Rules {
			return fmt.Errorf("Seat %d sees rules %+v, server has %+v", seat, snap.Rules, sum.Rules)
		}
	}
	return nil
}

func turnSeat(sum server.Summary) int {
	for _, s := range sum.Seats {
		if s.Turn {
			return s.Seat
		}
	}
	return -1
}

func (g *TestGame) verify(actor *TestPlayer, v *gamescript.Verify) []error {
	var errs []error
	sum := g.server.Summary()

	if v.Turn != nil && turnSeat(sum) != *v.Turn {
		errs = append(errs, fmt.Errorf("Expected seat %d to act, got seat %d", *v.Turn, turnSeat(sum)))
	}
	if v.Previous != nil {
		expected := v.Previous.Cards().Ints()
		if !cmp.Equal(expected, sum.Previous, cmpopts.EquateEmpty()) {
			errs = append(errs, fmt.Errorf("Expected previous hand %v, got %v", expected, sum.Previous))
		}
	}
	if v.PreviousRank != nil {
		rank := sum.Rank
		if rank == "" {
			rank = card31.None.String()
		}
		if rank != strings.ToLower(*v.PreviousRank) {
			errs = append(errs, fmt.Errorf("Expected previous rank %s, got %s", *v.PreviousRank, rank))
		}
	}
	if v.Rules != nil {
		check := func(name string, expected *bool, actual bool) {
			if expected != nil && *expected != actual {
				errs = append(errs, fmt.Errorf("Expected %s to be %v", name, *expected))
			}
		}
		check("allow9", v.Rules.Allow9, sum.Rules.Allow9)
		check("allow19", v.Rules.Allow19, sum.Rules.Allow19)
		check("allow29", v.Rules.Allow29, sum.Rules.Allow29)
	}
	if v.CardCounts != nil {
		counts := make([]int, len(sum.Seats))
		for i, s := range sum.Seats {
			counts[i] = s.Cards
		}
		if diff := cmp.Diff(v.CardCounts, counts); diff != "" {
			errs = append(errs, fmt.Errorf("Card counts differ: %s", diff))
		}
	}
	if v.ErasePending != nil {
		snap, err := actor.table()
		if err != nil {
			errs = append(errs, err)
		} else if snap.ErasePending != *v.ErasePending {
			errs = append(errs, fmt.Errorf("Expected erase pending on seat %d, got %d", *v.ErasePending, snap.ErasePending))
		}
	}
	return errs
}

func (g *TestGame) verifyResult(roundNum int, result gamescript.RoundResult) error {
	for _, p := range g.players {
		ev, err := p.waitFor(client.EventGameOver, -1)
		if err != nil {
			return err
		}
		if result.Winner != "" && ev.Winner != result.Winner {
			g.result.addError(fmt.Errorf("Round %d: player [%s] was told the winner is [%s], expected [%s]",
				roundNum, p.name, ev.Winner, result.Winner))
		}
	}
	if result.FinishOrder != nil {
		snap, err := g.players[0].table()
		if err != nil {
			return err
		}
		if diff := cmp.Diff(result.FinishOrder, snap.FinishOrder); diff != "" {
			g.result.addError(fmt.Errorf("Round %d: finish order differs: %s", roundNum, diff))
		}
	}
	sum := g.server.Summary()
	if sum.State != game.RoundOver.String() {
		return fmt.Errorf("Round %d: table is %s after the last step", roundNum, sum.State)
	}
	testGameLogger.Info().Msgf("Table [%s] round %d won by %s", g.name, roundNum, sum.Winner)
	return nil
}
