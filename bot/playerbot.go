package bot

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	caches "github.com/XCI9/CardGame/caching"
	"github.com/XCI9/CardGame/card31"
	"github.com/XCI9/CardGame/client"
	"github.com/XCI9/CardGame/logging"
	"github.com/XCI9/CardGame/util/random"
)

var botPlayerLogger = log.With().Str("logger_name", "bot::player").Logger()

const (
	BotState__LOBBY               = "lobby"
	BotState__WAITING_FOR_MY_TURN = "waiting-for-my-turn"
	BotState__MY_TURN             = "my-turn"
	BotState__ROUND_OVER          = "round-over"
	BotState__LEFT                = "left"
)

const (
	BotEvent__DEAL                = "deal"
	BotEvent__RECEIVE_YOUR_ACTION = "receive-your-action"
	BotEvent__SEND_MY_ACTION      = "send-my-action"
	BotEvent__ROUND_OVER          = "round-over"
	BotEvent__LEAVE               = "leave"
)

type Config struct {
	Name   string
	Delays Delays
	// Rounds is how many rounds the bot plays before declining to play
	// again. Zero means forever.
	Rounds int
}

// RejectedError is returned by Run when the server refused the bot.
type RejectedError struct {
	Name   string
	Reason string
}

func (e RejectedError) Error() string {
	return fmt.Sprintf("Bot [%s] was rejected: %s", e.Name, e.Reason)
}

// PlayerBot plays one seat through a client.
type PlayerBot struct {
	botID  string
	config Config
	client *client.GameCoreClient
	cache  *caches.HandCache
	logger zerolog.Logger
	rand   *rand.Rand
	sm     *fsm.FSM

	roundsPlayed int
}

func NewPlayerBot(c *client.GameCoreClient, config Config) *PlayerBot {
	botID := uuid.New().String()
	b := &PlayerBot{
		botID:  botID,
		config: config,
		client: c,
		cache:  caches.Default(),
		logger: botPlayerLogger.With().
			Str(logging.PlayerNameKey, config.Name).
			Str("botID", botID).
			Logger(),
		rand: rand.New(random.NewSource()),
	}

	b.sm = fsm.NewFSM(
		BotState__LOBBY,
		fsm.Events{
			{
				Name: BotEvent__DEAL,
				Src:  []string{BotState__LOBBY, BotState__ROUND_OVER, BotState__MY_TURN},
				Dst:  BotState__WAITING_FOR_MY_TURN,
			},
			{
				Name: BotEvent__RECEIVE_YOUR_ACTION,
				Src:  []string{BotState__WAITING_FOR_MY_TURN},
				Dst:  BotState__MY_TURN,
			},
			{
				Name: BotEvent__SEND_MY_ACTION,
				Src:  []string{BotState__MY_TURN},
				Dst:  BotState__WAITING_FOR_MY_TURN,
			},
			{
				Name: BotEvent__ROUND_OVER,
				Src:  []string{BotState__WAITING_FOR_MY_TURN, BotState__MY_TURN},
				Dst:  BotState__ROUND_OVER,
			},
			{
				Name: BotEvent__LEAVE,
				Src: []string{
					BotState__LOBBY,
					BotState__WAITING_FOR_MY_TURN,
					BotState__MY_TURN,
					BotState__ROUND_OVER,
				},
				Dst: BotState__LEFT,
			},
		},
		fsm.Callbacks{
			"enter_state": func(e *fsm.Event) { b.enterState(e) },
		},
	)
	return b
}

func (b *PlayerBot) BotID() string {
	return b.botID
}

func (b *PlayerBot) State() string {
	return b.sm.Current()
}

func (b *PlayerBot) RoundsPlayed() int {
	return b.roundsPlayed
}

func (b *PlayerBot) enterState(e *fsm.Event) {
	b.logger.Debug().Msgf("[%s] ===> [%s]", e.Src, e.Dst)
}

func (b *PlayerBot) event(event string) {
	if !b.sm.Can(event) {
		return
	}
	if err := b.sm.Event(event); err != nil {
		b.logger.Warn().Msgf("Error from state machine: %s", err.Error())
	}
}

// Run plays until the connection closes. A clean close after declining
// another round returns nil.
func (b *PlayerBot) Run(ctx context.Context) error {
	for ev := range b.client.Events() {
		switch ev.Kind {
		case client.EventSync:
			b.event(BotEvent__DEAL)
			b.maybeAct(ctx)
		case client.EventPlayed, client.EventErased:
			b.maybeAct(ctx)
		case client.EventGameOver:
			b.event(BotEvent__ROUND_OVER)
			b.roundsPlayed++
			b.logger.Info().Msgf("Round %d won by %s", b.roundsPlayed, ev.Winner)
			again := b.config.Rounds == 0 || b.roundsPlayed < b.config.Rounds
			if again && !b.pause(ctx, millis(b.config.Delays.PlayAgain)) {
				again = false
			}
			if err := b.client.PlayAgain(again); err != nil {
				b.logger.Warn().Err(err).Msg("Cannot answer play-again")
			}
		case client.EventRejected:
			b.event(BotEvent__LEAVE)
			b.client.Leave()
			return RejectedError{Name: b.config.Name, Reason: ev.Reason}
		case client.EventDisconnected:
			b.event(BotEvent__LEAVE)
			return ev.Err
		}
	}
	b.event(BotEvent__LEAVE)
	return nil
}

// maybeAct plays when the mirror says it is this seat's turn. The turn may
// stay with the bot after an eraseable hand, so it keeps going until the
// token moves on.
func (b *PlayerBot) maybeAct(ctx context.Context) {
	for b.client.IsMyTurn() {
		b.event(BotEvent__RECEIVE_YOUR_ACTION)
		if !b.pause(ctx, b.actionDelay()) {
			return
		}
		if err := b.act(); err != nil {
			b.logger.Warn().Err(err).Msg("Action refused by the local table")
			return
		}
		b.event(BotEvent__SEND_MY_ACTION)
	}
}

func (b *PlayerBot) act() error {
	snap, ok := b.client.Table()
	if !ok {
		return client.NoTableError{}
	}
	seat := b.client.Seat()
	d := Decide(snap, seat, b.cache)
	switch {
	case d.EraseTurn:
		b.logger.Debug().Int(logging.SeatNumKey, seat).Msgf("Erasing %s", d.Erase)
		if d.Erase == card31.Hidden {
			return b.client.PassTurn()
		}
		return b.client.PlayErase(d.Erase)
	case d.Pass:
		b.logger.Debug().Int(logging.SeatNumKey, seat).Msg("Passing")
		return b.client.PassTurn()
	default:
		b.logger.Debug().Int(logging.SeatNumKey, seat).Msgf("Playing %s", d.Hand)
		return b.client.PlayHand(d.Hand)
	}
}

func (b *PlayerBot) actionDelay() time.Duration {
	min, max := b.config.Delays.MinAction, b.config.Delays.MaxAction
	if max <= min {
		return millis(min)
	}
	return millis(min + uint32(b.rand.Int63n(int64(max-min))))
}

// pause returns false when ctx ended first.
func (b *PlayerBot) pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
