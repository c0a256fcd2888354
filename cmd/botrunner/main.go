package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/XCI9/CardGame/bot"
	"github.com/XCI9/CardGame/card31"
	"github.com/XCI9/CardGame/client"
	"github.com/XCI9/CardGame/gamescript"
	"github.com/XCI9/CardGame/nats"
	"github.com/XCI9/CardGame/util"
)

var (
	cmdArgs    arg
	mainLogger = log.With().Str("logger_name", "main::main").Logger()
)

type arg struct {
	serverAddr string
	names      string
	delaysFile string
	scriptFile string
	table      string
	rounds     int
}

func init() {
	flag.StringVar(&cmdArgs.serverAddr, "server", "localhost:31000", "Game server address")
	flag.StringVar(&cmdArgs.names, "names", "yong,brian,tom", "Comma-separated bot names, one bot per name")
	flag.StringVar(&cmdArgs.delaysFile, "delays", "", "YAML file containing bot pause times")
	flag.StringVar(&cmdArgs.scriptFile, "script", "", "Game script whose first deal is set up over NATS before the bots join")
	flag.StringVar(&cmdArgs.table, "table", "main", "Table name used for the NATS driver subject")
	flag.IntVar(&cmdArgs.rounds, "rounds", 1, "Rounds each bot plays. 0 plays until the server goes away.")
	flag.Parse()
}

func main() {
	os.Exit(botrunner())
}

func botrunner() int {
	names := strings.Split(cmdArgs.names, ",")
	var delays bot.Delays
	if cmdArgs.delaysFile != "" && !util.Env.ShouldDisableDelays() {
		var err error
		delays, err = bot.ParseDelayConfig(cmdArgs.delaysFile)
		if err != nil {
			mainLogger.Error().Msgf("Error while parsing delays file: %+v", err)
			return 1
		}
	}

	var driver *bot.DriverBot
	if cmdArgs.scriptFile != "" {
		script, err := gamescript.ReadGameScript(cmdArgs.scriptFile)
		if err != nil {
			mainLogger.Error().Msgf("Error while parsing script file: %+v", err)
			return 1
		}
		natsURL := util.Env.GetNatsURL()
		if natsURL == "" {
			mainLogger.Error().Msg("A script needs NATS_URL to reach the table.")
			return 1
		}
		nc, err := nats.Connect(natsURL, "card31-botrunner")
		if err != nil {
			mainLogger.Error().Msgf("%+v", err)
			return 1
		}
		defer nc.Close()

		driver = bot.NewDriverBot(nc, cmdArgs.table)
		deal := script.Rounds[0].Deal
		hands := make([]card31.Cards, len(deal.Hands))
		for i, h := range deal.Hands {
			hands[i] = h.Cards()
		}
		if err := driver.SetupDeck(deal.Dealer, hands); err != nil {
			mainLogger.Error().Msgf("Cannot set up the deck: %s", err)
			return 1
		}
		names = script.Players
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bots := make([]*bot.PlayerBot, 0, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		names[i] = name
		c, err := client.Dial(ctx, cmdArgs.serverAddr, name)
		if err != nil {
			mainLogger.Error().Msgf("Bot [%s] cannot connect: %s", name, err)
			return 1
		}
		bots = append(bots, bot.NewPlayerBot(c, bot.Config{Name: name, Delays: delays, Rounds: cmdArgs.rounds}))
		// join in order so that seats follow the names
		time.Sleep(100 * time.Millisecond)
	}

	failed := false
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := range bots {
		wg.Add(1)
		go func(b *bot.PlayerBot, name string) {
			defer wg.Done()
			if err := b.Run(ctx); err != nil {
				mainLogger.Error().Msgf("Bot [%s] stopped: %s", name, err)
				mu.Lock()
				failed = true
				mu.Unlock()
				return
			}
			mainLogger.Info().Msgf("Bot [%s] played %d round(s)", name, b.RoundsPlayed())
		}(bots[i], names[i])
	}
	wg.Wait()

	if driver != nil {
		sum, err := driver.TableStatus()
		if err != nil {
			mainLogger.Error().Msgf("Cannot read the table: %s", err)
			return 1
		}
		mainLogger.Info().Msgf("Table [%s] played %d round(s), last winner %s", sum.Table, sum.Rounds, sum.Winner)
	}
	if failed {
		return 1
	}
	return 0
}
