package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/XCI9/CardGame/logging"
	"github.com/XCI9/CardGame/nats"
	"github.com/XCI9/CardGame/rest"
	"github.com/XCI9/CardGame/server"
	"github.com/XCI9/CardGame/test"
	"github.com/XCI9/CardGame/util"
)

var configFile *string
var listenAddr *string
var restAddr *string
var numPlayers *int
var runGameScriptTests *bool
var gameScriptsFileOrDir *string
var testName *string
var mainLogger = logging.GetZeroLogger("main::main", nil)

func init() {
	configFile = flag.String("config", "", "YAML server config file")
	listenAddr = flag.String("listen", "", "address players connect to")
	restAddr = flag.String("rest", "", "address of the control plane, empty keeps the config value")
	numPlayers = flag.Int("players", 0, "table size, 2 or 3")
	runGameScriptTests = flag.Bool("script-tests", false, "runs script tests")
	gameScriptsFileOrDir = flag.String("game-script", "test/game-scripts", "runs tests with game script files")
	testName = flag.String("testname", "", "runs a specific test")
}

func main() {
	err := run()
	if err != nil {
		mainLogger.Error().Msg(err.Error())
		os.Exit(1)
	}
}

func run() error {
	logLevel := util.Env.GetZeroLogLogLevel()
	fmt.Printf("Setting log level to %s\n", logLevel)
	zerolog.SetGlobalLevel(logLevel)
	flag.Parse()

	if *runGameScriptTests {
		return test.RunGameScriptTests(*gameScriptsFileOrDir, *testName)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(cfg)
	if cfg.NatsURL != "" {
		nc, err := nats.Connect(cfg.NatsURL, fmt.Sprintf("card31-%s", cfg.Table))
		if err != nil {
			return err
		}
		defer nc.Close()
		feed := nats.NewTableFeed(nc, cfg.Table)
		srv.AddSink(feed)
		listener, err := nats.NewDriverListener(nc, srv)
		if err != nil {
			return errors.Wrap(err, "Error when creating driver listener")
		}
		defer listener.Close()
		mainLogger.Info().Msgf("Publishing table events on %s", feed.Subject())
	}

	if cfg.RestAddr != "" {
		go func() {
			if err := rest.RunRestServer(ctx, srv, cfg.RestAddr); err != nil {
				mainLogger.Error().Msgf("Rest server stopped: %s", err)
			}
		}()
	}

	mainLogger.Info().Msgf("Table [%s] waiting for %d players on %s", cfg.Table, cfg.Players, cfg.ListenAddr)
	return srv.ListenAndServe(ctx)
}

// loadConfig layers the config file, the environment and the command line,
// later ones winning.
func loadConfig() (server.Config, error) {
	cfg := server.DefaultConfig()
	file := *configFile
	if file == "" {
		file = util.Env.GetConfigFile()
	}
	if file != "" {
		var err error
		cfg, err = server.ParseConfig(file)
		if err != nil {
			return cfg, err
		}
	}

	if v := util.Env.GetNatsURL(); v != "" {
		cfg.NatsURL = v
	}
	if v := util.Env.GetListenAddr(); v != "" {
		cfg.ListenAddr = v
	}
	if v := util.Env.GetRestAddr(); v != "" {
		cfg.RestAddr = v
	}
	if n := util.Env.GetNumPlayers(); n != 0 {
		cfg.Players = n
	}

	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *restAddr != "" {
		cfg.RestAddr = *restAddr
	}
	if *numPlayers != 0 {
		cfg.Players = *numPlayers
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(err, "Invalid server config")
	}
	return cfg, nil
}
