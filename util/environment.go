package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var environmentLogger = log.With().Str("logger_name", "util::environment").Logger()

type environment struct {
	LogLevel      string
	NatsURL       string
	ConfigFile    string
	ListenAddr    string
	RestAddr      string
	NumPlayers    string
	DisableDelays string
}

// Env is a helper object for accessing environment variables.
var Env = &environment{
	LogLevel:      "LOG_LEVEL",
	NatsURL:       "NATS_URL",
	ConfigFile:    "CARD31_CONFIG",
	ListenAddr:    "CARD31_LISTEN",
	RestAddr:      "CARD31_REST",
	NumPlayers:    "CARD31_PLAYERS",
	DisableDelays: "DISABLE_DELAYS",
}

// GetNatsURL returns the NATS server to publish table events to.
// Empty means the event feed is disabled.
func (e *environment) GetNatsURL() string {
	return os.Getenv(e.NatsURL)
}

func (e *environment) GetConfigFile() string {
	return os.Getenv(e.ConfigFile)
}

func (e *environment) GetListenAddr() string {
	return os.Getenv(e.ListenAddr)
}

func (e *environment) GetRestAddr() string {
	return os.Getenv(e.RestAddr)
}

// GetNumPlayers returns the configured table size, or 0 when the variable
// is not set.
func (e *environment) GetNumPlayers() int {
	v := os.Getenv(e.NumPlayers)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("Invalid %s: %s", e.NumPlayers, v))
	}
	return n
}

func (e *environment) GetDisableDelays() string {
	return os.Getenv(e.DisableDelays)
}

func (e *environment) ShouldDisableDelays() bool {
	return e.GetDisableDelays() == "1" || strings.ToLower(e.GetDisableDelays()) == "true"
}

func (e *environment) GetLogLevel() string {
	v := os.Getenv(e.LogLevel)
	if v == "" {
		defaultVal := "info"
		environmentLogger.Warn().Msgf("%s is not defined. Using default %s", e.LogLevel, defaultVal)
		return defaultVal
	}
	return v
}

func (e *environment) GetZeroLogLogLevel() zerolog.Level {
	l := e.GetLogLevel()
	switch strings.ToLower(l) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		fallthrough
	case "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		panic(fmt.Sprintf("Unsupported %s: %s", e.LogLevel, l))
	}
}
