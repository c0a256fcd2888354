package util

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestZeroLogLevel(t *testing.T) {
	testCases := []struct {
		value    string
		expected zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"WARNING", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
	}
	defer os.Unsetenv(Env.LogLevel)
	for _, tc := range testCases {
		os.Setenv(Env.LogLevel, tc.value)
		assert.Equal(t, tc.expected, Env.GetZeroLogLogLevel(), "LOG_LEVEL=%q", tc.value)
	}

	os.Setenv(Env.LogLevel, "loud")
	assert.Panics(t, func() { Env.GetZeroLogLogLevel() })
}

func TestNumPlayers(t *testing.T) {
	defer os.Unsetenv(Env.NumPlayers)
	os.Unsetenv(Env.NumPlayers)
	assert.Equal(t, 0, Env.GetNumPlayers())
	os.Setenv(Env.NumPlayers, "2")
	assert.Equal(t, 2, Env.GetNumPlayers())
}
