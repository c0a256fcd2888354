package logging

import (
	"bytes"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestConnEventMarkers(t *testing.T) {
	os.Setenv("COLORIZE_LOG", "false")
	defer os.Unsetenv("COLORIZE_LOG")

	var buf bytes.Buffer
	logger := GetZeroLogger("logging::test", &buf).Level(zerolog.DebugLevel)

	ConnEvent(&logger, Connected, "127.0.0.1:5000", "joined")
	ConnEvent(&logger, Inbound, "127.0.0.1:5000", "PlayHand")
	ConnEvent(&logger, Closed, "127.0.0.1:5000", "left")

	out := buf.String()
	assert.Contains(t, out, "<-> 127.0.0.1:5000 joined")
	assert.Contains(t, out, "<<< 127.0.0.1:5000 PlayHand")
	assert.Contains(t, out, "-x- 127.0.0.1:5000 left")
	assert.Contains(t, out, "logging::test")
}

func TestColorLoggingSwitch(t *testing.T) {
	os.Setenv("COLORIZE_LOG", "0")
	assert.False(t, IsColorLoggingEnabled())
	os.Setenv("COLORIZE_LOG", "TRUE")
	assert.True(t, IsColorLoggingEnabled())
	os.Unsetenv("COLORIZE_LOG")
	assert.True(t, IsColorLoggingEnabled())
}
