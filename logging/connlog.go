package logging

import (
	"github.com/rs/zerolog"
)

// Direction marks which way a connection event travelled.
type Direction string

const (
	Inbound   Direction = "<<<"
	Outbound  Direction = ">>>"
	Connected Direction = "<->"
	Closed    Direction = "-x-"
)

// ConnEvent logs one line of connection traffic in the form
// "<marker> <peer> <what>".
func ConnEvent(logger *zerolog.Logger, dir Direction, peer string, what string) {
	var ev *zerolog.Event
	switch dir {
	case Connected, Closed:
		ev = logger.Info()
	default:
		ev = logger.Debug()
	}
	ev.Str(RemoteAddrKey, peer).Msgf("%s %s %s", dir, peer, what)
}
