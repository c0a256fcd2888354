package protocol

import (
	"fmt"

	"github.com/XCI9/CardGame/card31"
	"github.com/XCI9/CardGame/game"
)

// Kind tags the variant carried by a frame.
type Kind int32

const (
	KindUnknown Kind = iota
	KindPlayHand
	KindPlayErase
	KindSyncGame
	KindGameOver
	KindGetPlayer
	KindSendName
	KindAgainChk
	KindRejected
)

var kindNames = map[Kind]string{
	KindUnknown:   "Unknown",
	KindPlayHand:  "PlayHand",
	KindPlayErase: "PlayErase",
	KindSyncGame:  "SyncGame",
	KindGameOver:  "GameOver",
	KindGetPlayer: "GetPlayer",
	KindSendName:  "SendName",
	KindAgainChk:  "AgainChk",
	KindRejected:  "Rejected",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int32(k))
}

// UnsetPlayer is the player id clients put on their own actions. The server
// fills in the sender's seat before broadcasting.
const UnsetPlayer = -1

// Message is one of the variants below.
type Message interface {
	Kind() Kind
	isMessage()
}

// PlayHand plays a hand. An empty hand (card31.NoHand) is a pass.
type PlayHand struct {
	PlayerID int
	Hand     card31.Hand
}

// PlayErase finishes an erase. card31.Hidden skips the erase.
type PlayErase struct {
	PlayerID int
	Card     card31.Card
}

// SyncGame carries the full table as RecipientID may see it.
type SyncGame struct {
	Table       game.TableSnapshot
	RecipientID int
}

type GameOver struct {
	WinnerName string
}

// GetPlayer lists the seated players and the table size the server waits
// for.
type GetPlayer struct {
	Names     []string
	FullCount int
}

type SendName struct {
	Name string
}

// AgainChk answers the play-again question. Declining leaves the table.
type AgainChk struct {
	Agree bool
}

// Rejected tells a client why the server is about to close the connection.
type Rejected struct {
	Reason string
}

func (*PlayHand) Kind() Kind  { return KindPlayHand }
func (*PlayErase) Kind() Kind { return KindPlayErase }
func (*SyncGame) Kind() Kind  { return KindSyncGame }
func (*GameOver) Kind() Kind  { return KindGameOver }
func (*GetPlayer) Kind() Kind { return KindGetPlayer }
func (*SendName) Kind() Kind  { return KindSendName }
func (*AgainChk) Kind() Kind  { return KindAgainChk }
func (*Rejected) Kind() Kind  { return KindRejected }

func (*PlayHand) isMessage()  {}
func (*PlayErase) isMessage() {}
func (*SyncGame) isMessage()  {}
func (*GameOver) isMessage()  {}
func (*GetPlayer) isMessage() {}
func (*SendName) isMessage()  {}
func (*AgainChk) isMessage()  {}
func (*Rejected) isMessage()  {}

func NewPass(playerID int) *PlayHand {
	return &PlayHand{PlayerID: playerID, Hand: card31.NoHand()}
}

func (m *PlayHand) IsPass() bool {
	return m.Hand.IsNone()
}

func (m *PlayErase) IsSkip() bool {
	return m.Card == card31.Hidden
}
