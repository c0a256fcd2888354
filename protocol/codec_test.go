package protocol

import (
	"bytes"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/XCI9/CardGame/card31"
	"github.com/XCI9/CardGame/game"
)

func sampleSnapshot(t *testing.T) game.TableSnapshot {
	t.Helper()
	table := game.NewTable()
	for _, name := range []string{"yong", "brian", "tom"} {
		_, err := table.Join(game.NewPlayer(name))
		require.NoError(t, err)
	}
	dealer := card31.NewScriptedDealer(0, []card31.Cards{
		card31.NewCards(1, 9, 22),
		card31.NewCards(5, 6),
		card31.NewCards(3, 30),
	})
	require.NoError(t, table.Start(dealer))
	one := card31.Evaluate(card31.NewCards(1))[0]
	require.NoError(t, game.NewCheckedAction(table, 0).PlayHand(one))
	return table.Snapshot(1)
}

func TestRoundTrip(t *testing.T) {
	triangle := card31.Evaluate(card31.NewCards(3, 4, 5))[0]
	messages := []Message{
		&PlayHand{PlayerID: 2, Hand: triangle},
		&PlayHand{PlayerID: UnsetPlayer, Hand: card31.Evaluate(card31.NewCards(22))[0]},
		NewPass(1),
		&PlayErase{PlayerID: 0, Card: 31},
		&PlayErase{PlayerID: UnsetPlayer, Card: card31.Hidden},
		&SyncGame{Table: sampleSnapshot(t), RecipientID: 1},
		&SyncGame{Table: game.NewTable().Snapshot(game.Spectator), RecipientID: game.Spectator},
		&GameOver{WinnerName: "brian"},
		&GetPlayer{Names: []string{"yong", "brian"}, FullCount: 3},
		&GetPlayer{FullCount: 2},
		&SendName{Name: "tom"},
		&AgainChk{Agree: true},
		&AgainChk{Agree: false},
		&Rejected{Reason: "name [tom] is taken"},
	}

	for _, m := range messages {
		data, err := Encode(m)
		require.NoError(t, err, "%s", m.Kind())
		decoded, err := Decode(data)
		require.NoError(t, err, "%s", m.Kind())
		if diff := cmp.Diff(m, decoded, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("%s round trip mismatch (-want +got):\n%s", m.Kind(), diff)
		}
	}
}

func TestPassAndSkip(t *testing.T) {
	data, err := Encode(NewPass(2))
	require.NoError(t, err)
	m, err := Decode(data)
	require.NoError(t, err)
	play, ok := m.(*PlayHand)
	require.True(t, ok)
	assert.True(t, play.IsPass())

	data, err = Encode(&PlayErase{PlayerID: 1})
	require.NoError(t, err)
	m, err = Decode(data)
	require.NoError(t, err)
	assert.True(t, m.(*PlayErase).IsSkip())
}

func TestDecodeErrors(t *testing.T) {
	unknownKind := protowire.AppendTag(nil, envKind, protowire.VarintType)
	unknownKind = protowire.AppendVarint(unknownKind, 99)

	badRank := appendVarint(nil, envKind, uint64(KindPlayHand))
	badRank = appendMessage(badRank, envBody, appendMessage(nil, 2, appendVarint(nil, 2, 42)))

	badCard := appendVarint(nil, envKind, uint64(KindSyncGame))
	badCard = appendMessage(badCard, envBody, appendMessage(nil, 1, appendMessage(nil, 2, []byte{40})))

	wrongType := appendString(nil, envKind, "PlayHand")

	// the kind must not wrap around into a known one
	kindOverflow := appendVarint(nil, envKind, 1<<32|uint64(KindPlayHand))
	kindOverflow = appendMessage(kindOverflow, envBody, appendSint(nil, 1, 0))

	badErase := appendVarint(nil, envKind, uint64(KindPlayErase))
	badErase = appendMessage(badErase, envBody, appendVarint(appendSint(nil, 1, 0), 2, 999))

	inputs := map[string][]byte{
		"empty":         {},
		"unknown kind":  unknownKind,
		"truncated":     {0x08},
		"bad rank":      badRank,
		"bad card":      badCard,
		"wrong type":    wrongType,
		"kind overflow": kindOverflow,
		"bad erase":     badErase,
	}
	for name, data := range inputs {
		_, err := Decode(data)
		assert.IsType(t, DecodeError{}, err, name)
		assert.True(t, IsMalformed(err), name)
	}
}

func TestEncodeRejectsForeignMessage(t *testing.T) {
	_, err := Encode(nil)
	assert.Error(t, err)
}

func TestFraming(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, &SendName{Name: "yong"}))
	require.NoError(t, WriteMessage(&buf, &AgainChk{Agree: true}))

	raw := buf.Bytes()
	size := int(raw[0])<<24 | int(raw[1])<<16 | int(raw[2])<<8 | int(raw[3])
	payload, err := Encode(&SendName{Name: "yong"})
	require.NoError(t, err)
	assert.Equal(t, len(payload), size)

	m, err := ReadMessage(&buf)
	require.NoError(t, err)
	assert.Equal(t, &SendName{Name: "yong"}, m)
	m, err = ReadMessage(&buf)
	require.NoError(t, err)
	assert.Equal(t, &AgainChk{Agree: true}, m)

	_, err = ReadMessage(&buf)
	assert.Equal(t, io.EOF, err)
}

func TestFrameErrors(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{0x7f, 0, 0, 0}))
	assert.IsType(t, FrameTooLargeError{}, err)
	assert.True(t, IsMalformed(err))

	_, err = ReadFrame(bytes.NewReader([]byte{0, 0, 0, 5, 1, 2}))
	assert.Equal(t, io.ErrUnexpectedEOF, err)
	assert.False(t, IsMalformed(err))

	_, err = ReadFrame(bytes.NewReader([]byte{0, 0}))
	assert.Equal(t, io.ErrUnexpectedEOF, err)

	err = WriteFrame(io.Discard, make([]byte, MaxFrameSize+1))
	assert.IsType(t, FrameTooLargeError{}, err)
}

func TestKindNames(t *testing.T) {
	assert.Equal(t, "SyncGame", KindSyncGame.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
}
