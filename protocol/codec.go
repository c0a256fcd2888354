package protocol

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/XCI9/CardGame/card31"
	"github.com/XCI9/CardGame/game"
)

// Envelope fields.
const (
	envKind protowire.Number = 1
	envBody protowire.Number = 2
)

// DecodeError reports a payload that is not a valid message.
type DecodeError struct {
	Msg string
}

func (e DecodeError) Error() string {
	return "Cannot decode message: " + e.Msg
}

// Encode serializes m in protobuf wire format: the kind tag followed by
// the variant body.
func Encode(m Message) ([]byte, error) {
	var body []byte
	switch v := m.(type) {
	case *PlayHand:
		body = appendSint(body, 1, v.PlayerID)
		if !v.Hand.IsNone() {
			body = appendMessage(body, 2, appendHand(nil, v.Hand))
		}
	case *PlayErase:
		body = appendSint(body, 1, v.PlayerID)
		if v.Card != card31.Hidden {
			body = appendVarint(body, 2, uint64(v.Card))
		}
	case *SyncGame:
		body = appendMessage(body, 1, appendSnapshot(nil, &v.Table))
		body = appendSint(body, 2, v.RecipientID)
	case *GameOver:
		body = appendString(body, 1, v.WinnerName)
	case *GetPlayer:
		for _, name := range v.Names {
			body = appendString(body, 1, name)
		}
		body = appendVarint(body, 2, uint64(v.FullCount))
	case *SendName:
		body = appendString(body, 1, v.Name)
	case *AgainChk:
		body = appendBool(body, 1, v.Agree)
	case *Rejected:
		body = appendString(body, 1, v.Reason)
	default:
		return nil, fmt.Errorf("Cannot encode message of type %T", m)
	}

	b := appendVarint(nil, envKind, uint64(m.Kind()))
	b = appendMessage(b, envBody, body)
	return b, nil
}

// Decode parses a payload produced by Encode.
func Decode(b []byte) (Message, error) {
	var kind Kind
	var body []byte
	r := reader{b: b}
	for r.next() {
		switch r.num {
		case envKind:
			v := r.varint()
			if v > math.MaxInt32 {
				r.failf("message kind %d out of range", v)
				break
			}
			kind = Kind(v)
		case envBody:
			body = r.bytes()
		default:
			r.skip()
		}
	}
	if r.err != nil {
		return nil, r.err
	}

	var m Message
	var err error
	switch kind {
	case KindPlayHand:
		m, err = decodePlayHand(body)
	case KindPlayErase:
		m, err = decodePlayErase(body)
	case KindSyncGame:
		m, err = decodeSyncGame(body)
	case KindGameOver:
		m, err = decodeGameOver(body)
	case KindGetPlayer:
		m, err = decodeGetPlayer(body)
	case KindSendName:
		m, err = decodeSendName(body)
	case KindAgainChk:
		m, err = decodeAgainChk(body)
	case KindRejected:
		m, err = decodeRejected(body)
	default:
		return nil, DecodeError{Msg: fmt.Sprintf("unknown message kind %d", kind)}
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func decodePlayHand(b []byte) (Message, error) {
	m := &PlayHand{Hand: card31.NoHand()}
	r := reader{b: b}
	for r.next() {
		switch r.num {
		case 1:
			m.PlayerID = r.sint()
		case 2:
			hand, err := decodeHand(r.bytes())
			if err != nil {
				return nil, err
			}
			m.Hand = hand
		default:
			r.skip()
		}
	}
	return m, r.err
}

func decodePlayErase(b []byte) (Message, error) {
	m := &PlayErase{}
	r := reader{b: b}
	for r.next() {
		switch r.num {
		case 1:
			m.PlayerID = r.sint()
		case 2:
			m.Card = r.card()
		default:
			r.skip()
		}
	}
	return m, r.err
}

func decodeSyncGame(b []byte) (Message, error) {
	m := &SyncGame{}
	r := reader{b: b}
	for r.next() {
		switch r.num {
		case 1:
			snap, err := decodeSnapshot(r.bytes())
			if err != nil {
				return nil, err
			}
			m.Table = snap
		case 2:
			m.RecipientID = r.sint()
		default:
			r.skip()
		}
	}
	return m, r.err
}

func decodeGameOver(b []byte) (Message, error) {
	m := &GameOver{}
	r := reader{b: b}
	for r.next() {
		if r.num == 1 {
			m.WinnerName = r.str()
		} else {
			r.skip()
		}
	}
	return m, r.err
}

func decodeGetPlayer(b []byte) (Message, error) {
	m := &GetPlayer{}
	r := reader{b: b}
	for r.next() {
		switch r.num {
		case 1:
			m.Names = append(m.Names, r.str())
		case 2:
			m.FullCount = int(r.varint())
		default:
			r.skip()
		}
	}
	return m, r.err
}

func decodeSendName(b []byte) (Message, error) {
	m := &SendName{}
	r := reader{b: b}
	for r.next() {
		if r.num == 1 {
			m.Name = r.str()
		} else {
			r.skip()
		}
	}
	return m, r.err
}

func decodeAgainChk(b []byte) (Message, error) {
	m := &AgainChk{}
	r := reader{b: b}
	for r.next() {
		if r.num == 1 {
			m.Agree = protowire.DecodeBool(r.varint())
		} else {
			r.skip()
		}
	}
	return m, r.err
}

func decodeRejected(b []byte) (Message, error) {
	m := &Rejected{}
	r := reader{b: b}
	for r.next() {
		if r.num == 1 {
			m.Reason = r.str()
		} else {
			r.skip()
		}
	}
	return m, r.err
}

// Hand fields: cards, rank, value, suit, eraseable.
func appendHand(b []byte, h card31.Hand) []byte {
	b = appendCards(b, 1, h.Cards)
	b = appendVarint(b, 2, uint64(h.Rank))
	b = appendSint(b, 3, h.Value)
	b = appendSint(b, 4, h.Suit)
	b = appendBool(b, 5, h.Eraseable)
	return b
}

func decodeHand(b []byte) (card31.Hand, error) {
	h := card31.NoHand()
	r := reader{b: b}
	for r.next() {
		switch r.num {
		case 1:
			h.Cards = r.cards(h.Cards)
		case 2:
			h.Rank = card31.Rank(r.varint())
		case 3:
			h.Value = r.sint()
		case 4:
			h.Suit = r.sint()
		case 5:
			h.Eraseable = protowire.DecodeBool(r.varint())
		default:
			r.skip()
		}
	}
	if r.err != nil {
		return card31.Hand{}, r.err
	}
	if !h.Rank.Valid() {
		return card31.Hand{}, DecodeError{Msg: fmt.Sprintf("invalid rank %d", h.Rank)}
	}
	if h.Rank == card31.None {
		return card31.NoHand(), nil
	}
	return h, nil
}

func appendSnapshot(b []byte, s *game.TableSnapshot) []byte {
	for i := range s.Players {
		b = appendMessage(b, 1, appendPlayer(nil, &s.Players[i]))
	}
	b = appendCards(b, 2, s.Played)
	b = appendVarint(b, 3, uint64(s.Turn))
	b = appendSint(b, 4, s.Token)
	b = appendMessage(b, 5, appendHand(nil, s.Previous))
	b = appendBool(b, 6, s.Rules.Allow9)
	b = appendBool(b, 7, s.Rules.Allow19)
	b = appendBool(b, 8, s.Rules.Allow29)
	b = appendVarint(b, 9, uint64(s.State))
	b = appendSint(b, 10, s.ErasePending)
	b = appendSint(b, 11, s.Winner)
	if len(s.FinishOrder) > 0 {
		var packed []byte
		for _, seat := range s.FinishOrder {
			packed = protowire.AppendVarint(packed, uint64(seat))
		}
		b = appendMessage(b, 12, packed)
	}
	return b
}

func decodeSnapshot(b []byte) (game.TableSnapshot, error) {
	s := game.TableSnapshot{Previous: card31.NoHand()}
	r := reader{b: b}
	for r.next() {
		switch r.num {
		case 1:
			p, err := decodePlayer(r.bytes())
			if err != nil {
				return s, err
			}
			s.Players = append(s.Players, p)
		case 2:
			s.Played = r.cards(s.Played)
		case 3:
			s.Turn = int(r.varint())
		case 4:
			s.Token = r.sint()
		case 5:
			prev, err := decodeHand(r.bytes())
			if err != nil {
				return s, err
			}
			s.Previous = prev
		case 6:
			s.Rules.Allow9 = protowire.DecodeBool(r.varint())
		case 7:
			s.Rules.Allow19 = protowire.DecodeBool(r.varint())
		case 8:
			s.Rules.Allow29 = protowire.DecodeBool(r.varint())
		case 9:
			s.State = game.RoundState(r.varint())
		case 10:
			s.ErasePending = r.sint()
		case 11:
			s.Winner = r.sint()
		case 12:
			for _, v := range r.packed() {
				s.FinishOrder = append(s.FinishOrder, int(v))
			}
		default:
			r.skip()
		}
	}
	return s, r.err
}

func appendPlayer(b []byte, p *game.PlayerSnapshot) []byte {
	b = appendString(b, 1, p.Name)
	b = appendCards(b, 2, p.Hand)
	b = appendBool(b, 3, p.Turn)
	b = appendBool(b, 4, p.FreePlay)
	b = appendBool(b, 5, p.Active)
	b = appendBool(b, 6, p.Departed)
	return b
}

func decodePlayer(b []byte) (game.PlayerSnapshot, error) {
	var p game.PlayerSnapshot
	r := reader{b: b}
	for r.next() {
		switch r.num {
		case 1:
			p.Name = r.str()
		case 2:
			p.Hand = r.cards(p.Hand)
		case 3:
			p.Turn = protowire.DecodeBool(r.varint())
		case 4:
			p.FreePlay = protowire.DecodeBool(r.varint())
		case 5:
			p.Active = protowire.DecodeBool(r.varint())
		case 6:
			p.Departed = protowire.DecodeBool(r.varint())
		default:
			r.skip()
		}
	}
	return p, r.err
}
