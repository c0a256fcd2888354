package protocol

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/XCI9/CardGame/card31"
)

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendSint(b []byte, num protowire.Number, v int) []byte {
	return appendVarint(b, num, protowire.EncodeZigZag(int64(v)))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	return appendVarint(b, num, protowire.EncodeBool(v))
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessage(b []byte, num protowire.Number, m []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m)
}

// appendCards writes cards as a packed repeated varint. Hidden cards are
// written as 0 so the hand size survives.
func appendCards(b []byte, num protowire.Number, cards card31.Cards) []byte {
	if len(cards) == 0 {
		return b
	}
	var packed []byte
	for _, c := range cards {
		packed = protowire.AppendVarint(packed, uint64(c))
	}
	return appendMessage(b, num, packed)
}

// reader walks the fields of one message. After an error next returns
// false and err holds the cause.
type reader struct {
	b   []byte
	num protowire.Number
	typ protowire.Type
	err error
}

func (r *reader) fail(n int) {
	if r.err == nil {
		r.err = DecodeError{Msg: protowire.ParseError(n).Error()}
	}
	r.b = nil
}

func (r *reader) failf(format string, args ...interface{}) {
	if r.err == nil {
		r.err = DecodeError{Msg: fmt.Sprintf(format, args...)}
	}
	r.b = nil
}

func (r *reader) next() bool {
	if r.err != nil || len(r.b) == 0 {
		return false
	}
	num, typ, n := protowire.ConsumeTag(r.b)
	if n < 0 {
		r.fail(n)
		return false
	}
	r.num, r.typ = num, typ
	r.b = r.b[n:]
	return true
}

func (r *reader) varint() uint64 {
	if r.typ != protowire.VarintType {
		r.failf("field %d: expected varint, got wire type %d", r.num, r.typ)
		return 0
	}
	v, n := protowire.ConsumeVarint(r.b)
	if n < 0 {
		r.fail(n)
		return 0
	}
	r.b = r.b[n:]
	return v
}

func (r *reader) sint() int {
	return int(protowire.DecodeZigZag(r.varint()))
}

func (r *reader) bytes() []byte {
	if r.typ != protowire.BytesType {
		r.failf("field %d: expected bytes, got wire type %d", r.num, r.typ)
		return nil
	}
	v, n := protowire.ConsumeBytes(r.b)
	if n < 0 {
		r.fail(n)
		return nil
	}
	r.b = r.b[n:]
	return v
}

func (r *reader) str() string {
	return string(r.bytes())
}

// packed reads a packed repeated varint field.
func (r *reader) packed() []uint64 {
	b := r.bytes()
	var values []uint64
	for len(b) > 0 {
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			r.fail(n)
			return nil
		}
		values = append(values, v)
		b = b[n:]
	}
	return values
}

func (r *reader) cards(cards card31.Cards) card31.Cards {
	for _, v := range r.packed() {
		if !r.checkCard(v) {
			return nil
		}
		cards = append(cards, card31.Card(v))
	}
	return cards
}

func (r *reader) card() card31.Card {
	v := r.varint()
	if !r.checkCard(v) {
		return card31.Hidden
	}
	return card31.Card(v)
}

func (r *reader) checkCard(v uint64) bool {
	if v > uint64(card31.MaxCard) {
		r.failf("field %d: card %d out of range", r.num, v)
		return false
	}
	return true
}

func (r *reader) skip() {
	n := protowire.ConsumeFieldValue(r.num, r.typ, r.b)
	if n < 0 {
		r.fail(n)
		return
	}
	r.b = r.b[n:]
}
