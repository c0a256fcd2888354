package protocol

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// MaxFrameSize bounds a payload. A larger length prefix is treated as a
// malformed frame.
const MaxFrameSize = 1 << 20

const headerSize = 4

type FrameTooLargeError struct {
	Size uint32
}

func (e FrameTooLargeError) Error() string {
	return fmt.Sprintf("Frame of %d bytes exceeds the %d byte limit", e.Size, MaxFrameSize)
}

// WriteFrame writes a 4-byte big-endian length followed by payload in a
// single Write.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return FrameTooLargeError{Size: uint32(len(payload))}
	}
	buf := make([]byte, headerSize+len(payload))
	binary.BigEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[headerSize:], payload)
	_, err := w.Write(buf)
	return err
}

// ReadFrame reads one frame. It returns io.EOF untouched when the peer
// closed the connection between frames.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > MaxFrameSize {
		return nil, FrameTooLargeError{Size: size}
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return payload, nil
}

func WriteMessage(w io.Writer, m Message) error {
	payload, err := Encode(m)
	if err != nil {
		return err
	}
	return errors.Wrapf(WriteFrame(w, payload), "Failed to write %s", m.Kind())
}

func ReadMessage(r io.Reader) (Message, error) {
	payload, err := ReadFrame(r)
	if err != nil {
		return nil, err
	}
	return Decode(payload)
}

// IsMalformed reports whether err came from a bad frame or payload rather
// than from the connection.
func IsMalformed(err error) bool {
	switch errors.Cause(err).(type) {
	case DecodeError, FrameTooLargeError:
		return true
	}
	return false
}
