package frame

import (
	"encoding/binary"
	"errors"
	"io"
)

// MaxPayloadBytes is the largest UTF-8 payload one frame can carry,
// bounded by the 16-bit length prefix.
const MaxPayloadBytes = 65535

// HeaderLen is the fixed length prefix size in bytes.
const HeaderLen = 2

var (
	ErrFrameTooLarge    = errors.New("frame: payload exceeds 16-bit length prefix")
	ErrConnectionClosed = errors.New("frame: connection closed before frame boundary")
)

// Encode returns the wire form of one message: a 2-byte big-endian
// length prefix followed by the UTF-8 payload. Nothing is written to
// any stream; callers own delivery.
func Encode(text string) ([]byte, error) {
	payload := []byte(text)
	if len(payload) > MaxPayloadBytes {
		return nil, ErrFrameTooLarge
	}
	buf := make([]byte, HeaderLen+len(payload))
	binary.BigEndian.PutUint16(buf[0:HeaderLen], uint16(len(payload)))
	copy(buf[HeaderLen:], payload)
	return buf, nil
}

// Decode reads exactly one frame from r and returns its payload text.
// The reader may deliver bytes in arbitrary chunks; Decode blocks until
// the declared boundary is reached and never returns a partial payload.
func Decode(r io.Reader) (string, error) {
	var hdr [HeaderLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return "", ErrConnectionClosed
		}
		return "", err
	}
	n := binary.BigEndian.Uint16(hdr[:])
	payload := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return "", ErrConnectionClosed
			}
			return "", err
		}
	}
	return string(payload), nil
}

// Write encodes text and writes the complete frame to w.
func Write(w io.Writer, text string) error {
	buf, err := Encode(text)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}
