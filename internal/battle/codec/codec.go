// Package codec implements the battle wire protocol: one opcode byte, a
// big-endian int32 length, then the payload. It mirrors the original
// OutMessage/InMessage pair from the C++ network layer this module is
// descended from.
package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrMalformedFrame is returned for short reads, length mismatches, or
// truncated strings — anything that leaves a Decoder unable to trust the
// remaining bytes.
var ErrMalformedFrame = errors.New("codec: malformed frame")

const headerSize = 1 + 4 // opcode byte + int32 length

// Encoder builds one outgoing frame. Zero value is ready to use.
type Encoder struct {
	opcode byte
	buf    bytes.Buffer
}

// NewEncoder starts a frame for the given opcode.
func NewEncoder(opcode byte) *Encoder {
	return &Encoder{opcode: opcode}
}

// Byte appends a single byte.
func (e *Encoder) Byte(v byte) *Encoder {
	e.buf.WriteByte(v)
	return e
}

// Bool appends a byte 0/1.
func (e *Encoder) Bool(v bool) *Encoder {
	if v {
		return e.Byte(1)
	}
	return e.Byte(0)
}

// Int16 appends a big-endian signed int16.
func (e *Encoder) Int16(v int16) *Encoder {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(v))
	e.buf.Write(b[:])
	return e
}

// Int32 appends a big-endian signed int32.
func (e *Encoder) Int32(v int32) *Encoder {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	e.buf.Write(b[:])
	return e
}

// String appends an int16 byte-length prefix then the UTF-8 bytes.
func (e *Encoder) String(s string) *Encoder {
	e.Int16(int16(len(s)))
	e.buf.WriteString(s)
	return e
}

// Finalise back-patches the header and returns the complete frame: opcode
// byte, big-endian int32 payload length, then payload.
func (e *Encoder) Finalise() []byte {
	payload := e.buf.Bytes()
	out := make([]byte, 0, headerSize+len(payload))
	out = append(out, e.opcode)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	out = append(out, lenBuf[:]...)
	out = append(out, payload...)
	return out
}

// Decoder reads primitive fields off a single frame's payload in order.
type Decoder struct {
	opcode byte
	r      *bytes.Reader
}

// ReadFrame reads one complete frame (header + payload) from r and returns a
// Decoder positioned at the start of the payload.
func ReadFrame(r io.Reader) (*Decoder, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: short header read: %v", ErrMalformedFrame, err)
		}
		return nil, err
	}

	opcode := header[0]
	length := binary.BigEndian.Uint32(header[1:])

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("%w: short payload read: %v", ErrMalformedFrame, err)
	}

	return &Decoder{opcode: opcode, r: bytes.NewReader(payload)}, nil
}

// Opcode returns the frame's opcode byte.
func (d *Decoder) Opcode() byte { return d.opcode }

// Byte reads a single byte.
func (d *Decoder) Byte() (byte, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("%w: reading byte: %v", ErrMalformedFrame, err)
	}
	return b, nil
}

// Bool reads a 0/1 byte.
func (d *Decoder) Bool() (bool, error) {
	b, err := d.Byte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// Int16 reads a big-endian signed int16.
func (d *Decoder) Int16() (int16, error) {
	var b [2]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return 0, fmt.Errorf("%w: reading int16: %v", ErrMalformedFrame, err)
	}
	return int16(binary.BigEndian.Uint16(b[:])), nil
}

// Int32 reads a big-endian signed int32.
func (d *Decoder) Int32() (int32, error) {
	var b [4]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return 0, fmt.Errorf("%w: reading int32: %v", ErrMalformedFrame, err)
	}
	return int32(binary.BigEndian.Uint32(b[:])), nil
}

// String reads an int16 byte-length prefix then that many UTF-8 bytes.
func (d *Decoder) String() (string, error) {
	n, err := d.Int16()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", fmt.Errorf("%w: negative string length %d", ErrMalformedFrame, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return "", fmt.Errorf("%w: reading string body: %v", ErrMalformedFrame, err)
	}
	return string(buf), nil
}

// Remaining returns the number of unread payload bytes, useful for tests
// asserting a decoder consumed exactly its frame.
func (d *Decoder) Remaining() int {
	return d.r.Len()
}
