// Package p3 reads and writes P3 streams: back-to-back frames of
// [type u8][reserved u8][length u16 big-endian][payload].
// There is no container header, footer or checksum.
package p3

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// HeaderSize is the fixed size of a frame header in bytes.
const HeaderSize = 4

// MaxPayload is the largest payload a 16-bit length field can describe.
const MaxPayload = math.MaxUint16

// ErrPayloadTooLarge is returned by Writer for payloads over MaxPayload bytes.
var ErrPayloadTooLarge = errors.New("p3: payload exceeds 65535 bytes")

// FrameHeader precedes every payload. Type and Reserved are carried through
// untouched; the player ignores them.
type FrameHeader struct {
	Type     uint8
	Reserved uint8
	Length   uint16
}

// ParseHeader decodes a 4-byte frame header.
func ParseHeader(b [HeaderSize]byte) FrameHeader {
	return FrameHeader{
		Type:     b[0],
		Reserved: b[1],
		Length:   binary.BigEndian.Uint16(b[2:4]),
	}
}

// Put encodes h into b.
func (h FrameHeader) Put(b []byte) {
	b[0] = h.Type
	b[1] = h.Reserved
	binary.BigEndian.PutUint16(b[2:4], h.Length)
}

// Frame is one header plus its encoded payload.
type Frame struct {
	Header  FrameHeader
	Payload []byte
}

// Reader splits a byte stream into frames.
type Reader struct {
	r         io.Reader
	hdr       [HeaderSize]byte
	buf       []byte
	offset    int64
	truncated bool
}

// NewReader returns a Reader that buffers r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next returns the next frame in stream order. A missing or short header and a
// short payload both end the stream: Next returns io.EOF, not an error.
//
// The returned payload is only valid until the following call to Next.
func (r *Reader) Next() (Frame, error) {
	if err := r.fill(r.hdr[:], false); err != nil {
		return Frame{}, err
	}
	h := ParseHeader(r.hdr)

	if cap(r.buf) < int(h.Length) {
		r.buf = make([]byte, h.Length)
	}
	payload := r.buf[:h.Length]
	if err := r.fill(payload, true); err != nil {
		return Frame{}, err
	}
	return Frame{Header: h, Payload: payload}, nil
}

func (r *Reader) fill(p []byte, payload bool) error {
	n, err := io.ReadFull(r.r, p)
	r.offset += int64(n)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		r.truncated = true
		return io.EOF
	case errors.Is(err, io.EOF):
		// Nothing left before a header is a clean end; before a payload it is not.
		r.truncated = payload
		return io.EOF
	default:
		return fmt.Errorf("p3: read frame: %w", err)
	}
}

// Offset reports how many bytes have been consumed from the stream.
func (r *Reader) Offset() int64 { return r.offset }

// Truncated reports whether the stream ended inside a header or payload.
func (r *Reader) Truncated() bool { return r.truncated }

// Writer emits frames in P3 framing.
type Writer struct {
	w   io.Writer
	hdr [HeaderSize]byte
}

// NewWriter returns a Writer writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteFrame writes one frame of the given type. The reserved byte is zero.
func (w *Writer) WriteFrame(typ uint8, payload []byte) error {
	if len(payload) > MaxPayload {
		return ErrPayloadTooLarge
	}
	FrameHeader{Type: typ, Length: uint16(len(payload))}.Put(w.hdr[:])
	if _, err := w.w.Write(w.hdr[:]); err != nil {
		return fmt.Errorf("p3: write header: %w", err)
	}
	if _, err := w.w.Write(payload); err != nil {
		return fmt.Errorf("p3: write payload: %w", err)
	}
	return nil
}
