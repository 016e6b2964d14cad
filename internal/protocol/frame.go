package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// Magic is the first byte of every frame. A mismatch is protocol-fatal.
	Magic = 0x55

	// HeaderSize is magic + sequence + body length.
	HeaderSize = 4

	// MaxBody bounds the declared body length (packet type byte + payload).
	MaxBody = 65535
)

// Frame is one protocol message: the sequence byte, the packet type and the
// opcode-specific payload. Body length on the wire counts the type byte plus
// the payload.
type Frame struct {
	Sequence byte
	Type     PacketType
	Payload  []byte
}

// ReadFrame reads one complete frame from r.
// Errors are protocol-fatal: the caller is expected to close the connection.
func ReadFrame(r io.Reader) (Frame, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Frame{}, fmt.Errorf("reading frame header: %w", err)
	}

	if header[0] != Magic {
		return Frame{}, fmt.Errorf("bad magic byte 0x%02X", header[0])
	}

	bodyLen := int(binary.LittleEndian.Uint16(header[2:]))
	if bodyLen < 1 {
		return Frame{}, fmt.Errorf("invalid body length: %d", bodyLen)
	}
	if bodyLen > MaxBody {
		return Frame{}, fmt.Errorf("body length %d exceeds maximum %d", bodyLen, MaxBody)
	}

	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return Frame{}, fmt.Errorf("reading frame body: %w", err)
	}

	return Frame{
		Sequence: header[1],
		Type:     PacketType(body[0]),
		Payload:  body[1:],
	}, nil
}

// WriteFrame writes one frame to w with the given sequence byte.
func WriteFrame(w io.Writer, seq byte, typ PacketType, payload []byte) error {
	bodyLen := 1 + len(payload)
	if bodyLen > MaxBody {
		return fmt.Errorf("body length %d exceeds maximum %d", bodyLen, MaxBody)
	}

	buf := make([]byte, HeaderSize+bodyLen)
	buf[0] = Magic
	buf[1] = seq
	binary.LittleEndian.PutUint16(buf[2:], uint16(bodyLen))
	buf[4] = byte(typ)
	copy(buf[5:], payload)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}
