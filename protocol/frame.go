package protocol

import (
	"encoding/binary"
	"io"

	"github.com/maxpert/amqp-client-go/errors"
)

// Frame types as defined in the AMQP specification
const (
	FrameMethod    = 1
	FrameHeader    = 2
	FrameBody      = 3
	FrameHeartbeat = 8
	FrameEnd       = 0xCE // Frame end marker byte
)

// MaxFrameSize bounds the payload size accepted from the wire. A peer
// honoring the tune negotiation stays far below this; a larger size field is
// a corrupt or hostile header.
const MaxFrameSize = 16 * 1024 * 1024

// Frame represents an AMQP frame
type Frame struct {
	Type    byte
	Channel uint16
	Size    uint32
	Payload []byte
}

// MarshalBinary encodes a frame into binary format following AMQP 0.9.1 spec
// Format: (1-byte type) + (2-byte channel) + (4-byte size) + (size-byte payload) + (1-byte end: 0xCE)
func (f *Frame) MarshalBinary() ([]byte, error) {
	frameSize := 1 + 2 + 4 + len(f.Payload) + 1 // type + channel + size + payload + end-byte
	data := make([]byte, frameSize)

	data[0] = f.Type
	binary.BigEndian.PutUint16(data[1:3], f.Channel)
	binary.BigEndian.PutUint32(data[3:7], uint32(len(f.Payload)))
	copy(data[7:], f.Payload)
	data[7+len(f.Payload)] = FrameEnd

	return data, nil
}

// UnmarshalBinary decodes a frame from binary format
func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) < 8 {
		return errors.NewFrameError("frame too short", 0)
	}

	f.Type = data[0]
	f.Channel = binary.BigEndian.Uint16(data[1:3])
	payloadSize := binary.BigEndian.Uint32(data[3:7])

	if len(data) != int(7+payloadSize+1) { // 7 bytes header + payload size + 1 end-byte
		return errors.NewFrameError("frame size mismatch", f.Type)
	}

	f.Size = payloadSize
	f.Payload = make([]byte, f.Size)
	copy(f.Payload, data[7:7+f.Size])

	if data[7+f.Size] != FrameEnd {
		return errors.NewFrameError("invalid frame end-byte", f.Type)
	}

	return nil
}

// ReadFrame reads a frame from an io.Reader
func ReadFrame(reader io.Reader) (*Frame, error) {
	// Read the frame header (first 7 bytes: type, channel, size)
	header := make([]byte, 7)
	_, err := io.ReadFull(reader, header)
	if err != nil {
		return nil, err
	}

	frameType := header[0]
	channel := binary.BigEndian.Uint16(header[1:3])
	size := binary.BigEndian.Uint32(header[3:7])
	if size > MaxFrameSize {
		return nil, errors.NewFrameError("frame size exceeds limit", frameType)
	}

	// Read the payload + end-byte
	payload := make([]byte, int(size)+1)
	_, err = io.ReadFull(reader, payload)
	if err != nil {
		return nil, err
	}

	if payload[size] != FrameEnd {
		return nil, errors.NewFrameError("invalid frame end-byte", frameType)
	}

	return &Frame{
		Type:    frameType,
		Channel: channel,
		Size:    size,
		Payload: payload[:size],
	}, nil
}

// WriteFrame writes a frame to an io.Writer. Uses a pooled buffer so a frame
// write is a single call on the underlying writer.
func WriteFrame(writer io.Writer, frame *Frame) error {
	buf := getBuffer()
	defer putBuffer(buf)

	payloadLen := len(frame.Payload)
	buf.Grow(8 + payloadLen)

	buf.WriteByte(frame.Type)

	var header [6]byte
	binary.BigEndian.PutUint16(header[0:2], frame.Channel)
	binary.BigEndian.PutUint32(header[2:6], uint32(payloadLen))
	buf.Write(header[:])

	buf.Write(frame.Payload)
	buf.WriteByte(FrameEnd)

	_, err := buf.WriteTo(writer)
	return err
}
