package protocol

import (
	"bytes"
	"testing"
)

func TestFrameMarshalUnmarshal(t *testing.T) {
	originalFrame := &Frame{
		Type:    FrameMethod,
		Channel: 1,
		Size:    4,
		Payload: []byte{0x00, 0x0A, 0x00, 0x0A}, // connection.start
	}

	data, err := originalFrame.MarshalBinary()
	if err != nil {
		t.Fatalf("Failed to marshal frame: %v", err)
	}

	newFrame := &Frame{}
	err = newFrame.UnmarshalBinary(data)
	if err != nil {
		t.Fatalf("Failed to unmarshal frame: %v", err)
	}

	if newFrame.Type != originalFrame.Type {
		t.Errorf("Expected type %d, got %d", originalFrame.Type, newFrame.Type)
	}
	if newFrame.Channel != originalFrame.Channel {
		t.Errorf("Expected channel %d, got %d", originalFrame.Channel, newFrame.Channel)
	}
	if !bytes.Equal(newFrame.Payload, originalFrame.Payload) {
		t.Errorf("Expected payload %v, got %v", originalFrame.Payload, newFrame.Payload)
	}
}

func TestReadWriteFrame(t *testing.T) {
	frame := &Frame{
		Type:    FrameMethod,
		Channel: 3,
		Size:    4,
		Payload: []byte{0x00, 0x14, 0x00, 0x0A}, // channel.open
	}

	var buf bytes.Buffer
	if err := WriteFrame(&buf, frame); err != nil {
		t.Fatalf("Failed to write frame: %v", err)
	}

	readFrame, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("Failed to read frame: %v", err)
	}

	if readFrame.Type != frame.Type {
		t.Errorf("Expected type %d, got %d", frame.Type, readFrame.Type)
	}
	if readFrame.Channel != frame.Channel {
		t.Errorf("Expected channel %d, got %d", frame.Channel, readFrame.Channel)
	}
	if !bytes.Equal(readFrame.Payload, frame.Payload) {
		t.Errorf("Expected payload %v, got %v", frame.Payload, readFrame.Payload)
	}
}

func TestReadFrameOversizedHeader(t *testing.T) {
	// A header whose size field claims the maximum payload must fail with a
	// frame error rather than wrap the allocation and crash.
	header := []byte{FrameMethod, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF}
	if _, err := ReadFrame(bytes.NewReader(header)); err == nil {
		t.Fatal("Expected error for oversized frame header")
	}

	header = []byte{FrameMethod, 0x00, 0x00, 0x01, 0x00, 0x00, 0x01}
	if _, err := ReadFrame(bytes.NewReader(header)); err == nil {
		t.Fatal("Expected error for size above the frame limit")
	}
}

func TestReadFrameTruncatedPayload(t *testing.T) {
	// Size field claims more payload than the stream holds
	data := []byte{FrameMethod, 0x00, 0x01, 0x00, 0x00, 0x00, 0x08, 0x01, 0x02}
	if _, err := ReadFrame(bytes.NewReader(data)); err == nil {
		t.Error("Expected error for truncated payload")
	}
}

func TestReadFrameBadEndByte(t *testing.T) {
	frame := &Frame{Type: FrameMethod, Channel: 1, Payload: []byte{0, 1, 2, 3}}
	data, err := frame.MarshalBinary()
	if err != nil {
		t.Fatalf("Failed to marshal frame: %v", err)
	}
	data[len(data)-1] = 0x00

	if _, err := ReadFrame(bytes.NewReader(data)); err == nil {
		t.Error("Expected error for corrupted end-byte")
	}
}
