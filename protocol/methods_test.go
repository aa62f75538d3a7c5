package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMethodKey(t *testing.T) {
	key := NewMethodKey(60, 60)
	assert.Equal(t, uint16(60), key.ClassID())
	assert.Equal(t, uint16(60), key.MethodID())
	assert.Equal(t, KeyBasicDeliver, key)
	assert.Equal(t, "basic.deliver", key.String())
}

func TestMethodKeyOutsideCatalog(t *testing.T) {
	key := NewMethodKey(99, 1)
	assert.Equal(t, "class-99.method-1", key.String())
}

func TestCatalogNamesAreUnique(t *testing.T) {
	seen := make(map[string]MethodKey, len(Methods))
	for key, info := range Methods {
		name := info.Class + "." + info.Method
		if prev, ok := seen[name]; ok {
			t.Errorf("duplicate catalog name %s for keys %v and %v", name, prev, key)
		}
		seen[name] = key
	}
}

func TestParseMethodFrame(t *testing.T) {
	frame := EncodeMethodFrame(5, KeyChannelOpen, []byte{0x00})
	assert.Equal(t, byte(FrameMethod), frame.Type)
	assert.Equal(t, uint16(5), frame.Channel)

	method, err := ParseMethodFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, uint16(20), method.ClassID)
	assert.Equal(t, uint16(10), method.MethodID)
	assert.Equal(t, KeyChannelOpen, method.Key())
	assert.Equal(t, "channel.open", method.Name())
	assert.Equal(t, []byte{0x00}, method.Payload)
}

func TestParseMethodFrameRejectsNonMethod(t *testing.T) {
	frame := &Frame{Type: FrameHeartbeat, Channel: 0}
	_, err := ParseMethodFrame(frame)
	require.Error(t, err)

	frame = &Frame{Type: FrameMethod, Channel: 0, Payload: []byte{0x00}}
	_, err = ParseMethodFrame(frame)
	require.Error(t, err)
}
