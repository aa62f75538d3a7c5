package trace

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpert/amqp-client-go/protocol"
)

func basicCancelFrame(t *testing.T) *protocol.MethodFrame {
	t.Helper()
	return &protocol.MethodFrame{
		Channel:  3,
		ClassID:  60,
		MethodID: 30,
	}
}

func TestRecorderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)

	require.NoError(t, rec.Record(basicCancelFrame(t), protocol.Table{
		"consumer_tag": "ctag-1",
	}))
	require.NoError(t, rec.Record(&protocol.MethodFrame{Channel: 1, ClassID: 10, MethodID: 10}, nil))
	assert.Equal(t, 2, rec.Entries())

	reader := NewReader(bytes.NewReader(buf.Bytes()))
	entries, err := reader.All()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, uint16(3), entries[0].Channel)
	assert.Equal(t, "basic.cancel", entries[0].Name)
	assert.Equal(t, uint32(protocol.KeyBasicCancel), entries[0].Key)
	assert.Equal(t, "ctag-1", entries[0].Fields["consumer_tag"])

	assert.Equal(t, "connection.start", entries[1].Name)
	assert.False(t, entries[1].Timestamp.IsZero())
}

func TestReaderEmptyStream(t *testing.T) {
	reader := NewReader(bytes.NewReader(nil))
	_, err := reader.Next()
	assert.Equal(t, io.EOF, err)

	entries, err := reader.All()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.cbor")

	rec, err := NewFileRecorder(path)
	require.NoError(t, err)
	require.NoError(t, rec.Record(basicCancelFrame(t), nil))
	require.NoError(t, rec.Close())

	reader, err := OpenFile(path)
	require.NoError(t, err)
	defer reader.Close()

	entry, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "basic.cancel", entry.Name)

	_, err = reader.Next()
	assert.Equal(t, io.EOF, err)
}
