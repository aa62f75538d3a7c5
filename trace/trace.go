// Package trace records decoded method frames to a CBOR stream for
// offline inspection and replay.
package trace

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"go.uber.org/zap"

	"github.com/maxpert/amqp-client-go/protocol"
)

// Entry is a single traced method frame
type Entry struct {
	Timestamp time.Time      `cbor:"1,keyasint"`
	Channel   uint16         `cbor:"2,keyasint"`
	Key       uint32         `cbor:"3,keyasint"`
	Name      string         `cbor:"4,keyasint"`
	Fields    protocol.Table `cbor:"5,keyasint,omitempty"`
}

// Recorder appends method frames to a CBOR stream. Safe for
// concurrent use.
type Recorder struct {
	mu      sync.Mutex
	enc     *cbor.Encoder
	closer  io.Closer
	log     *zap.Logger
	entries int
}

// RecorderOption configures a Recorder
type RecorderOption func(*Recorder)

// WithRecorderLogger sets the logger
func WithRecorderLogger(log *zap.Logger) RecorderOption {
	return func(r *Recorder) {
		r.log = log
	}
}

// NewRecorder creates a recorder writing to w
func NewRecorder(w io.Writer, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		enc: cbor.NewEncoder(w),
		log: zap.NewNop(),
	}
	if c, ok := w.(io.Closer); ok {
		r.closer = c
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewFileRecorder creates a recorder writing to the named file
func NewFileRecorder(path string, opts ...RecorderOption) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return NewRecorder(f, opts...), nil
}

// Record appends a decoded method frame with its argument table
func (r *Recorder) Record(frame *protocol.MethodFrame, fields protocol.Table) error {
	entry := Entry{
		Timestamp: time.Now().UTC(),
		Channel:   frame.Channel,
		Key:       uint32(frame.Key()),
		Name:      frame.Name(),
		Fields:    fields,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enc.Encode(entry); err != nil {
		r.log.Error("Failed to record method frame",
			zap.String("method", entry.Name),
			zap.Error(err))
		return err
	}
	r.entries++
	return nil
}

// Entries returns the number of frames recorded so far
func (r *Recorder) Entries() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries
}

// Close closes the underlying writer if it supports closing
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Reader iterates over a recorded CBOR stream
type Reader struct {
	dec    *cbor.Decoder
	closer io.Closer
}

// NewReader creates a reader over a recorded stream
func NewReader(rd io.Reader) *Reader {
	r := &Reader{dec: cbor.NewDecoder(rd)}
	if c, ok := rd.(io.Closer); ok {
		r.closer = c
	}
	return r
}

// OpenFile opens a recorded trace file for reading
func OpenFile(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return NewReader(f), nil
}

// Next decodes the next entry, returning io.EOF at end of stream
func (r *Reader) Next() (*Entry, error) {
	var entry Entry
	if err := r.dec.Decode(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// All reads the remaining entries in the stream
func (r *Reader) All() ([]*Entry, error) {
	var entries []*Entry
	for {
		entry, err := r.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
}

// Close closes the underlying reader if it supports closing
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
