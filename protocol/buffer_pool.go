package protocol

import (
	"bytes"
	"sync"
)

// sync.Pool-based buffer management for the codec hot paths. The pool is safe
// for concurrent use and rejects oversized buffers (>64KB) to avoid holding
// on to memory after a large table or frame passes through.

// bufferPool is a pool of bytes.Buffer objects for reuse
var bufferPool = sync.Pool{
	New: func() interface{} {
		return &bytes.Buffer{}
	},
}

// getBuffer gets a buffer from the pool
func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// putBuffer returns a buffer to the pool
func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 64*1024 {
		return
	}
	bufferPool.Put(buf)
}
