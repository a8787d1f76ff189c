package resp

import "sync"

// replyBufferPool pools the byte slices used to accumulate an encoded
// reply frame, the way the teacher's sync.Pool pooled request/response
// structs — generalized here from pooling typed LLM payloads to pooling
// a flat byte buffer.
var replyBufferPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, 256)
		return &buf
	},
}

// GetReplyBuffer returns a zero-length buffer with spare capacity from the
// pool.
func GetReplyBuffer() *[]byte {
	v := replyBufferPool.Get().(*[]byte)
	*v = (*v)[:0]
	return v
}

// PutReplyBuffer returns a buffer to the pool for reuse.
func PutReplyBuffer(buf *[]byte) {
	if cap(*buf) > 64*1024 {
		// Don't let one oversized reply bloat the pool permanently.
		return
	}
	replyBufferPool.Put(buf)
}
