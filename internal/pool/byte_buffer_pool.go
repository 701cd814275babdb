package pool

import "sync"

const (
	// PayloadBufferSize is the initial capacity of a pooled payload buffer,
	// enough for about 170 samples.
	PayloadBufferSize = 4 << 10
	// PayloadBufferMaxRetained is the largest capacity returned to the pool.
	// Buffers grown beyond it by very large runs are left to the GC.
	PayloadBufferMaxRetained = 256 << 10
)

// ByteBuffer holds an archive payload while it is being assembled.
type ByteBuffer struct {
	B []byte
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reserve makes room for n more float64 columns without reallocating.
func (bb *ByteBuffer) Reserve(n int) {
	need := len(bb.B) + n*8
	if need <= cap(bb.B) {
		return
	}

	grown := make([]byte, len(bb.B), max(need, cap(bb.B)+cap(bb.B)/4))
	copy(grown, bb.B)
	bb.B = grown
}

// ByteBufferPool recycles ByteBuffers, dropping those whose capacity exceeds
// maxRetained on Put.
type ByteBufferPool struct {
	pool        sync.Pool
	maxRetained int
}

func NewByteBufferPool(initialSize, maxRetained int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return &ByteBuffer{B: make([]byte, 0, initialSize)}
			},
		},
		maxRetained: maxRetained,
	}
}

// Get returns an empty buffer.
func (p *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := p.pool.Get().(*ByteBuffer)
	return bb
}

// Put resets bb and returns it to the pool. nil is ignored.
func (p *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil || (p.maxRetained > 0 && cap(bb.B) > p.maxRetained) {
		return
	}

	bb.B = bb.B[:0]
	p.pool.Put(bb)
}

var payloadPool = NewByteBufferPool(PayloadBufferSize, PayloadBufferMaxRetained)

// GetPayloadBuffer returns an empty buffer with room for columns float64 values.
func GetPayloadBuffer(columns int) *ByteBuffer {
	bb := payloadPool.Get()
	bb.Reserve(columns)

	return bb
}

// PutPayloadBuffer returns bb to the payload pool.
func PutPayloadBuffer(bb *ByteBuffer) {
	payloadPool.Put(bb)
}
