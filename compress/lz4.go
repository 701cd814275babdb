package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

var errLZ4Corrupt = errors.New("lz4: corrupt block")

var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor uses LZ4 block compression.
//
// Each block is prefixed with the uncompressed length as a uvarint. When the
// input does not shrink the bytes are stored as-is, which a reader detects by
// the remainder being exactly the announced length.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress returns nil for empty input.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, binary.MaxVarintLen64+lz4.CompressBlockBound(len(data)))
	prefix := binary.PutUvarint(dst, uint64(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst[prefix:])
	if err != nil {
		return nil, err
	}
	if n == 0 || n >= len(data) {
		n = copy(dst[prefix:], data)
	}

	return dst[:prefix+n], nil
}

// Decompress checks the length prefix against limit before allocating.
func (c LZ4Compressor) Decompress(data []byte, limit int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	size, prefix := binary.Uvarint(data)
	if prefix <= 0 || size == 0 {
		return nil, errLZ4Corrupt
	}
	if size > uint64(max(limit, 0)) {
		return nil, limitError("lz4", size, limit)
	}
	block := data[prefix:]

	if uint64(len(block)) == size {
		out := make([]byte, size)
		copy(out, block)

		return out, nil
	}

	out := make([]byte, size)
	n, err := lz4.UncompressBlock(block, out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errLZ4Corrupt, err)
	}
	if uint64(n) != size {
		return nil, fmt.Errorf("%w: decoded %d bytes, expected %d", errLZ4Corrupt, n, size)
	}

	return out, nil
}
