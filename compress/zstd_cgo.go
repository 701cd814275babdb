//go:build cgozstd && cgo

package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/valyala/gozstd"

	"github.com/arloliu/zne/errs"
)

const zstdLevel = 3

// Compress returns nil for empty input.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.CompressLevel(nil, data, zstdLevel), nil
}

// Decompress streams at most limit bytes out of the gozstd reader, then checks
// that nothing is left.
func (c ZstdCompressor) Decompress(data []byte, limit int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if err := checkZstdFrame(data, limit); err != nil {
		return nil, err
	}

	zr := gozstd.NewReader(bytes.NewReader(data))
	defer zr.Release()

	var out bytes.Buffer
	if _, err := io.Copy(&out, io.LimitReader(zr, int64(limit))); err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	var extra [1]byte
	n, err := zr.Read(extra[:])
	if n > 0 {
		return nil, fmt.Errorf("%w: zstd block exceeds %d bytes", errs.ErrDecompressLimit, limit)
	}
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return out.Bytes(), nil
}
