package compress

import (
	"fmt"

	"github.com/arloliu/zne/errs"
	"github.com/arloliu/zne/format"
)

// Compressor compresses an archive payload.
//
// The returned slice is owned by the caller. The input slice is not modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor.
//
// limit is the largest decoded size the caller accepts, normally the exact payload
// size recorded next to the block. Implementations never decode or allocate more
// than limit bytes and fail with errs.ErrDecompressLimit instead. Corrupted input
// or input produced by a different algorithm returns an error.
// Implementations are safe for concurrent use.
type Decompressor interface {
	Decompress(data []byte, limit int) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the built-in Codec for the compression type.
// Unknown types return errs.ErrUnsupportedCompression.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s (0x%02x)", errs.ErrUnsupportedCompression, compressionType, uint8(compressionType))
}

func limitError(name string, size uint64, limit int) error {
	return fmt.Errorf("%w: %s block decodes to %d bytes, limit %d", errs.ErrDecompressLimit, name, size, limit)
}

// Ratio returns compressed/original, or 0 when original is zero.
func Ratio(original, compressed int) float64 {
	if original == 0 {
		return 0
	}

	return float64(compressed) / float64(original)
}
