package compress

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// ZstdCompressor uses Zstandard, the best ratio of the built-in codecs and the
// default for archives.
//
// The pure-Go klauspost/compress implementation is used unless the module is built
// with the cgozstd tag, which switches to the cgo bindings of valyala/gozstd.
// Both produce standard zstd frames and read each other's output.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

// checkZstdFrame rejects a frame whose header announces more than limit bytes,
// before any output buffer is allocated. Frames without a content size pass and
// are bounded while decoding.
func checkZstdFrame(data []byte, limit int) error {
	var fh zstd.Header
	if err := fh.Decode(data); err != nil {
		return fmt.Errorf("zstd frame header: %w", err)
	}
	if fh.HasFCS && fh.FrameContentSize > uint64(max(limit, 0)) {
		return limitError("zstd", fh.FrameContentSize, limit)
	}

	return nil
}
