// Package compress provides the payload codecs used by sample archives.
//
// An archive payload is a columnar block of IEEE-754 float64 values. Repeated
// scale factors and slowly varying expectation values compress well with a
// general-purpose algorithm. The package supports:
//   - None: payload stored as is
//   - Zstd: best ratio, the archive default
//   - S2: balanced speed and ratio
//   - LZ4: fastest decompression
//
// Codecs are stateless values backed by pooled encoders and decoders and are safe
// for concurrent use:
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	packed, err := codec.Compress(payload)
//
// Zstd uses the pure-Go github.com/klauspost/compress/zstd by default. Building with
// -tags cgozstd on a cgo toolchain switches to github.com/valyala/gozstd.
package compress
