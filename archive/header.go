package archive

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/arloliu/zne/endian"
	"github.com/arloliu/zne/errs"
	"github.com/arloliu/zne/format"
)

const (
	// Magic identifies a sample archive.
	Magic = "ZNEA"
	// Version is the current archive layout version.
	Version uint8 = 1
	// HeaderSize is the fixed size of the archive header in bytes.
	HeaderSize = 56
	// MaxPayloadSize caps the uncompressed payload, about 16 million samples.
	// Decode refuses larger headers before decompressing anything.
	MaxPayloadSize = 256 << 20

	flagBigEndian uint8 = 1 << 0
)

// Header is the fixed-size block at the start of every archive.
//
// Magic and the single-byte fields are order independent; every multi-byte field
// uses the byte order selected by Flags.
type Header struct {
	Version       uint8                  // byte offset 4
	Flags         uint8                  // byte offset 5
	Compression   format.CompressionType // byte offset 6
	ModelKind     uint8                  // byte offset 7
	Degree        uint16                 // byte offset 8-9, 10-11 reserved
	DeclaredCount uint32                 // byte offset 12-15
	SampleCount   uint32                 // byte offset 16-19
	// PayloadSize is the uncompressed payload size.
	PayloadSize uint32    // byte offset 20-23
	Asymptote   float64   // byte offset 24-31
	RunID       uuid.UUID // byte offset 32-47
	// Checksum is the xxHash64 of the uncompressed payload.
	Checksum uint64 // byte offset 48-55
}

// IsBigEndian reports whether the archive body is big-endian.
func (h *Header) IsBigEndian() bool {
	return h.Flags&flagBigEndian != 0
}

// GetEndianEngine returns the byte order selected by Flags.
func (h *Header) GetEndianEngine() endian.EndianEngine {
	if h.IsBigEndian() {
		return endian.GetBigEndianEngine()
	}

	return endian.GetLittleEndianEngine()
}

// Bytes serializes the header.
func (h *Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	engine := h.GetEndianEngine()

	copy(b[0:4], Magic)
	b[4] = h.Version
	b[5] = h.Flags
	b[6] = uint8(h.Compression)
	b[7] = h.ModelKind
	engine.PutUint16(b[8:10], h.Degree)
	engine.PutUint32(b[12:16], h.DeclaredCount)
	engine.PutUint32(b[16:20], h.SampleCount)
	engine.PutUint32(b[20:24], h.PayloadSize)
	engine.PutUint64(b[24:32], math.Float64bits(h.Asymptote))
	copy(b[32:48], h.RunID[:])
	engine.PutUint64(b[48:56], h.Checksum)

	return b
}

// ParseHeader parses the header at the start of data.
//
// Returns errs.ErrInvalidArchiveHeader for short input, a wrong magic or an
// unknown version.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: need %d bytes, got %d", errs.ErrInvalidArchiveHeader, HeaderSize, len(data))
	}
	if string(data[0:4]) != Magic {
		return Header{}, fmt.Errorf("%w: bad magic %q", errs.ErrInvalidArchiveHeader, data[0:4])
	}

	h := Header{
		Version:     data[4],
		Flags:       data[5],
		Compression: format.CompressionType(data[6]),
		ModelKind:   data[7],
	}
	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: unsupported version %d", errs.ErrInvalidArchiveHeader, h.Version)
	}

	engine := h.GetEndianEngine()
	h.Degree = engine.Uint16(data[8:10])
	h.DeclaredCount = engine.Uint32(data[12:16])
	h.SampleCount = engine.Uint32(data[16:20])
	h.PayloadSize = engine.Uint32(data[20:24])
	h.Asymptote = math.Float64frombits(engine.Uint64(data[24:32]))
	copy(h.RunID[:], data[32:48])
	h.Checksum = engine.Uint64(data[48:56])

	return h, nil
}
