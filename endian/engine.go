// Package endian selects the byte order of archive headers and payloads.
//
// EndianEngine joins binary.ByteOrder and binary.AppendByteOrder so encoders can
// append directly to a growing buffer:
//
//	engine := endian.GetLittleEndianEngine()
//	buf = engine.AppendUint64(buf, math.Float64bits(value))
//
// Archives default to little-endian. Big-endian is available for readers on
// big-endian hosts; the choice is recorded in the archive header flags.
package endian

import (
	"encoding/binary"
	"math"
)

// EndianEngine is satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// IsBigEndian reports whether engine writes big-endian.
func IsBigEndian(engine EndianEngine) bool {
	return engine == binary.BigEndian
}

// AppendFloat64s appends every value as its IEEE-754 bit pattern.
func AppendFloat64s(engine EndianEngine, dst []byte, values []float64) []byte {
	for _, v := range values {
		dst = engine.AppendUint64(dst, math.Float64bits(v))
	}

	return dst
}

// ReadFloat64s decodes n float64 values from the start of src. src must hold at
// least 8*n bytes.
func ReadFloat64s(engine EndianEngine, src []byte, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(engine.Uint64(src[i*8:]))
	}

	return out
}
