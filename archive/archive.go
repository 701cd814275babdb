// Package archive persists a sample set together with its fit declaration so a run
// can be reduced again later, with the same or a different fit model.
//
// # Layout
//
//	+--------------------+----------------------------------------------+
//	| header (56 bytes)  | compressed payload                           |
//	+--------------------+----------------------------------------------+
//
// The uncompressed payload holds three float64 columns back to back:
//
//	declared scale factors | sample scale factors | sample values
//
// Samples are stored in insertion order. The header carries the xxHash64 of the
// uncompressed payload, verified on Decode.
package archive

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/arloliu/zne/compress"
	"github.com/arloliu/zne/endian"
	"github.com/arloliu/zne/errs"
	"github.com/arloliu/zne/extrapolation"
	"github.com/arloliu/zne/internal/hash"
	"github.com/arloliu/zne/internal/options"
	"github.com/arloliu/zne/internal/pool"
	"github.com/arloliu/zne/sample"
)

// Record is one archived run.
type Record struct {
	RunID        uuid.UUID
	Model        extrapolation.FitModel
	ScaleFactors []float64
	Samples      []sample.Sample
}

// FromEngine snapshots the declaration and samples of an engine.
func FromEngine(runID uuid.UUID, e *extrapolation.Engine) *Record {
	return &Record{
		RunID:        runID,
		Model:        e.Model(),
		ScaleFactors: e.ScaleFactors(),
		Samples:      e.Samples(),
	}
}

// Engine rebuilds an engine from the record and replays its samples in order.
func (r *Record) Engine(opts ...extrapolation.EngineOption) (*extrapolation.Engine, error) {
	opts = append([]extrapolation.EngineOption{extrapolation.WithStoreCapacity(len(r.Samples))}, opts...)

	e, err := extrapolation.NewEngine(r.Model, r.ScaleFactors, opts...)
	if err != nil {
		return nil, err
	}
	for _, s := range r.Samples {
		if err := e.Push(s.ScaleFactor, s.Value); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// DeclarationID is a stable identifier of the fit model and declared scale factors.
// Runs of the same experiment share it regardless of their samples.
func (r *Record) DeclarationID() uint64 {
	var sb strings.Builder
	sb.WriteString(r.Model.String())
	for _, sf := range r.ScaleFactors {
		sb.WriteByte('|')
		sb.WriteString(strconv.FormatFloat(sf, 'g', -1, 64))
	}

	return hash.ID(sb.String())
}

// Validate checks that the record can be encoded and later rebuilt into an engine.
func (r *Record) Validate() error {
	if err := r.Model.Validate(); err != nil {
		return err
	}
	if r.Model.Degree < 0 || r.Model.Degree > math.MaxUint16 {
		return fmt.Errorf("%w: degree %d out of range", errs.ErrInvalidFitModel, r.Model.Degree)
	}
	if len(r.ScaleFactors) == 0 {
		return fmt.Errorf("%w: no declared scale factors", errs.ErrInsufficientScaleFactors)
	}
	for i, sf := range r.ScaleFactors {
		if err := sample.ValidateScaleFactor(sf); err != nil {
			return err
		}
		if slices.Contains(r.ScaleFactors[:i], sf) {
			return fmt.Errorf("%w: scale factor %v declared more than once", errs.ErrNumericalFitFailure, sf)
		}
	}
	for _, s := range r.Samples {
		if err := sample.ValidateScaleFactor(s.ScaleFactor); err != nil {
			return err
		}
		if err := sample.ValidateValue(s.Value); err != nil {
			return err
		}
	}

	return nil
}

// Encode serializes rec.
//
// Example:
//
//	data, err := archive.Encode(archive.FromEngine(uuid.New(), engine),
//	    archive.WithCompression(format.CompressionS2))
func Encode(rec *Record, opts ...EncodeOption) ([]byte, error) {
	cfg := defaultEncoderConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	columns := len(rec.ScaleFactors) + 2*len(rec.Samples)
	if columns > MaxPayloadSize/8 {
		return nil, fmt.Errorf("%w: %d samples exceed the archive limit", errs.ErrInvalidArchive, len(rec.Samples))
	}

	codec, err := compress.GetCodec(cfg.compression)
	if err != nil {
		return nil, err
	}

	bb := pool.GetPayloadBuffer(columns)
	defer pool.PutPayloadBuffer(bb)

	bb.B = endian.AppendFloat64s(cfg.engine, bb.B, rec.ScaleFactors)
	for _, s := range rec.Samples {
		bb.B = cfg.engine.AppendUint64(bb.B, math.Float64bits(s.ScaleFactor))
	}
	for _, s := range rec.Samples {
		bb.B = cfg.engine.AppendUint64(bb.B, math.Float64bits(s.Value))
	}
	payload := bb.Bytes()

	compressed, err := codec.Compress(payload)
	if err != nil {
		return nil, fmt.Errorf("compress payload with %s: %w", cfg.compression, err)
	}

	h := Header{
		Version:       Version,
		Compression:   cfg.compression,
		ModelKind:     uint8(rec.Model.Kind),
		Degree:        uint16(rec.Model.Degree),
		DeclaredCount: uint32(len(rec.ScaleFactors)),
		SampleCount:   uint32(len(rec.Samples)),
		PayloadSize:   uint32(len(payload)),
		Asymptote:     rec.Model.Asymptote,
		RunID:         rec.RunID,
		Checksum:      hash.Checksum(payload),
	}
	if endian.IsBigEndian(cfg.engine) {
		h.Flags |= flagBigEndian
	}

	out := make([]byte, 0, HeaderSize+len(compressed))
	out = append(out, h.Bytes()...)
	out = append(out, compressed...)

	return out, nil
}

// Decode parses an archive produced by Encode.
//
// Errors:
//   - errs.ErrInvalidArchiveHeader: short input, bad magic or unknown version
//   - errs.ErrUnsupportedCompression: unknown codec in the header
//   - errs.ErrInvalidArchive: undecodable payload, size mismatch or invalid contents
//   - errs.ErrChecksumMismatch: payload does not match the header checksum
func Decode(data []byte) (*Record, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	payload, err := decompressPayload(h, data[HeaderSize:])
	if err != nil {
		return nil, err
	}

	engine := h.GetEndianEngine()
	declared := int(h.DeclaredCount)
	n := int(h.SampleCount)

	rec := &Record{
		RunID: h.RunID,
		Model: extrapolation.FitModel{
			Kind:      extrapolation.Kind(h.ModelKind),
			Degree:    int(h.Degree),
			Asymptote: h.Asymptote,
		},
		ScaleFactors: endian.ReadFloat64s(engine, payload, declared),
		Samples:      make([]sample.Sample, n),
	}

	sfs := endian.ReadFloat64s(engine, payload[declared*8:], n)
	values := endian.ReadFloat64s(engine, payload[(declared+n)*8:], n)
	for i := range rec.Samples {
		rec.Samples[i] = sample.Sample{ScaleFactor: sfs[i], Value: values[i]}
	}

	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidArchive, err)
	}

	return rec, nil
}

func decompressPayload(h Header, body []byte) ([]byte, error) {
	codec, err := compress.GetCodec(h.Compression)
	if err != nil {
		return nil, err
	}

	expected := (uint64(h.DeclaredCount) + 2*uint64(h.SampleCount)) * 8
	if uint64(h.PayloadSize) != expected || expected > MaxPayloadSize {
		return nil, fmt.Errorf("%w: header declares a %d byte payload for %d scale factors and %d samples",
			errs.ErrInvalidArchive, h.PayloadSize, h.DeclaredCount, h.SampleCount)
	}

	// The codec never produces more than the declared size.
	payload, err := codec.Decompress(body, int(expected))
	if err != nil {
		return nil, fmt.Errorf("%w: decompress %s payload: %w", errs.ErrInvalidArchive, h.Compression, err)
	}
	if uint64(len(payload)) != expected {
		return nil, fmt.Errorf("%w: payload is %d bytes, header declares %d",
			errs.ErrInvalidArchive, len(payload), expected)
	}

	if sum := hash.Checksum(payload); sum != h.Checksum {
		return nil, fmt.Errorf("%w: got %016x, header has %016x", errs.ErrChecksumMismatch, sum, h.Checksum)
	}

	return payload, nil
}

// Info summarizes an archive without decoding its samples.
type Info struct {
	Header
	// CompressedSize is the size of the payload as stored.
	CompressedSize int
	// Ratio is CompressedSize / Header.PayloadSize.
	Ratio float64
}

// Model returns the fit model recorded in the header.
func (i *Info) Model() extrapolation.FitModel {
	return extrapolation.FitModel{
		Kind:      extrapolation.Kind(i.ModelKind),
		Degree:    int(i.Degree),
		Asymptote: i.Asymptote,
	}
}

// Inspect parses the header of an archive.
func Inspect(data []byte) (*Info, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	compressed := len(data) - HeaderSize

	return &Info{
		Header:         h,
		CompressedSize: compressed,
		Ratio:          compress.Ratio(int(h.PayloadSize), compressed),
	}, nil
}
