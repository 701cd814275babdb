package archive

import (
	"math"
	"runtime"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/zne/compress"
	"github.com/arloliu/zne/errs"
	"github.com/arloliu/zne/extrapolation"
	"github.com/arloliu/zne/format"
	"github.com/arloliu/zne/sample"
)

var testRunID = uuid.MustParse("6f1c2a1e-3b7d-4c55-9a0e-2d4f8b6c1a90")

func testRecord() *Record {
	return &Record{
		RunID:        testRunID,
		Model:        extrapolation.Polynomial(2),
		ScaleFactors: []float64{1, 1.5, 2, 3},
		Samples: []sample.Sample{
			{ScaleFactor: 1, Value: 0.91},
			{ScaleFactor: 1.5, Value: 0.86},
			{ScaleFactor: 2, Value: 0.82},
			{ScaleFactor: 3, Value: 0.74},
			{ScaleFactor: 1, Value: 0.89},
			{ScaleFactor: 5, Value: 0.5}, // undeclared
		},
	}
}

func TestEncodeDecode_AllCodecs(t *testing.T) {
	codecs := []format.CompressionType{
		format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4,
	}

	for _, c := range codecs {
		for _, big := range []bool{false, true} {
			name := c.String() + "/little"
			opts := []EncodeOption{WithCompression(c)}
			if big {
				name = c.String() + "/big"
				opts = append(opts, WithBigEndian())
			}

			t.Run(name, func(t *testing.T) {
				rec := testRecord()
				data, err := Encode(rec, opts...)
				require.NoError(t, err)

				h, err := ParseHeader(data)
				require.NoError(t, err)
				require.Equal(t, big, h.IsBigEndian())
				require.Equal(t, c, h.Compression)

				got, err := Decode(data)
				require.NoError(t, err)
				require.Equal(t, rec, got)
			})
		}
	}
}

func TestEncode_DefaultsAndOptions(t *testing.T) {
	data, err := Encode(testRecord(), WithBigEndian(), WithLittleEndian())
	require.NoError(t, err)

	h, err := ParseHeader(data)
	require.NoError(t, err)
	require.Equal(t, format.CompressionZstd, h.Compression)
	require.False(t, h.IsBigEndian())
	require.Equal(t, Version, h.Version)
	require.Equal(t, uint32(4), h.DeclaredCount)
	require.Equal(t, uint32(6), h.SampleCount)
	require.Equal(t, uint32((4+12)*8), h.PayloadSize)

	_, err = Encode(testRecord(), WithCompression(format.CompressionType(0x42)))
	require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
}

func TestEncode_InvalidRecord(t *testing.T) {
	rec := testRecord()
	rec.Samples = append(rec.Samples, sample.Sample{ScaleFactor: 2, Value: math.NaN()})
	_, err := Encode(rec)
	require.ErrorIs(t, err, errs.ErrInvalidValue)

	rec = testRecord()
	rec.ScaleFactors = nil
	_, err = Encode(rec)
	require.ErrorIs(t, err, errs.ErrInsufficientScaleFactors)

	rec = testRecord()
	rec.Model = extrapolation.Polynomial(0)
	_, err = Encode(rec)
	require.ErrorIs(t, err, errs.ErrInvalidFitModel)

	rec = testRecord()
	rec.Model = extrapolation.Richardson()
	rec.ScaleFactors = []float64{1, 1, 2}
	_, err = Encode(rec)
	require.ErrorIs(t, err, errs.ErrNumericalFitFailure)
}

func TestDecode_Exponential(t *testing.T) {
	rec := &Record{
		RunID:        uuid.New(),
		Model:        extrapolation.Exponential(-0.25),
		ScaleFactors: []float64{1, 2},
		Samples:      []sample.Sample{{ScaleFactor: 1, Value: 0.3}, {ScaleFactor: 2, Value: 0.1}},
	}

	data, err := Encode(rec, WithCompression(format.CompressionS2), WithBigEndian())
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, rec, got)
}

func TestDecode_Corruption(t *testing.T) {
	t.Run("ShortHeader", func(t *testing.T) {
		_, err := Decode([]byte("ZNEA"))
		require.ErrorIs(t, err, errs.ErrInvalidArchiveHeader)
	})

	t.Run("BadMagic", func(t *testing.T) {
		data, err := Encode(testRecord())
		require.NoError(t, err)
		data[0] = 'X'
		_, err = Decode(data)
		require.ErrorIs(t, err, errs.ErrInvalidArchiveHeader)
	})

	t.Run("BadVersion", func(t *testing.T) {
		data, err := Encode(testRecord())
		require.NoError(t, err)
		data[4] = 99
		_, err = Decode(data)
		require.ErrorIs(t, err, errs.ErrInvalidArchiveHeader)
	})

	t.Run("UnknownCompression", func(t *testing.T) {
		data, err := Encode(testRecord())
		require.NoError(t, err)
		data[6] = 0x7f
		_, err = Decode(data)
		require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
	})

	t.Run("PayloadBitFlip", func(t *testing.T) {
		data, err := Encode(testRecord(), WithCompression(format.CompressionNone))
		require.NoError(t, err)
		data[HeaderSize+10] ^= 0x01
		_, err = Decode(data)
		require.ErrorIs(t, err, errs.ErrChecksumMismatch)
	})

	t.Run("ChecksumField", func(t *testing.T) {
		data, err := Encode(testRecord(), WithCompression(format.CompressionLZ4))
		require.NoError(t, err)
		data[HeaderSize-1] ^= 0xFF
		_, err = Decode(data)
		require.ErrorIs(t, err, errs.ErrChecksumMismatch)
	})

	t.Run("Truncated", func(t *testing.T) {
		data, err := Encode(testRecord(), WithCompression(format.CompressionNone))
		require.NoError(t, err)
		_, err = Decode(data[:len(data)-8])
		require.ErrorIs(t, err, errs.ErrInvalidArchive)
	})

	t.Run("UnknownModelKind", func(t *testing.T) {
		data, err := Encode(testRecord(), WithCompression(format.CompressionNone))
		require.NoError(t, err)
		data[7] = 200
		_, err = Decode(data)
		require.ErrorIs(t, err, errs.ErrInvalidArchive)
		require.ErrorIs(t, err, errs.ErrInvalidFitModel)
	})
}

func TestRecord_EngineRoundTrip(t *testing.T) {
	e, err := extrapolation.NewEngine(extrapolation.Richardson(), []float64{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, e.Push(1, 0.9))
	require.NoError(t, e.Push(2, 0.8))
	require.NoError(t, e.Push(3, 0.7))
	expected, err := e.Reduce()
	require.NoError(t, err)

	data, err := Encode(FromEngine(testRunID, e))
	require.NoError(t, err)
	rec, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, 2, rec.Model.Degree)

	rebuilt, err := rec.Engine()
	require.NoError(t, err)
	require.Equal(t, extrapolation.StateAccumulating, rebuilt.State())
	require.Equal(t, e.Samples(), rebuilt.Samples())

	got, err := rebuilt.Reduce()
	require.NoError(t, err)
	require.Equal(t, math.Float64bits(expected.ZeroNoiseValue), math.Float64bits(got.ZeroNoiseValue))
}

func TestRecord_DeclarationID(t *testing.T) {
	a := testRecord()
	b := testRecord()
	b.RunID = uuid.New()
	b.Samples = b.Samples[:2]
	require.Equal(t, a.DeclarationID(), b.DeclarationID())

	b.Model = extrapolation.Linear()
	require.NotEqual(t, a.DeclarationID(), b.DeclarationID())
}

func TestInspect(t *testing.T) {
	data, err := Encode(testRecord(), WithCompression(format.CompressionNone))
	require.NoError(t, err)

	info, err := Inspect(data)
	require.NoError(t, err)
	require.Equal(t, testRunID, info.RunID)
	require.Equal(t, extrapolation.Polynomial(2), info.Model())
	require.Equal(t, int(info.PayloadSize), info.CompressedSize)
	require.InDelta(t, 1.0, info.Ratio, 1e-12)

	_, err = Inspect(data[:10])
	require.ErrorIs(t, err, errs.ErrInvalidArchiveHeader)
}

func TestHeader_BytesRoundTrip(t *testing.T) {
	h := Header{
		Version:       Version,
		Flags:         flagBigEndian,
		Compression:   format.CompressionS2,
		ModelKind:     uint8(extrapolation.KindExponential),
		Degree:        7,
		DeclaredCount: 3,
		SampleCount:   300,
		PayloadSize:   (3 + 600) * 8,
		Asymptote:     0.125,
		RunID:         testRunID,
		Checksum:      0xdeadbeefcafef00d,
	}

	b := h.Bytes()
	require.Len(t, b, HeaderSize)
	require.Equal(t, Magic, string(b[:4]))

	got, err := ParseHeader(b)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func BenchmarkEncode(b *testing.B) {
	rec := &Record{RunID: testRunID, Model: extrapolation.Linear(), ScaleFactors: []float64{1, 2, 3}}
	for i := range 3000 {
		sf := float64(i%3 + 1)
		rec.Samples = append(rec.Samples, sample.Sample{ScaleFactor: sf, Value: 1 - 0.05*sf})
	}

	for _, c := range []format.CompressionType{format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		b.Run(c.String(), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := Encode(rec, WithCompression(c)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// forgedArchive pairs a valid header declaring two scale factors and one sample
// (a 32 byte payload) with an arbitrary body.
func forgedArchive(c format.CompressionType, body []byte) []byte {
	h := Header{
		Version:       Version,
		Compression:   c,
		ModelKind:     uint8(extrapolation.KindLinear),
		DeclaredCount: 2,
		SampleCount:   1,
		PayloadSize:   32,
		RunID:         testRunID,
	}

	return append(h.Bytes(), body...)
}

func TestDecode_OversizedBody(t *testing.T) {
	const bodySize = 64 << 20

	for _, c := range []format.CompressionType{
		format.CompressionZstd, format.CompressionS2, format.CompressionLZ4,
	} {
		t.Run(c.String(), func(t *testing.T) {
			codec, err := compress.GetCodec(c)
			require.NoError(t, err)
			body, err := codec.Compress(make([]byte, bodySize))
			require.NoError(t, err)
			data := forgedArchive(c, body)

			var before, after runtime.MemStats
			runtime.ReadMemStats(&before)
			_, err = Decode(data)
			runtime.ReadMemStats(&after)

			require.ErrorIs(t, err, errs.ErrInvalidArchive)
			require.ErrorIs(t, err, errs.ErrDecompressLimit)
			require.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(bodySize/8),
				"decode must not expand the body before rejecting it")
		})
	}

	t.Run("None", func(t *testing.T) {
		_, err := Decode(forgedArchive(format.CompressionNone, make([]byte, 40)))
		require.ErrorIs(t, err, errs.ErrDecompressLimit)
	})

	t.Run("HeaderBeyondMaxPayload", func(t *testing.T) {
		h := Header{
			Version:       Version,
			Compression:   format.CompressionZstd,
			DeclaredCount: 1 << 26,
			SampleCount:   1 << 24,
			PayloadSize:   (1<<26 + 2<<24) * 8,
			RunID:         testRunID,
		}
		_, err := Decode(append(h.Bytes(), 0x28, 0xb5, 0x2f, 0xfd))
		require.ErrorIs(t, err, errs.ErrInvalidArchive)
		require.NotErrorIs(t, err, errs.ErrDecompressLimit)
	})
}
