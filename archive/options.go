package archive

import (
	"fmt"

	"github.com/arloliu/zne/endian"
	"github.com/arloliu/zne/errs"
	"github.com/arloliu/zne/format"
	"github.com/arloliu/zne/internal/options"
)

type encoderConfig struct {
	compression format.CompressionType
	engine      endian.EndianEngine
}

func defaultEncoderConfig() *encoderConfig {
	return &encoderConfig{
		compression: format.CompressionZstd,
		engine:      endian.GetLittleEndianEngine(),
	}
}

// EncodeOption is a functional option for Encode.
type EncodeOption = options.Option[*encoderConfig]

// WithCompression sets the payload codec. The default is Zstd.
func WithCompression(c format.CompressionType) EncodeOption {
	return options.New(func(cfg *encoderConfig) error {
		if !c.Valid() {
			return fmt.Errorf("%w: 0x%02x", errs.ErrUnsupportedCompression, uint8(c))
		}
		cfg.compression = c

		return nil
	})
}

// WithBigEndian writes header fields and payload big-endian.
func WithBigEndian() EncodeOption {
	return options.NoError(func(cfg *encoderConfig) {
		cfg.engine = endian.GetBigEndianEngine()
	})
}

// WithLittleEndian writes header fields and payload little-endian. This is the default.
func WithLittleEndian() EncodeOption {
	return options.NoError(func(cfg *encoderConfig) {
		cfg.engine = endian.GetLittleEndianEngine()
	})
}
