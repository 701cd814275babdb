// Package config loads zne run configuration and sample files.
//
// A run file declares the fit model, the scale factors and how the circuit is
// executed:
//
//	model:
//	  name: polynomial
//	  degree: 2
//	scale_factors: [1, 1.5, 2, 2.5, 3]
//	repetitions: 4
//	concurrency: 8
//	archive:
//	  compression: zstd
//
// Unknown keys are rejected. Omitted keys keep the values from Default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/zne/archive"
	"github.com/arloliu/zne/executor"
	"github.com/arloliu/zne/extrapolation"
	"github.com/arloliu/zne/format"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config is a zne run configuration.
type Config struct {
	Model        ModelConfig   `yaml:"model"`
	ScaleFactors []float64     `yaml:"scale_factors" validate:"required,min=1,dive,gt=0"`
	Repetitions  int           `yaml:"repetitions" validate:"gte=1,lte=100000"`
	Concurrency  int           `yaml:"concurrency" validate:"gte=1,lte=4096"`
	Archive      ArchiveConfig `yaml:"archive"`
}

// ModelConfig selects the fit model. Degree is read for polynomial and Asymptote
// for exponential.
type ModelConfig struct {
	Name      string  `yaml:"name" validate:"required,oneof=linear polynomial poly richardson exponential exp"`
	Degree    int     `yaml:"degree" validate:"gte=0,lte=32"`
	Asymptote float64 `yaml:"asymptote"`
}

// ArchiveConfig controls how sample archives are written.
type ArchiveConfig struct {
	Compression string `yaml:"compression" validate:"omitempty,oneof=none zstd s2 lz4"`
	BigEndian   bool   `yaml:"big_endian"`
}

// Default returns a linear fit over scale factors 1, 2 and 3, executed once each.
func Default() *Config {
	return &Config{
		Model:        ModelConfig{Name: "linear"},
		ScaleFactors: []float64{1, 2, 3},
		Repetitions:  1,
		Concurrency:  1,
		Archive:      ArchiveConfig{Compression: "zstd"},
	}
}

// Load reads and validates a run file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes a run file on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks field constraints and that the model can be built over the
// declared scale factors.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	m, err := c.FitModel()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := extrapolation.NewEngine(m, c.ScaleFactors); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Compression(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// FitModel converts the model section.
func (c *Config) FitModel() (extrapolation.FitModel, error) {
	return extrapolation.FitModelFromString(c.Model.Name, c.Model.Degree, c.Model.Asymptote)
}

// Compression converts the archive compression name.
func (c *Config) Compression() (format.CompressionType, error) {
	return format.ParseCompression(c.Archive.Compression)
}

// NewEngine builds an engine for the configured model and scale factors.
func (c *Config) NewEngine(opts ...extrapolation.EngineOption) (*extrapolation.Engine, error) {
	m, err := c.FitModel()
	if err != nil {
		return nil, err
	}

	return extrapolation.NewEngine(m, c.ScaleFactors, opts...)
}

// RunnerOptions returns the repetitions and concurrency settings as runner
// options. Further options such as a logger or metrics can be appended.
//
//	runner, err := executor.NewRunner(backend, cfg.RunnerOptions()...)
func (c *Config) RunnerOptions() []executor.RunnerOption {
	return []executor.RunnerOption{
		executor.WithRepetitions(c.Repetitions),
		executor.WithConcurrency(c.Concurrency),
	}
}

// ArchiveOptions returns the encode options for the archive section.
func (c *Config) ArchiveOptions() ([]archive.EncodeOption, error) {
	ct, err := c.Compression()
	if err != nil {
		return nil, err
	}

	opts := []archive.EncodeOption{archive.WithCompression(ct)}
	if c.Archive.BigEndian {
		opts = append(opts, archive.WithBigEndian())
	}

	return opts, nil
}
