package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/zne/sample"
)

// LoadSamples reads a YAML sample file: a list of {scale_factor, value} entries
// in the order they were measured.
//
//	- {scale_factor: 1, value: 0.91}
//	- {scale_factor: 2, value: 0.82}
func LoadSamples(path string) ([]sample.Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read samples: %w", err)
	}

	samples, err := ParseSamples(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return samples, nil
}

// ParseSamples decodes and validates a sample list.
func ParseSamples(data []byte) ([]sample.Sample, error) {
	var samples []sample.Sample
	if err := yaml.Unmarshal(data, &samples); err != nil {
		return nil, fmt.Errorf("parse samples: %w", err)
	}

	for i, s := range samples {
		if err := sample.ValidateScaleFactor(s.ScaleFactor); err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		if err := sample.ValidateValue(s.Value); err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
	}

	return samples, nil
}

// MarshalSamples renders samples in the LoadSamples format.
func MarshalSamples(samples []sample.Sample) ([]byte, error) {
	return yaml.Marshal(samples)
}
