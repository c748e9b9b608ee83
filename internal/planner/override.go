package planner

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Override is an optional per-deployment chunking policy loaded from a YAML
// file, e.g. smaller chunks for a slower backend. Zero fields fall back to
// the size-based policy.
type Override struct {
	ChunkSize   int64 `yaml:"chunk_size"`
	Concurrency int   `yaml:"concurrency"`
	MaxAttempts int   `yaml:"max_attempts"`
}

func LoadOverride(path string) (Override, error) {
	var o Override
	data, err := os.ReadFile(path)
	if err != nil {
		return o, fmt.Errorf("error reading plan file: %v", err)
	}
	if err := yaml.Unmarshal(data, &o); err != nil {
		return o, fmt.Errorf("error parsing plan file: %v", err)
	}
	if o.ChunkSize < 0 || o.Concurrency < 0 || o.MaxAttempts < 0 {
		return Override{}, fmt.Errorf("plan file values must be non-negative")
	}
	return o, nil
}

// Apply merges the override onto the default policy for the given size.
func (o Override) Apply(totalSize int64) Plan {
	chunkSize, concurrency := policy(totalSize)
	if o.ChunkSize > 0 {
		chunkSize = o.ChunkSize
	}
	if o.Concurrency > 0 {
		concurrency = o.Concurrency
	}
	return build(totalSize, chunkSize, concurrency)
}
