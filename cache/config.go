package cache

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the cache geometry and eviction policy. The geometry is
// expressed in bits so that set selection and tag extraction are pure
// shifts and masks on the 64-bit address.
type Config struct {
	// SetBits is the number of set-index bits; the cache has 2^SetBits sets.
	SetBits int `json:"set_bits"`
	// LinesPerSet is the associativity: the number of lines in each set.
	LinesPerSet int `json:"lines_per_set"`
	// BlockBits is the number of block-offset bits; a block spans 2^BlockBits bytes.
	BlockBits int `json:"block_bits"`
	// Policy selects the eviction rule, LRU unless configured otherwise.
	Policy Policy `json:"policy"`
}

// DefaultConfig returns the default geometry: 256 sets, direct mapped,
// 256-byte blocks, LRU eviction.
func DefaultConfig() Config {
	return Config{
		SetBits:     8,
		LinesPerSet: 1,
		BlockBits:   8,
		Policy:      LRU,
	}
}

// LoadConfig loads a Config from a JSON file. Fields absent from the
// file keep their default values.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read cache config file: %w", err)
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse cache config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize cache config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache config file: %w", err)
	}

	return nil
}

// Validate checks the geometry against the limits the address decoder
// relies on. SetBits and BlockBits must each fit in a 64-bit address and
// leave at least zero tag bits between them.
func (c Config) Validate() error {
	if c.SetBits < 0 || c.SetBits > 63 {
		return fmt.Errorf("set_bits must be between 0 and 63, got %d", c.SetBits)
	}
	if c.BlockBits < 0 {
		return fmt.Errorf("block_bits must be non-negative, got %d", c.BlockBits)
	}
	if c.SetBits+c.BlockBits > 64 {
		return fmt.Errorf("set_bits+block_bits must not exceed 64, got %d", c.SetBits+c.BlockBits)
	}
	if c.LinesPerSet < 1 {
		return fmt.Errorf("lines_per_set must be at least 1, got %d", c.LinesPerSet)
	}
	if c.Policy != LRU && c.Policy != LFU {
		return fmt.Errorf("unknown eviction policy %d", int(c.Policy))
	}
	return nil
}

// NumSets returns the number of sets, 2^SetBits.
func (c Config) NumSets() int {
	return 1 << uint(c.SetBits)
}

// BlockSize returns the block size in bytes, 2^BlockBits.
func (c Config) BlockSize() uint64 {
	return uint64(1) << uint(c.BlockBits)
}
