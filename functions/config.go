package functions

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"colhash/codec"
	"colhash/vectorized"
)

// Config holds the keyword arguments of a call as a JSON object, e.g. {"seed": 42}
type Config struct {
	raw json.RawMessage
}

// ParseConfig parses a JSON object of keyword arguments. An empty string is an empty config.
func ParseConfig(kwargs string) (Config, error) {
	kwargs = strings.TrimSpace(kwargs)
	if kwargs == "" {
		return Config{}, nil
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(kwargs), &probe); err != nil {
		return Config{}, vectorized.InvalidOperation("invalid kwargs: %v", err)
	}
	return Config{raw: json.RawMessage(kwargs)}, nil
}

// ConfigOf encodes a config record or map as keyword arguments
func ConfigOf(v interface{}) (Config, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Config{}, vectorized.InvalidOperation("invalid kwargs: %v", err)
	}
	return ParseConfig(string(raw))
}

// String returns the JSON form of the keyword arguments
func (c Config) String() string {
	if len(c.raw) == 0 {
		return "{}"
	}
	return string(c.raw)
}

func (c Config) decode(into interface{}) error {
	if len(c.raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(c.raw))
	if err := dec.Decode(into); err != nil {
		return vectorized.InvalidOperation("invalid kwargs %s: %v", c.raw, err)
	}
	return nil
}

// SeedConfig is the seed of the non-cryptographic hashes. 32-bit hashes accept seeds up to 2^32-1.
type SeedConfig struct {
	Seed uint64 `json:"seed"`
}

func (c SeedConfig) seed32() (uint32, error) {
	if c.Seed > math.MaxUint32 {
		return 0, vectorized.InvalidOperation("seed %d does not fit 32 bits", c.Seed)
	}
	return uint32(c.Seed), nil
}

// LengthConfig is the output length in bytes of sha3_shake128
type LengthConfig struct {
	Length int `json:"length"`
}

func (c LengthConfig) validate() error {
	if err := codec.CheckShakeLength(c.Length); err != nil {
		return vectorized.InvalidOperation("%v", err)
	}
	return nil
}

// UUIDConfig selects the namespace of uuid5 and the value used for a missing
// second operand of uuid5_concat.
type UUIDConfig struct {
	Namespace string  `json:"namespace"`
	Default   *string `json:"default,omitempty"`
}

func (c Config) seedConfig() (SeedConfig, error) {
	var cfg SeedConfig
	err := c.decode(&cfg)
	return cfg, err
}

func (c Config) lengthConfig() (LengthConfig, error) {
	var kw struct {
		Length *int `json:"length"`
	}
	if err := c.decode(&kw); err != nil {
		return LengthConfig{}, err
	}
	if kw.Length == nil {
		return LengthConfig{}, vectorized.InvalidOperation("missing keyword argument: length")
	}
	return LengthConfig{Length: *kw.Length}, nil
}

func (c Config) uuidConfig(namespace string) (UUIDConfig, error) {
	var cfg UUIDConfig
	if err := c.decode(&cfg); err != nil {
		return UUIDConfig{}, err
	}
	if namespace != "" {
		cfg.Namespace = namespace
	}
	return cfg, nil
}
