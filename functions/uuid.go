package functions

import (
	"github.com/google/uuid"

	"colhash/codec"
	"colhash/vectorized"
)

// UUID5 derives a version 5 UUID from every row within cfg.Namespace
func UUID5(v *vectorized.Vector, cfg UUIDConfig, opts ...Option) (*vectorized.Vector, error) {
	return uuid5(v, cfg, vectorized.Propagate, opts)
}

func uuid5(v *vectorized.Vector, cfg UUIDConfig, policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
	ns, err := parseNamespace(cfg)
	if err != nil {
		return nil, err
	}
	return vectorized.Unary(v, policy, vectorized.Total(func(name string) string {
		return codec.UUID5(ns, name)
	}), opts...)
}

// UUID5Concat derives a version 5 UUID from the concatenation a+b of two columns.
//
// b may also be a length-1 column broadcast to every row. A missing b is
// replaced by cfg.Default when set. Otherwise a missing per-row b propagates
// and a missing broadcast b fails the call.
func UUID5Concat(a, b *vectorized.Vector, cfg UUIDConfig, opts ...Option) (*vectorized.Vector, error) {
	return uuid5Concat(a, b, cfg, vectorized.Propagate, opts)
}

func uuid5Concat(a, b *vectorized.Vector, cfg UUIDConfig, policy vectorized.NullPolicy, opts []Option) (*vectorized.Vector, error) {
	ns, err := parseNamespace(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Default != nil {
		if b, err = fillNulls(b, *cfg.Default); err != nil {
			return nil, err
		}
	}
	concat := func(x, y string) (string, bool, error) {
		return codec.UUID5(ns, x+y), true, nil
	}
	if b.Length == a.Length {
		return vectorized.Binary(a, b, policy, concat, opts...)
	}
	if b.Length == 1 && b.IsNull(0) {
		return nil, vectorized.MissingOperand(-1, suffixName, suffixName+" may not be null")
	}
	suffix, err := vectorized.ResolveParam[string](suffixName, b, a.Length)
	if err != nil {
		return nil, err
	}
	return vectorized.BinaryParam(a, suffix, policy, concat, opts...)
}

// suffixName is the operand name of the second uuid5_concat column
const suffixName = "second"

func parseNamespace(cfg UUIDConfig) (uuid.UUID, error) {
	if cfg.Namespace == "" {
		return uuid.Nil, vectorized.InvalidOperation("uuid namespace is required")
	}
	parsed, err := codec.ParseNamespace(cfg.Namespace)
	if err != nil {
		return uuid.Nil, vectorized.InvalidOperation("%v", err)
	}
	return parsed, nil
}

// fillNulls returns a copy of a STRING column with null rows set to value
func fillNulls(v *vectorized.Vector, value string) (*vectorized.Vector, error) {
	if v.Length > 0 && v.NullCount() == v.Length {
		// an untyped NULL literal arrives as an all-null column of any type
		filled := make([]string, v.Length)
		for i := range filled {
			filled[i] = value
		}
		return vectorized.FromSlice(filled), nil
	}
	values, err := vectorized.Values[string](v)
	if err != nil {
		return nil, vectorized.InvalidOperation("%v", err)
	}
	if !v.Nulls.HasNulls() {
		return v, nil
	}
	filled := make([]string, len(values))
	copy(filled, values)
	for _, i := range v.Nulls.Positions() {
		filled[i] = value
	}
	return vectorized.FromSlice(filled), nil
}
