package vectorized

import "context"

// DefaultShardSize is the number of rows a worker evaluates at a time when
// parallel evaluation is enabled.
const DefaultShardSize = 4096

type options struct {
	ctx          context.Context
	parallelism  int
	shardSize    int
	operandNames []string
	naming       GeometryNaming
}

// Option configures a single evaluation call.
type Option func(*options)

// WithContext sets the context checked between shards of a parallel evaluation.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithParallelism shards the row range across n workers.
//
// If n <= 1 evaluation is single-threaded (the default).
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithShardSize sets the rows per shard for parallel evaluation.
func WithShardSize(rows int) Option {
	return func(o *options) {
		if rows > 0 {
			o.shardSize = rows
		}
	}
}

// WithOperandNames names the operands in missing-operand errors, in argument order.
func WithOperandNames(names ...string) Option {
	return func(o *options) {
		o.operandNames = names
	}
}

// WithGeometryNaming selects the field names used to decompose geometry composites.
func WithGeometryNaming(naming GeometryNaming) Option {
	return func(o *options) {
		o.naming = naming
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		ctx:         context.Background(),
		parallelism: 1,
		shardSize:   DefaultShardSize,
		naming:      NamingV2,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) operandName(i int, fallback string) string {
	if i < len(o.operandNames) && o.operandNames[i] != "" {
		return o.operandNames[i]
	}
	return fallback
}

// GeometryNamingOf returns the geometry naming selected by opts.
func GeometryNamingOf(opts ...Option) GeometryNaming {
	return newOptions(opts).naming
}
