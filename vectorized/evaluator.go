package vectorized

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Codec transforms the operand of one row. Returning ok=false yields a null row.
type Codec[A, R any] func(a A) (r R, ok bool, err error)

// Codec2 transforms the two operands of one row.
type Codec2[A, B, R any] func(a A, b B) (r R, ok bool, err error)

// Codec3 transforms the three operands of one row.
type Codec3[A, B, C, R any] func(a A, b B, c C) (r R, ok bool, err error)

// Total adapts an infallible scalar function to a Codec
func Total[A, R any](f func(A) R) Codec[A, R] {
	return func(a A) (R, bool, error) {
		return f(a), true, nil
	}
}

// Fallible adapts a scalar function that may fail to a Codec
func Fallible[A, R any](f func(A) (R, error)) Codec[A, R] {
	return func(a A) (R, bool, error) {
		r, err := f(a)
		return r, err == nil, err
	}
}

// Unary applies codec to every row of in.
func Unary[A, R Primitive](in *Vector, policy NullPolicy, codec Codec[A, R], opts ...Option) (*Vector, error) {
	o := newOptions(opts)
	values, err := Values[A](in)
	if err != nil {
		return nil, InvalidOperation("%v", err)
	}

	n := in.Length
	out := make([]R, n)
	missing := make([]bool, n)
	err = run(n, o, func(i int) error {
		if in.IsNull(i) {
			if policy == Propagate {
				missing[i] = true
				return nil
			}
			return missingOperandError(i, 0, []operand{{name: o.operandName(0, "input")}})
		}
		r, ok, err := codec(values[i])
		if err != nil {
			return ComputeError(i, err)
		}
		if !ok {
			missing[i] = true
			return nil
		}
		out[i] = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newResult(out, missing), nil
}

// Binary applies codec to the rows of two equal-length columns.
func Binary[A, B, R Primitive](a, b *Vector, policy NullPolicy, codec Codec2[A, B, R], opts ...Option) (*Vector, error) {
	o := newOptions(opts)
	if err := checkLengths(a.Length, b.Length); err != nil {
		return nil, err
	}
	av, err := Values[A](a)
	if err != nil {
		return nil, InvalidOperation("%v", err)
	}
	bv, err := Values[B](b)
	if err != nil {
		return nil, InvalidOperation("%v", err)
	}

	n := a.Length
	out := make([]R, n)
	missing := make([]bool, n)
	err = run(n, o, func(i int) error {
		aOK, bOK := !a.IsNull(i), !b.IsNull(i)
		if m := firstMissing(aOK, bOK); m >= 0 {
			if policy == Propagate {
				missing[i] = true
				return nil
			}
			return missingOperandError(i, m, []operand{
				{name: o.operandName(0, "left"), value: av[i], valid: aOK},
				{name: o.operandName(1, "right"), value: bv[i], valid: bOK},
			})
		}
		r, ok, err := codec(av[i], bv[i])
		if err != nil {
			return ComputeError(i, err)
		}
		if !ok {
			missing[i] = true
			return nil
		}
		out[i] = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newResult(out, missing), nil
}

// BinaryParam applies codec to a column and a broadcast or per-row parameter.
func BinaryParam[A, P, R Primitive](a *Vector, p Param[P], policy NullPolicy, codec Codec2[A, P, R], opts ...Option) (*Vector, error) {
	o := newOptions(opts)
	if l := p.length(); l >= 0 {
		if err := checkLengths(a.Length, l); err != nil {
			return nil, err
		}
	}
	av, err := Values[A](a)
	if err != nil {
		return nil, InvalidOperation("%v", err)
	}

	n := a.Length
	out := make([]R, n)
	missing := make([]bool, n)
	err = run(n, o, func(i int) error {
		aOK := !a.IsNull(i)
		pv, pOK := p.at(i)
		if m := firstMissing(aOK, pOK); m >= 0 {
			if policy == Propagate {
				missing[i] = true
				return nil
			}
			return missingOperandError(i, m, []operand{
				{name: o.operandName(0, "input"), value: av[i], valid: aOK},
				{name: p.name, value: pv, valid: pOK},
			})
		}
		r, ok, err := codec(av[i], pv)
		if err != nil {
			return ComputeError(i, err)
		}
		if !ok {
			missing[i] = true
			return nil
		}
		out[i] = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newResult(out, missing), nil
}

// Ternary applies codec to two equal-length columns and a broadcast or per-row
// parameter. A broadcast parameter is never null, so only a and b are checked
// per row; the output is identical to a per-row parameter holding the same value.
func Ternary[A, B, C, R Primitive](a, b *Vector, c Param[C], policy NullPolicy, codec Codec3[A, B, C, R], opts ...Option) (*Vector, error) {
	o := newOptions(opts)
	if err := checkLengths(a.Length, b.Length); err != nil {
		return nil, err
	}
	if l := c.length(); l >= 0 {
		if err := checkLengths(a.Length, l); err != nil {
			return nil, err
		}
	}
	av, err := Values[A](a)
	if err != nil {
		return nil, InvalidOperation("%v", err)
	}
	bv, err := Values[B](b)
	if err != nil {
		return nil, InvalidOperation("%v", err)
	}

	n := a.Length
	out := make([]R, n)
	missing := make([]bool, n)
	err = run(n, o, func(i int) error {
		aOK, bOK := !a.IsNull(i), !b.IsNull(i)
		cv, cOK := c.at(i)
		if m := firstMissing(aOK, bOK, cOK); m >= 0 {
			if policy == Propagate {
				missing[i] = true
				return nil
			}
			return missingOperandError(i, m, []operand{
				{name: o.operandName(0, "first"), value: av[i], valid: aOK},
				{name: o.operandName(1, "second"), value: bv[i], valid: bOK},
				{name: c.name, value: cv, valid: cOK},
			})
		}
		r, ok, err := codec(av[i], bv[i], cv)
		if err != nil {
			return ComputeError(i, err)
		}
		if !ok {
			missing[i] = true
			return nil
		}
		out[i] = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newResult(out, missing), nil
}

// UnaryComposite applies a codec producing len(fields) values per row and
// assembles them into a STRUCT vector with the given field order. A null input
// row makes every field of that row null.
func UnaryComposite[A, R Primitive](in *Vector, fields []string, policy NullPolicy, codec func(A) ([]R, error), opts ...Option) (*Vector, error) {
	o := newOptions(opts)
	values, err := Values[A](in)
	if err != nil {
		return nil, InvalidOperation("%v", err)
	}

	n := in.Length
	outs := make([][]R, len(fields))
	for k := range outs {
		outs[k] = make([]R, n)
	}
	missing := make([]bool, n)
	err = run(n, o, func(i int) error {
		if in.IsNull(i) {
			if policy == Propagate {
				missing[i] = true
				return nil
			}
			return missingOperandError(i, 0, []operand{{name: o.operandName(0, "input")}})
		}
		rs, err := codec(values[i])
		if err != nil {
			return ComputeError(i, err)
		}
		if len(rs) != len(fields) {
			return ComputeError(i, fmt.Errorf("codec returned %d values, expected %d", len(rs), len(fields)))
		}
		for k, r := range rs {
			outs[k][i] = r
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	children := make([]*Vector, len(fields))
	for k := range fields {
		children[k] = newResult(outs[k], missing)
	}
	result, err := Compose(fields, children)
	if err != nil {
		return nil, err
	}
	result.Nulls = nullMaskFromMissing(missing)
	return result, nil
}

func checkLengths(left, right int) error {
	if left != right {
		return InvalidOperation("column lengths differ: %d vs %d", left, right)
	}
	return nil
}

func newResult[R Primitive](out []R, missing []bool) *Vector {
	return &Vector{
		DataType: dataTypeOf[R](),
		Data:     out,
		Length:   len(out),
		Nulls:    nullMaskFromMissing(missing),
	}
}

// run evaluates fn for rows [0, n). With parallelism the range is split into
// shards writing disjoint rows; the error of the lowest failing row is returned.
func run(n int, o *options, fn func(i int) error) error {
	if o.parallelism <= 1 || n <= o.shardSize {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	shards := (n + o.shardSize - 1) / o.shardSize
	errs := make([]error, shards)
	var failed atomic.Int64
	failed.Store(int64(shards))

	g, ctx := errgroup.WithContext(o.ctx)
	g.SetLimit(o.parallelism)
	for s := 0; s < shards; s++ {
		s := s
		g.Go(func() error {
			// A lower shard already failed; its error wins.
			if int64(s) > failed.Load() {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			lo := s * o.shardSize
			hi := min(lo+o.shardSize, n)
			for i := lo; i < hi; i++ {
				if err := fn(i); err != nil {
					errs[s] = err
					for {
						cur := failed.Load()
						if int64(s) >= cur || failed.CompareAndSwap(cur, int64(s)) {
							break
						}
					}
					return nil
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
