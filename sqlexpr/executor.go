package sqlexpr

import (
	"context"
	"fmt"
	"time"

	"colhash/core"
	"colhash/functions"
	"colhash/vectorized"
)

// Source supplies named input columns, e.g. a core.ParquetReader
type Source interface {
	ReadColumns(names ...string) ([]*vectorized.Vector, error)
}

// Result holds the projected columns in select-list order
type Result struct {
	Names   []string
	Columns []*vectorized.Vector
}

// Executor evaluates parsed projections with a function registry
type Executor struct {
	registry *functions.Registry
	cache    *PlanCache
	opts     []vectorized.Option
}

// NewExecutor creates an executor with a default plan cache; opts are passed
// to every function call
func NewExecutor(registry *functions.Registry, opts ...vectorized.Option) *Executor {
	return &Executor{
		registry: registry,
		cache:    NewPlanCache(DefaultCacheConfig()),
		opts:     opts,
	}
}

// Cache returns the executor's plan cache
func (e *Executor) Cache() *PlanCache {
	return e.cache
}

// Execute parses sql, reusing a cached parse when available, and evaluates it against src
func (e *Executor) Execute(ctx context.Context, sql string, src Source) (*Result, error) {
	query, ok := e.cache.Get(sql)
	if !ok {
		var err error
		if query, err = Parse(sql); err != nil {
			return nil, err
		}
		e.cache.Put(query)
	}
	return e.Run(ctx, query, src)
}

// Run evaluates a parsed query against src. Source columns are read once.
func (e *Executor) Run(ctx context.Context, query *Query, src Source) (*Result, error) {
	tracer := core.GetTracer()
	startTime := time.Now()

	names := query.Columns()
	loaded, err := src.ReadColumns(names...)
	if err != nil {
		return nil, err
	}
	columns := make(map[string]*vectorized.Vector, len(names))
	for i, name := range names {
		columns[name] = loaded[i]
	}

	result := &Result{}
	used := make(map[string]int)
	for _, p := range query.Projections {
		out, err := e.project(ctx, p, columns)
		if err != nil {
			return nil, err
		}
		result.Names = append(result.Names, uniqueName(p.OutputName(), used))
		result.Columns = append(result.Columns, out)
	}

	tracer.Info(core.TraceComponentSQL, "Projection evaluated", core.TraceContext(
		"sql", query.RawSQL,
		"columns", result.Names,
		"elapsed_ms", time.Since(startTime).Milliseconds(),
	))
	return result, nil
}

func (e *Executor) project(ctx context.Context, p *Projection, columns map[string]*vectorized.Vector) (*vectorized.Vector, error) {
	if p.Function == "" {
		return columns[p.Args[0].Column], nil
	}

	args := make([]*vectorized.Vector, len(p.Args))
	for i, a := range p.Args {
		if a.Kind == ColumnArg {
			args[i] = columns[a.Column]
			continue
		}
		v, err := constVector(a.Const)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Function, err)
		}
		args[i] = v
	}

	cfg := functions.Config{}
	if len(p.Kwargs) > 0 {
		var err error
		if cfg, err = functions.ConfigOf(p.Kwargs); err != nil {
			return nil, err
		}
	}
	return e.registry.Invoke(ctx, p.Function, args, cfg, e.opts...)
}

// constVector wraps a literal as a one-row column, which operations broadcast
func constVector(value interface{}) (*vectorized.Vector, error) {
	switch v := value.(type) {
	case nil:
		return vectorized.FromOptional([]*int64{nil}), nil
	case int64:
		return vectorized.FromSlice([]int64{v}), nil
	case float64:
		return vectorized.FromSlice([]float64{v}), nil
	case string:
		return vectorized.FromSlice([]string{v}), nil
	case bool:
		return vectorized.FromSlice([]bool{v}), nil
	default:
		return nil, fmt.Errorf("unsupported constant %v", value)
	}
}

func uniqueName(name string, used map[string]int) string {
	n := used[name]
	used[name] = n + 1
	if n == 0 {
		return name
	}
	return fmt.Sprintf("%s_%d", name, n)
}
