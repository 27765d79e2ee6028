// Package sqlexpr evaluates SQL projection lists of registry functions,
// e.g. SELECT md5(name) AS h, ghash_encode(coords, 7) FROM t.
package sqlexpr

import (
	"fmt"
	"strconv"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// ArgKind distinguishes column references from literal constants
type ArgKind int

const (
	ColumnArg ArgKind = iota
	ConstArg
)

// Arg is one positional argument of a projected function call.
// Const holds an int64, float64, string, bool or nil (SQL NULL).
type Arg struct {
	Kind   ArgKind
	Column string
	Const  interface{}
}

// Projection is one SELECT target: a function call or a bare column
type Projection struct {
	Function string
	Args     []Arg
	Kwargs   map[string]interface{}
	Alias    string
}

// OutputName is the alias when given, else the function or column name
func (p *Projection) OutputName() string {
	if p.Alias != "" {
		return p.Alias
	}
	if p.Function != "" {
		return p.Function
	}
	if len(p.Args) == 1 {
		return p.Args[0].Column
	}
	return "?column?"
}

// Query is a parsed projection over a single source
type Query struct {
	RawSQL      string
	Source      string
	Projections []*Projection
}

// Columns returns the distinct source columns the query references, in first-use order
func (q *Query) Columns() []string {
	seen := make(map[string]bool)
	var names []string
	for _, p := range q.Projections {
		for _, a := range p.Args {
			if a.Kind == ColumnArg && !seen[a.Column] {
				seen[a.Column] = true
				names = append(names, a.Column)
			}
		}
	}
	return names
}

// Parse parses a SELECT statement whose targets are function calls or columns
func Parse(sql string) (*Query, error) {
	result, err := pg_query.Parse(sql)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SQL: %w", err)
	}
	if len(result.Stmts) != 1 {
		return nil, fmt.Errorf("expected one statement, found %d", len(result.Stmts))
	}

	stmt := result.Stmts[0].Stmt.GetSelectStmt()
	if stmt == nil {
		return nil, fmt.Errorf("unsupported statement type")
	}
	if stmt.WhereClause != nil || len(stmt.GroupClause) > 0 || len(stmt.SortClause) > 0 ||
		stmt.LimitCount != nil || stmt.WithClause != nil || stmt.Op != pg_query.SetOperation_SETOP_NONE {
		return nil, fmt.Errorf("only plain projections are supported")
	}

	query := &Query{RawSQL: sql}
	if len(stmt.FromClause) > 0 {
		rangeVar := stmt.FromClause[0].GetRangeVar()
		if rangeVar == nil || len(stmt.FromClause) > 1 {
			return nil, fmt.Errorf("FROM must name a single source")
		}
		query.Source = rangeVar.Relname
	}

	for i, target := range stmt.TargetList {
		resTarget := target.GetResTarget()
		if resTarget == nil {
			continue
		}
		p, err := parseTarget(resTarget)
		if err != nil {
			return nil, fmt.Errorf("select target %d: %w", i+1, err)
		}
		query.Projections = append(query.Projections, p)
	}
	if len(query.Projections) == 0 {
		return nil, fmt.Errorf("empty select list")
	}
	return query, nil
}

func parseTarget(resTarget *pg_query.ResTarget) (*Projection, error) {
	p := &Projection{Alias: resTarget.Name}
	if resTarget.Val == nil {
		return nil, fmt.Errorf("missing expression")
	}

	if columnRef := resTarget.Val.GetColumnRef(); columnRef != nil {
		name, err := columnName(columnRef)
		if err != nil {
			return nil, err
		}
		p.Args = []Arg{{Kind: ColumnArg, Column: name}}
		return p, nil
	}

	funcCall := resTarget.Val.GetFuncCall()
	if funcCall == nil {
		return nil, fmt.Errorf("expected a function call or a column")
	}
	for _, part := range funcCall.Funcname {
		if str := part.GetString_(); str != nil {
			// function names may be schema-qualified; the registry is flat
			p.Function = strings.ToLower(str.Sval)
		}
	}

	for _, arg := range funcCall.Args {
		if named := arg.GetNamedArgExpr(); named != nil {
			value, err := constValue(named.Arg)
			if err != nil {
				return nil, fmt.Errorf("%s: argument %s: %w", p.Function, named.Name, err)
			}
			if p.Kwargs == nil {
				p.Kwargs = make(map[string]interface{})
			}
			p.Kwargs[named.Name] = value
			continue
		}
		if columnRef := arg.GetColumnRef(); columnRef != nil {
			name, err := columnName(columnRef)
			if err != nil {
				return nil, err
			}
			p.Args = append(p.Args, Arg{Kind: ColumnArg, Column: name})
			continue
		}
		value, err := constValue(arg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Function, err)
		}
		p.Args = append(p.Args, Arg{Kind: ConstArg, Const: value})
	}
	return p, nil
}

func columnName(columnRef *pg_query.ColumnRef) (string, error) {
	if len(columnRef.Fields) != 1 {
		return "", fmt.Errorf("qualified column references are not supported")
	}
	str := columnRef.Fields[0].GetString_()
	if str == nil {
		return "", fmt.Errorf("unsupported column reference")
	}
	return str.Sval, nil
}

func constValue(node *pg_query.Node) (interface{}, error) {
	aConst := node.GetAConst()
	if aConst == nil {
		return nil, fmt.Errorf("expected a column or a constant")
	}
	if aConst.Isnull {
		return nil, nil
	}
	if ival := aConst.GetIval(); ival != nil {
		return int64(ival.Ival), nil
	}
	if fval := aConst.GetFval(); fval != nil {
		// large integers arrive as Fval too
		if n, err := strconv.ParseInt(fval.Fval, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(fval.Fval, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid numeric constant %s", fval.Fval)
		}
		return f, nil
	}
	if sval := aConst.GetSval(); sval != nil {
		return sval.Sval, nil
	}
	if bval := aConst.GetBoolval(); bval != nil {
		return bval.Boolval, nil
	}
	return nil, fmt.Errorf("unsupported constant")
}
