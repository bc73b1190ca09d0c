// Package filter selects and orders table rows before they are reshaped.
package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"slices"
	"strings"

	"github.com/itchyny/gojq"

	"github.com/salmonumbrella/reshape-cli/internal/table"
)

// Predicate is a compiled jq expression evaluated against one row at a time.
type Predicate struct {
	expr string
	code *gojq.Code
}

// Compile parses and compiles a jq expression. The row is the input value.
func Compile(expr string) (*Predicate, error) {
	parsed, err := gojq.Parse(expr)
	if err != nil {
		return nil, table.InvalidArgumentError{Message: fmt.Sprintf("invalid filter %q: %v", expr, err)}
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, table.InvalidArgumentError{Message: fmt.Sprintf("invalid filter %q: %v", expr, err)}
	}
	return &Predicate{expr: expr, code: code}, nil
}

// Match reports whether the first value the expression yields for row is
// truthy in the jq sense (anything but false and null). An expression that
// yields nothing does not match.
func (p *Predicate) Match(ctx context.Context, row table.Row) (bool, error) {
	iter := p.code.RunWithContext(ctx, RowValue(row))
	v, ok := iter.Next()
	if !ok {
		return false, nil
	}
	if err, isErr := v.(error); isErr {
		return false, fmt.Errorf("filter %q: %w", p.expr, err)
	}
	return v != nil && v != false, nil
}

// Where returns a copy of t holding only the rows expr matches.
func Where(ctx context.Context, t *table.Table, expr string) (*table.Table, error) {
	if strings.TrimSpace(expr) == "" {
		return t.Clone(), nil
	}
	p, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	out := t.Clone()
	var matchErr error
	out.FilterRows(func(r table.Row) bool {
		if matchErr != nil {
			return false
		}
		ok, err := p.Match(ctx, r)
		if err != nil {
			matchErr = err
			return false
		}
		return ok
	})
	if matchErr != nil {
		return nil, matchErr
	}
	return out, nil
}

// Mapper is a compiled jq expression that computes a new cell from a row.
// The row is the input value and the current cell is bound to $value.
type Mapper struct {
	expr string
	code *gojq.Code
}

// CompileMapper parses and compiles a mapping expression.
func CompileMapper(expr string) (*Mapper, error) {
	parsed, err := gojq.Parse(expr)
	if err != nil {
		return nil, table.InvalidArgumentError{Message: fmt.Sprintf("invalid map expression %q: %v", expr, err)}
	}
	code, err := gojq.Compile(parsed, gojq.WithVariables([]string{"$value"}))
	if err != nil {
		return nil, table.InvalidArgumentError{Message: fmt.Sprintf("invalid map expression %q: %v", expr, err)}
	}
	return &Mapper{expr: expr, code: code}, nil
}

// Eval returns the first value the expression yields, or nil when it yields
// nothing. Objects and arrays are rejected since cells hold scalars.
func (m *Mapper) Eval(ctx context.Context, row table.Row, value any) (any, error) {
	iter := m.code.RunWithContext(ctx, RowValue(row), Value(value))
	v, ok := iter.Next()
	if !ok {
		return nil, nil
	}
	if err, isErr := v.(error); isErr {
		return nil, fmt.Errorf("map %q: %w", m.expr, err)
	}
	switch x := v.(type) {
	case nil, bool, string, float64:
		return x, nil
	case int:
		return int64(x), nil
	case *big.Int:
		if x.IsInt64() {
			return x.Int64(), nil
		}
		f, _ := new(big.Float).SetInt(x).Float64()
		return f, nil
	case map[string]any:
		return nil, table.InvalidArgumentError{Message: fmt.Sprintf("map %q produced an object, want a scalar", m.expr)}
	case []any:
		return nil, table.InvalidArgumentError{Message: fmt.Sprintf("map %q produced an array, want a scalar", m.expr)}
	default:
		return table.Text(x), nil
	}
}

// MapColumn returns a copy of t with every cell under column replaced by the
// result of expr. Rows are read before the column is rewritten, so the
// expression sees the original values.
func MapColumn(ctx context.Context, t *table.Table, column, expr string) (*table.Table, error) {
	if err := t.Require(column); err != nil {
		return nil, err
	}
	m, err := CompileMapper(expr)
	if err != nil {
		return nil, err
	}
	out := t.Clone()
	for i := 0; i < out.Len(); i++ {
		row := out.Row(i)
		v, err := m.Eval(ctx, row, row[column])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if err := out.Set(i, column, v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Sort returns a copy of t stably sorted by keys. The first key is the
// primary one; ties fall through to the following keys.
func Sort(t *table.Table, keys []string, desc bool) (*table.Table, error) {
	if err := t.Require(keys...); err != nil {
		return nil, err
	}
	out := t.Clone()
	reversed := slices.Clone(keys)
	slices.Reverse(reversed)
	for _, k := range reversed {
		out.SortBy(k, desc)
	}
	return out, nil
}

// RowValue converts a row into a value gojq accepts.
func RowValue(row table.Row) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = Value(v)
	}
	return out
}

// Rows converts every row of t into gojq values, in order.
func Rows(t *table.Table) []any {
	rows := t.Rows()
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = RowValue(r)
	}
	return out
}

// Value converts a cell into one of the types gojq understands: nil, bool,
// int, float64, string, []any or map[string]any.
func Value(v any) any {
	switch x := v.(type) {
	case nil, bool, int, float64, string:
		return x
	case int8:
		return int(x)
	case int16:
		return int(x)
	case int32:
		return int(x)
	case int64:
		if x >= math.MinInt && x <= math.MaxInt {
			return int(x)
		}
		return float64(x)
	case uint8:
		return int(x)
	case uint16:
		return int(x)
	case uint32:
		return int(x)
	case uint:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Value(i)
		}
		f, _ := x.Float64()
		return f
	case []string:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Value(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = Value(e)
		}
		return out
	default:
		return table.Text(x)
	}
}
