package builder

import (
	"fmt"
	"sort"

	"go.starlark.net/starlark"

	"github.com/koskimas/kysely-playground-sub001/pkg/dialect"
)

// condition is one predicate in a where/having chain.
type condition struct {
	conj string // "and" or "or"
	col  string
	op   string
	val  any
}

// joinClause is one join in a select statement.
type joinClause struct {
	kind  string // "inner" or "left"
	table string
	left  string
	right string
}

// orderClause is one sort key.
type orderClause struct {
	col string
	dir string // "asc" or "desc"
}

// operators is the closed set of comparison operators the builder accepts.
var operators = map[string]struct{}{
	"=": {}, "!=": {}, "<>": {}, "<": {}, "<=": {}, ">": {}, ">=": {},
	"like": {}, "not like": {}, "ilike": {},
	"in": {}, "not in": {},
	"is": {}, "is not": {},
}

// fromStarlark converts a Starlark value to the Go value bound as a query
// parameter. The supported set is deliberately small: strings, ints,
// floats, bools, None, and lists/tuples of the same.
func fromStarlark(v starlark.Value) (any, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.String:
		return string(val), nil
	case starlark.Int:
		i64, ok := val.Int64()
		if !ok {
			return nil, fmt.Errorf("integer %s does not fit in 64 bits", val.String())
		}
		return i64, nil
	case starlark.Float:
		return float64(val), nil
	case starlark.Bool:
		return bool(val), nil
	case *starlark.List:
		result := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			gv, err := fromStarlark(val.Index(i))
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			result[i] = gv
		}
		return result, nil
	case starlark.Tuple:
		result := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			gv, err := fromStarlark(val.Index(i))
			if err != nil {
				return nil, fmt.Errorf("tuple index %d: %w", i, err)
			}
			result[i] = gv
		}
		return result, nil
	default:
		return nil, fmt.Errorf("unsupported parameter type: %s", v.Type())
	}
}

// unpackCondition reads the (column, operator, value) triple shared by
// where, or_where, and having.
func unpackCondition(fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple, conj string) (condition, error) {
	var col, op string
	var raw starlark.Value
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 3, &col, &op, &raw); err != nil {
		return condition{}, err
	}
	if _, ok := operators[op]; !ok {
		return condition{}, fmt.Errorf("%s: unknown operator %q", fn.Name(), op)
	}
	val, err := fromStarlark(raw)
	if err != nil {
		return condition{}, fmt.Errorf("%s: %w", fn.Name(), err)
	}
	return condition{conj: conj, col: col, op: op, val: val}, nil
}

// unpackStrings reads a variadic list of string arguments.
func unpackStrings(fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) ([]string, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: unexpected keyword arguments", fn.Name())
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%s: expected at least one column", fn.Name())
	}
	out := make([]string, len(args))
	for i, a := range args {
		s, ok := starlark.AsString(a)
		if !ok {
			return nil, fmt.Errorf("%s: argument %d must be a string, got %s", fn.Name(), i+1, a.Type())
		}
		out[i] = s
	}
	return out, nil
}

// SelectBuilder builds a select statement. All chaining methods return a
// new builder; the receiver is never mutated.
type SelectBuilder struct {
	dialect   *dialect.Dialect
	table     string
	columns   []string
	selectAll bool
	distinct  bool
	joins     []joinClause
	wheres    []condition
	groupBy   []string
	havings   []condition
	orderBys  []orderClause
	limit     *int64
	offset    *int64
}

var _ starlark.HasAttrs = (*SelectBuilder)(nil)
var _ Compilable = (*SelectBuilder)(nil)

func (b *SelectBuilder) String() string        { return fmt.Sprintf("<select_builder %q>", b.table) }
func (b *SelectBuilder) Type() string          { return "select_builder" }
func (b *SelectBuilder) Freeze()               {} // immutable by construction
func (b *SelectBuilder) Truth() starlark.Bool  { return starlark.True }
func (b *SelectBuilder) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: select_builder") }

func (b *SelectBuilder) clone() *SelectBuilder {
	c := *b
	c.columns = append([]string(nil), b.columns...)
	c.joins = append([]joinClause(nil), b.joins...)
	c.wheres = append([]condition(nil), b.wheres...)
	c.groupBy = append([]string(nil), b.groupBy...)
	c.havings = append([]condition(nil), b.havings...)
	c.orderBys = append([]orderClause(nil), b.orderBys...)
	return &c
}

func (b *SelectBuilder) AttrNames() []string {
	names := []string{
		"distinct", "group_by", "having", "inner_join", "left_join",
		"limit", "offset", "or_where", "order_by", "select", "select_all",
		"where",
	}
	sort.Strings(names)
	return names
}

func (b *SelectBuilder) Attr(name string) (starlark.Value, error) {
	switch name {
	case "select":
		return starlark.NewBuiltin(name, func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			cols, err := unpackStrings(fn, args, kwargs)
			if err != nil {
				return nil, err
			}
			c := b.clone()
			c.columns = append(c.columns, cols...)
			c.selectAll = false
			return c, nil
		}), nil
	case "select_all":
		return starlark.NewBuiltin(name, func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 0); err != nil {
				return nil, err
			}
			c := b.clone()
			c.selectAll = true
			c.columns = nil
			return c, nil
		}), nil
	case "distinct":
		return starlark.NewBuiltin(name, func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 0); err != nil {
				return nil, err
			}
			c := b.clone()
			c.distinct = true
			return c, nil
		}), nil
	case "where", "or_where":
		conj := "and"
		if name == "or_where" {
			conj = "or"
		}
		return starlark.NewBuiltin(name, func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			cond, err := unpackCondition(fn, args, kwargs, conj)
			if err != nil {
				return nil, err
			}
			c := b.clone()
			c.wheres = append(c.wheres, cond)
			return c, nil
		}), nil
	case "inner_join", "left_join":
		kind := "inner"
		if name == "left_join" {
			kind = "left"
		}
		return starlark.NewBuiltin(name, func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var table, left, right string
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 3, &table, &left, &right); err != nil {
				return nil, err
			}
			c := b.clone()
			c.joins = append(c.joins, joinClause{kind: kind, table: table, left: left, right: right})
			return c, nil
		}), nil
	case "group_by":
		return starlark.NewBuiltin(name, func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			cols, err := unpackStrings(fn, args, kwargs)
			if err != nil {
				return nil, err
			}
			c := b.clone()
			c.groupBy = append(c.groupBy, cols...)
			return c, nil
		}), nil
	case "having":
		return starlark.NewBuiltin(name, func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			cond, err := unpackCondition(fn, args, kwargs, "and")
			if err != nil {
				return nil, err
			}
			c := b.clone()
			c.havings = append(c.havings, cond)
			return c, nil
		}), nil
	case "order_by":
		return starlark.NewBuiltin(name, func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var col string
			dir := "asc"
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &col, &dir); err != nil {
				return nil, err
			}
			if dir != "asc" && dir != "desc" {
				return nil, fmt.Errorf("%s: direction must be \"asc\" or \"desc\", got %q", fn.Name(), dir)
			}
			c := b.clone()
			c.orderBys = append(c.orderBys, orderClause{col: col, dir: dir})
			return c, nil
		}), nil
	case "limit", "offset":
		return starlark.NewBuiltin(name, func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var n int64
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &n); err != nil {
				return nil, err
			}
			if n < 0 {
				return nil, fmt.Errorf("%s: value must be non-negative, got %d", fn.Name(), n)
			}
			c := b.clone()
			if fn.Name() == "limit" {
				c.limit = &n
			} else {
				c.offset = &n
			}
			return c, nil
		}), nil
	}
	return nil, nil
}

// InsertBuilder builds an insert statement.
type InsertBuilder struct {
	dialect   *dialect.Dialect
	table     string
	columns   []string // column order taken from the first values() call
	rows      [][]any
	returning []string
}

var _ starlark.HasAttrs = (*InsertBuilder)(nil)
var _ Compilable = (*InsertBuilder)(nil)

func (b *InsertBuilder) String() string        { return fmt.Sprintf("<insert_builder %q>", b.table) }
func (b *InsertBuilder) Type() string          { return "insert_builder" }
func (b *InsertBuilder) Freeze()               {}
func (b *InsertBuilder) Truth() starlark.Bool  { return starlark.True }
func (b *InsertBuilder) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: insert_builder") }

func (b *InsertBuilder) clone() *InsertBuilder {
	c := *b
	c.columns = append([]string(nil), b.columns...)
	c.rows = append([][]any(nil), b.rows...)
	c.returning = append([]string(nil), b.returning...)
	return &c
}

func (b *InsertBuilder) AttrNames() []string {
	return []string{"returning", "values"}
}

func (b *InsertBuilder) Attr(name string) (starlark.Value, error) {
	switch name {
	case "values":
		return starlark.NewBuiltin(name, func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var d *starlark.Dict
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &d); err != nil {
				return nil, err
			}
			cols, row, err := dictRow(fn, d)
			if err != nil {
				return nil, err
			}
			c := b.clone()
			if len(c.rows) == 0 {
				c.columns = cols
			} else if !equalStrings(c.columns, cols) {
				return nil, fmt.Errorf("%s: row columns %v do not match first row %v", fn.Name(), cols, c.columns)
			}
			c.rows = append(c.rows, row)
			return c, nil
		}), nil
	case "returning":
		return starlark.NewBuiltin(name, func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			cols, err := unpackStrings(fn, args, kwargs)
			if err != nil {
				return nil, err
			}
			c := b.clone()
			c.returning = append(c.returning, cols...)
			return c, nil
		}), nil
	}
	return nil, nil
}

// dictRow extracts (columns, values) from a Starlark dict in insertion order.
func dictRow(fn *starlark.Builtin, d *starlark.Dict) ([]string, []any, error) {
	items := d.Items()
	if len(items) == 0 {
		return nil, nil, fmt.Errorf("%s: dict is empty", fn.Name())
	}
	cols := make([]string, len(items))
	vals := make([]any, len(items))
	for i, item := range items {
		key, ok := item[0].(starlark.String)
		if !ok {
			return nil, nil, fmt.Errorf("%s: dict key must be a string, got %s", fn.Name(), item[0].Type())
		}
		gv, err := fromStarlark(item[1])
		if err != nil {
			return nil, nil, fmt.Errorf("%s: column %q: %w", fn.Name(), string(key), err)
		}
		cols[i] = string(key)
		vals[i] = gv
	}
	return cols, vals, nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// UpdateBuilder builds an update statement.
type UpdateBuilder struct {
	dialect *dialect.Dialect
	table   string
	setCols []string
	setVals []any
	wheres  []condition
}

var _ starlark.HasAttrs = (*UpdateBuilder)(nil)
var _ Compilable = (*UpdateBuilder)(nil)

func (b *UpdateBuilder) String() string        { return fmt.Sprintf("<update_builder %q>", b.table) }
func (b *UpdateBuilder) Type() string          { return "update_builder" }
func (b *UpdateBuilder) Freeze()               {}
func (b *UpdateBuilder) Truth() starlark.Bool  { return starlark.True }
func (b *UpdateBuilder) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: update_builder") }

func (b *UpdateBuilder) clone() *UpdateBuilder {
	c := *b
	c.setCols = append([]string(nil), b.setCols...)
	c.setVals = append([]any(nil), b.setVals...)
	c.wheres = append([]condition(nil), b.wheres...)
	return &c
}

func (b *UpdateBuilder) AttrNames() []string {
	return []string{"or_where", "set", "where"}
}

func (b *UpdateBuilder) Attr(name string) (starlark.Value, error) {
	switch name {
	case "set":
		return starlark.NewBuiltin(name, func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var d *starlark.Dict
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &d); err != nil {
				return nil, err
			}
			cols, vals, err := dictRow(fn, d)
			if err != nil {
				return nil, err
			}
			c := b.clone()
			c.setCols = append(c.setCols, cols...)
			c.setVals = append(c.setVals, vals...)
			return c, nil
		}), nil
	case "where", "or_where":
		conj := "and"
		if name == "or_where" {
			conj = "or"
		}
		return starlark.NewBuiltin(name, func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			cond, err := unpackCondition(fn, args, kwargs, conj)
			if err != nil {
				return nil, err
			}
			c := b.clone()
			c.wheres = append(c.wheres, cond)
			return c, nil
		}), nil
	}
	return nil, nil
}

// DeleteBuilder builds a delete statement.
type DeleteBuilder struct {
	dialect *dialect.Dialect
	table   string
	wheres  []condition
}

var _ starlark.HasAttrs = (*DeleteBuilder)(nil)
var _ Compilable = (*DeleteBuilder)(nil)

func (b *DeleteBuilder) String() string        { return fmt.Sprintf("<delete_builder %q>", b.table) }
func (b *DeleteBuilder) Type() string          { return "delete_builder" }
func (b *DeleteBuilder) Freeze()               {}
func (b *DeleteBuilder) Truth() starlark.Bool  { return starlark.True }
func (b *DeleteBuilder) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: delete_builder") }

func (b *DeleteBuilder) clone() *DeleteBuilder {
	c := *b
	c.wheres = append([]condition(nil), b.wheres...)
	return &c
}

func (b *DeleteBuilder) AttrNames() []string {
	return []string{"or_where", "where"}
}

func (b *DeleteBuilder) Attr(name string) (starlark.Value, error) {
	switch name {
	case "where", "or_where":
		conj := "and"
		if name == "or_where" {
			conj = "or"
		}
		return starlark.NewBuiltin(name, func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			cond, err := unpackCondition(fn, args, kwargs, conj)
			if err != nil {
				return nil, err
			}
			c := b.clone()
			c.wheres = append(c.wheres, cond)
			return c, nil
		}), nil
	}
	return nil, nil
}
