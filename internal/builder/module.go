// Package builder implements the query-builder module exposed to playground
// source. Each module is bound to a single SQL dialect and contributes a
// closed set of Starlark globals: select_from, insert_into, update,
// delete_from, and the dialect name. Builder values are immutable: every
// chained call returns a new value, so shared prefixes cannot alias.
package builder

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/koskimas/kysely-playground-sub001/pkg/core"
	"github.com/koskimas/kysely-playground-sub001/pkg/dialect"
)

// Compilable is implemented by every builder value that can produce a
// compiled query.
type Compilable interface {
	CompileQuery() (*core.CompiledQuery, error)
}

// Module is the builder API surface for one dialect. It is safe for
// concurrent use: the globals are constructed once and never mutated.
type Module struct {
	dialect     *dialect.Dialect
	predeclared starlark.StringDict
}

// NewModule builds the query-builder module for the given dialect.
func NewModule(d *dialect.Dialect) *Module {
	m := &Module{dialect: d}
	m.predeclared = starlark.StringDict{
		"dialect":     starlark.String(d.Name),
		"select_from": starlark.NewBuiltin("select_from", m.selectFrom),
		"insert_into": starlark.NewBuiltin("insert_into", m.insertInto),
		"update":      starlark.NewBuiltin("update", m.updateTable),
		"delete_from": starlark.NewBuiltin("delete_from", m.deleteFrom),
	}
	return m
}

// Dialect returns the dialect this module compiles for.
func (m *Module) Dialect() *dialect.Dialect {
	return m.dialect
}

// Predeclared returns the module's globals for Starlark execution.
// The returned dict is shared; callers must not mutate it.
func (m *Module) Predeclared() starlark.StringDict {
	return m.predeclared
}

func (m *Module) selectFrom(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var table string
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &table); err != nil {
		return nil, err
	}
	if table == "" {
		return nil, fmt.Errorf("%s: table name is empty", fn.Name())
	}
	return &SelectBuilder{dialect: m.dialect, table: table}, nil
}

func (m *Module) insertInto(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var table string
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &table); err != nil {
		return nil, err
	}
	if table == "" {
		return nil, fmt.Errorf("%s: table name is empty", fn.Name())
	}
	return &InsertBuilder{dialect: m.dialect, table: table}, nil
}

func (m *Module) updateTable(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var table string
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &table); err != nil {
		return nil, err
	}
	if table == "" {
		return nil, fmt.Errorf("%s: table name is empty", fn.Name())
	}
	return &UpdateBuilder{dialect: m.dialect, table: table}, nil
}

func (m *Module) deleteFrom(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var table string
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &table); err != nil {
		return nil, err
	}
	if table == "" {
		return nil, fmt.Errorf("%s: table name is empty", fn.Name())
	}
	return &DeleteBuilder{dialect: m.dialect, table: table}, nil
}
