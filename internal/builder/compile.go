package builder

import (
	"fmt"
	"strings"

	"github.com/koskimas/kysely-playground-sub001/pkg/core"
	"github.com/koskimas/kysely-playground-sub001/pkg/dialect"
)

// sqlWriter accumulates a SQL template and its ordered parameters.
// Keywords are emitted lowercase; the formatter applies casing later.
type sqlWriter struct {
	d      *dialect.Dialect
	sb     strings.Builder
	params []any
}

func newSQLWriter(d *dialect.Dialect) *sqlWriter {
	return &sqlWriter{d: d}
}

func (w *sqlWriter) write(s string) {
	w.sb.WriteString(s)
}

// param binds a value and returns its placeholder.
func (w *sqlWriter) param(v any) string {
	w.params = append(w.params, v)
	return w.d.FormatPlaceholder(len(w.params))
}

func (w *sqlWriter) ident(name string) string {
	return w.d.QuoteIdentifier(name)
}

func (w *sqlWriter) query(dialectName string) *core.CompiledQuery {
	return &core.CompiledQuery{
		SQL:        w.sb.String(),
		Parameters: append([]any(nil), w.params...),
		Dialect:    dialectName,
	}
}

// writeConditions renders a predicate chain. The first condition's
// conjunction is ignored.
func writeConditions(w *sqlWriter, conds []condition) error {
	for i, c := range conds {
		if i > 0 {
			w.write(" " + c.conj + " ")
		}
		switch c.op {
		case "in", "not in":
			vals, ok := c.val.([]any)
			if !ok {
				return fmt.Errorf("operator %q requires a list value, got %T", c.op, c.val)
			}
			if len(vals) == 0 {
				return fmt.Errorf("operator %q requires a non-empty list", c.op)
			}
			w.write(w.ident(c.col) + " " + c.op + " (")
			for j, v := range vals {
				if j > 0 {
					w.write(", ")
				}
				w.write(w.param(v))
			}
			w.write(")")
		case "is", "is not":
			// null and booleans render literally; parameters make no
			// sense on the right-hand side of IS
			switch v := c.val.(type) {
			case nil:
				w.write(w.ident(c.col) + " " + c.op + " null")
			case bool:
				w.write(fmt.Sprintf("%s %s %t", w.ident(c.col), c.op, v))
			default:
				return fmt.Errorf("operator %q requires None or a boolean, got %T", c.op, c.val)
			}
		default:
			w.write(w.ident(c.col) + " " + c.op + " " + w.param(c.val))
		}
	}
	return nil
}

// CompileQuery compiles the select statement.
func (b *SelectBuilder) CompileQuery() (*core.CompiledQuery, error) {
	if len(b.columns) == 0 && !b.selectAll {
		return nil, fmt.Errorf("select list is empty: call select() or select_all()")
	}

	w := newSQLWriter(b.dialect)
	w.write("select ")
	if b.distinct {
		w.write("distinct ")
	}
	if b.selectAll {
		w.write("*")
	} else {
		for i, col := range b.columns {
			if i > 0 {
				w.write(", ")
			}
			w.write(w.ident(col))
		}
	}
	w.write(" from " + w.ident(b.table))

	for _, j := range b.joins {
		w.write(" " + j.kind + " join " + w.ident(j.table))
		w.write(" on " + w.ident(j.left) + " = " + w.ident(j.right))
	}

	if len(b.wheres) > 0 {
		w.write(" where ")
		if err := writeConditions(w, b.wheres); err != nil {
			return nil, err
		}
	}

	if len(b.groupBy) > 0 {
		w.write(" group by ")
		for i, col := range b.groupBy {
			if i > 0 {
				w.write(", ")
			}
			w.write(w.ident(col))
		}
	}

	if len(b.havings) > 0 {
		if len(b.groupBy) == 0 {
			return nil, fmt.Errorf("having requires group_by")
		}
		w.write(" having ")
		if err := writeConditions(w, b.havings); err != nil {
			return nil, err
		}
	}

	if len(b.orderBys) > 0 {
		w.write(" order by ")
		for i, o := range b.orderBys {
			if i > 0 {
				w.write(", ")
			}
			w.write(w.ident(o.col) + " " + o.dir)
		}
	}

	if b.limit != nil {
		w.write(fmt.Sprintf(" limit %d", *b.limit))
	}
	if b.offset != nil {
		w.write(fmt.Sprintf(" offset %d", *b.offset))
	}

	return w.query(b.dialect.Name), nil
}

// CompileQuery compiles the insert statement.
func (b *InsertBuilder) CompileQuery() (*core.CompiledQuery, error) {
	if len(b.rows) == 0 {
		return nil, fmt.Errorf("insert has no rows: call values()")
	}
	if len(b.returning) > 0 && !b.dialect.SupportsReturning {
		return nil, fmt.Errorf("returning is not supported by dialect %q", b.dialect.Name)
	}

	w := newSQLWriter(b.dialect)
	w.write("insert into " + w.ident(b.table) + " (")
	for i, col := range b.columns {
		if i > 0 {
			w.write(", ")
		}
		w.write(w.ident(col))
	}
	w.write(") values ")
	for i, row := range b.rows {
		if i > 0 {
			w.write(", ")
		}
		w.write("(")
		for j, v := range row {
			if j > 0 {
				w.write(", ")
			}
			w.write(w.param(v))
		}
		w.write(")")
	}

	if len(b.returning) > 0 {
		w.write(" returning ")
		for i, col := range b.returning {
			if i > 0 {
				w.write(", ")
			}
			w.write(w.ident(col))
		}
	}

	return w.query(b.dialect.Name), nil
}

// CompileQuery compiles the update statement.
func (b *UpdateBuilder) CompileQuery() (*core.CompiledQuery, error) {
	if len(b.setCols) == 0 {
		return nil, fmt.Errorf("update has no assignments: call set()")
	}

	w := newSQLWriter(b.dialect)
	w.write("update " + w.ident(b.table) + " set ")
	for i, col := range b.setCols {
		if i > 0 {
			w.write(", ")
		}
		w.write(w.ident(col) + " = " + w.param(b.setVals[i]))
	}

	if len(b.wheres) > 0 {
		w.write(" where ")
		if err := writeConditions(w, b.wheres); err != nil {
			return nil, err
		}
	}

	return w.query(b.dialect.Name), nil
}

// CompileQuery compiles the delete statement.
func (b *DeleteBuilder) CompileQuery() (*core.CompiledQuery, error) {
	w := newSQLWriter(b.dialect)
	w.write("delete from " + w.ident(b.table))

	if len(b.wheres) > 0 {
		w.write(" where ")
		if err := writeConditions(w, b.wheres); err != nil {
			return nil, err
		}
	}

	return w.query(b.dialect.Name), nil
}
