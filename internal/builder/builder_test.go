package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"

	"github.com/koskimas/kysely-playground-sub001/pkg/core"
	"github.com/koskimas/kysely-playground-sub001/pkg/dialect"
)

func testPostgres() *dialect.Dialect {
	return dialect.NewDialect("postgres").
		Identifiers(`"`, `"`, `""`, core.NormLowercase).
		PlaceholderStyle(core.PlaceholderDollar).
		WithReturning().
		Build()
}

func testMySQL() *dialect.Dialect {
	return dialect.NewDialect("mysql").
		Identifiers("`", "`", "``", core.NormCaseSensitive).
		PlaceholderStyle(core.PlaceholderQuestion).
		WithBackslashEscapes().
		Build()
}

func testMSSQL() *dialect.Dialect {
	return dialect.NewDialect("mssql").
		Identifiers("[", "]", "]]", core.NormCaseSensitive).
		PlaceholderStyle(core.PlaceholderAt).
		Build()
}

// exec runs source against a fresh module for d and returns the globals.
func exec(t *testing.T, d *dialect.Dialect, source string) starlark.StringDict {
	t.Helper()
	m := NewModule(d)
	thread := &starlark.Thread{Name: "test"}
	globals, err := starlark.ExecFile(thread, "test.star", source, m.Predeclared()) //nolint:staticcheck
	require.NoError(t, err)
	return globals
}

// compile runs source and compiles the global named "query".
func compile(t *testing.T, d *dialect.Dialect, source string) *core.CompiledQuery {
	t.Helper()
	globals := exec(t, d, source)
	c, ok := globals["query"].(Compilable)
	require.True(t, ok, "query global is not a builder")
	q, err := c.CompileQuery()
	require.NoError(t, err)
	return q
}

func TestSelectCompile(t *testing.T) {
	tests := []struct {
		name       string
		dialect    *dialect.Dialect
		source     string
		wantSQL    string
		wantParams []any
	}{
		{
			name:    "single column",
			dialect: testPostgres(),
			source:  `query = select_from("table").select("col")`,
			wantSQL: `select "col" from "table"`,
		},
		{
			name:       "columns and where",
			dialect:    testPostgres(),
			source:     `query = select_from("person").select("first_name", "last_name").where("age", ">", 18)`,
			wantSQL:    `select "first_name", "last_name" from "person" where "age" > $1`,
			wantParams: []any{int64(18)},
		},
		{
			name:    "select all distinct",
			dialect: testPostgres(),
			source:  `query = select_from("person").select_all().distinct()`,
			wantSQL: `select distinct * from "person"`,
		},
		{
			name:       "chained conjunctions",
			dialect:    testPostgres(),
			source:     `query = select_from("t").select("a").where("x", "=", 1).or_where("y", "=", 2)`,
			wantSQL:    `select "a" from "t" where "x" = $1 or "y" = $2`,
			wantParams: []any{int64(1), int64(2)},
		},
		{
			name:       "in expands list",
			dialect:    testPostgres(),
			source:     `query = select_from("t").select("a").where("id", "in", [1, 2, 3])`,
			wantSQL:    `select "a" from "t" where "id" in ($1, $2, $3)`,
			wantParams: []any{int64(1), int64(2), int64(3)},
		},
		{
			name:    "is null renders literally",
			dialect: testPostgres(),
			source:  `query = select_from("t").select("a").where("deleted_at", "is", None)`,
			wantSQL: `select "a" from "t" where "deleted_at" is null`,
		},
		{
			name:    "joins with dotted identifiers",
			dialect: testPostgres(),
			source:  `query = select_from("t").select("a").inner_join("u", "t.id", "u.t_id")`,
			wantSQL: `select "a" from "t" inner join "u" on "t"."id" = "u"."t_id"`,
		},
		{
			name:    "order limit offset",
			dialect: testPostgres(),
			source:  `query = select_from("t").select("a").order_by("b", "desc").limit(10).offset(5)`,
			wantSQL: `select "a" from "t" order by "b" desc limit 10 offset 5`,
		},
		{
			name:       "group by and having",
			dialect:    testPostgres(),
			source:     `query = select_from("t").select("a").group_by("a").having("a", ">", 1)`,
			wantSQL:    `select "a" from "t" group by "a" having "a" > $1`,
			wantParams: []any{int64(1)},
		},
		{
			name:       "mysql uses backticks and question marks",
			dialect:    testMySQL(),
			source:     `query = select_from("person").select("name").where("id", "=", 1)`,
			wantSQL:    "select `name` from `person` where `id` = ?",
			wantParams: []any{int64(1)},
		},
		{
			name:       "mssql uses brackets and at placeholders",
			dialect:    testMSSQL(),
			source:     `query = select_from("person").select("name").where("id", "=", 1)`,
			wantSQL:    `select [name] from [person] where [id] = @p1`,
			wantParams: []any{int64(1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := compile(t, tt.dialect, tt.source)
			assert.Equal(t, tt.wantSQL, q.SQL)
			assert.Equal(t, tt.wantParams, q.Parameters)
			assert.Equal(t, tt.dialect.Name, q.Dialect)
		})
	}
}

func TestInsertCompile(t *testing.T) {
	q := compile(t, testPostgres(), `query = insert_into("person").values({"first_name": "Ada", "age": 36})`)
	assert.Equal(t, `insert into "person" ("first_name", "age") values ($1, $2)`, q.SQL)
	assert.Equal(t, []any{"Ada", int64(36)}, q.Parameters)
}

func TestInsertMultiRow(t *testing.T) {
	q := compile(t, testPostgres(), `query = insert_into("t").values({"a": 1}).values({"a": 2})`)
	assert.Equal(t, `insert into "t" ("a") values ($1), ($2)`, q.SQL)
	assert.Equal(t, []any{int64(1), int64(2)}, q.Parameters)
}

func TestInsertReturning(t *testing.T) {
	q := compile(t, testPostgres(), `query = insert_into("person").values({"name": "Ada"}).returning("id")`)
	assert.Equal(t, `insert into "person" ("name") values ($1) returning "id"`, q.SQL)
}

func TestInsertReturningUnsupported(t *testing.T) {
	globals := exec(t, testMySQL(), `query = insert_into("person").values({"name": "Ada"}).returning("id")`)
	_, err := globals["query"].(Compilable).CompileQuery()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returning is not supported")
}

func TestUpdateCompile(t *testing.T) {
	q := compile(t, testPostgres(), `query = update("person").set({"name": "Ada"}).where("id", "=", 7)`)
	assert.Equal(t, `update "person" set "name" = $1 where "id" = $2`, q.SQL)
	assert.Equal(t, []any{"Ada", int64(7)}, q.Parameters)
}

func TestDeleteCompile(t *testing.T) {
	q := compile(t, testPostgres(), `query = delete_from("person").where("id", "=", 7)`)
	assert.Equal(t, `delete from "person" where "id" = $1`, q.SQL)
	assert.Equal(t, []any{int64(7)}, q.Parameters)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr string
	}{
		{
			name:    "empty select list",
			source:  `query = select_from("t")`,
			wantErr: "select list is empty",
		},
		{
			name:    "having without group by",
			source:  `query = select_from("t").select("a").having("a", ">", 1)`,
			wantErr: "having requires group_by",
		},
		{
			name:    "empty in list",
			source:  `query = select_from("t").select("a").where("id", "in", [])`,
			wantErr: "non-empty list",
		},
		{
			name:    "is with non-boolean value",
			source:  `query = select_from("t").select("a").where("x", "is", 5)`,
			wantErr: "requires None or a boolean",
		},
		{
			name:    "insert without rows",
			source:  `query = insert_into("t")`,
			wantErr: "no rows",
		},
		{
			name:    "update without assignments",
			source:  `query = update("t").where("id", "=", 1)`,
			wantErr: "no assignments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			globals := exec(t, testPostgres(), tt.source)
			_, err := globals["query"].(Compilable).CompileQuery()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuilderAPIErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{name: "empty table name", source: `query = select_from("")`},
		{name: "unknown operator", source: `query = select_from("t").select("a").where("x", "~~", 1)`},
		{name: "bad order direction", source: `query = select_from("t").select("a").order_by("b", "sideways")`},
		{name: "negative limit", source: `query = select_from("t").select("a").limit(-1)`},
		{name: "mismatched insert columns", source: `query = insert_into("t").values({"a": 1}).values({"b": 2})`},
		{name: "unsupported parameter type", source: `query = select_from("t").select("a").where("x", "=", {"k": 1})`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModule(testPostgres())
			thread := &starlark.Thread{Name: "test"}
			_, err := starlark.ExecFile(thread, "test.star", tt.source, m.Predeclared()) //nolint:staticcheck
			require.Error(t, err)
		})
	}
}

// Chaining must never mutate the receiver: two chains sharing a prefix
// compile independently.
func TestBuilderImmutability(t *testing.T) {
	globals := exec(t, testPostgres(), `
base = select_from("t").select("a")
q1 = base.where("x", "=", 1)
q2 = base.where("y", "=", 2)
`)

	q1, err := globals["q1"].(Compilable).CompileQuery()
	require.NoError(t, err)
	q2, err := globals["q2"].(Compilable).CompileQuery()
	require.NoError(t, err)
	base, err := globals["base"].(Compilable).CompileQuery()
	require.NoError(t, err)

	assert.Equal(t, `select "a" from "t" where "x" = $1`, q1.SQL)
	assert.Equal(t, `select "a" from "t" where "y" = $1`, q2.SQL)
	assert.Equal(t, `select "a" from "t"`, base.SQL)
}

func TestDialectGlobal(t *testing.T) {
	globals := exec(t, testMySQL(), `name = dialect`)
	assert.Equal(t, starlark.String("mysql"), globals["name"])
}
