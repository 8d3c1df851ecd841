// Package mssql provides the SQL Server dialect definition.
package mssql

import (
	"github.com/koskimas/kysely-playground-sub001/pkg/core"
	"github.com/koskimas/kysely-playground-sub001/pkg/dialect"
)

func init() {
	dialect.Register(MSSQL)
}

var mssqlReservedWords = []string{
	"select", "from", "where", "order", "group", "table", "index", "add",
	"all", "alter", "and", "any", "as", "asc", "between", "by", "case",
	"check", "column", "create", "cross", "default", "delete", "desc",
	"distinct", "drop", "else", "end", "exists", "for", "foreign", "full",
	"having", "in", "inner", "insert", "into", "is", "join", "key", "left",
	"like", "not", "null", "on", "or", "outer", "primary", "references",
	"right", "set", "some", "then", "to", "top", "union", "unique",
	"update", "user", "values", "when", "with",
}

// MSSQL is the SQL Server dialect: bracket-quoted identifiers, @pN
// placeholders, uppercase keyword convention.
var MSSQL = dialect.NewDialect("mssql").
	Identifiers("[", "]", "]]", core.NormCaseSensitive).
	PlaceholderStyle(core.PlaceholderAt).
	KeywordCase(core.KeywordUpper).
	WithReservedWords(mssqlReservedWords...).
	Build()
