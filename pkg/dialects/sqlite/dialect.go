// Package sqlite provides the SQLite dialect definition.
package sqlite

import (
	"github.com/koskimas/kysely-playground-sub001/pkg/core"
	"github.com/koskimas/kysely-playground-sub001/pkg/dialect"
)

func init() {
	dialect.Register(SQLite)
}

var sqliteReservedWords = []string{
	"select", "from", "where", "order", "group", "table", "index", "abort",
	"add", "all", "alter", "and", "as", "asc", "autoincrement", "between",
	"by", "case", "check", "column", "commit", "create", "cross", "default",
	"delete", "desc", "distinct", "drop", "else", "end", "exists", "for",
	"foreign", "full", "having", "in", "inner", "insert", "into", "is",
	"join", "left", "like", "limit", "not", "null", "offset", "on", "or",
	"outer", "primary", "references", "right", "set", "then", "to",
	"transaction", "union", "unique", "update", "using", "values", "when",
	"with",
}

// SQLite is the SQLite dialect: double-quoted identifiers, ? placeholders,
// RETURNING supported (3.35+).
var SQLite = dialect.NewDialect("sqlite").
	Identifiers(`"`, `"`, `""`, core.NormLowercase).
	PlaceholderStyle(core.PlaceholderQuestion).
	KeywordCase(core.KeywordLower).
	WithReturning().
	WithReservedWords(sqliteReservedWords...).
	Build()
