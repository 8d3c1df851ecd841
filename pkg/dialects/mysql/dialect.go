// Package mysql provides the MySQL dialect definition.
package mysql

import (
	"github.com/koskimas/kysely-playground-sub001/pkg/core"
	"github.com/koskimas/kysely-playground-sub001/pkg/dialect"
)

func init() {
	dialect.Register(MySQL)
}

var mysqlReservedWords = []string{
	"select", "from", "where", "order", "group", "table", "index", "key",
	"add", "all", "alter", "and", "as", "asc", "between", "by", "case",
	"change", "check", "column", "create", "cross", "database", "default",
	"delete", "desc", "distinct", "drop", "else", "exists", "false", "for",
	"foreign", "full", "having", "in", "inner", "insert", "interval",
	"into", "is", "join", "left", "like", "limit", "not", "null", "on",
	"or", "outer", "primary", "references", "right", "set", "show", "then",
	"to", "true", "union", "unique", "update", "using", "values", "when",
	"with",
}

// MySQL is the MySQL dialect: backtick-quoted identifiers, ? placeholders,
// backslash escapes in string literals, no RETURNING clause.
var MySQL = dialect.NewDialect("mysql").
	Identifiers("`", "`", "``", core.NormCaseSensitive).
	PlaceholderStyle(core.PlaceholderQuestion).
	KeywordCase(core.KeywordLower).
	WithBackslashEscapes().
	WithReservedWords(mysqlReservedWords...).
	Build()
