// Package postgres provides the PostgreSQL dialect definition.
// This package is pure Go with no database driver dependencies.
package postgres

import (
	"github.com/koskimas/kysely-playground-sub001/pkg/core"
	"github.com/koskimas/kysely-playground-sub001/pkg/dialect"
)

func init() {
	dialect.Register(Postgres)
}

// postgresReservedWords contains common PostgreSQL reserved words.
// This is a manually maintained list of frequently problematic identifiers.
var postgresReservedWords = []string{
	"user", "order", "group", "table", "select", "from", "where", "index",
	"all", "and", "any", "array", "as", "asc", "between", "both", "case",
	"cast", "check", "column", "constraint", "create", "cross", "default",
	"desc", "distinct", "do", "else", "end", "except", "false", "fetch",
	"for", "foreign", "full", "grant", "having", "ilike", "in", "inner",
	"intersect", "into", "is", "join", "lateral", "leading", "left", "like",
	"limit", "natural", "not", "null", "offset", "on", "only", "or",
	"outer", "primary", "references", "returning", "right", "some", "then",
	"to", "true", "union", "unique", "using", "when", "window", "with",
}

// Postgres is the PostgreSQL dialect: double-quoted identifiers, $N
// placeholders, RETURNING supported.
var Postgres = dialect.NewDialect("postgres").
	Identifiers(`"`, `"`, `""`, core.NormLowercase).
	PlaceholderStyle(core.PlaceholderDollar).
	KeywordCase(core.KeywordLower).
	WithReturning().
	WithReservedWords(postgresReservedWords...).
	Build()
