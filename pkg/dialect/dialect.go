// Package dialect provides SQL dialect configuration for the playground.
//
// This package contains the public contract for dialect definitions used by
// the query builder and the formatter. Concrete dialect implementations are
// registered from pkg/dialects/*/ packages.
package dialect

import (
	"strconv"
	"strings"

	"github.com/koskimas/kysely-playground-sub001/pkg/core"
)

// Dialect represents a SQL dialect configuration.
type Dialect struct {
	Name        string
	Identifiers core.IdentifierConfig

	// Placeholder defines how query parameters are formatted
	Placeholder core.PlaceholderStyle

	// DefaultKeywordCase is the keyword casing this dialect conventionally uses
	DefaultKeywordCase core.KeywordCase

	// SupportsReturning reports whether INSERT ... RETURNING is valid
	SupportsReturning bool

	// BackslashEscapes reports whether backslash escapes apply inside
	// string literals
	BackslashEscapes bool

	reservedWords map[string]struct{}
}

// Config returns the pure data configuration for this dialect.
func (d *Dialect) Config() *core.DialectConfig {
	reserved := make([]string, 0, len(d.reservedWords))
	for w := range d.reservedWords {
		reserved = append(reserved, w)
	}
	return &core.DialectConfig{
		Name:               d.Name,
		Identifiers:        d.Identifiers,
		Placeholder:        d.Placeholder,
		DefaultKeywordCase: d.DefaultKeywordCase,
		SupportsReturning:  d.SupportsReturning,
		BackslashEscapes:   d.BackslashEscapes,
		ReservedWords:      reserved,
	}
}

// NormalizeName normalizes an identifier according to dialect rules.
func (d *Dialect) NormalizeName(name string) string {
	switch d.Identifiers.Normalization {
	case core.NormUppercase:
		return strings.ToUpper(name)
	case core.NormLowercase:
		return strings.ToLower(name)
	default: // NormCaseSensitive
		return name
	}
}

// IsReservedWord returns true if the word needs quoting when used as an identifier.
func (d *Dialect) IsReservedWord(word string) bool {
	_, ok := d.reservedWords[d.NormalizeName(word)]
	return ok
}

// QuoteIdentifier quotes an identifier using the dialect's quote characters.
// Dotted references ("t.col") are quoted per component.
func (d *Dialect) QuoteIdentifier(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return d.QuoteIdentifier(name[:i]) + "." + d.QuoteIdentifier(name[i+1:])
	}
	// Escape any existing quote end characters in the name (e.g., ] -> ]])
	escaped := strings.ReplaceAll(name, d.Identifiers.QuoteEnd, d.Identifiers.Escape)
	return d.Identifiers.Quote + escaped + d.Identifiers.QuoteEnd
}

// QuoteString renders a string value as a SQL literal with dialect-correct
// escaping.
func (d *Dialect) QuoteString(s string) string {
	escaped := strings.ReplaceAll(s, "'", "''")
	if d.BackslashEscapes {
		escaped = strings.ReplaceAll(escaped, `\`, `\\`)
	}
	return "'" + escaped + "'"
}

// FormatPlaceholder returns a placeholder for the given parameter index (1-based).
// Returns "?" for PlaceholderQuestion style, "$1", "$2" etc. for
// PlaceholderDollar, and "@p1", "@p2" etc. for PlaceholderAt.
func (d *Dialect) FormatPlaceholder(index int) string {
	switch d.Placeholder {
	case core.PlaceholderDollar:
		return "$" + strconv.Itoa(index)
	case core.PlaceholderAt:
		return "@p" + strconv.Itoa(index)
	default: // PlaceholderQuestion
		return "?"
	}
}

// GetName returns the dialect name.
// This method allows Dialect to satisfy interfaces that require Name() string.
func (d *Dialect) GetName() string {
	return d.Name
}

// Builder provides a fluent API for constructing dialects.
type Builder struct {
	dialect *Dialect
}

// NewDialect creates a new dialect builder with the given name.
func NewDialect(name string) *Builder {
	return &Builder{
		dialect: &Dialect{
			Name: name,
			Identifiers: core.IdentifierConfig{
				Quote:         `"`,
				QuoteEnd:      `"`,
				Escape:        `""`,
				Normalization: core.NormLowercase,
			},
			reservedWords: make(map[string]struct{}),
		},
	}
}

// Identifiers configures identifier quoting and normalization.
func (b *Builder) Identifiers(quote, quoteEnd, escape string, norm core.NormalizationStrategy) *Builder {
	b.dialect.Identifiers = core.IdentifierConfig{
		Quote:         quote,
		QuoteEnd:      quoteEnd,
		Escape:        escape,
		Normalization: norm,
	}
	return b
}

// PlaceholderStyle sets how query parameters are formatted.
func (b *Builder) PlaceholderStyle(style core.PlaceholderStyle) *Builder {
	b.dialect.Placeholder = style
	return b
}

// KeywordCase sets the dialect's conventional keyword casing.
func (b *Builder) KeywordCase(c core.KeywordCase) *Builder {
	b.dialect.DefaultKeywordCase = c
	return b
}

// WithReturning marks the dialect as supporting INSERT ... RETURNING.
func (b *Builder) WithReturning() *Builder {
	b.dialect.SupportsReturning = true
	return b
}

// WithBackslashEscapes marks string literals as backslash-escaped.
func (b *Builder) WithBackslashEscapes() *Builder {
	b.dialect.BackslashEscapes = true
	return b
}

// WithReservedWords registers words that need quoting when used as identifiers.
func (b *Builder) WithReservedWords(words ...string) *Builder {
	for _, w := range words {
		b.dialect.reservedWords[b.dialect.NormalizeName(w)] = struct{}{}
	}
	return b
}

// Build returns the constructed dialect.
func (b *Builder) Build() *Dialect {
	return b.dialect
}
