package core

// DialectConfig holds the static configuration for a SQL dialect.
// This is pure data with no handler functions.
type DialectConfig struct {
	// Name is the dialect identifier (e.g., "postgres", "mysql")
	Name string

	// Identifiers defines quoting and normalization rules
	Identifiers IdentifierConfig

	// Placeholder defines how query parameters are formatted
	Placeholder PlaceholderStyle

	// DefaultKeywordCase is the casing applied to keywords when the
	// formatter is asked to preserve dialect conventions
	DefaultKeywordCase KeywordCase

	// SupportsReturning reports whether INSERT ... RETURNING is valid
	SupportsReturning bool

	// BackslashEscapes reports whether string literals treat backslash
	// as an escape character (MySQL) rather than a plain character
	BackslashEscapes bool

	// ReservedWords lists identifiers that need quoting
	ReservedWords []string
}

// NormalizationStrategy defines how unquoted identifiers are normalized.
type NormalizationStrategy int

const (
	// NormLowercase normalizes unquoted identifiers to lowercase (default SQL behavior).
	NormLowercase NormalizationStrategy = iota
	// NormUppercase normalizes unquoted identifiers to uppercase.
	NormUppercase
	// NormCaseSensitive preserves identifier case exactly (MySQL).
	NormCaseSensitive
)

// PlaceholderStyle defines how query parameters are formatted.
type PlaceholderStyle int

const (
	// PlaceholderQuestion uses ? for all parameters (MySQL, SQLite).
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar uses $1, $2, etc. for parameters (PostgreSQL).
	PlaceholderDollar
	// PlaceholderAt uses @p1, @p2, etc. for parameters (SQL Server).
	PlaceholderAt
)

// String returns the style name used in configuration files.
func (s PlaceholderStyle) String() string {
	switch s {
	case PlaceholderDollar:
		return "dollar"
	case PlaceholderAt:
		return "at"
	default:
		return "question"
	}
}

// IdentifierConfig defines how identifiers are quoted and normalized.
type IdentifierConfig struct {
	Quote         string                // Quote character: ", `, [
	QuoteEnd      string                // End quote character (usually same as Quote, ] for [)
	Escape        string                // Escape sequence: "", ``, ]]
	Normalization NormalizationStrategy // How to normalize unquoted identifiers
}
