package core

// KeywordCase controls how SQL keywords are rendered by the formatter.
type KeywordCase int

const (
	// KeywordLower renders keywords in lowercase.
	KeywordLower KeywordCase = iota
	// KeywordUpper renders keywords in uppercase.
	KeywordUpper
	// KeywordPreserve leaves keywords as the builder emitted them.
	KeywordPreserve
)

// String returns the case name used in configuration files.
func (c KeywordCase) String() string {
	switch c {
	case KeywordUpper:
		return "upper"
	case KeywordPreserve:
		return "preserve"
	default:
		return "lower"
	}
}

// ParseKeywordCase maps a configuration string to a KeywordCase.
// Unrecognized values fall back to KeywordLower.
func ParseKeywordCase(s string) KeywordCase {
	switch s {
	case "upper", "UPPER":
		return KeywordUpper
	case "preserve":
		return KeywordPreserve
	default:
		return KeywordLower
	}
}

// FormatOptions controls how a compiled query is pretty-printed.
type FormatOptions struct {
	// Indent is the number of spaces per indentation level.
	Indent int

	// KeywordCase controls keyword rendering.
	KeywordCase KeywordCase

	// LineWidth is the column budget before the formatter breaks a
	// statement across multiple lines. Zero means always multi-line.
	LineWidth int

	// InlineParameters substitutes literal values for placeholders
	// instead of retaining placeholder syntax.
	InlineParameters bool
}

// DefaultFormatOptions returns the options used when the caller supplies
// none: two-space indent, lowercase keywords, 80-column budget,
// placeholders retained.
func DefaultFormatOptions() FormatOptions {
	return FormatOptions{
		Indent:      2,
		KeywordCase: KeywordLower,
		LineWidth:   80,
	}
}
