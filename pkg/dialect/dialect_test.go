package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koskimas/kysely-playground-sub001/pkg/core"
)

func newTestDialect() *Dialect {
	return NewDialect("testdlg").
		Identifiers(`"`, `"`, `""`, core.NormLowercase).
		PlaceholderStyle(core.PlaceholderDollar).
		WithReturning().
		WithReservedWords("user", "order").
		Build()
}

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		quote    [3]string // quote, quoteEnd, escape
		ident    string
		expected string
	}{
		{
			name:     "double quotes",
			quote:    [3]string{`"`, `"`, `""`},
			ident:    "first_name",
			expected: `"first_name"`,
		},
		{
			name:     "embedded quote escaped",
			quote:    [3]string{`"`, `"`, `""`},
			ident:    `we"ird`,
			expected: `"we""ird"`,
		},
		{
			name:     "dotted reference quoted per component",
			quote:    [3]string{`"`, `"`, `""`},
			ident:    "person.id",
			expected: `"person"."id"`,
		},
		{
			name:     "backticks",
			quote:    [3]string{"`", "`", "``"},
			ident:    "first_name",
			expected: "`first_name`",
		},
		{
			name:     "brackets",
			quote:    [3]string{"[", "]", "]]"},
			ident:    "first_name",
			expected: "[first_name]",
		},
		{
			name:     "closing bracket escaped",
			quote:    [3]string{"[", "]", "]]"},
			ident:    "odd]name",
			expected: "[odd]]name]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDialect("t").
				Identifiers(tt.quote[0], tt.quote[1], tt.quote[2], core.NormCaseSensitive).
				Build()
			assert.Equal(t, tt.expected, d.QuoteIdentifier(tt.ident))
		})
	}
}

func TestQuoteString(t *testing.T) {
	plain := NewDialect("plain").Build()
	assert.Equal(t, `'hello'`, plain.QuoteString("hello"))
	assert.Equal(t, `'O''Brien'`, plain.QuoteString("O'Brien"))
	assert.Equal(t, `'a\b'`, plain.QuoteString(`a\b`))

	backslash := NewDialect("bs").WithBackslashEscapes().Build()
	assert.Equal(t, `'a\\b'`, backslash.QuoteString(`a\b`))
	assert.Equal(t, `'O''Brien'`, backslash.QuoteString("O'Brien"))
}

func TestFormatPlaceholder(t *testing.T) {
	tests := []struct {
		style    core.PlaceholderStyle
		index    int
		expected string
	}{
		{core.PlaceholderQuestion, 1, "?"},
		{core.PlaceholderQuestion, 3, "?"},
		{core.PlaceholderDollar, 1, "$1"},
		{core.PlaceholderDollar, 12, "$12"},
		{core.PlaceholderAt, 1, "@p1"},
		{core.PlaceholderAt, 4, "@p4"},
	}

	for _, tt := range tests {
		d := NewDialect("t").PlaceholderStyle(tt.style).Build()
		assert.Equal(t, tt.expected, d.FormatPlaceholder(tt.index))
	}
}

func TestNormalizeName(t *testing.T) {
	lower := NewDialect("l").Identifiers(`"`, `"`, `""`, core.NormLowercase).Build()
	assert.Equal(t, "name", lower.NormalizeName("NAME"))

	upper := NewDialect("u").Identifiers(`"`, `"`, `""`, core.NormUppercase).Build()
	assert.Equal(t, "NAME", upper.NormalizeName("name"))

	sensitive := NewDialect("s").Identifiers(`"`, `"`, `""`, core.NormCaseSensitive).Build()
	assert.Equal(t, "NaMe", sensitive.NormalizeName("NaMe"))
}

func TestIsReservedWord(t *testing.T) {
	d := newTestDialect()

	assert.True(t, d.IsReservedWord("user"))
	assert.True(t, d.IsReservedWord("USER"), "normalization should apply before lookup")
	assert.True(t, d.IsReservedWord("order"))
	assert.False(t, d.IsReservedWord("first_name"))
}

func TestRegistry(t *testing.T) {
	d := newTestDialect()
	Register(d)

	got, ok := Get("testdlg")
	require.True(t, ok)
	assert.Same(t, d, got)

	// Lookup is case-insensitive
	got, ok = Get("TestDlg")
	require.True(t, ok)
	assert.Same(t, d, got)

	_, ok = Get("no-such-dialect")
	assert.False(t, ok)

	assert.Contains(t, List(), "testdlg")
}

func TestConfig(t *testing.T) {
	d := newTestDialect()
	cfg := d.Config()

	assert.Equal(t, "testdlg", cfg.Name)
	assert.Equal(t, core.PlaceholderDollar, cfg.Placeholder)
	assert.True(t, cfg.SupportsReturning)
	assert.Len(t, cfg.ReservedWords, 2)
}
