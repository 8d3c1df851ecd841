package format

import (
	"strconv"
	"strings"

	"github.com/koskimas/kysely-playground-sub001/pkg/dialect"
)

// tokKind classifies template tokens.
type tokKind int

const (
	tokWord tokKind = iota // bare word: keyword, operator, number
	tokIdent               // quoted identifier, delimiters included
	tokString              // string literal, quotes included
	tokPlaceholder         // ?, $N, or @pN
	tokPunct               // ( ) ,
)

// tok is one lexical unit of a SQL template.
type tok struct {
	kind tokKind
	text string
	// index is the 1-based parameter index for numbered placeholders,
	// 0 for positional (?) placeholders.
	index int
}

// scanTemplate splits a compiled SQL template into tokens, respecting the
// dialect's identifier quoting and placeholder style. It never interprets
// the SQL; it only needs enough structure to find keywords, placeholders,
// and clause boundaries outside quoted regions.
func scanTemplate(template string, d *dialect.Dialect) ([]tok, error) {
	var toks []tok
	quote := d.Identifiers.Quote
	quoteEnd := d.Identifiers.QuoteEnd

	i := 0
	for i < len(template) {
		c := template[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			i++

		case strings.HasPrefix(template[i:], quote):
			end, err := scanDelimited(template, i+len(quote), quoteEnd, d.Identifiers.Escape)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok{kind: tokIdent, text: template[i:end]})
			i = end

		case c == '\'':
			end, err := scanStringLiteral(template, i+1, d.BackslashEscapes)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok{kind: tokString, text: template[i:end]})
			i = end

		case c == '?':
			toks = append(toks, tok{kind: tokPlaceholder, text: "?"})
			i++

		case c == '$' && i+1 < len(template) && isDigit(template[i+1]):
			j := i + 1
			for j < len(template) && isDigit(template[j]) {
				j++
			}
			n, _ := strconv.Atoi(template[i+1 : j])
			toks = append(toks, tok{kind: tokPlaceholder, text: template[i:j], index: n})
			i = j

		case c == '@' && i+2 < len(template) && template[i+1] == 'p' && isDigit(template[i+2]):
			j := i + 2
			for j < len(template) && isDigit(template[j]) {
				j++
			}
			n, _ := strconv.Atoi(template[i+2 : j])
			toks = append(toks, tok{kind: tokPlaceholder, text: template[i:j], index: n})
			i = j

		case c == '(' || c == ')' || c == ',':
			toks = append(toks, tok{kind: tokPunct, text: string(c)})
			i++

		default:
			j := i
			for j < len(template) && !isWordBreak(template, j, quote) {
				j++
			}
			toks = append(toks, tok{kind: tokWord, text: template[i:j]})
			i = j
		}
	}
	return toks, nil
}

// scanDelimited advances past a quoted identifier that started at the quote
// delimiter, returning the index just past the closing delimiter.
func scanDelimited(s string, start int, quoteEnd, escape string) (int, error) {
	i := start
	for i < len(s) {
		if strings.HasPrefix(s[i:], escape) && escape != "" {
			i += len(escape)
			continue
		}
		if strings.HasPrefix(s[i:], quoteEnd) {
			return i + len(quoteEnd), nil
		}
		i++
	}
	return 0, &Error{Msg: "unterminated quoted identifier in template"}
}

// scanStringLiteral advances past a single-quoted literal, handling doubled
// quotes and, when backslash is true, backslash escapes.
func scanStringLiteral(s string, start int, backslash bool) (int, error) {
	i := start
	for i < len(s) {
		switch {
		case backslash && s[i] == '\\' && i+1 < len(s):
			i += 2
		case s[i] == '\'' && i+1 < len(s) && s[i+1] == '\'':
			i += 2
		case s[i] == '\'':
			return i + 1, nil
		default:
			i++
		}
	}
	return 0, &Error{Msg: "unterminated string literal in template"}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWordBreak(s string, i int, quote string) bool {
	c := s[i]
	if c == ' ' || c == '\t' || c == '\n' || c == '(' || c == ')' || c == ',' || c == '\'' || c == '?' {
		return true
	}
	return strings.HasPrefix(s[i:], quote)
}
