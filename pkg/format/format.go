// Package format turns a compiled query into dialect-aware, pretty-printed
// SQL. Formatting is deterministic: identical inputs always produce
// identical output.
package format

import (
	"fmt"
	"strconv"

	"github.com/koskimas/kysely-playground-sub001/pkg/core"
	"github.com/koskimas/kysely-playground-sub001/pkg/dialect"
)

// Error reports a malformed template/parameter pairing or an
// unrepresentable parameter. The formatter fails rather than producing
// incorrect SQL.
type Error struct {
	Msg string
}

func (e *Error) Error() string {
	return "format error: " + e.Msg
}

// Format pretty-prints a compiled query for its dialect. Keyword casing,
// indentation, line width, and parameter inlining follow opts. The query
// must have been compiled for d; formatting against another dialect would
// misread quoting and placeholders.
func Format(q *core.CompiledQuery, d *dialect.Dialect, opts core.FormatOptions) (string, error) {
	if q.Dialect != "" && q.Dialect != d.Name {
		return "", &Error{Msg: fmt.Sprintf("query compiled for dialect %q, formatting requested for %q", q.Dialect, d.Name)}
	}

	toks, err := scanTemplate(q.SQL, d)
	if err != nil {
		return "", err
	}

	placeholders := 0
	for _, t := range toks {
		if t.kind == tokPlaceholder {
			placeholders++
		}
	}
	if placeholders != len(q.Parameters) {
		return "", &Error{Msg: fmt.Sprintf("template has %d placeholders but %d parameters were bound", placeholders, len(q.Parameters))}
	}

	rendered, err := renderToks(toks, q.Parameters, d, opts)
	if err != nil {
		return "", err
	}

	return newPrinter(opts).print(rendered), nil
}

// renderToks applies keyword casing and parameter inlining, tracking
// parenthesis depth for the layout pass.
func renderToks(toks []tok, params []any, d *dialect.Dialect, opts core.FormatOptions) ([]renderedTok, error) {
	out := make([]renderedTok, 0, len(toks))
	depth := 0
	positional := 0

	for _, t := range toks {
		r := renderedTok{kind: t.kind, text: t.text, depth: depth}
		switch t.kind {
		case tokPunct:
			if t.text == ")" {
				depth--
				r.depth = depth
			}
			if t.text == "(" {
				depth++
			}
		case tokWord:
			r.word = t.text
			if _, ok := keywords[t.text]; ok {
				r.text = applyCase(t.text, opts.KeywordCase)
			}
		case tokPlaceholder:
			if opts.InlineParameters {
				idx := t.index
				if idx == 0 {
					positional++
					idx = positional
				}
				if idx < 1 || idx > len(params) {
					return nil, &Error{Msg: fmt.Sprintf("placeholder %s is out of range", t.text)}
				}
				lit, err := renderLiteral(params[idx-1], d, opts)
				if err != nil {
					return nil, err
				}
				r.text = lit
			}
		}
		out = append(out, r)
	}

	if depth != 0 {
		return nil, &Error{Msg: "unbalanced parentheses in template"}
	}
	return out, nil
}

// renderLiteral renders a parameter as a typed SQL literal with
// dialect-correct escaping.
func renderLiteral(v any, d *dialect.Dialect, opts core.FormatOptions) (string, error) {
	switch val := v.(type) {
	case nil:
		return applyCase("null", opts.KeywordCase), nil
	case bool:
		return applyCase(strconv.FormatBool(val), opts.KeywordCase), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case int:
		return strconv.Itoa(val), nil
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	case string:
		return d.QuoteString(val), nil
	default:
		return "", &Error{Msg: fmt.Sprintf("cannot inline parameter of type %T", v)}
	}
}

func applyCase(word string, c core.KeywordCase) string {
	switch c {
	case core.KeywordUpper:
		return upper(word)
	default: // KeywordLower and KeywordPreserve: templates are lowercase
		return word
	}
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
