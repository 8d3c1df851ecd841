package format

import (
	"strings"

	"github.com/koskimas/kysely-playground-sub001/pkg/core"
)

// keywords is the set of bare words the formatter treats as SQL keywords
// for casing purposes. The builder emits templates lowercase, so membership
// is checked against the lowercase form.
var keywords = map[string]struct{}{
	"select": {}, "distinct": {}, "from": {}, "where": {}, "and": {},
	"or": {}, "in": {}, "not": {}, "is": {}, "null": {}, "true": {},
	"false": {}, "like": {}, "ilike": {}, "group": {}, "by": {},
	"having": {}, "order": {}, "asc": {}, "desc": {}, "limit": {},
	"offset": {}, "inner": {}, "left": {}, "join": {}, "on": {},
	"insert": {}, "into": {}, "values": {}, "update": {}, "set": {},
	"delete": {}, "returning": {},
}

// clauseStarters are keywords that begin a new clause at parenthesis
// depth zero.
var clauseStarters = map[string]struct{}{
	"from": {}, "where": {}, "group": {}, "having": {}, "order": {},
	"limit": {}, "offset": {}, "values": {}, "set": {}, "returning": {},
	"inner": {}, "left": {},
}

// subordinateStarters begin a continuation line indented under the current
// clause.
var subordinateStarters = map[string]struct{}{
	"and": {}, "or": {},
}

// printer lays out rendered tokens. Adapted from the statement printer in
// the SQL formatting layer: a buffer plus indentation depth, one clause per
// line in the multi-line layout.
type printer struct {
	opts core.FormatOptions
	out  strings.Builder
}

func newPrinter(opts core.FormatOptions) *printer {
	return &printer{opts: opts}
}

// segment is one clause worth of rendered tokens.
type segment struct {
	toks        []renderedTok
	subordinate bool
}

// renderedTok is a token with its final text (casing and inlining applied).
type renderedTok struct {
	kind tokKind
	text string
	// word is the original lowercase word for keyword classification
	word  string
	depth int
}

// print lays out the rendered tokens and returns the final string.
func (p *printer) print(toks []renderedTok) string {
	segments := splitSegments(toks)

	flat := joinToks(toks)
	if p.opts.LineWidth > 0 && len(flat) <= p.opts.LineWidth {
		return flat
	}

	indent := strings.Repeat(" ", max(p.opts.Indent, 0))
	for i, seg := range segments {
		if i > 0 {
			p.out.WriteByte('\n')
		}
		if seg.subordinate {
			p.out.WriteString(indent)
		}
		p.writeSegment(seg, indent)
	}
	return p.out.String()
}

// writeSegment writes one clause, breaking it after depth-zero commas when
// it overflows the line budget.
func (p *printer) writeSegment(seg segment, indent string) {
	line := joinToks(seg.toks)
	prefix := 0
	if seg.subordinate {
		prefix = len(indent)
	}
	if p.opts.LineWidth <= 0 || prefix+len(line) <= p.opts.LineWidth || !hasTopLevelComma(seg.toks) {
		p.out.WriteString(line)
		return
	}

	// Break after each depth-zero comma; continuation lines get one
	// indent level.
	start := 0
	first := true
	for i, t := range seg.toks {
		if t.kind == tokPunct && t.text == "," && t.depth == 0 {
			p.writeChunk(seg.toks[start:i+1], indent, first)
			first = false
			start = i + 1
		}
	}
	p.writeChunk(seg.toks[start:], indent, first)
}

func (p *printer) writeChunk(toks []renderedTok, indent string, first bool) {
	if len(toks) == 0 {
		return
	}
	if !first {
		p.out.WriteByte('\n')
		p.out.WriteString(indent)
	}
	p.out.WriteString(joinToks(toks))
}

// splitSegments breaks the token stream into clauses.
func splitSegments(toks []renderedTok) []segment {
	var segments []segment
	var current []renderedTok
	subordinate := false

	flush := func() {
		if len(current) > 0 {
			segments = append(segments, segment{toks: current, subordinate: subordinate})
			current = nil
		}
	}

	for i, t := range toks {
		if i > 0 && t.kind == tokWord && t.depth == 0 {
			if _, ok := clauseStarters[t.word]; ok {
				flush()
				subordinate = false
			} else if _, ok := subordinateStarters[t.word]; ok {
				flush()
				subordinate = true
			}
		}
		current = append(current, t)
	}
	flush()
	return segments
}

// joinToks renders tokens on a single line: single spaces between tokens,
// except none before "," and ")" and none after "(".
func joinToks(toks []renderedTok) string {
	var sb strings.Builder
	for i, t := range toks {
		if i > 0 && needSpace(toks[i-1], t) {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.text)
	}
	return sb.String()
}

func needSpace(prev, next renderedTok) bool {
	if next.kind == tokPunct && (next.text == "," || next.text == ")") {
		return false
	}
	if prev.kind == tokPunct && prev.text == "(" {
		return false
	}
	return true
}

func hasTopLevelComma(toks []renderedTok) bool {
	for _, t := range toks {
		if t.kind == tokPunct && t.text == "," && t.depth == 0 {
			return true
		}
	}
	return false
}
