package walker

import (
	"strings"

	"github.com/standardbeagle/declgraph/internal/syntax"
	"github.com/standardbeagle/declgraph/internal/types"
)

// aliasKeyword introduces an alias declaration in the source text.
const aliasKeyword = "typealias"

// span is a byte range over the source text.
type span struct {
	offset int
	length int
}

func (s span) contains(tok syntax.Token) bool {
	return tok.Offset >= s.offset && tok.Offset+tok.Length <= s.offset+s.length
}

// blankSpans replaces the given byte ranges with spaces, preserving length
// and line breaks. Blanking is how nested declarations' aliases are kept
// out of the enclosing scope's pass: a claimed keyword token reads back as
// whitespace and no longer matches.
func blankSpans(source string, spans []span) string {
	if len(spans) == 0 {
		return source
	}
	buf := []byte(source)
	for _, s := range spans {
		start := s.offset
		if start < 0 {
			start = 0
		}
		end := s.offset + s.length
		if end > len(buf) {
			end = len(buf)
		}
		for i := start; i < end; i++ {
			if buf[i] != '\n' {
				buf[i] = ' '
			}
		}
	}
	return string(buf)
}

// extractAliases scans the token stream over blanked text for alias
// declarations. With a nil scope it covers the whole source unit; otherwise
// only tokens inside the scope's byte range are considered. Aliases
// preceded by a private or file-scoped access keyword are skipped.
func (w *Walker) extractAliases(blanked string, scope *span, containing *types.Type) []*types.Typealias {
	var out []*types.Typealias

	toks := w.tokens
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		if scope != nil && !scope.contains(tok) {
			continue
		}
		if tok.Kind != syntax.TokenKeyword || tok.Text(blanked) != aliasKeyword {
			continue
		}
		if i > 0 && toks[i-1].Kind == syntax.TokenKeyword {
			switch toks[i-1].Text(blanked) {
			case string(types.AccessPrivate), string(types.AccessFilePrivate):
				continue
			}
		}
		if i+2 >= len(toks) {
			continue
		}

		name := toks[i+1].Text(blanked)

		// The target may be a qualified reference: contiguous type
		// identifier tokens join into a dotted name.
		var parts []string
		j := i + 2
		for ; j < len(toks) && toks[j].Kind == syntax.TokenTypeIdentifier; j++ {
			parts = append(parts, toks[j].Text(blanked))
		}
		if name == "" || len(parts) == 0 {
			continue
		}

		alias := &types.Typealias{
			AliasName:  name,
			TargetName: strings.Join(parts, "."),
		}
		if containing != nil {
			alias.ParentName = containing.Name
		}
		out = append(out, alias)
		i = j - 1
	}
	return out
}
