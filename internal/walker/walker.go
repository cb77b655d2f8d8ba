// Package walker drives the single depth-first pass over the structural
// parser's declaration tree, turning records into typed entities and
// collecting typealias declarations at the correct nesting level.
package walker

import (
	"github.com/standardbeagle/declgraph/internal/annotations"
	"github.com/standardbeagle/declgraph/internal/syntax"
	"github.com/standardbeagle/declgraph/internal/types"
)

// DiagFunc receives verbose diagnostics. A nil function discards them.
type DiagFunc func(format string, args ...interface{})

// Result is the unresolved output of one walk: every constructed Type
// (nested ones included, in declaration order) and the source unit's
// top-level typealiases.
type Result struct {
	Types       []*types.Type
	Typealiases []*types.Typealias
}

// Walker visits a declaration tree for a single source unit.
type Walker struct {
	source string
	file   *annotations.File
	tokens []syntax.Token
	diag   DiagFunc
}

// New creates a walker over one source unit. file must be the classified
// view of source, and tokens the structural parser's flat token stream.
func New(source string, file *annotations.File, tokens []syntax.Token, diag DiagFunc) *Walker {
	if diag == nil {
		diag = func(string, ...interface{}) {}
	}
	return &Walker{
		source: source,
		file:   file,
		tokens: tokens,
		diag:   diag,
	}
}

// Walk visits the given top-level declaration records and extracts global
// typealiases from the text left over once every constructed type has
// claimed its byte range.
func (w *Walker) Walk(decls []*syntax.Declaration) *Result {
	res := &Result{}

	var claimed []span
	for _, d := range decls {
		if w.walkDecl(d, nil, nil, res) {
			claimed = append(claimed, span{d.Offset, d.Length})
		}
	}

	blanked := blankSpans(w.source, claimed)
	res.Typealiases = w.extractAliases(blanked, nil, nil)
	return res
}

// walkDecl converts one record into an entity and attaches it to its
// container. It returns true when the node constructed a Type, in which
// case the node's byte range is claimed and must be blanked out of the
// enclosing alias pass.
func (w *Walker) walkDecl(d *syntax.Declaration, parent *types.Type, parentDecl *syntax.Declaration, res *Result) bool {
	if _, ok := typeKinds[d.Kind]; ok {
		t := w.buildType(d, parent)
		if t == nil {
			return false
		}
		res.Types = append(res.Types, t)
		if parent != nil {
			t.Containing = parent
			parent.ContainedTypes = append(parent.ContainedTypes, t)
		}

		var childClaims []span
		for _, child := range d.Substructure {
			if w.walkDecl(child, t, d, res) {
				childClaims = append(childClaims, span{child.Offset, child.Length})
			}
		}

		// Nested declarations have claimed their ranges; whatever typealias
		// text survives the blanking belongs to this type.
		blanked := blankSpans(w.source, childClaims)
		body := span{d.BodyOffset, d.BodyLength}
		for _, alias := range w.extractAliases(blanked, &body, t) {
			if t.Typealiases == nil {
				t.Typealiases = make(map[string]*types.Typealias)
			}
			t.Typealiases[alias.AliasName] = alias
		}
		return true
	}

	switch d.Kind {
	case syntax.KindVarInstance, syntax.KindVarStatic, syntax.KindVarClass:
		v := w.buildVariable(d)
		if v == nil {
			return false
		}
		if parent == nil {
			w.diag("dropping variable %q declared outside any type", v.Name)
			return false
		}
		parent.Variables = append(parent.Variables, v)
		if parent.Kind == types.KindEnum && v.Name == rawValueMemberName && !v.IsStatic {
			w.deriveRawType(parent, parentDecl, v)
		}

	case syntax.KindEnumCase:
		c := w.buildCase(d)
		if c == nil {
			return false
		}
		if parent == nil || parent.Kind != types.KindEnum {
			w.diag("dropping enum case %q declared outside an enum", c.Name)
			return false
		}
		parent.Cases = append(parent.Cases, c)

	case syntax.KindVarLocal, syntax.KindVarParameter:
		// Not user-visible declarations.

	default:
		if !syntax.IsFunctionKind(d.Kind) {
			w.diag("skipping declaration of unrecognized kind %q", d.Kind)
		}
	}
	return false
}
