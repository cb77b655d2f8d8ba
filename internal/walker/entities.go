package walker

import (
	"strings"

	"github.com/standardbeagle/declgraph/internal/syntax"
	"github.com/standardbeagle/declgraph/internal/types"
)

const (
	rawValueMemberName  = "rawValue"
	rawValuePlaceholder = "RawValue"
)

type typeKindInfo struct {
	kind        types.TypeKind
	isExtension bool
}

var typeKinds = map[string]typeKindInfo{
	syntax.KindClass:           {types.KindClass, false},
	syntax.KindStruct:          {types.KindStruct, false},
	syntax.KindEnum:            {types.KindEnum, false},
	syntax.KindProtocol:        {types.KindProtocol, false},
	syntax.KindExtension:       {types.KindExtension, true},
	syntax.KindExtensionClass:  {types.KindClass, true},
	syntax.KindExtensionStruct: {types.KindStruct, true},
	syntax.KindExtensionEnum:   {types.KindEnum, true},
}

// buildType constructs a Type from a type-kind declaration record. Records
// missing the name span or accessibility are skipped without error.
func (w *Walker) buildType(d *syntax.Declaration, parent *types.Type) *types.Type {
	info := typeKinds[d.Kind]

	name := d.Name(w.source)
	access, hasAccess := d.AccessLevel()
	if name == "" || !hasAccess {
		w.diag("skipping %s declaration with missing name or accessibility", d.Kind)
		return nil
	}

	t := &types.Type{
		LocalName:   name,
		Name:        types.QualifiedName(parent, name),
		Kind:        info.kind,
		AccessLevel: access,
		IsExtension: info.isExtension,
		IsGeneric:   w.isGeneric(d),
		Annotations: w.file.Resolve(d.Offset),
	}
	for _, inherited := range d.InheritedTypes {
		t.InheritedTypes = append(t.InheritedTypes, inherited.Name)
	}
	return t
}

// isGeneric checks whether the span between the declaration's name and its
// body start opens with an angle bracket.
func (w *Walker) isGeneric(d *syntax.Declaration) bool {
	start := d.NameOffset + d.NameLength
	end := d.BodyOffset
	if end <= 0 {
		end = d.Offset + d.Length
	}
	if end <= start {
		return false
	}
	between := strings.TrimSpace(syntax.Slice(w.source, start, end-start))
	return strings.HasPrefix(between, "<")
}

// buildVariable constructs a member variable. It yields nothing when the
// record lacks a name, accessibility, or declared type name, or when the
// variable is private or file-scoped.
func (w *Walker) buildVariable(d *syntax.Declaration) *types.Variable {
	name := d.Name(w.source)
	access, hasAccess := d.AccessLevel()
	if name == "" || !hasAccess || d.TypeName == "" {
		return nil
	}
	if access.IsHidden() {
		return nil
	}

	v := &types.Variable{
		Name:        name,
		TypeName:    d.TypeName,
		ReadAccess:  access,
		WriteAccess: types.AccessNone,
		IsStatic:    d.Kind == syntax.KindVarStatic || d.Kind == syntax.KindVarClass,
		Annotations: w.file.Resolve(d.Offset),
	}

	// A setter accessibility field means the body span is accessor clauses,
	// not a computed getter.
	if setter, ok := d.SetterAccessLevel(); ok {
		v.WriteAccess = setter
		v.IsComputed = false
	} else {
		v.IsComputed = d.BodyLength > 0
	}
	return v
}

// buildCase constructs an enum case, parsing the text between the end of
// the case name and the end of the declaration for a raw literal value or a
// parenthesized associated-value list.
func (w *Walker) buildCase(d *syntax.Declaration) *types.EnumCase {
	name := d.Name(w.source)
	if name == "" {
		return nil
	}

	c := &types.EnumCase{
		Name:        name,
		Annotations: w.file.Resolve(d.Offset),
	}

	suffixStart := d.NameOffset + d.NameLength
	suffixEnd := d.Offset + d.Length
	suffix := strings.TrimSpace(syntax.Slice(w.source, suffixStart, suffixEnd-suffixStart))
	switch {
	case suffix == "":

	case strings.HasPrefix(suffix, "="):
		c.RawValue = stripQuotes(strings.TrimSpace(suffix[1:]))

	case strings.HasPrefix(suffix, "(") && strings.HasSuffix(suffix, ")"):
		inner := suffix[1 : len(suffix)-1]
		for _, part := range splitTopLevel(inner, ',') {
			pieces := splitTopLevel(part, ':')
			switch len(pieces) {
			case 1:
				c.AssociatedValues = append(c.AssociatedValues, &types.AssociatedValue{
					TypeName: strings.TrimSpace(pieces[0]),
				})
			case 2:
				c.AssociatedValues = append(c.AssociatedValues, &types.AssociatedValue{
					Label:    strings.TrimSpace(pieces[0]),
					TypeName: strings.TrimSpace(pieces[1]),
				})
			default:
				w.diag("unrecognized associated value %q in enum case %s", strings.TrimSpace(part), name)
			}
		}

	default:
		w.diag("unrecognized enum case format for %s: %q", name, suffix)
	}
	return c
}

// deriveRawType sets the enum's raw type from its rawValue member. When the
// member's declared type is the RawValue placeholder, the raw type is the
// target of the first typealias line in the enum's own body.
func (w *Walker) deriveRawType(enum *types.Type, enumDecl *syntax.Declaration, v *types.Variable) {
	if v.TypeName != rawValuePlaceholder {
		enum.RawTypeName = v.TypeName
		return
	}
	if enumDecl == nil {
		return
	}

	body := syntax.Slice(w.source, enumDecl.BodyOffset, enumDecl.BodyLength)
	body = strings.ReplaceAll(body, ";", "\n")
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, aliasKeyword) {
			fields := strings.Fields(line)
			if len(fields) > 1 {
				enum.RawTypeName = fields[len(fields)-1]
			}
			return
		}
	}
}

// splitTopLevel splits s on sep, ignoring separators nested inside
// brackets, parentheses, angle brackets, or quotes.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	inQuote := byte(0)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inQuote != 0 {
			if ch == inQuote {
				inQuote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'':
			inQuote = ch
		case '(', '[', '<', '{':
			depth++
		case ')', ']', '>', '}':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
