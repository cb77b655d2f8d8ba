// Package syntax defines the boundary with the external structural parser:
// declaration records, raw-text tokens, and the closed vocabularies both
// sides agree on. The core never parses source structure itself; it only
// consumes the index handed over here.
package syntax

import (
	"strings"

	"github.com/standardbeagle/declgraph/internal/types"
)

// Declaration kinds emitted by the structural parser. Function-like kinds
// use the "decl.function." prefix and are always discarded by the walker.
const (
	KindClass           = "decl.class"
	KindStruct          = "decl.struct"
	KindEnum            = "decl.enum"
	KindProtocol        = "decl.protocol"
	KindExtension       = "decl.extension"
	KindExtensionClass  = "decl.extension.class"
	KindExtensionStruct = "decl.extension.struct"
	KindExtensionEnum   = "decl.extension.enum"
	KindEnumCase        = "decl.enumcase"
	KindVarInstance     = "decl.var.instance"
	KindVarStatic       = "decl.var.static"
	KindVarClass        = "decl.var.class"
	KindVarLocal        = "decl.var.local"
	KindVarParameter    = "decl.var.parameter"

	FunctionKindPrefix = "decl.function."
)

// AccessPrefix is the fixed prefix carried by accessibility strings on the
// wire; the core strips it before interpreting the level.
const AccessPrefix = "access."

// Token kinds the alias resolver recognizes; every other tag is ignored.
const (
	TokenKeyword        = "keyword"
	TokenTypeIdentifier = "typeidentifier"
)

// InheritedType is one entry of a declaration's inheritance clause.
type InheritedType struct {
	Name string `json:"name"`
}

// Declaration is one node of the structural parser's output. All offsets are
// byte offsets into the source text the index was produced from.
type Declaration struct {
	Kind       string `json:"kind"`
	Offset     int    `json:"offset"`
	Length     int    `json:"length"`
	NameOffset int    `json:"nameOffset"`
	NameLength int    `json:"nameLength"`
	BodyOffset int    `json:"bodyOffset,omitempty"`
	BodyLength int    `json:"bodyLength,omitempty"`

	Accessibility       string          `json:"accessibility,omitempty"`
	SetterAccessibility string          `json:"setterAccessibility,omitempty"`
	TypeName            string          `json:"typeName,omitempty"`
	InheritedTypes      []InheritedType `json:"inheritedTypes,omitempty"`
	Substructure        []*Declaration  `json:"substructure,omitempty"`
}

// Name extracts the declaration's name from its name span over the source.
func (d *Declaration) Name(source string) string {
	return Slice(source, d.NameOffset, d.NameLength)
}

// AccessLevel strips the wire prefix and returns the declared access level.
// The second result is false when the record carries no accessibility, which
// callers treat as a missing required field.
func (d *Declaration) AccessLevel() (types.AccessLevel, bool) {
	return parseAccess(d.Accessibility)
}

// SetterAccessLevel is the setter counterpart of AccessLevel.
func (d *Declaration) SetterAccessLevel() (types.AccessLevel, bool) {
	return parseAccess(d.SetterAccessibility)
}

func parseAccess(raw string) (types.AccessLevel, bool) {
	if raw == "" {
		return types.AccessNone, false
	}
	level := types.AccessLevel(strings.TrimPrefix(raw, AccessPrefix))
	switch level {
	case types.AccessOpen, types.AccessPublic, types.AccessInternal,
		types.AccessFilePrivate, types.AccessPrivate:
		return level, true
	}
	return types.AccessNone, false
}

// IsFunctionKind reports whether the kind tag is an opaque function kind.
func IsFunctionKind(kind string) bool {
	return strings.HasPrefix(kind, FunctionKindPrefix)
}

// Token is one entry of the flat token stream over the raw source text.
type Token struct {
	Kind   string `json:"kind"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

// Text reads the token's span from the given text, which may be a blanked
// copy of the original source.
func (t Token) Text(text string) string {
	return Slice(text, t.Offset, t.Length)
}

// Index is the full structural-parser output for one source unit.
type Index struct {
	Declarations []*Declaration `json:"declarations"`
	Tokens       []Token        `json:"tokens"`
}

// Slice returns source[offset:offset+length], clamped so that records with
// out-of-range spans degrade to an empty string instead of panicking.
func Slice(source string, offset, length int) string {
	if offset < 0 || length <= 0 || offset >= len(source) {
		return ""
	}
	end := offset + length
	if end > len(source) {
		end = len(source)
	}
	return source[offset:end]
}
