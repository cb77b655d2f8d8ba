package types

import (
	"strconv"
	"strings"
)

// AccessLevel is a declaration's visibility, with the wire prefix already
// stripped by the syntax layer.
type AccessLevel string

const (
	AccessOpen        AccessLevel = "open"
	AccessPublic      AccessLevel = "public"
	AccessInternal    AccessLevel = "internal"
	AccessFilePrivate AccessLevel = "fileprivate"
	AccessPrivate     AccessLevel = "private"
	AccessNone        AccessLevel = ""
)

// IsHidden reports whether the level is private or file-scoped. Hidden
// entities are dropped from builder output or filtered from the final graph.
func (a AccessLevel) IsHidden() bool {
	return a == AccessPrivate || a == AccessFilePrivate
}

// TypeKind identifies the declarative unit a Type models.
type TypeKind string

const (
	KindClass     TypeKind = "class"
	KindStruct    TypeKind = "struct"
	KindEnum      TypeKind = "enum"
	KindProtocol  TypeKind = "protocol"
	KindExtension TypeKind = "extension"
)

// Annotations maps a metadata key to a bool, number, or string value parsed
// from structured comments.
type Annotations map[string]interface{}

// Clone returns an independent copy of the annotation set.
func (a Annotations) Clone() Annotations {
	out := make(Annotations, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// MergeMissing inserts entries from other whose keys are not already present.
// Callers apply nearer annotation sources first so that nearer wins.
func (a Annotations) MergeMissing(other Annotations) {
	for k, v := range other {
		if _, ok := a[k]; !ok {
			a[k] = v
		}
	}
}

// ParseAnnotationValue converts the textual right-hand side of a key=value
// annotation: empty means boolean true, numbers become int64/float64, quoted
// strings are unwrapped, anything else stays a raw string.
func ParseAnnotationValue(raw string) interface{} {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return true
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if len(raw) >= 2 {
		if (raw[0] == '"' && raw[len(raw)-1] == '"') || (raw[0] == '\'' && raw[len(raw)-1] == '\'') {
			return raw[1 : len(raw)-1]
		}
	}
	return raw
}
