package types

import "encoding/json"

// Type represents a named declarative unit: class, struct, enum, protocol,
// or extension. Extensions are transient; the unifier merges them into the
// canonical type of the same resolved name and discards them.
type Type struct {
	Name           string                `json:"name"` // qualified by the containing type, if any
	LocalName      string                `json:"localName"`
	Kind           TypeKind              `json:"kind"`
	AccessLevel    AccessLevel           `json:"accessLevel"`
	IsExtension    bool                  `json:"isExtension,omitempty"`
	IsGeneric      bool                  `json:"isGeneric,omitempty"`
	InheritedTypes []string              `json:"inheritedTypes,omitempty"`
	Variables      []*Variable           `json:"variables,omitempty"`
	ContainedTypes []*Type               `json:"containedTypes,omitempty"`
	Cases          []*EnumCase           `json:"cases,omitempty"` // enums only
	RawTypeName    string                `json:"rawTypeName,omitempty"`
	Typealiases    map[string]*Typealias `json:"typealiases,omitempty"`
	Annotations    Annotations           `json:"annotations,omitempty"`

	// Containing is a non-owning back-reference used for alias-qualification
	// lookups; ownership runs forward through ContainedTypes only.
	Containing *Type `json:"-"`
}

// QualifiedName builds the global name of a declaration local to parent.
func QualifiedName(parent *Type, localName string) string {
	if parent == nil {
		return localName
	}
	return parent.Name + "." + localName
}

// ContainsNestedType reports whether name refers to one of the type's
// directly contained types, by local or qualified name.
func (t *Type) ContainsNestedType(name string) *Type {
	for _, nested := range t.ContainedTypes {
		if nested.LocalName == name || nested.Name == name {
			return nested
		}
	}
	return nil
}

// Extend merges an extension declaration into the canonical type: members,
// contained types, cases, aliases, annotations, and inherited type names are
// unioned; scalar facts of the canonical declaration win.
func (t *Type) Extend(other *Type) {
	t.Variables = append(t.Variables, other.Variables...)
	t.Cases = append(t.Cases, other.Cases...)
	for _, nested := range other.ContainedTypes {
		nested.Containing = t
		t.ContainedTypes = append(t.ContainedTypes, nested)
	}
	for _, inherited := range other.InheritedTypes {
		if !containsString(t.InheritedTypes, inherited) {
			t.InheritedTypes = append(t.InheritedTypes, inherited)
		}
	}
	for name, alias := range other.Typealiases {
		if t.Typealiases == nil {
			t.Typealiases = make(map[string]*Typealias)
		}
		if _, ok := t.Typealiases[name]; !ok {
			t.Typealiases[name] = alias
		}
	}
	if t.Annotations == nil {
		t.Annotations = Annotations{}
	}
	t.Annotations.MergeMissing(other.Annotations)
	if t.RawTypeName == "" {
		t.RawTypeName = other.RawTypeName
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// Variable is a member variable of a Type.
type Variable struct {
	Name        string      `json:"name"`
	TypeName    string      `json:"typeName"`
	ReadAccess  AccessLevel `json:"readAccess"`
	WriteAccess AccessLevel `json:"writeAccess,omitempty"`
	IsComputed  bool        `json:"isComputed,omitempty"`
	IsStatic    bool        `json:"isStatic,omitempty"`
	Annotations Annotations `json:"annotations,omitempty"`

	// Type is the resolved canonical type, set during unification. It stays
	// nil when the declared type name matches no known type; that is not an
	// error.
	Type *Type `json:"-"`
}

// MarshalJSON emits the resolved type as a name reference instead of the
// full object, which would otherwise recurse through member back-links.
func (v *Variable) MarshalJSON() ([]byte, error) {
	type alias Variable
	out := struct {
		*alias
		ResolvedTypeName string `json:"resolvedTypeName,omitempty"`
	}{alias: (*alias)(v)}
	if v.Type != nil {
		out.ResolvedTypeName = v.Type.Name
	}
	return json.Marshal(out)
}

// EnumCase is a single case of an enum, with an optional raw literal value
// and ordered associated values.
type EnumCase struct {
	Name             string             `json:"name"`
	RawValue         string             `json:"rawValue,omitempty"`
	AssociatedValues []*AssociatedValue `json:"associatedValues,omitempty"`
	Annotations      Annotations        `json:"annotations,omitempty"`
}

// AssociatedValue is one component of an enum case's payload.
type AssociatedValue struct {
	Label    string `json:"label,omitempty"`
	TypeName string `json:"typeName"`
}

// Typealias is an alias declaration, possibly nested inside a type. It lives
// only until the unifier has flattened all chains.
type Typealias struct {
	AliasName  string `json:"aliasName"`
	TargetName string `json:"targetName"`
	ParentName string `json:"parentName,omitempty"`
}

// Name returns the alias lookup key: bare for global aliases, qualified by
// the containing type otherwise.
func (t *Typealias) Name() string {
	if t.ParentName == "" {
		return t.AliasName
	}
	return t.ParentName + "." + t.AliasName
}
