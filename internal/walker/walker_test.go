package walker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/declgraph/internal/annotations"
	"github.com/standardbeagle/declgraph/internal/syntax"
	"github.com/standardbeagle/declgraph/internal/types"
	th "github.com/standardbeagle/declgraph/testhelpers"
)

func walk(t *testing.T, src string, decls ...*syntax.Declaration) *Result {
	t.Helper()
	w := New(src, annotations.Classify(src), th.Tokenize(src), nil)
	return w.Walk(decls)
}

func walkDiag(t *testing.T, src string, diags *[]string, decls ...*syntax.Declaration) *Result {
	t.Helper()
	diag := func(format string, args ...interface{}) {
		*diags = append(*diags, fmt.Sprintf(format, args...))
	}
	w := New(src, annotations.Classify(src), th.Tokenize(src), diag)
	return w.Walk(decls)
}

func TestWalkClass(t *testing.T) {
	src := `// declgraph: role=model
public class Box<T> {
    public var value: Int
    private var secret: Int
    public var area: Int { return 1 }
}
`
	classText := src[strings.Index(src, "public class") : strings.LastIndex(src, "}")+1]
	classDecl := th.Decl(t, src, syntax.KindClass, "public", classText, "Box")

	value := th.Decl(t, src, syntax.KindVarInstance, "public", "public var value: Int", "value")
	value.TypeName = "Int"
	secret := th.Decl(t, src, syntax.KindVarInstance, "private", "private var secret: Int", "secret")
	secret.TypeName = "Int"
	area := th.Decl(t, src, syntax.KindVarInstance, "public", "public var area: Int { return 1 }", "area")
	area.TypeName = "Int"
	classDecl.Substructure = []*syntax.Declaration{value, secret, area}

	res := walk(t, src, classDecl)
	require.Len(t, res.Types, 1)

	box := res.Types[0]
	assert.Equal(t, "Box", box.Name)
	assert.Equal(t, types.KindClass, box.Kind)
	assert.Equal(t, types.AccessPublic, box.AccessLevel)
	assert.True(t, box.IsGeneric)
	assert.False(t, box.IsExtension)
	assert.Equal(t, "model", box.Annotations["role"])

	require.Len(t, box.Variables, 2, "hidden members are dropped during construction")
	assert.Equal(t, "value", box.Variables[0].Name)
	assert.False(t, box.Variables[0].IsComputed)
	assert.Equal(t, types.AccessPublic, box.Variables[0].ReadAccess)
	assert.Equal(t, types.AccessNone, box.Variables[0].WriteAccess)

	assert.Equal(t, "area", box.Variables[1].Name)
	assert.True(t, box.Variables[1].IsComputed)
}

func TestWalkNonGenericType(t *testing.T) {
	src := "public struct Point {\n    public var x: Int\n}\n"
	declText := src[:strings.LastIndex(src, "}")+1]
	d := th.Decl(t, src, syntax.KindStruct, "public", declText, "Point")

	res := walk(t, src, d)
	require.Len(t, res.Types, 1)
	assert.Equal(t, types.KindStruct, res.Types[0].Kind)
	assert.False(t, res.Types[0].IsGeneric)
}

func TestWalkTypeMissingAccessibilitySkipped(t *testing.T) {
	src := "class Partial {\n}\n"
	declText := src[:strings.LastIndex(src, "}")+1]
	d := th.Decl(t, src, syntax.KindClass, "", declText, "Partial")

	var diags []string
	res := walkDiag(t, src, &diags, d)
	assert.Empty(t, res.Types)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0], "missing name or accessibility")
}

func TestWalkVariableWithSetter(t *testing.T) {
	src := "public class Counter {\n    public var count: Int { get set }\n}\n"
	classText := src[:strings.LastIndex(src, "}")+1]
	classDecl := th.Decl(t, src, syntax.KindClass, "public", classText, "Counter")

	count := th.Decl(t, src, syntax.KindVarInstance, "public", "public var count: Int { get set }", "count")
	count.TypeName = "Int"
	count.SetterAccessibility = syntax.AccessPrefix + "private"
	classDecl.Substructure = []*syntax.Declaration{count}

	res := walk(t, src, classDecl)
	require.Len(t, res.Types, 1)
	require.Len(t, res.Types[0].Variables, 1)

	v := res.Types[0].Variables[0]
	assert.False(t, v.IsComputed, "a setter means the body is accessor clauses, not a computed getter")
	assert.Equal(t, types.AccessPrivate, v.WriteAccess)
}

func TestWalkStaticVariable(t *testing.T) {
	src := "public class Registry {\n    public static var shared: Registry\n}\n"
	classText := src[:strings.LastIndex(src, "}")+1]
	classDecl := th.Decl(t, src, syntax.KindClass, "public", classText, "Registry")

	shared := th.Decl(t, src, syntax.KindVarStatic, "public", "public static var shared: Registry", "shared")
	shared.TypeName = "Registry"
	classDecl.Substructure = []*syntax.Declaration{shared}

	res := walk(t, src, classDecl)
	require.Len(t, res.Types[0].Variables, 1)
	assert.True(t, res.Types[0].Variables[0].IsStatic)
}

func TestWalkVariableOutsideTypeDropped(t *testing.T) {
	src := "public var orphan: Int\n"
	d := th.Decl(t, src, syntax.KindVarInstance, "public", "public var orphan: Int", "orphan")
	d.TypeName = "Int"

	var diags []string
	res := walkDiag(t, src, &diags, d)
	assert.Empty(t, res.Types)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0], "orphan")
}

func TestWalkEnumCases(t *testing.T) {
	src := `public enum Barcode: Codable {
    case upc(Int, Int)
    case qr(code: String)
    case empty
}
`
	enumText := src[:strings.LastIndex(src, "}")+1]
	enumDecl := th.Decl(t, src, syntax.KindEnum, "public", enumText, "Barcode")
	enumDecl.InheritedTypes = th.Inherited("Codable")
	enumDecl.Substructure = []*syntax.Declaration{
		th.Decl(t, src, syntax.KindEnumCase, "", "case upc(Int, Int)", "upc"),
		th.Decl(t, src, syntax.KindEnumCase, "", "case qr(code: String)", "qr"),
		th.Decl(t, src, syntax.KindEnumCase, "", "case empty", "empty"),
	}

	res := walk(t, src, enumDecl)
	require.Len(t, res.Types, 1)

	barcode := res.Types[0]
	assert.Equal(t, types.KindEnum, barcode.Kind)
	assert.Equal(t, []string{"Codable"}, barcode.InheritedTypes)
	require.Len(t, barcode.Cases, 3)

	upc := barcode.Cases[0]
	require.Len(t, upc.AssociatedValues, 2)
	assert.Equal(t, "", upc.AssociatedValues[0].Label)
	assert.Equal(t, "Int", upc.AssociatedValues[0].TypeName)

	qr := barcode.Cases[1]
	require.Len(t, qr.AssociatedValues, 1)
	assert.Equal(t, "code", qr.AssociatedValues[0].Label)
	assert.Equal(t, "String", qr.AssociatedValues[0].TypeName)

	empty := barcode.Cases[2]
	assert.Empty(t, empty.AssociatedValues)
	assert.Empty(t, empty.RawValue)
}

func TestWalkEnumRawValueCases(t *testing.T) {
	src := `public enum Planet: String {
    case mercury = "tiny"
    case venus
}
`
	enumText := src[:strings.LastIndex(src, "}")+1]
	enumDecl := th.Decl(t, src, syntax.KindEnum, "public", enumText, "Planet")
	enumDecl.InheritedTypes = th.Inherited("String")
	enumDecl.Substructure = []*syntax.Declaration{
		th.Decl(t, src, syntax.KindEnumCase, "", `case mercury = "tiny"`, "mercury"),
		th.Decl(t, src, syntax.KindEnumCase, "", "case venus", "venus"),
	}

	res := walk(t, src, enumDecl)
	require.Len(t, res.Types, 1)
	require.Len(t, res.Types[0].Cases, 2)
	assert.Equal(t, "tiny", res.Types[0].Cases[0].RawValue)
	assert.Empty(t, res.Types[0].Cases[1].RawValue)
}

func TestWalkEnumCaseOutsideEnumDropped(t *testing.T) {
	src := "public class NotAnEnum {\n    case stray\n}\n"
	classText := src[:strings.LastIndex(src, "}")+1]
	classDecl := th.Decl(t, src, syntax.KindClass, "public", classText, "NotAnEnum")
	classDecl.Substructure = []*syntax.Declaration{
		th.Decl(t, src, syntax.KindEnumCase, "", "case stray", "stray"),
	}

	var diags []string
	res := walkDiag(t, src, &diags, classDecl)
	require.Len(t, res.Types, 1)
	assert.Empty(t, res.Types[0].Cases)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0], "stray")
}

func TestDeriveRawTypeFromMemberType(t *testing.T) {
	src := "public enum Level: RawRepresentable {\n    public var rawValue: Int { return 0 }\n}\n"
	enumText := src[:strings.LastIndex(src, "}")+1]
	enumDecl := th.Decl(t, src, syntax.KindEnum, "public", enumText, "Level")
	enumDecl.InheritedTypes = th.Inherited("RawRepresentable")

	raw := th.Decl(t, src, syntax.KindVarInstance, "public", "public var rawValue: Int { return 0 }", "rawValue")
	raw.TypeName = "Int"
	enumDecl.Substructure = []*syntax.Declaration{raw}

	res := walk(t, src, enumDecl)
	require.Len(t, res.Types, 1)
	assert.Equal(t, "Int", res.Types[0].RawTypeName)
}

func TestDeriveRawTypeFromPlaceholder(t *testing.T) {
	src := `public enum Mode: RawRepresentable {
    typealias RawValue = String
    public var rawValue: RawValue { self.raw }
}
`
	enumText := src[:strings.LastIndex(src, "}")+1]
	enumDecl := th.Decl(t, src, syntax.KindEnum, "public", enumText, "Mode")
	enumDecl.InheritedTypes = th.Inherited("RawRepresentable")

	raw := th.Decl(t, src, syntax.KindVarInstance, "public", "public var rawValue: RawValue { self.raw }", "rawValue")
	raw.TypeName = "RawValue"
	enumDecl.Substructure = []*syntax.Declaration{raw}

	res := walk(t, src, enumDecl)
	require.Len(t, res.Types, 1)
	assert.Equal(t, "String", res.Types[0].RawTypeName, "the placeholder points at the enum's own typealias")
}

func TestStaticRawValueDoesNotSetRawType(t *testing.T) {
	src := "public enum Flag: Codable {\n    public static var rawValue: Int\n}\n"
	enumText := src[:strings.LastIndex(src, "}")+1]
	enumDecl := th.Decl(t, src, syntax.KindEnum, "public", enumText, "Flag")

	raw := th.Decl(t, src, syntax.KindVarStatic, "public", "public static var rawValue: Int", "rawValue")
	raw.TypeName = "Int"
	enumDecl.Substructure = []*syntax.Declaration{raw}

	res := walk(t, src, enumDecl)
	require.Len(t, res.Types, 1)
	assert.Empty(t, res.Types[0].RawTypeName)
}

func TestWalkNestedTypes(t *testing.T) {
	src := `public class Outer {
    public struct Inner {
    }
}
`
	innerText := "public struct Inner {\n    }"
	outerText := src[:strings.LastIndex(src, "}")+1]

	innerDecl := th.Decl(t, src, syntax.KindStruct, "public", innerText, "Inner")
	outerDecl := th.Decl(t, src, syntax.KindClass, "public", outerText, "Outer")
	outerDecl.Substructure = []*syntax.Declaration{innerDecl}

	res := walk(t, src, outerDecl)
	require.Len(t, res.Types, 2, "nested types appear in the flat collection too")

	outer, inner := res.Types[0], res.Types[1]
	assert.Equal(t, "Outer", outer.Name)
	assert.Equal(t, "Outer.Inner", inner.Name)
	assert.Equal(t, "Inner", inner.LocalName)
	assert.Same(t, outer, inner.Containing)
	require.Len(t, outer.ContainedTypes, 1)
	assert.Same(t, inner, outer.ContainedTypes[0])
}

func TestWalkExtensionKinds(t *testing.T) {
	tests := []struct {
		kind     string
		expected types.TypeKind
	}{
		{syntax.KindExtension, types.KindExtension},
		{syntax.KindExtensionClass, types.KindClass},
		{syntax.KindExtensionStruct, types.KindStruct},
		{syntax.KindExtensionEnum, types.KindEnum},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			src := "public extension Base {\n}\n"
			declText := src[:strings.LastIndex(src, "}")+1]
			d := th.Decl(t, src, tt.kind, "public", declText, "Base")

			res := walk(t, src, d)
			require.Len(t, res.Types, 1)
			assert.True(t, res.Types[0].IsExtension)
			assert.Equal(t, tt.expected, res.Types[0].Kind)
		})
	}
}

func TestWalkFunctionKindsSilentlyDiscarded(t *testing.T) {
	src := "public func compute() {\n}\n"
	d := th.Decl(t, src, "decl.function.free", "public", src[:strings.LastIndex(src, "}")+1], "compute")

	var diags []string
	res := walkDiag(t, src, &diags, d)
	assert.Empty(t, res.Types)
	assert.Empty(t, diags, "function kinds are discarded without a diagnostic")
}

func TestWalkUnrecognizedKindDiagnosed(t *testing.T) {
	src := "public weird Thing\n"
	d := th.Decl(t, src, "decl.weird", "public", "public weird Thing", "Thing")

	var diags []string
	res := walkDiag(t, src, &diags, d)
	assert.Empty(t, res.Types)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0], "decl.weird")
}
