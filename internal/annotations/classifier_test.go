package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyLineTypes(t *testing.T) {
	source := "// declgraph:begin: layer=core\n" +
		"// declgraph: role=model\n" +
		"// plain comment\n" +
		"public class A {\n" +
		"}\n" +
		"// declgraph:end\n"

	f := Classify(source)
	require.Equal(t, 7, f.LineCount()) // trailing newline yields a final empty line

	assert.Equal(t, LineBlockStart, f.LineType(1))
	assert.Equal(t, LineComment, f.LineType(2))
	assert.Equal(t, LineComment, f.LineType(3))
	assert.Equal(t, LineOther, f.LineType(4))
	assert.Equal(t, LineOther, f.LineType(5))
	assert.Equal(t, LineBlockEnd, f.LineType(6))
}

func TestClassifyParsesAnnotationValues(t *testing.T) {
	source := "// declgraph: skip, weight=3, ratio=0.5, name=\"Order Item\", tag=sku\n" +
		"public class A {}\n"

	f := Classify(source)
	got := f.Resolve(offsetOf(t, source, "public class A"))

	assert.Equal(t, true, got["skip"])
	assert.Equal(t, int64(3), got["weight"])
	assert.Equal(t, 0.5, got["ratio"])
	assert.Equal(t, "Order Item", got["name"])
	assert.Equal(t, "sku", got["tag"])
}

func TestResolveNearerLineWins(t *testing.T) {
	source := "// declgraph: role=far, extra=1\n" +
		"// declgraph: role=near\n" +
		"public class A {}\n"

	f := Classify(source)
	got := f.Resolve(offsetOf(t, source, "public class A"))

	assert.Equal(t, "near", got["role"])
	assert.Equal(t, int64(1), got["extra"], "farther lines still contribute keys the nearer ones lack")
}

func TestResolveStopsAtNonCommentLine(t *testing.T) {
	source := "// declgraph: skip\n" +
		"public class A {}\n" +
		"\n" +
		"// declgraph: role=model\n" +
		"public class B {}\n"

	f := Classify(source)
	got := f.Resolve(offsetOf(t, source, "public class B"))

	assert.Equal(t, "model", got["role"])
	assert.NotContains(t, got, "skip")
}

func TestResolveBlockScope(t *testing.T) {
	source := "// declgraph:begin: layer=core\n" +
		"public class A {}\n" +
		"\n" +
		"public class B {}\n" +
		"// declgraph:end\n" +
		"public class C {}\n"

	f := Classify(source)

	t.Run("applies to declarations inside the block", func(t *testing.T) {
		a := f.Resolve(offsetOf(t, source, "public class A"))
		assert.Equal(t, "core", a["layer"])

		b := f.Resolve(offsetOf(t, source, "public class B"))
		assert.Equal(t, "core", b["layer"], "blank lines inside a block do not end it")
	})

	t.Run("cleared after end", func(t *testing.T) {
		c := f.Resolve(offsetOf(t, source, "public class C"))
		assert.Empty(t, c)
	})
}

func TestResolveInlineBeatsBlock(t *testing.T) {
	source := "// declgraph:begin: role=block\n" +
		"// declgraph: role=inline\n" +
		"public class A {}\n" +
		"// declgraph:end\n"

	f := Classify(source)
	got := f.Resolve(offsetOf(t, source, "public class A"))

	assert.Equal(t, "inline", got["role"])
}

func TestResolveBeginLineDoesNotAnnotateItself(t *testing.T) {
	// The begin: directive opens scope for subsequent lines only; a
	// declaration on the line right after still sees it, but the resolver
	// never treats the directive line as a plain annotation comment.
	source := "// declgraph: near=1\n" +
		"// declgraph:begin: layer=core\n" +
		"public class A {}\n" +
		"// declgraph:end\n"

	f := Classify(source)
	got := f.Resolve(offsetOf(t, source, "public class A"))

	assert.Equal(t, "core", got["layer"])
	assert.NotContains(t, got, "near", "the scan stops at the block-start line")
}

func TestLineAt(t *testing.T) {
	source := "one\ntwo\nthree\n"
	f := Classify(source)

	assert.Equal(t, 1, f.LineAt(0))
	assert.Equal(t, 1, f.LineAt(3))
	assert.Equal(t, 2, f.LineAt(4))
	assert.Equal(t, 3, f.LineAt(8))
}

func TestResolveEmptySource(t *testing.T) {
	f := Classify("")
	assert.Empty(t, f.Resolve(0))
}

func offsetOf(t *testing.T, source, sub string) int {
	t.Helper()
	for i := 0; i+len(sub) <= len(source); i++ {
		if source[i:i+len(sub)] == sub {
			return i
		}
	}
	t.Fatalf("substring %q not found", sub)
	return -1
}
