// Package testhelpers builds syntax-index fixtures for tests. The real
// index comes from the external structural parser; tests assemble an
// equivalent one from source snippets, locating spans by substring search
// and tokenizing with a minimal stand-in tokenizer.
package testhelpers

import (
	"strings"
	"testing"
	"unicode"

	"github.com/standardbeagle/declgraph/internal/syntax"
)

// Offset returns the byte offset of the first occurrence of sub in src and
// fails the test when it is absent.
func Offset(t testing.TB, src, sub string) int {
	t.Helper()
	i := strings.Index(src, sub)
	if i < 0 {
		t.Fatalf("fixture substring %q not found in source", sub)
	}
	return i
}

// Decl assembles a declaration record for the first occurrence of declText
// in src. The name span is located inside declText; the body span, when
// declText contains braces, covers the text between the outermost pair.
// access is the bare level ("public", "internal", ...); empty leaves the
// accessibility field unset.
func Decl(t testing.TB, src, kind, access, declText, name string) *syntax.Declaration {
	t.Helper()
	declOff := Offset(t, src, declText)
	nameRel := strings.Index(declText, name)
	if nameRel < 0 {
		t.Fatalf("fixture name %q not found in declaration %q", name, declText)
	}

	d := &syntax.Declaration{
		Kind:       kind,
		Offset:     declOff,
		Length:     len(declText),
		NameOffset: declOff + nameRel,
		NameLength: len(name),
	}
	if access != "" {
		d.Accessibility = syntax.AccessPrefix + access
	}
	if open := strings.Index(declText, "{"); open >= 0 {
		if close := strings.LastIndex(declText, "}"); close > open {
			d.BodyOffset = declOff + open + 1
			d.BodyLength = close - open - 1
		}
	}
	return d
}

// Inherited converts bare names into inheritance-clause records.
func Inherited(names ...string) []syntax.InheritedType {
	out := make([]syntax.InheritedType, len(names))
	for i, name := range names {
		out[i] = syntax.InheritedType{Name: name}
	}
	return out
}

// keywords mirror the token tags the structural tokenizer emits for
// reserved words; everything else is an identifier, capitalized ones a
// type identifier. Punctuation is never tokenized, matching the external
// tokenizer's behavior.
var keywords = map[string]bool{
	"typealias": true, "class": true, "struct": true, "enum": true,
	"protocol": true, "extension": true, "case": true, "var": true,
	"let": true, "static": true, "func": true,
	"public": true, "internal": true, "private": true,
	"fileprivate": true, "open": true,
}

// Tokenize produces the flat token stream for src.
func Tokenize(src string) []syntax.Token {
	var tokens []syntax.Token
	i := 0
	for i < len(src) {
		if !isWordByte(src[i]) {
			i++
			continue
		}
		start := i
		for i < len(src) && isWordByte(src[i]) {
			i++
		}
		word := src[start:i]

		kind := "identifier"
		switch {
		case keywords[word]:
			kind = syntax.TokenKeyword
		case unicode.IsUpper(rune(word[0])):
			kind = syntax.TokenTypeIdentifier
		}
		tokens = append(tokens, syntax.Token{Kind: kind, Offset: start, Length: len(word)})
	}
	return tokens
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// Index bundles declarations with the tokenized source.
func Index(src string, decls ...*syntax.Declaration) *syntax.Index {
	return &syntax.Index{
		Declarations: decls,
		Tokens:       Tokenize(src),
	}
}
