// Package unifier merges the unresolved entity collection produced by the
// walker into one consistent type graph: extensions fold into their
// canonical types, alias chains flatten, member and inheritance names link
// to known types, and enum raw types are derived.
package unifier

import (
	"sort"
	"strings"

	edlib "github.com/hbollon/go-edlib"

	"github.com/standardbeagle/declgraph/internal/types"
)

// Options configure one unification run.
type Options struct {
	// Verbose enables diagnostics for unresolved names, orphan extensions,
	// and alias cycles.
	Verbose bool

	// Diag receives diagnostics when Verbose is set; nil discards them.
	Diag func(format string, args ...interface{})
}

// Unify consumes the full unresolved collection and returns the final,
// filtered type graph sorted by name. It is the sole mutator of cross-type
// reference fields and owns the name-to-type map for the duration of the
// run. Running it again over its own output is a no-op.
func Unify(all []*types.Type, aliases []*types.Typealias, opts Options) []*types.Type {
	diag := opts.Diag
	if !opts.Verbose || diag == nil {
		diag = func(string, ...interface{}) {}
	}

	u := &unifier{
		all:      all,
		aliasMap: make(map[string]*types.Typealias),
		result:   make(map[string]*types.Type),
		diag:     diag,
	}

	u.buildAliasMap(aliases)
	u.flattenAliases()
	u.indexCanonical()
	u.rewriteNames()
	u.merge()
	u.resolveMembers()
	u.backfillRawTypes()
	return u.filterAndSort()
}

type unifier struct {
	all      []*types.Type
	aliasMap map[string]*types.Typealias
	result   map[string]*types.Type
	diag     func(format string, args ...interface{})
}

// buildAliasMap keys top-level aliases by bare name and every type's nested
// aliases by ContainingType.alias.
func (u *unifier) buildAliasMap(aliases []*types.Typealias) {
	for _, a := range aliases {
		u.aliasMap[a.Name()] = a
	}
	for _, t := range u.all {
		for _, a := range t.Typealiases {
			u.aliasMap[a.Name()] = a
		}
	}
}

// flattenAliases rewrites every alias to point directly at the end of its
// chain. Chains are followed against a snapshot of the original targets in
// sorted key order, so cycles resolve deterministically: following stops
// when a name repeats and keeps the last name reached.
func (u *unifier) flattenAliases() {
	original := make(map[string]string, len(u.aliasMap))
	for key, a := range u.aliasMap {
		original[key] = a.TargetName
	}

	keys := make([]string, 0, len(u.aliasMap))
	for key := range u.aliasMap {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		visited := map[string]bool{key: true}
		target := original[key]
		for {
			next, ok := original[target]
			if !ok {
				break
			}
			if visited[target] {
				u.diag("typealias cycle detected at %q, stopping at %q", key, target)
				break
			}
			visited[target] = true
			target = next
		}
		u.aliasMap[key].TargetName = target
	}
}

// resolveName maps a textual type name through the alias map. Global
// aliases win; failing that, an alias qualified by the containing type is
// tried, preferring the containing type's own nested type when the alias
// target names one.
func (u *unifier) resolveName(name string, containing *types.Type) string {
	if a, ok := u.aliasMap[name]; ok {
		return a.TargetName
	}
	if containing != nil {
		if a, ok := u.aliasMap[containing.Name+"."+name]; ok {
			if nested := containing.ContainsNestedType(a.TargetName); nested != nil {
				return nested.Name
			}
			return a.TargetName
		}
	}
	return name
}

// indexCanonical seeds the result map with every non-extension type.
func (u *unifier) indexCanonical() {
	for _, t := range u.all {
		if t.IsExtension {
			continue
		}
		if _, ok := u.result[t.Name]; !ok {
			u.result[t.Name] = t
		}
	}
}

// rewriteNames resolves extension local names and every type's inherited
// type names through the alias map.
func (u *unifier) rewriteNames() {
	for _, t := range u.all {
		if t.IsExtension {
			resolved := u.resolveName(t.LocalName, t.Containing)
			if resolved != t.LocalName {
				t.LocalName = resolved
				t.Name = types.QualifiedName(t.Containing, resolved)
			}
		}
	}
	for _, t := range u.all {
		for i, inherited := range t.InheritedTypes {
			t.InheritedTypes[i] = u.resolveName(inherited, t.Containing)
		}
	}
}

// merge folds every type into the canonical entry for its resolved name, in
// declaration order. An extension with no base declaration is promoted to
// stand in for the type, with a diagnostic.
func (u *unifier) merge() {
	for _, t := range u.all {
		existing, ok := u.result[t.Name]
		switch {
		case !ok:
			u.result[t.Name] = t
			if t.IsExtension {
				msg := "extension declared for unknown type %q%s"
				u.diag(msg, t.Name, u.suggestionSuffix(t.Name))
				t.IsExtension = false
			}
		case existing == t:
			// The canonical declaration itself.
		default:
			existing.Extend(t)
		}
	}
}

// resolveMembers links each variable's declared type name, stripped of
// optional decoration, to its canonical type. Names that match nothing stay
// unresolved without error.
func (u *unifier) resolveMembers() {
	for _, name := range u.sortedResultNames() {
		t := u.result[name]
		for _, v := range t.Variables {
			unwrapped := unwrapTypeName(v.TypeName)
			if target, ok := u.result[u.resolveName(unwrapped, t)]; ok {
				v.Type = target
				continue
			}
			if target, ok := u.result[unwrapped]; ok {
				v.Type = target
				continue
			}
			u.diag("unresolved type %q for member %s.%s%s", v.TypeName, t.Name, v.Name, u.suggestionSuffix(unwrapped))
		}
	}
}

// backfillRawTypes adopts an enum's first inherited type as its raw type
// when none was derived from a rawValue member. A protocol conformance
// first in the clause leaves the raw type unset; an unknown name is adopted
// textually as a best effort.
func (u *unifier) backfillRawTypes() {
	for _, name := range u.sortedResultNames() {
		t := u.result[name]
		if t.Kind != types.KindEnum || t.RawTypeName != "" || len(t.InheritedTypes) == 0 {
			continue
		}
		first := t.InheritedTypes[0]
		if known, ok := u.result[first]; ok {
			if known.Kind == types.KindProtocol {
				continue
			}
			t.RawTypeName = known.Name
			continue
		}
		t.RawTypeName = first
	}
}

// filterAndSort drops private and file-scoped types, prunes hidden entries
// from contained-type lists and member references, and orders the output by
// name.
func (u *unifier) filterAndSort() []*types.Type {
	var out []*types.Type
	for _, name := range u.sortedResultNames() {
		t := u.result[name]
		if t.AccessLevel.IsHidden() {
			continue
		}

		var kept []*types.Type
		for _, nested := range t.ContainedTypes {
			if !nested.AccessLevel.IsHidden() {
				kept = append(kept, nested)
			}
		}
		t.ContainedTypes = kept

		for _, v := range t.Variables {
			if v.Type != nil && v.Type.AccessLevel.IsHidden() {
				v.Type = nil
			}
		}
		out = append(out, t)
	}
	return out
}

func (u *unifier) sortedResultNames() []string {
	names := make([]string, 0, len(u.result))
	for name := range u.result {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// suggestionSuffix names the known type closest to name, when one is close
// enough to be a plausible misspelling.
func (u *unifier) suggestionSuffix(name string) string {
	best := ""
	var bestScore float32
	for _, candidate := range u.sortedResultNames() {
		if candidate == name {
			continue
		}
		score, err := edlib.StringsSimilarity(name, candidate, edlib.Levenshtein)
		if err != nil {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}
	if bestScore >= 0.5 {
		return " (closest known type: " + best + ")"
	}
	return ""
}

// unwrapTypeName strips optional decoration from a declared type name.
func unwrapTypeName(name string) string {
	name = strings.TrimSpace(name)
	for strings.HasSuffix(name, "?") || strings.HasSuffix(name, "!") {
		name = strings.TrimSpace(name[:len(name)-1])
	}
	if inner, ok := strings.CutPrefix(name, "Optional<"); ok && strings.HasSuffix(inner, ">") {
		name = strings.TrimSpace(inner[:len(inner)-1])
	}
	return name
}
