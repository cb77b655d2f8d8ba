// Package engine is the entry point of the resolution core. An Engine
// accumulates the unresolved entities of a batch of source units, one Parse
// call per unit, and closes the batch with a single Unify pass.
package engine

import (
	"fmt"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/declgraph/internal/annotations"
	"github.com/standardbeagle/declgraph/internal/syntax"
	"github.com/standardbeagle/declgraph/internal/types"
	"github.com/standardbeagle/declgraph/internal/unifier"
	"github.com/standardbeagle/declgraph/internal/walker"
)

// GeneratedMarker rejects the tool's own output: a source payload beginning
// with it is never re-processed.
const GeneratedMarker = "// Code generated by declgraph"

// Config carries the engine's explicit settings; there is no ambient state.
type Config struct {
	// Verbose enables diagnostics on DiagnosticWriter.
	Verbose bool

	// DiagnosticWriter receives diagnostics when Verbose is set. nil
	// discards them.
	DiagnosticWriter io.Writer
}

// Result is the accumulated unresolved collection after one or more Parse
// calls. The slices stay owned by the engine until Unify closes the batch.
type Result struct {
	Types       []*types.Type
	Typealiases []*types.Typealias
}

// Engine holds the state of one batch. State never carries across batches;
// create a fresh Engine per run, optionally seeded with a previous batch's
// unresolved collection for incremental multi-file accumulation.
type Engine struct {
	cfg     Config
	types   []*types.Type
	aliases []*types.Typealias
	seen    map[uint64]struct{}
}

// New creates an engine with empty state.
func New(cfg Config) *Engine {
	return &Engine{
		cfg:  cfg,
		seen: make(map[uint64]struct{}),
	}
}

// NewWithSeed creates an engine pre-loaded with previously parsed types and
// typealiases.
func NewWithSeed(cfg Config, seed *Result) *Engine {
	e := New(cfg)
	if seed != nil {
		e.types = append(e.types, seed.Types...)
		e.aliases = append(e.aliases, seed.Typealiases...)
	}
	return e
}

// Parse walks one source unit's syntax index and appends the resulting
// entities to the batch. Malformed individual declarations never fail the
// call; they yield nothing, with a diagnostic in verbose mode. A payload
// that begins with the generated-output marker, or whose content was
// already parsed in this batch, is skipped and the accumulated collection
// returned unchanged.
func (e *Engine) Parse(source string, index *syntax.Index) *Result {
	if strings.HasPrefix(source, GeneratedMarker) {
		e.diagf("skipping source generated by this tool")
		return e.snapshot()
	}
	if index == nil {
		return e.snapshot()
	}

	hash := xxhash.Sum64String(source)
	if _, ok := e.seen[hash]; ok {
		e.diagf("skipping already-parsed source content (hash %x)", hash)
		return e.snapshot()
	}
	e.seen[hash] = struct{}{}

	file := annotations.Classify(source)
	w := walker.New(source, file, index.Tokens, e.diagFunc())
	res := w.Walk(index.Declarations)

	e.types = append(e.types, res.Types...)
	e.aliases = append(e.aliases, res.Typealiases...)
	return e.snapshot()
}

// Unify closes the batch: extensions merge into their canonical types,
// alias chains flatten, member and inheritance names resolve, and hidden
// entities are filtered out. The returned graph is sorted by type name.
func (e *Engine) Unify() []*types.Type {
	return unifier.Unify(e.types, e.aliases, unifier.Options{
		Verbose: e.cfg.Verbose,
		Diag:    e.diagFunc(),
	})
}

func (e *Engine) snapshot() *Result {
	return &Result{Types: e.types, Typealiases: e.aliases}
}

func (e *Engine) diagFunc() func(format string, args ...interface{}) {
	if !e.cfg.Verbose || e.cfg.DiagnosticWriter == nil {
		return nil
	}
	return e.diagf
}

func (e *Engine) diagf(format string, args ...interface{}) {
	if !e.cfg.Verbose || e.cfg.DiagnosticWriter == nil {
		return
	}
	fmt.Fprintf(e.cfg.DiagnosticWriter, "declgraph: "+format+"\n", args...)
}
