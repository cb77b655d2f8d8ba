// Package annotations classifies source lines and resolves the effective
// annotation set for a declaration from the structured comments that
// precede it.
package annotations

import (
	"strings"

	"github.com/standardbeagle/declgraph/internal/types"
)

// Marker is the reserved comment prefix that introduces tool annotations.
const Marker = "declgraph:"

const (
	lineCommentMarker = "//"
	beginDirective    = "begin:"
	endDirective      = "end"
)

// LineType classifies a physical source line.
type LineType int

const (
	LineOther LineType = iota
	LineComment
	LineBlockStart
	LineBlockEnd
)

// Line is one classified physical line.
type Line struct {
	Number int // 1-based
	Type   LineType

	// Annotations is the line's effective set: block-scope entries plus the
	// line's own inline entries, inline winning on collision. Only comment
	// lines carry it.
	Annotations types.Annotations

	// BlockAnnotations is the block scope active at this line regardless of
	// line type, so declarations separated from a begin: directive by
	// non-comment lines still inherit it.
	BlockAnnotations types.Annotations
}

// File is the classified view of one source unit.
type File struct {
	lines       []Line
	lineOffsets []int // byte offset of each line start
}

// Classify splits source into physical lines and classifies each one,
// threading the begin:/end block scope forward through the file.
func Classify(source string) *File {
	f := &File{}
	block := types.Annotations{}

	offset := 0
	number := 0
	for {
		number++
		end := strings.IndexByte(source[offset:], '\n')
		var raw string
		if end < 0 {
			raw = source[offset:]
		} else {
			raw = source[offset : offset+end]
		}
		f.lineOffsets = append(f.lineOffsets, offset)

		line := Line{Number: number, Type: LineOther}
		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(trimmed, lineCommentMarker) {
			line.Type = LineComment
			body := strings.TrimSpace(trimmed[len(lineCommentMarker):])
			if rest, ok := strings.CutPrefix(body, Marker); ok {
				rest = strings.TrimSpace(rest)
				switch {
				case strings.HasPrefix(rest, beginDirective):
					// The block applies to subsequent lines, not the
					// begin: line itself.
					line.Type = LineBlockStart
					line.BlockAnnotations = block.Clone()
					for k, v := range parseList(rest[len(beginDirective):]) {
						block[k] = v
					}
				case rest == endDirective:
					line.Type = LineBlockEnd
					block = types.Annotations{}
					line.BlockAnnotations = types.Annotations{}
				default:
					line.Annotations = parseList(rest)
				}
			}
		}
		if line.BlockAnnotations == nil {
			line.BlockAnnotations = block.Clone()
		}
		if line.Type == LineComment {
			merged := line.BlockAnnotations.Clone()
			for k, v := range line.Annotations {
				merged[k] = v
			}
			line.Annotations = merged
		}
		f.lines = append(f.lines, line)

		if end < 0 {
			break
		}
		offset += end + 1
		if offset > len(source) {
			break
		}
	}
	return f
}

// parseList parses a comma-separated list of key or key=value annotations.
func parseList(list string) types.Annotations {
	out := types.Annotations{}
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key, value, found := strings.Cut(item, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if !found {
			out[key] = true
			continue
		}
		out[key] = types.ParseAnnotationValue(value)
	}
	return out
}

// LineCount returns the number of physical lines.
func (f *File) LineCount() int {
	return len(f.lines)
}

// LineAt converts a byte offset into a 1-based line number.
func (f *File) LineAt(offset int) int {
	lo, hi := 0, len(f.lineOffsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.lineOffsets[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1
}

// LineType returns the classification of the given 1-based line.
func (f *File) LineType(number int) LineType {
	if number < 1 || number > len(f.lines) {
		return LineOther
	}
	return f.lines[number-1].Type
}
