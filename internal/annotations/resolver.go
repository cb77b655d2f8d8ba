package annotations

import "github.com/standardbeagle/declgraph/internal/types"

// Resolve returns the effective annotation set for a declaration starting at
// the given byte offset.
//
// The preceding comment run is scanned in reverse, nearest line first, and
// each line's annotations are merged without overriding entries already
// collected, so a nearer line always beats a farther one. The scan stops at
// the first line that is not a plain comment (block-start and block-end
// lines stop it too). Block-scope annotations active at the declaration's
// own line are merged last as fill-in, so inline annotations keep
// precedence over block ones.
func (f *File) Resolve(offset int) types.Annotations {
	result := types.Annotations{}
	if len(f.lines) == 0 {
		return result
	}

	line := f.LineAt(offset)
	for i := line - 1; i >= 1; i-- {
		l := f.lines[i-1]
		if l.Type != LineComment {
			break
		}
		result.MergeMissing(l.Annotations)
	}

	if line >= 1 && line <= len(f.lines) {
		result.MergeMissing(f.lines[line-1].BlockAnnotations)
	}
	return result
}
