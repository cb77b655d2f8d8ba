// Package discovery finds the source units of a batch by walking the
// project root and matching relative paths against the configured glob
// patterns.
package discovery

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IndexSuffix is appended to a source path to locate the syntax index file
// the external structural parser produced for it.
const IndexSuffix = ".index.json"

// Sources walks root and returns the sorted list of files matching any
// include pattern and no exclude pattern. Index files are never returned as
// sources.
func Sources(root string, include, exclude []string) ([]string, error) {
	var out []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if strings.HasSuffix(rel, IndexSuffix) {
			return nil
		}
		if !matchesAnyPattern(include, rel) || matchesAnyPattern(exclude, rel) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(out)
	return out, nil
}

// IndexPathFor returns the syntax index path paired with a source file.
func IndexPathFor(sourcePath string) string {
	return sourcePath + IndexSuffix
}

func matchesAnyPattern(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
