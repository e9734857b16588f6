package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// ResolveSource returns the path of the archive to build or install for a
// row. The resolver normally fills file directly; when it is absent the
// sources column lists alternative local paths, possibly glob patterns.
func ResolveSource(r *Row) (string, error) {
	if r.File != "" {
		return r.File, nil
	}

	for _, pattern := range r.Sources {
		if !hasGlobMeta(pattern) {
			if _, err := os.Stat(pattern); err == nil {
				return pattern, nil
			}
			continue
		}

		base, rel := doublestar.SplitPattern(filepath.ToSlash(pattern))
		matches, err := doublestar.Glob(os.DirFS(base), rel)
		if err != nil {
			continue
		}
		if len(matches) > 0 {
			sort.Strings(matches)
			return filepath.Join(base, matches[0]), nil
		}
	}

	return "", fmt.Errorf("no source archive found for %s (file and sources both empty or missing)", r.Package)
}

func hasGlobMeta(p string) bool {
	for _, c := range p {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
