package archive

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Compile a path pattern. "*" and "?" stay within one path segment, "**"
// spans any number of segments and "{a,b}" and "[...]" work as in a shell.
// Leading "/" and "./" are ignored so patterns may be written either way.
func CompileGlob(pattern string) (glob.Glob, error) {
	pattern = strings.TrimPrefix(pattern, "./")
	pattern = strings.TrimLeft(pattern, "/")

	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("archive: bad glob %q: %w", pattern, err)
	}
	return g, nil
}

// All entries whose path matches pattern, sorted by path.
func (idx *Index) Glob(pattern string) ([]Entry, error) {
	g, err := CompileGlob(pattern)
	if err != nil {
		return nil, err
	}

	var matches []Entry
	for _, p := range idx.Paths() {
		if g.Match(p) {
			matches = append(matches, idx.entries[idx.byPath[p]])
		}
	}
	return matches, nil
}

// The number of entries whose path matches pattern.
func (idx *Index) CountGlob(pattern string) (int, error) {
	g, err := CompileGlob(pattern)
	if err != nil {
		return 0, err
	}

	var n int
	for _, e := range idx.entries {
		if g.Match(e.Path) {
			n++
		}
	}
	return n, nil
}
