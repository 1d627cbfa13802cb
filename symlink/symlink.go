// Package symlink resolves symbolic link chains inside an archive's own
// namespace. The host filesystem is never consulted.
package symlink

import (
	"fmt"
	"strings"

	"go.pdmccormick.com/fsdbg/archive"
	"go.pdmccormick.com/fsdbg/cpio"
)

// MaxHops bounds the number of links followed, as the kernel's own symlink
// loop limit does.
const MaxHops = 40

// Outcome is how a resolution ended.
type Outcome uint8

const (
	Resolved Outcome = iota + 1 // Reached an entry that is not a symlink
	Dangling                    // Reached a path that does not exist
	Cycle                       // Revisited a path or exceeded MaxHops
)

func (o Outcome) String() string {
	switch o {
	case Resolved:
		return "resolved"
	case Dangling:
		return "dangling"
	case Cycle:
		return "cycle"
	default:
		return fmt.Sprintf("Outcome(%d)", uint8(o))
	}
}

// Result of resolving one path.
type Result struct {
	Path    string // Normalized starting path
	Outcome Outcome

	// The final entry when Resolved. Implicit directories resolve to a
	// synthesized directory entry.
	Entry archive.Entry

	// For Dangling, the path that was not found. For Cycle, the path that
	// would have been visited again.
	At string

	Hops  int      // Links followed, including expanded parent directories
	Chain []string // Every path looked up, in order
}

func (r *Result) OK() bool { return r.Outcome == Resolved }

func (r *Result) String() string {
	switch r.Outcome {
	case Resolved:
		return fmt.Sprintf("/%s: resolved to /%s", r.Path, r.Entry.Path)
	case Dangling:
		return fmt.Sprintf("/%s: dangling, /%s does not exist", r.Path, r.At)
	case Cycle:
		if r.Hops > MaxHops {
			return fmt.Sprintf("/%s: more than %d links", r.Path, MaxHops)
		}
		return fmt.Sprintf("/%s: cycle at /%s", r.Path, r.At)
	default:
		return fmt.Sprintf("/%s: %s", r.Path, r.Outcome)
	}
}

// Resolve p against idx. Absolute targets are anchored at the archive root,
// relative ones at the directory holding the link. When a path is missing
// but one of its parent directories is a symlink, that parent is expanded
// first, counting as a hop.
func Resolve(idx *archive.Index, p string) Result {
	var (
		cur     = archive.Normalize(p)
		res     = Result{Path: cur, Chain: []string{cur}}
		visited = make(map[string]struct{})
	)

	for {
		e, ok := idx.Lookup(cur)

		var next string
		switch {
		case ok && !e.IsSymlink():
			res.Outcome, res.Entry = Resolved, e
			return res

		case ok && e.Target == "":
			// Empty targets never resolve
			res.Outcome, res.At = Dangling, cur
			return res

		case ok:
			next = Target(cur, e.Target)

		default:
			var expanded bool
			if next, expanded = expandParent(idx, cur); !expanded {
				if idx.HasDir(cur) {
					res.Outcome, res.Entry = Resolved, implicitDir(cur)
				} else {
					res.Outcome, res.At = Dangling, cur
				}
				return res
			}
		}

		visited[cur] = struct{}{}
		res.Hops++

		if _, seen := visited[next]; seen || res.Hops > MaxHops {
			res.Outcome, res.At = Cycle, next
			return res
		}

		res.Chain = append(res.Chain, next)
		cur = next
	}
}

// The normalized path a link at linkPath with the given target refers to.
func Target(linkPath, target string) string {
	if strings.HasPrefix(target, "/") {
		return archive.Normalize(target)
	}

	var dir string
	if i := strings.LastIndexByte(linkPath, '/'); i >= 0 {
		dir = linkPath[:i]
	}
	return archive.Normalize(dir + "/" + target)
}

// Replace the first symlinked parent directory of p by its target.
func expandParent(idx *archive.Index, p string) (string, bool) {
	for i := 0; i < len(p); i++ {
		if p[i] != '/' {
			continue
		}

		var parent, rest = p[:i], p[i+1:]
		e, ok := idx.Lookup(parent)
		switch {
		case ok && e.IsSymlink() && e.Target != "":
			return archive.Normalize(Target(parent, e.Target) + "/" + rest), true
		case ok && !e.IsDir():
			return "", false
		case !ok && !idx.HasDir(parent):
			return "", false
		}
	}
	return "", false
}

func implicitDir(p string) archive.Entry {
	return archive.Entry{
		Path:   p,
		Kind:   archive.KindDirectory,
		Mode:   cpio.Mode_Dir | 0o755,
		Offset: archive.NoContent,
	}
}

// Resolve every symlink entry of idx, in index order.
func CheckAll(idx *archive.Index) []Result {
	var links = idx.Symlinks()
	var results = make([]Result, 0, len(links))
	for _, e := range links {
		results = append(results, Resolve(idx, e.Path))
	}
	return results
}

// The results that did not resolve.
func Broken(results []Result) []Result {
	var broken []Result
	for _, r := range results {
		if !r.OK() {
			broken = append(broken, r)
		}
	}
	return broken
}
