package archive

import (
	"iter"
	"slices"
	"strings"
)

// Normalize a path to the index key form: slash separated, relative to the
// archive root, with no leading "./" or "/", no repeated separators, no "."
// segments and no trailing slash. ".." segments are resolved, and clamped at
// the root. The root itself normalizes to "".
func Normalize(p string) string {
	if p == "" || p == "." || p == "/" {
		return ""
	}

	var parts = make([]string, 0, strings.Count(p, "/")+1)
	for seg := range strings.SplitSeq(p, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(parts) > 0 {
				parts = parts[:len(parts)-1]
			}
		default:
			parts = append(parts, seg)
		}
	}
	return strings.Join(parts, "/")
}

// Index is an immutable path keyed view of an archive's entries. It is safe
// for concurrent use.
type Index struct {
	entries []Entry        // first appearance order
	byPath  map[string]int // into entries
	dirs    map[string]struct{}
}

// Build an index. Paths are normalized; when two entries share a path the
// later one replaces the earlier, keeping the earlier one's position. Entries
// for the archive root are dropped.
func NewIndex(entries []Entry) *Index {
	var idx = Index{
		entries: make([]Entry, 0, len(entries)),
		byPath:  make(map[string]int, len(entries)),
		dirs:    make(map[string]struct{}),
	}

	for _, e := range entries {
		e.Path = Normalize(e.Path)
		if e.Path == "" {
			continue
		}

		if i, ok := idx.byPath[e.Path]; ok {
			idx.entries[i] = e
		} else {
			idx.byPath[e.Path] = len(idx.entries)
			idx.entries = append(idx.entries, e)
		}

		for dir := parentDir(e.Path); dir != ""; dir = parentDir(dir) {
			if _, ok := idx.dirs[dir]; ok {
				break
			}
			idx.dirs[dir] = struct{}{}
		}
	}

	return &idx
}

func parentDir(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return ""
}

// The entry stored at the normalized form of p.
func (idx *Index) Lookup(p string) (Entry, bool) {
	if i, ok := idx.byPath[Normalize(p)]; ok {
		return idx.entries[i], true
	}
	return Entry{}, false
}

// Some entry's normalized path equals the normalized form of p.
func (idx *Index) Exists(p string) bool {
	_, ok := idx.byPath[Normalize(p)]
	return ok
}

// Reports whether p names a directory: the root, an explicit directory entry
// or an implicit parent of some other entry.
func (idx *Index) HasDir(p string) bool {
	p = Normalize(p)
	if p == "" {
		return true
	}
	if e, ok := idx.Lookup(p); ok {
		return e.IsDir()
	}
	_, ok := idx.dirs[p]
	return ok
}

// Reports whether p is a directory only because entries exist beneath it.
func (idx *Index) Implicit(p string) bool {
	p = Normalize(p)
	if _, ok := idx.byPath[p]; ok {
		return false
	}
	_, ok := idx.dirs[p]
	return ok
}

func (idx *Index) Len() int { return len(idx.entries) }

// Iterate over all entries in the order they first appeared.
func (idx *Index) All() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range idx.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// All entry paths, sorted.
func (idx *Index) Paths() []string {
	var paths = make([]string, 0, len(idx.entries))
	for _, e := range idx.entries {
		paths = append(paths, e.Path)
	}
	slices.Sort(paths)
	return paths
}

// All symlink entries, in index order.
func (idx *Index) Symlinks() []Entry {
	var links []Entry
	for _, e := range idx.entries {
		if e.IsSymlink() {
			links = append(links, e)
		}
	}
	return links
}

// Stats summarizes the entries of an [Index].
type Stats struct {
	Files       int
	Directories int
	Symlinks    int
	Devices     int
	Other       int
	TotalSize   int64 // Sum of regular file sizes
}

func (idx *Index) Stats() (s Stats) {
	for _, e := range idx.entries {
		switch e.Kind {
		case KindRegular:
			s.Files++
			s.TotalSize += e.Size
		case KindDirectory:
			s.Directories++
		case KindSymlink:
			s.Symlinks++
		case KindCharDevice, KindBlockDevice:
			s.Devices++
		default:
			s.Other++
		}
	}
	return
}
