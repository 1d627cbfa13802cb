// Package diff compares the entries of two archives path by path.
package diff

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/opencontainers/go-digest"

	"go.pdmccormick.com/fsdbg/archive"
	"go.pdmccormick.com/fsdbg/cpio"
)

// How a path differs between the old and new archive.
type Change uint8

const (
	Unchanged Change = iota
	Added            // Only in the new archive
	Removed          // Only in the old archive
	Modified         // In both, with different attributes
)

func (c Change) String() string {
	switch c {
	case Unchanged:
		return "unchanged"
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Modified:
		return "modified"
	default:
		return fmt.Sprintf("Change(%d)", uint8(c))
	}
}

// The one character marker used in listings.
func (c Change) Symbol() string {
	switch c {
	case Added:
		return "+"
	case Removed:
		return "-"
	case Modified:
		return "~"
	default:
		return " "
	}
}

// The change seen when comparing in the opposite direction.
func (c Change) Reverse() Change {
	switch c {
	case Added:
		return Removed
	case Removed:
		return Added
	default:
		return c
	}
}

// A set of entry attributes.
type Attr uint8

const (
	AttrKind Attr = 1 << iota
	AttrMode
	AttrSize
	AttrTarget
	AttrContent
)

var attrNames = []string{"kind", "mode", "size", "target", "content"}

func (a Attr) String() string {
	var names []string
	for i, name := range attrNames {
		if a&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, ",")
}

// The attributes of an entry that take part in a comparison.
type Summary struct {
	Kind   archive.Kind
	Mode   cpio.Mode
	Size   int64
	Target string
}

func summarize(e archive.Entry) *Summary {
	return &Summary{Kind: e.Kind, Mode: e.Mode, Size: e.Size, Target: e.Target}
}

func (s *Summary) String() string {
	var str = fmt.Sprintf("%s %04o %d", s.Kind, s.Mode.Permissions(), s.Size)
	if s.Target != "" {
		str += " -> " + s.Target
	}
	return str
}

// Entry is the comparison result for one path.
type Entry struct {
	Path    string
	Change  Change
	Before  *Summary // nil when Added
	After   *Summary // nil when Removed
	Changed Attr     // For Modified, which attributes differ
}

func (e *Entry) String() string {
	switch e.Change {
	case Added:
		return fmt.Sprintf("%s %s (%s)", e.Change.Symbol(), e.Path, e.After)
	case Removed:
		return fmt.Sprintf("%s %s (%s)", e.Change.Symbol(), e.Path, e.Before)
	case Modified:
		return fmt.Sprintf("%s %s [%s] (%s => %s)", e.Change.Symbol(), e.Path, e.Changed, e.Before, e.After)
	default:
		return fmt.Sprintf("%s %s", e.Change.Symbol(), e.Path)
	}
}

// Provides content digests for entries. Satisfied by [*archive.Archive].
type Digester interface {
	Digest(e archive.Entry) (digest.Digest, error)
}

// Option configures [Compare].
type Option func(*options)

type options struct {
	logger *slog.Logger
	older  Digester
	newer  Digester
}

// Also compare the content digests of regular files whose other attributes
// match. Entries without content in either archive are compared on
// attributes only.
func WithContent(older, newer Digester) Option {
	return func(o *options) {
		o.older, o.newer = older, newer
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Compare every path in the union of older and newer, in lexicographic order.
// Unchanged paths are included.
func Compare(older, newer *archive.Index, opts ...Option) []Entry {
	var o = options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		oldPaths = older.Paths()
		newPaths = newer.Paths()
		entries  = make([]Entry, 0, max(len(oldPaths), len(newPaths)))
	)

	for i, j := 0, 0; i < len(oldPaths) || j < len(newPaths); {
		switch {
		case j == len(newPaths) || (i < len(oldPaths) && oldPaths[i] < newPaths[j]):
			before, _ := older.Lookup(oldPaths[i])
			entries = append(entries, Entry{Path: oldPaths[i], Change: Removed, Before: summarize(before)})
			i++

		case i == len(oldPaths) || newPaths[j] < oldPaths[i]:
			after, _ := newer.Lookup(newPaths[j])
			entries = append(entries, Entry{Path: newPaths[j], Change: Added, After: summarize(after)})
			j++

		default:
			before, _ := older.Lookup(oldPaths[i])
			after, _ := newer.Lookup(newPaths[j])
			entries = append(entries, o.compare(before, after))
			i++
			j++
		}
	}

	return entries
}

func (o *options) compare(before, after archive.Entry) Entry {
	var changed Attr
	if before.Kind != after.Kind {
		changed |= AttrKind
	}
	if before.Mode != after.Mode {
		changed |= AttrMode
	}
	if before.Size != after.Size {
		changed |= AttrSize
	}
	if before.Target != after.Target {
		changed |= AttrTarget
	}

	if changed == 0 && o.older != nil && o.newer != nil && before.IsRegular() && before.Size > 0 {
		if differ, ok := o.contentDiffers(before, after); ok && differ {
			changed |= AttrContent
		}
	}

	var e = Entry{
		Path:    before.Path,
		Before:  summarize(before),
		After:   summarize(after),
		Changed: changed,
	}
	if changed != 0 {
		e.Change = Modified
	}
	return e
}

func (o *options) contentDiffers(before, after archive.Entry) (differ, ok bool) {
	a, err := o.older.Digest(before)
	if err != nil {
		o.logger.Debug("no content to compare", "path", before.Path, "side", "old", "err", err)
		return false, false
	}
	b, err := o.newer.Digest(after)
	if err != nil {
		o.logger.Debug("no content to compare", "path", after.Path, "side", "new", "err", err)
		return false, false
	}
	return a != b, true
}

// Counts of each kind of change.
type Counts struct {
	Added, Removed, Modified, Unchanged int
}

// Tally the changes in entries.
func Summarize(entries []Entry) (c Counts) {
	for _, e := range entries {
		switch e.Change {
		case Added:
			c.Added++
		case Removed:
			c.Removed++
		case Modified:
			c.Modified++
		default:
			c.Unchanged++
		}
	}
	return
}

// Returns true if any path was added, removed or modified.
func (c Counts) Differ() bool { return c.Added+c.Removed+c.Modified > 0 }

// Only the entries that are not Unchanged.
func OnlyChanges(entries []Entry) []Entry {
	var changes []Entry
	for _, e := range entries {
		if e.Change != Unchanged {
			changes = append(changes, e)
		}
	}
	return changes
}
