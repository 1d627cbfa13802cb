// Package checklist evaluates fixed sets of requirements against an archive
// index and collects every outcome into a report.
package checklist

import (
	"fmt"
	"iter"

	"go.pdmccormick.com/fsdbg/archive"
	"go.pdmccormick.com/fsdbg/symlink"
)

// How much a failed requirement matters.
type Criticality uint8

const (
	Critical Criticality = iota // A failure means the image will not work
	Optional                    // A failure is informational
)

func (c Criticality) String() string {
	if c == Critical {
		return "critical"
	}
	return "optional"
}

// The display group a requirement is reported under.
type Category uint8

const (
	Binaries Category = iota
	Units
	Symlinks
	EtcFiles
	UdevRules
	Directories
	Libraries
	KernelModules
	Forbidden
	Other

	numCategories
)

var categoryNames = [numCategories]string{
	Binaries:      "Binaries",
	Units:         "Systemd Units",
	Symlinks:      "Symlinks",
	EtcFiles:      "/etc Files",
	UdevRules:     "Udev Rules",
	Directories:   "Directories",
	Libraries:     "Libraries",
	KernelModules: "Kernel Modules",
	Forbidden:     "Forbidden",
	Other:         "Other",
}

func (c Category) String() string {
	if c < numCategories {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

// The predicate a requirement applies to its path.
type Check uint8

const (
	Exists           Check = iota + 1 // An entry is present at exactly this path
	Executable                        // Present with any execute bit set
	Regular                           // Present and a regular file
	GlobCountAtLeast                  // At least N paths match the pattern
	SymlinkResolves                   // The path resolves to an existing entry
	IsDirectory                       // The path resolves to a directory, possibly implicit
	SymlinkPointsTo                   // A symlink whose target is literally Target
	Absent                            // No entry is present at this path
	FileOrLinkTo                      // A regular file, or a symlink resolving to Target
)

func (c Check) String() string {
	switch c {
	case Exists:
		return "exists"
	case Executable:
		return "executable"
	case Regular:
		return "regular"
	case GlobCountAtLeast:
		return "glob-count"
	case SymlinkResolves:
		return "resolves"
	case IsDirectory:
		return "directory"
	case SymlinkPointsTo:
		return "points-to"
	case Absent:
		return "absent"
	case FileOrLinkTo:
		return "file-or-link"
	default:
		return fmt.Sprintf("Check(%d)", uint8(c))
	}
}

// A Requirement is one thing an archive must (or should) satisfy.
type Requirement struct {
	Path        string // Archive path, or a pattern for GlobCountAtLeast
	Check       Check
	N           int    // Minimum number of matches for GlobCountAtLeast
	Target      string // Link target for SymlinkPointsTo and FileOrLinkTo
	Criticality Criticality
	Category    Category
	Reason      string // What breaks when the requirement fails
}

// Identifies the requirement in a report.
func (r Requirement) ID() string {
	switch r.Check {
	case GlobCountAtLeast:
		return fmt.Sprintf("%s (at least %d)", r.Path, r.N)
	case SymlinkPointsTo, FileOrLinkTo:
		return r.Path + " -> " + r.Target
	default:
		return r.Path
	}
}

// The outcome of evaluating one [Requirement].
type Result struct {
	Requirement
	Passed  bool
	Message string // Detail on why it failed, or what was found
}

// Evaluate a single requirement.
func Evaluate(idx *archive.Index, req Requirement) Result {
	var res = Result{Requirement: req}
	res.Passed, res.Message = evaluate(idx, req)
	if !res.Passed && req.Reason != "" {
		res.Message += " (" + req.Reason + ")"
	}
	return res
}

func evaluate(idx *archive.Index, req Requirement) (bool, string) {
	switch req.Check {
	case Exists:
		if idx.Exists(req.Path) {
			return true, ""
		}
		return false, "missing"

	case Executable:
		e, ok := idx.Lookup(req.Path)
		switch {
		case !ok:
			return false, "missing"
		case !e.Executable():
			return false, fmt.Sprintf("not executable (mode %04o)", e.Mode.Perms())
		}
		return true, ""

	case Regular:
		e, ok := idx.Lookup(req.Path)
		switch {
		case !ok:
			return false, "missing"
		case !e.IsRegular():
			return false, fmt.Sprintf("is a %s, not a regular file", e.Kind)
		}
		return true, ""

	case GlobCountAtLeast:
		n, err := idx.CountGlob(req.Path)
		switch {
		case err != nil:
			return false, err.Error()
		case n < req.N:
			return false, fmt.Sprintf("%d found, need at least %d", n, req.N)
		}
		return true, fmt.Sprintf("%d found", n)

	case SymlinkResolves:
		r := symlink.Resolve(idx, req.Path)
		if !r.OK() {
			return false, resolveFailure(&r)
		}
		if r.Hops > 0 {
			return true, "resolves to /" + r.Entry.Path
		}
		return true, ""

	case IsDirectory:
		r := symlink.Resolve(idx, req.Path)
		switch {
		case !r.OK():
			return false, resolveFailure(&r)
		case !r.Entry.IsDir():
			return false, fmt.Sprintf("is a %s, not a directory", r.Entry.Kind)
		}
		return true, ""

	case SymlinkPointsTo:
		e, ok := idx.Lookup(req.Path)
		switch {
		case !ok:
			return false, "missing"
		case !e.IsSymlink():
			return false, fmt.Sprintf("is a %s, not a symlink", e.Kind)
		case e.Target != req.Target:
			return false, fmt.Sprintf("points to %q instead", e.Target)
		}
		return true, ""

	case Absent:
		if e, ok := idx.Lookup(req.Path); ok {
			return false, fmt.Sprintf("present (%s), must not be", e.Kind)
		}
		return true, ""

	case FileOrLinkTo:
		e, ok := idx.Lookup(req.Path)
		switch {
		case !ok:
			return false, "missing"
		case e.IsRegular():
			return true, ""
		case !e.IsSymlink():
			return false, fmt.Sprintf("is a %s, not a regular file or symlink", e.Kind)
		}
		r := symlink.Resolve(idx, req.Path)
		if !r.OK() {
			return false, resolveFailure(&r)
		}
		if want := archive.Normalize(req.Target); r.Entry.Path != want {
			return false, fmt.Sprintf("resolves to /%s instead of /%s", r.Entry.Path, want)
		}
		return true, "resolves to /" + r.Entry.Path
	}

	return false, fmt.Sprintf("unknown check %s", req.Check)
}

func resolveFailure(r *symlink.Result) string {
	if r.Outcome == symlink.Dangling && r.At == r.Path {
		return "missing"
	}
	return r.String()
}

// Report holds the results of a verification run in requirement order.
type Report struct {
	Title   string
	Results []Result
}

// Evaluate every requirement against idx. Never fails: unmet requirements
// are recorded in the report.
func Verify(idx *archive.Index, reqs []Requirement) *Report {
	var rep = Report{Results: make([]Result, 0, len(reqs))}
	for _, req := range reqs {
		rep.Results = append(rep.Results, Evaluate(idx, req))
	}
	return &rep
}

// Returns true if any critical requirement failed. Optional failures never
// count.
func (rep *Report) HasCriticalFailures() bool {
	for _, r := range rep.Results {
		if !r.Passed && r.Criticality == Critical {
			return true
		}
	}
	return false
}

func (rep *Report) CriticalFailures() []Result {
	var failed []Result
	for _, r := range rep.Results {
		if !r.Passed && r.Criticality == Critical {
			failed = append(failed, r)
		}
	}
	return failed
}

func (rep *Report) Passed() int {
	var n int
	for _, r := range rep.Results {
		if r.Passed {
			n++
		}
	}
	return n
}

func (rep *Report) Failed() int { return rep.Total() - rep.Passed() }
func (rep *Report) Total() int  { return len(rep.Results) }

// Group results by category, in category order. Empty categories are
// skipped.
func (rep *Report) ByCategory() iter.Seq2[Category, []Result] {
	return func(yield func(Category, []Result) bool) {
		var groups [numCategories][]Result
		for _, r := range rep.Results {
			if r.Category < numCategories {
				groups[r.Category] = append(groups[r.Category], r)
			}
		}

		for c, results := range groups {
			if len(results) == 0 {
				continue
			}
			if !yield(Category(c), results) {
				return
			}
		}
	}
}

// A set of requirements sharing everything but the path.
type group struct {
	Check       Check
	N           int
	Criticality Criticality
	Category    Category
	Prefix      string
	Reason      string
}

func (g group) of(names ...string) []Requirement {
	var reqs = make([]Requirement, len(names))
	for i, name := range names {
		reqs[i] = Requirement{
			Path:        g.Prefix + name,
			Check:       g.Check,
			N:           g.N,
			Criticality: g.Criticality,
			Category:    g.Category,
			Reason:      g.Reason,
		}
	}
	return reqs
}

// Kernel module requirements, as globs matching compressed or uncompressed
// module files anywhere under dir.
func modules(dir string, crit Criticality, names ...string) []Requirement {
	var reqs = make([]Requirement, len(names))
	for i, name := range names {
		reqs[i] = Requirement{
			Path:        dir + "/**/" + name + ".ko*",
			Check:       GlobCountAtLeast,
			N:           1,
			Criticality: crit,
			Category:    KernelModules,
			Reason:      "may be built into the kernel",
		}
	}
	return reqs
}
