package main

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"go.pdmccormick.com/fsdbg/archive"
	"go.pdmccormick.com/fsdbg/diff"
)

// Listings of added or removed paths are cut off after this many lines
// unless -verbose is given.
const diffListLimit = 50

func cmdDiff(ctx context.Context, env *Env, args []string) (bool, error) {
	var fs = newFlagSet("diff", env, "<old> <new>")
	var (
		onlyDiffFlag = fs.Bool("only-diff", false, "list changed paths only")
		contentFlag  = fs.Bool("content", false, "also compare file contents by sha256 digest")
		verboseFlag  = fs.Bool("verbose", env.Config.Verbose, "list every path, without truncation")
	)

	pos, err := parseArgs(fs, args, 2, "<old>", "<new>")
	if err != nil {
		return false, err
	}

	var archives [2]*archive.Archive
	defer func() {
		for _, a := range archives {
			if a != nil {
				a.Close()
			}
		}
	}()

	eg, ctx := errgroup.WithContext(ctx)
	for i, path := range pos {
		eg.Go(func() error {
			a, err := env.open(ctx, path)
			archives[i] = a
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return false, err
	}

	var (
		older, newer = archives[0], archives[1]
		opts         = []diff.Option{diff.WithLogger(env.Logger)}
	)
	if *contentFlag {
		opts = append(opts, diff.WithContent(older, newer))
	}

	var entries = diff.Compare(older.Index(), newer.Index(), opts...)
	printDiff(env.Stdout, older, newer, entries, *onlyDiffFlag, *verboseFlag)
	return true, nil
}

func printDiff(w io.Writer, older, newer *archive.Archive, entries []diff.Entry, onlyDiff, verbose bool) {
	var counts = diff.Summarize(entries)

	fmt.Fprintf(w, "=== Diff ===\n")
	fmt.Fprintf(w, "Archive 1: %s (%s)\n", older.Path, formatName(older))
	fmt.Fprintf(w, "Archive 2: %s (%s)\n\n", newer.Path, formatName(newer))

	fmt.Fprintf(w, "Unchanged: %d\n", counts.Unchanged)
	fmt.Fprintf(w, "Modified: %d\n", counts.Modified)
	fmt.Fprintf(w, "Only in archive 1: %d\n", counts.Removed)
	fmt.Fprintf(w, "Only in archive 2: %d\n", counts.Added)

	if verbose || onlyDiff {
		if onlyDiff {
			entries = diff.OnlyChanges(entries)
		}
		if len(entries) > 0 {
			fmt.Fprintln(w)
		}
		for _, e := range entries {
			fmt.Fprintf(w, "  %s\n", e.String())
		}
		return
	}

	for _, section := range []struct {
		change diff.Change
		title  string
	}{
		{diff.Removed, "Only in " + older.Path},
		{diff.Added, "Only in " + newer.Path},
		{diff.Modified, "Modified"},
	} {
		var shown, total int
		for _, e := range entries {
			if e.Change != section.change {
				continue
			}
			if total == 0 {
				fmt.Fprintf(w, "\n%s:\n", section.title)
			}
			total++
			if shown < diffListLimit {
				fmt.Fprintf(w, "  %s\n", e.String())
				shown++
			}
		}
		if total > shown {
			fmt.Fprintf(w, "  ... and %d more\n", total-shown)
		}
	}
}
