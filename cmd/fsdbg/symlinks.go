package main

import (
	"context"
	"fmt"

	"go.pdmccormick.com/fsdbg/archive"
	"go.pdmccormick.com/fsdbg/symlink"
)

func cmdCheckSymlinks(ctx context.Context, env *Env, args []string) (bool, error) {
	var fs = newFlagSet("check-symlinks", env, "<archive>")
	var verboseFlag = fs.Bool("verbose", env.Config.Verbose, "also show links that resolve")

	pos, err := parseArgs(fs, args, 1, "<archive>")
	if err != nil {
		return false, err
	}

	a, openErr := env.open(ctx, pos[0])
	if a == nil {
		return false, openErr
	}
	defer a.Close()

	var (
		w       = env.Stdout
		results = symlink.CheckAll(a.Index())
		broken  = symlink.Broken(results)
	)

	fmt.Fprintf(w, "=== Symlink Verification: %s ===\n\n", a.Path)

	if *verboseFlag {
		for _, r := range results {
			if r.OK() {
				fmt.Fprintf(w, "  [OK] /%s -> %s => /%s\n", r.Path, linkTarget(a.Index(), r.Path), r.Entry.Path)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Valid symlinks: %d\n", len(results)-len(broken))
	fmt.Fprintf(w, "Broken symlinks: %d\n", len(broken))

	if len(broken) > 0 {
		fmt.Fprintln(w)
		for _, r := range broken {
			fmt.Fprintf(w, "  [BROKEN] /%s -> %s: %s\n", r.Path, linkTarget(a.Index(), r.Path), r.Outcome)
			if *verboseFlag {
				fmt.Fprintf(w, "           %s\n", r.String())
			}
		}
	}

	fmt.Fprintln(w)
	switch {
	case openErr != nil:
		fmt.Fprintf(w, "Result: INCOMPLETE\n")
		return false, openErr
	case len(broken) > 0:
		fmt.Fprintf(w, "Result: FAIL\n")
		return false, nil
	}
	fmt.Fprintf(w, "Result: PASS\n")
	return true, nil
}

func linkTarget(idx *archive.Index, p string) string {
	e, _ := idx.Lookup(p)
	return e.Target
}
