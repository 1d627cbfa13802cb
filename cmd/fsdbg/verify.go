package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.pdmccormick.com/fsdbg"
	"go.pdmccormick.com/fsdbg/archive"
	"go.pdmccormick.com/fsdbg/checklist"
)

func cmdVerify(ctx context.Context, env *Env, args []string) (bool, error) {
	var fs = newFlagSet("verify", env, "<archive>")
	var (
		typeFlag    = fs.String("type", "", "checklist `name`: install-initramfs, live-initramfs, rootfs, auth-audit or iso")
		verboseFlag = fs.Bool("verbose", env.Config.Verbose, "also show passing checks")
	)

	pos, err := parseArgs(fs, args, 1, "<archive>")
	if err != nil {
		return false, err
	}

	if *typeFlag == "" {
		return false, fsdbg.NewError(fsdbg.CodeInvalidArgument, "verify", "", fmt.Errorf("-type is required"))
	}
	name, err := checklist.ParseName(*typeFlag)
	if err != nil {
		return false, fsdbg.NewError(fsdbg.CodeInvalidArgument, "verify", "", err)
	}

	a, openErr := env.open(ctx, pos[0])
	if a == nil {
		return false, openErr
	}
	defer a.Close()

	if err := checkApplies(name, a); err != nil {
		return false, err
	}

	var rep = name.Verify(a.Index())
	printReport(env.Stdout, rep, *verboseFlag)

	if openErr != nil {
		// The report only covers entries decoded before the stream broke off
		return false, openErr
	}
	if rep.HasCriticalFailures() {
		env.Logger.Debug("critical checks failed", "checklist", name, "count", len(rep.CriticalFailures()))
		return false, nil
	}
	return true, nil
}

// The ISO checklist only makes sense for ISO images, and the others only for
// what is inside them.
func checkApplies(name checklist.Name, a *archive.Archive) error {
	var iso = a.Format == archive.FormatISO9660
	switch {
	case name == checklist.LiveISO && !iso:
		return fsdbg.NewError(fsdbg.CodeInvalidArgument, "verify", a.Path,
			fmt.Errorf("the %s checklist requires an ISO image, not %s", name, a.Format))
	case name != checklist.LiveISO && iso:
		return fsdbg.NewError(fsdbg.CodeInvalidArgument, "verify", a.Path,
			fmt.Errorf("the %s checklist applies to the initramfs or rootfs inside an ISO image, use %s", name, checklist.LiveISO))
	}
	return nil
}

func printResult(w io.Writer, r *checklist.Result) {
	var status = "[PASS]"
	if !r.Passed {
		status = "[FAIL]"
		if r.Criticality == checklist.Optional {
			status = "[WARN]"
		}
	}
	if r.Message != "" {
		fmt.Fprintf(w, "  %s %s - %s\n", status, r.ID(), r.Message)
	} else {
		fmt.Fprintf(w, "  %s %s\n", status, r.ID())
	}
}

// Failures are always shown. Passing checks are listed when verbose,
// otherwise only counted.
func printReport(w io.Writer, rep *checklist.Report, verbose bool) {
	fmt.Fprintf(w, "=== Verification: %s ===\n\n", rep.Title)

	var allPassed []string
	for category, results := range rep.ByCategory() {
		var passed int
		for _, r := range results {
			if r.Passed {
				passed++
			}
		}

		if !verbose && passed == len(results) {
			allPassed = append(allPassed, fmt.Sprintf("%s (%d)", category, passed))
			continue
		}

		fmt.Fprintf(w, "%s:\n", category)
		for _, r := range results {
			if verbose && r.Passed {
				printResult(w, &r)
			}
		}
		for _, r := range results {
			if !r.Passed {
				printResult(w, &r)
			}
		}
		if !verbose && passed > 0 {
			fmt.Fprintf(w, "  (%d passed)\n", passed)
		}
		fmt.Fprintln(w)
	}

	if len(allPassed) > 0 {
		fmt.Fprintf(w, "All passed: %s\n\n", strings.Join(allPassed, ", "))
	}

	var status = "PASS"
	if rep.HasCriticalFailures() {
		status = "FAIL"
	}
	fmt.Fprintf(w, "Result: %s (%d/%d checks passed", status, rep.Passed(), rep.Total())
	if n := len(rep.CriticalFailures()); n > 0 {
		fmt.Fprintf(w, ", %d critical failures", n)
	}
	fmt.Fprintf(w, ")\n")
}
