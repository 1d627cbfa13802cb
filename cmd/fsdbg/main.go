// Command fsdbg audits initramfs, rootfs and ISO images without mounting or
// extracting them.
//
//	fsdbg [-config file] [-debug] <command> [flags] <archive>...
//
// Commands:
//
//	inspect <archive>            summarize or list the archive contents
//	verify <archive> -type name  check the archive against a built in checklist
//	check-symlinks <archive>     resolve every symlink inside the archive
//	diff <old> <new>             compare two archives path by path
//
// Exit status is 0 on success, 1 when a critical check fails or a symlink is
// broken, and 2 on any other error.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"go.pdmccormick.com/fsdbg"
	"go.pdmccormick.com/fsdbg/archive"
	"go.pdmccormick.com/fsdbg/internal/config"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitError  = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// Env is what every command runs with.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	Config config.Config
	Logger *slog.Logger
}

func (env *Env) open(ctx context.Context, path string) (*archive.Archive, error) {
	return archive.OpenContext(ctx, path, env.Config.ArchiveOptions(env.Logger)...)
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, env *Env, args []string) (ok bool, err error)
}

var commands = []command{
	{"inspect", "summarize or list the archive contents", cmdInspect},
	{"verify", "check the archive against a built in checklist", cmdVerify},
	{"check-symlinks", "resolve every symlink inside the archive", cmdCheckSymlinks},
	{"diff", "compare two archives path by path", cmdDiff},
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var fs = flag.NewFlagSet("fsdbg", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(fs) }

	var (
		configFlag = fs.String("config", "", "read configuration from `file`")
		debugFlag  = fs.Bool("debug", false, "log diagnostics to stderr")
	)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitError
	}

	var level = slog.LevelWarn
	if *debugFlag {
		level = slog.LevelDebug
	}
	var logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if fs.NArg() == 0 {
		usage(fs)
		return exitError
	}

	var name = fs.Arg(0)
	var cmd *command
	for i := range commands {
		if commands[i].name == name {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		printError(stderr, fsdbg.NewError(fsdbg.CodeInvalidArgument, "", "", fmt.Errorf("unknown command %q", name)))
		usage(fs)
		return exitError
	}

	cfg, cfgPath, err := config.Load(*configFlag)
	if err != nil {
		printError(stderr, fsdbg.NewError(fsdbg.CodeInvalidArgument, "config", cfgPath, err))
		return exitError
	}
	if cfgPath != "" {
		logger.Debug("loaded config", "path", cfgPath)
	}

	var env = Env{Stdout: stdout, Stderr: stderr, Config: cfg, Logger: logger}

	ok, err := cmd.run(ctx, &env, fs.Args()[1:])
	switch {
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case err != nil:
		printError(stderr, err)
		return exitError
	case !ok:
		return exitFailed
	}
	return exitOK
}

func usage(fs *flag.FlagSet) {
	var w = fs.Output()
	fmt.Fprintf(w, "usage: fsdbg [flags] <command> [command flags] <archive>...\n\ncommands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-16s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "\nflags:\n")
	fs.PrintDefaults()
}

// Errors print as "[E00n] message".
func printError(w io.Writer, err error) {
	var fe *fsdbg.Error
	if errors.As(err, &fe) {
		fmt.Fprintln(w, fe.Error())
		return
	}
	fmt.Fprintf(w, "[%s] %s\n", fsdbg.CodeOf(err).String(), err)
}

// Parse flags that may appear before, between or after the positional
// arguments, which are returned. Exactly n positional arguments are
// required.
func parseArgs(fs *flag.FlagSet, args []string, n int, names ...string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, err
			}
			return nil, fsdbg.NewError(fsdbg.CodeInvalidArgument, fs.Name(), "", err)
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}

	if len(positional) != n {
		return nil, fsdbg.NewError(fsdbg.CodeInvalidArgument, fs.Name(), "",
			fmt.Errorf("expected %s, got %d arguments", strings.Join(names, " "), len(positional)))
	}
	return positional, nil
}

func newFlagSet(name string, env *Env, positional string) *flag.FlagSet {
	var fs = flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(env.Stderr, "usage: fsdbg %s [flags] %s\n\nflags:\n", name, positional)
		fs.PrintDefaults()
	}
	return fs
}
