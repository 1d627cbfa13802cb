// Package exttool runs the external inspection programs (dump.erofs,
// isoinfo) that some image formats are delegated to.
package exttool

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrNotFound = errors.New("executable not found")
	ErrTimeout  = errors.New("timed out")
)

// DefaultTimeout bounds a single tool invocation when a [Runner] has none.
const DefaultTimeout = 2 * time.Minute

// Runner executes tools with a per-invocation timeout. The zero value is
// ready to use.
type Runner struct {
	Timeout time.Duration
	Logger  *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}

// Look up name in $PATH, or accept it as is when it contains a slash.
func (r *Runner) Lookup(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.WithMessagef(ErrNotFound, "%s", name)
	}
	return path, nil
}

// Run name with args and return its standard output. A non-zero exit status
// is an error carrying the trimmed standard error text.
func (r *Runner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	path, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}

	var timeout = r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	var start = time.Now()
	err = cmd.Run()
	r.logger().Debug("ran external tool", "tool", name, "args", args, "duration", time.Since(start), "err", err)

	if ctx.Err() == context.DeadlineExceeded {
		return nil, errors.WithMessagef(ErrTimeout, "%s after %s", name, timeout)
	}
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, errors.WithMessagef(err, "%s: %s", name, msg)
		}
		return nil, errors.WithMessagef(err, "failed to run %s", name)
	}

	return stdout.Bytes(), nil
}
