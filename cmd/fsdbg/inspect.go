package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gobwas/glob"

	"go.pdmccormick.com/fsdbg"
	"go.pdmccormick.com/fsdbg/archive"
)

func cmdInspect(ctx context.Context, env *Env, args []string) (bool, error) {
	var fs = newFlagSet("inspect", env, "<archive>")
	var (
		verboseFlag = fs.Bool("verbose", env.Config.Verbose, "list every entry")
		filterFlag  = fs.String("filter", env.Config.Inspect.Filter, "only list entries matching `glob`")
		digestFlag  = fs.Bool("digest", false, "show the sha256 digest of each regular file")
		jsonFlag    = fs.Bool("json", false, "emit the entries as a JSON array")
		hexDumpFlag = fs.Bool("hexdump", false, "hex dump up to 512 bytes from each file")
	)

	pos, err := parseArgs(fs, args, 1, "<archive>")
	if err != nil {
		return false, err
	}

	var filter glob.Glob
	if *filterFlag != "" {
		if filter, err = archive.CompileGlob(*filterFlag); err != nil {
			return false, fsdbg.NewError(fsdbg.CodeInvalidArgument, "inspect", "", err)
		}
	}

	a, openErr := env.open(ctx, pos[0])
	if a == nil {
		return false, openErr
	}
	defer a.Close()

	var l = lister{W: env.Stdout, A: a, Filter: filter, Digest: *digestFlag, HexDump: *hexDumpFlag}

	switch {
	case *jsonFlag:
		err = l.JSON()
	case *verboseFlag || filter != nil:
		summary(env.Stdout, a)
		fmt.Fprintln(env.Stdout)
		err = l.List()
	default:
		summary(env.Stdout, a)
		fmt.Fprintln(env.Stdout)
		topLevel(env.Stdout, a.Index())
	}

	if openErr != nil {
		// Entries decoded before the stream broke off were listed above
		return false, openErr
	}
	return true, err
}

func formatName(a *archive.Archive) string {
	switch a.Format {
	case archive.FormatCpio:
		if a.Compression.Compression() {
			return fmt.Sprintf("CPIO (%s compressed)", a.Compression)
		}
		return "CPIO"
	case archive.FormatISO9660:
		return "ISO 9660"
	case archive.FormatEROFS:
		return "EROFS"
	default:
		return a.Format.String()
	}
}

func summary(w io.Writer, a *archive.Archive) {
	var s = a.Index().Stats()

	fmt.Fprintf(w, "=== Archive: %s ===\n", a.Path)
	fmt.Fprintf(w, "Format: %s\n", formatName(a))
	if a.VolumeID != "" {
		fmt.Fprintf(w, "Volume ID: %s\n", a.VolumeID)
	}
	fmt.Fprintf(w, "Entries: %d files, %d directories, %d symlinks", s.Files, s.Directories, s.Symlinks)
	if s.Devices > 0 {
		fmt.Fprintf(w, ", %d devices", s.Devices)
	}
	if s.Other > 0 {
		fmt.Fprintf(w, ", %d other", s.Other)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total size: %d bytes\n", s.TotalSize)
}

// One line per distinct first path segment, in archive order.
func topLevel(w io.Writer, idx *archive.Index) {
	fmt.Fprintf(w, "Top-level structure:\n")

	var shown = make(map[string]bool)
	for e := range idx.All() {
		top, _, nested := strings.Cut(e.Path, "/")
		if shown[top] {
			continue
		}
		shown[top] = true

		switch {
		case !nested && e.IsSymlink():
			fmt.Fprintf(w, "  %s -> %s\n", top, e.Target)
		case nested || e.IsDir():
			fmt.Fprintf(w, "  %s/\n", top)
		default:
			fmt.Fprintf(w, "  %s\n", top)
		}
	}
}

type lister struct {
	W       io.Writer
	A       *archive.Archive
	Filter  glob.Glob
	Digest  bool
	HexDump bool

	notFirst bool
}

func (l *lister) entries(yield func(archive.Entry) bool) {
	for e := range l.A.Entries() {
		if l.Filter != nil && !l.Filter.Match(e.Path) {
			continue
		}
		if !yield(e) {
			return
		}
	}
}

func (l *lister) digest(e archive.Entry) string {
	if !l.Digest || !e.IsRegular() {
		return ""
	}
	d, err := l.A.Digest(e)
	if err != nil {
		return ""
	}
	return d.String()
}

func (l *lister) hexDump(e archive.Entry) string {
	if !l.HexDump || !e.IsRegular() || e.Size == 0 {
		return ""
	}
	data, err := l.A.Content(e)
	if err != nil {
		return ""
	}
	return hex.Dump(data[:min(len(data), 512)])
}

// Entries in `ls -l` form.
func (l *lister) List() error {
	for e := range l.entries {
		var line = e.String()
		if d := l.digest(e); d != "" {
			line += "  " + d
		}
		if _, err := fmt.Fprintln(l.W, line); err != nil {
			return err
		}
		if dump := l.hexDump(e); dump != "" {
			fmt.Fprintf(l.W, "\n%s\n", dump)
		}
	}
	return nil
}

type jsonEntry struct {
	Path     string    `json:"path"`
	Kind     string    `json:"kind"`
	Mode     string    `json:"mode"`
	Uid      uint32    `json:"uid"`
	Gid      uint32    `json:"gid"`
	Size     int64     `json:"size"`
	Target   string    `json:"target,omitempty"`
	Mtime    time.Time `json:"mtime"`
	NumLinks uint32    `json:"nlink,omitempty"`
	Digest   string    `json:"digest,omitempty"`
	HexDump  string    `json:"hexdump,omitempty"`
}

func (l *lister) JSON() error {
	l.start()
	for e := range l.entries {
		var je = jsonEntry{
			Path:     e.Path,
			Kind:     e.Kind.String(),
			Mode:     fmt.Sprintf("%04o", e.Mode.Permissions()),
			Uid:      e.Uid,
			Gid:      e.Gid,
			Size:     e.Size,
			Target:   e.Target,
			Mtime:    e.Mtime.UTC(),
			NumLinks: e.NumLinks,
			Digest:   l.digest(e),
			HexDump:  l.hexDump(e),
		}
		if err := l.emitEntry(je); err != nil {
			return err
		}
	}
	l.stop()
	return nil
}

func (l *lister) start() {
	fmt.Fprintf(l.W, "[\n")
}

func (l *lister) stop() {
	if l.notFirst {
		fmt.Fprintf(l.W, "\n")
	}
	fmt.Fprintf(l.W, "]\n")
}

func (l *lister) emitEntry(entry any) error {
	const (
		Prefix = "  "
		Indent = "  "
	)

	data, err := json.MarshalIndent(entry, Prefix, Indent)
	if err != nil {
		return fmt.Errorf("json: %w", err)
	}

	var carry string
	if l.notFirst {
		carry = ",\n"
	}

	fmt.Fprintf(l.W, "%s"+Prefix+"%s", carry, string(data))

	l.notFirst = true
	return nil
}
