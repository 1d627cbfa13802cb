package archive

import (
	"bufio"
	"bytes"
	"context"
	"strconv"
	"strings"

	"go.pdmccormick.com/fsdbg"
	"go.pdmccormick.com/fsdbg/cpio"
	"go.pdmccormick.com/fsdbg/internal/exttool"
)

// List an EROFS image with dump.erofs.
func openEROFS(ctx context.Context, path string, o options) (*Archive, error) {
	var runner = exttool.Runner{Timeout: o.tools.Timeout, Logger: o.logger}

	out, err := runner.Output(ctx, o.tools.DumpErofs, "--ls", "-r", path)
	if err != nil {
		return nil, fsdbg.NewError(fsdbg.CodeExternalTool, "list", path, err)
	}

	entries, err := ParseErofsListing(out)
	if err != nil {
		return nil, fsdbg.NewError(fsdbg.CodeParse, "list", path, err)
	}

	var a = &Archive{
		Path:        path,
		Format:      FormatEROFS,
		Compression: cpio.UnknownLookahead,
		idx:         NewIndex(entries),
		release:     noRelease,
		logger:      o.logger,
	}

	if info, err := runner.Output(ctx, o.tools.DumpErofs, path); err != nil {
		o.logger.Debug("no erofs superblock info", "path", path, "err", err)
	} else {
		a.VolumeID = ParseErofsUUID(info)
	}

	return a, nil
}

// Parse the output of `dump.erofs --ls -r`. Long lines follow `ls -l`:
//
//	drwxr-xr-x   2 root root    4096 Jan  1 00:00 usr/bin
//	lrwxrwxrwx   1 root root       7 Jan  1 00:00 bin -> usr/bin
//
// while some versions print bare paths, with directories ending in "/".
// Listed entries have no readable content.
func ParseErofsListing(out []byte) ([]Entry, error) {
	var entries []Entry

	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(nil, 1<<20)
	for sc.Scan() {
		var line = strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var fields = strings.Fields(line)
		if len(fields) < 9 {
			var e = Entry{Path: line, Kind: KindRegular, Mode: cpio.Mode_File, Offset: NoContent}
			if strings.HasSuffix(line, "/") {
				e.Kind, e.Mode = KindDirectory, cpio.Mode_Dir
			}
			entries = append(entries, e)
			continue
		}

		mode, err := parseModeString(fields[0])
		if err != nil {
			return entries, err
		}

		name, target := splitLink(strings.Join(fields[8:], " "), mode)
		var e = Entry{
			Path:   name,
			Kind:   KindOf(mode),
			Mode:   mode,
			Target: target,
			Offset: NoContent,
		}
		e.NumLinks = parseUint32(fields[1])
		e.Uid = parseUint32(fields[2])
		e.Gid = parseUint32(fields[3])
		e.Size, _ = strconv.ParseInt(fields[4], 10, 64)

		entries = append(entries, e)
	}

	return entries, sc.Err()
}

// Find the "Filesystem UUID:" line of dump.erofs superblock output.
func ParseErofsUUID(out []byte) string {
	for line := range strings.Lines(string(out)) {
		if _, after, ok := strings.Cut(line, "Filesystem UUID:"); ok {
			return strings.TrimSpace(after)
		}
	}
	return ""
}

// Owner columns may hold names instead of ids.
func parseUint32(s string) uint32 {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(v)
}
