package archive

import (
	"bufio"
	"bytes"
	"context"
	"strconv"
	"strings"
	"time"

	"go.pdmccormick.com/fsdbg"
	"go.pdmccormick.com/fsdbg/cpio"
	"go.pdmccormick.com/fsdbg/internal/exttool"
)

// List an ISO 9660 image with isoinfo, using Rock Ridge names.
func openISO(ctx context.Context, path string, o options) (*Archive, error) {
	var runner = exttool.Runner{Timeout: o.tools.Timeout, Logger: o.logger}

	out, err := runner.Output(ctx, o.tools.Isoinfo, "-l", "-R", "-i", path)
	if err != nil {
		return nil, fsdbg.NewError(fsdbg.CodeExternalTool, "list", path, err)
	}

	entries, err := ParseIsoinfoListing(out)
	if err != nil {
		return nil, fsdbg.NewError(fsdbg.CodeParse, "list", path, err)
	}

	var a = &Archive{
		Path:        path,
		Format:      FormatISO9660,
		Compression: cpio.UnknownLookahead,
		idx:         NewIndex(entries),
		release:     noRelease,
		logger:      o.logger,
	}

	if info, err := runner.Output(ctx, o.tools.Isoinfo, "-d", "-i", path); err != nil {
		o.logger.Debug("no iso volume descriptor", "path", path, "err", err)
	} else {
		a.VolumeID = ParseIsoVolumeID(info)
	}

	return a, nil
}

const isoinfoDirPrefix = "Directory listing of "

// Parse the output of `isoinfo -l -R`. Each directory section starts with a
// "Directory listing of /path/" line followed by entries like
//
//	drwxr-xr-x   1    0    0            2048 Jan 27 2026 [     37 02]  boot
//
// The bracketed extent location is skipped. "." and ".." are dropped.
func ParseIsoinfoListing(out []byte) ([]Entry, error) {
	var (
		entries []Entry
		dir     string
	)

	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(nil, 1<<20)
	for sc.Scan() {
		var line = strings.TrimSpace(sc.Text())

		if after, ok := strings.CutPrefix(line, isoinfoDirPrefix); ok {
			dir = after
			continue
		}

		if line == "" || strings.HasPrefix(line, "---") {
			continue
		}

		var fields = strings.Fields(line)
		if len(fields) < 9 {
			continue
		}

		mode, err := parseModeString(fields[0])
		if err != nil {
			return entries, err
		}

		var nameAt = -1
		for i := 8; i < len(fields); i++ {
			if strings.HasSuffix(fields[i], "]") {
				nameAt = i + 1
				break
			}
		}
		if nameAt < 0 || nameAt >= len(fields) {
			continue
		}

		name, target := splitLink(strings.Join(fields[nameAt:], " "), mode)
		if name == "." || name == ".." {
			continue
		}

		var e = Entry{
			Path:     dir + "/" + name,
			Kind:     KindOf(mode),
			Mode:     mode,
			Target:   target,
			Offset:   NoContent,
			NumLinks: parseUint32(fields[1]),
			Uid:      parseUint32(fields[2]),
			Gid:      parseUint32(fields[3]),
		}
		e.Size, _ = strconv.ParseInt(fields[4], 10, 64)
		if mtime, err := time.Parse("Jan 2 2006", strings.Join(fields[5:8], " ")); err == nil {
			e.Mtime = mtime
		}

		entries = append(entries, e)
	}

	return entries, sc.Err()
}

// Find the "Volume id:" line of `isoinfo -d` output.
func ParseIsoVolumeID(out []byte) string {
	for line := range strings.Lines(string(out)) {
		if after, ok := strings.CutPrefix(line, "Volume id:"); ok {
			return strings.TrimSpace(after)
		}
	}
	return ""
}
