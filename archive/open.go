package archive

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"

	"go.pdmccormick.com/fsdbg"
	"go.pdmccormick.com/fsdbg/cpio"
)

var (
	ErrUnknownFormat = errors.New("archive: unrecognized image format")
	ErrNotCpio       = errors.New("archive: decompressed stream is not a cpio newc archive")
	ErrNoContent     = errors.New("archive: entry content is not available")
	ErrNeedsFile     = errors.New("archive: image type can only be opened from a file")
)

// Format is an image type, as identified by its magic bytes.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatCpio
	FormatISO9660
	FormatEROFS
)

func (f Format) String() string {
	switch f {
	case FormatCpio:
		return "cpio"
	case FormatISO9660:
		return "iso9660"
	case FormatEROFS:
		return "erofs"
	default:
		return "unknown"
	}
}

const (
	isoMagicOffset   = 0x8001
	isoMagic         = "CD001"
	erofsMagicOffset = 1024
	erofsMagic       = 0xE0F5E1E2
)

// Identify the image format from its leading bytes. For cpio archives the
// compression wrapping is returned too, or [cpio.CpioFile] if there is none.
// Compressed data is assumed to hold a cpio archive until it is unwrapped.
// A stream that starts like a cpio archive is one, whatever its content
// holds at the ISO 9660 or EROFS superblock offsets.
func Detect(data []byte) (Format, cpio.Lookahead) {
	var la = cpio.Sniff(data)
	if la == cpio.CpioFile || la.Compression() {
		return FormatCpio, la
	}

	if len(data) >= isoMagicOffset+len(isoMagic) && string(data[isoMagicOffset:isoMagicOffset+len(isoMagic)]) == isoMagic {
		return FormatISO9660, cpio.UnknownLookahead
	}
	if len(data) >= erofsMagicOffset+4 && binary.LittleEndian.Uint32(data[erofsMagicOffset:]) == erofsMagic {
		return FormatEROFS, cpio.UnknownLookahead
	}
	return FormatUnknown, la
}

// Archive is an opened image with its entries indexed.
type Archive struct {
	Path        string
	Format      Format
	Compression cpio.Lookahead // [cpio.CpioFile] when uncompressed
	VolumeID    string         // ISO volume id or EROFS UUID, if known

	idx     *Index
	data    []byte // decoded cpio stream
	release func() error
	logger  *slog.Logger
}

func noRelease() error { return nil }

// Open the image at path. See [OpenContext].
func Open(path string, opts ...Option) (*Archive, error) {
	return OpenContext(context.Background(), path, opts...)
}

// Open the image at path, detect its format from magic bytes and index every
// entry. ISO 9660 and EROFS images are listed with external tools, which run
// under ctx.
//
// A cpio stream that ends before its trailer returns both the archive, holding
// every entry decoded so far, and an error with [fsdbg.CodeCorrupt].
//
// The caller must [Archive.Close] the archive.
func OpenContext(ctx context.Context, path string, opts ...Option) (*Archive, error) {
	var o = newOptions(opts)

	data, release, err := readFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fsdbg.NewError(fsdbg.CodeNotFound, "open", path, err)
		}
		return nil, fsdbg.NewError(fsdbg.CodeIO, "open", path, err)
	}

	format, _ := Detect(data)
	o.logger.Debug("opened image", "path", path, "size", len(data), "format", format)

	switch format {
	case FormatISO9660, FormatEROFS:
		if err := release(); err != nil {
			return nil, fsdbg.NewError(fsdbg.CodeIO, "open", path, err)
		}
		if format == FormatISO9660 {
			return openISO(ctx, path, o)
		}
		return openEROFS(ctx, path, o)
	}

	a, err := decode(path, data, o)
	if a == nil || a.Compression.Compression() {
		// Nothing refers to the mapping any more
		if rerr := release(); rerr != nil && err == nil {
			err = fsdbg.NewError(fsdbg.CodeIO, "open", path, rerr)
		}
	} else {
		a.release = release
	}
	return a, err
}

// Decode an image held in memory. Only cpio archives, optionally compressed,
// can be decoded this way. Data must not be modified while the archive is in
// use.
func Decode(data []byte, opts ...Option) (*Archive, error) {
	return decode("", data, newOptions(opts))
}

func decode(path string, data []byte, o options) (*Archive, error) {
	format, la := Detect(data)
	switch format {
	case FormatCpio:
	case FormatISO9660, FormatEROFS:
		return nil, fsdbg.NewError(fsdbg.CodeUnsupported, "decode", path, fmt.Errorf("%w: %s", ErrNeedsFile, format))
	default:
		return nil, fsdbg.NewError(fsdbg.CodeUnsupported, "decode", path, ErrUnknownFormat)
	}

	var a = &Archive{
		Path:        path,
		Format:      FormatCpio,
		Compression: la,
		data:        data,
		release:     noRelease,
		logger:      o.logger,
	}

	if la.Compression() {
		out, err := cpio.CompressReaders.Decompress(la, bytes.NewReader(data), o.maxDecompressed)
		switch {
		case errors.Is(err, cpio.ErrNoCompressReader):
			return nil, fsdbg.NewError(fsdbg.CodeUnsupported, "decompress", path, err)
		case err != nil:
			return nil, fsdbg.NewError(fsdbg.CodeCorrupt, "decompress", path, err)
		}

		o.logger.Debug("decompressed stream", "compression", la, "size", len(out))

		if cpio.Sniff(out) != cpio.CpioFile {
			return nil, fsdbg.NewError(fsdbg.CodeUnsupported, "decode", path, ErrNotCpio)
		}
		a.data = out
	}

	if len(a.data) == 0 {
		return nil, fsdbg.NewError(fsdbg.CodeUnsupported, "decode", path, ErrUnknownFormat)
	}

	entries, err := a.readEntries()
	a.idx = NewIndex(entries)
	if err != nil {
		return a, fsdbg.NewError(fsdbg.CodeCorrupt, "decode", path, err)
	}
	return a, nil
}

func (a *Archive) readEntries() ([]Entry, error) {
	var (
		r       = cpio.NewReader(a.data)
		entries []Entry
		names   []string
	)

	for _, hdr := range r.All() {
		entries = append(entries, entryFromHeader(&hdr, r.Data(&hdr)))
		names = append(names, hdr.Filename)
	}
	if err := r.Err(); err != nil {
		a.logger.Warn("archive decode stopped early", "path", a.Path, "entries", len(entries), "err", err)
		return entries, err
	}

	if rest := r.Remaining(); rest != cpio.EOF {
		a.logger.Info("ignoring data after trailer", "path", a.Path, "offset", r.Offset(), "kind", rest)
		if cpio.EarlyMicrocodeOnly(names) {
			a.logger.Warn("archive only holds early microcode, the main initramfs after it is not decoded", "path", a.Path)
		}
	}

	return entries, nil
}

// Unmap the image, if it was mapped. Content is unavailable afterwards.
func (a *Archive) Close() error {
	var release = a.release
	a.release = nil
	a.data = nil
	if release == nil {
		return nil
	}
	return release()
}

func (a *Archive) Index() *Index { return a.idx }

// Entries in the order they first appeared in the archive.
func (a *Archive) Entries() iter.Seq[Entry] { return a.idx.All() }

func (a *Archive) Lookup(p string) (Entry, bool) { return a.idx.Lookup(p) }
func (a *Archive) Exists(p string) bool          { return a.idx.Exists(p) }

// The content bytes of e. The returned slice aliases the archive buffer and
// must not be modified.
func (a *Archive) Content(e Entry) ([]byte, error) {
	if !e.HasContent() || a.data == nil {
		return nil, ErrNoContent
	}

	var end = e.Offset + e.Size
	if e.Offset < 0 || end > int64(len(a.data)) || end < e.Offset {
		return nil, ErrNoContent
	}
	return a.data[e.Offset:end], nil
}
