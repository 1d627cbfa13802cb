package cpio

import (
	"errors"
	"io"
	"os"
	"path"
	"strings"
)

// Writer encodes a newc archive. It exists to build test images and the
// layouts the [Reader] must cope with: implicit parent directories, zero
// padding between records and a compressed continuation.
type Writer struct {
	base io.Writer
	out  io.Writer // base, or the compressor once one has been started
	comp io.WriteCloser

	offset    int64 // bytes written to out
	remaining int64 // data bytes still owed for the current record
	padBefore int64 // alignment for the next header, 0 for none
	nextInode uint32

	dirs      map[string]bool
	noParents bool
	closed    bool
}

var (
	ErrBadAlignment      = errors.New("cpio: alignment must be a multiple of 4")
	ErrAlreadyCompressed = errors.New("cpio: compression already started")
)

// Before a compressed continuation the uncompressed output is padded to this
// boundary.
const StartCompressionAlignment = 512

const mkdirPerm Mode = 0o700

func NewWriter(w io.Writer) *Writer {
	return &Writer{base: w, out: w, dirs: make(map[string]bool)}
}

// Stop synthesizing parent directory records, so archives with implicit
// parents can be built.
func (iw *Writer) DisableParentDirs() { iw.noParents = true }

// Write data for the current record. Writing past its DataSize returns
// [io.EOF].
func (iw *Writer) Write(p []byte) (int, error) {
	if iw.closed {
		return 0, os.ErrClosed
	}
	if iw.remaining == 0 {
		return 0, io.EOF
	}

	var short bool
	if int64(len(p)) > iw.remaining {
		p, short = p[:iw.remaining], true
	}
	n, err := iw.emit(p)
	iw.remaining -= int64(n)
	if err == nil && short {
		err = io.EOF
	}
	return n, err
}

func (iw *Writer) emit(p []byte) (int, error) {
	n, err := iw.out.Write(p)
	iw.offset += int64(n)
	return n, err
}

var zeros [512]byte

func (iw *Writer) zeroFill(n int64) error {
	for n > 0 {
		k, err := iw.emit(zeros[:min(n, int64(len(zeros)))])
		if err != nil {
			return err
		}
		n -= int64(k)
	}
	return nil
}

func fill(n, to int64) int64 {
	if r := n % to; r != 0 {
		return to - r
	}
	return 0
}

func (iw *Writer) align(to int64) error { return iw.zeroFill(fill(iw.offset, to)) }

// Pad out whatever data the current record has not been given.
func (iw *Writer) finishRecord() error {
	n := iw.remaining
	iw.remaining = 0
	return iw.zeroFill(n)
}

// Zero pad so that the next header starts on a multiple of to, which must
// itself be a multiple of 4. Applies to one header only.
func (iw *Writer) SetHeaderAlignment(to int) error {
	if to%4 != 0 {
		return ErrBadAlignment
	}
	iw.padBefore = int64(to)
	return nil
}

// Route all further output through a compressor created by c. A compressed
// stream can only end with the file, so this may be called once.
func (iw *Writer) StartCompression(c CompressWriter) error {
	switch {
	case iw.closed:
		return os.ErrClosed
	case iw.comp != nil:
		return ErrAlreadyCompressed
	}

	if err := iw.finishRecord(); err != nil {
		return err
	}
	if err := iw.align(StartCompressionAlignment); err != nil {
		return err
	}

	cw, err := c(iw.out)
	if err != nil {
		return err
	}
	iw.comp, iw.out, iw.offset = cw, cw, 0
	return nil
}

type flusher interface{ Flush() error }

// Flush buffered output of the compressor and of the underlying writer, when
// they support it.
func (iw *Writer) Flush() error {
	if iw.closed {
		return os.ErrClosed
	}
	var errs []error
	for _, w := range []io.Writer{iw.comp, iw.base} {
		if f, ok := w.(flusher); ok {
			errs = append(errs, f.Flush())
		}
	}
	return errors.Join(errs...)
}

// Flush, then close the compressor and the underlying writer if it is an
// [io.Closer].
func (iw *Writer) Close() error {
	if iw.closed {
		return os.ErrClosed
	}
	var errs = []error{iw.Flush()}
	if iw.comp != nil {
		errs = append(errs, iw.comp.Close())
	}
	if c, ok := iw.base.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	iw.closed = true
	return errors.Join(errs...)
}

// Add directory p and any missing parents, root first. Directories already
// in the archive are skipped. A zero perm means 0700.
func (iw *Writer) MkdirAll(p string, perm Mode) error {
	if iw.closed {
		return os.ErrClosed
	}
	if perm == 0 {
		perm = mkdirPerm
	}

	p = strings.Trim(p, "/")
	if p == "" || p == "." {
		return iw.mkdir(".", perm)
	}
	if iw.dirs[p] {
		return nil
	}

	if err := iw.mkdir(".", perm); err != nil {
		return err
	}
	for i := range len(p) {
		if p[i] == '/' {
			if err := iw.mkdir(p[:i], perm); err != nil {
				return err
			}
		}
	}
	return iw.mkdir(p, perm)
}

func (iw *Writer) mkdir(p string, perm Mode) error {
	if iw.dirs[p] {
		return nil
	}
	iw.dirs[p] = true
	return iw.writeHeader(&Header{Mode: Mode_Dir | perm&Mode_PermsMask, Filename: p})
}

// Write hdr and prepare for DataSize bytes of data. Leading slashes are
// stripped from Filename, an empty Magic becomes [Magic_070701], NumLinks is
// at least 1 and a zero Inode is numbered automatically. Unless disabled,
// missing parent directories are written first.
func (iw *Writer) WriteHeader(hdr *Header) error {
	if iw.closed {
		return os.ErrClosed
	}

	hdr.Filename = strings.TrimLeft(hdr.Filename, "/")
	if hdr.Filename == "" {
		hdr.Filename = "."
	}

	switch {
	case hdr.Trailer():
		clear(iw.dirs)
	case hdr.Mode.Dir():
		iw.dirs[hdr.Filename] = true
	}

	if !hdr.Trailer() && !iw.noParents {
		if err := iw.MkdirAll(path.Dir(hdr.Filename), 0); err != nil {
			return err
		}
	}
	return iw.writeHeader(hdr)
}

func (iw *Writer) writeHeader(hdr *Header) error {
	if err := iw.finishRecord(); err != nil {
		return err
	}

	if hdr.Magic == "" {
		hdr.Magic = Magic_070701
	}
	hdr.NumLinks = max(hdr.NumLinks, 1)
	if hdr.Inode == 0 && !hdr.Trailer() {
		hdr.Inode = iw.nextInode
	}
	iw.nextInode = max(iw.nextInode, hdr.Inode) + 1
	hdr.FilenameSize = uint32(len(hdr.Filename) + 1)

	var to int64 = 4
	if iw.padBefore > 0 {
		to, iw.padBefore = iw.padBefore, 0
	}
	if err := iw.align(4); err != nil {
		return err
	}
	if err := iw.align(to); err != nil {
		return err
	}

	n, err := hdr.WriteTo(iw.out)
	iw.offset += n
	if err != nil {
		return err
	}
	if err := iw.align(4); err != nil {
		return err
	}

	iw.remaining = int64(hdr.DataSize)
	return nil
}

// Write the TRAILER!!! record that ends the archive.
func (iw *Writer) WriteTrailer() error {
	var hdr = trailerHeader
	return iw.WriteHeader(&hdr)
}

// Write hdr followed by data, setting DataSize and, for [Magic_070702],
// Checksum.
func (iw *Writer) WriteFile(hdr *Header, data []byte) error {
	hdr.DataSize = uint32(len(data))
	if hdr.Magic == Magic_070702 {
		hdr.Checksum = ComputeChecksum(data)
	}
	if err := iw.WriteHeader(hdr); err != nil || len(data) == 0 {
		return err
	}
	_, err := iw.Write(data)
	return err
}

// Write a symlink record. A zero perm means 0777.
func (iw *Writer) Symlink(name, target string, perm Mode) error {
	if perm == 0 {
		perm = 0o777
	}
	var hdr = Header{Mode: Mode_Symlink | perm&Mode_PermsMask, Filename: name}
	return iw.WriteFile(&hdr, []byte(target))
}
