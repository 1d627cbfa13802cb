// Package fixture builds small cpio archives for tests.
package fixture

import (
	"bytes"
	"io"
	"time"

	"go.pdmccormick.com/fsdbg/cpio"
)

// File is one archive member.
type File struct {
	Path  string
	Mode  cpio.Mode
	Data  string // Content, or the target of a symlink
	Uid   uint32
	Gid   uint32
	Mtime time.Time
}

func Dir(path string) File { return File{Path: path, Mode: cpio.Mode_Dir | 0o755} }

func Reg(path string, perm cpio.Mode, data string) File {
	return File{Path: path, Mode: cpio.Mode_File | perm, Data: data}
}

// An executable regular file.
func Exe(path string) File { return Reg(path, 0o755, "\x7fELF") }

func Link(path, target string) File {
	return File{Path: path, Mode: cpio.Mode_Symlink | 0o777, Data: target}
}

// Write the files, in order and without adding parent directories, followed
// by the trailer.
func Write(w io.Writer, files ...File) error {
	cw := cpio.NewWriter(w)
	cw.DisableParentDirs()

	for _, f := range files {
		var hdr = cpio.Header{
			Mode:     f.Mode,
			Uid:      f.Uid,
			Gid:      f.Gid,
			Mtime:    f.Mtime,
			Filename: f.Path,
		}
		if err := cw.WriteFile(&hdr, []byte(f.Data)); err != nil {
			return err
		}
	}

	if err := cw.WriteTrailer(); err != nil {
		return err
	}
	return cw.Flush()
}

// Build an uncompressed archive. Panics on error, which can only come from a
// malformed File.
func Cpio(files ...File) []byte {
	var buf bytes.Buffer
	if err := Write(&buf, files...); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Build an archive compressed with cw.
func Compressed(cw cpio.CompressWriter, files ...File) []byte {
	var buf bytes.Buffer
	zw, err := cw(&buf)
	if err != nil {
		panic(err)
	}
	if err := Write(zw, files...); err != nil {
		panic(err)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
