package cpio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"
)

// Errors related to [Header].
var (
	ErrMalformedFilename = errors.New("cpio: filename field is missing trailing 0")
	ErrBadHeaderMagic    = errors.New("cpio: header contains a bad magic value")
	ErrInvalidField      = errors.New("cpio: header field is not valid hexadecimal")
)

// Names of the fixed header fields, in stream order.
var FieldNames = [...]string{
	"magic",
	"ino",
	"mode",
	"uid",
	"gid",
	"nlink",
	"mtime",
	"filesize",
	"devmajor",
	"devminor",
	"rdevmajor",
	"rdevminor",
	"namesize",
	"check",
}

// A FieldError reports which fixed header field failed to parse.
type FieldError struct {
	Field  string // One of [FieldNames]
	Offset int    // Of the bad character, from the start of the header
	Byte   byte
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("cpio: header field %s: invalid byte %q at offset %d", e.Field, e.Byte, e.Offset)
}

func (e *FieldError) Unwrap() error { return ErrInvalidField }

// Magic identifiers for cpio archive member file headers.
const (
	Magic_070701 = `070701`
	Magic_070702 = `070702`
)

// The sentinel filename that indicates end-of-archive.
const TrailerFilename = "TRAILER!!!"

var trailerHeader = Header{
	Magic:        Magic_070701,
	NumLinks:     1,
	FilenameSize: uint32(len(TrailerFilename) + 1),
	Filename:     TrailerFilename,
}

// File mode, type and permission bits
type Mode uint32

var fileTypeChars = map[Mode]byte{
	Mode_Dir:         'd',
	Mode_Socket:      's',
	Mode_Symlink:     'l',
	Mode_BlockDevice: 'b',
	Mode_CharDevice:  'c',
	Mode_FIFO:        'p',
}

// Formats the mode like `ls -l`, including setuid, setgid and sticky bits.
func (m Mode) String() string {
	var s = []byte("----------")
	if c, ok := fileTypeChars[m.FileType()]; ok {
		s[0] = c
	}
	for i, c := range "rwxrwxrwx" {
		if m&(0o400>>i) != 0 {
			s[1+i] = byte(c)
		}
	}

	for _, sp := range []struct {
		bit  Mode
		at   int
		char byte
	}{
		{Mode_SUID, 3, 's'},
		{Mode_SGID, 6, 's'},
		{Mode_Sticky, 9, 't'},
	} {
		if m&sp.bit == 0 {
			continue
		}
		if s[sp.at] == 'x' {
			s[sp.at] = sp.char
		} else {
			s[sp.at] = sp.char - 'a' + 'A'
		}
	}
	return string(s)
}

func (m Mode) FileType() Mode { return m & Mode_FileTypeMask }
func (m Mode) Perms() int     { return int(m & Mode_PermsMask) }

// Permission bits including setuid, setgid and sticky.
func (m Mode) Permissions() Mode { return m & (Mode_PermsMask | Mode_SUID | Mode_SGID | Mode_Sticky) }

func (m Mode) Socket() bool      { return m.FileType() == Mode_Socket }
func (m Mode) Symlink() bool     { return m.FileType() == Mode_Symlink }
func (m Mode) File() bool        { return m.FileType() == Mode_File }
func (m Mode) BlockDevice() bool { return m.FileType() == Mode_BlockDevice }
func (m Mode) Dir() bool         { return m.FileType() == Mode_Dir }
func (m Mode) CharDevice() bool  { return m.FileType() == Mode_CharDevice }
func (m Mode) FIFO() bool        { return m.FileType() == Mode_FIFO }
func (m Mode) SUID() bool        { return m&Mode_SUID != 0 }
func (m Mode) SGID() bool        { return m&Mode_SGID != 0 }
func (m Mode) Sticky() bool      { return m&Mode_Sticky != 0 }

// Any of the user, group or other execute bits are set.
func (m Mode) Executable() bool { return m&(UserExecute|GroupExecute|OtherExecute) != 0 }

const (
	Mode_FileTypeMask Mode = 0o170_000
	Mode_Socket       Mode = 0o140_000 // File type for sockets.
	Mode_Symlink      Mode = 0o120_000 // File type for symbolic links (file data is link target).
	Mode_File         Mode = 0o100_000 // File type for regular files.
	Mode_BlockDevice  Mode = 0o060_000 // File type for block devices.
	Mode_Dir          Mode = 0o040_000 // File type for directories.
	Mode_CharDevice   Mode = 0o020_000 // File type for character devices.
	Mode_FIFO         Mode = 0o010_000 // File type for named pipes or FIFO's.
	Mode_SUID         Mode = 0o004_000 // SUID bit.
	Mode_SGID         Mode = 0o002_000 // SGID bit.
	Mode_Sticky       Mode = 0o001_000 // Sticky bit.
	Mode_PermsMask    Mode = 0o000_777 // Permission bits (read/write/execute for user, group and other).

	UserRead     Mode = 0o400
	UserWrite    Mode = 0o200
	UserExecute  Mode = 0o100
	GroupRead    Mode = 0o040
	GroupWrite   Mode = 0o020
	GroupExecute Mode = 0o010
	OtherRead    Mode = 0o004
	OtherWrite   Mode = 0o002
	OtherExecute Mode = 0o001
)

// Header for a file member within a cpio archive.
type Header struct {
	HeaderOffset int64
	DataOffset   int64

	// Fixed length fields
	Magic        string    // Either `070701` or `070702`
	Inode        uint32    // File inode number
	Mode         Mode      // File mode and permission bits
	Uid          uint32    // File owner user id
	Gid          uint32    // File owner group id
	NumLinks     uint32    // Number of hard links
	Mtime        time.Time // Modification time (seconds since Unix epoch)
	DataSize     uint32    // Size of file data following the header
	Major        uint32    // Major part of file device number
	Minor        uint32    // Minor part of file device number
	RMajor       uint32    // Major part of device node reference
	RMinor       uint32    // Minor part of device node reference
	FilenameSize uint32    // Length of filename field (including trailing 0)
	Checksum     uint32    // Checksum of data field (if magic is `070702`, otherwise 0)

	// Variable length field
	Filename string
}

// Formats the header similarly to the long listing output of `ls -l`.
func (hdr *Header) String() string {
	return fmt.Sprintf("%s %4d  %4d %4d  %8d  %s  %s", hdr.Mode, hdr.NumLinks, hdr.Uid, hdr.Gid, hdr.DataSize, hdr.Mtime.UTC().Format(time.DateTime), hdr.Filename)
}

func (hdr *Header) Trailer() bool { return hdr.Filename == TrailerFilename }

// Parse the header and filename from the start of p, which must begin with
// a magic value. Returns the bytes consumed, not counting the padding after
// the filename.
//
// Errors are a [*FieldError] for a non-hex character, [ErrBadHeaderMagic],
// [io.ErrUnexpectedEOF] when p is short, and [ErrMalformedFilename] when the
// name lacks its terminating 0.
func (hdr *Header) UnmarshalText(p []byte) (n int, err error) {
	if len(p) < HeaderSize {
		return 0, io.ErrUnexpectedEOF
	}
	if err := hdr.parseFixed(p[:HeaderSize]); err != nil {
		return 0, err
	}
	if hdr.FilenameSize == 0 {
		return HeaderSize, ErrMalformedFilename
	}

	end := HeaderSize + int(hdr.FilenameSize)
	if end > len(p) || end < HeaderSize {
		return HeaderSize, io.ErrUnexpectedEOF
	}
	return end, hdr.setFilename(p[HeaderSize:end])
}

func (hdr *Header) setFilename(field []byte) error {
	name, _, ok := bytes.Cut(field, []byte{0})
	if !ok {
		return ErrMalformedFilename
	}
	hdr.Filename = string(name)
	return nil
}

// Length of the header plus the NUL terminated filename.
func (hdr *Header) Size() int { return HeaderSize + len(hdr.Filename) + 1 }

// The encoded header and filename. FilenameSize is updated to match.
func (hdr *Header) Bytes() []byte {
	hdr.FilenameSize = uint32(len(hdr.Filename) + 1)

	var magic = hdr.Magic
	if magic == "" {
		magic = Magic_070701
	}

	var buf = make([]byte, 0, hdr.Size())
	buf = append(buf, magic...)
	for _, v := range hdr.fields() {
		buf = fmt.Appendf(buf, "%08X", v)
	}
	buf = append(buf, hdr.Filename...)
	return append(buf, 0)
}

// Write the encoded header and filename.
func (hdr *Header) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(hdr.Bytes())
	return int64(n), err
}

// The fixed fields after the magic, in stream order.
func (hdr *Header) fields() [13]uint32 {
	var mtime uint32
	if t := hdr.Mtime.Unix(); t > 0 {
		mtime = uint32(t)
	}
	return [...]uint32{
		hdr.Inode, uint32(hdr.Mode), hdr.Uid, hdr.Gid, hdr.NumLinks, mtime,
		hdr.DataSize, hdr.Major, hdr.Minor, hdr.RMajor, hdr.RMinor,
		hdr.FilenameSize, hdr.Checksum,
	}
}

func (hdr *Header) parseFixed(text []byte) error {
	magic, err := parseHex(text[:6], 0)
	if err != nil {
		return err
	}

	var f [13]uint32
	for i := range f {
		var offs = 6 + 8*i
		if f[i], err = parseHex(text[offs:offs+8], offs); err != nil {
			return err
		}
	}

	*hdr = Header{
		Inode:        f[0],
		Mode:         Mode(f[1]),
		Uid:          f[2],
		Gid:          f[3],
		NumLinks:     f[4],
		Mtime:        time.Unix(int64(f[5]), 0),
		DataSize:     f[6],
		Major:        f[7],
		Minor:        f[8],
		RMajor:       f[9],
		RMinor:       f[10],
		FilenameSize: f[11],
		Checksum:     f[12],
	}

	switch magic {
	case 0x070701:
		hdr.Magic = Magic_070701
	case 0x070702:
		hdr.Magic = Magic_070702
	default:
		return ErrBadHeaderMagic
	}
	return nil
}

// Decode one field of hex digits found at offs within the header.
func parseHex(text []byte, offs int) (v uint32, err error) {
	for j, c := range text {
		var d byte
		switch {
		case '0' <= c && c <= '9':
			d = c - '0'
		case 'a' <= c && c <= 'f':
			d = c - 'a' + 10
		case 'A' <= c && c <= 'F':
			d = c - 'A' + 10
		default:
			var field = FieldNames[0]
			if k := offs + j; k >= 6 {
				field = FieldNames[1+(k-6)/8]
			}
			return 0, &FieldError{Field: field, Offset: offs + j, Byte: c}
		}
		v = v<<4 | uint32(d)
	}
	return v, nil
}

// Size of the fixed part of a member header: a 6 byte magic and 13 fields
// of 8 hex digits.
const HeaderSize = 6 + 13*8

// The 32-bit sum of all data bytes, stored in the Checksum field of
// `070702` headers.
func ComputeChecksum(data []byte) (sum uint32) {
	for _, b := range data {
		sum += uint32(b)
	}
	return
}
