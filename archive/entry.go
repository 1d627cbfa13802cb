package archive

import (
	"fmt"
	"time"

	"go.pdmccormick.com/fsdbg/cpio"
)

// The kind of filesystem object an [Entry] describes.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindRegular
	KindDirectory
	KindSymlink
	KindCharDevice
	KindBlockDevice
	KindFIFO
	KindSocket
)

func (k Kind) String() string {
	switch k {
	case KindRegular:
		return "file"
	case KindDirectory:
		return "dir"
	case KindSymlink:
		return "symlink"
	case KindCharDevice:
		return "chardev"
	case KindBlockDevice:
		return "blockdev"
	case KindFIFO:
		return "fifo"
	case KindSocket:
		return "socket"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Classify the file type bits of a mode.
func KindOf(m cpio.Mode) Kind {
	switch m.FileType() {
	case cpio.Mode_File:
		return KindRegular
	case cpio.Mode_Dir:
		return KindDirectory
	case cpio.Mode_Symlink:
		return KindSymlink
	case cpio.Mode_CharDevice:
		return KindCharDevice
	case cpio.Mode_BlockDevice:
		return KindBlockDevice
	case cpio.Mode_FIFO:
		return KindFIFO
	case cpio.Mode_Socket:
		return KindSocket
	default:
		return KindUnknown
	}
}

// NoContent is the [Entry] Offset of entries whose data cannot be read, such
// as those listed by an external tool.
const NoContent = -1

// Entry is one record of an archive.
type Entry struct {
	Path   string    // Normalized, see [Normalize]
	Kind   Kind
	Mode   cpio.Mode // Type and permission bits
	Uid    uint32
	Gid    uint32
	Size   int64
	Target string // Symlink target, verbatim

	// Location of the content within the decoded stream, or [NoContent].
	Offset int64

	Inode     uint32
	NumLinks  uint32
	Mtime     time.Time
	DevMajor  uint32
	DevMinor  uint32
	RDevMajor uint32
	RDevMinor uint32
}

// Build an entry from a decoded cpio header. Symlink targets are taken from
// the record data as is.
func entryFromHeader(hdr *cpio.Header, data []byte) Entry {
	var e = Entry{
		Path:      Normalize(hdr.Filename),
		Kind:      KindOf(hdr.Mode),
		Mode:      hdr.Mode,
		Uid:       hdr.Uid,
		Gid:       hdr.Gid,
		Size:      int64(hdr.DataSize),
		Offset:    hdr.DataOffset,
		Inode:     hdr.Inode,
		NumLinks:  hdr.NumLinks,
		Mtime:     hdr.Mtime,
		DevMajor:  hdr.Major,
		DevMinor:  hdr.Minor,
		RDevMajor: hdr.RMajor,
		RDevMinor: hdr.RMinor,
	}
	if e.Kind == KindSymlink {
		e.Target = string(data)
	}
	return e
}

func (e *Entry) IsDir() bool     { return e.Kind == KindDirectory }
func (e *Entry) IsSymlink() bool { return e.Kind == KindSymlink }
func (e *Entry) IsRegular() bool { return e.Kind == KindRegular }

// Any execute permission bit is set.
func (e *Entry) Executable() bool { return e.Mode.Executable() }

// Content can be read through [Archive.Content].
func (e *Entry) HasContent() bool { return e.Offset != NoContent }

// Formats the entry similarly to `ls -l`.
func (e *Entry) String() string {
	var s = fmt.Sprintf("%s %4d %4d %9d %s /%s", e.Mode, e.Uid, e.Gid, e.Size, e.Mtime.UTC().Format(time.DateTime), e.Path)
	if e.Kind == KindSymlink {
		s += " -> " + e.Target
	}
	if e.Kind == KindCharDevice || e.Kind == KindBlockDevice {
		s += fmt.Sprintf(" [%d,%d]", e.RDevMajor, e.RDevMinor)
	}
	return s
}
