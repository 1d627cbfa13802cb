package archive

import (
	"errors"
	"fmt"
	"strings"

	"go.pdmccormick.com/fsdbg/cpio"
)

var ErrListing = errors.New("archive: malformed listing")

// Parse an `ls -l` style mode string such as "drwxr-xr-x" or "-rwsr-x---".
func parseModeString(s string) (cpio.Mode, error) {
	if len(s) != 10 {
		return 0, fmt.Errorf("%w: mode %q", ErrListing, s)
	}

	var m cpio.Mode
	switch s[0] {
	case '-':
		m = cpio.Mode_File
	case 'd':
		m = cpio.Mode_Dir
	case 'l':
		m = cpio.Mode_Symlink
	case 'c':
		m = cpio.Mode_CharDevice
	case 'b':
		m = cpio.Mode_BlockDevice
	case 'p':
		m = cpio.Mode_FIFO
	case 's':
		m = cpio.Mode_Socket
	default:
		return 0, fmt.Errorf("%w: mode %q", ErrListing, s)
	}

	const rwx = "rwxrwxrwx"
	for i := 0; i < 9; i++ {
		var c = s[i+1]
		var bit = cpio.Mode(1) << (8 - i)
		switch {
		case c == rwx[i]:
			m |= bit
		case c == '-':
		case i == 2 && (c == 's' || c == 'S'):
			m |= cpio.Mode_SUID
		case i == 5 && (c == 's' || c == 'S'):
			m |= cpio.Mode_SGID
		case i == 8 && (c == 't' || c == 'T'):
			m |= cpio.Mode_Sticky
		default:
			return 0, fmt.Errorf("%w: mode %q", ErrListing, s)
		}
		if c == 's' || c == 't' {
			m |= bit
		}
	}

	return m, nil
}

// Split "name -> target" for symlinks.
func splitLink(name string, m cpio.Mode) (string, string) {
	if !m.Symlink() {
		return name, ""
	}
	if before, after, ok := strings.Cut(name, " -> "); ok {
		return before, after
	}
	return name, ""
}
