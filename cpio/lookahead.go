package cpio

import (
	"bytes"
	"fmt"
)

// Lookahead names what kind of data starts at some point in an initramfs: a
// member header, zero padding, the end, or a compressed continuation. The
// compression schemes are the kernel's, see RD_* and INITRAMFS_COMPRESSION_*
// in [Linux kernel usr/Kconfig].
//
// [Linux kernel usr/Kconfig]: https://git.kernel.org/pub/scm/linux/kernel/git/torvalds/linux.git/tree/usr/Kconfig
type Lookahead int

const (
	UnknownLookahead Lookahead = iota
	EOF
	Padding
	CpioFile
	Gzip
	Bzip2
	Lzma
	Xz
	Lzo
	Lz4
	Zstd
)

var lookaheadNames = [...]string{
	UnknownLookahead: "unknown",
	EOF:              "EOF",
	Padding:          "padding",
	CpioFile:         "cpiofile",
	Gzip:             "gzip",
	Bzip2:            "bzip2",
	Lzma:             "lzma",
	Xz:               "xz",
	Lzo:              "lzo",
	Lz4:              "lz4",
	Zstd:             "zstd",
}

func (la Lookahead) String() string {
	if la >= 0 && int(la) < len(lookaheadNames) {
		return lookaheadNames[la]
	}
	return fmt.Sprintf("0x%x", int(la))
}

// Reports whether la is the start of a compressed stream.
func (la Lookahead) Compression() bool { return la >= Gzip && la <= Zstd }

// Stream prefixes, as matched by the kernel's lib/decompress.c. The second
// lz4 entry is the frame format lz4(1) writes by default.
var compressionMagic = []struct {
	prefix []byte
	la     Lookahead
}{
	{[]byte{0x1f, 0x8b}, Gzip},
	{[]byte{0x1f, 0x9e}, Gzip},
	{[]byte{'B', 'Z'}, Bzip2},
	{[]byte{0x5d, 0x00}, Lzma},
	{[]byte{0xfd, '7'}, Xz},
	{[]byte{0x89, 'L'}, Lzo},
	{[]byte{0x02, 0x21}, Lz4},
	{[]byte{0x04, 0x22}, Lz4},
	{[]byte{0x28, 0xb5}, Zstd},
}

// Sniff reports what starts at p. A member header needs its whole 6 byte
// magic to be present.
func Sniff(p []byte) Lookahead {
	switch {
	case len(p) == 0:
		return EOF
	case p[0] == 0:
		return Padding
	case bytes.HasPrefix(p, []byte(Magic_070701)), bytes.HasPrefix(p, []byte(Magic_070702)):
		return CpioFile
	}

	for _, m := range compressionMagic {
		if bytes.HasPrefix(p, m.prefix) {
			return m.la
		}
	}
	return UnknownLookahead
}
