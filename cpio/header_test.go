package cpio

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeader_RoundTrip(t *testing.T) {
	var testcases = []Header{
		{
			Magic:    Magic_070701,
			Inode:    4,
			Mode:     0o100_600,
			NumLinks: 1,
			Mtime:    time.Unix(1576627200, 0),
			DataSize: 76166,
			Filename: "kernel/x86/microcode/AuthenticAMD.bin",
		},
		{
			Magic:    Magic_070701,
			Inode:    21,
			Mode:     0o_020_620,
			Uid:      122,
			Gid:      5,
			NumLinks: 1,
			Mtime:    time.Unix(1710404548, 0),
			Minor:    5,
			RMajor:   4,
			RMinor:   1,
			Filename: "/dev/tty1",
		},
		{
			Magic:    Magic_070702,
			Inode:    0xFFFFFFFF,
			Mode:     Mode_File | Mode_SUID | 0o755,
			Uid:      65534,
			Gid:      65534,
			NumLinks: 2,
			Mtime:    time.Unix(0, 0),
			DataSize: 0xDEADBEEF,
			Checksum: 0x01020304,
			Filename: "usr/bin/su",
		},
	}

	for _, expect := range testcases {
		t.Run(expect.Filename, func(t *testing.T) {
			var buf bytes.Buffer
			_, err := expect.WriteTo(&buf)
			require.NoError(t, err)
			assert.Equal(t, expect.Size(), buf.Len())

			var got Header
			n, err := got.UnmarshalText(buf.Bytes())
			require.NoError(t, err)
			assert.Equal(t, buf.Len(), n)
			assert.Equal(t, expect, got)
		})
	}
}

func TestHeader_FieldError(t *testing.T) {
	var hdr = Header{Mode: Mode_File | 0o644, Filename: "etc/passwd"}

	for i, name := range FieldNames {
		if name == "magic" {
			continue
		}

		t.Run(name, func(t *testing.T) {
			var text = hdr.Bytes()
			var offs = 6 + (i-1)*8 + 3
			text[offs] = 'g'

			var got Header
			_, err := got.UnmarshalText(text)

			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, name, fe.Field)
			assert.Equal(t, offs, fe.Offset)
			assert.ErrorIs(t, err, ErrInvalidField)
		})
	}
}

func TestHeader_UnmarshalText_Errors(t *testing.T) {
	var hdr = Header{Mode: Mode_File | 0o644, Filename: "init"}
	var text = hdr.Bytes()

	var got Header
	_, err := got.UnmarshalText(text[:HeaderSize-1])
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = got.UnmarshalText(text[:HeaderSize+2])
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	var bad = bytes.Clone(text)
	copy(bad, "070707")
	_, err = got.UnmarshalText(bad)
	assert.ErrorIs(t, err, ErrBadHeaderMagic)

	var unterminated = bytes.Clone(text)
	unterminated[len(unterminated)-1] = 'x'
	_, err = got.UnmarshalText(unterminated)
	assert.True(t, errors.Is(err, ErrMalformedFilename))
}

func TestMode_String(t *testing.T) {
	var testcases = []struct {
		mode   Mode
		expect string
	}{
		{Mode_File | 0o644, "-rw-r--r--"},
		{Mode_Dir | 0o755, "drwxr-xr-x"},
		{Mode_Symlink | 0o777, "lrwxrwxrwx"},
		{Mode_File | Mode_SUID | 0o4755, "-rwsr-xr-x"},
		{Mode_File | Mode_SGID | 0o640, "-rw-r-S---"},
		{Mode_Dir | Mode_Sticky | 0o777, "drwxrwxrwt"},
		{Mode_CharDevice | 0o620, "crw--w----"},
	}

	for _, tc := range testcases {
		assert.Equal(t, tc.expect, tc.mode.String())
	}

	assert.True(t, Mode(Mode_File|0o010).Executable())
	assert.False(t, Mode(Mode_File|0o644).Executable())
	assert.Equal(t, Mode_SUID|0o755, Mode(Mode_File|Mode_SUID|0o755).Permissions())
}

func TestComputeChecksum(t *testing.T) {
	assert.Equal(t, uint32(0), ComputeChecksum(nil))
	assert.Equal(t, uint32('a'+'b'+'c'), ComputeChecksum([]byte("abc")))
}
