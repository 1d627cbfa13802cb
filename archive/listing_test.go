package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.pdmccormick.com/fsdbg/cpio"
)

func TestParseModeString(t *testing.T) {
	var testcases = []struct {
		in     string
		expect cpio.Mode
	}{
		{"-rw-r--r--", cpio.Mode_File | 0o644},
		{"drwxr-xr-x", cpio.Mode_Dir | 0o755},
		{"lrwxrwxrwx", cpio.Mode_Symlink | 0o777},
		{"-rwsr-xr-x", cpio.Mode_File | cpio.Mode_SUID | 0o755},
		{"-rw-r-S---", cpio.Mode_File | cpio.Mode_SGID | 0o640},
		{"drwxrwxrwt", cpio.Mode_Dir | cpio.Mode_Sticky | 0o777},
		{"crw--w----", cpio.Mode_CharDevice | 0o620},
	}

	for _, tc := range testcases {
		m, err := parseModeString(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.expect, m, tc.in)
		assert.Equal(t, tc.in, m.String())
	}

	for _, bad := range []string{"", "drwx", "xrwxrwxrwx", "-rwxrwxrwq", "-swxrwxrwx"} {
		_, err := parseModeString(bad)
		assert.ErrorIs(t, err, ErrListing, bad)
	}
}

func TestParseErofsListing(t *testing.T) {
	const out = `
drwxr-xr-x   2 root root    4096 Jan  1 00:00 usr/bin
-rwxr-xr-x   1 0    0     125688 Jan  1 00:00 usr/bin/bash
lrwxrwxrwx   1 root root       7 Jan  1 00:00 bin -> usr/bin
-rw-r--r--   1 root root      12 Jan  1 00:00 etc/my file
etc/
etc/hostname
`
	entries, err := ParseErofsListing([]byte(out))
	require.NoError(t, err)

	idx := NewIndex(entries)
	assert.Equal(t, 6, idx.Len())

	bash, ok := idx.Lookup("usr/bin/bash")
	require.True(t, ok)
	assert.True(t, bash.Executable())
	assert.Equal(t, int64(125688), bash.Size)
	assert.False(t, bash.HasContent())

	bin, _ := idx.Lookup("bin")
	assert.Equal(t, KindSymlink, bin.Kind)
	assert.Equal(t, "usr/bin", bin.Target)

	assert.True(t, idx.Exists("etc/my file"))
	assert.True(t, idx.HasDir("etc"))

	hostname, _ := idx.Lookup("etc/hostname")
	assert.Equal(t, KindRegular, hostname.Kind)

	_, err = ParseErofsListing([]byte("Zrwxr-xr-x 1 root root 0 Jan 1 00:00 bad\n"))
	assert.ErrorIs(t, err, ErrListing)

	assert.Equal(t, "1b2c-33", ParseErofsUUID([]byte("Filesystem magic number: 0xE0F5E1E2\nFilesystem UUID: 1b2c-33\n")))
}

func TestParseIsoinfoListing(t *testing.T) {
	const out = `
Directory listing of /
drwxr-xr-x   1    0    0            2048 Jan 27 2026 [     37 02]  .
drwxr-xr-x   1    0    0            2048 Jan 27 2026 [     37 02]  ..
drwxr-xr-x   1    0    0            2048 Jan 27 2026 [     38 02]  boot
drwxr-xr-x   1    0    0            2048 Jan 27 2026 [     40 02]  live

Directory listing of /boot/
drwxr-xr-x   1    0    0            2048 Jan 27 2026 [     38 02]  .
drwxr-xr-x   1    0    0            2048 Jan 27 2026 [     37 02]  ..
-rw-r--r--   1    0    0        12345678 Jan 27 2026 [   1000 00]  vmlinuz
lrwxrwxrwx   1    0    0               7 Jan 27 2026 [      0 00]  initrd -> initrd.img
-rw-r--r--   1    0    0        23456789 Jan 27 2026 [   2000 00]  initrd.img
`
	entries, err := ParseIsoinfoListing([]byte(out))
	require.NoError(t, err)

	idx := NewIndex(entries)
	assert.Equal(t, []string{"boot", "boot/initrd", "boot/initrd.img", "boot/vmlinuz", "live"}, idx.Paths())

	vmlinuz, _ := idx.Lookup("/boot/vmlinuz")
	assert.Equal(t, int64(12345678), vmlinuz.Size)
	assert.Equal(t, 2026, vmlinuz.Mtime.Year())

	initrd, _ := idx.Lookup("boot/initrd")
	assert.Equal(t, "initrd.img", initrd.Target)

	assert.Equal(t, "LIVE_2026", ParseIsoVolumeID([]byte("CD-ROM is in ISO 9660 format\nSystem id: LINUX\nVolume id: LIVE_2026\n")))
}
