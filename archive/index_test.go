package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.pdmccormick.com/fsdbg/cpio"
)

func TestNormalize(t *testing.T) {
	var testcases = []struct {
		in, expect string
	}{
		{"", ""},
		{".", ""},
		{"/", ""},
		{"./", ""},
		{"usr/bin/sh", "usr/bin/sh"},
		{"/usr/bin/sh", "usr/bin/sh"},
		{"./usr/bin/sh", "usr/bin/sh"},
		{"usr//bin///sh", "usr/bin/sh"},
		{"usr/./bin/./sh", "usr/bin/sh"},
		{"usr/bin/", "usr/bin"},
		{"usr/lib/../bin/sh", "usr/bin/sh"},
		{"../../etc/passwd", "etc/passwd"},
		{"/..", ""},
		{".hidden/..file", ".hidden/..file"},
	}

	for _, tc := range testcases {
		assert.Equal(t, tc.expect, Normalize(tc.in), "Normalize(%q)", tc.in)
	}
}

func reg(path string, size int64) Entry {
	return Entry{Path: path, Kind: KindRegular, Mode: cpio.Mode_File | 0o644, Size: size, Offset: NoContent}
}

func dir(path string) Entry {
	return Entry{Path: path, Kind: KindDirectory, Mode: cpio.Mode_Dir | 0o755, Offset: NoContent}
}

func link(path, target string) Entry {
	return Entry{Path: path, Kind: KindSymlink, Mode: cpio.Mode_Symlink | 0o777, Target: target, Offset: NoContent}
}

func TestIndex_LastDuplicateWins(t *testing.T) {
	idx := NewIndex([]Entry{
		reg("./etc/hostname", 5),
		reg("etc/passwd", 10),
		reg("/etc/hostname", 9),
	})

	e, ok := idx.Lookup("etc/hostname")
	require.True(t, ok)
	assert.Equal(t, int64(9), e.Size)
	assert.Equal(t, 2, idx.Len())

	var order []string
	for e := range idx.All() {
		order = append(order, e.Path)
	}
	assert.Equal(t, []string{"etc/hostname", "etc/passwd"}, order)
}

func TestIndex_Exists(t *testing.T) {
	idx := NewIndex([]Entry{
		dir("."),
		reg("usr/lib/os-release", 100),
		link("bin", "usr/bin"),
	})

	assert.True(t, idx.Exists("usr/lib/os-release"))
	assert.True(t, idx.Exists("/usr/lib/os-release"))
	assert.True(t, idx.Exists("./usr//lib/os-release"))
	assert.False(t, idx.Exists("usr/lib"), "implicit parents are not entries")
	assert.False(t, idx.Exists(""), "the root is not indexed")
	assert.Equal(t, 2, idx.Len())

	assert.True(t, idx.HasDir("usr/lib"))
	assert.True(t, idx.HasDir("/usr"))
	assert.True(t, idx.HasDir("/"))
	assert.True(t, idx.Implicit("usr"))
	assert.False(t, idx.HasDir("usr/lib/os-release"))
	assert.False(t, idx.HasDir("bin"), "a symlink is not a directory")
	assert.False(t, idx.HasDir("etc"))
}

func TestIndex_Queries(t *testing.T) {
	idx := NewIndex([]Entry{
		dir("usr"),
		reg("usr/lib/security/pam_unix.so", 100),
		reg("usr/lib/security/pam_deny.so", 50),
		reg("usr/lib/security/README", 5),
		link("lib", "usr/lib"),
		{Path: "dev/console", Kind: KindCharDevice, Mode: cpio.Mode_CharDevice | 0o600, RDevMajor: 5, RDevMinor: 1},
	})

	assert.Equal(t, []string{
		"dev/console",
		"lib",
		"usr",
		"usr/lib/security/README",
		"usr/lib/security/pam_deny.so",
		"usr/lib/security/pam_unix.so",
	}, idx.Paths())

	assert.Equal(t, Stats{Files: 3, Directories: 1, Symlinks: 1, Devices: 1, TotalSize: 155}, idx.Stats())

	links := idx.Symlinks()
	require.Len(t, links, 1)
	assert.Equal(t, "usr/lib", links[0].Target)

	n, err := idx.CountGlob("usr/lib/security/pam_*.so")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = idx.CountGlob("/usr/**.so")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = idx.CountGlob("usr/*.so")
	require.NoError(t, err)
	assert.Equal(t, 0, n, "* does not cross separators")

	matches, err := idx.Glob("usr/lib/security/pam_{unix,deny}.so")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "usr/lib/security/pam_deny.so", matches[0].Path)

	_, err = idx.Glob("usr/[")
	assert.Error(t, err)
}
