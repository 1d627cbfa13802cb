package symlink

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.pdmccormick.com/fsdbg/archive"
	"go.pdmccormick.com/fsdbg/internal/fixture"
)

func index(t *testing.T, files ...fixture.File) *archive.Index {
	t.Helper()
	a, err := archive.Decode(fixture.Cpio(files...))
	require.NoError(t, err)
	return a.Index()
}

func TestResolve_NotASymlink(t *testing.T) {
	idx := index(t, fixture.Exe("usr/bin/sh"))

	r := Resolve(idx, "/usr/bin/sh")
	assert.Equal(t, Resolved, r.Outcome)
	assert.Equal(t, "usr/bin/sh", r.Entry.Path)
	assert.Zero(t, r.Hops)
}

func TestResolve_MergedUsr(t *testing.T) {
	idx := index(t,
		fixture.Link("bin", "/usr/bin"),
		fixture.Link("sbin", "usr/sbin"),
		fixture.Exe("usr/bin/sh"),
		fixture.Link("usr/sbin/init", "../lib/systemd/systemd"),
		fixture.Exe("usr/lib/systemd/systemd"),
	)

	r := Resolve(idx, "/bin")
	assert.Equal(t, Resolved, r.Outcome, r.String())
	assert.True(t, r.Entry.IsDir())
	assert.Equal(t, "usr/bin", r.Entry.Path)

	r = Resolve(idx, "bin/sh")
	require.Equal(t, Resolved, r.Outcome, r.String())
	assert.Equal(t, "usr/bin/sh", r.Entry.Path)
	assert.Equal(t, 1, r.Hops)

	r = Resolve(idx, "/sbin/init")
	require.Equal(t, Resolved, r.Outcome, r.String())
	assert.Equal(t, "usr/lib/systemd/systemd", r.Entry.Path)
	assert.Equal(t, []string{"sbin/init", "usr/sbin/init", "usr/lib/systemd/systemd"}, r.Chain)
	assert.Equal(t, 2, r.Hops)

	for _, r := range CheckAll(idx) {
		assert.True(t, r.OK(), r.String())
	}
}

func TestResolve_Dangling(t *testing.T) {
	idx := index(t,
		fixture.Link("a", "b"),
		fixture.Link("b", "c"),
		fixture.Link("empty", ""),
		fixture.Link("lib/libfoo.so", "libfoo.so.1"),
	)

	r := Resolve(idx, "a")
	assert.Equal(t, Dangling, r.Outcome)
	assert.Equal(t, "c", r.At)
	assert.Equal(t, 2, r.Hops)
	assert.Equal(t, "/a: dangling, /c does not exist", r.String())

	r = Resolve(idx, "lib/libfoo.so")
	assert.Equal(t, Dangling, r.Outcome)
	assert.Equal(t, "lib/libfoo.so.1", r.At)

	r = Resolve(idx, "empty")
	assert.Equal(t, Dangling, r.Outcome)

	r = Resolve(idx, "nowhere/at/all")
	assert.Equal(t, Dangling, r.Outcome)
	assert.Equal(t, "nowhere/at/all", r.At)
}

func TestResolve_Cycle(t *testing.T) {
	idx := index(t,
		fixture.Link("a", "b"),
		fixture.Link("b", "a"),
		fixture.Link("self", "./self"),
		fixture.Link("loop", "loop/x"),
	)

	r := Resolve(idx, "a")
	assert.Equal(t, Cycle, r.Outcome)
	assert.Equal(t, "a", r.At)

	r = Resolve(idx, "self")
	assert.Equal(t, Cycle, r.Outcome)

	r = Resolve(idx, "loop")
	assert.Equal(t, Cycle, r.Outcome)
	assert.LessOrEqual(t, r.Hops, MaxHops+1)

	broken := Broken(CheckAll(idx))
	assert.Len(t, broken, 4)
}

func TestResolve_MaxHops(t *testing.T) {
	var files []fixture.File
	for i := 0; i < MaxHops+5; i++ {
		files = append(files, fixture.Link(fmt.Sprintf("l%d", i), fmt.Sprintf("l%d", i+1)))
	}
	files = append(files, fixture.Exe(fmt.Sprintf("l%d", MaxHops+5)))
	idx := index(t, files...)

	r := Resolve(idx, "l0")
	assert.Equal(t, Cycle, r.Outcome)
	assert.Equal(t, MaxHops+1, r.Hops)
	assert.Contains(t, r.String(), "more than 40 links")

	r = Resolve(idx, "l10")
	assert.Equal(t, Resolved, r.Outcome)
	assert.Equal(t, MaxHops-5, r.Hops)
}

func TestTarget(t *testing.T) {
	var testcases = []struct {
		link, target, expect string
	}{
		{"bin", "/usr/bin", "usr/bin"},
		{"bin", "usr/bin", "usr/bin"},
		{"usr/lib/libc.so", "libc.so.6", "usr/lib/libc.so.6"},
		{"usr/sbin/init", "../lib/systemd/systemd", "usr/lib/systemd/systemd"},
		{"etc/mtab", "../../../proc/self/mounts", "proc/self/mounts"},
		{"x", ".", ""},
	}

	for _, tc := range testcases {
		assert.Equal(t, tc.expect, Target(tc.link, tc.target), "%s -> %s", tc.link, tc.target)
	}
}
