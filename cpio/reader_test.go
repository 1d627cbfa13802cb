package cpio

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_StopsAtTrailer(t *testing.T) {
	var data = buildArchive(t, func(w *Writer) {
		w.DisableParentDirs()
		writeFile(t, w, "init", Mode_File|0o755, "#!/bin/sh\n")
		require.NoError(t, w.Symlink("bin", "usr/bin", 0))
		require.NoError(t, w.WriteTrailer())
		writeFile(t, w, "after-trailer", Mode_File|0o644, "ignored")
		require.NoError(t, w.WriteTrailer())
	})

	r := NewReader(data)

	hdr, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "init", hdr.Filename)
	assert.Equal(t, "#!/bin/sh\n", string(r.Data(hdr)))
	assert.Zero(t, hdr.DataOffset%4)

	hdr, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "bin", hdr.Filename)
	assert.True(t, hdr.Mode.Symlink())
	assert.Equal(t, "usr/bin", string(r.Data(hdr)))

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
	require.NotNil(t, r.Trailer())
	assert.Equal(t, CpioFile, r.Remaining())

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
	assert.NoError(t, r.Err())
}

func TestReader_Alignment(t *testing.T) {
	var contents = []string{"a", "bc", "def", "ghij", "klmno"}
	var data = buildArchive(t, func(w *Writer) {
		w.DisableParentDirs()
		for i, c := range contents {
			writeFile(t, w, strings.Repeat("n", i+1), Mode_File|0o644, c)
		}
		require.NoError(t, w.WriteTrailer())
	})

	r := NewReader(data)
	for i, hdr := range r.All() {
		assert.Zero(t, hdr.DataOffset%4, hdr.Filename)
		assert.Equal(t, contents[i], string(r.Data(&hdr)))
	}
	require.NoError(t, r.Err())
	assert.Equal(t, int64(len(data)), r.Offset())
}

func TestReader_Padding(t *testing.T) {
	var data = buildArchive(t, func(w *Writer) {
		w.DisableParentDirs()
		writeFile(t, w, "a", Mode_File|0o644, "x")
		require.NoError(t, w.SetHeaderAlignment(512))
		writeFile(t, w, "b", Mode_File|0o644, "yz")
		require.NoError(t, w.WriteTrailer())
	})

	// Zero padding in front of the first record is skipped too
	data = append(make([]byte, 64), data...)

	names, err := readNames(t, data)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestReader_Truncated(t *testing.T) {
	var full = buildArchive(t, func(w *Writer) {
		w.DisableParentDirs()
		writeFile(t, w, "etc/passwd", Mode_File|0o644, "root:x:0:0::/root:/bin/sh\n")
		writeFile(t, w, "etc/group", Mode_File|0o644, "root:x:0:\n")
		require.NoError(t, w.WriteTrailer())
	})

	t.Run("no trailer", func(t *testing.T) {
		var trailerAt = bytes.LastIndex(full, []byte(Magic_070701))
		names, err := readNames(t, full[:trailerAt])
		assert.ErrorIs(t, err, ErrTruncated)
		assert.Equal(t, []string{"etc/passwd", "etc/group"}, names)
	})

	t.Run("short data", func(t *testing.T) {
		var second = bytes.Index(full[1:], []byte(Magic_070701)) + 1
		names, err := readNames(t, full[:second+HeaderSize+12])
		assert.ErrorIs(t, err, ErrTruncated)
		assert.Equal(t, []string{"etc/passwd"}, names)
	})

	t.Run("short header", func(t *testing.T) {
		names, err := readNames(t, full[:40])
		assert.ErrorIs(t, err, ErrTruncated)
		assert.Empty(t, names)
	})
}

func TestReader_Corrupt(t *testing.T) {
	var data = buildArchive(t, func(w *Writer) {
		w.DisableParentDirs()
		writeFile(t, w, "init", Mode_File|0o755, "")
		writeFile(t, w, "sbin/init", Mode_File|0o755, "")
		require.NoError(t, w.WriteTrailer())
	})

	t.Run("bad field", func(t *testing.T) {
		var bad = bytes.Clone(data)
		var second = bytes.Index(bad[1:], []byte(Magic_070701)) + 1
		bad[second+6+2*8] = 'Z' // uid

		r := NewReader(bad)
		_, err := r.Next()
		require.NoError(t, err)

		_, err = r.Next()
		var fe *FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "uid", fe.Field)

		var re *RecordError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, int64(second), re.Offset)

		// Errors are sticky
		_, err2 := r.Next()
		assert.Equal(t, err, err2)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := readNames(t, []byte("this is not a cpio archive at all"))
		assert.ErrorIs(t, err, ErrBadHeaderMagic)
	})
}

func TestReader_Checksum(t *testing.T) {
	var data = buildArchive(t, func(w *Writer) {
		var hdr = Header{Magic: Magic_070702, Mode: Mode_File | 0o644, Filename: "crc"}
		require.NoError(t, w.WriteFile(&hdr, []byte("checked")))
		require.NoError(t, w.WriteTrailer())
	})

	names, err := readNames(t, data)
	require.NoError(t, err)
	assert.Equal(t, []string{".", "crc"}, names)

	var bad = bytes.Clone(data)
	i := bytes.Index(bad, []byte("checked"))
	bad[i] = 'C'
	_, err = readNames(t, bad)
	assert.ErrorIs(t, err, ErrChecksum)
}
