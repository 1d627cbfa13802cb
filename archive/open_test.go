package archive

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"

	"go.pdmccormick.com/fsdbg"
	"go.pdmccormick.com/fsdbg/cpio"
	"go.pdmccormick.com/fsdbg/internal/fixture"
)

var initrdFiles = []fixture.File{
	fixture.Dir("."),
	fixture.Dir("usr"),
	fixture.Dir("usr/bin"),
	fixture.Exe("usr/bin/sh"),
	fixture.Link("bin", "/usr/bin"),
	fixture.Reg("etc/passwd", 0o644, "root:x:0:0:root:/root:/bin/sh\n"),
}

func TestDecode(t *testing.T) {
	var testcases = []struct {
		name        string
		data        []byte
		compression cpio.Lookahead
	}{
		{"plain", fixture.Cpio(initrdFiles...), cpio.CpioFile},
		{"gzip", fixture.Compressed(cpio.GzipWriter, initrdFiles...), cpio.Gzip},
		{"zstd", fixture.Compressed(cpio.ZstdWriter, initrdFiles...), cpio.Zstd},
		{"xz", fixture.Compressed(cpio.XzWriter, initrdFiles...), cpio.Xz},
		{"lz4", fixture.Compressed(cpio.Lz4Writer, initrdFiles...), cpio.Lz4},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			a, err := Decode(tc.data)
			require.NoError(t, err)
			defer a.Close()

			assert.Equal(t, FormatCpio, a.Format)
			assert.Equal(t, tc.compression, a.Compression)
			assert.Equal(t, 5, a.Index().Len())

			sh, ok := a.Lookup("/usr/bin/sh")
			require.True(t, ok)
			assert.Equal(t, KindRegular, sh.Kind)
			assert.True(t, sh.Executable())

			bin, ok := a.Lookup("bin")
			require.True(t, ok)
			assert.Equal(t, "/usr/bin", bin.Target)

			passwd, ok := a.Lookup("etc/passwd")
			require.True(t, ok)
			content, err := a.Content(passwd)
			require.NoError(t, err)
			assert.Equal(t, "root:x:0:0:root:/root:/bin/sh\n", string(content))

			d, err := a.Digest(passwd)
			require.NoError(t, err)
			assert.Equal(t, digest.FromString("root:x:0:0:root:/root:/bin/sh\n"), d)
		})
	}
}

func TestDecode_StopsAtTrailer(t *testing.T) {
	var data = fixture.Cpio(fixture.Exe("init"))
	data = append(data, fixture.Cpio(fixture.Exe("hidden"))...)

	a, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, a.Exists("init"))
	assert.False(t, a.Exists("hidden"))
	assert.Equal(t, 1, a.Index().Len())
}

func TestDecode_Truncated(t *testing.T) {
	var data = fixture.Cpio(initrdFiles...)
	var trailerAt = bytes.LastIndex(data, []byte(cpio.Magic_070701))

	a, err := Decode(data[:trailerAt])
	assert.ErrorIs(t, err, fsdbg.CodeCorrupt)
	assert.ErrorIs(t, err, cpio.ErrTruncated)
	require.NotNil(t, a, "entries decoded before the truncation are kept")
	assert.True(t, a.Exists("etc/passwd"))
	assert.Equal(t, 5, a.Index().Len())
}

func TestDecode_Corrupt(t *testing.T) {
	var data = bytes.Clone(fixture.Cpio(fixture.Reg("etc/shadow", 0o600, "")))
	data[6+3*8] = 'x' // gid

	_, err := Decode(data)
	assert.ErrorIs(t, err, fsdbg.CodeCorrupt)

	var fe *cpio.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "gid", fe.Field)
}

func TestDecode_Unsupported(t *testing.T) {
	_, err := Decode([]byte("PK\x03\x04 a zip file"))
	assert.ErrorIs(t, err, fsdbg.CodeUnsupported)
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Decode(nil)
	assert.ErrorIs(t, err, fsdbg.CodeUnsupported)

	// The odc variant is not newc
	_, err = Decode([]byte("070707000000000000000000000000000000"))
	assert.ErrorIs(t, err, fsdbg.CodeUnsupported)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write([]byte("not an archive"))
	require.NoError(t, zw.Close())
	_, err = Decode(buf.Bytes())
	assert.ErrorIs(t, err, fsdbg.CodeUnsupported)
	assert.ErrorIs(t, err, ErrNotCpio)

	_, err = Decode([]byte{0x89, 'L', 'Z', 'O', 0, 0})
	assert.ErrorIs(t, err, fsdbg.CodeUnsupported)
	assert.ErrorIs(t, err, cpio.ErrNoCompressReader)
}

func TestDecode_MaxDecompressed(t *testing.T) {
	var data = fixture.Compressed(cpio.GzipWriter, fixture.Reg("big", 0o644, string(make([]byte, 4096))))

	_, err := Decode(data, WithMaxDecompressed(1024))
	assert.ErrorIs(t, err, fsdbg.CodeCorrupt)
	assert.ErrorIs(t, err, cpio.ErrTooLarge)

	_, err = Decode(data, WithMaxDecompressed(1<<20))
	assert.NoError(t, err)
}

func TestDetect(t *testing.T) {
	var iso = make([]byte, 0x9000)
	copy(iso[isoMagicOffset:], isoMagic)
	f, _ := Detect(iso)
	assert.Equal(t, FormatISO9660, f)

	var erofs = make([]byte, 4096)
	binary.LittleEndian.PutUint32(erofs[erofsMagicOffset:], erofsMagic)
	f, _ = Detect(erofs)
	assert.Equal(t, FormatEROFS, f)

	_, err := Decode(erofs)
	assert.ErrorIs(t, err, fsdbg.CodeUnsupported)
	assert.ErrorIs(t, err, ErrNeedsFile)

	f, la := Detect(fixture.Compressed(cpio.ZstdWriter))
	assert.Equal(t, FormatCpio, f)
	assert.Equal(t, cpio.Zstd, la)
}

func TestDetect_CpioContentLooksLikeImage(t *testing.T) {
	var blob = make([]byte, 36<<10)
	var data = fixture.Cpio(fixture.Reg("boot/blob.bin", 0o644, string(blob)))
	copy(data[isoMagicOffset:], isoMagic)
	binary.LittleEndian.PutUint32(data[erofsMagicOffset:], erofsMagic)

	f, la := Detect(data)
	assert.Equal(t, FormatCpio, f)
	assert.Equal(t, cpio.CpioFile, la)

	a, err := Decode(data)
	require.NoError(t, err)
	e, ok := a.Lookup("boot/blob.bin")
	require.True(t, ok)
	assert.Equal(t, int64(len(blob)), e.Size)
}

func TestOpen(t *testing.T) {
	dir := fs.NewDir(t, "fsdbg-archive",
		fs.WithFile("initrd.img", "", fs.WithBytes(fixture.Compressed(cpio.GzipWriter, initrdFiles...))),
		fs.WithFile("initramfs.cpio", "", fs.WithBytes(fixture.Cpio(initrdFiles...))),
		fs.WithFile("empty", ""),
	)
	defer dir.Remove()

	for _, name := range []string{"initrd.img", "initramfs.cpio"} {
		a, err := Open(dir.Join(name))
		require.NoError(t, err)
		assert.Equal(t, dir.Join(name), a.Path)
		assert.True(t, a.Exists("usr/bin/sh"))

		e, _ := a.Lookup("etc/passwd")
		content, err := a.Content(e)
		require.NoError(t, err)
		assert.Contains(t, string(content), "root:x:0:0")

		require.NoError(t, a.Close())
		_, err = a.Content(e)
		assert.ErrorIs(t, err, ErrNoContent)
	}

	_, err := Open(dir.Join("empty"))
	assert.ErrorIs(t, err, fsdbg.CodeUnsupported)

	_, err = Open(dir.Join("missing"))
	assert.ErrorIs(t, err, fsdbg.CodeNotFound)
	assert.Equal(t, fsdbg.CodeNotFound, fsdbg.CodeOf(err))
}

func TestOpen_ExternalToolMissing(t *testing.T) {
	var iso = make([]byte, 0x9000)
	copy(iso[isoMagicOffset:], isoMagic)

	dir := fs.NewDir(t, "fsdbg-archive", fs.WithFile("live.iso", "", fs.WithBytes(iso)))
	defer dir.Remove()

	_, err := Open(dir.Join("live.iso"), WithTools(Tools{Isoinfo: "fsdbg-no-such-isoinfo"}))
	assert.ErrorIs(t, err, fsdbg.CodeExternalTool)
}
