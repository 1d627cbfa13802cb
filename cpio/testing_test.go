package cpio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// Build an archive in memory with the writer.
func buildArchive(t *testing.T, fn func(w *Writer)) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := NewWriter(&buf)
	fn(w)
	require.NoError(t, w.Flush())
	return buf.Bytes()
}

func writeFile(t *testing.T, w *Writer, name string, mode Mode, data string) {
	t.Helper()

	var hdr = Header{Mode: mode, Filename: name}
	require.NoError(t, w.WriteFile(&hdr, []byte(data)))
}

func readNames(t *testing.T, data []byte) (names []string, err error) {
	t.Helper()

	r := NewReader(data)
	for _, hdr := range r.All() {
		names = append(names, hdr.Filename)
	}
	return names, r.Err()
}
