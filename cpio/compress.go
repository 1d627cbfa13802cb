package cpio

import (
	"compress/bzip2"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// A [CompressWriter] will compress anything written to it and write the
// compressed data to the given output. The returned writer must be closed to
// flush the compressed stream.
type CompressWriter func(output io.Writer) (io.WriteCloser, error)

// A [CompressWriter] using [github.com/klauspost/compress/gzip].
func GzipWriter(w io.Writer) (io.WriteCloser, error) { return gzip.NewWriter(w), nil }

// A [CompressWriter] using [github.com/klauspost/compress/zstd].
func ZstdWriter(w io.Writer) (io.WriteCloser, error) { return zstd.NewWriter(w) }

// A [CompressWriter] using [github.com/ulikunitz/xz].
func XzWriter(w io.Writer) (io.WriteCloser, error) { return xz.NewWriter(w) }

// A [CompressWriter] producing the lz4 frame format.
func Lz4Writer(w io.Writer) (io.WriteCloser, error) { return lz4.NewWriter(w), nil }

// A [CompressReader] will decompress the given input.
type CompressReader func(input io.Reader) (io.Reader, error)

// Use the [Lookahead] token to select a suitable [CompressReader].
type CompressReaderMap map[Lookahead]CompressReader

var ErrNoCompressReader = errors.New("cpio: no suitable CompressReader found")

// The default map of known compression readers.
var CompressReaders = CompressReaderMap{
	Gzip:  GzipReader,
	Bzip2: Bzip2Reader,
	Zstd:  ZstdReader,
	Xz:    XzReader,
	Lzma:  LzmaReader,
	Lz4:   Lz4Reader,
}

// A [CompressReader] using [github.com/klauspost/compress/gzip.NewReader].
// Concatenated gzip members are read as one stream.
func GzipReader(r io.Reader) (io.Reader, error) { return gzip.NewReader(r) }

// A [CompressReader] using [compress/bzip2.NewReader].
func Bzip2Reader(r io.Reader) (io.Reader, error) { return bzip2.NewReader(r), nil }

// A [CompressReader] using [github.com/klauspost/compress/zstd].
func ZstdReader(r io.Reader) (io.Reader, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}

// A [CompressReader] using [github.com/ulikunitz/xz].
func XzReader(r io.Reader) (io.Reader, error) { return xz.NewReader(r) }

// A [CompressReader] for the legacy lzma format using [github.com/ulikunitz/xz/lzma].
func LzmaReader(r io.Reader) (io.Reader, error) { return lzma.NewReader(r) }

// A [CompressReader] using [github.com/pierrec/lz4/v4], for both the frame and
// legacy formats.
func Lz4Reader(r io.Reader) (io.Reader, error) { return lz4.NewReader(r), nil }

// Decompress all of data according to the detected [Lookahead], reading at
// most limit bytes of output. Returns [ErrTooLarge] if the decompressed
// stream exceeds limit.
func (m CompressReaderMap) Decompress(la Lookahead, data io.Reader, limit int64) ([]byte, error) {
	if m == nil {
		m = CompressReaders
	}

	dec, ok := m[la]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoCompressReader, la)
	}

	dr, err := dec(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", la, err)
	}

	if c, ok := dr.(io.Closer); ok {
		defer c.Close()
	}

	var lr = io.LimitedReader{R: dr, N: limit + 1}
	out, err := io.ReadAll(&lr)
	if err != nil {
		return out, fmt.Errorf("%s: %w", la, err)
	}

	if int64(len(out)) > limit {
		return nil, ErrTooLarge
	}

	return out, nil
}

var ErrTooLarge = errors.New("cpio: decompressed stream exceeds size limit")
