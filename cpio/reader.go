package cpio

import (
	"errors"
	"fmt"
	"io"
	"iter"
)

// Reader decodes the member file records of an uncompressed cpio newc
// archive held entirely in memory. File data is never copied; [Reader.Data]
// returns a subslice of the input.
type Reader struct {
	data []byte
	off  int64

	trailer *Header
	err     error
}

var (
	ErrTruncated              = errors.New("cpio: stream ends before trailer")
	ErrChecksum               = errors.New("cpio: data checksum mismatch")
	ErrCompressedContentAhead = errors.New("cpio: compressed content ahead")
)

// A RecordError reports the offset of the record that could not be decoded.
type RecordError struct {
	Offset int64
	Err    error
}

func (e *RecordError) Error() string { return fmt.Sprintf("cpio: record at offset %d: %v", e.Offset, e.Err) }
func (e *RecordError) Unwrap() error { return e.Err }

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Decode the next member file header. Returns [io.EOF] once the trailer has
// been reached; the trailer itself is never returned, see [Reader.Trailer].
//
// Runs of zero padding between records are skipped. Running out of input
// before the trailer yields [ErrTruncated]. All errors other than [io.EOF]
// are wrapped in a [*RecordError] and are sticky.
func (r *Reader) Next() (*Header, error) {
	if r.err != nil {
		return nil, r.err
	}

	var hdr Header
	if err := r.next(&hdr); err != nil {
		if err != io.EOF {
			err = &RecordError{Offset: r.off, Err: err}
		}
		r.err = err
		return nil, err
	}
	return &hdr, nil
}

// The file data for a header previously returned by [Reader.Next].
func (r *Reader) Data(hdr *Header) []byte {
	return r.data[hdr.DataOffset : hdr.DataOffset+int64(hdr.DataSize)]
}

// The trailer header, once reached.
func (r *Reader) Trailer() *Header { return r.trailer }

// The first error other than [io.EOF] encountered by [Reader.Next].
func (r *Reader) Err() error {
	if r.err == io.EOF {
		return nil
	}
	return r.err
}

// The current decode position within the input.
func (r *Reader) Offset() int64 { return r.off }

// Identify what follows the trailer, if anything. Bytes after the trailer are
// not decoded, but an early microcode archive is commonly followed by a
// compressed main archive.
func (r *Reader) Remaining() Lookahead {
	if r.trailer == nil {
		return UnknownLookahead
	}
	var rest = r.data[r.off:]
	for len(rest) > 0 && rest[0] == 0 {
		rest = rest[1:]
	}
	return Sniff(rest)
}

// Provides a sequence iterator that is equivalent to calling [Reader.Next]
// until EOF. Check [Reader.Err] afterwards.
func (r *Reader) All() iter.Seq2[int, Header] {
	return func(yield func(index int, hdr Header) bool) {
		for i := 0; ; i++ {
			hdr, err := r.Next()
			if err != nil {
				return
			}

			if !yield(i, *hdr) {
				return
			}
		}
	}
}

func alignUp(n, to int64) int64 { return n + fill(n, to) }

func (r *Reader) skipPadding() {
	for r.off < int64(len(r.data)) && r.data[r.off] == 0 {
		r.off++
	}
}

func (r *Reader) next(hdr *Header) error {
	if r.trailer != nil {
		return io.EOF
	}

	r.skipPadding()

	var rest = r.data[r.off:]
	switch la := Sniff(rest); {
	case la == EOF:
		return ErrTruncated
	case la.Compression():
		return ErrCompressedContentAhead
	case la != CpioFile:
		if len(rest) < len(Magic_070701) {
			return ErrTruncated
		}
		return ErrBadHeaderMagic
	}

	n, err := hdr.UnmarshalText(rest)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrTruncated
		}
		return err
	}

	hdr.HeaderOffset = r.off
	hdr.DataOffset = alignUp(r.off+int64(n), 4)
	if hdr.DataSize == 0 {
		// Name padding may be cut short at end of input
		hdr.DataOffset = min(hdr.DataOffset, int64(len(r.data)))
	}

	var end = hdr.DataOffset + int64(hdr.DataSize)
	if end > int64(len(r.data)) {
		return ErrTruncated
	}

	if hdr.Magic == Magic_070702 && hdr.Checksum != 0 {
		if sum := ComputeChecksum(r.data[hdr.DataOffset:end]); sum != hdr.Checksum {
			return fmt.Errorf("%w: %q has %08x, header says %08x", ErrChecksum, hdr.Filename, sum, hdr.Checksum)
		}
	}

	r.off = min(alignUp(end, 4), int64(len(r.data)))

	if hdr.Trailer() {
		var trailer = *hdr
		r.trailer = &trailer
		return io.EOF
	}

	return nil
}
