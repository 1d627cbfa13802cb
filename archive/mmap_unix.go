//go:build unix

package archive

import (
	"os"

	"golang.org/x/sys/unix"
)

// Map the whole file read only. The returned release function unmaps it.
func readFile(path string) (data []byte, release func() error, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}

	var size = fi.Size()
	if size == 0 || !fi.Mode().IsRegular() || int64(int(size)) != size {
		data, err := os.ReadFile(path)
		return data, noRelease, err
	}

	data, err = unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		// Some filesystems cannot be mapped
		data, err := os.ReadFile(path)
		return data, noRelease, err
	}

	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)

	return data, func() error { return unix.Munmap(data) }, nil
}
