//go:build !unix

package archive

import "os"

func readFile(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	return data, noRelease, err
}
