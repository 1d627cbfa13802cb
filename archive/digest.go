package archive

import (
	_ "crypto/sha256"

	"github.com/opencontainers/go-digest"
)

// The sha256 digest of an entry's content.
func (a *Archive) Digest(e Entry) (digest.Digest, error) {
	data, err := a.Content(e)
	if err != nil {
		return "", err
	}
	return digest.FromBytes(data), nil
}
