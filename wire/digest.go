package wire

import (
	"bytes"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/justapithecus/seam/types"
)

// VariableHash computes a BLAKE2b digest of the requested output length in
// bytes. Lengths outside 1..types.MaxDigestLength fail.
func VariableHash(data []byte, length int) ([]byte, error) {
	if length < 1 || length > types.MaxDigestLength {
		return nil, fmt.Errorf("digest length %d outside 1..%d", length, types.MaxDigestLength)
	}

	h, err := blake2b.New(length, nil)
	if err != nil {
		return nil, err
	}
	h.Write(data)
	return h.Sum(nil), nil
}

// DiscoverDigestLength recovers the digest length of a verified payload by
// brute force: for each candidate n from 1 up to
// min(len(payload)-1, types.MaxDigestLength), it hashes the payload minus
// its last n bytes and accepts the first n whose digest matches the
// trailing bytes. Returns false when no candidate verifies, which is the
// normal outcome for corrupt or foreign payloads.
func DiscoverDigestLength(payload []byte) (int, bool) {
	max := len(payload) - 1
	if max > types.MaxDigestLength {
		max = types.MaxDigestLength
	}

	for n := 1; n <= max; n++ {
		sum, err := VariableHash(payload[:len(payload)-n], n)
		if err != nil {
			return 0, false
		}
		if bytes.Equal(sum, payload[len(payload)-n:]) {
			return n, true
		}
	}
	return 0, false
}
