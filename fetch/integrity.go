package fetch

import (
	"bytes"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"
)

// ErrIntegrityMismatch is returned when downloaded bytes do not match the
// registry's published digest.
var ErrIntegrityMismatch = errors.New("integrity mismatch")

// Integrity checks a stream against an npm "dist.integrity" value
// (Subresource Integrity form, e.g. "sha512-<base64>") or the "sha1-<hex>"
// form derived from a legacy shasum.
type Integrity struct {
	algorithm string
	expected  []byte
	h         hash.Hash
}

// ParseIntegrity parses an integrity string. When several digests are listed,
// the strongest supported one is used.
func ParseIntegrity(sri string) (*Integrity, error) {
	var best *Integrity
	for _, field := range strings.Fields(sri) {
		alg, encoded, ok := strings.Cut(field, "-")
		if !ok {
			continue
		}
		// drop SRI options ("sha512-abc?opt")
		encoded, _, _ = strings.Cut(encoded, "?")

		var h hash.Hash
		rank := 0
		switch alg {
		case "sha512":
			h, rank = sha512.New(), 4
		case "sha384":
			h, rank = sha512.New384(), 3
		case "sha256":
			h, rank = sha256.New(), 2
		case "sha1":
			h, rank = sha1.New(), 1
		default:
			continue
		}

		digest, err := decodeDigest(encoded, h.Size())
		if err != nil {
			return nil, fmt.Errorf("integrity %q: %w", field, err)
		}

		if best == nil || rank > strengthOf(best.algorithm) {
			best = &Integrity{algorithm: alg, expected: digest, h: h}
		}
	}
	if best == nil {
		return nil, fmt.Errorf("integrity %q: no supported digest", sri)
	}
	return best, nil
}

func strengthOf(alg string) int {
	switch alg {
	case "sha512":
		return 4
	case "sha384":
		return 3
	case "sha256":
		return 2
	case "sha1":
		return 1
	}
	return 0
}

// decodeDigest accepts base64 (SRI) or hex (legacy shasum) encodings.
func decodeDigest(encoded string, size int) ([]byte, error) {
	if len(encoded) == hex.EncodedLen(size) {
		if b, err := hex.DecodeString(encoded); err == nil {
			return b, nil
		}
	}
	b, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	if len(b) != size {
		return nil, fmt.Errorf("digest is %d bytes, want %d", len(b), size)
	}
	return b, nil
}

// Write feeds downloaded bytes into the digest.
func (i *Integrity) Write(p []byte) (int, error) {
	return i.h.Write(p)
}

// Check compares the accumulated digest with the expected one.
func (i *Integrity) Check() error {
	got := i.h.Sum(nil)
	if !bytes.Equal(got, i.expected) {
		return fmt.Errorf("%w: %s digest %s, want %s", ErrIntegrityMismatch, i.algorithm,
			base64.StdEncoding.EncodeToString(got), base64.StdEncoding.EncodeToString(i.expected))
	}
	return nil
}
