// Package fingerprint derives the content-addressed identifier used as the
// primary key for every ingested photo and selfie. Two byte-identical images
// always map to the same fingerprint, no matter who uploads them or under
// which filename.
package fingerprint

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

// EncodedLen is the length of a fingerprint string: 32 SHA-256 bytes in
// standard base64, including padding.
const EncodedLen = 44

// ErrEmptyInput is returned when there are no bytes to fingerprint.
var ErrEmptyInput = errors.New("fingerprint: empty input")

// Compute returns the fingerprint of raw image bytes: the SHA-256 digest,
// standard base64 encoded. Deterministic and free of side effects.
func Compute(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyInput
	}
	sum := sha256.Sum256(data)
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

// Valid reports whether s has the shape of a fingerprint produced by Compute.
// It cannot tell whether any content actually hashes to s; it exists so
// request handlers can reject malformed ids before touching backing stores.
func Valid(s string) bool {
	if len(s) != EncodedLen {
		return false
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return false
	}
	return len(raw) == sha256.Size
}
