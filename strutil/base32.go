package strutil

import (
	"encoding/base32"
	"strings"

	"github.com/pkg/errors"
)

const (
	// HashSize is the size of a binary hash root.
	HashSize = 24
	// Base32Size is the length of a base32 encoded hash root.
	Base32Size = 39
)

var hashEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Base32Encode encodes a hash root with the RFC 4648 alphabet and no
// padding.
func Base32Encode(h [HashSize]byte) string {
	return hashEncoding.EncodeToString(h[:])
}

// Base32Decode is the inverse of Base32Encode. Lower case input is
// accepted.
func Base32Decode(s string) ([HashSize]byte, error) {
	var h [HashSize]byte
	if len(s) != Base32Size {
		return h, errors.Errorf("Invalid base32 hash length %v", len(s))
	}
	b, err := hashEncoding.DecodeString(strings.ToUpper(s))
	if err != nil {
		return h, errors.Wrap(err, "Failed to decode base32 hash")
	}
	copy(h[:], b)
	return h, nil
}

// IsBase32Hash reports whether s looks like an encoded hash root.
func IsBase32Hash(s string) bool {
	if len(s) != Base32Size {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('A' <= c && c <= 'Z' || '2' <= c && c <= '7') {
			return false
		}
	}
	return true
}
