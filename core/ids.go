package core

import (
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
)

// DeriveID generates a deterministic entry ID from source content using
// BLAKE2b hashing. Identical content always produces the same ID, which is
// what lets the import pipeline route re-imported records to update rather
// than insert.
func DeriveID(prefix, text string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	if prefix == "" {
		return hex.EncodeToString(sum)
	}
	return prefix + "_" + hex.EncodeToString(sum)
}
