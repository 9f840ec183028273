// Package fingerprint derives stable content identities for articles so the
// same story is recognized across runs even when its URL changes.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HexLength is the length of a full SHA-256 digest in hex characters.
const HexLength = 64

// Content hashes an article's title and body into a hex fingerprint.
// Title and body are trimmed and joined with a blank line before hashing, so
// whitespace-only edits and URL changes do not produce a new identity.
// Invalid UTF-8 sequences are dropped rather than replaced.
func Content(title, body string) string {
	canonical := strings.TrimSpace(title) + "\n\n" + strings.TrimSpace(body)
	canonical = strings.ToValidUTF8(canonical, "")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// Truncate shortens a hex fingerprint to n characters. Values outside
// (0, HexLength) leave the fingerprint untouched.
func Truncate(fp string, n int) string {
	if n <= 0 || n >= len(fp) {
		return fp
	}
	return fp[:n]
}
