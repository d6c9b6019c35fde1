package util

import (
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize applies NFKC so visually identical input compares equal.
func Normalize(s string) string {
	return norm.NFKC.String(s)
}

// NormalizeEmail is the lookup key form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(Normalize(email)))
}

func HexEncode(b []byte) string {
	return hex.EncodeToString(b)
}

func HexDecode(s string) ([]byte, error) {
	return hex.DecodeString(s)
}
