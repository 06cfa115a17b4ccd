package security

import (
	"encoding/base64"
	"unicode/utf8"
)

// ObscureReceipt base64-encodes a store receipt before it is persisted.
// This is display obfuscation only; receipts are not encrypted.
func ObscureReceipt(receipt string) string {
	return base64.StdEncoding.EncodeToString([]byte(receipt))
}

// RevealReceipt reverses ObscureReceipt. Input that is not valid base64, or
// that does not decode to UTF-8 text, is returned unchanged.
func RevealReceipt(stored string) string {
	b, err := base64.StdEncoding.DecodeString(stored)
	if err != nil || !utf8.Valid(b) {
		return stored
	}
	return string(b)
}
