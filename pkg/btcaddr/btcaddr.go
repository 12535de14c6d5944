// Package btcaddr validates Base58Check bitcoin addresses and
// recognizes 64-hex transaction ids, which must never be mistaken
// for addresses.
package btcaddr

import (
	"errors"

	"github.com/btcsuite/btcutil/base58"
)

var (
	// ErrBadFormat address failed base58 decoding or has a bad length
	ErrBadFormat = errors.New("invalid bitcoin address: bad format")
	// ErrBadChecksum double-sha256 checksum mismatch
	ErrBadChecksum = errors.New("invalid bitcoin address: wrong checksum")
	// ErrBadPrefix version byte is neither P2PKH nor P2SH
	ErrBadPrefix = errors.New("invalid bitcoin address: wrong prefix")
)

const payloadLen = 20

// Validate checks a Base58Check address for the configured network.
// The version byte must match the P2PKH or P2SH prefix and the first
// four bytes of the double-sha256 of the 21-byte payload must match
// the trailing checksum.
func Validate(address string, testnet bool) error {
	payload, version, err := base58.CheckDecode(address)
	if err == base58.ErrChecksum {
		return ErrBadChecksum
	} else if err != nil {
		return ErrBadFormat
	}

	if len(payload) != payloadLen {
		return ErrBadFormat
	}

	p2pkh, p2sh := byte(0x00), byte(0x05)
	if testnet {
		p2pkh, p2sh = 0x6f, 0xc4
	}

	if version != p2pkh && version != p2sh {
		return ErrBadPrefix
	}

	return nil
}

// IsHex256 reports whether s is a 32-byte lowercase hex value.
func IsHex256(s string) bool {
	if len(s) != 64 {
		return false
	}

	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}

	return true
}
