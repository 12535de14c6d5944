package btcaddr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMainnet(t *testing.T) {
	// genesis block coinbase P2PKH
	require.NoError(t, Validate("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", false))
	// P2SH
	require.NoError(t, Validate("3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy", false))

	// testnet prefixes rejected on mainnet
	assert.Equal(t, ErrBadPrefix, Validate("mipcBbFg9gMiCh81Kj8tqqdgoZub1ZJRfn", false))
	assert.Equal(t, ErrBadPrefix, Validate("2MzQwSSnBHWHqSAqtTVQ6v47XtaisrJa1Vc", false))
}

func TestValidateTestnet(t *testing.T) {
	require.NoError(t, Validate("mipcBbFg9gMiCh81Kj8tqqdgoZub1ZJRfn", true))
	require.NoError(t, Validate("2MzQwSSnBHWHqSAqtTVQ6v47XtaisrJa1Vc", true))

	assert.Equal(t, ErrBadPrefix, Validate("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", true))
}

func TestValidateChecksum(t *testing.T) {
	// last char flipped breaks the double-sha256 checksum
	assert.Equal(t, ErrBadChecksum, Validate("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNb", false))
}

func TestValidateFormat(t *testing.T) {
	assert.Equal(t, ErrBadFormat, Validate("", false))
	assert.Equal(t, ErrBadFormat, Validate("not an address", false))
	// base58 alphabet excludes 0, O, I, l
	assert.Equal(t, ErrBadFormat, Validate("10OIl", false))
}

func TestIsHex256(t *testing.T) {
	txid := "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b"
	assert.True(t, IsHex256(txid))

	// a txid must never validate as an address
	assert.Error(t, Validate(txid, false))
	assert.Error(t, Validate(txid, true))

	assert.False(t, IsHex256(txid[:63]))
	assert.False(t, IsHex256(txid+"0"))
	// uppercase is not canonical
	assert.False(t, IsHex256("4A5E1E4BAAB89F3A32518A88C31BC87F618F76673E2CC77AB2127B7AFDEDA33B"))
	assert.False(t, IsHex256("zz5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b"))
}
