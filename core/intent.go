package core

import (
	"strings"

	"deposbank/pkg/btcaddr"
)

// IntentType parsed memo intent
type IntentType int

const (
	// IntentUnknown memo matched nothing
	IntentUnknown IntentType = iota
	// IntentPlain explicit request for a plain fee-bearing transfer
	IntentPlain
	// IntentBuy "Buy <SYM>"
	IntentBuy
	// IntentRedeem "Redeem for <SYM>"
	IntentRedeem
	// IntentBitcoin memo is a valid bitcoin address
	IntentBitcoin
	// IntentRelay "<user> <SYM>", custodian originated mint relay
	IntentRelay
	// IntentTechnical memo is a 64-hex external transaction id
	IntentTechnical
)

// Intent the closed result of memo parsing. The router matches on
// (Type, Symbol) instead of raw memo text.
type Intent struct {
	Type    IntentType
	Symbol  Symbol
	User    string
	Address string
}

// ParseIntent parses a free-text memo against the closed vocabulary.
// Keyword matching is case insensitive and exact; anything else is
// tried as a 64-hex txid, then as a Base58Check bitcoin address.
func ParseIntent(memo string, testnet bool) Intent {
	fields := strings.Fields(memo)

	switch len(fields) {
	case 1:
		if strings.EqualFold(fields[0], "deny") {
			return Intent{Type: IntentPlain}
		}
	case 2:
		sym := Symbol(strings.ToUpper(fields[1]))
		if strings.EqualFold(fields[0], "buy") && sym.IsValid() {
			return Intent{Type: IntentBuy, Symbol: sym}
		}
		if sym.IsValid() {
			return Intent{Type: IntentRelay, Symbol: sym, User: fields[0]}
		}
	case 3:
		sym := Symbol(strings.ToUpper(fields[2]))
		if strings.EqualFold(fields[0], "redeem") && strings.EqualFold(fields[1], "for") && sym.IsValid() {
			return Intent{Type: IntentRedeem, Symbol: sym}
		}
	}

	trimmed := strings.TrimSpace(memo)
	if btcaddr.IsHex256(trimmed) {
		return Intent{Type: IntentTechnical}
	}

	if err := btcaddr.Validate(trimmed, testnet); err == nil {
		return Intent{Type: IntentBitcoin, Address: trimmed}
	}

	return Intent{Type: IntentUnknown}
}
