package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Symbol token symbol
type Symbol string

const (
	// SymbolDUSD the USD-pegged stable unit, 2 decimals
	SymbolDUSD Symbol = "DUSD"
	// SymbolDPS the equity unit, 8 decimals
	SymbolDPS Symbol = "DPS"
	// SymbolDBTC the on-ledger bitcoin receipt, 8 decimals
	SymbolDBTC Symbol = "DBTC"
	// SymbolBTC external bitcoin, 8 decimals
	SymbolBTC Symbol = "BTC"
	// SymbolEOS the chain native unit, 4 decimals
	SymbolEOS Symbol = "EOS"
)

var precisions = map[Symbol]int32{
	SymbolDUSD: 2,
	SymbolDPS:  8,
	SymbolDBTC: 8,
	SymbolBTC:  8,
	SymbolEOS:  4,
}

// Precision decimal places of the symbol's minor unit
func (s Symbol) Precision() int32 {
	return precisions[s]
}

// IsValid reports whether the symbol is one of the known units
func (s Symbol) IsValid() bool {
	_, ok := precisions[s]
	return ok
}

// Asset an integer quantity of a token, expressed in minor units
type Asset struct {
	Symbol Symbol `json:"symbol"`
	Amount int64  `json:"amount"`
}

// NewAsset new asset
func NewAsset(symbol Symbol, amount int64) Asset {
	return Asset{Symbol: symbol, Amount: amount}
}

// IsValid reports whether the symbol is known and the amount positive
func (a Asset) IsValid() bool {
	return a.Symbol.IsValid() && a.Amount > 0
}

// Decimal amount in whole units
func (a Asset) Decimal() decimal.Decimal {
	return decimal.New(a.Amount, -a.Symbol.Precision())
}

func (a Asset) String() string {
	return fmt.Sprintf("%s %s", a.Decimal().StringFixed(a.Symbol.Precision()), a.Symbol)
}
