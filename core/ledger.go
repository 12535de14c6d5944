package core

import (
	"context"
	"time"
)

// Account a fungible balance row
type Account struct {
	ID        uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id,omitempty"`
	UserID    string    `sql:"size:64;unique_index:idx_accounts_user_symbol" json:"user_id"`
	Symbol    Symbol    `sql:"size:8;unique_index:idx_accounts_user_symbol" json:"symbol"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Token per-symbol supply row
type Token struct {
	ID        uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id,omitempty"`
	Symbol    Symbol    `sql:"size:8;unique_index:idx_tokens_symbol" json:"symbol"`
	Supply    int64     `json:"supply"`
	MaxSupply int64     `json:"max_supply"`
	Issuer    string    `sql:"size:64" json:"issuer"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Journal one ledger movement, append only
type Journal struct {
	ID        uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id,omitempty"`
	Action    string    `sql:"size:8" json:"action"`
	Sender    string    `sql:"size:64" json:"sender,omitempty"`
	Receiver  string    `sql:"size:64" json:"receiver,omitempty"`
	Symbol    Symbol    `sql:"size:8" json:"symbol"`
	Amount    int64     `json:"amount"`
	Memo      string    `sql:"size:256" json:"memo,omitempty"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// Ledger generic fungible-balance bookkeeping consumed by the engine.
// The engine never touches rows directly; every effect goes through
// these five calls.
type Ledger interface {
	CreateToken(ctx context.Context, symbol Symbol, maxSupply int64, issuer string) error
	Balance(ctx context.Context, userID string, symbol Symbol) (int64, error)
	Supply(ctx context.Context, symbol Symbol) (int64, error)
	Transfer(ctx context.Context, from, to string, quantity Asset, memo string) error
	Issue(ctx context.Context, to string, quantity Asset, memo string) error
	Retire(ctx context.Context, from string, quantity Asset, memo string) error
}
