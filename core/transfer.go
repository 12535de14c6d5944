package core

import (
	"context"
	"time"
)

// Transfer one incoming value movement or external-deposit
// notification queued for the teller. Deposit marks notifications
// originating outside the bank's own ledger.
type Transfer struct {
	ID        uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id,omitempty"`
	TraceID   string    `sql:"size:36;unique_index:idx_transfers_trace" json:"trace_id"`
	Sender    string    `sql:"size:64" json:"sender"`
	Receiver  string    `sql:"size:64" json:"receiver"`
	Symbol    Symbol    `sql:"size:8" json:"symbol"`
	Amount    int64     `json:"amount"`
	Memo      string    `sql:"size:256" json:"memo"`
	Deposit   bool      `json:"deposit"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// Asset quantity of the transfer
func (t *Transfer) Asset() Asset {
	return NewAsset(t.Symbol, t.Amount)
}

// TransferStore ingestion queue interface
type TransferStore interface {
	// Create is idempotent on TraceID
	Create(ctx context.Context, transfer *Transfer) error
	List(ctx context.Context, fromID uint64, limit int) ([]*Transfer, error)
}

// Router classifies every queued record into exactly one recognized
// operation and dispatches it, or rejects it with an ErrorCode.
type Router interface {
	ProcessTransfer(ctx context.Context, transfer *Transfer) error
	ProcessDeposit(ctx context.Context, transfer *Transfer) error
}
