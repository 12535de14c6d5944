package core

import (
	"context"
	"time"
)

// OrderKind custody order kind
type OrderKind string

const (
	// OrderKindMint external bitcoin arriving into custody
	OrderKindMint OrderKind = "mint"
	// OrderKindRedeem custodied bitcoin leaving to an external address
	OrderKindRedeem OrderKind = "redeem"
)

// OrderStatus custody order status
type OrderStatus string

const (
	// OrderStatusNew created, external transaction id unknown yet
	OrderStatusNew OrderStatus = "new"
	// OrderStatusProcessing external transaction id supplied
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusSettled terminal
	OrderStatusSettled OrderStatus = "settled"
)

// Order a custody order tracking one external mint or redeem request.
// Orders move new -> processing -> settled exactly once and are never
// reopened.
type Order struct {
	ID        uint64      `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id,omitempty"`
	Kind      OrderKind   `sql:"size:8;index:idx_orders_kind_status" json:"kind"`
	UserID    string      `sql:"size:64" json:"user_id"`
	Status    OrderStatus `sql:"size:16;index:idx_orders_kind_status" json:"status"`
	Amount    int64       `json:"amount"`
	TxID      string      `sql:"size:64;index:idx_orders_txid" json:"tx_id,omitempty"`
	Address   string      `sql:"size:64" json:"address,omitempty"`
	CreatedAt time.Time   `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time   `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// OrderStore order store interface
type OrderStore interface {
	Create(ctx context.Context, order *Order) error
	// Find returns ErrOrderNotFound when absent
	Find(ctx context.Context, kind OrderKind, id uint64) (*Order, error)
	// FindByTxID returns ErrOrderNotFound when no order carries the txid
	FindByTxID(ctx context.Context, kind OrderKind, txID string) (*Order, error)
	Update(ctx context.Context, order *Order) error
	// SumByStatus aggregates order amounts over the status index;
	// an empty userID aggregates all users
	SumByStatus(ctx context.Context, kind OrderKind, userID string, statuses ...OrderStatus) (int64, error)
	List(ctx context.Context, kind OrderKind, fromID uint64, limit int) ([]*Order, error)
}
