package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// Direction direction of a conversion against the reserve
type Direction int

const (
	// DirectionNeutral does not move reserves
	DirectionNeutral Direction = iota
	// DirectionMint stable units created against incoming collateral
	DirectionMint
	// DirectionRedeem stable units destroyed against outgoing collateral
	DirectionRedeem
)

// RateService converts between units at store-resident rates with fees.
// Every call reads the required variables fresh; a missing hard variable
// is a precondition failure, soft variables default to neutral values.
type RateService interface {
	// ExternalToStable converts DBTC/BTC or EOS into DUSD minus the mint fee
	ExternalToStable(ctx context.Context, quantity Asset) (Asset, error)
	// StableToExternal converts DUSD into DBTC or EOS plus the redemption fee
	StableToExternal(ctx context.Context, quantity Asset, target Symbol) (Asset, error)
	// StableToEquity sells equity at the admin sale price, capped by the
	// treasury balance; the shortfall comes back as stable-unit change
	StableToEquity(ctx context.Context, quantity Asset) (equity Asset, change Asset, err error)
	// EquityToStable redeems equity at the nominal reserve-ratio price
	// (nominal true, gated by the enable timestamp) or the sale price
	EquityToStable(ctx context.Context, quantity Asset, nominal bool) (Asset, error)
	// SplitToDev carves the development-fund portion off an amount
	SplitToDev(ctx context.Context, quantity Asset) (primary Asset, dev Asset, err error)
	// USDValue values a quantity in cents at the current feeds
	USDValue(ctx context.Context, quantity Asset) (int64, error)
}

// RiskHook passive mitigation hook fired on soft-margin breaches.
// Never aborts the operation.
type RiskHook interface {
	OnSoftBreach(ctx context.Context, check string, distance decimal.Decimal)
}

// RiskGate evaluates the four risk dimensions around a conversion.
type RiskGate interface {
	// CheckMainSwitch verifies the composite circuit breaker
	CheckMainSwitch(ctx context.Context) error
	// Check runs volume decay plus the capital, liquidity, leverage and
	// daily volume checks for an order of the given direction and value
	Check(ctx context.Context, dir Direction, usdCents int64) error
	// Commit records the order's value into the rolling usage statistic
	Commit(ctx context.Context, dir Direction, usdCents int64) error
}

// Balancer keeps stable supply equal to reserve value within tolerance.
type Balancer interface {
	Rebalance(ctx context.Context) error
}

// Custodian the custody order state machine.
type Custodian interface {
	// Transfer moves receipt tokens; when the receiver is the custodian
	// and the memo holds a bitcoin address it retires the receipts and
	// opens a redeem order
	Transfer(ctx context.Context, from, to string, quantity Asset, memo string) error
	// Mint settles an external deposit: ledger issuance first, then the
	// audit order record; duplicate txids are rejected
	Mint(ctx context.Context, operator, userID string, symbol Symbol, satoshi int64, txID string) error
	// RequestRedeem opens a redeem order for a user whose receipt leg has
	// already been retired by the conversion router
	RequestRedeem(ctx context.Context, userID string, satoshi int64, address string) error
	// Redeem transitions a redeem order new -> processing with the
	// payout txid
	Redeem(ctx context.Context, operator string, symbol Symbol, orderID uint64, txID string) error
	// Confirm transitions an order processing -> settled once the
	// external transaction is final
	Confirm(ctx context.Context, operator string, kind OrderKind, orderID uint64) error
	// BalanceHedge opens at most one treasury balancing order for the
	// amount not yet covered by outstanding new treasury orders
	BalanceHedge(ctx context.Context, caller string, satoshi int64) error
	// InFlight sums new plus processing order amounts of one user
	InFlight(ctx context.Context, userID string) (int64, error)
}
