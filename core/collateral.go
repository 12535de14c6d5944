package core

import (
	"context"
	"time"
)

// Collateral a whitelisted external valuation source whose instruments
// may be held as reserve collateral
type Collateral struct {
	ID        uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id,omitempty"`
	Contract  string    `sql:"size:64;unique_index:idx_collaterals_contract_bond" json:"contract"`
	BondID    string    `sql:"size:64;unique_index:idx_collaterals_contract_bond" json:"bond_id"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// CollateralStore collateral whitelist store interface
type CollateralStore interface {
	Create(ctx context.Context, collateral *Collateral) error
	Delete(ctx context.Context, contract, bondID string) error
	// Find returns ErrCollateralNotAuthorized when absent
	Find(ctx context.Context, contract, bondID string) (*Collateral, error)
	All(ctx context.Context) ([]*Collateral, error)
}

// Valuator values a registered collateral instrument in cents
type Valuator interface {
	Value(ctx context.Context, collateral *Collateral) (int64, error)
}

// AdminService administrative entry points
type AdminService interface {
	AuthorizeCollateral(ctx context.Context, actor, contract, bondID string) error
	RevokeCollateral(ctx context.Context, actor, contract, bondID string) error
	// ListEquitySale lists a new equity sale tranche
	ListEquitySale(ctx context.Context, actor string, targetSupply Asset, price int64) error
}
