package core

import (
	"context"
	"time"
)

// Scope variable scope
type Scope string

const (
	// ScopePeriodic oracle fed values
	ScopePeriodic Scope = "periodic"
	// ScopeSystem admin set limits and fees
	ScopeSystem Scope = "system"
	// ScopeStat rolling usage counters
	ScopeStat Scope = "stat"
	// ScopeDbonds registered external valuation data
	ScopeDbonds Scope = "dbonds"
	// ScopePrevious audit copies of rate-limited bounds
	ScopePrevious Scope = "previous"
)

// CheckScope check scope
func CheckScope(scope Scope) bool {
	switch scope {
	case ScopePeriodic, ScopeSystem, ScopeStat, ScopeDbonds, ScopePrevious:
		return true
	}

	return false
}

// Periodic scope variables. Prices are scaled by 1e8.
const (
	VarBTCPrice  = "btcusd"
	VarEOSPrice  = "eosusd"
	VarPriceLow  = "btcusd.low"
	VarPriceHigh = "btcusd.high"
	// VarMaxDataAge max allowed age of the btcusd feed, seconds
	VarMaxDataAge = "maxdataage"
	// VarHedgeBTC satoshi parked at the hedge venue, oracle fed
	VarHedgeBTC = "btc.bitmex"
	// VarColdBTC satoshi in cold custody, oracle fed
	VarColdBTC = "btc.cold"
)

// System scope variables. Percent fees are scaled by 1e8, shares
// and ratios by 1e10, USD limits are in cents.
const (
	VarMintFee     = "fee.mint"
	VarRedeemFee   = "fee.redeem"
	VarTransferFee = "fee.transfer"
	VarDevPercent  = "dev.percent"

	VarMaxOrderSize = "maxordersize"
	VarMaxDayVolume = "maxdayvol"
	VarMinCapShare  = "mincapshare"
	VarHedgeMin     = "bitmex.min"
	VarHedgeMax     = "bitmex.max"
	VarHedgeTarget  = "bitmex.trg"

	VarServiceSwitch = "sw.service"
	VarManualSwitch  = "sw.manual"

	// VarSalePrice admin set equity sale price, USD scaled by 1e8
	VarSalePrice = "dpssaleprice"
	// VarSaleTarget equity sale tranche target supply, minor units
	VarSaleTarget = "dpssaletrgt"
	// VarEquityFee equity redemption fee ratio, scaled by 1e10
	VarEquityFee = "dps.fee"
	// VarRedeemEnabledAt unix seconds after which nominal redemption works
	VarRedeemEnabledAt = "dps.redeem"

	// VarSupplyTolerance peg tolerance; divided by 1e6 gives cents
	VarSupplyTolerance = "maxsupperror"
	// VarMinLimitsAge min seconds between bound changes, scaled by 1e8
	VarMinLimitsAge = "minlimitsage"
	// VarMaxLimitChange max relative bound move, scaled by 1e10
	VarMaxLimitChange = "maxlimitprct"
)

// Stat scope variables.
const (
	// VarVolumeUsed net directional traded volume, cents
	VarVolumeUsed = "volumeused"
)

// Variable a named integer owned by the oracle/config store
type Variable struct {
	ID        uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id,omitempty"`
	Scope     Scope     `sql:"size:16;unique_index:idx_variables_scope_name" json:"scope"`
	Name      string    `sql:"size:32;unique_index:idx_variables_scope_name" json:"name"`
	Value     int64     `json:"value"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// VariableStore variable store interface
type VariableStore interface {
	// Get returns ErrVariableNotFound when the variable is absent
	Get(ctx context.Context, scope Scope, name string) (*Variable, error)
	Set(ctx context.Context, scope Scope, name string, value int64) error
	Delete(ctx context.Context, scope Scope, name string) error
	List(ctx context.Context, scope Scope) ([]*Variable, error)
}

// GetVar reads a required variable value
func GetVar(ctx context.Context, store VariableStore, scope Scope, name string) (int64, error) {
	v, err := store.Get(ctx, scope, name)
	if err != nil {
		return 0, err
	}

	return v.Value, nil
}

// OptVar reads a soft variable, defaulting when absent
func OptVar(ctx context.Context, store VariableStore, scope Scope, name string, fallback int64) (int64, error) {
	v, err := store.Get(ctx, scope, name)
	if err == ErrVariableNotFound {
		return fallback, nil
	} else if err != nil {
		return 0, err
	}

	return v.Value, nil
}

// VariableService guarded write access to the store
type VariableService interface {
	Set(ctx context.Context, actor string, scope Scope, name string, value int64) error
	Delete(ctx context.Context, actor string, scope Scope, name string) error
}
