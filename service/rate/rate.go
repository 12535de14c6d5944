package rate

import (
	"context"
	"time"

	"deposbank/core"
	"deposbank/pkg/number"

	"github.com/bluele/gcache"
	"github.com/shopspring/decimal"
)

const nominalCacheKey = "dps.nominal"

var hundred = decimal.NewFromInt(100)

type rateService struct {
	system *core.System
	vars   core.VariableStore
	ledger core.Ledger
	cache  gcache.Cache
}

// New new rate service. Conversions read their variables fresh on
// every call; only the nominal equity price is cached briefly.
func New(system *core.System, vars core.VariableStore, ledger core.Ledger) core.RateService {
	return &rateService{
		system: system,
		vars:   vars,
		ledger: ledger,
		cache:  gcache.New(8).LRU().Build(),
	}
}

func priceVar(symbol core.Symbol) (string, bool) {
	switch symbol {
	case core.SymbolDBTC, core.SymbolBTC:
		return core.VarBTCPrice, true
	case core.SymbolEOS:
		return core.VarEOSPrice, true
	}

	return "", false
}

func (s *rateService) ExternalToStable(ctx context.Context, quantity core.Asset) (core.Asset, error) {
	feed, ok := priceVar(quantity.Symbol)
	if !ok {
		return core.Asset{}, core.ErrSymbolMismatch
	}

	price, err := core.GetVar(ctx, s.vars, core.ScopePeriodic, feed)
	if err != nil {
		return core.Asset{}, err
	}

	fee, err := core.GetVar(ctx, s.vars, core.ScopeSystem, core.VarMintFee)
	if err != nil {
		return core.Asset{}, err
	}

	// cents = amount * 10^-p * price * (100 - fee%), rounded half away
	// from zero; the factor 100 folds the cent shift into the fee term.
	cents := quantity.Decimal().
		Mul(number.Scaled(price, 8)).
		Mul(hundred.Sub(number.Scaled(fee, 8)))

	return core.NewAsset(core.SymbolDUSD, number.RoundInt64(cents)), nil
}

func (s *rateService) StableToExternal(ctx context.Context, quantity core.Asset, target core.Symbol) (core.Asset, error) {
	if quantity.Symbol != core.SymbolDUSD {
		return core.Asset{}, core.ErrSymbolMismatch
	}

	feed, ok := priceVar(target)
	if !ok {
		return core.Asset{}, core.ErrSymbolMismatch
	}

	price, err := core.GetVar(ctx, s.vars, core.ScopePeriodic, feed)
	if err != nil {
		return core.Asset{}, err
	}

	fee, err := core.GetVar(ctx, s.vars, core.ScopeSystem, core.VarRedeemFee)
	if err != nil {
		return core.Asset{}, err
	}

	// the redemption fee is added, not subtracted, so the reserve
	// always keeps the rounding remainder
	units := decimal.New(quantity.Amount, 0).
		Div(number.Scaled(price, 8).Mul(hundred.Add(number.Scaled(fee, 8)))).
		Shift(target.Precision())

	return core.NewAsset(target, number.RoundInt64(units)), nil
}

func (s *rateService) StableToEquity(ctx context.Context, quantity core.Asset) (core.Asset, core.Asset, error) {
	if quantity.Symbol != core.SymbolDUSD {
		return core.Asset{}, core.Asset{}, core.ErrSymbolMismatch
	}

	salePrice, err := core.GetVar(ctx, s.vars, core.ScopeSystem, core.VarSalePrice)
	if err != nil {
		return core.Asset{}, core.Asset{}, err
	}

	price := number.Scaled(salePrice, 8)
	requested := number.RoundInt64(quantity.Decimal().Div(price).Shift(core.SymbolDPS.Precision()))

	balance, err := s.ledger.Balance(ctx, s.system.BankAccount, core.SymbolDPS)
	if err != nil {
		return core.Asset{}, core.Asset{}, err
	}

	granted := requested
	if balance < granted {
		granted = balance
	}
	if granted <= 0 {
		return core.Asset{}, core.Asset{}, core.ErrEquitySoldOut
	}

	// shortfall comes back as change, floored so rounding never leaks
	// value out of the reserve
	change := number.FloorInt64(
		decimal.New(requested-granted, -core.SymbolDPS.Precision()).Mul(price).Shift(core.SymbolDUSD.Precision()))

	return core.NewAsset(core.SymbolDPS, granted), core.NewAsset(core.SymbolDUSD, change), nil
}

func (s *rateService) EquityToStable(ctx context.Context, quantity core.Asset, nominal bool) (core.Asset, error) {
	if quantity.Symbol != core.SymbolDPS {
		return core.Asset{}, core.ErrSymbolMismatch
	}

	fee, err := core.OptVar(ctx, s.vars, core.ScopeSystem, core.VarEquityFee, 0)
	if err != nil {
		return core.Asset{}, err
	}
	feeRatio := number.Scaled(fee, 10)

	if !nominal {
		salePrice, err := core.GetVar(ctx, s.vars, core.ScopeSystem, core.VarSalePrice)
		if err != nil {
			return core.Asset{}, err
		}

		cents := quantity.Decimal().
			Mul(number.Scaled(salePrice, 8)).
			Mul(decimal.New(1, 0).Sub(feeRatio)).
			Shift(core.SymbolDUSD.Precision())

		return core.NewAsset(core.SymbolDUSD, number.RoundInt64(cents)), nil
	}

	enabledAt, err := core.GetVar(ctx, s.vars, core.ScopeSystem, core.VarRedeemEnabledAt)
	if err != nil {
		return core.Asset{}, err
	}
	if time.Now().Unix() < enabledAt {
		return core.Asset{}, core.ErrRedeemNotEnabled
	}

	rate, err := s.nominalRate(ctx, feeRatio)
	if err != nil {
		return core.Asset{}, err
	}

	cents := rate.Mul(decimal.New(quantity.Amount, 0))
	return core.NewAsset(core.SymbolDUSD, number.RoundInt64(cents)), nil
}

// nominalRate is cents per minor equity unit, derived from the reserve
// fund and the circulating equity supply.
func (s *rateService) nominalRate(ctx context.Context, feeRatio decimal.Decimal) (decimal.Decimal, error) {
	if v, err := s.cache.Get(nominalCacheKey); err == nil {
		return v.(decimal.Decimal), nil
	}

	reserve, err := s.ledger.Balance(ctx, s.system.BankAccount, core.SymbolDUSD)
	if err != nil {
		return decimal.Zero, err
	}

	supply, err := s.ledger.Supply(ctx, core.SymbolDPS)
	if err != nil {
		return decimal.Zero, err
	}

	treasury, err := s.ledger.Balance(ctx, s.system.BankAccount, core.SymbolDPS)
	if err != nil {
		return decimal.Zero, err
	}

	circulating := supply - treasury
	if circulating <= 0 {
		return decimal.Zero, core.ErrInvalidAmount
	}

	rate := decimal.New(1, 0).Sub(feeRatio).
		Mul(decimal.New(reserve, 0)).
		Div(decimal.New(circulating, 0))

	// keep the derived price observable next to the admin sale price
	nominal := number.RoundInt64(rate.Shift(core.SymbolDPS.Precision()).Shift(-core.SymbolDUSD.Precision()).Shift(8))
	_ = s.vars.Set(ctx, core.ScopeStat, "dpsnmnlprice", nominal)

	_ = s.cache.SetWithExpire(nominalCacheKey, rate, 10*time.Second)
	return rate, nil
}

func (s *rateService) SplitToDev(ctx context.Context, quantity core.Asset) (core.Asset, core.Asset, error) {
	if !quantity.Symbol.IsValid() {
		return core.Asset{}, core.Asset{}, core.ErrSymbolMismatch
	}

	ratio, err := core.OptVar(ctx, s.vars, core.ScopeSystem, core.VarDevPercent, 0)
	if err != nil {
		return core.Asset{}, core.Asset{}, err
	}

	devRatio := number.Scaled(ratio, 10)
	dev := number.FloorInt64(
		decimal.New(quantity.Amount, 0).Mul(devRatio).Div(decimal.New(1, 0).Add(devRatio)))

	return core.NewAsset(quantity.Symbol, quantity.Amount-dev), core.NewAsset(quantity.Symbol, dev), nil
}

func (s *rateService) USDValue(ctx context.Context, quantity core.Asset) (int64, error) {
	if quantity.Symbol == core.SymbolDUSD {
		return quantity.Amount, nil
	}

	feed, ok := priceVar(quantity.Symbol)
	if !ok {
		return 0, core.ErrSymbolMismatch
	}

	price, err := core.GetVar(ctx, s.vars, core.ScopePeriodic, feed)
	if err != nil {
		return 0, err
	}

	cents := quantity.Decimal().Mul(number.Scaled(price, 8)).Shift(core.SymbolDUSD.Precision())
	return number.RoundInt64(cents), nil
}
