package risk

import (
	"context"
	"time"

	"deposbank/core"
	"deposbank/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// VarDecayAt stat variable holding the unix hour bucket of the last
// volume decay pass.
const VarDecayAt = "volumedecayat"

const decaySteps = 20

type gateService struct {
	system *core.System
	vars   core.VariableStore
	ledger core.Ledger
	orders core.OrderStore
	hook   core.RiskHook
	now    func() time.Time
}

// New new risk gate
func New(system *core.System, vars core.VariableStore, ledger core.Ledger, orders core.OrderStore, hook core.RiskHook) core.RiskGate {
	if hook == nil {
		hook = LogHook{}
	}

	return &gateService{
		system: system,
		vars:   vars,
		ledger: ledger,
		orders: orders,
		hook:   hook,
		now:    time.Now,
	}
}

// LogHook default passive mitigation: log the breach and move on.
type LogHook struct{}

func (LogHook) OnSoftBreach(ctx context.Context, check string, distance decimal.Decimal) {
	logger.FromContext(ctx).WithField("check", check).
		Infof("soft risk margin breached, distance %s", distance)
}

// gateVar reads a switch or limit input of the circuit breaker. Every
// one of them is a hard precondition: until an operator has configured
// the full set, conversions stay disabled.
func (s *gateService) gateVar(ctx context.Context, scope core.Scope, name string) (int64, error) {
	value, err := core.GetVar(ctx, s.vars, scope, name)
	if err == core.ErrVariableNotFound {
		return 0, core.ErrConversionsDisabled
	}

	return value, err
}

func (s *gateService) CheckMainSwitch(ctx context.Context) error {
	manual, err := s.gateVar(ctx, core.ScopeSystem, core.VarManualSwitch)
	if err != nil {
		return err
	}

	service, err := s.gateVar(ctx, core.ScopeSystem, core.VarServiceSwitch)
	if err != nil {
		return err
	}

	if manual == 0 || service == 0 {
		return core.ErrConversionsDisabled
	}

	// a stale price feed flips the composite switch as well
	feed, err := s.vars.Get(ctx, core.ScopePeriodic, core.VarBTCPrice)
	if err != nil {
		if err == core.ErrVariableNotFound {
			return core.ErrConversionsDisabled
		}
		return err
	}

	maxAge, err := s.gateVar(ctx, core.ScopePeriodic, core.VarMaxDataAge)
	if err != nil {
		return err
	}
	if s.now().Sub(feed.UpdatedAt) > time.Duration(maxAge)*time.Second {
		return core.ErrConversionsDisabled
	}

	// so does a quote outside the guard band, which the band bounds may
	// have left behind since it was written
	low, err := s.gateVar(ctx, core.ScopePeriodic, core.VarPriceLow)
	if err != nil {
		return err
	}
	high, err := s.gateVar(ctx, core.ScopePeriodic, core.VarPriceHigh)
	if err != nil {
		return err
	}
	if feed.Value < low || feed.Value > high {
		return core.ErrConversionsDisabled
	}

	return nil
}

// decayVolume walks the rolling usage counter toward zero, one twentieth
// of the daily cap per whole elapsed hour.
func (s *gateService) decayVolume(ctx context.Context) error {
	maxDay, err := core.OptVar(ctx, s.vars, core.ScopeSystem, core.VarMaxDayVolume, 0)
	if err != nil || maxDay <= 0 {
		return err
	}

	lastAt, err := core.OptVar(ctx, s.vars, core.ScopeStat, VarDecayAt, 0)
	if err != nil {
		return err
	}

	now := s.now().Unix()
	if lastAt == 0 {
		return s.vars.Set(ctx, core.ScopeStat, VarDecayAt, now)
	}

	hours := (now - lastAt) / 3600
	if hours <= 0 {
		return nil
	}

	used, err := core.OptVar(ctx, s.vars, core.ScopeStat, core.VarVolumeUsed, 0)
	if err != nil {
		return err
	}

	step := number.RoundInt64(decimal.New(maxDay, 0).Div(decimal.NewFromInt(decaySteps)))
	delta := step * hours

	switch {
	case used > 0:
		used -= delta
		if used < 0 {
			used = 0
		}
	case used < 0:
		used += delta
		if used > 0 {
			used = 0
		}
	}

	if err := s.vars.Set(ctx, core.ScopeStat, core.VarVolumeUsed, used); err != nil {
		return err
	}

	return s.vars.Set(ctx, core.ScopeStat, VarDecayAt, lastAt+hours*3600)
}

func (s *gateService) Check(ctx context.Context, dir core.Direction, usdCents int64) error {
	if dir == core.DirectionNeutral {
		return nil
	}

	if err := s.decayVolume(ctx); err != nil {
		return err
	}

	maxOrder, err := core.OptVar(ctx, s.vars, core.ScopeSystem, core.VarMaxOrderSize, 0)
	if err != nil {
		return err
	}
	if maxOrder > 0 && usdCents > maxOrder {
		return core.ErrOrderTooLarge
	}

	if err := s.checkDayVolume(ctx, dir, usdCents); err != nil {
		return err
	}

	switch dir {
	case core.DirectionMint:
		if err := s.checkCapital(ctx, usdCents); err != nil {
			return err
		}
		return s.checkLeverage(ctx, usdCents)
	case core.DirectionRedeem:
		return s.checkLiquidity(ctx, usdCents)
	}

	return nil
}

func (s *gateService) checkDayVolume(ctx context.Context, dir core.Direction, usdCents int64) error {
	maxDay, err := core.OptVar(ctx, s.vars, core.ScopeSystem, core.VarMaxDayVolume, 0)
	if err != nil || maxDay <= 0 {
		return err
	}

	used, err := core.OptVar(ctx, s.vars, core.ScopeStat, core.VarVolumeUsed, 0)
	if err != nil {
		return err
	}

	// used is signed, mint positive. Either direction gets the full cap
	// measured from the current net position.
	room := maxDay - used
	if dir == core.DirectionRedeem {
		room = maxDay + used
	}

	if usdCents >= room {
		return core.ErrDayVolumeExceeded
	}

	return nil
}

// checkCapital requires the reserve cushion to stay above a share of the
// circulating stable supply after the mint settles.
func (s *gateService) checkCapital(ctx context.Context, usdCents int64) error {
	minShare, err := core.OptVar(ctx, s.vars, core.ScopeSystem, core.VarMinCapShare, 0)
	if err != nil || minShare <= 0 {
		return err
	}

	reserve, err := s.ledger.Balance(ctx, s.system.BankAccount, core.SymbolDUSD)
	if err != nil {
		return err
	}

	supply, err := s.ledger.Supply(ctx, core.SymbolDUSD)
	if err != nil {
		return err
	}

	circulating := supply - reserve + usdCents
	if circulating <= 0 {
		return nil
	}

	share := decimal.New(reserve, 0).Div(decimal.New(circulating, 0))
	soft := number.Scaled(minShare, 10)
	hard := soft.Div(decimal.NewFromInt(2))

	if share.LessThan(hard) {
		return core.ErrInsufficientCapital
	}
	if share.LessThan(soft) {
		s.hook.OnSoftBreach(ctx, "capital", soft.Sub(share))
	}

	return nil
}

// checkLiquidity keeps the immediately available pool, custody value
// not parked at the hedge venue, above its floor after the payout. The
// floor is the custody share the hedge band leaves outside the venue.
func (s *gateService) checkLiquidity(ctx context.Context, usdCents int64) error {
	price, err := core.GetVar(ctx, s.vars, core.ScopePeriodic, core.VarBTCPrice)
	if err != nil {
		return err
	}

	hedgeSat, err := core.OptVar(ctx, s.vars, core.ScopePeriodic, core.VarHedgeBTC, 0)
	if err != nil {
		return err
	}
	coldSat, err := core.OptVar(ctx, s.vars, core.ScopePeriodic, core.VarColdBTC, 0)
	if err != nil {
		return err
	}

	inflight, err := s.orders.SumByStatus(ctx, core.OrderKindRedeem, "",
		core.OrderStatusNew, core.OrderStatusProcessing)
	if err != nil {
		return err
	}

	maxShare, err := core.OptVar(ctx, s.vars, core.ScopeSystem, core.VarHedgeMax, 0)
	if err != nil {
		return err
	}

	toCents := func(sat int64) decimal.Decimal {
		return decimal.New(sat, -8).Mul(number.Scaled(price, 8)).Shift(core.SymbolDUSD.Precision())
	}

	pool := toCents(coldSat).Sub(toCents(inflight)).Sub(decimal.New(usdCents, 0))

	soft := decimal.Zero
	if maxShare > 0 {
		soft = toCents(hedgeSat + coldSat).
			Mul(decimal.NewFromInt(1).Sub(number.Scaled(maxShare, 10)))
	}
	hard := soft.Div(decimal.NewFromInt(2))

	if pool.LessThan(hard) {
		return core.ErrInsufficientLiquidity
	}
	if pool.LessThan(soft) {
		s.hook.OnSoftBreach(ctx, "liquidity", soft.Sub(pool))
	}

	return nil
}

// checkLeverage blocks minting while the hedge share of total custody is
// far below its minimum, since new liabilities cannot be hedged.
func (s *gateService) checkLeverage(ctx context.Context, usdCents int64) error {
	minShare, err := core.OptVar(ctx, s.vars, core.ScopeSystem, core.VarHedgeMin, 0)
	if err != nil || minShare <= 0 {
		return err
	}

	price, err := core.GetVar(ctx, s.vars, core.ScopePeriodic, core.VarBTCPrice)
	if err != nil {
		return err
	}

	hedgeSat, err := core.OptVar(ctx, s.vars, core.ScopePeriodic, core.VarHedgeBTC, 0)
	if err != nil {
		return err
	}
	coldSat, err := core.OptVar(ctx, s.vars, core.ScopePeriodic, core.VarColdBTC, 0)
	if err != nil {
		return err
	}

	orderSat := number.RoundInt64(decimal.New(usdCents, -core.SymbolDUSD.Precision()).
		Div(number.Scaled(price, 8)).Shift(8))

	total := hedgeSat + coldSat + orderSat
	if total <= 0 {
		return nil
	}

	share := decimal.New(hedgeSat, 0).Div(decimal.New(total, 0))
	soft := number.Scaled(minShare, 10)
	hard := soft.Div(decimal.NewFromInt(2))

	if share.LessThan(hard) {
		return core.ErrLeverageTooHigh
	}
	if share.LessThan(soft) {
		s.hook.OnSoftBreach(ctx, "leverage", soft.Sub(share))
	}

	maxShare, err := core.OptVar(ctx, s.vars, core.ScopeSystem, core.VarHedgeMax, 0)
	if err != nil {
		return err
	}
	if maxShare > 0 {
		if limit := number.Scaled(maxShare, 10); share.GreaterThan(limit) {
			s.hook.OnSoftBreach(ctx, "leverage", share.Sub(limit))
		}
	}

	return nil
}

func (s *gateService) Commit(ctx context.Context, dir core.Direction, usdCents int64) error {
	if dir == core.DirectionNeutral {
		return nil
	}

	used, err := core.OptVar(ctx, s.vars, core.ScopeStat, core.VarVolumeUsed, 0)
	if err != nil {
		return err
	}

	if dir == core.DirectionMint {
		used += usdCents
	} else {
		used -= usdCents
	}

	return s.vars.Set(ctx, core.ScopeStat, core.VarVolumeUsed, used)
}
