package variable

import (
	"context"
	"time"

	"deposbank/core"
	"deposbank/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

type variableService struct {
	system   *core.System
	vars     core.VariableStore
	balancer core.Balancer
	now      func() time.Time
}

// New new guarded variable service. Raw store writes stay internal to
// the engine; everything arriving from outside goes through here.
func New(system *core.System, vars core.VariableStore, balancer core.Balancer) core.VariableService {
	return &variableService{
		system:   system,
		vars:     vars,
		balancer: balancer,
		now:      time.Now,
	}
}

func (s *variableService) allowed(actor string, scope core.Scope) bool {
	switch scope {
	case core.ScopeSystem:
		return s.system.IsAdmin(actor)
	case core.ScopePeriodic:
		return s.system.IsOracle(actor)
	case core.ScopeStat, core.ScopeDbonds, core.ScopePrevious:
		return actor == s.system.BankAccount
	}

	return false
}

func (s *variableService) Set(ctx context.Context, actor string, scope core.Scope, name string, value int64) error {
	if !core.CheckScope(scope) {
		return core.ErrArbitraryScope
	}
	if !s.allowed(actor, scope) {
		return core.ErrOperationForbidden
	}

	if scope == core.ScopePeriodic {
		switch name {
		case core.VarBTCPrice:
			if err := s.checkBand(ctx, value); err != nil {
				return err
			}
		case core.VarPriceLow, core.VarPriceHigh:
			if err := s.checkBoundChange(ctx, name, value); err != nil {
				return err
			}
		}
	}

	if err := s.vars.Set(ctx, scope, name, value); err != nil {
		return err
	}

	logger.FromContext(ctx).WithField("scope", scope).
		Infof("variable %s set to %d by %s", name, value, actor)

	// fresh price or hedge figures move the reserve valuation
	if scope == core.ScopePeriodic && (name == core.VarBTCPrice || name == core.VarHedgeBTC) {
		return s.balancer.Rebalance(ctx)
	}

	return nil
}

// checkBand rejects a feed value outside the admin band. A missing
// bound leaves that side open.
func (s *variableService) checkBand(ctx context.Context, value int64) error {
	low, err := core.OptVar(ctx, s.vars, core.ScopePeriodic, core.VarPriceLow, 0)
	if err != nil {
		return err
	}
	high, err := core.OptVar(ctx, s.vars, core.ScopePeriodic, core.VarPriceHigh, 0)
	if err != nil {
		return err
	}

	if (low > 0 && value < low) || (high > 0 && value > high) {
		return core.ErrPriceOutOfBand
	}

	return nil
}

// checkBoundChange rate-limits band bound moves. The first write of a
// bound is unrestricted; afterwards each change must wait out the
// minimum age and stay inside the maximum relative move, with the
// superseded value kept in the audit scope.
func (s *variableService) checkBoundChange(ctx context.Context, name string, value int64) error {
	current, err := s.vars.Get(ctx, core.ScopePeriodic, name)
	if err == core.ErrVariableNotFound {
		return nil
	} else if err != nil {
		return err
	}

	minAge, err := core.OptVar(ctx, s.vars, core.ScopeSystem, core.VarMinLimitsAge, 0)
	if err != nil {
		return err
	}
	if minAge > 0 {
		age := s.now().Sub(current.UpdatedAt)
		if age < time.Duration(minAge/number.Pow10(8))*time.Second {
			return core.ErrLimitChangeTooEarly
		}
	}

	maxChange, err := core.OptVar(ctx, s.vars, core.ScopeSystem, core.VarMaxLimitChange, 0)
	if err != nil {
		return err
	}
	if maxChange > 0 && current.Value > 0 {
		move := decimal.New(value-current.Value, 0).Abs().
			Div(decimal.New(current.Value, 0))
		if move.GreaterThan(number.Scaled(maxChange, 10)) {
			return core.ErrLimitChangeTooLarge
		}
	}

	return s.vars.Set(ctx, core.ScopePrevious, name, current.Value)
}

func (s *variableService) Delete(ctx context.Context, actor string, scope core.Scope, name string) error {
	if !core.CheckScope(scope) {
		return core.ErrArbitraryScope
	}
	if !s.system.IsAdmin(actor) {
		return core.ErrOperationForbidden
	}

	return s.vars.Delete(ctx, scope, name)
}
