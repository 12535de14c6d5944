package collateral

import (
	"context"

	"deposbank/core"

	"github.com/fox-one/pkg/logger"
)

type adminService struct {
	system      *core.System
	vars        core.VariableStore
	ledger      core.Ledger
	collaterals core.CollateralStore
}

// New new admin service
func New(system *core.System, vars core.VariableStore, ledger core.Ledger, collaterals core.CollateralStore) core.AdminService {
	return &adminService{
		system:      system,
		vars:        vars,
		ledger:      ledger,
		collaterals: collaterals,
	}
}

func (s *adminService) AuthorizeCollateral(ctx context.Context, actor, contract, bondID string) error {
	if !s.system.IsAdmin(actor) {
		return core.ErrOperationForbidden
	}
	if contract == "" || bondID == "" {
		return core.ErrInvalidAmount
	}

	logger.FromContext(ctx).Infof("collateral %s/%s authorized", contract, bondID)
	return s.collaterals.Create(ctx, &core.Collateral{
		Contract: contract,
		BondID:   bondID,
	})
}

func (s *adminService) RevokeCollateral(ctx context.Context, actor, contract, bondID string) error {
	if !s.system.IsAdmin(actor) {
		return core.ErrOperationForbidden
	}

	if _, err := s.collaterals.Find(ctx, contract, bondID); err != nil {
		return err
	}

	logger.FromContext(ctx).Infof("collateral %s/%s revoked", contract, bondID)
	return s.collaterals.Delete(ctx, contract, bondID)
}

func (s *adminService) ListEquitySale(ctx context.Context, actor string, targetSupply core.Asset, price int64) error {
	if !s.system.IsAdmin(actor) {
		return core.ErrOperationForbidden
	}
	if targetSupply.Symbol != core.SymbolDPS {
		return core.ErrSymbolMismatch
	}
	if !targetSupply.IsValid() || price <= 0 {
		return core.ErrInvalidAmount
	}

	if err := s.vars.Set(ctx, core.ScopeSystem, core.VarSalePrice, price); err != nil {
		return err
	}
	if err := s.vars.Set(ctx, core.ScopeSystem, core.VarSaleTarget, targetSupply.Amount); err != nil {
		return err
	}

	treasury, err := s.ledger.Balance(ctx, s.system.BankAccount, core.SymbolDPS)
	if err != nil {
		return err
	}

	shortfall := targetSupply.Amount - treasury
	if shortfall <= 0 {
		return nil
	}

	logger.FromContext(ctx).Infof("equity sale tranche of %d units at %d", shortfall, price)
	return s.ledger.Issue(ctx, s.system.BankAccount,
		core.NewAsset(core.SymbolDPS, shortfall), "equity sale tranche")
}

type valuator struct {
	vars core.VariableStore
}

// NewValuator values registered instruments from the dbonds scope.
// An instrument without a posted valuation counts as zero.
func NewValuator(vars core.VariableStore) core.Valuator {
	return &valuator{vars: vars}
}

func (v *valuator) Value(ctx context.Context, collateral *core.Collateral) (int64, error) {
	value, err := core.OptVar(ctx, v.vars, core.ScopeDbonds, "val."+collateral.BondID, 0)
	if err != nil {
		return 0, err
	}

	return value, nil
}
