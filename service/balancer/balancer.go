package balancer

import (
	"context"

	"deposbank/core"
	"deposbank/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

const balancingMemo = "supply balancing"

type balancerService struct {
	system      *core.System
	vars        core.VariableStore
	ledger      core.Ledger
	collaterals core.CollateralStore
	valuator    core.Valuator
}

// New new balancer. Rebalance is a no-op while the feeds required to
// value the reserve are absent; a half-valued reserve must never move
// the supply.
func New(system *core.System, vars core.VariableStore, ledger core.Ledger, collaterals core.CollateralStore, valuator core.Valuator) core.Balancer {
	return &balancerService{
		system:      system,
		vars:        vars,
		ledger:      ledger,
		collaterals: collaterals,
		valuator:    valuator,
	}
}

func (s *balancerService) Rebalance(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("service", "balancer")

	price, err := core.GetVar(ctx, s.vars, core.ScopePeriodic, core.VarBTCPrice)
	if err == core.ErrVariableNotFound {
		return nil
	} else if err != nil {
		return err
	}

	hedgeSat, err := core.GetVar(ctx, s.vars, core.ScopePeriodic, core.VarHedgeBTC)
	if err == core.ErrVariableNotFound {
		return nil
	} else if err != nil {
		return err
	}

	coldSat, err := core.OptVar(ctx, s.vars, core.ScopePeriodic, core.VarColdBTC, 0)
	if err != nil {
		return err
	}

	netSat, err := s.netBitcoin(ctx, hedgeSat+coldSat)
	if err != nil {
		return err
	}

	target := decimal.New(netSat, -8).
		Mul(number.Scaled(price, 8)).
		Shift(core.SymbolDUSD.Precision())

	eosValue, ok, err := s.eosValue(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	target = target.Add(decimal.New(eosValue, 0))

	collaterals, err := s.collaterals.All(ctx)
	if err != nil {
		return err
	}
	for _, c := range collaterals {
		v, err := s.valuator.Value(ctx, c)
		if err != nil {
			return err
		}
		target = target.Add(decimal.New(v, 0))
	}

	supply, err := s.ledger.Supply(ctx, core.SymbolDUSD)
	if err != nil {
		return err
	}

	tolerance, err := core.OptVar(ctx, s.vars, core.ScopeSystem, core.VarSupplyTolerance, 0)
	if err != nil {
		return err
	}

	diff := number.RoundInt64(target) - supply
	if abs(diff) <= tolerance/number.Pow10(6) {
		return nil
	}

	if diff > 0 {
		log.Infof("supply below reserve value, issuing %d cents", diff)
		return s.ledger.Issue(ctx, s.system.BankAccount,
			core.NewAsset(core.SymbolDUSD, diff), balancingMemo)
	}

	treasury, err := s.ledger.Balance(ctx, s.system.BankAccount, core.SymbolDUSD)
	if err != nil {
		return err
	}

	// a deficit is burned only out of the bank's own pocket
	burn := -diff
	if burn > treasury {
		burn = treasury
	}
	if burn <= 0 {
		log.Info("supply above reserve value but treasury is empty")
		return nil
	}

	log.Infof("supply above reserve value, retiring %d cents", burn)
	return s.ledger.Retire(ctx, s.system.BankAccount,
		core.NewAsset(core.SymbolDUSD, burn), balancingMemo)
}

// netBitcoin is custody bitcoin not spoken for by circulating receipts.
func (s *balancerService) netBitcoin(ctx context.Context, custodySat int64) (int64, error) {
	supply, err := s.ledger.Supply(ctx, core.SymbolDBTC)
	if err != nil {
		return 0, err
	}

	treasury, err := s.ledger.Balance(ctx, s.system.BankAccount, core.SymbolDBTC)
	if err != nil {
		return 0, err
	}

	return custodySat - (supply - treasury), nil
}

func (s *balancerService) eosValue(ctx context.Context) (int64, bool, error) {
	balance, err := s.ledger.Balance(ctx, s.system.BankAccount, core.SymbolEOS)
	if err != nil {
		return 0, false, err
	}
	if balance == 0 {
		return 0, true, nil
	}

	price, err := core.GetVar(ctx, s.vars, core.ScopePeriodic, core.VarEOSPrice)
	if err == core.ErrVariableNotFound {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}

	cents := decimal.New(balance, -core.SymbolEOS.Precision()).
		Mul(number.Scaled(price, 8)).
		Shift(core.SymbolDUSD.Precision())

	return number.RoundInt64(cents), true, nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}

	return v
}
