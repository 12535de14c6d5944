package balancer

import (
	"context"
	"testing"

	"deposbank/core"
	collateralservice "deposbank/service/collateral"
	"deposbank/store/mem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFixture(t *testing.T) (context.Context, *mem.VariableStore, *mem.Ledger, *mem.CollateralStore, core.Balancer) {
	t.Helper()

	system := &core.System{BankAccount: "bank"}
	vars := mem.NewVariableStore()
	ledger := mem.NewLedger()
	collaterals := mem.NewCollateralStore()
	valuator := collateralservice.NewValuator(vars)

	return context.Background(), vars, ledger, collaterals, New(system, vars, ledger, collaterals, valuator)
}

func TestRebalanceIssuesDeficit(t *testing.T) {
	ctx, vars, ledger, _, balancer := testFixture(t)

	vars.Set(ctx, core.ScopePeriodic, core.VarBTCPrice, 10000_00000000)
	vars.Set(ctx, core.ScopePeriodic, core.VarHedgeBTC, 100000000)

	ledger.CreateToken(ctx, core.SymbolDUSD, 0, "bank")
	ledger.Deposit("alice", core.NewAsset(core.SymbolDUSD, 900000))

	// one custody bitcoin is worth 10,000.00 but only 9,000.00 exist
	require.NoError(t, balancer.Rebalance(ctx))

	supply, _ := ledger.Supply(ctx, core.SymbolDUSD)
	assert.Equal(t, int64(1000000), supply)

	treasury, _ := ledger.Balance(ctx, "bank", core.SymbolDUSD)
	assert.Equal(t, int64(100000), treasury)
}

func TestRebalanceRetiresBounded(t *testing.T) {
	ctx, vars, ledger, _, balancer := testFixture(t)

	vars.Set(ctx, core.ScopePeriodic, core.VarBTCPrice, 10000_00000000)
	vars.Set(ctx, core.ScopePeriodic, core.VarHedgeBTC, 100000000)

	ledger.CreateToken(ctx, core.SymbolDUSD, 0, "bank")
	ledger.Deposit("alice", core.NewAsset(core.SymbolDUSD, 1050000))
	ledger.Deposit("bank", core.NewAsset(core.SymbolDUSD, 30000))

	// 800.00 over target but only 300.00 in the treasury to burn
	require.NoError(t, balancer.Rebalance(ctx))

	supply, _ := ledger.Supply(ctx, core.SymbolDUSD)
	assert.Equal(t, int64(1050000), supply)

	treasury, _ := ledger.Balance(ctx, "bank", core.SymbolDUSD)
	assert.Equal(t, int64(0), treasury)
}

func TestRebalanceTolerance(t *testing.T) {
	ctx, vars, ledger, _, balancer := testFixture(t)

	vars.Set(ctx, core.ScopePeriodic, core.VarBTCPrice, 10000_00000000)
	vars.Set(ctx, core.ScopePeriodic, core.VarHedgeBTC, 100000000)
	// 50.00 of slack
	vars.Set(ctx, core.ScopeSystem, core.VarSupplyTolerance, 5000000000)

	ledger.CreateToken(ctx, core.SymbolDUSD, 0, "bank")
	ledger.Deposit("alice", core.NewAsset(core.SymbolDUSD, 996000))

	require.NoError(t, balancer.Rebalance(ctx))

	supply, _ := ledger.Supply(ctx, core.SymbolDUSD)
	assert.Equal(t, int64(996000), supply)
}

func TestRebalanceMissingFeeds(t *testing.T) {
	ctx, vars, ledger, _, balancer := testFixture(t)

	ledger.CreateToken(ctx, core.SymbolDUSD, 0, "bank")
	ledger.Deposit("alice", core.NewAsset(core.SymbolDUSD, 100))

	// no price feed at all
	require.NoError(t, balancer.Rebalance(ctx))
	supply, _ := ledger.Supply(ctx, core.SymbolDUSD)
	assert.Equal(t, int64(100), supply)

	// bitcoin feed without a hedge figure
	vars.Set(ctx, core.ScopePeriodic, core.VarBTCPrice, 10000_00000000)
	require.NoError(t, balancer.Rebalance(ctx))
	supply, _ = ledger.Supply(ctx, core.SymbolDUSD)
	assert.Equal(t, int64(100), supply)

	// unvaluable EOS on the books blocks any adjustment
	vars.Set(ctx, core.ScopePeriodic, core.VarHedgeBTC, 100000000)
	ledger.Deposit("bank", core.NewAsset(core.SymbolEOS, 10000))
	require.NoError(t, balancer.Rebalance(ctx))
	supply, _ = ledger.Supply(ctx, core.SymbolDUSD)
	assert.Equal(t, int64(100), supply)
}

func TestRebalanceCountsCollateral(t *testing.T) {
	ctx, vars, ledger, collaterals, balancer := testFixture(t)

	vars.Set(ctx, core.ScopePeriodic, core.VarBTCPrice, 10000_00000000)
	vars.Set(ctx, core.ScopePeriodic, core.VarHedgeBTC, 0)

	collaterals.Create(ctx, &core.Collateral{Contract: "dbonds", BondID: "b1"})
	vars.Set(ctx, core.ScopeDbonds, "val.b1", 5000)

	ledger.CreateToken(ctx, core.SymbolDUSD, 0, "bank")

	require.NoError(t, balancer.Rebalance(ctx))

	supply, _ := ledger.Supply(ctx, core.SymbolDUSD)
	assert.Equal(t, int64(5000), supply)
}

func TestRebalanceNetsReceipts(t *testing.T) {
	ctx, vars, ledger, _, balancer := testFixture(t)

	vars.Set(ctx, core.ScopePeriodic, core.VarBTCPrice, 10000_00000000)
	vars.Set(ctx, core.ScopePeriodic, core.VarHedgeBTC, 100000000)

	ledger.CreateToken(ctx, core.SymbolDUSD, 0, "bank")
	ledger.CreateToken(ctx, core.SymbolDBTC, 0, "bank")

	// half the custody bitcoin is claimed by circulating receipts
	ledger.Deposit("alice", core.NewAsset(core.SymbolDBTC, 50000000))
	ledger.Deposit("alice", core.NewAsset(core.SymbolDUSD, 500000))

	require.NoError(t, balancer.Rebalance(ctx))

	supply, _ := ledger.Supply(ctx, core.SymbolDUSD)
	assert.Equal(t, int64(500000), supply)
}
