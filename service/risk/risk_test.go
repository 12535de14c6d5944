package risk

import (
	"context"
	"testing"
	"time"

	"deposbank/core"
	"deposbank/store/mem"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordHook struct {
	checks []string
}

func (h *recordHook) OnSoftBreach(ctx context.Context, check string, distance decimal.Decimal) {
	h.checks = append(h.checks, check)
}

func testGate(t *testing.T) (context.Context, *mem.VariableStore, *mem.Ledger, *mem.OrderStore, *recordHook, *gateService) {
	t.Helper()

	system := &core.System{BankAccount: "bank"}
	vars := mem.NewVariableStore()
	ledger := mem.NewLedger()
	orders := mem.NewOrderStore()
	hook := &recordHook{}

	gate := New(system, vars, ledger, orders, hook).(*gateService)
	return context.Background(), vars, ledger, orders, hook, gate
}

func TestCheckMainSwitch(t *testing.T) {
	ctx, vars, _, _, _, gate := testGate(t)

	// an unconfigured gate is closed, every missing input keeps it so
	assert.Equal(t, core.ErrConversionsDisabled, gate.CheckMainSwitch(ctx))

	vars.Set(ctx, core.ScopeSystem, core.VarManualSwitch, 1)
	vars.Set(ctx, core.ScopeSystem, core.VarServiceSwitch, 1)
	vars.Set(ctx, core.ScopePeriodic, core.VarBTCPrice, 10000_00000000)
	assert.Equal(t, core.ErrConversionsDisabled, gate.CheckMainSwitch(ctx))

	vars.Set(ctx, core.ScopePeriodic, core.VarMaxDataAge, 60)
	assert.Equal(t, core.ErrConversionsDisabled, gate.CheckMainSwitch(ctx))

	vars.Set(ctx, core.ScopePeriodic, core.VarPriceLow, 5000_00000000)
	assert.Equal(t, core.ErrConversionsDisabled, gate.CheckMainSwitch(ctx))

	vars.Set(ctx, core.ScopePeriodic, core.VarPriceHigh, 50000_00000000)
	require.NoError(t, gate.CheckMainSwitch(ctx))

	vars.Set(ctx, core.ScopeSystem, core.VarManualSwitch, 0)
	assert.Equal(t, core.ErrConversionsDisabled, gate.CheckMainSwitch(ctx))
	vars.Set(ctx, core.ScopeSystem, core.VarManualSwitch, 1)

	vars.Set(ctx, core.ScopeSystem, core.VarServiceSwitch, 0)
	assert.Equal(t, core.ErrConversionsDisabled, gate.CheckMainSwitch(ctx))
	vars.Set(ctx, core.ScopeSystem, core.VarServiceSwitch, 1)

	// stale feed trips the switch
	vars.SetAt(core.ScopePeriodic, core.VarBTCPrice, 10000_00000000, time.Now().Add(-2*time.Minute))
	assert.Equal(t, core.ErrConversionsDisabled, gate.CheckMainSwitch(ctx))

	// a quote stranded outside the guard band trips it too
	vars.Set(ctx, core.ScopePeriodic, core.VarBTCPrice, 10000_00000000)
	require.NoError(t, gate.CheckMainSwitch(ctx))
	vars.Set(ctx, core.ScopePeriodic, core.VarPriceHigh, 9500_00000000)
	assert.Equal(t, core.ErrConversionsDisabled, gate.CheckMainSwitch(ctx))
}

func TestVolumeDecay(t *testing.T) {
	ctx, vars, _, _, _, gate := testGate(t)

	t0 := time.Now()
	gate.now = func() time.Time { return t0 }

	vars.Set(ctx, core.ScopeSystem, core.VarMaxDayVolume, 200000)
	vars.Set(ctx, core.ScopeStat, core.VarVolumeUsed, 100000)
	vars.Set(ctx, core.ScopeStat, VarDecayAt, t0.Unix())

	// two whole hours decay two twentieths of the daily cap
	gate.now = func() time.Time { return t0.Add(2*time.Hour + time.Minute) }
	require.NoError(t, gate.decayVolume(ctx))

	used, err := core.GetVar(ctx, vars, core.ScopeStat, core.VarVolumeUsed)
	require.NoError(t, err)
	assert.Equal(t, int64(80000), used)

	// decay clamps at zero instead of flipping sign
	vars.Set(ctx, core.ScopeStat, core.VarVolumeUsed, 5000)
	gate.now = func() time.Time { return t0.Add(4 * time.Hour) }
	require.NoError(t, gate.decayVolume(ctx))

	used, err = core.GetVar(ctx, vars, core.ScopeStat, core.VarVolumeUsed)
	require.NoError(t, err)
	assert.Equal(t, int64(0), used)
}

func TestCheckDayVolume(t *testing.T) {
	ctx, vars, _, _, _, gate := testGate(t)

	vars.Set(ctx, core.ScopeSystem, core.VarMaxDayVolume, 200000)
	vars.Set(ctx, core.ScopeStat, VarDecayAt, time.Now().Unix())

	// the cap is strict
	assert.Equal(t, core.ErrDayVolumeExceeded, gate.Check(ctx, core.DirectionMint, 200000))
	require.NoError(t, gate.Check(ctx, core.DirectionMint, 199999))

	// a net mint position widens the redeem side
	vars.Set(ctx, core.ScopeStat, core.VarVolumeUsed, 100000)
	assert.Equal(t, core.ErrDayVolumeExceeded, gate.Check(ctx, core.DirectionMint, 100000))

	vars.Set(ctx, core.ScopePeriodic, core.VarBTCPrice, 10000_00000000)
	vars.Set(ctx, core.ScopePeriodic, core.VarColdBTC, 400000000)
	require.NoError(t, gate.Check(ctx, core.DirectionRedeem, 250000))
	assert.Equal(t, core.ErrDayVolumeExceeded, gate.Check(ctx, core.DirectionRedeem, 300000))
}

func TestCheckMaxOrderSize(t *testing.T) {
	ctx, vars, _, _, _, gate := testGate(t)

	vars.Set(ctx, core.ScopeSystem, core.VarMaxOrderSize, 50000)
	assert.Equal(t, core.ErrOrderTooLarge, gate.Check(ctx, core.DirectionMint, 50001))
	require.NoError(t, gate.Check(ctx, core.DirectionMint, 50000))
}

func TestCheckCapital(t *testing.T) {
	ctx, vars, ledger, _, hook, gate := testGate(t)

	// min capital share 0.2, hard floor at half of it
	vars.Set(ctx, core.ScopeSystem, core.VarMinCapShare, 2000000000)

	ledger.Deposit("bank", core.NewAsset(core.SymbolDUSD, 200))
	ledger.Deposit("alice", core.NewAsset(core.SymbolDUSD, 1000))

	// share 200/2100 is below the hard floor
	assert.Equal(t, core.ErrInsufficientCapital, gate.Check(ctx, core.DirectionMint, 1100))

	// share 200/1100 sits between soft and hard, order passes with a breach
	require.NoError(t, gate.Check(ctx, core.DirectionMint, 100))
	assert.Contains(t, hook.checks, "capital")
}

func TestCheckLiquidity(t *testing.T) {
	ctx, vars, _, orders, hook, gate := testGate(t)

	vars.Set(ctx, core.ScopePeriodic, core.VarBTCPrice, 10000_00000000)
	vars.Set(ctx, core.ScopePeriodic, core.VarHedgeBTC, 100000000)
	vars.Set(ctx, core.ScopeSystem, core.VarHedgeMax, 8000000000)

	// everything sits at the hedge venue, nothing can be paid out
	assert.Equal(t, core.ErrInsufficientLiquidity, gate.Check(ctx, core.DirectionRedeem, 10000))

	// four cold bitcoins; at 80% hedge cap the 50,000.00 custody keeps
	// a 10,000.00 soft floor outside the venue, hard at 5,000.00
	vars.Set(ctx, core.ScopePeriodic, core.VarColdBTC, 400000000)
	require.NoError(t, gate.Check(ctx, core.DirectionRedeem, 2000000))
	assert.Empty(t, hook.checks)

	assert.Equal(t, core.ErrInsufficientLiquidity, gate.Check(ctx, core.DirectionRedeem, 3600000))

	// dipping between the floors only fires the hook
	require.NoError(t, gate.Check(ctx, core.DirectionRedeem, 3200000))
	assert.Contains(t, hook.checks, "liquidity")

	// an open redemption already spoke for a bitcoin of the pool
	orders.Create(ctx, &core.Order{
		Kind:   core.OrderKindRedeem,
		UserID: "alice",
		Status: core.OrderStatusNew,
		Amount: 100000000,
	})
	require.NoError(t, gate.Check(ctx, core.DirectionRedeem, 2400000))
	assert.Equal(t, core.ErrInsufficientLiquidity, gate.Check(ctx, core.DirectionRedeem, 3000000))
}

func TestCheckLeverage(t *testing.T) {
	ctx, vars, _, _, hook, gate := testGate(t)

	vars.Set(ctx, core.ScopePeriodic, core.VarBTCPrice, 10000_00000000)
	vars.Set(ctx, core.ScopeSystem, core.VarHedgeMin, 5000000000)

	// hedge share 1/5 after the one-bitcoin order, below the hard quarter
	vars.Set(ctx, core.ScopePeriodic, core.VarHedgeBTC, 100000000)
	vars.Set(ctx, core.ScopePeriodic, core.VarColdBTC, 300000000)
	assert.Equal(t, core.ErrLeverageTooHigh, gate.Check(ctx, core.DirectionMint, 1000000))

	// comfortably hedged passes clean
	hook.checks = nil
	vars.Set(ctx, core.ScopePeriodic, core.VarHedgeBTC, 300000000)
	vars.Set(ctx, core.ScopePeriodic, core.VarColdBTC, 200000000)
	require.NoError(t, gate.Check(ctx, core.DirectionMint, 10000))
	assert.Empty(t, hook.checks)

	// between the soft minimum and the hard floor only the hook fires
	vars.Set(ctx, core.ScopePeriodic, core.VarHedgeBTC, 220000000)
	vars.Set(ctx, core.ScopePeriodic, core.VarColdBTC, 280000000)
	require.NoError(t, gate.Check(ctx, core.DirectionMint, 10000))
	assert.Contains(t, hook.checks, "leverage")

	// overshooting the upper bound is soft as well
	hook.checks = nil
	vars.Set(ctx, core.ScopeSystem, core.VarHedgeMax, 8000000000)
	vars.Set(ctx, core.ScopePeriodic, core.VarHedgeBTC, 450000000)
	vars.Set(ctx, core.ScopePeriodic, core.VarColdBTC, 50000000)
	require.NoError(t, gate.Check(ctx, core.DirectionMint, 10000))
	assert.Contains(t, hook.checks, "leverage")
}

func TestCommit(t *testing.T) {
	ctx, vars, _, _, _, gate := testGate(t)

	require.NoError(t, gate.Commit(ctx, core.DirectionMint, 1000))
	require.NoError(t, gate.Commit(ctx, core.DirectionMint, 500))
	require.NoError(t, gate.Commit(ctx, core.DirectionRedeem, 300))

	used, err := core.GetVar(ctx, vars, core.ScopeStat, core.VarVolumeUsed)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), used)
}
