package variable

import (
	"context"
	"testing"
	"time"

	"deposbank/core"
	"deposbank/store/mem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countBalancer struct {
	calls int
}

func (b *countBalancer) Rebalance(ctx context.Context) error {
	b.calls++
	return nil
}

func testFixture(t *testing.T) (context.Context, *mem.VariableStore, *countBalancer, *variableService) {
	t.Helper()

	system := &core.System{
		BankAccount:   "bank",
		AdminAccount:  "admin",
		OracleAccount: "oracle",
	}
	vars := mem.NewVariableStore()
	balancer := &countBalancer{}

	svc := New(system, vars, balancer).(*variableService)
	return context.Background(), vars, balancer, svc
}

func TestSetRoles(t *testing.T) {
	ctx, _, _, svc := testFixture(t)

	require.NoError(t, svc.Set(ctx, "admin", core.ScopeSystem, core.VarMintFee, 100))
	require.NoError(t, svc.Set(ctx, "oracle", core.ScopePeriodic, core.VarEOSPrice, 250000000))
	require.NoError(t, svc.Set(ctx, "bank", core.ScopeStat, core.VarVolumeUsed, 0))

	assert.Equal(t, core.ErrOperationForbidden, svc.Set(ctx, "alice", core.ScopeSystem, core.VarMintFee, 1))
	assert.Equal(t, core.ErrOperationForbidden, svc.Set(ctx, "admin", core.ScopePeriodic, core.VarBTCPrice, 1))
	assert.Equal(t, core.ErrOperationForbidden, svc.Set(ctx, "oracle", core.ScopeSystem, core.VarMintFee, 1))

	assert.Equal(t, core.ErrArbitraryScope, svc.Set(ctx, "admin", core.Scope("wild"), "x", 1))
}

func TestSetPriceBand(t *testing.T) {
	ctx, vars, balancer, svc := testFixture(t)

	vars.Set(ctx, core.ScopePeriodic, core.VarPriceLow, 9000_00000000)
	vars.Set(ctx, core.ScopePeriodic, core.VarPriceHigh, 11000_00000000)

	require.NoError(t, svc.Set(ctx, "oracle", core.ScopePeriodic, core.VarBTCPrice, 10000_00000000))
	assert.Equal(t, 1, balancer.calls)

	assert.Equal(t, core.ErrPriceOutOfBand,
		svc.Set(ctx, "oracle", core.ScopePeriodic, core.VarBTCPrice, 8000_00000000))
	assert.Equal(t, core.ErrPriceOutOfBand,
		svc.Set(ctx, "oracle", core.ScopePeriodic, core.VarBTCPrice, 12000_00000000))

	// rejected writes never touch the balancer
	assert.Equal(t, 1, balancer.calls)
}

func TestSetHedgeTriggersRebalance(t *testing.T) {
	ctx, _, balancer, svc := testFixture(t)

	require.NoError(t, svc.Set(ctx, "oracle", core.ScopePeriodic, core.VarHedgeBTC, 100000000))
	assert.Equal(t, 1, balancer.calls)

	// other feeds do not
	require.NoError(t, svc.Set(ctx, "oracle", core.ScopePeriodic, core.VarEOSPrice, 250000000))
	assert.Equal(t, 1, balancer.calls)
}

func TestBoundChangeGuard(t *testing.T) {
	ctx, vars, _, svc := testFixture(t)

	// one hour minimum age, five percent maximum move
	vars.Set(ctx, core.ScopeSystem, core.VarMinLimitsAge, 3600_00000000)
	vars.Set(ctx, core.ScopeSystem, core.VarMaxLimitChange, 500000000)

	// first write is unrestricted
	require.NoError(t, svc.Set(ctx, "oracle", core.ScopePeriodic, core.VarPriceLow, 9000_00000000))

	// too soon
	assert.Equal(t, core.ErrLimitChangeTooEarly,
		svc.Set(ctx, "oracle", core.ScopePeriodic, core.VarPriceLow, 9100_00000000))

	// aged but moved ten percent
	vars.SetAt(core.ScopePeriodic, core.VarPriceLow, 9000_00000000, time.Now().Add(-2*time.Hour))
	assert.Equal(t, core.ErrLimitChangeTooLarge,
		svc.Set(ctx, "oracle", core.ScopePeriodic, core.VarPriceLow, 9900_00000000))

	// aged and inside the move limit, audit copy recorded
	require.NoError(t, svc.Set(ctx, "oracle", core.ScopePeriodic, core.VarPriceLow, 9200_00000000))

	prev, err := core.GetVar(ctx, vars, core.ScopePrevious, core.VarPriceLow)
	require.NoError(t, err)
	assert.Equal(t, int64(9000_00000000), prev)
}

func TestDelete(t *testing.T) {
	ctx, vars, _, svc := testFixture(t)

	vars.Set(ctx, core.ScopeSystem, core.VarMintFee, 100)

	assert.Equal(t, core.ErrOperationForbidden, svc.Delete(ctx, "oracle", core.ScopeSystem, core.VarMintFee))
	require.NoError(t, svc.Delete(ctx, "admin", core.ScopeSystem, core.VarMintFee))

	_, err := vars.Get(ctx, core.ScopeSystem, core.VarMintFee)
	assert.Equal(t, core.ErrVariableNotFound, err)
}
