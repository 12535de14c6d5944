package custodian

import (
	"context"
	"testing"

	"deposbank/core"
	"deposbank/store/mem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	txidA = "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b"
	txidB = "9b0fc92260312ce44e74ef369f5c66bbb85848f2eddd5a7a1cde251e54ccfdd5"

	addrMain  = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"
	addrHedge = "3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy"
)

func testFixture(t *testing.T) (context.Context, *core.System, *mem.Ledger, *mem.OrderStore, *mem.TransferStore, core.Custodian) {
	t.Helper()

	system := &core.System{
		BankAccount:      "bank",
		CustodianAccount: "custodian",
		AdminAccount:     "admin",
		HedgeAccount:     "hedge",
		HedgeAddress:     addrHedge,
		Operators:        []string{"operator"},
	}

	ledger := mem.NewLedger()
	ledger.CreateToken(context.Background(), core.SymbolDBTC, 0, "bank")

	orders := mem.NewOrderStore()
	transfers := mem.NewTransferStore()

	return context.Background(), system, ledger, orders, transfers, New(system, ledger, orders, transfers)
}

func TestMint(t *testing.T) {
	ctx, _, ledger, orders, transfers, custodian := testFixture(t)

	require.NoError(t, custodian.Mint(ctx, "operator", "alice", core.SymbolDUSD, 100000000, txidA))

	// receipts issued into custody, order already processing
	balance, _ := ledger.Balance(ctx, "custodian", core.SymbolDBTC)
	assert.Equal(t, int64(100000000), balance)

	order, err := orders.FindByTxID(ctx, core.OrderKindMint, txidA)
	require.NoError(t, err)
	assert.Equal(t, core.OrderStatusProcessing, order.Status)
	assert.Equal(t, "alice", order.UserID)

	// relay record queued for the teller
	queued, err := transfers.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, "alice DUSD", queued[0].Memo)
	assert.Equal(t, "custodian", queued[0].Sender)

	// the same external transaction settles only once
	assert.Equal(t, core.ErrDuplicateSettlement,
		custodian.Mint(ctx, "operator", "alice", core.SymbolDUSD, 100000000, txidA))
}

func TestMintValidation(t *testing.T) {
	ctx, _, _, _, _, custodian := testFixture(t)

	assert.Equal(t, core.ErrOperationForbidden,
		custodian.Mint(ctx, "alice", "alice", core.SymbolDUSD, 1000, txidA))
	assert.Equal(t, core.ErrInvalidAmount,
		custodian.Mint(ctx, "operator", "alice", core.SymbolDUSD, 0, txidA))
	assert.Equal(t, core.ErrInvalidTxID,
		custodian.Mint(ctx, "operator", "alice", core.SymbolDUSD, 1000, "nothex"))
	assert.Equal(t, core.ErrInvalidTxID,
		custodian.Mint(ctx, "operator", "alice", core.SymbolDUSD, 1000, txidA[:63]))
}

func TestTransferOpensRedeem(t *testing.T) {
	ctx, _, ledger, orders, _, custodian := testFixture(t)

	ledger.Deposit("alice", core.NewAsset(core.SymbolDBTC, 100000000))

	require.NoError(t, custodian.Transfer(ctx, "alice", "custodian",
		core.NewAsset(core.SymbolDBTC, 100000000), addrMain))

	// receipts parked on the custodian book, nothing burned yet
	supply, _ := ledger.Supply(ctx, core.SymbolDBTC)
	assert.Equal(t, int64(100000000), supply)
	parked, _ := ledger.Balance(ctx, "custodian", core.SymbolDBTC)
	assert.Equal(t, int64(100000000), parked)

	order, err := orders.Find(ctx, core.OrderKindRedeem, 1)
	require.NoError(t, err)
	assert.Equal(t, core.OrderStatusNew, order.Status)
	assert.Equal(t, addrMain, order.Address)
	assert.Equal(t, "alice", order.UserID)
}

func TestTransferRejections(t *testing.T) {
	ctx, _, ledger, _, _, custodian := testFixture(t)

	ledger.Deposit("alice", core.NewAsset(core.SymbolDUSD, 1000))
	ledger.Deposit("alice", core.NewAsset(core.SymbolDBTC, 1000))

	assert.Equal(t, core.ErrWrongRedeemTarget,
		custodian.Transfer(ctx, "alice", "custodian", core.NewAsset(core.SymbolDUSD, 1000), addrMain))
	assert.Equal(t, core.ErrInvalidAddress,
		custodian.Transfer(ctx, "alice", "custodian", core.NewAsset(core.SymbolDBTC, 1000), "not an address"))
	assert.Equal(t, core.ErrSelfTransfer,
		custodian.Transfer(ctx, "alice", "alice", core.NewAsset(core.SymbolDBTC, 1000), ""))
}

func TestRedeemLifecycle(t *testing.T) {
	ctx, _, ledger, _, _, custodian := testFixture(t)

	ledger.Deposit("alice", core.NewAsset(core.SymbolDBTC, 100000000))
	require.NoError(t, custodian.Transfer(ctx, "alice", "custodian",
		core.NewAsset(core.SymbolDBTC, 100000000), addrMain))

	require.NoError(t, custodian.Redeem(ctx, "operator", core.SymbolDBTC, 1, txidA))

	// the receipts burn once the payout is broadcast
	supply, _ := ledger.Supply(ctx, core.SymbolDBTC)
	assert.Equal(t, int64(0), supply)

	// the order left new, a second settlement attempt fails
	assert.Equal(t, core.ErrOrderNotNew,
		custodian.Redeem(ctx, "operator", core.SymbolDBTC, 1, txidB))

	require.NoError(t, custodian.Confirm(ctx, "operator", core.OrderKindRedeem, 1))
	assert.Equal(t, core.ErrOrderNotNew,
		custodian.Confirm(ctx, "operator", core.OrderKindRedeem, 1))
}

func TestRedeemDuplicateTxID(t *testing.T) {
	ctx, _, ledger, _, _, custodian := testFixture(t)

	ledger.Deposit("alice", core.NewAsset(core.SymbolDBTC, 200000000))
	require.NoError(t, custodian.Transfer(ctx, "alice", "custodian",
		core.NewAsset(core.SymbolDBTC, 100000000), addrMain))
	require.NoError(t, custodian.Transfer(ctx, "alice", "custodian",
		core.NewAsset(core.SymbolDBTC, 100000000), addrMain))

	require.NoError(t, custodian.Redeem(ctx, "operator", core.SymbolDBTC, 1, txidA))
	assert.Equal(t, core.ErrDuplicateSettlement,
		custodian.Redeem(ctx, "operator", core.SymbolDBTC, 2, txidA))
}

func TestRequestRedeem(t *testing.T) {
	ctx, _, ledger, orders, _, custodian := testFixture(t)

	ledger.Deposit("bank", core.NewAsset(core.SymbolDBTC, 50000000))
	require.NoError(t, custodian.RequestRedeem(ctx, "alice", 50000000, addrMain))

	order, err := orders.Find(ctx, core.OrderKindRedeem, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(50000000), order.Amount)

	// the bank's receipts moved over to back the claim
	parked, _ := ledger.Balance(ctx, "custodian", core.SymbolDBTC)
	assert.Equal(t, int64(50000000), parked)

	assert.Equal(t, core.ErrInvalidAddress,
		custodian.RequestRedeem(ctx, "alice", 1000, "garbage"))
}

func TestBalanceHedgeNetsOpenOrders(t *testing.T) {
	ctx, _, _, orders, _, custodian := testFixture(t)

	require.NoError(t, custodian.BalanceHedge(ctx, "bank", 100000000))

	// the open treasury order covers the same gap, nothing new opens
	require.NoError(t, custodian.BalanceHedge(ctx, "bank", 100000000))

	pending, err := orders.SumByStatus(ctx, core.OrderKindRedeem, "bank", core.OrderStatusNew)
	require.NoError(t, err)
	assert.Equal(t, int64(100000000), pending)

	// a wider gap opens only the difference, the hedge desk may ask too
	require.NoError(t, custodian.BalanceHedge(ctx, "hedge", 150000000))
	pending, err = orders.SumByStatus(ctx, core.OrderKindRedeem, "bank", core.OrderStatusNew)
	require.NoError(t, err)
	assert.Equal(t, int64(150000000), pending)

	// a broadcast order stops counting against the gap
	require.NoError(t, custodian.Redeem(ctx, "operator", core.SymbolDBTC, 1, txidA))
	require.NoError(t, custodian.BalanceHedge(ctx, "bank", 150000000))
	pending, err = orders.SumByStatus(ctx, core.OrderKindRedeem, "bank", core.OrderStatusNew)
	require.NoError(t, err)
	assert.Equal(t, int64(150000000), pending)

	assert.Equal(t, core.ErrOperationForbidden, custodian.BalanceHedge(ctx, "alice", 1000))
}

func TestInFlight(t *testing.T) {
	ctx, _, _, orders, _, custodian := testFixture(t)

	orders.Create(ctx, &core.Order{Kind: core.OrderKindMint, UserID: "alice", Status: core.OrderStatusProcessing, Amount: 100})
	orders.Create(ctx, &core.Order{Kind: core.OrderKindRedeem, UserID: "alice", Status: core.OrderStatusNew, Amount: 200})
	orders.Create(ctx, &core.Order{Kind: core.OrderKindRedeem, UserID: "alice", Status: core.OrderStatusSettled, Amount: 400})
	orders.Create(ctx, &core.Order{Kind: core.OrderKindRedeem, UserID: "bob", Status: core.OrderStatusNew, Amount: 800})

	total, err := custodian.InFlight(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(300), total)
}
