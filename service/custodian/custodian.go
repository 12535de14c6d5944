package custodian

import (
	"context"
	"fmt"

	"deposbank/core"
	"deposbank/pkg/btcaddr"
	"deposbank/pkg/id"

	"github.com/asaskevich/govalidator"
	"github.com/fox-one/pkg/logger"
)

type custodianService struct {
	system    *core.System
	ledger    core.Ledger
	orders    core.OrderStore
	transfers core.TransferStore
}

// New new custodian
func New(system *core.System, ledger core.Ledger, orders core.OrderStore, transfers core.TransferStore) core.Custodian {
	return &custodianService{
		system:    system,
		ledger:    ledger,
		orders:    orders,
		transfers: transfers,
	}
}

func checkTxID(txID string) error {
	if !govalidator.IsHexadecimal(txID) || !btcaddr.IsHex256(txID) {
		return core.ErrInvalidTxID
	}

	return nil
}

func (s *custodianService) Transfer(ctx context.Context, from, to string, quantity core.Asset, memo string) error {
	if from == to {
		return core.ErrSelfTransfer
	}
	if !quantity.IsValid() {
		return core.ErrInvalidAmount
	}
	if len(memo) > 256 {
		return core.ErrMemoTooLong
	}

	if to == s.system.CustodianAccount {
		switch quantity.Symbol {
		case core.SymbolDUSD, core.SymbolDPS:
			return core.ErrWrongRedeemTarget
		}
	}

	if to != s.system.CustodianAccount || quantity.Symbol != core.SymbolDBTC {
		return s.ledger.Transfer(ctx, from, to, quantity, memo)
	}

	intent := core.ParseIntent(memo, s.system.BitcoinTestnet)
	if intent.Type != core.IntentBitcoin {
		return core.ErrInvalidAddress
	}

	if err := s.ledger.Transfer(ctx, from, to, quantity, memo); err != nil {
		return err
	}

	// the receipts wait on the custodian book until the payout goes out
	return s.orders.Create(ctx, &core.Order{
		Kind:    core.OrderKindRedeem,
		UserID:  from,
		Status:  core.OrderStatusNew,
		Amount:  quantity.Amount,
		Address: intent.Address,
	})
}

func (s *custodianService) RequestRedeem(ctx context.Context, userID string, satoshi int64, address string) error {
	if satoshi <= 0 {
		return core.ErrInvalidAmount
	}
	if err := btcaddr.Validate(address, s.system.BitcoinTestnet); err != nil {
		return core.ErrInvalidAddress
	}

	// the payout is funded with the bank's own receipts, parked on the
	// custodian book like a user claim
	quantity := core.NewAsset(core.SymbolDBTC, satoshi)
	if err := s.ledger.Transfer(ctx, s.system.BankAccount, s.system.CustodianAccount, quantity, address); err != nil {
		return err
	}

	return s.orders.Create(ctx, &core.Order{
		Kind:    core.OrderKindRedeem,
		UserID:  userID,
		Status:  core.OrderStatusNew,
		Amount:  satoshi,
		Address: address,
	})
}

func (s *custodianService) Mint(ctx context.Context, operator, userID string, symbol core.Symbol, satoshi int64, txID string) error {
	if !s.system.IsOperator(operator) {
		return core.ErrOperationForbidden
	}
	if satoshi <= 0 {
		return core.ErrInvalidAmount
	}
	if !symbol.IsValid() {
		return core.ErrUnknownToken
	}
	if err := checkTxID(txID); err != nil {
		return err
	}

	if _, err := s.orders.FindByTxID(ctx, core.OrderKindMint, txID); err == nil {
		return core.ErrDuplicateSettlement
	} else if err != core.ErrOrderNotFound {
		return err
	}

	quantity := core.NewAsset(core.SymbolDBTC, satoshi)
	if err := s.ledger.Issue(ctx, s.system.CustodianAccount, quantity, "mint "+txID); err != nil {
		return err
	}

	if err := s.orders.Create(ctx, &core.Order{
		Kind:   core.OrderKindMint,
		UserID: userID,
		Status: core.OrderStatusProcessing,
		Amount: satoshi,
		TxID:   txID,
	}); err != nil {
		return err
	}

	logger.FromContext(ctx).WithField("tx", txID).
		Infof("minted %s for %s", quantity, userID)

	// relay the receipts to the bank for conversion; the teller picks
	// this up like any other incoming transfer
	return s.transfers.Create(ctx, &core.Transfer{
		TraceID:  id.UUIDFromString("mint:" + txID),
		Sender:   s.system.CustodianAccount,
		Receiver: s.system.BankAccount,
		Symbol:   core.SymbolDBTC,
		Amount:   satoshi,
		Memo:     fmt.Sprintf("%s %s", userID, symbol),
	})
}

func (s *custodianService) Redeem(ctx context.Context, operator string, symbol core.Symbol, orderID uint64, txID string) error {
	if !s.system.IsOperator(operator) {
		return core.ErrOperationForbidden
	}
	if symbol != core.SymbolDBTC {
		return core.ErrSymbolMismatch
	}
	if err := checkTxID(txID); err != nil {
		return err
	}

	order, err := s.orders.Find(ctx, core.OrderKindRedeem, orderID)
	if err != nil {
		return err
	}
	if order.Status != core.OrderStatusNew {
		return core.ErrOrderNotNew
	}

	if _, err := s.orders.FindByTxID(ctx, core.OrderKindRedeem, txID); err == nil {
		return core.ErrDuplicateSettlement
	} else if err != core.ErrOrderNotFound {
		return err
	}

	order.Status = core.OrderStatusProcessing
	order.TxID = txID
	if err := s.orders.Update(ctx, order); err != nil {
		return err
	}

	// treasury balancing orders only move custody between venues; user
	// claims extinguish their receipts once the payout is broadcast
	if order.UserID == s.system.BankAccount {
		return nil
	}

	return s.ledger.Retire(ctx, s.system.CustodianAccount,
		core.NewAsset(core.SymbolDBTC, order.Amount), "redeem "+txID)
}

func (s *custodianService) Confirm(ctx context.Context, operator string, kind core.OrderKind, orderID uint64) error {
	if !s.system.IsOperator(operator) {
		return core.ErrOperationForbidden
	}

	order, err := s.orders.Find(ctx, kind, orderID)
	if err != nil {
		return err
	}
	if order.Status != core.OrderStatusProcessing {
		return core.ErrOrderNotNew
	}

	order.Status = core.OrderStatusSettled
	return s.orders.Update(ctx, order)
}

func (s *custodianService) BalanceHedge(ctx context.Context, caller string, satoshi int64) error {
	if caller != s.system.BankAccount && caller != s.system.HedgeAccount &&
		!s.system.IsAdmin(caller) && !s.system.IsOperator(caller) {
		return core.ErrOperationForbidden
	}
	if s.system.HedgeAddress == "" {
		return core.ErrInvalidAddress
	}

	// treasury orders still in new cover part of the gap; a broadcast
	// one is already on its way and stops counting
	pending, err := s.orders.SumByStatus(ctx, core.OrderKindRedeem, s.system.BankAccount,
		core.OrderStatusNew)
	if err != nil {
		return err
	}

	delta := satoshi - pending
	if delta <= 0 {
		return nil
	}

	logger.FromContext(ctx).Infof("hedge balancing order for %d satoshi", delta)

	return s.orders.Create(ctx, &core.Order{
		Kind:    core.OrderKindRedeem,
		UserID:  s.system.BankAccount,
		Status:  core.OrderStatusNew,
		Amount:  delta,
		Address: s.system.HedgeAddress,
	})
}

func (s *custodianService) InFlight(ctx context.Context, userID string) (int64, error) {
	mint, err := s.orders.SumByStatus(ctx, core.OrderKindMint, userID,
		core.OrderStatusNew, core.OrderStatusProcessing)
	if err != nil {
		return 0, err
	}

	redeem, err := s.orders.SumByStatus(ctx, core.OrderKindRedeem, userID,
		core.OrderStatusNew, core.OrderStatusProcessing)
	if err != nil {
		return 0, err
	}

	return mint + redeem, nil
}
