package router

import (
	"context"

	"deposbank/core"
	"deposbank/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

type routerService struct {
	system      *core.System
	vars        core.VariableStore
	ledger      core.Ledger
	rate        core.RateService
	risk        core.RiskGate
	balancer    core.Balancer
	custodian   core.Custodian
	collaterals core.CollateralStore
}

// New new conversion router. Every queued record lands in exactly one
// recognized operation or is rejected with an ErrorCode; infrastructure
// failures bubble up untyped so the teller retries them.
func New(
	system *core.System,
	vars core.VariableStore,
	ledger core.Ledger,
	rate core.RateService,
	risk core.RiskGate,
	balancer core.Balancer,
	custodian core.Custodian,
	collaterals core.CollateralStore,
) core.Router {
	return &routerService{
		system:      system,
		vars:        vars,
		ledger:      ledger,
		rate:        rate,
		risk:        risk,
		balancer:    balancer,
		custodian:   custodian,
		collaterals: collaterals,
	}
}

func (s *routerService) validate(transfer *core.Transfer) error {
	if !transfer.Asset().IsValid() {
		return core.ErrInvalidAmount
	}
	if transfer.Sender == transfer.Receiver {
		return core.ErrSelfTransfer
	}
	if len(transfer.Memo) > 256 {
		return core.ErrMemoTooLong
	}

	return nil
}

func (s *routerService) ProcessTransfer(ctx context.Context, transfer *core.Transfer) error {
	if err := s.validate(transfer); err != nil {
		return err
	}

	if transfer.Receiver == s.system.CustodianAccount {
		return s.custodian.Transfer(ctx, transfer.Sender, transfer.Receiver, transfer.Asset(), transfer.Memo)
	}

	if transfer.Receiver != s.system.BankAccount {
		return s.plainTransfer(ctx, transfer)
	}

	intent := core.ParseIntent(transfer.Memo, s.system.BitcoinTestnet)
	if intent.Type == core.IntentPlain {
		return s.plainTransfer(ctx, transfer)
	}

	switch transfer.Symbol {
	case core.SymbolDUSD:
		return s.stableToBank(ctx, transfer, intent)
	case core.SymbolDPS:
		return s.equityToBank(ctx, transfer, intent)
	}

	return core.ErrArbitraryTransfer
}

// plainTransfer moves value between two ordinary accounts, charging the
// flat transfer fee into the bank. System accounts are exempt.
func (s *routerService) plainTransfer(ctx context.Context, transfer *core.Transfer) error {
	quantity := transfer.Asset()

	if s.feeExempt(transfer.Sender) || s.feeExempt(transfer.Receiver) {
		return s.ledger.Transfer(ctx, transfer.Sender, transfer.Receiver, quantity, transfer.Memo)
	}

	feeRatio, err := core.OptVar(ctx, s.vars, core.ScopeSystem, core.VarTransferFee, 0)
	if err != nil {
		return err
	}

	fee := number.RoundInt64(decimal.New(quantity.Amount, 0).Mul(number.Scaled(feeRatio, 10)))
	if fee >= quantity.Amount {
		return core.ErrInvalidAmount
	}

	if fee > 0 {
		if err := s.ledger.Transfer(ctx, transfer.Sender, s.system.BankAccount,
			core.NewAsset(quantity.Symbol, fee), "transfer fee"); err != nil {
			return err
		}
	}

	return s.ledger.Transfer(ctx, transfer.Sender, transfer.Receiver,
		core.NewAsset(quantity.Symbol, quantity.Amount-fee), transfer.Memo)
}

func (s *routerService) feeExempt(userID string) bool {
	return userID == s.system.BankAccount ||
		userID == s.system.CustodianAccount ||
		userID == s.system.DevelAccount
}

// stableToBank handles DUSD arriving at the bank: equity purchase or a
// redemption into receipts, EOS or external bitcoin.
func (s *routerService) stableToBank(ctx context.Context, transfer *core.Transfer, intent core.Intent) error {
	if err := s.risk.CheckMainSwitch(ctx); err != nil {
		return err
	}

	quantity := transfer.Asset()

	switch {
	case intent.Type == core.IntentBuy && intent.Symbol == core.SymbolDPS:
		return s.buyEquity(ctx, transfer.Sender, quantity)

	case intent.Type == core.IntentRedeem && intent.Symbol == core.SymbolDBTC:
		return s.redeemStable(ctx, transfer.Sender, quantity, core.SymbolDBTC, "")

	case intent.Type == core.IntentRedeem && intent.Symbol == core.SymbolEOS:
		return s.redeemStable(ctx, transfer.Sender, quantity, core.SymbolEOS, "")

	case intent.Type == core.IntentBitcoin:
		return s.redeemStable(ctx, transfer.Sender, quantity, core.SymbolBTC, intent.Address)
	}

	return core.ErrArbitraryTransfer
}

func (s *routerService) buyEquity(ctx context.Context, sender string, quantity core.Asset) error {
	equity, change, err := s.rate.StableToEquity(ctx, quantity)
	if err != nil {
		return err
	}

	if err := s.ledger.Transfer(ctx, sender, s.system.BankAccount, quantity, "buy DPS"); err != nil {
		return err
	}

	if err := s.ledger.Transfer(ctx, s.system.BankAccount, sender, equity, "DPS purchase"); err != nil {
		return err
	}

	if change.Amount > 0 {
		if err := s.ledger.Transfer(ctx, s.system.BankAccount, sender, change, "DPS purchase change"); err != nil {
			return err
		}
	}

	logger.FromContext(ctx).Infof("%s bought %s for %s", sender, equity, quantity)
	return s.balancer.Rebalance(ctx)
}

// redeemStable burns DUSD against the reserve and pays the sender in
// receipts, EOS or a custody payout to a bitcoin address.
func (s *routerService) redeemStable(ctx context.Context, sender string, quantity core.Asset, target core.Symbol, address string) error {
	out, err := s.rate.StableToExternal(ctx, quantity, target)
	if err != nil {
		return err
	}
	if out.Amount <= 0 {
		return core.ErrInvalidAmount
	}

	if err := s.risk.Check(ctx, core.DirectionRedeem, quantity.Amount); err != nil {
		return err
	}

	if err := s.ledger.Transfer(ctx, sender, s.system.BankAccount, quantity, "redeem "+string(target)); err != nil {
		return err
	}

	// only the collateral value leaves the supply; the fee remainder
	// stays as bank revenue and gets its dev split
	net, err := s.rate.USDValue(ctx, out)
	if err != nil {
		return err
	}
	if net > quantity.Amount {
		net = quantity.Amount
	}

	if err := s.ledger.Retire(ctx, s.system.BankAccount,
		core.NewAsset(core.SymbolDUSD, net), "redeem "+string(target)); err != nil {
		return err
	}

	if err := s.splitFee(ctx, core.NewAsset(core.SymbolDUSD, quantity.Amount-net)); err != nil {
		return err
	}

	switch target {
	case core.SymbolDBTC:
		if err := s.ledger.Issue(ctx, sender, out, "redeemed from DUSD"); err != nil {
			return err
		}
	case core.SymbolEOS:
		if err := s.ledger.Transfer(ctx, s.system.BankAccount, sender, out, "redeemed from DUSD"); err != nil {
			return err
		}
	case core.SymbolBTC:
		if err := s.custodian.RequestRedeem(ctx, sender, out.Amount, address); err != nil {
			return err
		}
	}

	if err := s.risk.Commit(ctx, core.DirectionRedeem, quantity.Amount); err != nil {
		return err
	}

	return s.balancer.Rebalance(ctx)
}

// equityToBank handles DPS arriving at the bank: nominal redemption.
func (s *routerService) equityToBank(ctx context.Context, transfer *core.Transfer, intent core.Intent) error {
	switch {
	case intent.Type == core.IntentRedeem && intent.Symbol == core.SymbolDUSD:
	case intent.Type == core.IntentRedeem && intent.Symbol == core.SymbolDBTC,
		intent.Type == core.IntentBitcoin:
		// recognized, but equity pays out in stable units only
		return core.ErrNotImplemented
	default:
		return core.ErrArbitraryTransfer
	}

	if err := s.risk.CheckMainSwitch(ctx); err != nil {
		return err
	}

	quantity := transfer.Asset()
	payout, err := s.rate.EquityToStable(ctx, quantity, true)
	if err != nil {
		return err
	}
	if payout.Amount <= 0 {
		return core.ErrInvalidAmount
	}

	if err := s.ledger.Transfer(ctx, transfer.Sender, s.system.BankAccount, quantity, "redeem DPS"); err != nil {
		return err
	}

	if err := s.ledger.Transfer(ctx, s.system.BankAccount, transfer.Sender, payout, "DPS redemption"); err != nil {
		return err
	}

	return s.balancer.Rebalance(ctx)
}

func (s *routerService) ProcessDeposit(ctx context.Context, transfer *core.Transfer) error {
	intent := core.ParseIntent(transfer.Memo, s.system.BitcoinTestnet)

	if intent.Type == core.IntentTechnical {
		return s.balancer.Rebalance(ctx)
	}

	switch transfer.Symbol {
	case core.SymbolDBTC:
		if transfer.Sender != s.system.CustodianAccount {
			return core.ErrOperationForbidden
		}
		if intent.Type != core.IntentRelay {
			return core.ErrArbitraryTransfer
		}
		return s.mintFromCustody(ctx, transfer.Asset(), intent)

	case core.SymbolEOS:
		return s.mintFromEOS(ctx, transfer, intent)
	}

	return core.ErrAssetNotAllowed
}

// mintFromCustody converts relayed receipts into what the depositor
// asked for on the bitcoin side.
func (s *routerService) mintFromCustody(ctx context.Context, quantity core.Asset, intent core.Intent) error {
	if intent.User == "" {
		return core.ErrArbitraryTransfer
	}

	if intent.Symbol == core.SymbolDBTC {
		// plain receipt delivery, no reserve movement
		return s.ledger.Transfer(ctx, s.system.CustodianAccount, intent.User, quantity, "minted DBTC")
	}

	if err := s.risk.CheckMainSwitch(ctx); err != nil {
		return err
	}

	if err := s.ledger.Transfer(ctx, s.system.CustodianAccount, s.system.BankAccount, quantity, "mint relay"); err != nil {
		return err
	}

	switch intent.Symbol {
	case core.SymbolDUSD:
		return s.mintStable(ctx, intent.User, quantity)
	case core.SymbolDPS:
		return s.mintEquity(ctx, intent.User, quantity)
	}

	return core.ErrUnknownToken
}

// mintStable issues net DUSD against fresh collateral and books the fee
// into the bank with its dev split.
func (s *routerService) mintStable(ctx context.Context, userID string, collateral core.Asset) error {
	net, err := s.rate.ExternalToStable(ctx, collateral)
	if err != nil {
		return err
	}
	if net.Amount <= 0 {
		return core.ErrInvalidAmount
	}

	gross, err := s.rate.USDValue(ctx, collateral)
	if err != nil {
		return err
	}

	if err := s.risk.Check(ctx, core.DirectionMint, gross); err != nil {
		return err
	}

	if err := s.ledger.Issue(ctx, userID, net, "minted from "+string(collateral.Symbol)); err != nil {
		return err
	}

	if fee := gross - net.Amount; fee > 0 {
		if err := s.ledger.Issue(ctx, s.system.BankAccount,
			core.NewAsset(core.SymbolDUSD, fee), "mint fee"); err != nil {
			return err
		}
		if err := s.splitFee(ctx, core.NewAsset(core.SymbolDUSD, fee)); err != nil {
			return err
		}
	}

	if err := s.risk.Commit(ctx, core.DirectionMint, gross); err != nil {
		return err
	}

	logger.FromContext(ctx).Infof("minted %s for %s from %s", net, userID, collateral)
	return s.balancer.Rebalance(ctx)
}

// mintEquity routes a collateral deposit through the stable unit into
// the equity sale.
func (s *routerService) mintEquity(ctx context.Context, userID string, collateral core.Asset) error {
	net, err := s.rate.ExternalToStable(ctx, collateral)
	if err != nil {
		return err
	}
	if net.Amount <= 0 {
		return core.ErrInvalidAmount
	}

	gross, err := s.rate.USDValue(ctx, collateral)
	if err != nil {
		return err
	}

	if err := s.risk.Check(ctx, core.DirectionMint, gross); err != nil {
		return err
	}

	equity, change, err := s.rate.StableToEquity(ctx, net)
	if err != nil {
		return err
	}

	// the stable leg is issued into the bank and spent on the sale in
	// one move, only the change reaches the depositor as DUSD
	if err := s.ledger.Issue(ctx, s.system.BankAccount, net, "minted from "+string(collateral.Symbol)); err != nil {
		return err
	}

	if err := s.ledger.Transfer(ctx, s.system.BankAccount, userID, equity, "DPS purchase"); err != nil {
		return err
	}

	if change.Amount > 0 {
		if err := s.ledger.Transfer(ctx, s.system.BankAccount, userID, change, "DPS purchase change"); err != nil {
			return err
		}
	}

	if fee := gross - net.Amount; fee > 0 {
		if err := s.ledger.Issue(ctx, s.system.BankAccount,
			core.NewAsset(core.SymbolDUSD, fee), "mint fee"); err != nil {
			return err
		}
		if err := s.splitFee(ctx, core.NewAsset(core.SymbolDUSD, fee)); err != nil {
			return err
		}
	}

	if err := s.risk.Commit(ctx, core.DirectionMint, gross); err != nil {
		return err
	}

	return s.balancer.Rebalance(ctx)
}

// mintFromEOS accepts an approved external EOS deposit and mints DUSD
// for the depositor or a relayed user.
func (s *routerService) mintFromEOS(ctx context.Context, transfer *core.Transfer, intent core.Intent) error {
	if _, err := s.collaterals.Find(ctx, "eosio.token", "EOS"); err != nil {
		if err == core.ErrCollateralNotAuthorized {
			return core.ErrAssetNotAllowed
		}
		return err
	}

	userID := transfer.Sender
	if intent.Type == core.IntentRelay {
		if transfer.Sender != s.system.CustodianAccount {
			return core.ErrOperationForbidden
		}
		userID = intent.User
	} else if intent.Type != core.IntentBuy || intent.Symbol != core.SymbolDUSD {
		return core.ErrArbitraryTransfer
	}

	if err := s.risk.CheckMainSwitch(ctx); err != nil {
		return err
	}

	// the external deposit materializes on the bank's books first
	quantity := transfer.Asset()
	if err := s.ledger.Issue(ctx, s.system.BankAccount, quantity, "EOS deposit"); err != nil {
		return err
	}

	return s.mintStable(ctx, userID, quantity)
}

// splitFee carves the development fund's cut out of fee revenue already
// sitting in the bank.
func (s *routerService) splitFee(ctx context.Context, fee core.Asset) error {
	if fee.Amount <= 0 {
		return nil
	}

	_, dev, err := s.rate.SplitToDev(ctx, fee)
	if err != nil {
		return err
	}
	if dev.Amount <= 0 {
		return nil
	}

	return s.ledger.Transfer(ctx, s.system.BankAccount, s.system.DevelAccount, dev, "development fund")
}
