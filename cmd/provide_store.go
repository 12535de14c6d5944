package cmd

import (
	"deposbank/core"
	"deposbank/store/collateral"
	"deposbank/store/ledger"
	"deposbank/store/order"
	"deposbank/store/transfer"
	"deposbank/store/variable"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

func provideVariableStore(db *db.DB) core.VariableStore {
	return variable.New(db)
}

func provideLedger(db *db.DB) core.Ledger {
	return ledger.New(db)
}

func provideOrderStore(db *db.DB) core.OrderStore {
	return order.New(db)
}

func provideTransferStore(db *db.DB) core.TransferStore {
	return transfer.New(db)
}

func provideCollateralStore(db *db.DB) core.CollateralStore {
	return collateral.New(db)
}
