package ledger

import (
	"context"
	"time"

	"deposbank/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type ledgerStore struct {
	db *db.DB
}

// New new ledger store
func New(db *db.DB) core.Ledger {
	return &ledgerStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		if err := db.Update().AutoMigrate(core.Account{}).Error; err != nil {
			return err
		}
		if err := db.Update().AutoMigrate(core.Token{}).Error; err != nil {
			return err
		}
		if err := db.Update().AutoMigrate(core.Journal{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *ledgerStore) CreateToken(ctx context.Context, symbol core.Symbol, maxSupply int64, issuer string) error {
	if !symbol.IsValid() {
		return core.ErrUnknownToken
	}

	return s.db.Update().
		Where("symbol = ?", symbol).
		FirstOrCreate(&core.Token{
			Symbol:    symbol,
			MaxSupply: maxSupply,
			Issuer:    issuer,
		}).Error
}

func (s *ledgerStore) Balance(ctx context.Context, userID string, symbol core.Symbol) (int64, error) {
	var account core.Account
	if err := s.db.View().
		Where("user_id = ? AND symbol = ?", userID, symbol).
		First(&account).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return 0, nil
		}
		return 0, err
	}

	return account.Balance, nil
}

func (s *ledgerStore) Supply(ctx context.Context, symbol core.Symbol) (int64, error) {
	var token core.Token
	if err := s.db.View().Where("symbol = ?", symbol).First(&token).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return 0, nil
		}
		return 0, err
	}

	return token.Supply, nil
}

func (s *ledgerStore) Transfer(ctx context.Context, from, to string, quantity core.Asset, memo string) error {
	if !quantity.IsValid() {
		return core.ErrInvalidAmount
	}
	if from == to {
		return core.ErrSelfTransfer
	}

	return s.db.Tx(func(tx *db.DB) error {
		if err := debit(tx, from, quantity); err != nil {
			return err
		}
		if err := credit(tx, to, quantity); err != nil {
			return err
		}

		return journal(tx, "move", from, to, quantity, memo)
	})
}

func (s *ledgerStore) Issue(ctx context.Context, to string, quantity core.Asset, memo string) error {
	if !quantity.IsValid() {
		return core.ErrInvalidAmount
	}

	return s.db.Tx(func(tx *db.DB) error {
		var token core.Token
		if err := tx.Update().Where("symbol = ?", quantity.Symbol).First(&token).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return core.ErrUnknownToken
			}
			return err
		}

		if token.MaxSupply > 0 && token.Supply+quantity.Amount > token.MaxSupply {
			return core.ErrInvalidAmount
		}

		res := tx.Update().Model(core.Token{}).
			Where("symbol = ?", quantity.Symbol).
			Updates(map[string]interface{}{
				"supply":     gorm.Expr("supply + ?", quantity.Amount),
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}

		if err := credit(tx, to, quantity); err != nil {
			return err
		}

		return journal(tx, "issue", "", to, quantity, memo)
	})
}

func (s *ledgerStore) Retire(ctx context.Context, from string, quantity core.Asset, memo string) error {
	if !quantity.IsValid() {
		return core.ErrInvalidAmount
	}

	return s.db.Tx(func(tx *db.DB) error {
		if err := debit(tx, from, quantity); err != nil {
			return err
		}

		res := tx.Update().Model(core.Token{}).
			Where("symbol = ? AND supply >= ?", quantity.Symbol, quantity.Amount).
			Updates(map[string]interface{}{
				"supply":     gorm.Expr("supply - ?", quantity.Amount),
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return core.ErrUnknownToken
		}

		return journal(tx, "retire", from, "", quantity, memo)
	})
}

// debit takes funds off an account inside tx, guarding against
// overdraft in the where clause.
func debit(tx *db.DB, userID string, quantity core.Asset) error {
	res := tx.Update().Model(core.Account{}).
		Where("user_id = ? AND symbol = ? AND balance >= ?", userID, quantity.Symbol, quantity.Amount).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance - ?", quantity.Amount),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return core.ErrInsufficientBalance
	}

	return nil
}

func credit(tx *db.DB, userID string, quantity core.Asset) error {
	if err := tx.Update().
		Where("user_id = ? AND symbol = ?", userID, quantity.Symbol).
		FirstOrCreate(&core.Account{
			UserID: userID,
			Symbol: quantity.Symbol,
		}).Error; err != nil {
		return err
	}

	return tx.Update().Model(core.Account{}).
		Where("user_id = ? AND symbol = ?", userID, quantity.Symbol).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance + ?", quantity.Amount),
			"updated_at": time.Now(),
		}).Error
}

func journal(tx *db.DB, action, from, to string, quantity core.Asset, memo string) error {
	return tx.Update().Create(&core.Journal{
		Action:   action,
		Sender:   from,
		Receiver: to,
		Symbol:   quantity.Symbol,
		Amount:   quantity.Amount,
		Memo:     memo,
	}).Error
}
