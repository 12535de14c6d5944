package transfer

import (
	"context"

	"deposbank/core"

	"github.com/fox-one/pkg/store/db"
)

type transferStore struct {
	db *db.DB
}

// New new transfer store
func New(db *db.DB) core.TransferStore {
	return &transferStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Transfer{})
		if err := tx.AutoMigrate(core.Transfer{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *transferStore) Create(ctx context.Context, transfer *core.Transfer) error {
	return s.db.Update().
		Where("trace_id = ?", transfer.TraceID).
		FirstOrCreate(transfer).Error
}

func (s *transferStore) List(ctx context.Context, fromID uint64, limit int) ([]*core.Transfer, error) {
	var transfers []*core.Transfer
	if err := s.db.View().
		Where("id > ?", fromID).
		Order("id ASC").Limit(limit).
		Find(&transfers).Error; err != nil {
		return nil, err
	}

	return transfers, nil
}
