package collateral

import (
	"context"

	"deposbank/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type collateralStore struct {
	db *db.DB
}

// New new collateral store
func New(db *db.DB) core.CollateralStore {
	return &collateralStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Collateral{})
		if err := tx.AutoMigrate(core.Collateral{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *collateralStore) Create(ctx context.Context, collateral *core.Collateral) error {
	return s.db.Update().
		Where("contract = ? AND bond_id = ?", collateral.Contract, collateral.BondID).
		FirstOrCreate(collateral).Error
}

func (s *collateralStore) Delete(ctx context.Context, contract, bondID string) error {
	return s.db.Update().
		Where("contract = ? AND bond_id = ?", contract, bondID).
		Delete(core.Collateral{}).Error
}

func (s *collateralStore) Find(ctx context.Context, contract, bondID string) (*core.Collateral, error) {
	var collateral core.Collateral
	if err := s.db.View().
		Where("contract = ? AND bond_id = ?", contract, bondID).
		First(&collateral).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrCollateralNotAuthorized
		}
		return nil, err
	}

	return &collateral, nil
}

func (s *collateralStore) All(ctx context.Context) ([]*core.Collateral, error) {
	var collaterals []*core.Collateral
	if err := s.db.View().Order("id ASC").Find(&collaterals).Error; err != nil {
		return nil, err
	}

	return collaterals, nil
}
