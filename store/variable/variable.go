package variable

import (
	"context"
	"time"

	"deposbank/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type variableStore struct {
	db *db.DB
}

// New new variable store
func New(db *db.DB) core.VariableStore {
	return &variableStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Variable{})
		if err := tx.AutoMigrate(core.Variable{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *variableStore) Get(ctx context.Context, scope core.Scope, name string) (*core.Variable, error) {
	var variable core.Variable
	if err := s.db.View().Where("scope = ? AND name = ?", scope, name).First(&variable).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrVariableNotFound
		}
		return nil, err
	}

	return &variable, nil
}

func (s *variableStore) Set(ctx context.Context, scope core.Scope, name string, value int64) error {
	return s.db.Tx(func(tx *db.DB) error {
		updates := map[string]interface{}{
			"value":      value,
			"updated_at": time.Now(),
		}

		res := tx.Update().Model(core.Variable{}).
			Where("scope = ? AND name = ?", scope, name).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		return tx.Update().Create(&core.Variable{
			Scope: scope,
			Name:  name,
			Value: value,
		}).Error
	})
}

func (s *variableStore) Delete(ctx context.Context, scope core.Scope, name string) error {
	return s.db.Update().
		Where("scope = ? AND name = ?", scope, name).
		Delete(core.Variable{}).Error
}

func (s *variableStore) List(ctx context.Context, scope core.Scope) ([]*core.Variable, error) {
	var variables []*core.Variable
	if err := s.db.View().Where("scope = ?", scope).Order("name ASC").Find(&variables).Error; err != nil {
		return nil, err
	}

	return variables, nil
}
