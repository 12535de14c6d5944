package order

import (
	"context"
	"time"

	"deposbank/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type orderStore struct {
	db *db.DB
}

// New new order store
func New(db *db.DB) core.OrderStore {
	return &orderStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Order{})
		if err := tx.AutoMigrate(core.Order{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *orderStore) Create(ctx context.Context, order *core.Order) error {
	return s.db.Update().Create(order).Error
}

func (s *orderStore) Find(ctx context.Context, kind core.OrderKind, id uint64) (*core.Order, error) {
	var order core.Order
	if err := s.db.View().Where("kind = ? AND id = ?", kind, id).First(&order).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrOrderNotFound
		}
		return nil, err
	}

	return &order, nil
}

func (s *orderStore) FindByTxID(ctx context.Context, kind core.OrderKind, txID string) (*core.Order, error) {
	var order core.Order
	if err := s.db.View().Where("kind = ? AND tx_id = ?", kind, txID).First(&order).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrOrderNotFound
		}
		return nil, err
	}

	return &order, nil
}

func (s *orderStore) Update(ctx context.Context, order *core.Order) error {
	updates := map[string]interface{}{
		"status":     order.Status,
		"tx_id":      order.TxID,
		"updated_at": time.Now(),
	}

	return s.db.Update().Model(core.Order{}).
		Where("id = ?", order.ID).
		Updates(updates).Error
}

func (s *orderStore) SumByStatus(ctx context.Context, kind core.OrderKind, userID string, statuses ...core.OrderStatus) (int64, error) {
	query := s.db.View().Model(core.Order{}).
		Where("kind = ? AND status IN (?)", kind, statuses)
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var result struct {
		Total int64
	}
	if err := query.Select("COALESCE(SUM(amount), 0) AS total").Scan(&result).Error; err != nil {
		return 0, err
	}

	return result.Total, nil
}

func (s *orderStore) List(ctx context.Context, kind core.OrderKind, fromID uint64, limit int) ([]*core.Order, error) {
	var orders []*core.Order
	if err := s.db.View().
		Where("kind = ? AND id > ?", kind, fromID).
		Order("id ASC").Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}

	return orders, nil
}
