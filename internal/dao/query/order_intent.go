package query

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"kalshitrader/internal/consts"
	"kalshitrader/internal/dao"
	"kalshitrader/internal/model/entity"
)

type orderIntentDao struct {
	db *gorm.DB
}

func NewOrderIntentDao(db *gorm.DB) dao.OrderIntentDao {
	return &orderIntentDao{
		db: db,
	}
}

func (r *orderIntentDao) Create(ctx context.Context, intent *entity.OrderIntent) error {
	if err := r.db.WithContext(ctx).Create(intent).Error; err != nil {
		return fmt.Errorf("failed to create order intent %s: %w", intent.ID, err)
	}
	return nil
}

func (r *orderIntentDao) MarkPlaced(ctx context.Context, id, orderID string) error {
	return r.mark(ctx, id, map[string]any{
		"status":   consts.IntentPlaced,
		"order_id": orderID,
	})
}

func (r *orderIntentDao) MarkFailed(ctx context.Context, id, reason string) error {
	return r.mark(ctx, id, map[string]any{
		"status": consts.IntentFailed,
		"error":  reason,
	})
}

func (r *orderIntentDao) mark(ctx context.Context, id string, updates map[string]any) error {
	result := r.db.WithContext(ctx).Model(&entity.OrderIntent{}).
		Where("id = ? AND status = ?", id, consts.IntentPending).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update order intent %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("order intent %s is not pending: %w", id, dao.ErrNotFound)
	}
	return nil
}

func (r *orderIntentDao) ListPending(ctx context.Context) ([]entity.OrderIntent, error) {
	var rows []entity.OrderIntent
	err := r.db.WithContext(ctx).Where("status = ?", consts.IntentPending).Order("created_at").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending order intents: %w", err)
	}
	return rows, nil
}
