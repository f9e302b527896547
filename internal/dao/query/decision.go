package query

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"kalshitrader/internal/dao"
	"kalshitrader/internal/model/entity"
)

const maxDecisionLimit = 1000

type decisionDao struct {
	db *gorm.DB
}

func NewDecisionDao(db *gorm.DB) dao.DecisionDao {
	return &decisionDao{
		db: db,
	}
}

func (r *decisionDao) Create(ctx context.Context, d *entity.Decision) error {
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("failed to create decision for strategy %d: %w", d.StrategyID, err)
	}
	return nil
}

func (r *decisionDao) List(ctx context.Context, filter dao.DecisionFilter) ([]entity.Decision, error) {
	limit := filter.Limit
	if limit <= 0 || limit > maxDecisionLimit {
		limit = 100
	}
	q := r.db.WithContext(ctx).Model(&entity.Decision{})
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.StrategyID > 0 {
		q = q.Where("strategy_id = ?", filter.StrategyID)
	}

	var rows []entity.Decision
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}
	return rows, nil
}

func (r *decisionDao) CountByAction(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Action string
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&entity.Decision{}).
		Select("action, COUNT(id) AS total").
		Group("action").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count decisions: %w", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Action] = row.Total
	}
	return counts, nil
}
