package query

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"kalshitrader/internal/dao"
	"kalshitrader/internal/model/entity"
)

type strategyDao struct {
	db *gorm.DB
}

func NewStrategyDao(db *gorm.DB) dao.StrategyDao {
	return &strategyDao{
		db: db,
	}
}

func (r *strategyDao) ListEnabled(ctx context.Context) ([]entity.Strategy, error) {
	var rows []entity.Strategy
	if err := r.db.WithContext(ctx).Where("enabled = ?", true).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list enabled strategies: %w", err)
	}
	return rows, nil
}

func (r *strategyDao) List(ctx context.Context) ([]entity.Strategy, error) {
	var rows []entity.Strategy
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list strategies: %w", err)
	}
	return rows, nil
}

func (r *strategyDao) GetByID(ctx context.Context, id int64) (*entity.Strategy, error) {
	var row entity.Strategy
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, dao.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get strategy %d: %w", id, err)
	}
	return &row, nil
}

func (r *strategyDao) Create(ctx context.Context, s *entity.Strategy) error {
	err := r.db.WithContext(ctx).Create(s).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("strategy %s: %w", s.Name, dao.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to create strategy %s: %w", s.Name, err)
	}
	return nil
}

func (r *strategyDao) Update(ctx context.Context, s *entity.Strategy) error {
	// 显式 Select，保证 enabled=false 这类零值也会被写入
	result := r.db.WithContext(ctx).Model(s).
		Select("enabled", "config", "description", "updated_at").
		Updates(s)
	if result.Error != nil {
		return fmt.Errorf("failed to update strategy %d: %w", s.ID, result.Error)
	}
	return nil
}

func (r *strategyDao) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&entity.Strategy{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete strategy %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return dao.ErrNotFound
	}
	return nil
}

func (r *strategyDao) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&entity.Strategy{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count strategies: %w", err)
	}
	return n, nil
}
