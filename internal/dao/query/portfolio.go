package query

import (
	"context"
	"fmt"
	"slices"

	"gorm.io/gorm"
	"kalshitrader/internal/dao"
	"kalshitrader/internal/model/entity"
)

type portfolioDao struct {
	db *gorm.DB
}

func NewPortfolioDao(db *gorm.DB) dao.PortfolioDao {
	return &portfolioDao{
		db: db,
	}
}

func (r *portfolioDao) CreateSnapshot(ctx context.Context, s *entity.PortfolioSnapshot) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("failed to create portfolio snapshot: %w", err)
	}
	return nil
}

func (r *portfolioDao) History(ctx context.Context, limit int) ([]entity.PortfolioSnapshot, error) {
	if limit <= 0 {
		limit = 120
	}
	var rows []entity.PortfolioSnapshot
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio history: %w", err)
	}
	// 查询按倒序取最近的记录，返回给图表时改为正序
	slices.Reverse(rows)
	return rows, nil
}
