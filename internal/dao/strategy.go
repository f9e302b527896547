package dao

import (
	"context"

	"kalshitrader/internal/model/entity"
)

type StrategyDao interface {
	// 所有启用的策略定义，按 id 排序
	ListEnabled(ctx context.Context) ([]entity.Strategy, error)
	List(ctx context.Context) ([]entity.Strategy, error)
	GetByID(ctx context.Context, id int64) (*entity.Strategy, error)
	Create(ctx context.Context, s *entity.Strategy) error
	Update(ctx context.Context, s *entity.Strategy) error
	// 软删除
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
