package dao

import (
	"context"

	"kalshitrader/internal/model/entity"
)

// DecisionFilter 决策列表查询条件，零值字段不参与过滤
type DecisionFilter struct {
	Limit      int
	Action     string
	StrategyID int64
}

type DecisionDao interface {
	Create(ctx context.Context, d *entity.Decision) error
	// 按创建时间倒序
	List(ctx context.Context, filter DecisionFilter) ([]entity.Decision, error)
	// 按 action 统计数量
	CountByAction(ctx context.Context) (map[string]int64, error)
}
