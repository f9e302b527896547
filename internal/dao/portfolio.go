package dao

import (
	"context"

	"kalshitrader/internal/model/entity"
)

type PortfolioDao interface {
	CreateSnapshot(ctx context.Context, s *entity.PortfolioSnapshot) error
	// 最近 limit 条快照，按时间正序返回
	History(ctx context.Context, limit int) ([]entity.PortfolioSnapshot, error)
}
