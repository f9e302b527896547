package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"kalshitrader/internal/dao"
	"kalshitrader/internal/exchange"
	"kalshitrader/internal/model"
	"kalshitrader/internal/model/entity"
	"kalshitrader/pkg/logger"
)

// Snapshotter 定时记录组合价值
type Snapshotter struct {
	gateway   exchange.Gateway
	portfolio dao.PortfolioDao
}

func NewSnapshotter(gateway exchange.Gateway, portfolio dao.PortfolioDao) *Snapshotter {
	return &Snapshotter{gateway: gateway, portfolio: portfolio}
}

func (s *Snapshotter) Snapshot(ctx context.Context) error {
	var (
		balance   int64
		positions []model.Position
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		balance, err = s.gateway.GetBalance(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		positions, err = s.gateway.GetPositions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to fetch portfolio: %w", err)
	}

	snap := BuildSnapshot(balance, positions)
	if err := s.portfolio.CreateSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("failed to save portfolio snapshot: %w", err)
	}
	logger.Debug("portfolio snapshot saved",
		logger.Pair("cash", snap.Cash.String()),
		logger.Pair("total", snap.TotalValue.String()))
	return nil
}

// BuildSnapshot 余额和持仓敞口均为美分
func BuildSnapshot(balanceCents int64, positions []model.Position) *entity.PortfolioSnapshot {
	var exposure int64
	for _, p := range positions {
		exposure += p.MarketExposure
	}
	cash := decimal.New(balanceCents, -2)
	posValue := decimal.New(exposure, -2)
	return &entity.PortfolioSnapshot{
		Cash:           cash,
		PositionsValue: posValue,
		TotalValue:     cash.Add(posValue),
	}
}
