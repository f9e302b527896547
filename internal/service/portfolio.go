package service

import (
	"context"

	"golang.org/x/sync/errgroup"
	"kalshitrader/internal/dao"
	"kalshitrader/internal/exchange"
	"kalshitrader/internal/model"
	"kalshitrader/internal/model/entity"
	pkgerrors "kalshitrader/pkg/errors"
	"kalshitrader/pkg/errors/ecode"
)

var _ PortfolioService = (*portfolioService)(nil)

type PortfolioService interface {
	// 实时余额和持仓，交易所调用失败返回 UpstreamErr
	Portfolio(ctx context.Context) (model.PortfolioRes, error)
	History(ctx context.Context, limit int) ([]entity.PortfolioSnapshot, error)
}

type portfolioService struct {
	gateway exchange.Gateway
	d       dao.PortfolioDao
}

func NewPortfolioService(gateway exchange.Gateway, d dao.PortfolioDao) *portfolioService {
	return &portfolioService{gateway: gateway, d: d}
}

func (p *portfolioService) Portfolio(ctx context.Context) (res model.PortfolioRes, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var e error
		res.Balance, e = p.gateway.GetBalance(gctx)
		return e
	})
	g.Go(func() error {
		var e error
		res.Positions, e = p.gateway.GetPositions(gctx)
		return e
	})
	if err = g.Wait(); err != nil {
		return model.PortfolioRes{}, pkgerrors.Wrap(err, ecode.UpstreamErr, "")
	}
	if res.Positions == nil {
		res.Positions = []model.Position{}
	}
	return res, nil
}

func (p *portfolioService) History(ctx context.Context, limit int) ([]entity.PortfolioSnapshot, error) {
	if limit <= 0 {
		limit = 120
	}
	rows, err := p.d.History(ctx, limit)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []entity.PortfolioSnapshot{}
	}
	return rows, nil
}
