package service

import (
	"context"

	"kalshitrader/internal/exchange"
	"kalshitrader/internal/marketstate"
	"kalshitrader/internal/model"
	pkgerrors "kalshitrader/pkg/errors"
	"kalshitrader/pkg/errors/ecode"
)

var _ MarketService = (*marketService)(nil)

type MarketService interface {
	MarketList(ctx context.Context, series string) ([]model.Market, error)
	// 最近一次策略轮询观察到的市场
	MarketState(ctx context.Context) (marketstate.Snapshot, error)
	MarketStateSubscribe(ctx context.Context) (<-chan marketstate.Snapshot, error)
}

type marketService struct {
	gateway exchange.MarketSource
	store   marketstate.Store
}

func NewMarketService(gateway exchange.MarketSource, store marketstate.Store) *marketService {
	return &marketService{gateway: gateway, store: store}
}

func (m *marketService) MarketList(ctx context.Context, series string) ([]model.Market, error) {
	markets, err := m.gateway.ListOpenMarkets(ctx, series)
	if err != nil {
		return nil, pkgerrors.Wrap(err, ecode.UpstreamErr, "")
	}
	if markets == nil {
		markets = []model.Market{}
	}
	return markets, nil
}

func (m *marketService) MarketState(ctx context.Context) (marketstate.Snapshot, error) {
	return m.store.Latest(ctx)
}

func (m *marketService) MarketStateSubscribe(ctx context.Context) (<-chan marketstate.Snapshot, error) {
	return m.store.Subscribe(ctx)
}
