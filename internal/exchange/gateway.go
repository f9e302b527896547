package exchange

import (
	"context"

	"kalshitrader/internal/model"
)

// Gateway 交易所的五个调用，价格与金额均为美分
type Gateway interface {
	// 指定系列下的开放市场
	ListOpenMarkets(ctx context.Context, series string) ([]model.Market, error)
	GetMarket(ctx context.Context, ticker string) (*model.MarketDetail, error)
	// 可用余额（美分）
	GetBalance(ctx context.Context) (int64, error)
	GetPositions(ctx context.Context) ([]model.Position, error)
	// 下单，失败不重试
	PlaceOrder(ctx context.Context, req model.OrderRequest) (*model.OrderAck, error)
}

// MarketSource 只读的行情来源
type MarketSource interface {
	ListOpenMarkets(ctx context.Context, series string) ([]model.Market, error)
	GetMarket(ctx context.Context, ticker string) (*model.MarketDetail, error)
}
