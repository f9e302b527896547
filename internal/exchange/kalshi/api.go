package kalshi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
	"kalshitrader/internal/exchange"
	"kalshitrader/internal/model"
)

var _ exchange.Gateway = (*Client)(nil)

const marketsPageLimit = "20"

type marketsResponse struct {
	Markets []model.Market `json:"markets"`
	Cursor  string         `json:"cursor"`
}

type marketResponse struct {
	Market model.MarketDetail `json:"market"`
}

type balanceResponse struct {
	Balance int64 `json:"balance"`
}

type positionsResponse struct {
	MarketPositions []model.Position `json:"market_positions"`
	Cursor          string           `json:"cursor"`
}

type orderResponse struct {
	Order model.OrderAck `json:"order"`
}

// ListOpenMarkets 查询系列下的开放市场，空列表不是错误
func (c *Client) ListOpenMarkets(ctx context.Context, series string) ([]model.Market, error) {
	q := url.Values{}
	q.Set("series_ticker", series)
	q.Set("status", "open")
	q.Set("limit", marketsPageLimit)

	var resp marketsResponse
	if err := c.do(ctx, LabelListMarkets, http.MethodGet, "/markets", q, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Markets == nil {
		return []model.Market{}, nil
	}
	return resp.Markets, nil
}

func (c *Client) GetMarket(ctx context.Context, ticker string) (*model.MarketDetail, error) {
	var resp marketResponse
	path := "/markets/" + url.PathEscape(ticker)
	if err := c.do(ctx, LabelGetMarket, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Market, nil
}

// GetBalance 可用余额，单位美分
func (c *Client) GetBalance(ctx context.Context) (int64, error) {
	var resp balanceResponse
	if err := c.do(ctx, LabelGetBalance, http.MethodGet, "/portfolio/balance", nil, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

func (c *Client) GetPositions(ctx context.Context) ([]model.Position, error) {
	var resp positionsResponse
	if err := c.do(ctx, LabelGetPositions, http.MethodGet, "/portfolio/positions", nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.MarketPositions == nil {
		return []model.Position{}, nil
	}
	return resp.MarketPositions, nil
}

// PlaceOrder 提交订单，签名覆盖请求体，非 2xx 直接返回错误
func (c *Client) PlaceOrder(ctx context.Context, req model.OrderRequest) (*model.OrderAck, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("kalshi %s: encode order: %w", LabelPlaceOrder, err)
	}
	var resp orderResponse
	if err := c.do(ctx, LabelPlaceOrder, http.MethodPost, "/portfolio/orders", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}
