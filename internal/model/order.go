package model

import "time"

const (
	OrderActionBuy  = "buy"
	OrderActionSell = "sell"

	// 限价单
	OrderTypeLimit = "limit"
	// 市价单
	OrderTypeMarket = "market"
)

// OrderRequest 下单请求体，字段顺序即序列化顺序
type OrderRequest struct {
	Ticker   string `json:"ticker"`
	Action   string `json:"action"`
	Side     string `json:"side"`
	Count    int    `json:"count"`
	Type     string `json:"type"`
	YesPrice int    `json:"yes_price"`
	NoPrice  int    `json:"no_price"`
}

// NewBuyOrder 构造限价买单，另一方向价格为 100 - priceCents
func NewBuyOrder(ticker, side string, count, priceCents int) OrderRequest {
	req := OrderRequest{
		Ticker: ticker,
		Action: OrderActionBuy,
		Side:   side,
		Count:  count,
		Type:   OrderTypeLimit,
	}
	if side == "yes" {
		req.YesPrice = priceCents
		req.NoPrice = 100 - priceCents
	} else {
		req.NoPrice = priceCents
		req.YesPrice = 100 - priceCents
	}
	return req
}

// OrderAck 交易所返回的订单确认
type OrderAck struct {
	OrderID       string    `json:"order_id"`
	ClientOrderID string    `json:"client_order_id"`
	Ticker        string    `json:"ticker"`
	Side          string    `json:"side"`
	Action        string    `json:"action"`
	Status        string    `json:"status"`
	YesPrice      int       `json:"yes_price"`
	NoPrice       int       `json:"no_price"`
	CreatedTime   time.Time `json:"created_time"`
}
