package model

import (
	"time"
)

// Market 市场列表中的单个合约，价格单位为美分
type Market struct {
	Ticker         string `json:"ticker"`
	EventTicker    string `json:"event_ticker"`
	Title          string `json:"title"`
	Subtitle       string `json:"subtitle"`
	Status         string `json:"status"`
	YesBid         int64  `json:"yes_bid"`
	YesAsk         int64  `json:"yes_ask"`
	NoBid          int64  `json:"no_bid"`
	NoAsk          int64  `json:"no_ask"`
	LastPrice      int64  `json:"last_price"`
	Volume         int64  `json:"volume"`
	OpenTime       string `json:"open_time"`
	CloseTime      string `json:"close_time"`
	ExpirationTime string `json:"expiration_time"`
}

// CloseAt 解析收盘时间，close_time 缺失时使用 expiration_time
func (m Market) CloseAt() (time.Time, bool) {
	for _, raw := range []string{m.CloseTime, m.ExpirationTime} {
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// RawCloseTime 返回用于展示的原始收盘时间
func (m Market) RawCloseTime() string {
	if m.CloseTime != "" {
		return m.CloseTime
	}
	return m.ExpirationTime
}

// MarketDetail GET /markets/{ticker} 的返回
type MarketDetail struct {
	Market
	OpenInterest int64  `json:"open_interest"`
	Liquidity    int64  `json:"liquidity"`
	Result       string `json:"result"`
}

// YesPrice 以美元表示的 yes 价格，ask 优先，其次 bid
func (d MarketDetail) YesPrice() float64 {
	return float64(firstNonZero(d.YesAsk, d.YesBid)) / 100
}

func (d MarketDetail) NoPrice() float64 {
	return float64(firstNonZero(d.NoAsk, d.NoBid)) / 100
}

func firstNonZero(values ...int64) int64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

// Position 持仓，market_exposure 单位为美分
type Position struct {
	Ticker             string `json:"ticker"`
	Position           int64  `json:"position"`
	MarketExposure     int64  `json:"market_exposure"`
	RealizedPnl        int64  `json:"realized_pnl"`
	TotalTraded        int64  `json:"total_traded"`
	RestingOrdersCount int64  `json:"resting_orders_count"`
	FeesPaid           int64  `json:"fees_paid"`
}
