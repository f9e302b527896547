package exchange

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"kalshitrader/internal/model"
)

const paperMarketLimit = 20

// PaperExchange 模拟交易所：行情可以来自真实接口，下单只在内存中成交
type PaperExchange struct {
	mu        sync.Mutex
	source    MarketSource
	balance   int64
	markets   map[string]model.MarketDetail
	positions map[string]*model.Position
	orders    []model.OrderAck
	orderErr  error
	now       func() time.Time
}

// NewPaperExchange source 为 nil 时只使用 SetMarket 写入的本地行情
func NewPaperExchange(source MarketSource, balanceCents int64) *PaperExchange {
	return &PaperExchange{
		source:    source,
		balance:   balanceCents,
		markets:   make(map[string]model.MarketDetail),
		positions: make(map[string]*model.Position),
		now:       time.Now,
	}
}

// 设置本地行情
func (p *PaperExchange) SetMarket(detail model.MarketDetail) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.markets[detail.Ticker] = detail
}

func (p *PaperExchange) RemoveMarket(ticker string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.markets, ticker)
}

func (p *PaperExchange) SetBalance(cents int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.balance = cents
}

// SetOrderError 之后的下单全部返回该错误，传 nil 恢复
func (p *PaperExchange) SetOrderError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orderErr = err
}

// Orders 已成交订单的副本
func (p *PaperExchange) Orders() []model.OrderAck {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.OrderAck(nil), p.orders...)
}

func (p *PaperExchange) ListOpenMarkets(ctx context.Context, series string) ([]model.Market, error) {
	if p.source != nil {
		return p.source.ListOpenMarkets(ctx, series)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	markets := make([]model.Market, 0, len(p.markets))
	for _, d := range p.markets {
		if !strings.HasPrefix(d.Ticker, series) {
			continue
		}
		if d.Status != "" && d.Status != "open" && d.Status != "active" {
			continue
		}
		markets = append(markets, d.Market)
	}
	sort.Slice(markets, func(i, j int) bool { return markets[i].Ticker < markets[j].Ticker })
	if len(markets) > paperMarketLimit {
		markets = markets[:paperMarketLimit]
	}
	return markets, nil
}

func (p *PaperExchange) GetMarket(ctx context.Context, ticker string) (*model.MarketDetail, error) {
	if p.source != nil {
		return p.source.GetMarket(ctx, ticker)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	d, ok := p.markets[ticker]
	if !ok {
		return nil, fmt.Errorf("paper market %s not found", ticker)
	}
	return &d, nil
}

func (p *PaperExchange) GetBalance(ctx context.Context) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balance, nil
}

func (p *PaperExchange) GetPositions(ctx context.Context) ([]model.Position, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	positions := make([]model.Position, 0, len(p.positions))
	for _, pos := range p.positions {
		positions = append(positions, *pos)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].Ticker < positions[j].Ticker })
	return positions, nil
}

// PlaceOrder 以限价立即成交，扣减余额并累加持仓敞口
func (p *PaperExchange) PlaceOrder(ctx context.Context, req model.OrderRequest) (*model.OrderAck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.orderErr != nil {
		return nil, p.orderErr
	}
	if req.Count < 1 {
		return nil, fmt.Errorf("paper order count must be >= 1, got %d", req.Count)
	}
	price := req.YesPrice
	if req.Side == "no" {
		price = req.NoPrice
	}
	if price < 1 || price > 99 {
		return nil, fmt.Errorf("paper order price must be within [1, 99] cents, got %d", price)
	}
	cost := int64(price) * int64(req.Count)
	if cost > p.balance {
		return nil, fmt.Errorf("paper order cost %d exceeds balance %d", cost, p.balance)
	}
	p.balance -= cost

	pos, ok := p.positions[req.Ticker]
	if !ok {
		pos = &model.Position{Ticker: req.Ticker}
		p.positions[req.Ticker] = pos
	}
	pos.MarketExposure += cost
	pos.TotalTraded += cost
	// yes 为正，no 为负
	if req.Side == "no" {
		pos.Position -= int64(req.Count)
	} else {
		pos.Position += int64(req.Count)
	}

	ack := model.OrderAck{
		OrderID:     uuid.NewString(),
		Ticker:      req.Ticker,
		Side:        req.Side,
		Action:      req.Action,
		Status:      "executed",
		YesPrice:    req.YesPrice,
		NoPrice:     req.NoPrice,
		CreatedTime: p.now().UTC(),
	}
	p.orders = append(p.orders, ack)
	return &ack, nil
}
