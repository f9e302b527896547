package strategy

import (
	"context"
	"fmt"
	"math"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"kalshitrader/internal/consts"
	"kalshitrader/internal/marketstate"
	"kalshitrader/internal/model"
	"kalshitrader/pkg/logger"
)

// HighConfidenceName 临近收盘时买入高概率一方
const HighConfidenceName = "btc_15m_high_confidence"

const (
	highConfidencePoll = 10 * time.Second
	// 目标市场允许比周期多出的秒数
	targetSlackSeconds = 30
)

type highConfidenceParams struct {
	series              string
	intervalMinutes     int
	threshold           float64
	maxSecondsRemaining int
	positionPct         float64
}

func defaultHighConfidenceConfig() map[string]any {
	return map[string]any{
		"market_series":         "KXBTC",
		"interval_minutes":      15,
		"min_price_threshold":   0.90,
		"max_seconds_remaining": 60,
		"position_pct":          0.05,
	}
}

func parseHighConfidenceParams(cfg Config) (p highConfidenceParams, err error) {
	if p.series, err = cfg.String("market_series", "KXBTC"); err != nil {
		return p, err
	}
	if p.intervalMinutes, err = cfg.Int("interval_minutes", 15); err != nil {
		return p, err
	}
	if p.threshold, err = cfg.Float("min_price_threshold", 0.90); err != nil {
		return p, err
	}
	if p.maxSecondsRemaining, err = cfg.Int("max_seconds_remaining", 60); err != nil {
		return p, err
	}
	if p.positionPct, err = cfg.Float("position_pct", 0.05); err != nil {
		return p, err
	}

	switch {
	case strings.TrimSpace(p.series) == "":
		return p, fmt.Errorf("market_series must not be empty")
	case p.intervalMinutes <= 0:
		return p, fmt.Errorf("interval_minutes must be positive, got %d", p.intervalMinutes)
	case p.threshold < 0 || p.threshold > 1:
		return p, fmt.Errorf("min_price_threshold must be within [0, 1], got %v", p.threshold)
	case p.maxSecondsRemaining < 0:
		return p, fmt.Errorf("max_seconds_remaining must be >= 0, got %d", p.maxSecondsRemaining)
	case p.positionPct <= 0 || p.positionPct > 1:
		return p, fmt.Errorf("position_pct must be within (0, 1], got %v", p.positionPct)
	}
	return p, nil
}

func HighConfidenceFactory() Factory {
	return Factory{
		Name:          HighConfidenceName,
		Description:   "Buy the side priced at or above the threshold in the final seconds of a BTC interval market",
		PollInterval:  highConfidencePoll,
		DefaultConfig: defaultHighConfidenceConfig,
		New:           NewHighConfidence,
	}
}

type HighConfidence struct {
	params highConfidenceParams
	err    error
	env    Env
}

// NewHighConfidence 配置非法时仍返回实例，每次评估都给出 error 信号
func NewHighConfidence(cfg Config, env Env) Strategy {
	p, err := parseHighConfidenceParams(cfg)
	return &HighConfidence{params: p, err: err, env: env}
}

func (h *HighConfidence) Name() string {
	return HighConfidenceName
}

func (h *HighConfidence) Evaluate(ctx context.Context) (sig TradeSignal) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("high confidence evaluate panic", logger.Pair("panic", r), logger.Pair("stack", string(debug.Stack())))
			sig = Errorf("panic: %v", r)
		}
	}()

	if h.err != nil {
		return Errorf("invalid config: %v", h.err)
	}
	if h.env.Gateway == nil {
		return Errorf("no venue gateway configured")
	}
	p := h.params

	markets, err := h.env.Gateway.ListOpenMarkets(ctx, p.series)
	if err != nil {
		return Errorf("%v", err)
	}
	if len(markets) == 0 {
		return Skip("No open markets found")
	}

	now := h.env.now()
	target, closeAt, ok := pickTarget(markets, now, p.intervalMinutes)
	if !ok {
		return Skip(fmt.Sprintf("No %d-min market found in open markets", p.intervalMinutes))
	}

	ticker := target.Ticker
	remaining := int(closeAt.Sub(now) / time.Second)
	obs := marketstate.Observation{
		Ticker:           ticker,
		Title:            marketTitle(target),
		CloseTime:        target.RawCloseTime(),
		SecondsRemaining: remaining,
	}
	h.publish(ctx, obs)

	if remaining < 0 || remaining > p.maxSecondsRemaining {
		return TradeSignal{
			Action:               consts.ActionSkip,
			MarketTicker:         ticker,
			TimeRemainingSeconds: ptr(remaining),
			Reason:               fmt.Sprintf("Time remaining %ds outside window [0, %d]", remaining, p.maxSecondsRemaining),
		}
	}

	detail, err := h.env.Gateway.GetMarket(ctx, ticker)
	if err != nil {
		return Errorf("%v", err)
	}
	yes, no := detail.YesPrice(), detail.NoPrice()
	if detail.Title != "" {
		obs.Title = detail.Title
	}
	obs.YesPrice, obs.NoPrice = ptr(yes), ptr(no)
	h.publish(ctx, obs)

	logger.Debugf("[%s] %s | yes=%.2f no=%.2f | %ds left", HighConfidenceName, ticker, yes, no, remaining)

	var side string
	var price float64
	switch {
	case yes >= p.threshold:
		side, price = consts.SideYes, yes
	case no >= p.threshold:
		side, price = consts.SideNo, no
	default:
		return TradeSignal{
			Action:               consts.ActionSkip,
			MarketTicker:         ticker,
			ContractPrice:        ptr(math.Max(yes, no)),
			TimeRemainingSeconds: ptr(remaining),
			Reason:               fmt.Sprintf("Neither side meets threshold (yes=%.2f, no=%.2f < %v)", yes, no, p.threshold),
		}
	}

	balance, err := h.env.Gateway.GetBalance(ctx)
	if err != nil {
		return Errorf("%v", err)
	}
	cash := float64(balance) / 100
	priceCents := int(math.Round(price * 100))
	if priceCents <= 0 {
		return Errorf("invalid contract price %d cents for %s", priceCents, ticker)
	}
	contracts := sizeContracts(cash, p.positionPct, priceCents)

	return TradeSignal{
		Action:               consts.ActionBuy,
		Side:                 side,
		MarketTicker:         ticker,
		ContractPrice:        ptr(price),
		TimeRemainingSeconds: ptr(remaining),
		PortfolioCash:        ptr(cash),
		PositionSize:         ptr(round2(float64(contracts*priceCents) / 100)),
		Contracts:            ptr(contracts),
		Reason:               fmt.Sprintf("%s @ %.2f with %ds remaining", strings.ToUpper(side), price, remaining),
		Params: map[string]any{
			"price_cents":  priceCents,
			"threshold":    p.threshold,
			"position_pct": p.positionPct,
		},
	}
}

func (h *HighConfidence) publish(ctx context.Context, obs marketstate.Observation) {
	if err := h.env.market().Publish(ctx, obs); err != nil {
		logger.Warn("publish market state failed", logger.Pair("ticker", obs.Ticker), logger.Err(err))
	}
}

// sizeContracts 按资金比例计算数量，至少 1 张
func sizeContracts(cash, pct float64, priceCents int) int {
	spend := cash * pct
	n := int(math.Floor(spend * 100 / float64(priceCents)))
	if n < 1 {
		return 1
	}
	return n
}

type candidate struct {
	market  model.Market
	closeAt time.Time
	delta   time.Duration
}

// pickTarget 优先选择周期内最早收盘的市场，没有则退化为最早收盘的未过期市场
func pickTarget(markets []model.Market, now time.Time, intervalMinutes int) (model.Market, time.Time, bool) {
	window := time.Duration(intervalMinutes*60+targetSlackSeconds) * time.Second

	var inWindow, future []candidate
	for _, m := range markets {
		closeAt, ok := m.CloseAt()
		if !ok {
			continue
		}
		delta := closeAt.Sub(now)
		if delta <= 0 {
			continue
		}
		c := candidate{market: m, closeAt: closeAt, delta: delta}
		future = append(future, c)
		if delta <= window {
			inWindow = append(inWindow, c)
		}
	}

	pool := inWindow
	if len(pool) == 0 {
		pool = future
	}
	if len(pool) == 0 {
		return model.Market{}, time.Time{}, false
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].delta < pool[j].delta })
	return pool[0].market, pool[0].closeAt, true
}

func marketTitle(m model.Market) string {
	switch {
	case m.Title != "":
		return m.Title
	case m.Subtitle != "":
		return m.Subtitle
	default:
		return m.Ticker
	}
}
