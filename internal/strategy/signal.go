package strategy

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"runtime/debug"

	"github.com/spf13/cast"
	"kalshitrader/internal/consts"
	"kalshitrader/pkg/logger"
)

// TradeSignal 一次评估的结果，可选字段为 nil 表示缺失
type TradeSignal struct {
	Action               string         `json:"action"` // buy / skip / error
	Side                 string         `json:"side,omitempty"`
	MarketTicker         string         `json:"market_ticker,omitempty"`
	ContractPrice        *float64       `json:"contract_price,omitempty"`
	TimeRemainingSeconds *int           `json:"time_remaining_seconds,omitempty"`
	PortfolioCash        *float64       `json:"portfolio_cash,omitempty"`
	PositionSize         *float64       `json:"position_size,omitempty"`
	Contracts            *int           `json:"contracts,omitempty"`
	Reason               string         `json:"reason"`
	Params               map[string]any `json:"params,omitempty"`
}

func Skip(reason string) TradeSignal {
	return TradeSignal{Action: consts.ActionSkip, Reason: reason}
}

func Errorf(format string, args ...any) TradeSignal {
	return TradeSignal{Action: consts.ActionError, Reason: fmt.Sprintf(format, args...)}
}

// Validate buy 信号必须带齐方向、合约、价格和数量
func (s TradeSignal) Validate() error {
	switch s.Action {
	case consts.ActionSkip, consts.ActionError:
		return nil
	case consts.ActionBuy:
	default:
		return fmt.Errorf("unknown signal action %q", s.Action)
	}
	var errs []error
	if s.Side != consts.SideYes && s.Side != consts.SideNo {
		errs = append(errs, fmt.Errorf("buy signal side must be yes or no, got %q", s.Side))
	}
	if s.MarketTicker == "" {
		errs = append(errs, errors.New("buy signal has no market ticker"))
	}
	if s.ContractPrice == nil {
		errs = append(errs, errors.New("buy signal has no contract price"))
	}
	if s.Contracts == nil || *s.Contracts < 1 {
		errs = append(errs, errors.New("buy signal needs at least one contract"))
	}
	return errors.Join(errs...)
}

// WithError 返回 action=error 的副本，原值不变
func (s TradeSignal) WithError(reason string) TradeSignal {
	out := s
	out.Action = consts.ActionError
	out.Reason = reason
	out.Params = maps.Clone(s.Params)
	return out
}

// PriceCents 下单价格，优先使用 params.price_cents
func (s TradeSignal) PriceCents() int {
	if v, ok := s.Params["price_cents"]; ok {
		if cents, err := cast.ToIntE(v); err == nil {
			return cents
		}
	}
	if s.ContractPrice == nil {
		return 0
	}
	return int(math.Round(*s.ContractPrice * 100))
}

// SafeEvaluate 调用 Evaluate 并把 panic 转成 error 信号
func SafeEvaluate(ctx context.Context, s Strategy) (sig TradeSignal) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("strategy evaluate panic",
				logger.Pair("strategy", s.Name()),
				logger.Pair("panic", r),
				logger.Pair("stack", string(debug.Stack())))
			sig = Errorf("panic: %v", r)
		}
	}()
	return s.Evaluate(ctx)
}

func ptr[T any](v T) *T {
	return &v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
