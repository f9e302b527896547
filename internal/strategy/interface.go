package strategy

import (
	"context"
	"time"

	"kalshitrader/internal/exchange"
	"kalshitrader/internal/marketstate"
)

// 策略接口定义

// Strategy 每次 tick 新建一个实例，Evaluate 不返回 error，失败以 action=error 表示
type Strategy interface {
	Name() string
	Evaluate(ctx context.Context) TradeSignal
}

// Env 策略可以使用的外部依赖
type Env struct {
	Gateway exchange.Gateway
	Market  marketstate.Publisher
	Now     func() time.Time
}

func (e Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e Env) market() marketstate.Publisher {
	if e.Market == nil {
		return marketstate.Nop{}
	}
	return e.Market
}

// Factory 注册到 Registry 的策略描述
type Factory struct {
	Name         string
	Description  string
	PollInterval time.Duration
	// 新建时写入数据库的默认配置
	DefaultConfig func() map[string]any
	New           func(cfg Config, env Env) Strategy
}
