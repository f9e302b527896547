package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"kalshitrader/internal/consts"
	"kalshitrader/internal/dao"
	"kalshitrader/internal/model"
	"kalshitrader/internal/model/entity"
	"kalshitrader/internal/stats"
	"kalshitrader/internal/strategy"
	"kalshitrader/pkg/logger"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

// DecisionRecorder 持久化一次评估结果
type DecisionRecorder interface {
	Record(ctx context.Context, strategyID int64, sig strategy.TradeSignal, orderID string) (*entity.Decision, error)
}

// Runner 执行一次策略评估：构建 → 评估 → 下单 → 记录
type Runner struct {
	registry *strategy.Registry
	env      strategy.Env
	intents  dao.OrderIntentDao
	recorder DecisionRecorder
}

func NewRunner(registry *strategy.Registry, env strategy.Env, intents dao.OrderIntentDao, recorder DecisionRecorder) *Runner {
	return &Runner{registry: registry, env: env, intents: intents, recorder: recorder}
}

func (r *Runner) Run(ctx context.Context, def entity.Strategy) (*entity.Decision, error) {
	factory, ok := r.registry.Lookup(def.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, def.Name)
	}

	s := factory.New(strategy.Config(def.Config), r.env)
	sig := strategy.SafeEvaluate(ctx, s)

	var orderID string
	if sig.Action == consts.ActionBuy {
		sig, orderID = r.execute(ctx, def.ID, sig)
	}

	d, err := r.recorder.Record(ctx, def.ID, sig, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to record decision for %s: %w", def.Name, err)
	}
	stats.DecisionsTotal.WithLabelValues(def.Name, sig.Action).Inc()

	logger.Info("strategy evaluated",
		logger.Pair("strategy", def.Name),
		logger.Pair("action", sig.Action),
		logger.Pair("ticker", sig.MarketTicker),
		logger.Pair("reason", sig.Reason))
	return d, nil
}

// execute 先写下单意图再下单，下单失败不重试
func (r *Runner) execute(ctx context.Context, strategyID int64, sig strategy.TradeSignal) (strategy.TradeSignal, string) {
	if err := sig.Validate(); err != nil {
		return sig.WithError(fmt.Sprintf("invalid buy signal: %v", err)), ""
	}

	priceCents := sig.PriceCents()
	intent := &entity.OrderIntent{
		ID:         uuid.NewString(),
		StrategyID: strategyID,
		Ticker:     sig.MarketTicker,
		Side:       sig.Side,
		Count:      *sig.Contracts,
		PriceCents: priceCents,
		Status:     consts.IntentPending,
	}
	if err := r.intents.Create(ctx, intent); err != nil {
		return sig.WithError(fmt.Sprintf("Order intent write failed: %v", err)), ""
	}

	ack, err := r.env.Gateway.PlaceOrder(ctx, model.NewBuyOrder(sig.MarketTicker, sig.Side, *sig.Contracts, priceCents))
	if err != nil {
		if markErr := r.intents.MarkFailed(ctx, intent.ID, err.Error()); markErr != nil {
			logger.Error("mark order intent failed", logger.Pair("intent_id", intent.ID), logger.Err(markErr))
		}
		logger.Error("place order failed",
			logger.Pair("ticker", sig.MarketTicker),
			logger.Pair("side", sig.Side),
			logger.Err(err))
		return sig.WithError(fmt.Sprintf("Order placement failed: %v", err)), ""
	}

	if err := r.intents.MarkPlaced(ctx, intent.ID, ack.OrderID); err != nil {
		logger.Error("mark order intent placed", logger.Pair("intent_id", intent.ID), logger.Err(err))
	}
	logger.Info("order placed",
		logger.Pair("order_id", ack.OrderID),
		logger.Pair("ticker", sig.MarketTicker),
		logger.Pair("side", sig.Side),
		logger.Pair("count", *sig.Contracts),
		logger.Pair("price_cents", priceCents))
	return sig, ack.OrderID
}
