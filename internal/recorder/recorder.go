package recorder

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"kalshitrader/internal/consts"
	"kalshitrader/internal/dao"
	"kalshitrader/internal/model/entity"
	"kalshitrader/internal/strategy"
	"kalshitrader/pkg/logger"
)

// Publisher 决策写库后的扇出目标，例如 Kafka
type Publisher interface {
	Publish(ctx context.Context, key string, payload any) error
}

type Recorder struct {
	decisions  dao.DecisionDao
	publishers []Publisher
}

func New(decisions dao.DecisionDao, publishers ...Publisher) *Recorder {
	r := &Recorder{decisions: decisions}
	for _, p := range publishers {
		if p != nil {
			r.publishers = append(r.publishers, p)
		}
	}
	return r
}

// Record 把信号映射为一条决策记录并写入，orderID 为空表示没有下单
func (r *Recorder) Record(ctx context.Context, strategyID int64, sig strategy.TradeSignal, orderID string) (*entity.Decision, error) {
	d := ToDecision(strategyID, sig, orderID)
	if err := r.decisions.Create(ctx, d); err != nil {
		return nil, err
	}

	key := strconv.FormatInt(strategyID, 10)
	for _, p := range r.publishers {
		if err := p.Publish(ctx, key, d); err != nil {
			logger.Warn("publish decision failed",
				logger.Pair("strategy_id", strategyID),
				logger.Pair("decision_id", d.ID),
				logger.Err(err))
		}
	}
	return d, nil
}

// ToDecision 缺失的 ticker 记为空串，缺失的方向记为 unknown
func ToDecision(strategyID int64, sig strategy.TradeSignal, orderID string) *entity.Decision {
	side := sig.Side
	if side == "" {
		side = consts.SideUnknown
	}
	params := datatypes.JSONMap{}
	for k, v := range sig.Params {
		params[k] = v
	}
	d := &entity.Decision{
		StrategyID:           strategyID,
		MarketTicker:         sig.MarketTicker,
		Side:                 side,
		Action:               sig.Action,
		Reason:               sig.Reason,
		ContractPrice:        toDecimal(sig.ContractPrice),
		TimeRemainingSeconds: sig.TimeRemainingSeconds,
		PortfolioCash:        toDecimal(sig.PortfolioCash),
		PositionSize:         toDecimal(sig.PositionSize),
		Contracts:            sig.Contracts,
		Params:               params,
	}
	if orderID != "" {
		d.OrderID = &orderID
	}
	return d
}

func toDecimal(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	return &d
}
