package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Decision 每次策略评估的审计记录，只追加
type Decision struct {
	ID                   int64             `gorm:"column:id;primaryKey" json:"id"`
	StrategyID           int64             `gorm:"column:strategy_id;not null;index" json:"strategy_id"`
	MarketTicker         string            `gorm:"column:market_ticker;type:varchar(100);not null;default:''" json:"market_ticker"`
	Side                 string            `gorm:"column:side;type:varchar(10);not null" json:"side"`
	Action               string            `gorm:"column:action;type:varchar(10);not null;index" json:"action"`
	Reason               string            `gorm:"column:reason;type:text" json:"reason"`
	ContractPrice        *decimal.Decimal  `gorm:"column:contract_price;type:decimal(10,4)" json:"contract_price"`
	TimeRemainingSeconds *int              `gorm:"column:time_remaining_seconds" json:"time_remaining_seconds"`
	PortfolioCash        *decimal.Decimal  `gorm:"column:portfolio_cash;type:decimal(18,2)" json:"portfolio_cash"`
	PositionSize         *decimal.Decimal  `gorm:"column:position_size;type:decimal(18,2)" json:"position_size"`
	Contracts            *int              `gorm:"column:contracts" json:"contracts"`
	OrderID              *string           `gorm:"column:order_id;type:varchar(100)" json:"order_id"`
	Params               datatypes.JSONMap `gorm:"column:params" json:"params"`
	CreatedAt            time.Time         `gorm:"column:created_at;index" json:"created_at"`
}

func (Decision) TableName() string {
	return "decisions"
}
