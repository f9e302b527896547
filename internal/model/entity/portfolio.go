package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioSnapshot 组合价值快照，单位美元
type PortfolioSnapshot struct {
	ID             int64           `gorm:"column:id;primaryKey" json:"id"`
	Cash           decimal.Decimal `gorm:"column:cash;type:decimal(18,2);not null" json:"cash"`
	PositionsValue decimal.Decimal `gorm:"column:positions_value;type:decimal(18,2);not null" json:"positions_value"`
	TotalValue     decimal.Decimal `gorm:"column:total_value;type:decimal(18,2);not null" json:"total_value"`
	CreatedAt      time.Time       `gorm:"column:created_at;index" json:"created_at"`
}

func (PortfolioSnapshot) TableName() string {
	return "portfolio_snapshots"
}
