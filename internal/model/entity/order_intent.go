package entity

import "time"

// OrderIntent 下单前写入的意图记录，下单后更新状态
type OrderIntent struct {
	ID         string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	StrategyID int64     `gorm:"column:strategy_id;not null;index" json:"strategy_id"`
	Ticker     string    `gorm:"column:ticker;type:varchar(100);not null" json:"ticker"`
	Side       string    `gorm:"column:side;type:varchar(10);not null" json:"side"`
	Count      int       `gorm:"column:count;not null" json:"count"`
	PriceCents int       `gorm:"column:price_cents;not null" json:"price_cents"`
	Status     string    `gorm:"column:status;type:varchar(20);not null;index" json:"status"` // pending/placed/failed
	OrderID    string    `gorm:"column:order_id;type:varchar(100)" json:"order_id"`
	Error      string    `gorm:"column:error;type:text" json:"error"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (OrderIntent) TableName() string {
	return "order_intents"
}

// All 需要自动迁移的表
func All() []any {
	return []any{&Strategy{}, &Decision{}, &PortfolioSnapshot{}, &OrderIntent{}}
}
