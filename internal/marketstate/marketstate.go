package marketstate

import (
	"context"
	"time"
)

// Snapshot 最近一次策略轮询观察到的市场状态，未观察到的字段为 nil
type Snapshot struct {
	Ticker           *string    `json:"ticker"`
	Title            *string    `json:"title"`
	YesPrice         *float64   `json:"yes_price"`
	NoPrice          *float64   `json:"no_price"`
	CloseTime        *string    `json:"close_time"`
	SecondsRemaining *int       `json:"seconds_remaining"`
	CheckedAt        *time.Time `json:"checked_at"`
}

// Observation 策略写入的一次观察，价格为 nil 表示尚未取到详情
type Observation struct {
	Ticker           string
	Title            string
	YesPrice         *float64
	NoPrice          *float64
	CloseTime        string
	SecondsRemaining int
}

func (o Observation) snapshot(at time.Time) Snapshot {
	ticker, title, closeTime, remaining := o.Ticker, o.Title, o.CloseTime, o.SecondsRemaining
	at = at.UTC()
	return Snapshot{
		Ticker:           &ticker,
		Title:            &title,
		YesPrice:         o.YesPrice,
		NoPrice:          o.NoPrice,
		CloseTime:        &closeTime,
		SecondsRemaining: &remaining,
		CheckedAt:        &at,
	}
}

// Publisher 策略侧只需要写入
type Publisher interface {
	Publish(ctx context.Context, o Observation) error
}

// Store 面板侧读取与订阅
type Store interface {
	Publisher
	Latest(ctx context.Context) (Snapshot, error)
	// Subscribe 返回的通道在 ctx 结束后关闭
	Subscribe(ctx context.Context) (<-chan Snapshot, error)
}

// Nop 丢弃所有写入
type Nop struct{}

func (Nop) Publish(context.Context, Observation) error { return nil }
