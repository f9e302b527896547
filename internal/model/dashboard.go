package model

import "time"

// 看板接口的请求和响应

type StrategyCreateReq struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Enabled     *bool          `json:"enabled"` // 缺省为 true
	Config      map[string]any `json:"config"`
}

// StrategyUpdateReq 字段为 nil 表示不修改
type StrategyUpdateReq struct {
	Enabled     *bool          `json:"enabled"`
	Config      map[string]any `json:"config"`
	Description *string        `json:"description"`
}

type StrategyRes struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Enabled     bool           `json:"enabled"`
	Config      map[string]any `json:"config"`
	// 注册表中是否存在同名实现
	HasClass            bool      `json:"has_class"`
	PollIntervalSeconds *float64  `json:"poll_interval_seconds"`
	CreatedAt           time.Time `json:"created_at"`
}

type StrategyCreateRes struct {
	Ok bool  `json:"ok"`
	ID int64 `json:"id"`
}

type OkRes struct {
	Ok bool `json:"ok"`
}

type PortfolioRes struct {
	Balance   int64      `json:"balance"` // 美分
	Positions []Position `json:"positions"`
}

type DecisionListReq struct {
	Limit      int    `form:"limit"`
	Action     string `form:"action"`
	StrategyID int64  `form:"strategy_id"`
}

type HistoryReq struct {
	Limit int `form:"limit"`
}

type HealthRes struct {
	Status string `json:"status"`
}
