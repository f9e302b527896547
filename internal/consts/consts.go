package consts

const (
	// RequestId 请求id名称
	RequestId = "request_id"

	DateLayout   = "2006-01-02"
	TimeLayout   = "2006-01-02 15:04:05"
	TimeLayoutMs = "2006-01-02 15:04:05.000"
)

// 交易动作
const (
	ActionBuy   = "buy"
	ActionSkip  = "skip"
	ActionError = "error"
)

// 合约方向
const (
	SideYes     = "yes"
	SideNo      = "no"
	SideUnknown = "unknown"
)

// 订单意图状态
const (
	IntentPending = "pending"
	IntentPlaced  = "placed"
	IntentFailed  = "failed"
)

const (
	// SnapshotJobID 组合快照任务
	SnapshotJobID = "portfolio_snapshot"
	// StrategyJobPrefix 策略任务id前缀
	StrategyJobPrefix = "strategy_"
)
