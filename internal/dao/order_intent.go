package dao

import (
	"context"

	"kalshitrader/internal/model/entity"
)

type OrderIntentDao interface {
	Create(ctx context.Context, intent *entity.OrderIntent) error
	MarkPlaced(ctx context.Context, id, orderID string) error
	MarkFailed(ctx context.Context, id, reason string) error
	// 仍为 pending 状态的意图，通常是下单过程中进程退出留下的
	ListPending(ctx context.Context) ([]entity.OrderIntent, error)
}
