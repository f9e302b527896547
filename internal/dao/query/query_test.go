package query

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"kalshitrader/internal/consts"
	"kalshitrader/internal/dao"
	"kalshitrader/internal/model/entity"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "trader.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestStrategyCreateDuplicateName(t *testing.T) {
	ctx := context.Background()
	d := NewStrategyDao(newTestDB(t))

	require.NoError(t, d.Create(ctx, &entity.Strategy{Name: "btc", Enabled: true, Config: datatypes.JSONMap{}}))
	err := d.Create(ctx, &entity.Strategy{Name: "btc", Config: datatypes.JSONMap{}})
	assert.ErrorIs(t, err, dao.ErrDuplicate)
}

func TestStrategyUpdateWritesZeroValues(t *testing.T) {
	ctx := context.Background()
	d := NewStrategyDao(newTestDB(t))

	s := &entity.Strategy{
		Name:        "btc",
		Enabled:     true,
		Description: "first",
		Config:      datatypes.JSONMap{"position_pct": 0.05},
	}
	require.NoError(t, d.Create(ctx, s))

	enabled, err := d.ListEnabled(ctx)
	require.NoError(t, err)
	require.Len(t, enabled, 1)

	s.Enabled = false
	s.Description = ""
	s.Config = datatypes.JSONMap{"position_pct": 0.1}
	require.NoError(t, d.Update(ctx, s))

	got, err := d.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, got.Enabled)
	assert.Empty(t, got.Description)
	assert.Equal(t, 0.1, got.Config["position_pct"])

	enabled, err = d.ListEnabled(ctx)
	require.NoError(t, err)
	assert.Empty(t, enabled)
}

func TestStrategySoftDelete(t *testing.T) {
	ctx := context.Background()
	d := NewStrategyDao(newTestDB(t))

	s := &entity.Strategy{Name: "btc", Enabled: true, Config: datatypes.JSONMap{}}
	require.NoError(t, d.Create(ctx, s))
	require.NoError(t, d.Create(ctx, &entity.Strategy{Name: "eth", Config: datatypes.JSONMap{}}))

	require.NoError(t, d.Delete(ctx, s.ID))
	assert.ErrorIs(t, d.Delete(ctx, s.ID), dao.ErrNotFound)
	assert.ErrorIs(t, d.Delete(ctx, 999), dao.ErrNotFound)

	_, err := d.GetByID(ctx, s.ID)
	assert.ErrorIs(t, err, dao.ErrNotFound)

	rows, err := d.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "eth", rows[0].Name)

	enabled, err := d.ListEnabled(ctx)
	require.NoError(t, err)
	assert.Empty(t, enabled)

	n, err := d.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// 软删除后名称仍占用唯一索引
	err = d.Create(ctx, &entity.Strategy{Name: "btc", Config: datatypes.JSONMap{}})
	assert.ErrorIs(t, err, dao.ErrDuplicate)
}

func TestDecisionListAndCount(t *testing.T) {
	ctx := context.Background()
	d := NewDecisionDao(newTestDB(t))

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	price := decimal.RequireFromString("0.95")
	for i, row := range []struct {
		strategyID int64
		action     string
	}{
		{1, consts.ActionSkip},
		{1, consts.ActionBuy},
		{2, consts.ActionSkip},
		{1, consts.ActionError},
	} {
		require.NoError(t, d.Create(ctx, &entity.Decision{
			StrategyID:    row.strategyID,
			Side:          consts.SideUnknown,
			Action:        row.action,
			ContractPrice: &price,
			Params:        datatypes.JSONMap{"n": i},
			CreatedAt:     base.Add(time.Duration(i) * time.Second),
		}))
	}

	rows, err := d.List(ctx, dao.DecisionFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, consts.ActionError, rows[0].Action)
	assert.Equal(t, consts.ActionSkip, rows[3].Action)
	require.NotNil(t, rows[0].ContractPrice)
	assert.True(t, price.Equal(*rows[0].ContractPrice))

	rows, err = d.List(ctx, dao.DecisionFilter{Action: consts.ActionSkip})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = d.List(ctx, dao.DecisionFilter{StrategyID: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, consts.ActionError, rows[0].Action)
	assert.Equal(t, consts.ActionBuy, rows[1].Action)

	counts, err := d.CountByAction(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		consts.ActionSkip:  2,
		consts.ActionBuy:   1,
		consts.ActionError: 1,
	}, counts)
}

func TestPortfolioHistoryOldestFirst(t *testing.T) {
	ctx := context.Background()
	d := NewPortfolioDao(newTestDB(t))

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		total := decimal.NewFromInt(int64(100 + i))
		require.NoError(t, d.CreateSnapshot(ctx, &entity.PortfolioSnapshot{
			Cash:           total,
			PositionsValue: decimal.Zero,
			TotalValue:     total,
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}))
	}

	rows, err := d.History(ctx, 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	// 最近三条，按时间正序
	assert.True(t, decimal.NewFromInt(102).Equal(rows[0].TotalValue))
	assert.True(t, decimal.NewFromInt(104).Equal(rows[2].TotalValue))
	assert.True(t, rows[0].CreatedAt.Before(rows[2].CreatedAt))
}

func TestOrderIntentLifecycle(t *testing.T) {
	ctx := context.Background()
	d := NewOrderIntentDao(newTestDB(t))

	for _, id := range []string{"intent-a", "intent-b", "intent-c"} {
		require.NoError(t, d.Create(ctx, &entity.OrderIntent{
			ID:         id,
			StrategyID: 1,
			Ticker:     "KXBTC-A",
			Side:       consts.SideYes,
			Count:      3,
			PriceCents: 95,
			Status:     consts.IntentPending,
		}))
	}

	require.NoError(t, d.MarkPlaced(ctx, "intent-a", "order-1"))
	require.NoError(t, d.MarkFailed(ctx, "intent-b", "insufficient funds"))

	// 只有 pending 状态可以更新
	assert.ErrorIs(t, d.MarkFailed(ctx, "intent-a", "late"), dao.ErrNotFound)
	assert.ErrorIs(t, d.MarkPlaced(ctx, "missing", "order-2"), dao.ErrNotFound)

	pending, err := d.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "intent-c", pending[0].ID)
}
