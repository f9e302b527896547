package service

import (
	"context"
	"errors"
	"maps"

	"gorm.io/datatypes"
	"kalshitrader/internal/dao"
	"kalshitrader/internal/model"
	"kalshitrader/internal/model/entity"
	"kalshitrader/internal/strategy"
	pkgerrors "kalshitrader/pkg/errors"
	"kalshitrader/pkg/errors/ecode"
	"kalshitrader/pkg/logger"
)

var _ StrategyService = (*strategyService)(nil)

// Reloader 策略定义变更后重建调度任务
type Reloader interface {
	Reload(ctx context.Context) error
}

type StrategyService interface {
	StrategyList(ctx context.Context) ([]model.StrategyRes, error)
	StrategyCreate(ctx context.Context, req model.StrategyCreateReq) (int64, error)
	StrategyUpdate(ctx context.Context, id int64, req model.StrategyUpdateReq) error
	StrategyDelete(ctx context.Context, id int64) error
	// 表为空时写入默认策略（禁用状态）
	SeedDefault(ctx context.Context) error
}

type strategyService struct {
	d        dao.StrategyDao
	registry *strategy.Registry
	reloader Reloader
}

func NewStrategyService(d dao.StrategyDao, registry *strategy.Registry, reloader Reloader) *strategyService {
	return &strategyService{d: d, registry: registry, reloader: reloader}
}

func (s *strategyService) StrategyList(ctx context.Context) ([]model.StrategyRes, error) {
	rows, err := s.d.List(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]model.StrategyRes, 0, len(rows))
	for _, r := range rows {
		item := model.StrategyRes{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			Enabled:     r.Enabled,
			Config:      map[string]any(r.Config),
			CreatedAt:   r.CreatedAt,
		}
		if item.Config == nil {
			item.Config = map[string]any{}
		}
		if f, ok := s.registry.Lookup(r.Name); ok {
			item.HasClass = true
			secs := f.PollInterval.Seconds()
			item.PollIntervalSeconds = &secs
		}
		res = append(res, item)
	}
	return res, nil
}

func (s *strategyService) StrategyCreate(ctx context.Context, req model.StrategyCreateReq) (int64, error) {
	if req.Name == "" {
		return 0, pkgerrors.WithCode(ecode.ValidateErr, "name is required")
	}
	row := &entity.Strategy{
		Name:        req.Name,
		Description: req.Description,
		Enabled:     req.Enabled == nil || *req.Enabled,
		Config:      datatypes.JSONMap(maps.Clone(req.Config)),
	}
	if row.Config == nil {
		row.Config = datatypes.JSONMap{}
	}

	if err := s.d.Create(ctx, row); err != nil {
		if errors.Is(err, dao.ErrDuplicate) {
			return 0, pkgerrors.Wrap(err, ecode.ConflictErr, "strategy name already exists")
		}
		return 0, err
	}
	s.reload(ctx)
	return row.ID, nil
}

func (s *strategyService) StrategyUpdate(ctx context.Context, id int64, req model.StrategyUpdateReq) error {
	row, err := s.d.GetByID(ctx, id)
	if errors.Is(err, dao.ErrNotFound) {
		return pkgerrors.WithCode(ecode.NotFoundErr, "Strategy not found")
	}
	if err != nil {
		return err
	}

	if req.Enabled != nil {
		row.Enabled = *req.Enabled
	}
	if req.Config != nil {
		row.Config = datatypes.JSONMap(maps.Clone(req.Config))
	}
	if req.Description != nil {
		row.Description = *req.Description
	}
	if err := s.d.Update(ctx, row); err != nil {
		return err
	}
	s.reload(ctx)
	return nil
}

func (s *strategyService) StrategyDelete(ctx context.Context, id int64) error {
	err := s.d.Delete(ctx, id)
	if errors.Is(err, dao.ErrNotFound) {
		return pkgerrors.WithCode(ecode.NotFoundErr, "Strategy not found")
	}
	if err != nil {
		return err
	}
	s.reload(ctx)
	return nil
}

func (s *strategyService) SeedDefault(ctx context.Context) error {
	n, err := s.d.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	f, ok := s.registry.Lookup(strategy.HighConfidenceName)
	if !ok {
		return nil
	}
	row := &entity.Strategy{
		Name:        f.Name,
		Description: f.Description,
		Enabled:     false,
		Config:      datatypes.JSONMap{},
	}
	if f.DefaultConfig != nil {
		row.Config = datatypes.JSONMap(f.DefaultConfig())
	}
	if err := s.d.Create(ctx, row); err != nil {
		return err
	}
	logger.Info("seeded default strategy", logger.Pair("name", row.Name), logger.Pair("id", row.ID))
	return nil
}

// 写库已经成功，重建失败只记录日志
func (s *strategyService) reload(ctx context.Context) {
	if s.reloader == nil {
		return
	}
	if err := s.reloader.Reload(ctx); err != nil {
		logger.Error("reload scheduler failed", logger.Err(err))
	}
}
