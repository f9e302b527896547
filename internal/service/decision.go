package service

import (
	"context"

	"kalshitrader/internal/dao"
	"kalshitrader/internal/model"
	"kalshitrader/internal/model/entity"
)

var _ DecisionService = (*decisionService)(nil)

type DecisionService interface {
	DecisionList(ctx context.Context, req model.DecisionListReq) ([]entity.Decision, error)
	DecisionStats(ctx context.Context) (map[string]int64, error)
}

type decisionService struct {
	d dao.DecisionDao
}

func NewDecisionService(d dao.DecisionDao) *decisionService {
	return &decisionService{d: d}
}

func (s *decisionService) DecisionList(ctx context.Context, req model.DecisionListReq) ([]entity.Decision, error) {
	if req.Limit <= 0 {
		req.Limit = 100
	}
	rows, err := s.d.List(ctx, dao.DecisionFilter{Limit: req.Limit, Action: req.Action, StrategyID: req.StrategyID})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []entity.Decision{}
	}
	return rows, nil
}

func (s *decisionService) DecisionStats(ctx context.Context) (map[string]int64, error) {
	counts, err := s.d.CountByAction(ctx)
	if err != nil {
		return nil, err
	}
	if counts == nil {
		counts = map[string]int64{}
	}
	return counts, nil
}
