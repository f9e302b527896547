package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"kalshitrader/internal/consts"
	"kalshitrader/internal/model/entity"
	"kalshitrader/internal/stats"
	"kalshitrader/internal/strategy"
	"kalshitrader/pkg/logger"
)

const (
	JobKindStrategy = "strategy"
	JobKindSnapshot = "snapshot"
)

// DefinitionSource 读取启用的策略定义
type DefinitionSource interface {
	ListEnabled(ctx context.Context) ([]entity.Strategy, error)
}

type StrategyRunner interface {
	Run(ctx context.Context, def entity.Strategy) (*entity.Decision, error)
}

type PortfolioSnapshotter interface {
	Snapshot(ctx context.Context) error
}

type JobInfo struct {
	ID              string  `json:"id"`
	Kind            string  `json:"kind"`
	StrategyID      int64   `json:"strategy_id,omitempty"`
	Name            string  `json:"name"`
	IntervalSeconds float64 `json:"interval_seconds"`
	Running         bool    `json:"running"`
}

type job struct {
	info     JobInfo
	interval time.Duration
	guard    *atomic.Bool
	run      func(ctx context.Context)
	cancel   context.CancelFunc
}

// Scheduler 每个策略一个定时任务，同一策略同时只允许一次评估
type Scheduler struct {
	source           DefinitionSource
	registry         *strategy.Registry
	runner           StrategyRunner
	snapshotter      PortfolioSnapshotter
	snapshotInterval time.Duration

	mu     sync.Mutex
	jobs   map[string]*job
	guards map[int64]*atomic.Bool // 按策略 id 保存，reload 后保留
	snap   *atomic.Bool
	root   context.Context
	cancel context.CancelFunc
}

func NewScheduler(source DefinitionSource, registry *strategy.Registry, runner StrategyRunner, snapshotter PortfolioSnapshotter, snapshotInterval time.Duration) *Scheduler {
	if snapshotInterval <= 0 {
		snapshotInterval = 60 * time.Second
	}
	return &Scheduler{
		source:           source,
		registry:         registry,
		runner:           runner,
		snapshotter:      snapshotter,
		snapshotInterval: snapshotInterval,
		jobs:             make(map[string]*job),
		guards:           make(map[int64]*atomic.Bool),
		snap:             &atomic.Bool{},
	}
}

func strategyJobID(id int64) string {
	return fmt.Sprintf("%s%d", consts.StrategyJobPrefix, id)
}

// Reload 按数据库中启用的策略重建任务集合
func (s *Scheduler) Reload(ctx context.Context) error {
	defs, err := s.source.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("failed to load enabled strategies: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[string]struct{}, len(defs)+1)
	for _, def := range defs {
		factory, ok := s.registry.Lookup(def.Name)
		if !ok {
			logger.Warn("no registered strategy for definition, skipped",
				logger.Pair("strategy_id", def.ID),
				logger.Pair("name", def.Name))
			continue
		}
		id := strategyJobID(def.ID)
		wanted[id] = struct{}{}
		s.removeLocked(id)
		s.addLocked(s.strategyJob(def, factory.PollInterval))
	}

	if s.snapshotter != nil {
		wanted[consts.SnapshotJobID] = struct{}{}
		if _, ok := s.jobs[consts.SnapshotJobID]; !ok {
			s.addLocked(s.snapshotJob())
		}
	}

	for id := range s.jobs {
		if _, ok := wanted[id]; !ok {
			s.removeLocked(id)
		}
	}

	logger.Info("scheduler reloaded", logger.Pair("jobs", len(s.jobs)))
	return nil
}

func (s *Scheduler) strategyJob(def entity.Strategy, interval time.Duration) *job {
	guard, ok := s.guards[def.ID]
	if !ok {
		guard = &atomic.Bool{}
		s.guards[def.ID] = guard
	}
	return &job{
		info: JobInfo{
			ID:              strategyJobID(def.ID),
			Kind:            JobKindStrategy,
			StrategyID:      def.ID,
			Name:            def.Name,
			IntervalSeconds: interval.Seconds(),
		},
		interval: interval,
		guard:    guard,
		run: func(ctx context.Context) {
			if _, err := s.runner.Run(ctx, def); err != nil {
				if errors.Is(err, ErrUnknownStrategy) {
					logger.Warn("strategy run skipped", logger.Pair("strategy_id", def.ID), logger.Err(err))
					return
				}
				logger.Error("strategy run failed", logger.Pair("strategy_id", def.ID), logger.Err(err))
			}
		},
	}
}

func (s *Scheduler) snapshotJob() *job {
	return &job{
		info: JobInfo{
			ID:              consts.SnapshotJobID,
			Kind:            JobKindSnapshot,
			Name:            consts.SnapshotJobID,
			IntervalSeconds: s.snapshotInterval.Seconds(),
		},
		interval: s.snapshotInterval,
		guard:    s.snap,
		run: func(ctx context.Context) {
			if err := s.snapshotter.Snapshot(ctx); err != nil {
				logger.Error("portfolio snapshot failed", logger.Err(err))
			}
		},
	}
}

func (s *Scheduler) addLocked(j *job) {
	s.jobs[j.info.ID] = j
	if s.root != nil {
		s.startLocked(j)
	}
}

func (s *Scheduler) removeLocked(id string) {
	if j, ok := s.jobs[id]; ok {
		if j.cancel != nil {
			j.cancel()
		}
		delete(s.jobs, id)
	}
}

func (s *Scheduler) startLocked(j *job) {
	ctx, cancel := context.WithCancel(s.root)
	j.cancel = cancel
	go s.loop(ctx, s.root, j)
}

// Start 开始计时，第一次触发在一个周期之后
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.root != nil {
		return
	}
	s.root, s.cancel = context.WithCancel(context.Background())
	for _, j := range s.jobs {
		s.startLocked(j)
	}
	logger.Info("scheduler started", logger.Pair("jobs", len(s.jobs)))
}

// Stop 取消根 context，不等待正在执行的评估
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.root, s.cancel = nil, nil
	for _, j := range s.jobs {
		j.cancel = nil
	}
	logger.Info("scheduler stopped")
}

// loop 的 ctx 随任务移除而取消；评估使用 runCtx，reload 不会打断进行中的下单
func (s *Scheduler) loop(ctx, runCtx context.Context, j *job) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.dispatch(runCtx, j)
		}
	}
}

func (s *Scheduler) dispatch(ctx context.Context, j *job) {
	if !j.guard.CompareAndSwap(false, true) {
		stats.TicksDroppedTotal.WithLabelValues(j.info.ID).Inc()
		logger.Debug("tick dropped, previous run still in flight", logger.Pair("job", j.info.ID))
		return
	}
	go func() {
		defer j.guard.Store(false)
		defer func() {
			if r := recover(); r != nil {
				stats.JobPanicsTotal.WithLabelValues(j.info.ID).Inc()
				logger.Error("scheduled job panic",
					logger.Pair("job", j.info.ID),
					logger.Pair("panic", r),
					logger.Pair("stack", string(debug.Stack())))
			}
		}()
		j.run(ctx)
	}()
}

// Jobs 当前任务列表，按 id 排序
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		info := j.info
		info.Running = j.guard.Load()
		out = append(out, info)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out
}
