package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kalshitrader/internal/consts"
	"kalshitrader/internal/model/entity"
	"kalshitrader/internal/stats"
	"kalshitrader/internal/strategy"
)

type memSource struct {
	mu   sync.Mutex
	defs []entity.Strategy
}

func (m *memSource) ListEnabled(context.Context) ([]entity.Strategy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.Strategy(nil), m.defs...), nil
}

func (m *memSource) set(defs ...entity.Strategy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defs = defs
}

// countingRunner 记录调用次数和同一时刻的最大并发
type countingRunner struct {
	delay   time.Duration
	panicN  int32
	calls   atomic.Int32
	active  atomic.Int32
	maxSeen atomic.Int32
}

func (r *countingRunner) Run(ctx context.Context, def entity.Strategy) (*entity.Decision, error) {
	n := r.calls.Add(1)
	cur := r.active.Add(1)
	defer r.active.Add(-1)
	for {
		prev := r.maxSeen.Load()
		if cur <= prev || r.maxSeen.CompareAndSwap(prev, cur) {
			break
		}
	}
	if n <= r.panicN {
		panic("boom")
	}
	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
	}
	return &entity.Decision{StrategyID: def.ID}, nil
}

type countingSnapshotter struct{ calls atomic.Int32 }

func (c *countingSnapshotter) Snapshot(context.Context) error {
	c.calls.Add(1)
	return nil
}

func tickRegistry(t *testing.T, names ...string) *strategy.Registry {
	t.Helper()
	reg := strategy.NewRegistry()
	for _, name := range names {
		require.NoError(t, reg.Register(strategy.Factory{
			Name:         name,
			PollInterval: 10 * time.Millisecond,
			New: func(strategy.Config, strategy.Env) strategy.Strategy {
				return fixedStrategy{sig: strategy.Skip("noop")}
			},
		}))
	}
	return reg
}

func jobIDs(jobs []JobInfo) []string {
	ids := make([]string, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	return ids
}

func TestReloadBuildsJobSet(t *testing.T) {
	src := &memSource{}
	src.set(
		entity.Strategy{ID: 2, Name: "alpha", Enabled: true},
		entity.Strategy{ID: 1, Name: "alpha", Enabled: true},
		entity.Strategy{ID: 3, Name: "ghost", Enabled: true},
	)
	s := NewScheduler(src, tickRegistry(t, "alpha"), &countingRunner{}, &countingSnapshotter{}, time.Minute)

	require.NoError(t, s.Reload(context.Background()))
	jobs := s.Jobs()
	assert.Equal(t, []string{consts.SnapshotJobID, "strategy_1", "strategy_2"}, jobIDs(jobs))
	assert.Equal(t, JobKindSnapshot, jobs[0].Kind)
	assert.Equal(t, 60.0, jobs[0].IntervalSeconds)
	assert.Equal(t, int64(1), jobs[1].StrategyID)
	assert.Equal(t, 0.01, jobs[1].IntervalSeconds)
}

func TestReloadIsIdempotent(t *testing.T) {
	src := &memSource{}
	src.set(entity.Strategy{ID: 1, Name: "alpha", Enabled: true})
	s := NewScheduler(src, tickRegistry(t, "alpha"), &countingRunner{}, &countingSnapshotter{}, time.Minute)

	require.NoError(t, s.Reload(context.Background()))
	first := s.Jobs()
	require.NoError(t, s.Reload(context.Background()))
	assert.Equal(t, first, s.Jobs())
}

func TestReloadRemovesDisabled(t *testing.T) {
	src := &memSource{}
	src.set(
		entity.Strategy{ID: 1, Name: "alpha", Enabled: true},
		entity.Strategy{ID: 2, Name: "alpha", Enabled: true},
	)
	s := NewScheduler(src, tickRegistry(t, "alpha"), &countingRunner{}, nil, time.Minute)
	require.NoError(t, s.Reload(context.Background()))
	assert.Equal(t, []string{"strategy_1", "strategy_2"}, jobIDs(s.Jobs()))

	src.set(entity.Strategy{ID: 2, Name: "alpha", Enabled: true})
	require.NoError(t, s.Reload(context.Background()))
	assert.Equal(t, []string{"strategy_2"}, jobIDs(s.Jobs()))
}

func TestTicksCoalescePerStrategy(t *testing.T) {
	src := &memSource{}
	src.set(entity.Strategy{ID: 11, Name: "alpha", Enabled: true})
	runner := &countingRunner{delay: 80 * time.Millisecond}
	s := NewScheduler(src, tickRegistry(t, "alpha"), runner, nil, time.Minute)
	require.NoError(t, s.Reload(context.Background()))

	dropped := stats.TicksDroppedTotal.WithLabelValues("strategy_11")
	before := testutil.ToFloat64(dropped)

	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, runner.calls.Load(), int32(1))
	assert.Equal(t, int32(1), runner.maxSeen.Load())
	assert.Greater(t, testutil.ToFloat64(dropped), before)
}

func TestGuardSurvivesReload(t *testing.T) {
	src := &memSource{}
	src.set(entity.Strategy{ID: 12, Name: "alpha", Enabled: true})
	runner := &countingRunner{delay: 150 * time.Millisecond}
	s := NewScheduler(src, tickRegistry(t, "alpha"), runner, nil, time.Minute)
	require.NoError(t, s.Reload(context.Background()))

	s.Start()
	defer s.Stop()
	require.Eventually(t, func() bool { return runner.active.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Reload(context.Background()))
	assert.True(t, s.Jobs()[0].Running)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), runner.maxSeen.Load())
}

func TestStrategiesRunIndependently(t *testing.T) {
	src := &memSource{}
	src.set(
		entity.Strategy{ID: 21, Name: "alpha", Enabled: true},
		entity.Strategy{ID: 22, Name: "beta", Enabled: true},
	)
	runner := &countingRunner{delay: 100 * time.Millisecond}
	s := NewScheduler(src, tickRegistry(t, "alpha", "beta"), runner, nil, time.Minute)
	require.NoError(t, s.Reload(context.Background()))

	s.Start()
	defer s.Stop()
	require.Eventually(t, func() bool { return runner.maxSeen.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestPanicIsRecovered(t *testing.T) {
	src := &memSource{}
	src.set(entity.Strategy{ID: 31, Name: "alpha", Enabled: true})
	runner := &countingRunner{panicN: 1}
	s := NewScheduler(src, tickRegistry(t, "alpha"), runner, nil, time.Minute)
	require.NoError(t, s.Reload(context.Background()))

	panics := stats.JobPanicsTotal.WithLabelValues("strategy_31")
	before := testutil.ToFloat64(panics)

	s.Start()
	defer s.Stop()
	require.Eventually(t, func() bool { return runner.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(panics))
}

func TestStopHaltsTicks(t *testing.T) {
	src := &memSource{}
	src.set(entity.Strategy{ID: 41, Name: "alpha", Enabled: true})
	runner := &countingRunner{}
	snap := &countingSnapshotter{}
	s := NewScheduler(src, tickRegistry(t, "alpha"), runner, snap, 10*time.Millisecond)
	require.NoError(t, s.Reload(context.Background()))

	s.Start()
	require.Eventually(t, func() bool { return runner.calls.Load() >= 2 && snap.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()
	time.Sleep(30 * time.Millisecond)

	calls := runner.calls.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, calls, runner.calls.Load())
}

func TestFirstTickWaitsOneInterval(t *testing.T) {
	src := &memSource{}
	src.set(entity.Strategy{ID: 51, Name: "slow", Enabled: true})
	reg := strategy.NewRegistry()
	require.NoError(t, reg.Register(strategy.Factory{
		Name:         "slow",
		PollInterval: time.Hour,
		New: func(strategy.Config, strategy.Env) strategy.Strategy {
			return fixedStrategy{sig: strategy.Skip("noop")}
		},
	}))
	runner := &countingRunner{}
	s := NewScheduler(src, reg, runner, nil, time.Minute)
	require.NoError(t, s.Reload(context.Background()))

	s.Start()
	defer s.Stop()
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, runner.calls.Load())
}
