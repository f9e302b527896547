package api

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"gorm.io/gorm"
	"kalshitrader/conf"
	"kalshitrader/internal/dao/query"
	"kalshitrader/internal/engine"
	"kalshitrader/internal/exchange"
	"kalshitrader/internal/exchange/kalshi"
	"kalshitrader/internal/handler/decision"
	"kalshitrader/internal/handler/market"
	"kalshitrader/internal/handler/portfolio"
	strategyh "kalshitrader/internal/handler/strategy"
	"kalshitrader/internal/handler/system"
	"kalshitrader/internal/marketstate"
	"kalshitrader/internal/recorder"
	"kalshitrader/internal/router"
	"kalshitrader/internal/service"
	"kalshitrader/internal/stats"
	"kalshitrader/internal/strategy"
	"kalshitrader/pkg/cache"
	"kalshitrader/pkg/kafka"
	"kalshitrader/pkg/logger"
)

// App 组装好的交易服务
type App struct {
	router     *router.ApiRouter
	scheduler  *engine.Scheduler
	strategies service.StrategyService
	pending    func(ctx context.Context) (int, error)
	seed       bool
	closers    []func() error
}

var _ Lifecycle = (*App)(nil)

func InitApp(ctx context.Context, cfg *conf.Config, db *gorm.DB) (*App, error) {
	app := &App{seed: cfg.Engine.SeedDefault}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	apiStats := stats.NewApiStats()
	if err := apiStats.Register(reg); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	gateway, err := newGateway(cfg.Kalshi, apiStats)
	if err != nil {
		return nil, err
	}

	// 市场状态：开启 redis 时多实例共享
	var store marketstate.Store = marketstate.NewMemoryStore()
	if cfg.Redis.Enabled {
		client, err := cache.InitRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		store = marketstate.NewRedisStore(client, cfg.Redis.MarketKey)
		app.closers = append(app.closers, cache.CloseRedis)
	}

	var publishers []recorder.Publisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Broker, cfg.Kafka.DecisionTopic)
		publishers = append(publishers, producer)
		app.closers = append(app.closers, producer.Close)
	}
	if cfg.Engine.DecisionLog != "" {
		sink, err := recorder.NewJSONFileSink(cfg.Engine.DecisionLog)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, sink)
		app.closers = append(app.closers, sink.Close)
	}

	strategyDao := query.NewStrategyDao(db)
	decisionDao := query.NewDecisionDao(db)
	portfolioDao := query.NewPortfolioDao(db)
	intentDao := query.NewOrderIntentDao(db)

	registry := strategy.NewDefaultRegistry()
	env := strategy.Env{Gateway: gateway, Market: store}
	runner := engine.NewRunner(registry, env, intentDao, recorder.New(decisionDao, publishers...))
	app.scheduler = engine.NewScheduler(strategyDao, registry, runner, engine.NewSnapshotter(gateway, portfolioDao), cfg.Engine.SnapshotInterval)

	app.strategies = service.NewStrategyService(strategyDao, registry, app.scheduler)
	app.pending = func(ctx context.Context) (int, error) {
		rows, err := intentDao.ListPending(ctx)
		for _, r := range rows {
			logger.Warn("order intent left pending by a previous run",
				logger.Pair("intent_id", r.ID),
				logger.Pair("strategy_id", r.StrategyID),
				logger.Pair("ticker", r.Ticker),
				logger.Pair("created_at", r.CreatedAt))
		}
		return len(rows), err
	}

	app.router = router.NewApiRouter(
		portfolio.NewHandler(service.NewPortfolioService(gateway, portfolioDao)),
		strategyh.NewHandler(app.strategies),
		decision.NewHandler(service.NewDecisionService(decisionDao)),
		market.NewHandler(service.NewMarketService(gateway, store)),
		system.NewHandler(apiStats, app.scheduler),
		reg,
	)
	return app, nil
}

// newGateway paper 模式使用真实行情和模拟成交
func newGateway(cfg conf.Kalshi, rec kalshi.CallRecorder) (exchange.Gateway, error) {
	key, err := cfg.PrivateKey()
	if err != nil {
		return nil, err
	}
	signer := kalshi.NewSigner(cfg.ApiKeyID, key)
	client, err := kalshi.NewClient(cfg.URL(), signer,
		kalshi.WithRecorder(rec),
		kalshi.WithTimeout(cfg.Timeout),
		kalshi.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
	)
	if err != nil {
		return nil, err
	}
	logger.Info("kalshi gateway",
		logger.Pair("env", cfg.Env),
		logger.Pair("base_url", client.BaseURL()),
		logger.Pair("signed", signer.Signed()))

	if cfg.Env == conf.KalshiEnvPaper {
		return exchange.NewPaperExchange(client, cfg.PaperBalance), nil
	}
	return client, nil
}

func (a *App) Router() Router {
	return a.router
}

// Start 写入默认策略，加载任务并开始调度
func (a *App) Start(ctx context.Context) error {
	if a.seed {
		if err := a.strategies.SeedDefault(ctx); err != nil {
			return fmt.Errorf("failed to seed default strategy: %w", err)
		}
	}
	if n, err := a.pending(ctx); err != nil {
		logger.Error("list pending order intents failed", logger.Err(err))
	} else if n > 0 {
		logger.Warnf("%d order intents need manual reconciliation", n)
	}
	if err := a.scheduler.Reload(ctx); err != nil {
		return err
	}
	a.scheduler.Start()
	return nil
}

// Stop 停止调度，进行中的评估随根 context 取消，可重复调用
func (a *App) Stop() {
	a.scheduler.Stop()
}

// Close 释放外部连接
func (a *App) Close() error {
	a.scheduler.Stop()
	var err error
	for _, c := range a.closers {
		err = multierr.Append(err, c())
	}
	return err
}
