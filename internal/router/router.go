package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"kalshitrader/internal/handler/decision"
	"kalshitrader/internal/handler/market"
	"kalshitrader/internal/handler/portfolio"
	"kalshitrader/internal/handler/strategy"
	"kalshitrader/internal/handler/system"
)

type ApiRouter struct {
	portfolioHandler *portfolio.Handler
	strategyHandler  *strategy.Handler
	decisionHandler  *decision.Handler
	marketHandler    *market.Handler
	systemHandler    *system.Handler
	gatherer         prometheus.Gatherer
}

func NewApiRouter(ph *portfolio.Handler, sh *strategy.Handler, dh *decision.Handler, mh *market.Handler, sys *system.Handler, gatherer prometheus.Gatherer) *ApiRouter {
	return &ApiRouter{
		portfolioHandler: ph,
		strategyHandler:  sh,
		decisionHandler:  dh,
		marketHandler:    mh,
		systemHandler:    sys,
		gatherer:         gatherer,
	}
}

func (api *ApiRouter) Load(g *gin.Engine) {
	if api.gatherer != nil {
		g.GET("/metrics", gin.WrapH(promhttp.HandlerFor(api.gatherer, promhttp.HandlerOpts{})))
	}

	base := g.Group("/api")
	base.GET("/health", api.systemHandler.Health())
	base.GET("/api-stats", api.systemHandler.ApiStatsGet())
	base.GET("/jobs", api.systemHandler.JobsGet())

	p := base.Group("/portfolio")
	{
		// 实时余额和持仓
		p.GET("", api.portfolioHandler.PortfolioGet())
		p.GET("/history", api.portfolioHandler.PortfolioHistoryGet())
	}

	s := base.Group("/strategies")
	{
		s.GET("", api.strategyHandler.StrategyList())
		s.POST("", api.strategyHandler.StrategyCreate())
		s.PATCH("/:id", api.strategyHandler.StrategyUpdate())
		s.DELETE("/:id", api.strategyHandler.StrategyDelete())
	}

	d := base.Group("/decisions")
	{
		d.GET("", api.decisionHandler.DecisionList())
		d.GET("/stats", api.decisionHandler.DecisionStats())
	}

	base.GET("/markets/:series", api.marketHandler.MarketList())
	base.GET("/market-state", api.marketHandler.MarketStateGet())
	base.GET("/market-state/ws", api.marketHandler.ServeWS) // 通过websocket推送市场状态
}
