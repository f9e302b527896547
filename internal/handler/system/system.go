package system

import (
	"github.com/gin-gonic/gin"
	"kalshitrader/internal/engine"
	"kalshitrader/internal/model"
	"kalshitrader/internal/stats"
	"kalshitrader/pkg/response"
)

// JobLister 调度器当前的任务
type JobLister interface {
	Jobs() []engine.JobInfo
}

type Handler struct {
	stats *stats.ApiStats
	jobs  JobLister
}

func NewHandler(apiStats *stats.ApiStats, jobs JobLister) *Handler {
	return &Handler{stats: apiStats, jobs: jobs}
}

func (h *Handler) Health() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		response.JSON(ctx, nil, model.HealthRes{Status: "ok"})
	}
}

// ApiStatsGet 交易所接口调用次数、失败次数和平均耗时
func (h *Handler) ApiStatsGet() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		response.JSON(ctx, nil, gin.H{
			"totals":    h.stats.Totals(),
			"endpoints": h.stats.Summary(),
		})
	}
}

func (h *Handler) JobsGet() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		response.JSON(ctx, nil, h.jobs.Jobs())
	}
}
