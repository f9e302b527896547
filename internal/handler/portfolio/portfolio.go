package portfolio

import (
	"github.com/gin-gonic/gin"
	"kalshitrader/internal/model"
	"kalshitrader/internal/service"
	"kalshitrader/pkg/errors"
	"kalshitrader/pkg/errors/ecode"
	"kalshitrader/pkg/response"
)

type Handler struct {
	service service.PortfolioService
}

func NewHandler(service service.PortfolioService) *Handler {
	return &Handler{service: service}
}

// PortfolioGet 实时余额和持仓
func (h *Handler) PortfolioGet() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res, err := h.service.Portfolio(ctx)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

func (h *Handler) PortfolioHistoryGet() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.HistoryReq
		if err := ctx.ShouldBindQuery(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, err.Error()), nil)
			return
		}
		res, err := h.service.History(ctx, req.Limit)
		response.JSON(ctx, err, res)
	}
}
