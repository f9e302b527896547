package decision

import (
	"github.com/gin-gonic/gin"
	"kalshitrader/internal/model"
	"kalshitrader/internal/service"
	"kalshitrader/pkg/errors"
	"kalshitrader/pkg/errors/ecode"
	"kalshitrader/pkg/response"
)

type Handler struct {
	service service.DecisionService
}

func NewHandler(service service.DecisionService) *Handler {
	return &Handler{service: service}
}

// DecisionList 最新的在前，可按 action 过滤
func (h *Handler) DecisionList() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.DecisionListReq
		if err := ctx.ShouldBindQuery(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, err.Error()), nil)
			return
		}
		res, err := h.service.DecisionList(ctx, req)
		response.JSON(ctx, err, res)
	}
}

func (h *Handler) DecisionStats() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res, err := h.service.DecisionStats(ctx)
		response.JSON(ctx, err, res)
	}
}
