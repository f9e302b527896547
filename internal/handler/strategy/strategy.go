package strategy

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"kalshitrader/internal/model"
	"kalshitrader/internal/service"
	"kalshitrader/pkg/errors"
	"kalshitrader/pkg/errors/ecode"
	"kalshitrader/pkg/response"
)

type Handler struct {
	service service.StrategyService
}

func NewHandler(service service.StrategyService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) StrategyList() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res, err := h.service.StrategyList(ctx)
		response.JSON(ctx, err, res)
	}
}

func (h *Handler) StrategyCreate() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.StrategyCreateReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, err.Error()), nil)
			return
		}
		id, err := h.service.StrategyCreate(ctx, req)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, model.StrategyCreateRes{Ok: true, ID: id})
	}
}

func (h *Handler) StrategyUpdate() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, ok := strategyID(ctx)
		if !ok {
			return
		}
		var req model.StrategyUpdateReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, err.Error()), nil)
			return
		}
		if err := h.service.StrategyUpdate(ctx, id, req); err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, model.OkRes{Ok: true})
	}
}

func (h *Handler) StrategyDelete() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, ok := strategyID(ctx)
		if !ok {
			return
		}
		if err := h.service.StrategyDelete(ctx, id); err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, model.OkRes{Ok: true})
	}
}

func strategyID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.JSON(ctx, errors.WithCode(ecode.ValidateErr, "strategy id转换错误"), nil)
		return 0, false
	}
	return id, true
}
