package market

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"kalshitrader/internal/service"
	"kalshitrader/pkg/errors"
	"kalshitrader/pkg/errors/ecode"
	"kalshitrader/pkg/logger"
	"kalshitrader/pkg/response"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

type Handler struct {
	service  service.MarketService
	upgrader websocket.Upgrader
}

func NewHandler(s service.MarketService) *Handler {
	return &Handler{
		service: s,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // 允许跨域
		},
	}
}

// MarketList 指定系列下的开放市场
func (h *Handler) MarketList() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		series := ctx.Param("series")
		if series == "" {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, "series is required"), nil)
			return
		}
		res, err := h.service.MarketList(ctx, series)
		response.JSON(ctx, err, res)
	}
}

func (h *Handler) MarketStateGet() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res, err := h.service.MarketState(ctx)
		response.JSON(ctx, err, res)
	}
}

// ServeWS 连接后先推送当前状态，之后每次策略轮询更新都推送一次
func (h *Handler) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("market state ws upgrade failed", logger.Err(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	updates, err := h.service.MarketStateSubscribe(ctx)
	if err != nil {
		logger.Error("market state subscribe failed", logger.Err(err))
		return
	}
	if latest, err := h.service.MarketState(ctx); err == nil {
		if err := writeJSON(conn, latest); err != nil {
			return
		}
	}

	// 只用来感知客户端断开
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := writeJSON(conn, snap); err != nil {
				logger.Debug("market state ws write failed", logger.Err(err))
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}
