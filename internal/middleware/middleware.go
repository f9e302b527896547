package middleware

import (
	"github.com/gin-gonic/gin"
	"kalshitrader/internal/handler/ping"
)

// Middleware 全局中间件和 /ping，作为第一个 Router 加载
type Middleware struct{}

func NewMiddleware() *Middleware {
	return &Middleware{}
}

func (m *Middleware) Load(g *gin.Engine) {
	g.Use(gin.Recovery(), RequestId(), Logger, Options(), Secure(), NoCache())
	g.GET("/ping", ping.Ping())
}
