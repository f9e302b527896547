package ping

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Ping 启动自检使用
func Ping() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "\r\nSuccess")
	}
}
