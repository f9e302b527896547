package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"kalshitrader/internal/consts"
	"kalshitrader/pkg/errors"
	"kalshitrader/pkg/errors/ecode"
)

// 代表响应给客户端的的一个消息结构，包括错误码，错误信息，响应数据
type ApiResponse struct {
	RequestId string      `json:"request_id"` // 请求的唯一ID
	Code      int         `json:"code"`       // 错误码 0表示无错误
	Message   string      `json:"message"`    // 提示信息
	Data      interface{} `json:"data"`       // 响应数据
}

// 发送json格式数据
func JSON(c *gin.Context, err error, data interface{}) {
	code, message := errors.DecodeErr(err)
	c.JSON(httpStatus(code), ApiResponse{
		RequestId: c.GetString(consts.RequestId),
		Code:      code,
		Message:   message,
		Data:      data,
	})
}

// 错误码映射到http状态码，其余业务错误按 400 处理
func httpStatus(code int) int {
	switch code {
	case ecode.Success:
		return http.StatusOK
	case ecode.NotFoundErr:
		return http.StatusNotFound
	case ecode.ConflictErr:
		return http.StatusConflict
	case ecode.RequireAuthErr:
		return http.StatusUnauthorized
	case ecode.UpstreamErr:
		return http.StatusBadGateway
	case ecode.Unknown:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// 请求参数错误，返回400
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ApiResponse{
		RequestId: c.GetString(consts.RequestId),
		Code:      ecode.ValidateErr,
		Message:   message,
		Data:      nil,
	})
}
