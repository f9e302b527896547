package errors

import (
	stderrors "errors"
	"fmt"

	"kalshitrader/pkg/errors/ecode"
)

// Err 带错误码的业务错误，用于接口响应
type Err struct {
	Code    int
	Message string
	cause   error
}

func (e *Err) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("code=%d, message=%s", e.Code, e.Message)
	}
	return fmt.Sprintf("code=%d, message=%s, cause=%v", e.Code, e.Message, e.cause)
}

func (e *Err) Unwrap() error {
	return e.cause
}

// WithCode 创建一个带错误码的错误
func WithCode(code int, message string) error {
	if message == "" {
		message = ecode.Text(code)
	}
	return &Err{Code: code, Message: message}
}

// Wrap 包装底层错误并附加错误码
func Wrap(err error, code int, message string) error {
	if err == nil {
		return nil
	}
	if message == "" {
		message = err.Error()
	}
	return &Err{Code: code, Message: message, cause: err}
}

// DecodeErr 解析出错误码和提示信息
func DecodeErr(err error) (int, string) {
	if err == nil {
		return ecode.Success, ecode.Text(ecode.Success)
	}
	var e *Err
	if stderrors.As(err, &e) {
		return e.Code, e.Message
	}
	return ecode.Unknown, err.Error()
}
