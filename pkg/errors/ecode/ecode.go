package ecode

// 业务错误码，0表示成功
const (
	Success        = 0
	Unknown        = 10000
	ValidateErr    = 10001
	NotFoundErr    = 10004
	RequireAuthErr = 10401
	ConflictErr    = 10409
	UpstreamErr    = 10502
)

var messages = map[int]string{
	Success:        "success",
	Unknown:        "unknown error",
	ValidateErr:    "invalid parameters",
	NotFoundErr:    "resource not found",
	RequireAuthErr: "authentication required",
	ConflictErr:    "resource conflict",
	UpstreamErr:    "venue request failed",
}

// Text 返回错误码对应的默认描述
func Text(code int) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return messages[Unknown]
}
