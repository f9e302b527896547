package kalshi

import "fmt"

const maxErrorBody = 512

// APIError 交易所返回非 2xx 状态码
type APIError struct {
	Label      string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return fmt.Sprintf("kalshi %s: status %d: %s", e.Label, e.StatusCode, body)
}
