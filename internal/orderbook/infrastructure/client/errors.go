package client

import (
	"fmt"

	"github.com/wyfcoding/fxorderbook/internal/orderbook/domain"
)

const maxErrorBody = 256

// StatusError 订单服务返回非 2xx 状态
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func newStatusError(op string, code int, body []byte) *StatusError {
	b := string(body)
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody] + "..."
	}
	return &StatusError{Operation: op, StatusCode: code, Body: b}
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// Is 使 errors.Is(err, domain.ErrRemoteRejected) 成立
func (e *StatusError) Is(target error) bool {
	return target == domain.ErrRemoteRejected
}
