package domain

import "errors"

var (
	// ErrInvalidFormat 无法解析的货币对或日期格式
	ErrInvalidFormat = errors.New("invalid format")
	// ErrInvalidPair 货币对两端相同
	ErrInvalidPair = errors.New("invalid currency pair")
	// ErrInvalidQuote 报价不合法（bid > ask 或无法取倒数）
	ErrInvalidQuote = errors.New("invalid quote")
	// ErrValidationFailed 业务校验失败，未发起远程调用
	ErrValidationFailed = errors.New("validation failed")
	// ErrServiceUnavailable 远程调用重试耗尽或被中断
	ErrServiceUnavailable = errors.New("order service unavailable")
	// ErrRemoteRejected 远程服务返回明确的失败状态
	ErrRemoteRejected = errors.New("rejected by order service")
)
