package domain

import "time"

// Clock 时间来源
type Clock interface {
	Now() time.Time
}

// SystemClock 系统时钟
type SystemClock struct{}

// Now 当前时间
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock 固定时间
type FixedClock struct {
	T time.Time
}

// Now 返回固定时间
func (c FixedClock) Now() time.Time { return c.T }
