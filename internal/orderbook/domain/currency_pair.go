package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CurrencyPair 货币对，两端均为大写且去除空白，值类型可作为 map key
type CurrencyPair struct {
	ccy1 string
	ccy2 string
}

// NewCurrencyPair 创建货币对
func NewCurrencyPair(ccy1, ccy2 string) (CurrencyPair, error) {
	c1 := strings.ToUpper(strings.TrimSpace(ccy1))
	c2 := strings.ToUpper(strings.TrimSpace(ccy2))
	if c1 == "" || c2 == "" {
		return CurrencyPair{}, fmt.Errorf("%w: currency codes must not be blank (%q, %q)", ErrInvalidFormat, ccy1, ccy2)
	}
	if c1 == c2 {
		return CurrencyPair{}, fmt.Errorf("%w: currencies must differ, got %s/%s", ErrInvalidPair, c1, c2)
	}
	return CurrencyPair{ccy1: c1, ccy2: c2}, nil
}

// MustCurrencyPair 创建货币对，失败时 panic，仅用于常量初始化与测试
func MustCurrencyPair(ccy1, ccy2 string) CurrencyPair {
	p, err := NewCurrencyPair(ccy1, ccy2)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseCurrencyPair 解析 "EUR/USD" 或 "EURUSD"
func ParseCurrencyPair(s string) (CurrencyPair, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if strings.Contains(v, "/") {
		parts := strings.Split(v, "/")
		if len(parts) != 2 {
			return CurrencyPair{}, fmt.Errorf("%w: currency pair %q", ErrInvalidFormat, s)
		}
		return NewCurrencyPair(parts[0], parts[1])
	}
	// 无分隔符时必须恰好 6 个字母，按字符而非字节切分
	if utf8.RuneCountInString(v) == 6 && isLetters(v) {
		r := []rune(v)
		return NewCurrencyPair(string(r[:3]), string(r[3:]))
	}
	return CurrencyPair{}, fmt.Errorf("%w: currency pair %q, expected CCY1/CCY2 or CCY1CCY2", ErrInvalidFormat, s)
}

func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Ccy1 基础货币
func (p CurrencyPair) Ccy1() string { return p.ccy1 }

// Ccy2 计价货币
func (p CurrencyPair) Ccy2() string { return p.ccy2 }

// IsZero 是否为零值
func (p CurrencyPair) IsZero() bool { return p.ccy1 == "" && p.ccy2 == "" }

// Inverse 交换两端
func (p CurrencyPair) Inverse() CurrencyPair {
	return CurrencyPair{ccy1: p.ccy2, ccy2: p.ccy1}
}

// Matches 与 other 相同或互为倒数
func (p CurrencyPair) Matches(other CurrencyPair) bool {
	return p == other || p == other.Inverse()
}

// Contains 是否包含某个货币
func (p CurrencyPair) Contains(ccy string) bool {
	c := strings.ToUpper(strings.TrimSpace(ccy))
	return p.ccy1 == c || p.ccy2 == c
}

func (p CurrencyPair) String() string {
	return p.ccy1 + "/" + p.ccy2
}
