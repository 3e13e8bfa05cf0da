package cli

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/fxorderbook/internal/orderbook/domain"
)

// maxOrderIDLength 订单 ID 最大长度
const maxOrderIDLength = 50

var (
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	orderIDPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// errUsage 参数个数或格式不符合命令用法
var errUsage = errors.New("usage")

// Command 一行输入解析后的命令
type Command struct {
	Name string
	Args []string
}

// ParseCommand 按空白切分，命令名不区分大小写；空行返回 false
func ParseCommand(line string) (Command, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, false
	}
	return Command{Name: strings.ToLower(fields[0]), Args: fields[1:]}, true
}

// NewOrderArgs new 命令参数
type NewOrderArgs struct {
	Side          domain.OrderSide
	InvestmentCcy string
	CounterCcy    string
	Limit         decimal.Decimal
	ValidUntil    string
}

// Order 构造待提交的订单
func (a NewOrderArgs) Order() *domain.Order {
	return domain.NewOrder(a.Side, a.InvestmentCcy, a.CounterCcy, a.Limit, a.ValidUntil)
}

// ParseNewOrderArgs 解析 new buy|sell <inv> <ctr> <limit> <dd.MM.yyyy>
func ParseNewOrderArgs(args []string, now time.Time) (NewOrderArgs, error) {
	if len(args) != 5 {
		return NewOrderArgs{}, fmt.Errorf("%w: new buy|sell <investmentCcy> <counterCcy> <limit> <dd.MM.yyyy>", errUsage)
	}

	side, err := domain.ParseOrderSide(args[0])
	if err != nil {
		return NewOrderArgs{}, err
	}
	inv, err := ValidateCurrency(args[1])
	if err != nil {
		return NewOrderArgs{}, err
	}
	ctr, err := ValidateCurrency(args[2])
	if err != nil {
		return NewOrderArgs{}, err
	}
	if inv == ctr {
		return NewOrderArgs{}, fmt.Errorf("%w: investment and counter currency must differ (%s)", domain.ErrInvalidPair, inv)
	}
	limit, err := ValidateLimit(args[3])
	if err != nil {
		return NewOrderArgs{}, err
	}
	validUntil, err := ValidateValidUntil(args[4], now)
	if err != nil {
		return NewOrderArgs{}, err
	}

	return NewOrderArgs{Side: side, InvestmentCcy: inv, CounterCcy: ctr, Limit: limit, ValidUntil: validUntil}, nil
}

// ValidateCurrency 三位字母货币代码，返回大写形式
func ValidateCurrency(s string) (string, error) {
	ccy := strings.ToUpper(strings.TrimSpace(s))
	if !currencyPattern.MatchString(ccy) {
		return "", fmt.Errorf("%w: currency %q must be a 3-letter code", domain.ErrInvalidFormat, s)
	}
	return ccy, nil
}

// ValidateLimit 正的十进制限价
func ValidateLimit(s string) (decimal.Decimal, error) {
	limit, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: limit %q is not a number", domain.ErrInvalidFormat, s)
	}
	if !limit.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: limit must be positive, got %s", domain.ErrValidationFailed, limit)
	}
	return limit, nil
}

// ValidateValidUntil dd.MM.yyyy 且不早于 now 所在日期
func ValidateValidUntil(s string, now time.Time) (string, error) {
	o := domain.Order{ValidUntil: strings.TrimSpace(s)}
	if _, err := o.ValidUntilDate(now.Location()); err != nil {
		return "", err
	}
	if !o.IsValidAt(now) {
		return "", fmt.Errorf("%w: valid until %s is in the past", domain.ErrValidationFailed, o.ValidUntil)
	}
	return o.ValidUntil, nil
}

// ValidateOrderID 1 到 50 个字母、数字、下划线或连字符
func ValidateOrderID(s string) (string, error) {
	id := strings.TrimSpace(s)
	if id == "" || len(id) > maxOrderIDLength || !orderIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: order id %q must be 1-%d characters of letters, digits, '_' or '-'",
			domain.ErrInvalidFormat, s, maxOrderIDLength)
	}
	return id, nil
}
