// internal/service/promotion/domain/coupon.go
package domain

import (
	"errors"
	"time"

	"orderhub/internal/pkg/money"
)

var (
	ErrCouponNotFound    = errors.New("coupon not found")
	ErrCouponNotStarted  = errors.New("coupon validity window has not started")
	ErrCouponExpired     = errors.New("coupon validity window has ended")
	ErrCouponExhausted   = errors.New("coupon usage limit reached")
	ErrBelowMinAmount    = errors.New("order subtotal below coupon minimum")
	ErrCouponNotEligible = errors.New("order items not eligible for coupon")
)

// Coupon 是租户配置的一张优惠券。
// 校验阶段只读，usedCount 的递增只发生在下单事务内部，
// 避免放弃结账的用户白白消耗有限的使用次数。
type Coupon struct {
	ID             int64
	TenantID       string
	Code           string
	Discount       money.Amount
	UsageLimit     int
	UsedCount      int
	ValidFrom      time.Time
	ValidTo        time.Time
	MinOrderAmount money.Amount

	// EligibilityRule 是可选的 CEL 表达式，对订单事实求值，
	// 用于表达品类/商品范围限制。空串表示无限制。
	EligibilityRule string
}

// CanApply 执行不依赖订单内容的校验：有效期、使用次数、最低门槛。
func (c *Coupon) CanApply(now time.Time, subtotal money.Amount) error {
	if now.Before(c.ValidFrom) {
		return ErrCouponNotStarted
	}
	if now.After(c.ValidTo) {
		return ErrCouponExpired
	}
	if c.UsedCount >= c.UsageLimit {
		return ErrCouponExhausted
	}
	if subtotal.LessThan(c.MinOrderAmount) {
		return ErrBelowMinAmount
	}
	return nil
}

// EffectiveDiscount 返回对给定小计实际可抵扣的金额。
// 折扣永远不超过小计，保证订单总额不为负。
func (c *Coupon) EffectiveDiscount(subtotal money.Amount) money.Amount {
	if subtotal.LessThan(c.Discount) {
		return subtotal
	}
	return c.Discount
}

// Fact 是规则引擎求值的订单事实。
type Fact struct {
	Subtotal    int64    `json:"subtotal"`
	UserID      string   `json:"userId"`
	SkuIDs      []string `json:"skuIds"`
	CategoryIDs []string `json:"categoryIds"`
}

// RuleEngine 抽象了券范围规则的求值方式，由基础设施层实现。
type RuleEngine interface {
	Evaluate(rule string, fact Fact) (bool, error)
}
