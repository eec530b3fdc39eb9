// internal/service/promotion/application/validator.go
package application

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"orderhub/internal/pkg/logger"
	"orderhub/internal/pkg/money"
	"orderhub/internal/service/promotion/domain"
)

// Item 是参与校验的订单条目视图。
type Item struct {
	SkuID      string
	CategoryID string
}

// ValidationResult 是一次成功校验的产出：一个算出来的折扣，尚未应用。
// usedCount 的递增是调用方在下单事务内的义务。
type ValidationResult struct {
	CouponID int64
	Code     string
	Discount money.Amount
}

// Validator 实现优惠券校验用例。校验是纯读操作，不产生任何写入。
type Validator struct {
	coupons domain.CouponRepository
	rules   domain.RuleEngine
	tracer  trace.Tracer
	now     func() time.Time
}

func NewValidator(coupons domain.CouponRepository, rules domain.RuleEngine, tracer trace.Tracer) *Validator {
	return &Validator{coupons: coupons, rules: rules, tracer: tracer, now: time.Now}
}

// Validate 按租户规则评估优惠码，返回计算出的折扣或一个类型化失败。
func (v *Validator) Validate(ctx context.Context, tenantID, code string, subtotal money.Amount, userID string, items []Item) (*ValidationResult, error) {
	ctx, span := v.tracer.Start(ctx, "promotion.Validate")
	defer span.End()
	span.SetAttributes(
		attribute.String("coupon.code", code),
		attribute.String("tenant.id", tenantID),
	)

	coupon, err := v.coupons.FindByCode(ctx, tenantID, code)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := coupon.CanApply(v.now(), subtotal); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if coupon.EligibilityRule != "" {
		fact := domain.Fact{
			Subtotal: subtotal.Int64(),
			UserID:   userID,
		}
		for _, item := range items {
			fact.SkuIDs = append(fact.SkuIDs, item.SkuID)
			fact.CategoryIDs = append(fact.CategoryIDs, item.CategoryID)
		}

		ok, err := v.rules.Evaluate(coupon.EligibilityRule, fact)
		if err != nil {
			// 规则本身有问题时拒绝应用，而不是放行一个可疑的折扣
			span.RecordError(err)
			logger.Ctx(ctx).Warn().Err(err).Str("coupon", code).Msg("coupon eligibility rule evaluation failed")
			return nil, domain.ErrCouponNotEligible
		}
		if !ok {
			return nil, domain.ErrCouponNotEligible
		}
	}

	return &ValidationResult{
		CouponID: coupon.ID,
		Code:     coupon.Code,
		Discount: coupon.EffectiveDiscount(subtotal),
	}, nil
}
