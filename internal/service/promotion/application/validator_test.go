// internal/service/promotion/application/validator_test.go
package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"orderhub/internal/pkg/money"
	"orderhub/internal/service/promotion/domain"
	"orderhub/internal/service/promotion/infrastructure/rule"
)

type fakeCouponRepo struct {
	coupons map[string]*domain.Coupon
}

func (r *fakeCouponRepo) FindByCode(ctx context.Context, tenantID, code string) (*domain.Coupon, error) {
	coupon, ok := r.coupons[code]
	if !ok || coupon.TenantID != tenantID {
		return nil, domain.ErrCouponNotFound
	}
	cp := *coupon
	return &cp, nil
}

func (r *fakeCouponRepo) IncrementUsage(ctx context.Context, tenantID string, couponID int64) error {
	return nil
}

func newTestValidator(t *testing.T, coupons ...*domain.Coupon) *Validator {
	t.Helper()
	repo := &fakeCouponRepo{coupons: make(map[string]*domain.Coupon)}
	for _, c := range coupons {
		repo.coupons[c.Code] = c
	}
	engine, err := rule.NewCELRuleEngine()
	require.NoError(t, err)
	return NewValidator(repo, engine, otel.Tracer("test"))
}

func baseCoupon() *domain.Coupon {
	return &domain.Coupon{
		ID:         1,
		TenantID:   "tenant-1",
		Code:       "SALE10",
		Discount:   money.Amount(10000),
		UsageLimit: 100,
		ValidFrom:  time.Now().Add(-time.Hour),
		ValidTo:    time.Now().Add(time.Hour),
	}
}

func TestValidateHappyPath(t *testing.T) {
	v := newTestValidator(t, baseCoupon())

	result, err := v.Validate(context.Background(), "tenant-1", "SALE10", money.Amount(100000), "user-1", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.CouponID)
	assert.Equal(t, money.Amount(10000), result.Discount)
}

func TestValidateDiscountCappedAtSubtotal(t *testing.T) {
	v := newTestValidator(t, baseCoupon())

	result, err := v.Validate(context.Background(), "tenant-1", "SALE10", money.Amount(6000), "user-1", nil)
	require.NoError(t, err)
	assert.Equal(t, money.Amount(6000), result.Discount)
}

func TestValidateTypedFailures(t *testing.T) {
	ctx := context.Background()

	v := newTestValidator(t)
	_, err := v.Validate(ctx, "tenant-1", "NOPE", money.Amount(100000), "user-1", nil)
	assert.ErrorIs(t, err, domain.ErrCouponNotFound)

	// 租户隔离：别的租户的码等同于不存在
	v = newTestValidator(t, baseCoupon())
	_, err = v.Validate(ctx, "tenant-2", "SALE10", money.Amount(100000), "user-1", nil)
	assert.ErrorIs(t, err, domain.ErrCouponNotFound)

	notStarted := baseCoupon()
	notStarted.ValidFrom = time.Now().Add(time.Hour)
	notStarted.ValidTo = time.Now().Add(2 * time.Hour)
	v = newTestValidator(t, notStarted)
	_, err = v.Validate(ctx, "tenant-1", "SALE10", money.Amount(100000), "user-1", nil)
	assert.ErrorIs(t, err, domain.ErrCouponNotStarted)

	expired := baseCoupon()
	expired.ValidFrom = time.Now().Add(-2 * time.Hour)
	expired.ValidTo = time.Now().Add(-time.Hour)
	v = newTestValidator(t, expired)
	_, err = v.Validate(ctx, "tenant-1", "SALE10", money.Amount(100000), "user-1", nil)
	assert.ErrorIs(t, err, domain.ErrCouponExpired)

	exhausted := baseCoupon()
	exhausted.UsageLimit = 5
	exhausted.UsedCount = 5
	v = newTestValidator(t, exhausted)
	_, err = v.Validate(ctx, "tenant-1", "SALE10", money.Amount(100000), "user-1", nil)
	assert.ErrorIs(t, err, domain.ErrCouponExhausted)

	withMin := baseCoupon()
	withMin.MinOrderAmount = money.Amount(200000)
	v = newTestValidator(t, withMin)
	_, err = v.Validate(ctx, "tenant-1", "SALE10", money.Amount(100000), "user-1", nil)
	assert.ErrorIs(t, err, domain.ErrBelowMinAmount)
}

func TestValidateEligibilityRule(t *testing.T) {
	ctx := context.Background()
	coupon := baseCoupon()
	coupon.EligibilityRule = `subtotal >= 50000 && categoryIds.exists(c, c == "books")`
	v := newTestValidator(t, coupon)

	items := []Item{{SkuID: "sku-1", CategoryID: "books"}}
	result, err := v.Validate(ctx, "tenant-1", "SALE10", money.Amount(100000), "user-1", items)
	require.NoError(t, err)
	assert.Equal(t, money.Amount(10000), result.Discount)

	// 品类不满足规则
	items = []Item{{SkuID: "sku-2", CategoryID: "apparel"}}
	_, err = v.Validate(ctx, "tenant-1", "SALE10", money.Amount(100000), "user-1", items)
	assert.ErrorIs(t, err, domain.ErrCouponNotEligible)

	// 小计不满足规则
	items = []Item{{SkuID: "sku-1", CategoryID: "books"}}
	_, err = v.Validate(ctx, "tenant-1", "SALE10", money.Amount(40000), "user-1", items)
	assert.ErrorIs(t, err, domain.ErrCouponNotEligible)
}

func TestValidateBrokenRuleRejectsCoupon(t *testing.T) {
	coupon := baseCoupon()
	coupon.EligibilityRule = `this is not CEL`
	v := newTestValidator(t, coupon)

	_, err := v.Validate(context.Background(), "tenant-1", "SALE10", money.Amount(100000), "user-1", nil)
	assert.ErrorIs(t, err, domain.ErrCouponNotEligible)
}
