// internal/service/promotion/domain/repository.go
package domain

import "context"

// CouponRepository 定义了优惠券的持久化接口。
type CouponRepository interface {
	FindByCode(ctx context.Context, tenantID, code string) (*Coupon, error)

	// IncrementUsage 原子地递增使用次数，带 used_count < usage_limit 守卫。
	// 守卫失败返回 ErrCouponExhausted，调用方所在的事务应整体回滚。
	// 只允许在下单事务内部调用。
	IncrementUsage(ctx context.Context, tenantID string, couponID int64) error
}
