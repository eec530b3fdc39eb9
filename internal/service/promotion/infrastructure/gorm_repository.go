// internal/service/promotion/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"orderhub/internal/pkg/money"
	"orderhub/internal/service/promotion/domain"
)

// CouponModel 对应数据库中的 coupons 表。
type CouponModel struct {
	ID              int64  `gorm:"primaryKey"`
	TenantID        string `gorm:"size:64;uniqueIndex:idx_coupon_tenant_code"`
	Code            string `gorm:"size:64;uniqueIndex:idx_coupon_tenant_code"`
	Discount        int64
	UsageLimit      int
	UsedCount       int
	ValidFrom       time.Time
	ValidTo         time.Time
	MinOrderAmount  int64
	EligibilityRule string `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (CouponModel) TableName() string {
	return "coupons"
}

// GormCouponRepository 是 CouponRepository 的 GORM 实现。
type GormCouponRepository struct {
	db *gorm.DB
}

func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

func (r *GormCouponRepository) FindByCode(ctx context.Context, tenantID, code string) (*domain.Coupon, error) {
	var model CouponModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, errors.Wrap(err, "find coupon by code")
	}

	return &domain.Coupon{
		ID:              model.ID,
		TenantID:        model.TenantID,
		Code:            model.Code,
		Discount:        money.Amount(model.Discount),
		UsageLimit:      model.UsageLimit,
		UsedCount:       model.UsedCount,
		ValidFrom:       model.ValidFrom,
		ValidTo:         model.ValidTo,
		MinOrderAmount:  money.Amount(model.MinOrderAmount),
		EligibilityRule: model.EligibilityRule,
	}, nil
}

// IncrementUsage 的守卫条件 used_count < usage_limit 写在 UPDATE 里：
// 两个并发下单争抢最后一次使用额度时，行锁让它们串行，后到者影响零行。
func (r *GormCouponRepository) IncrementUsage(ctx context.Context, tenantID string, couponID int64) error {
	result := r.db.WithContext(ctx).Model(&CouponModel{}).
		Where("tenant_id = ? AND id = ? AND used_count < usage_limit", tenantID, couponID).
		Update("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return errors.Wrap(result.Error, "increment coupon usage")
	}
	if result.RowsAffected == 0 {
		return domain.ErrCouponExhausted
	}
	return nil
}
