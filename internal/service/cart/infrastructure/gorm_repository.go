// internal/service/cart/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// CartItemModel 对应数据库中的 cart_items 表。
type CartItemModel struct {
	ID       uint   `gorm:"primaryKey"`
	TenantID string `gorm:"size:64;index:idx_cart_tenant_user"`
	UserID   string `gorm:"size:64;index:idx_cart_tenant_user"`
	SkuID    string `gorm:"size:64"`
	Quantity int
	AddedAt  time.Time
}

func (CartItemModel) TableName() string {
	return "cart_items"
}

// GormCartRepository 是 CartRepository 的 GORM 实现。
type GormCartRepository struct {
	db *gorm.DB
}

func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

func (r *GormCartRepository) RemoveItems(ctx context.Context, tenantID, userID string, skuIDs []string) error {
	if len(skuIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ? AND sku_id IN ?", tenantID, userID, skuIDs).
		Delete(&CartItemModel{}).Error
	return errors.Wrap(err, "remove purchased items from cart")
}
