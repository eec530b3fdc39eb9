// internal/service/inventory/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"orderhub/internal/pkg/money"
	"orderhub/internal/service/inventory/domain"
)

// SkuModel 对应数据库中的 skus 表。
type SkuModel struct {
	ID          uint   `gorm:"primaryKey"`
	TenantID    string `gorm:"size:64;uniqueIndex:idx_sku_tenant"`
	SkuID       string `gorm:"size:64;uniqueIndex:idx_sku_tenant"`
	SkuCode     string `gorm:"size:64"`
	ProductName string `gorm:"size:255"`
	CategoryID  string `gorm:"size:64"`
	Price       int64
	Stock       int
	Status      string `gorm:"size:16"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (SkuModel) TableName() string {
	return "skus"
}

// GormStockRepository 是 StockRepository 的 GORM 实现。
type GormStockRepository struct {
	db *gorm.DB
}

func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

func (r *GormStockRepository) GetBySkuIDs(ctx context.Context, tenantID string, skuIDs []string) ([]*domain.Sku, error) {
	var models []SkuModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sku_id IN ?", tenantID, skuIDs).
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "batch load skus")
	}

	skus := make([]*domain.Sku, 0, len(models))
	for i := range models {
		m := &models[i]
		skus = append(skus, &domain.Sku{
			TenantID:    m.TenantID,
			SkuID:       m.SkuID,
			SkuCode:     m.SkuCode,
			ProductName: m.ProductName,
			CategoryID:  m.CategoryID,
			Price:       money.Amount(m.Price),
			Stock:       m.Stock,
			Status:      domain.SkuStatus(m.Status),
		})
	}
	return skus, nil
}

// Reserve 用单条带条件的 UPDATE 实现"检查并扣减"：
// WHERE stock >= ? 保证计数器不会被扣成负数，
// 并发请求在行锁上排队，只有余量足够的那个会命中。
func (r *GormStockRepository) Reserve(ctx context.Context, tenantID, skuID string, quantity int) error {
	result := r.db.WithContext(ctx).Model(&SkuModel{}).
		Where("tenant_id = ? AND sku_id = ? AND stock >= ?", tenantID, skuID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return errors.Wrap(result.Error, "reserve stock")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("sku %s: %w", skuID, domain.ErrInsufficientStock)
	}
	return nil
}

func (r *GormStockRepository) Release(ctx context.Context, tenantID, skuID string, quantity int) error {
	result := r.db.WithContext(ctx).Model(&SkuModel{}).
		Where("tenant_id = ? AND sku_id = ?", tenantID, skuID).
		Update("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		return errors.Wrap(result.Error, "release stock")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("sku %s: %w", skuID, domain.ErrSkuNotFound)
	}
	return nil
}
