// internal/service/cart/domain/cart.go
package domain

import (
	"context"
	"time"
)

// CartItem 是购物车中的一个条目。
type CartItem struct {
	TenantID string
	UserID   string
	SkuID    string
	Quantity int
	AddedAt  time.Time
}

// CartRepository 定义了本引擎需要的购物车操作：
// 下单事务内把已购 SKU 从购物车移除。
type CartRepository interface {
	RemoveItems(ctx context.Context, tenantID, userID string, skuIDs []string) error
}
