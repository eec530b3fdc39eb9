// internal/service/inventory/domain/repository.go
package domain

import "context"

// StockRepository 定义了库存预占的持久化契约。
// Reserve/Release 必须是单条原子语句，并运行在下单/取消的事务内：
// 并发扣减同一 SKU 时依赖数据库的行锁串行化，保证库存永不为负。
type StockRepository interface {
	// GetBySkuIDs 批量加载 SKU，用于下单前的存在性与状态校验。
	GetBySkuIDs(ctx context.Context, tenantID string, skuIDs []string) ([]*Sku, error)

	// Reserve 原子地检查并扣减库存，库存不足返回 ErrInsufficientStock。
	Reserve(ctx context.Context, tenantID, skuID string, quantity int) error

	// Release 原子地归还库存，用于取消订单。
	Release(ctx context.Context, tenantID, skuID string, quantity int) error
}
