// internal/service/order/domain/repository.go
package domain

import (
	"context"

	"orderhub/internal/outbox"
	cartdomain "orderhub/internal/service/cart/domain"
	inventorydomain "orderhub/internal/service/inventory/domain"
	promotiondomain "orderhub/internal/service/promotion/domain"
)

// OrderRepository 定义了订单聚合的持久化接口。
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, tenantID, id string) (*Order, error)
	FindByShippingCode(ctx context.Context, shippingCode string) (*Order, error)
	Update(ctx context.Context, order *Order) error
}

// TxContext 暴露绑定到同一个数据库事务的各仓储。
// 下单编排在一个 TxContext 内完成订单写入、库存扣减、
// 券核销、清购物车与 outbox 写入，要么全部提交要么全部回滚。
type TxContext interface {
	Orders() OrderRepository
	Stock() inventorydomain.StockRepository
	Coupons() promotiondomain.CouponRepository
	Carts() cartdomain.CartRepository
	Outbox() outbox.Repository
}

// UnitOfWork 是显式的事务边界。fn 返回 error 时整个事务回滚。
// 存储技术被隔离在实现里，编排层只依赖这个接口。
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(tx TxContext) error) error
}

// NumberGenerator 生成租户内唯一、人类可读的订单号。
type NumberGenerator interface {
	Next(ctx context.Context, tenantID string) (string, error)
}
