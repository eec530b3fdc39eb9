// internal/service/order/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orderhub/internal/outbox"
	cartdomain "orderhub/internal/service/cart/domain"
	cartinfra "orderhub/internal/service/cart/infrastructure"
	inventorydomain "orderhub/internal/service/inventory/domain"
	inventoryinfra "orderhub/internal/service/inventory/infrastructure"
	"orderhub/internal/service/order/domain"
	promotiondomain "orderhub/internal/service/promotion/domain"
	promotioninfra "orderhub/internal/service/promotion/infrastructure"
)

// GormOrderRepository 是 OrderRepository 的 GORM 实现。
type GormOrderRepository struct {
	db        *gorm.DB
	forUpdate bool
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// newLockingOrderRepository 返回读取即加行锁的仓储，只在事务上下文内使用。
// 普通 SELECT 在可重复读隔离级别下不加锁，两次并发的取消
// （重复的承运商回调，或买家取消撞上承运商取消）会同时读到
// 旧状态、同时通过幂等检查、各归还一次库存。FOR UPDATE 让
// 后到的事务在行锁上排队，醒来后读到的是已提交的终态，
// 由幂等分支吸收。
func newLockingOrderRepository(tx *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: tx, forUpdate: true}
}

func (r *GormOrderRepository) query(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx)
	if r.forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	model, err := toOrderModel(order)
	if err != nil {
		return errors.Wrap(err, "map order to model")
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return errors.Wrap(err, "insert order")
	}
	return nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, tenantID, id string) (*domain.Order, error) {
	var model OrderModel
	err := r.query(ctx).Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "find order by id")
	}
	return toDomainOrder(&model)
}

func (r *GormOrderRepository) FindByShippingCode(ctx context.Context, shippingCode string) (*domain.Order, error) {
	var model OrderModel
	err := r.query(ctx).Preload("Items").
		Where("shipping_code = ?", shippingCode).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "find order by shipping code")
	}
	return toDomainOrder(&model)
}

// Update 只更新订单行本身，条目是不可变快照，创建后不再写。
func (r *GormOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	model, err := toOrderModel(order)
	if err != nil {
		return errors.Wrap(err, "map order to model")
	}
	err = r.db.WithContext(ctx).Model(&OrderModel{}).
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"status":         model.Status,
			"payment_status": model.PaymentStatus,
			"shipping_code":  model.ShippingCode,
			"carrier_status": model.CarrierStatus,
			"status_history": model.StatusHistory,
			"updated_at":     model.UpdatedAt,
		}).Error
	return errors.Wrap(err, "update order")
}

// GormUnitOfWork 用 GORM 的事务回调实现显式事务边界。
// fn 内通过 gormTxContext 拿到的所有仓储共享同一个事务句柄。
type GormUnitOfWork struct {
	db *gorm.DB
}

func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

func (u *GormUnitOfWork) WithinTx(ctx context.Context, fn func(tx domain.TxContext) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTxContext{tx: tx})
	})
}

type gormTxContext struct {
	tx *gorm.DB
}

func (c *gormTxContext) Orders() domain.OrderRepository {
	return newLockingOrderRepository(c.tx)
}

func (c *gormTxContext) Stock() inventorydomain.StockRepository {
	return inventoryinfra.NewGormStockRepository(c.tx)
}

func (c *gormTxContext) Coupons() promotiondomain.CouponRepository {
	return promotioninfra.NewGormCouponRepository(c.tx)
}

func (c *gormTxContext) Carts() cartdomain.CartRepository {
	return cartinfra.NewGormCartRepository(c.tx)
}

func (c *gormTxContext) Outbox() outbox.Repository {
	return outbox.NewGormRepository(c.tx)
}
