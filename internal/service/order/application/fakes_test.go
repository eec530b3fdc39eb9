// internal/service/order/application/fakes_test.go
package application

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"orderhub/internal/outbox"
	"orderhub/internal/pkg/money"
	cartdomain "orderhub/internal/service/cart/domain"
	inventorydomain "orderhub/internal/service/inventory/domain"
	"orderhub/internal/service/order/domain"
	"orderhub/internal/service/order/domain/port"
	promotiondomain "orderhub/internal/service/promotion/domain"
)

// memState 是所有仓储共享的内存存储。
type memState struct {
	orders  map[string]*domain.Order
	stock   map[string]*inventorydomain.Sku
	coupons map[string]*promotiondomain.Coupon
	carts   map[string][]string
	events  []*outbox.Event
}

func newMemState() *memState {
	return &memState{
		orders:  make(map[string]*domain.Order),
		stock:   make(map[string]*inventorydomain.Sku),
		coupons: make(map[string]*promotiondomain.Coupon),
		carts:   make(map[string][]string),
	}
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Items = append([]domain.OrderItem(nil), o.Items...)
	c.StatusHistory = append([]domain.StatusChange(nil), o.StatusHistory...)
	return &c
}

func (s *memState) clone() *memState {
	c := newMemState()
	for id, o := range s.orders {
		c.orders[id] = cloneOrder(o)
	}
	for id, sku := range s.stock {
		cp := *sku
		c.stock[id] = &cp
	}
	for code, coupon := range s.coupons {
		cp := *coupon
		c.coupons[code] = &cp
	}
	for user, skus := range s.carts {
		c.carts[user] = append([]string(nil), skus...)
	}
	c.events = append([]*outbox.Event(nil), s.events...)
	return c
}

// fakeUnitOfWork 用"克隆-执行-替换"模拟事务：fn 在状态副本上运行，
// 出错时副本被丢弃，提交前的任何写入都不会泄漏到共享状态。
// 互斥锁同时起到行锁的作用，并发事务被串行化。
type fakeUnitOfWork struct {
	mu    sync.Mutex
	state *memState

	couponIncrementErr error
}

func newFakeUnitOfWork() *fakeUnitOfWork {
	return &fakeUnitOfWork{state: newMemState()}
}

func (u *fakeUnitOfWork) WithinTx(ctx context.Context, fn func(tx domain.TxContext) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	work := u.state.clone()
	if err := fn(&fakeTx{state: work, uow: u}); err != nil {
		return err
	}
	u.state = work
	return nil
}

// snapshot 在锁保护下读取当前共享状态，供测试断言使用。
func (u *fakeUnitOfWork) snapshot() *memState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state.clone()
}

// seed 在锁保护下修改共享状态，供测试布置场景使用。
func (u *fakeUnitOfWork) seed(fn func(s *memState)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fn(u.state)
}

type fakeTx struct {
	state *memState
	uow   *fakeUnitOfWork
}

func (t *fakeTx) Orders() domain.OrderRepository         { return &memOrderRepo{state: t.state} }
func (t *fakeTx) Stock() inventorydomain.StockRepository { return &memStockRepo{state: t.state} }
func (t *fakeTx) Carts() cartdomain.CartRepository       { return &memCartRepo{state: t.state} }
func (t *fakeTx) Outbox() outbox.Repository              { return &memOutboxRepo{state: t.state} }
func (t *fakeTx) Coupons() promotiondomain.CouponRepository {
	return &memCouponRepo{state: t.state, incrementErr: t.uow.couponIncrementErr}
}

type memOrderRepo struct {
	state *memState
}

func (r *memOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	r.state.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *memOrderRepo) FindByID(ctx context.Context, tenantID, id string) (*domain.Order, error) {
	order, ok := r.state.orders[id]
	if !ok || order.TenantID != tenantID {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (r *memOrderRepo) FindByShippingCode(ctx context.Context, shippingCode string) (*domain.Order, error) {
	for _, order := range r.state.orders {
		if order.ShippingCode == shippingCode {
			return cloneOrder(order), nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *memOrderRepo) Update(ctx context.Context, order *domain.Order) error {
	if _, ok := r.state.orders[order.ID]; !ok {
		return domain.ErrOrderNotFound
	}
	r.state.orders[order.ID] = cloneOrder(order)
	return nil
}

type memStockRepo struct {
	state *memState
}

func (r *memStockRepo) GetBySkuIDs(ctx context.Context, tenantID string, skuIDs []string) ([]*inventorydomain.Sku, error) {
	skus := make([]*inventorydomain.Sku, 0, len(skuIDs))
	for _, id := range skuIDs {
		if sku, ok := r.state.stock[id]; ok && sku.TenantID == tenantID {
			cp := *sku
			skus = append(skus, &cp)
		}
	}
	return skus, nil
}

func (r *memStockRepo) Reserve(ctx context.Context, tenantID, skuID string, quantity int) error {
	sku, ok := r.state.stock[skuID]
	if !ok {
		return fmt.Errorf("sku %s: %w", skuID, inventorydomain.ErrSkuNotFound)
	}
	if sku.Stock < quantity {
		return fmt.Errorf("sku %s: %w", skuID, inventorydomain.ErrInsufficientStock)
	}
	sku.Stock -= quantity
	return nil
}

func (r *memStockRepo) Release(ctx context.Context, tenantID, skuID string, quantity int) error {
	sku, ok := r.state.stock[skuID]
	if !ok {
		return fmt.Errorf("sku %s: %w", skuID, inventorydomain.ErrSkuNotFound)
	}
	sku.Stock += quantity
	return nil
}

type memCouponRepo struct {
	state        *memState
	incrementErr error
}

func (r *memCouponRepo) FindByCode(ctx context.Context, tenantID, code string) (*promotiondomain.Coupon, error) {
	coupon, ok := r.state.coupons[code]
	if !ok || coupon.TenantID != tenantID {
		return nil, promotiondomain.ErrCouponNotFound
	}
	cp := *coupon
	return &cp, nil
}

func (r *memCouponRepo) IncrementUsage(ctx context.Context, tenantID string, couponID int64) error {
	if r.incrementErr != nil {
		return r.incrementErr
	}
	for _, coupon := range r.state.coupons {
		if coupon.ID == couponID {
			if coupon.UsedCount >= coupon.UsageLimit {
				return promotiondomain.ErrCouponExhausted
			}
			coupon.UsedCount++
			return nil
		}
	}
	return promotiondomain.ErrCouponNotFound
}

type memCartRepo struct {
	state *memState
}

func (r *memCartRepo) RemoveItems(ctx context.Context, tenantID, userID string, skuIDs []string) error {
	removed := make(map[string]bool, len(skuIDs))
	for _, id := range skuIDs {
		removed[id] = true
	}
	kept := r.state.carts[userID][:0]
	for _, id := range r.state.carts[userID] {
		if !removed[id] {
			kept = append(kept, id)
		}
	}
	r.state.carts[userID] = kept
	return nil
}

type memOutboxRepo struct {
	state *memState
}

func (r *memOutboxRepo) Create(ctx context.Context, event *outbox.Event) error {
	r.state.events = append(r.state.events, event)
	return nil
}

func (r *memOutboxRepo) FetchPending(ctx context.Context, limit int) ([]*outbox.Event, error) {
	var pending []*outbox.Event
	for _, event := range r.state.events {
		if event.Status == outbox.StatusPending && len(pending) < limit {
			pending = append(pending, event)
		}
	}
	return pending, nil
}

func (r *memOutboxRepo) MarkCompleted(ctx context.Context, ids []string) error {
	byID := make(map[string]bool, len(ids))
	for _, id := range ids {
		byID[id] = true
	}
	for _, event := range r.state.events {
		if byID[event.ID] {
			event.Status = outbox.StatusCompleted
		}
	}
	return nil
}

func (r *memOutboxRepo) PurgeCompleted(ctx context.Context, olderThan time.Time) (int64, error) {
	return 0, nil
}

// sharedOrderRepo / sharedStockRepo 是事务之外的读仓储，
// 与 fakeUnitOfWork 共享同一把锁。
type sharedOrderRepo struct {
	uow *fakeUnitOfWork
}

func (r *sharedOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	return (&memOrderRepo{state: r.uow.state}).Create(ctx, order)
}

func (r *sharedOrderRepo) FindByID(ctx context.Context, tenantID, id string) (*domain.Order, error) {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	return (&memOrderRepo{state: r.uow.state}).FindByID(ctx, tenantID, id)
}

func (r *sharedOrderRepo) FindByShippingCode(ctx context.Context, shippingCode string) (*domain.Order, error) {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	return (&memOrderRepo{state: r.uow.state}).FindByShippingCode(ctx, shippingCode)
}

func (r *sharedOrderRepo) Update(ctx context.Context, order *domain.Order) error {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	return (&memOrderRepo{state: r.uow.state}).Update(ctx, order)
}

type sharedStockRepo struct {
	uow *fakeUnitOfWork
}

func (r *sharedStockRepo) GetBySkuIDs(ctx context.Context, tenantID string, skuIDs []string) ([]*inventorydomain.Sku, error) {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	return (&memStockRepo{state: r.uow.state}).GetBySkuIDs(ctx, tenantID, skuIDs)
}

func (r *sharedStockRepo) Reserve(ctx context.Context, tenantID, skuID string, quantity int) error {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	return (&memStockRepo{state: r.uow.state}).Reserve(ctx, tenantID, skuID, quantity)
}

func (r *sharedStockRepo) Release(ctx context.Context, tenantID, skuID string, quantity int) error {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	return (&memStockRepo{state: r.uow.state}).Release(ctx, tenantID, skuID, quantity)
}

type sharedCouponRepo struct {
	uow *fakeUnitOfWork
}

func (r *sharedCouponRepo) FindByCode(ctx context.Context, tenantID, code string) (*promotiondomain.Coupon, error) {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	return (&memCouponRepo{state: r.uow.state}).FindByCode(ctx, tenantID, code)
}

func (r *sharedCouponRepo) IncrementUsage(ctx context.Context, tenantID string, couponID int64) error {
	r.uow.mu.Lock()
	defer r.uow.mu.Unlock()
	return (&memCouponRepo{state: r.uow.state}).IncrementUsage(ctx, tenantID, couponID)
}

// fakeNumberGenerator 生成进程内单调的订单号。
type fakeNumberGenerator struct {
	seq int64
}

func (g *fakeNumberGenerator) Next(ctx context.Context, tenantID string) (string, error) {
	return fmt.Sprintf("ORD-TEST-%06d", atomic.AddInt64(&g.seq, 1)), nil
}

type fakeCarrierFee struct {
	fee money.Amount
	err error
}

func (f *fakeCarrierFee) CalculateFee(ctx context.Context, districtID int, wardCode string) (money.Amount, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.fee, nil
}

type fakePaymentGateway struct {
	mu       sync.Mutex
	requests []port.PaymentRequest

	result *port.PaymentResult
	err    error
}

func (f *fakePaymentGateway) Process(ctx context.Context, req port.PaymentRequest) (*port.PaymentResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &port.PaymentResult{Success: true, PaymentURL: "https://pay.example.com/" + req.OrderID}, nil
}

// stubRules 是规则引擎打桩，CEL 求值本身在 promotion 包的测试中覆盖。
type stubRules struct {
	ok  bool
	err error
}

func (s *stubRules) Evaluate(rule string, fact promotiondomain.Fact) (bool, error) {
	return s.ok, s.err
}
