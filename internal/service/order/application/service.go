// internal/service/order/application/service.go
package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"orderhub/internal/pkg/logger"
	"orderhub/internal/pkg/money"
	inventorydomain "orderhub/internal/service/inventory/domain"
	"orderhub/internal/service/order/domain"
	"orderhub/internal/service/order/domain/port"
	promotionapp "orderhub/internal/service/promotion/application"
)

var (
	ordersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Number of orders successfully placed.",
	})
	ordersRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_rejected_total",
		Help: "Number of order placements rejected before commit.",
	}, []string{"reason"})
)

// Service 是订单引擎的应用服务，编排下单、取消与承运商回调三个用例。
type Service struct {
	uow     domain.UnitOfWork
	orders  domain.OrderRepository
	stock   inventorydomain.StockRepository
	numbers domain.NumberGenerator

	validator  *promotionapp.Validator
	carrierFee port.CarrierFeeService
	payments   port.PaymentGateway

	defaultShippingFee money.Amount
	tracer             trace.Tracer
}

// NewService 组装应用服务。orders/stock 是事务外的只读仓储，
// 所有写入都经由 uow 的事务上下文。
func NewService(
	uow domain.UnitOfWork,
	orders domain.OrderRepository,
	stock inventorydomain.StockRepository,
	numbers domain.NumberGenerator,
	validator *promotionapp.Validator,
	carrierFee port.CarrierFeeService,
	payments port.PaymentGateway,
	defaultShippingFee money.Amount,
	tracer trace.Tracer,
) *Service {
	return &Service{
		uow: uow, orders: orders, stock: stock, numbers: numbers,
		validator: validator, carrierFee: carrierFee, payments: payments,
		defaultShippingFee: defaultShippingFee, tracer: tracer,
	}
}

// PlaceOrder 把一个购物车变成一张持久化、库存一致的订单。
//
// 校验、定价、运费都发生在事务之外；订单写入、库存预占、券核销、
// 清购物车与 outbox 写入在一个事务内原子完成；支付网关调用在
// 事务提交之后，失败不回滚订单。
func (s *Service) PlaceOrder(ctx context.Context, cmd *PlaceOrderCommand) (*PlaceOrderResult, error) {
	ctx, span := s.tracer.Start(ctx, "order.PlaceOrder")
	defer span.End()
	span.SetAttributes(
		attribute.String("tenant.id", cmd.TenantID),
		attribute.String("user.id", cmd.UserID),
		attribute.Int("order.item_count", len(cmd.Items)),
	)

	// 1. 条目校验与 SKU 批量加载，任何一个条目不合法都整单拒绝
	skus, err := s.loadAndCheckSkus(ctx, cmd)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order validation failed")
		return nil, err
	}

	// 2. 构造条目快照并用整数货币运算累计小计
	items := make([]domain.OrderItem, 0, len(cmd.Items))
	subtotal := money.Zero
	for _, line := range cmd.Items {
		sku := skus[line.SkuID]
		item, err := domain.NewOrderItem(sku.SkuID, sku.SkuCode, sku.ProductName, sku.Price, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("sku %s: %w", line.SkuID, err)
		}
		items = append(items, item)
		subtotal = subtotal.Add(item.Subtotal)
	}

	// 3. 优惠券：校验失败不阻断结账，只是放弃折扣
	discount := money.Zero
	appliedCoupon := int64(0)
	couponCode := ""
	if cmd.CouponCode != "" {
		promoItems := make([]promotionapp.Item, 0, len(items))
		for _, item := range items {
			promoItems = append(promoItems, promotionapp.Item{
				SkuID:      item.SkuID,
				CategoryID: skus[item.SkuID].CategoryID,
			})
		}
		result, err := s.validator.Validate(ctx, cmd.TenantID, cmd.CouponCode, subtotal, cmd.UserID, promoItems)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).
				Str("coupon", cmd.CouponCode).
				Msg("coupon rejected, proceeding without discount")
			span.AddEvent("coupon rejected, checkout continues without discount")
		} else {
			discount = result.Discount
			appliedCoupon = result.CouponID
			couponCode = result.Code
		}
	}

	// 4. 运费：协作方失败回落到默认运费
	address := domain.Address{
		RecipientName: cmd.RecipientName,
		PhoneNumber:   cmd.PhoneNumber,
		Line:          cmd.AddressLine,
		DistrictID:    cmd.DistrictID,
		WardCode:      cmd.WardCode,
	}
	shippingFee, err := s.carrierFee.CalculateFee(ctx, address.DistrictID, address.WardCode)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("carrier fee lookup failed, using default fee")
		span.AddEvent("carrier fee lookup failed, default fee applied")
		shippingFee = s.defaultShippingFee
	}

	// 5. 生成订单号并构造聚合
	orderNumber, err := s.numbers.Next(ctx, cmd.TenantID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("generate order number: %w", err)
	}

	order, err := domain.NewOrder(domain.NewOrderParams{
		ID:              uuid.New().String(),
		TenantID:        cmd.TenantID,
		OrderNumber:     orderNumber,
		CustomerID:      cmd.UserID,
		CustomerEmail:   cmd.CustomerEmail,
		Items:           items,
		ShippingAddress: address,
		PaymentMethod:   paymentMethod(cmd.PaymentMethod),
		ShippingFee:     shippingFee,
		CouponDiscount:  discount,
		CouponCode:      couponCode,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 6. 单事务：订单 + 库存 + 券 + 购物车 + outbox，全有或全无
	err = s.uow.WithinTx(ctx, func(tx domain.TxContext) error {
		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}
		for _, item := range order.Items {
			if err := tx.Stock().Reserve(ctx, order.TenantID, item.SkuID, item.Quantity); err != nil {
				return err
			}
		}
		if appliedCoupon != 0 {
			if err := tx.Coupons().IncrementUsage(ctx, order.TenantID, appliedCoupon); err != nil {
				return err
			}
		}
		skuIDs := make([]string, 0, len(order.Items))
		for _, item := range order.Items {
			skuIDs = append(skuIDs, item.SkuID)
		}
		if err := tx.Carts().RemoveItems(ctx, order.TenantID, order.CustomerID, skuIDs); err != nil {
			return err
		}
		return tx.Outbox().Create(ctx, mustEvent(order.TenantID, order.ID, domain.EventTypeOrderCreated, newOrderCreatedEvent(order)))
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "placement transaction rolled back")
		ordersRejected.WithLabelValues(rejectReason(err)).Inc()
		return nil, err
	}

	ordersPlaced.Inc()
	span.AddEvent("order committed")
	logger.Ctx(ctx).Info().
		Str("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Int64("total", order.Total.Int64()).
		Msg("order placed")

	// 7. 事务之外的支付调用：失败只表现为缺少支付链接
	paymentURL := ""
	if order.PaymentMethod != domain.PaymentMethodCOD {
		result, err := s.payments.Process(ctx, port.PaymentRequest{
			OrderID:   order.ID,
			Amount:    order.Total.Int64(),
			Method:    string(order.PaymentMethod),
			ReturnURL: cmd.ReturnURL,
		})
		if err != nil || !result.Success {
			logger.Ctx(ctx).Warn().Err(err).
				Str("order_id", order.ID).
				Msg("payment gateway unavailable, order stands without payment url")
			span.AddEvent("payment gateway call failed after commit")
		} else {
			paymentURL = result.PaymentURL
		}
	}

	return &PlaceOrderResult{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		TotalAmount: order.Total.Int64(),
		PaymentURL:  paymentURL,
	}, nil
}

// loadAndCheckSkus 批量加载 SKU 并做存在性/状态/余量预检。
// 预检不能代替事务内的原子扣减，只是尽早给出明确的拒绝理由。
func (s *Service) loadAndCheckSkus(ctx context.Context, cmd *PlaceOrderCommand) (map[string]*inventorydomain.Sku, error) {
	if len(cmd.Items) == 0 {
		return nil, domain.ErrEmptyItems
	}

	skuIDs := make([]string, 0, len(cmd.Items))
	for _, line := range cmd.Items {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("sku %s: %w", line.SkuID, domain.ErrInvalidQuantity)
		}
		skuIDs = append(skuIDs, line.SkuID)
	}

	skus, err := s.stock.GetBySkuIDs(ctx, cmd.TenantID, skuIDs)
	if err != nil {
		return nil, err
	}
	bySkuID := make(map[string]*inventorydomain.Sku, len(skus))
	for _, sku := range skus {
		bySkuID[sku.SkuID] = sku
	}

	for _, line := range cmd.Items {
		sku, ok := bySkuID[line.SkuID]
		if !ok {
			return nil, fmt.Errorf("sku %s: %w", line.SkuID, inventorydomain.ErrSkuNotFound)
		}
		if !sku.IsActive() {
			return nil, fmt.Errorf("sku %s: %w", line.SkuID, inventorydomain.ErrSkuInactive)
		}
		if sku.Stock < line.Quantity {
			return nil, fmt.Errorf("sku %s: %w", line.SkuID, inventorydomain.ErrInsufficientStock)
		}
	}
	return bySkuID, nil
}

// CancelOrder 执行买家侧取消：状态流转、库存归还与取消事件在一个事务内完成。
func (s *Service) CancelOrder(ctx context.Context, tenantID, orderID, userID, reason string) error {
	ctx, span := s.tracer.Start(ctx, "order.CancelOrder")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", orderID),
		attribute.String("user.id", userID),
	)

	err := s.uow.WithinTx(ctx, func(tx domain.TxContext) error {
		order, err := tx.Orders().FindByID(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if order.CustomerID != userID {
			return domain.ErrNotOrderOwner
		}
		return s.cancelInTx(ctx, tx, order, reason)
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	logger.Ctx(ctx).Info().Str("order_id", orderID).Msg("order cancelled")
	return nil
}

// AdminCancelOrder 是管理侧取消入口，必须给出原因。
// 状态机约束与买家侧一致：只有 PENDING/PROCESSING 可以取消。
func (s *Service) AdminCancelOrder(ctx context.Context, tenantID, orderID, reason string) error {
	ctx, span := s.tracer.Start(ctx, "order.AdminCancelOrder")
	defer span.End()

	if reason == "" {
		return fmt.Errorf("admin cancellation requires a reason")
	}

	err := s.uow.WithinTx(ctx, func(tx domain.TxContext) error {
		order, err := tx.Orders().FindByID(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		return s.cancelInTx(ctx, tx, order, reason)
	})
	if err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// cancelInTx 是两个取消入口共享的事务内逻辑。
// 优惠券使用次数不随取消回退。
func (s *Service) cancelInTx(ctx context.Context, tx domain.TxContext, order *domain.Order, reason string) error {
	if err := order.CancelByCustomer(reason); err != nil {
		return err
	}
	for _, item := range order.Items {
		if err := tx.Stock().Release(ctx, order.TenantID, item.SkuID, item.Quantity); err != nil {
			return err
		}
	}
	if err := tx.Orders().Update(ctx, order); err != nil {
		return err
	}
	return tx.Outbox().Create(ctx, mustEvent(order.TenantID, order.ID, domain.EventTypeOrderCancelled, newOrderCancelledEvent(order, reason)))
}

// GetOrder 查询单个订单。
func (s *Service) GetOrder(ctx context.Context, tenantID, orderID string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.GetOrder")
	defer span.End()
	return s.orders.FindByID(ctx, tenantID, orderID)
}

func paymentMethod(raw string) domain.PaymentMethod {
	if raw == "" || raw == string(domain.PaymentMethodCOD) {
		return domain.PaymentMethodCOD
	}
	return domain.PaymentMethodGateway
}

func rejectReason(err error) string {
	switch {
	case isErr(err, inventorydomain.ErrInsufficientStock):
		return "insufficient_stock"
	default:
		return "transaction_failed"
	}
}
