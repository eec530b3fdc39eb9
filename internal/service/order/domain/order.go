// internal/service/order/domain/order.go
package domain

import (
	"time"

	"orderhub/internal/pkg/money"
)

// PaymentMethod 是下单时选择的支付方式。
type PaymentMethod string

const (
	PaymentMethodCOD     PaymentMethod = "COD"     // 货到付款
	PaymentMethodGateway PaymentMethod = "GATEWAY" // 在线支付网关
)

// PaymentStatus 是订单的支付状态。
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
	PaymentStatusPaid   PaymentStatus = "PAID"
)

// Address 是下单时刻的收货地址快照。
// DistrictID/WardCode 是承运商运费计算所需的目的地编码。
type Address struct {
	RecipientName string `json:"recipientName"`
	PhoneNumber   string `json:"phoneNumber"`
	Line          string `json:"line"`
	DistrictID    int    `json:"districtId"`
	WardCode      string `json:"wardCode"`
}

// OrderItem 是订单条目，下单时刻的不可变快照。
// 商品名称与编码在此定格，之后目录的任何编辑都不会改写历史订单。
type OrderItem struct {
	SkuID           string
	SkuCode         string
	ProductName     string
	PriceAtPurchase money.Amount
	Quantity        int
	Subtotal        money.Amount
}

// NewOrderItem 构造一个条目快照并计算小计。
func NewOrderItem(skuID, skuCode, productName string, price money.Amount, quantity int) (OrderItem, error) {
	if quantity <= 0 {
		return OrderItem{}, ErrInvalidQuantity
	}
	return OrderItem{
		SkuID:           skuID,
		SkuCode:         skuCode,
		ProductName:     productName,
		PriceAtPurchase: price,
		Quantity:        quantity,
		Subtotal:        price.MulQty(quantity),
	}, nil
}

// Order 是订单聚合的根实体。
// 订单一经创建永不删除，取消与退货都是状态而非删除。
type Order struct {
	ID            string
	TenantID      string
	OrderNumber   string
	CustomerID    string
	CustomerEmail string
	Items         []OrderItem

	ShippingAddress Address
	PaymentMethod   PaymentMethod

	Subtotal       money.Amount
	ShippingFee    money.Amount
	CouponDiscount money.Amount
	CouponCode     string
	Total          money.Amount

	Status        Status
	PaymentStatus PaymentStatus

	// ShippingCode 是承运商分配的运单号，webhook 用它定位订单。
	ShippingCode string
	// CarrierStatus 是最近一次收到的承运商原始状态串。
	CarrierStatus string

	StatusHistory []StatusChange

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrderParams 聚合工厂函数的全部输入。
type NewOrderParams struct {
	ID              string
	TenantID        string
	OrderNumber     string
	CustomerID      string
	CustomerEmail   string
	Items           []OrderItem
	ShippingAddress Address
	PaymentMethod   PaymentMethod
	ShippingFee     money.Amount
	CouponDiscount  money.Amount
	CouponCode      string
}

// NewOrder 创建一个处于 PENDING 状态的订单并计算总额。
// 不变量：total = subtotal - couponDiscount + shippingFee，
// 且 couponDiscount <= subtotal，因此 total 永不为负。
func NewOrder(p NewOrderParams) (*Order, error) {
	if len(p.Items) == 0 {
		return nil, ErrEmptyItems
	}

	subtotal := money.Zero
	for _, item := range p.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		subtotal = subtotal.Add(item.Subtotal)
	}

	if p.CouponDiscount.IsNegative() || subtotal.LessThan(p.CouponDiscount) {
		return nil, ErrInvalidAmounts
	}
	if p.ShippingFee.IsNegative() {
		return nil, ErrInvalidAmounts
	}

	now := time.Now()
	return &Order{
		ID:              p.ID,
		TenantID:        p.TenantID,
		OrderNumber:     p.OrderNumber,
		CustomerID:      p.CustomerID,
		CustomerEmail:   p.CustomerEmail,
		Items:           p.Items,
		ShippingAddress: p.ShippingAddress,
		PaymentMethod:   p.PaymentMethod,
		Subtotal:        subtotal,
		ShippingFee:     p.ShippingFee,
		CouponDiscount:  p.CouponDiscount,
		CouponCode:      p.CouponCode,
		Total:           subtotal.Sub(p.CouponDiscount).Add(p.ShippingFee),
		Status:          StatusPending,
		PaymentStatus:   PaymentStatusUnpaid,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// TransitionTo 执行一次状态转换。
// 目标状态等于当前状态时视为重放，直接成功且不产生历史记录；
// 不可达的目标状态返回 ErrInvalidTransition。
func (o *Order) TransitionTo(target Status, carrierStatus, note string) error {
	if target == o.Status {
		return nil
	}
	if !o.Status.CanTransitionTo(target) {
		return ErrInvalidTransition
	}

	now := time.Now()
	o.StatusHistory = append(o.StatusHistory, StatusChange{
		From:          o.Status,
		To:            target,
		CarrierStatus: carrierStatus,
		Note:          note,
		At:            now,
	})
	o.Status = target
	if carrierStatus != "" {
		o.CarrierStatus = carrierStatus
	}
	o.UpdatedAt = now
	return nil
}

// CancelByCustomer 执行买家侧取消。只有 PENDING/PROCESSING 的订单可以取消。
func (o *Order) CancelByCustomer(reason string) error {
	if o.Status != StatusPending && o.Status != StatusProcessing {
		return ErrCancelNotAllowed
	}
	return o.TransitionTo(StatusCancelled, "", reason)
}

// MarkPaid 记录支付成功。
func (o *Order) MarkPaid() {
	o.PaymentStatus = PaymentStatusPaid
	o.UpdatedAt = time.Now()
}

// AssignShippingCode 绑定承运商运单号。
func (o *Order) AssignShippingCode(code string) {
	o.ShippingCode = code
	o.UpdatedAt = time.Now()
}
