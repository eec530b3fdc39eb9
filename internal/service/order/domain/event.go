// internal/service/order/domain/event.go
package domain

import "time"

// outbox 事件的类型常量。
const (
	AggregateTypeOrder = "ORDER"

	EventTypeOrderCreated       = "ORDER_CREATED"
	EventTypeOrderCancelled     = "ORDER_CANCELLED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
)

// OrderCreatedEvent 在下单事务提交后由 relay 投递，
// 驱动邮件通知、分析等不允许阻塞下单响应的副作用。
type OrderCreatedEvent struct {
	OrderID       string                  `json:"orderId"`
	TenantID      string                  `json:"tenantId"`
	OrderNumber   string                  `json:"orderNumber"`
	CustomerID    string                  `json:"customerId"`
	CustomerEmail string                  `json:"customerEmail"`
	TotalAmount   int64                   `json:"totalAmount"`
	Items         []OrderCreatedEventItem `json:"items"`
	CreatedAt     time.Time               `json:"createdAt"`
}

type OrderCreatedEventItem struct {
	SkuID    string `json:"skuId"`
	Quantity int    `json:"quantity"`
}

// OrderCancelledEvent 在取消事务提交后投递。
type OrderCancelledEvent struct {
	OrderID     string    `json:"orderId"`
	TenantID    string    `json:"tenantId"`
	OrderNumber string    `json:"orderNumber"`
	CustomerID  string    `json:"customerId"`
	Reason      string    `json:"reason,omitempty"`
	CancelledAt time.Time `json:"cancelledAt"`
}

// OrderStatusChangedEvent 在承运商驱动的状态变更后投递，
// 用于向客户推送物流进度。
type OrderStatusChangedEvent struct {
	OrderID       string    `json:"orderId"`
	TenantID      string    `json:"tenantId"`
	OrderNumber   string    `json:"orderNumber"`
	CustomerID    string    `json:"customerId"`
	From          Status    `json:"from"`
	To            Status    `json:"to"`
	CarrierStatus string    `json:"carrierStatus"`
	ChangedAt     time.Time `json:"changedAt"`
}
