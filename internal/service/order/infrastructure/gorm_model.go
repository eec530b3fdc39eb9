// internal/service/order/infrastructure/gorm_model.go
package infrastructure

import "time"

// OrderModel 对应数据库中的 orders 表。
type OrderModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	TenantID    string `gorm:"size:64;uniqueIndex:idx_order_tenant_number"`
	OrderNumber string `gorm:"size:64;uniqueIndex:idx_order_tenant_number"`

	CustomerID    string `gorm:"size:64;index"`
	CustomerEmail string `gorm:"size:255"`

	RecipientName string `gorm:"size:128"`
	PhoneNumber   string `gorm:"size:32"`
	AddressLine   string `gorm:"size:512"`
	DistrictID    int
	WardCode      string `gorm:"size:32"`

	PaymentMethod  string `gorm:"size:16"`
	Subtotal       int64
	ShippingFee    int64
	CouponDiscount int64
	CouponCode     string `gorm:"size:64"`
	Total          int64

	Status        string `gorm:"size:16;index"`
	PaymentStatus string `gorm:"size:16"`

	ShippingCode  string `gorm:"size:64;index"`
	CarrierStatus string `gorm:"size:64"`

	// StatusHistory 以 JSON 形式整列存储，订单的历史只增不改
	StatusHistory []byte `gorm:"type:json"`

	Items []OrderItemModel `gorm:"foreignKey:OrderID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel 对应数据库中的 order_items 表。
type OrderItemModel struct {
	ID          uint   `gorm:"primaryKey"`
	OrderID     string `gorm:"size:36;index"`
	SkuID       string `gorm:"size:64"`
	SkuCode     string `gorm:"size:64"`
	ProductName string `gorm:"size:255"`
	Price       int64
	Quantity    int
	Subtotal    int64
}

func (OrderItemModel) TableName() string {
	return "order_items"
}
