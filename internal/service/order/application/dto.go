// internal/service/order/application/dto.go
package application

// OrderLine 是下单请求中的一个条目。
type OrderLine struct {
	SkuID    string `json:"skuId"`
	Quantity int    `json:"quantity"`
}

// PlaceOrderCommand 是下单用例的输入。
// 租户与用户身份由上游解析后显式传入，引擎本身不感知认证机制。
type PlaceOrderCommand struct {
	TenantID      string      `json:"-"`
	UserID        string      `json:"-"`
	CustomerEmail string      `json:"customerEmail"`
	RecipientName string      `json:"recipientName"`
	PhoneNumber   string      `json:"phoneNumber"`
	AddressLine   string      `json:"shippingAddress"`
	DistrictID    int         `json:"districtId"`
	WardCode      string      `json:"wardCode"`
	PaymentMethod string      `json:"paymentMethod"`
	Items         []OrderLine `json:"items"`
	CouponCode    string      `json:"couponCode,omitempty"`
	ReturnURL     string      `json:"returnUrl,omitempty"`
}

// PlaceOrderResult 是下单用例的输出。
// PaymentURL 为空表示货到付款，或支付网关暂时不可用。
type PlaceOrderResult struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	TotalAmount int64  `json:"totalAmount"`
	PaymentURL  string `json:"paymentUrl,omitempty"`
}

// WebhookResult 是承运商回调处理的结果。
// 无论是否忽略，只要报文可解析就返回给承运商 HTTP 200，阻止其无谓重试。
type WebhookResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
