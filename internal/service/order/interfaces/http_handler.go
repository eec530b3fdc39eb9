// internal/service/order/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	inventorydomain "orderhub/internal/service/inventory/domain"
	"orderhub/internal/service/order/application"
	"orderhub/internal/service/order/domain"
)

// OrderHandler 封装订单引擎的 HTTP 处理器。
type OrderHandler struct {
	service *application.Service
}

func NewOrderHandler(service *application.Service) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/orders/place", h.placeOrder)
	mux.HandleFunc("/orders/cancel", h.cancelOrder)
	mux.HandleFunc("/orders/get", h.getOrder)
	mux.HandleFunc("/orders/ship", h.bookShipment)
	mux.HandleFunc("/webhooks/carrier", h.carrierWebhook)
	mux.HandleFunc("/webhooks/payment", h.paymentWebhook)
}

func (h *OrderHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	// 租户与用户身份由网关层解析后通过请求头下发
	tenantID := r.Header.Get("X-Tenant-ID")
	userID := r.Header.Get("X-User-ID")
	if tenantID == "" || userID == "" {
		http.Error(w, "missing tenant or user identity", http.StatusBadRequest)
		return
	}

	var cmd application.PlaceOrderCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}
	cmd.TenantID = tenantID
	cmd.UserID = userID

	result, err := h.service.PlaceOrder(ctx, &cmd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type cancelOrderRequest struct {
	OrderID string `json:"orderId"`
	Reason  string `json:"reason,omitempty"`
}

func (h *OrderHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	tenantID := r.Header.Get("X-Tenant-ID")
	userID := r.Header.Get("X-User-ID")
	if tenantID == "" || userID == "" {
		http.Error(w, "missing tenant or user identity", http.StatusBadRequest)
		return
	}

	var req cancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	if err := h.service.CancelOrder(ctx, tenantID, req.OrderID, userID, req.Reason); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

type bookShipmentRequest struct {
	OrderID      string `json:"orderId"`
	ShippingCode string `json:"shippingCode"`
}

// bookShipment 是履约侧入口：为订单绑定运单号并交给承运商。
func (h *OrderHandler) bookShipment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	tenantID := r.Header.Get("X-Tenant-ID")
	if tenantID == "" {
		http.Error(w, "missing tenant identity", http.StatusBadRequest)
		return
	}

	var req bookShipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" || req.ShippingCode == "" {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	if err := h.service.BookShipment(ctx, tenantID, req.OrderID, req.ShippingCode); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "booked"})
}

func (h *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	tenantID := r.Header.Get("X-Tenant-ID")
	orderID := r.URL.Query().Get("orderId")
	if tenantID == "" || orderID == "" {
		http.Error(w, "missing tenant or order id", http.StatusBadRequest)
		return
	}

	order, err := h.service.GetOrder(ctx, tenantID, orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// writeDomainError 把领域错误映射到 HTTP 状态码。
// 校验类错误是 400，未找到是 404，其余一律 500 且不泄露内部细节。
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrEmptyItems),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, inventorydomain.ErrSkuNotFound),
		errors.Is(err, inventorydomain.ErrSkuInactive),
		errors.Is(err, inventorydomain.ErrInsufficientStock):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotOrderOwner):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrCancelNotAllowed),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrShippingCodeConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
