// internal/service/order/interfaces/webhook_handler.go
package interfaces

import (
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// carrierWebhookPayload 是承运商回调的报文。
// 字段名沿用承运商侧的命名，Type/ExpectedDeliveryTime 目前只透传不消费。
type carrierWebhookPayload struct {
	OrderCode            string `json:"OrderCode"`
	Status               string `json:"Status"`
	Type                 string `json:"Type,omitempty"`
	ExpectedDeliveryTime string `json:"ExpectedDeliveryTime,omitempty"`
}

// carrierWebhook 处理承运商状态回调。
// 只有报文本身不可解析才返回非 2xx；识别不了或忽略的状态
// 也回 200，否则承运商会不断重试同一条已被吸收的消息。
func (h *OrderHandler) carrierWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var payload carrierWebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.OrderCode == "" || payload.Status == "" {
		http.Error(w, "malformed webhook payload", http.StatusBadRequest)
		return
	}

	result, err := h.service.HandleCarrierWebhook(ctx, payload.OrderCode, payload.Status)
	if err != nil {
		// 内部错误返回 500，承运商会重试，而回调本身是幂等的
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// paymentWebhookPayload 是支付网关的结果回调报文。
// 网关不感知租户请求头，租户在回调注册时写进报文。
type paymentWebhookPayload struct {
	TenantID string `json:"tenantId"`
	OrderID  string `json:"orderId"`
	Success  bool   `json:"success"`
}

// paymentWebhook 处理支付网关的结果回调。
// 失败结果只确认不落库，订单保持 UNPAID，买家可以重新发起支付。
func (h *OrderHandler) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var payload paymentWebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.TenantID == "" || payload.OrderID == "" {
		http.Error(w, "malformed webhook payload", http.StatusBadRequest)
		return
	}

	if !payload.Success {
		writeJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})
		return
	}

	if err := h.service.ConfirmPayment(ctx, payload.TenantID, payload.OrderID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "paid"})
}
