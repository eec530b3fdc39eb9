// internal/service/order/domain/state.go
package domain

import "time"

// Status 定义了订单的生命周期状态。
type Status string

const (
	StatusPending    Status = "PENDING"    // 已创建，等待处理/支付
	StatusProcessing Status = "PROCESSING" // 商家处理中，承运商待揽收
	StatusShipped    Status = "SHIPPED"    // 承运商已揽收，运输中
	StatusDelivered  Status = "DELIVERED"  // 已送达
	StatusCompleted  Status = "COMPLETED"  // 已完成（终态）
	StatusCancelled  Status = "CANCELLED"  // 已取消（终态）
	StatusReturned   Status = "RETURNED"   // 已退货（终态）
)

// transitions 是合法状态转换表。不在表中的目标状态一律拒绝，
// 取消与退货只能从表中列出的入口进入。
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusCompleted, StatusReturned},
}

// CanTransitionTo 判断从当前状态能否转换到 target。
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal 判断状态是否为终态。
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// StatusChange 是状态历史中的一条记录。
// 每次成功的状态转换都会追加一条，承运商触发的转换还会带上原始状态串。
type StatusChange struct {
	From          Status    `json:"from"`
	To            Status    `json:"to"`
	CarrierStatus string    `json:"carrierStatus,omitempty"`
	Note          string    `json:"note,omitempty"`
	At            time.Time `json:"at"`
}
