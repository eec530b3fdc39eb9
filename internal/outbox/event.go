// internal/outbox/event.go
package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status 是 outbox 事件的投递状态。
type Status string

const (
	StatusPending   Status = "PENDING"   // 待投递
	StatusCompleted Status = "COMPLETED" // 已投递
)

// Event 是事务性 outbox 中的一行事件。
// 它与业务状态变更在同一个数据库事务中写入，
// 由独立的 relay 进程轮询投递，从而规避双写问题：
// 数据库提交成功则事件必然最终被投递，回滚则事件随之消失。
type Event struct {
	ID            string
	TenantID      string
	AggregateType string
	AggregateID   string
	Type          string
	Payload       []byte
	Status        Status
	CreatedAt     time.Time
}

// NewEvent 构造一个待投递事件，payload 会被序列化为 JSON。
func NewEvent(tenantID, aggregateType, aggregateID, eventType string, payload interface{}) (*Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:            uuid.New().String(),
		TenantID:      tenantID,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Type:          eventType,
		Payload:       body,
		Status:        StatusPending,
		CreatedAt:     time.Now(),
	}, nil
}
