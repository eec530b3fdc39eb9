// internal/outbox/kafka_publisher.go
package outbox

import (
	"context"

	"github.com/segmentio/kafka-go"

	"orderhub/internal/pkg/mq"
)

// KafkaPublisher 把 outbox 事件发布到 Kafka。
// 以聚合 ID 作为消息 key，同一订单的事件落在同一分区，消费侧按序可见。
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event *Event) error {
	headers := []kafka.Header{
		{Key: "event-type", Value: []byte(event.Type)},
		{Key: "tenant-id", Value: []byte(event.TenantID)},
	}
	return mq.ProduceMessage(ctx, p.writer, []byte(event.AggregateID), event.Payload, headers...)
}

// Close 关闭底层 writer。
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
