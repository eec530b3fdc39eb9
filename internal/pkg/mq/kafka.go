// internal/pkg/mq/kafka.go
package mq

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

// NewKafkaWriter 创建一个指向指定 topic 的 Writer。
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // 相同 key 的消息进入同一分区，保证单聚合内有序
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
}

// NewKafkaReader 创建一个消费组 Reader。
func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

// ProduceMessage 发送一条消息，并把当前追踪上下文注入消息头，
// 使消费端可以延续同一条链路。
func ProduceMessage(ctx context.Context, writer *kafka.Writer, key, value []byte, headers ...kafka.Header) error {
	carrier := KafkaHeaderCarrier(headers)
	otel.GetTextMapPropagator().Inject(ctx, &carrier)

	return writer.WriteMessages(ctx, kafka.Message{
		Key:     key,
		Value:   value,
		Headers: carrier,
	})
}

// KafkaHeaderCarrier 让 kafka 消息头满足 otel 的 TextMapCarrier 接口。
type KafkaHeaderCarrier []kafka.Header

func (c *KafkaHeaderCarrier) Get(key string) string {
	for _, h := range *c {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *KafkaHeaderCarrier) Set(key, value string) {
	for i, h := range *c {
		if h.Key == key {
			(*c)[i].Value = []byte(value)
			return
		}
	}
	*c = append(*c, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *KafkaHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(*c))
	for _, h := range *c {
		keys = append(keys, h.Key)
	}
	return keys
}
