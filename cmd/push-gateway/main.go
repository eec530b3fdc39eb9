// cmd/push-gateway/main.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/segmentio/kafka-go"

	"orderhub/internal/pkg/bootstrap"
	"orderhub/internal/pkg/logger"
	"orderhub/internal/pkg/mq"
)

const serviceName = "push-gateway"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 浏览器直连网关，跨域校验交给前置负载均衡层
	CheckOrigin: func(r *http.Request) bool { return true },
}

// hub 维护客户ID到活跃 WebSocket 连接的映射。
// 同一客户重复连接时新连接顶掉旧连接。
type hub struct {
	mu    sync.RWMutex
	conns map[string]*websocket.Conn
}

func newHub() *hub {
	return &hub{conns: make(map[string]*websocket.Conn)}
}

func (h *hub) register(customerID string, conn *websocket.Conn) {
	h.mu.Lock()
	if old, ok := h.conns[customerID]; ok {
		old.Close()
	}
	h.conns[customerID] = conn
	h.mu.Unlock()
}

func (h *hub) unregister(customerID string, conn *websocket.Conn) {
	h.mu.Lock()
	if h.conns[customerID] == conn {
		delete(h.conns, customerID)
	}
	h.mu.Unlock()
}

// push 把消息推给指定客户。客户不在线直接丢弃，
// 推送只是尽力而为的补充通道，事实源永远是订单查询接口。
func (h *hub) push(customerID string, payload []byte) {
	h.mu.RLock()
	conn, ok := h.conns[customerID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		h.unregister(customerID, conn)
		conn.Close()
	}
}

func (h *hub) serveWS(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customerId")
	if customerID == "" {
		http.Error(w, "missing customerId", http.StatusBadRequest)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.register(customerID, conn)

	// 读循环只用于感知断连
	go func() {
		defer func() {
			h.unregister(customerID, conn)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// consume 消费订单事件流，按事件体里的 customerId 路由推送。
func consume(ctx context.Context, reader *kafka.Reader, h *hub) {
	defer reader.Close()
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Ctx(ctx).Error().Err(err).Msg("failed to read order event")
			continue
		}

		var envelope struct {
			CustomerID string `json:"customerId"`
		}
		if err := json.Unmarshal(msg.Value, &envelope); err != nil || envelope.CustomerID == "" {
			continue
		}
		h.push(envelope.CustomerID, msg.Value)
	}
}

func main() {
	h := newHub()
	var reader *kafka.Reader

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8088,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			cfg := appCtx.Config
			reader = mq.NewKafkaReader(cfg.KafkaBrokerList(), cfg.Infra.Kafka.OrderEventsTopic, serviceName)

			appCtx.Mux.HandleFunc("/ws", h.serveWS)
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
		},
		BackgroundTasks: []func(ctx context.Context){
			func(ctx context.Context) { consume(ctx, reader, h) },
		},
	})
}
