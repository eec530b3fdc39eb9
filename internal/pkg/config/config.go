// internal/pkg/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 汇总了所有服务共享的基础设施与业务配置。
// 配置优先从 CONFIG_PATH 指向的 YAML 文件加载，缺失项回落到环境变量。
type Config struct {
	Infra struct {
		Mysql struct {
			Addr     string `yaml:"addr"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			Database string `yaml:"database"`
		} `yaml:"mysql"`
		Redis struct {
			Addr string `yaml:"addr"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers          string `yaml:"brokers"`
			OrderEventsTopic string `yaml:"orderEventsTopic"`
		} `yaml:"kafka"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Zookeeper struct {
			Servers string `yaml:"servers"`
		} `yaml:"zookeeper"`
		Nacos struct {
			Enable      bool   `yaml:"enable"`
			ServerAddrs string `yaml:"serverAddrs"`
			Namespace   string `yaml:"namespace"`
			Group       string `yaml:"group"`
		} `yaml:"nacos"`
	} `yaml:"infra"`

	App struct {
		// DefaultShippingFee 是运费服务不可用时的兜底运费（最小货币单位）。
		DefaultShippingFee int64 `yaml:"defaultShippingFee"`
		// OutboxRetentionDays 是已投递 outbox 事件的保留天数，过期后被清理任务删除。
		OutboxRetentionDays int    `yaml:"outboxRetentionDays"`
		OutboxBatchSize     int    `yaml:"outboxBatchSize"`
		CarrierFeeURL       string `yaml:"carrierFeeUrl"`
		PaymentGatewayURL   string `yaml:"paymentGatewayUrl"`
	} `yaml:"app"`
}

// Load 加载全局配置。文件不存在不是错误，此时完全依赖环境变量与默认值。
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Infra.Mysql.Addr = getEnv("MYSQL_ADDR", "localhost:3306")
	cfg.Infra.Mysql.User = getEnv("MYSQL_USER", "root")
	cfg.Infra.Mysql.Password = getEnv("MYSQL_PASSWORD", "root")
	cfg.Infra.Mysql.Database = getEnv("MYSQL_DATABASE", "orderhub")
	cfg.Infra.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Infra.Kafka.Brokers = getEnv("KAFKA_BROKERS", "localhost:9092")
	cfg.Infra.Kafka.OrderEventsTopic = getEnv("ORDER_EVENTS_TOPIC", "order-events")
	cfg.Infra.Jaeger.Endpoint = getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces")
	cfg.Infra.Zookeeper.Servers = getEnv("ZK_SERVERS", "localhost:2181")
	cfg.Infra.Nacos.Enable = getEnv("NACOS_ENABLE", "false") == "true"
	cfg.Infra.Nacos.ServerAddrs = getEnv("NACOS_SERVER_ADDRS", "localhost:8848")
	cfg.Infra.Nacos.Namespace = getEnv("NACOS_NAMESPACE", "")
	cfg.Infra.Nacos.Group = getEnv("NACOS_GROUP", "DEFAULT_GROUP")
	cfg.App.DefaultShippingFee = getEnvInt64("DEFAULT_SHIPPING_FEE", 30000)
	cfg.App.OutboxRetentionDays = int(getEnvInt64("OUTBOX_RETENTION_DAYS", 7))
	cfg.App.OutboxBatchSize = int(getEnvInt64("OUTBOX_BATCH_SIZE", 100))
	cfg.App.CarrierFeeURL = getEnv("CARRIER_FEE_URL", "http://localhost:8086/fee/calculate")
	cfg.App.PaymentGatewayURL = getEnv("PAYMENT_GATEWAY_URL", "http://localhost:8087/payments/process")
	return cfg
}

// KafkaBrokerList 把逗号分隔的 broker 配置拆成地址切片。
func (c *Config) KafkaBrokerList() []string {
	return strings.Split(c.Infra.Kafka.Brokers, ",")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
