// cmd/outbox-relay/main.go
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	zlog "github.com/rs/zerolog/log"

	"orderhub/internal/outbox"
	"orderhub/internal/pkg/bootstrap"
	"orderhub/internal/pkg/mq"
	"orderhub/internal/pkg/mysql"
	"orderhub/internal/zookeeper"
)

const serviceName = "outbox-relay"

func main() {
	var relay *outbox.Relay
	var lock *zookeeper.LeaderLock

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8085,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			cfg := appCtx.Config

			db, err := mysql.Open(mysql.Options{
				Addr:     cfg.Infra.Mysql.Addr,
				User:     cfg.Infra.Mysql.User,
				Password: cfg.Infra.Mysql.Password,
				Database: cfg.Infra.Mysql.Database,
			})
			if err != nil {
				zlog.Fatal().Err(err).Msg("failed to connect to mysql")
			}

			writer := mq.NewKafkaWriter(cfg.KafkaBrokerList(), cfg.Infra.Kafka.OrderEventsTopic)

			relay = outbox.NewRelay(
				outbox.NewGormRepository(db),
				outbox.NewKafkaPublisher(writer),
			)
			relay.BatchSize = cfg.App.OutboxBatchSize
			relay.Retention = time.Duration(cfg.App.OutboxRetentionDays) * 24 * time.Hour

			conn, err := zookeeper.Connect(cfg.Infra.Zookeeper.Servers)
			if err != nil {
				zlog.Fatal().Err(err).Msg("failed to connect to zookeeper")
			}
			lock, err = zookeeper.NewLeaderLock(conn, "outbox-relay")
			if err != nil {
				zlog.Fatal().Err(err).Msg("failed to create relay leader lock")
			}

			appCtx.Mux.Handle("/metrics", promhttp.Handler())
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
		},
		BackgroundTasks: []func(ctx context.Context){
			func(ctx context.Context) {
				// 多副本部署时只有持锁者轮询 outbox 表，其余实例热备等待
				zlog.Info().Msg("waiting for relay leadership")
				if err := lock.Acquire(); err != nil {
					zlog.Fatal().Err(err).Msg("failed to acquire relay leadership")
				}
				defer lock.Release()

				zlog.Info().Msg("relay leadership acquired, starting delivery loops")
				if err := relay.Run(ctx); err != nil && err != context.Canceled {
					zlog.Error().Err(err).Msg("outbox relay stopped")
				}
			},
		},
	})
}
