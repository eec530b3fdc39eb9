// cmd/order-service/main.go
package main

import (
	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"orderhub/internal/outbox"
	"orderhub/internal/pkg/bootstrap"
	"orderhub/internal/pkg/httpclient"
	"orderhub/internal/pkg/money"
	"orderhub/internal/pkg/mysql"
	"orderhub/internal/pkg/redis"
	cartinfra "orderhub/internal/service/cart/infrastructure"
	inventoryinfra "orderhub/internal/service/inventory/infrastructure"
	"orderhub/internal/service/order/application"
	orderinfra "orderhub/internal/service/order/infrastructure"
	"orderhub/internal/service/order/infrastructure/adapter"
	"orderhub/internal/service/order/interfaces"
	promotionapp "orderhub/internal/service/promotion/application"
	promotioninfra "orderhub/internal/service/promotion/infrastructure"
	"orderhub/internal/service/promotion/infrastructure/rule"
)

const serviceName = "order-service"

func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8084,
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
			if err := db.AutoMigrate(
				&orderinfra.OrderModel{},
				&orderinfra.OrderItemModel{},
				&inventoryinfra.SkuModel{},
				&promotioninfra.CouponModel{},
				&cartinfra.CartItemModel{},
				&outbox.EventModel{},
			); err != nil {
				zlog.Fatal().Err(err).Msg("failed to migrate database schema")
			}

			redisClient, err := redis.NewClient(cfg.Infra.Redis.Addr)
			if err != nil {
				zlog.Fatal().Err(err).Msg("failed to connect to redis")
			}

			ruleEngine, err := rule.NewCELRuleEngine()
			if err != nil {
				zlog.Fatal().Err(err).Msg("failed to initialize coupon rule engine")
			}

			tracer := otel.Tracer(serviceName)
			httpClient := httpclient.NewClient(tracer)

			validator := promotionapp.NewValidator(
				promotioninfra.NewGormCouponRepository(db),
				ruleEngine,
				tracer,
			)

			svc := application.NewService(
				orderinfra.NewGormUnitOfWork(db),
				orderinfra.NewGormOrderRepository(db),
				inventoryinfra.NewGormStockRepository(db),
				orderinfra.NewRedisNumberGenerator(redisClient),
				validator,
				adapter.NewCarrierFeeHTTPAdapter(httpClient, cfg.App.CarrierFeeURL),
				adapter.NewPaymentHTTPAdapter(httpClient, cfg.App.PaymentGatewayURL),
				money.Amount(cfg.App.DefaultShippingFee),
				tracer,
			)

			interfaces.NewOrderHandler(svc).RegisterRoutes(appCtx.Mux)
		},
	})
}
