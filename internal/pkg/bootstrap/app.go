// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	zlog "github.com/rs/zerolog/log"

	"orderhub/internal/pkg/config"
	"orderhub/internal/pkg/logger"
	"orderhub/internal/pkg/nacos"
	"orderhub/internal/tracing"
)

// AppCtx 传递给各服务的路由注册回调。
type AppCtx struct {
	Mux    *http.ServeMux
	Config *config.Config
}

// AppInfo 包含启动一个服务进程所需的全部信息。
type AppInfo struct {
	ServiceName      string
	Port             int
	RegisterHandlers func(appCtx AppCtx)
	// BackgroundTasks 在 HTTP 服务启动后运行，随进程退出被取消（如 outbox relay 循环）。
	BackgroundTasks []func(ctx context.Context)
}

// StartService 封装了所有服务进程的通用启动与优雅关停逻辑：
// 配置加载、日志、链路追踪、可选的 Nacos 注册、HTTP 服务与后台任务。
func StartService(info AppInfo) {
	logger.Init(info.ServiceName)

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load config")
	}

	tp, err := tracing.InitTracerProvider(info.ServiceName, cfg.Infra.Jaeger.Endpoint)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	var nacosClient *nacos.Client
	var ip string
	if cfg.Infra.Nacos.Enable {
		nacosClient, err = nacos.NewClient(cfg.Infra.Nacos.ServerAddrs, cfg.Infra.Nacos.Namespace, cfg.Infra.Nacos.Group)
		if err != nil {
			zlog.Fatal().Err(err).Msg("failed to initialize nacos client")
		}
		ip, err = outboundIP()
		if err != nil {
			zlog.Fatal().Err(err).Msg("failed to resolve outbound IP")
		}
		if err := nacosClient.RegisterServiceInstance(info.ServiceName, ip, info.Port); err != nil {
			zlog.Fatal().Err(err).Msg("failed to register service with nacos")
		}
	}

	mux := http.NewServeMux()
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux, Config: cfg})
	}
	server := &http.Server{Addr: ":" + strconv.Itoa(info.Port), Handler: mux}

	go func() {
		zlog.Info().Msgf("%s listening on :%d", info.ServiceName, info.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msgf("could not listen on %s", server.Addr)
		}
	}()

	bgCtx, cancelBg := context.WithCancel(context.Background())
	for _, task := range info.BackgroundTasks {
		go task(bgCtx)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info().Msgf("shutting down service %s...", info.ServiceName)

	cancelBg()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 清理顺序与初始化相反
	if nacosClient != nil {
		if err := nacosClient.DeregisterServiceInstance(info.ServiceName, ip, info.Port); err != nil {
			zlog.Error().Err(err).Msg("error deregistering from nacos")
		}
	}
	if err := tp.Shutdown(ctx); err != nil {
		zlog.Error().Err(err).Msg("error shutting down tracer provider")
	}
	if err := server.Shutdown(ctx); err != nil {
		zlog.Error().Err(err).Msg("error shutting down http server")
	}

	zlog.Info().Msgf("service %s gracefully shut down", info.ServiceName)
}

// outboundIP 获取本机对外 IP，用于服务注册。
func outboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}
