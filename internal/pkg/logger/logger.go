// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// Init 配置全局 zerolog Logger，每个服务进程在启动时调用一次。
func Init(serviceName string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zlog.Logger = zerolog.New(os.Stderr).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Ctx 返回一个绑定了当前 trace_id 的 Logger。
// 如果 context 中没有有效的 Span，则退化为全局 Logger。
func Ctx(ctx context.Context) *zerolog.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return &zlog.Logger
	}
	l := zlog.With().Str("trace_id", sc.TraceID().String()).Logger()
	return &l
}
