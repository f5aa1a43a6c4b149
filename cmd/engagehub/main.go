package main

import (
	"log"

	"engagehub/pkg/changefeed"
	"engagehub/pkg/config"
	"engagehub/pkg/db"
	"engagehub/pkg/gen"
	"engagehub/pkg/health"
	"engagehub/pkg/logger"
	"engagehub/pkg/redis"
	"engagehub/pkg/sequence"
	"engagehub/pkg/server"
	"engagehub/pkg/storage"
	"engagehub/pkg/task"
	"engagehub/services/campaign"
	"engagehub/services/feed"
	"engagehub/services/notification"
	"engagehub/services/shop"
	"engagehub/services/submission"
	"engagehub/services/user"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		db.Module,
		redis.Module,
		gen.Module,
		sequence.Module,
		storage.Module,
		changefeed.Module,
		health.Module,
		task.Client,
		task.Server,

		fx.Provide(provideTracerProvider),
		fx.Invoke(registerObservability),

		user.Module,
		campaign.Module,
		campaign.TaskModule,
		submission.Module,
		notification.Module,
		notification.TaskModule,
		shop.Module,
		feed.Module,

		server.Module,
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})

func provideTracerProvider() trace.TracerProvider {
	return otel.GetTracerProvider()
}

func registerObservability(cfg *config.Config, gdb *gorm.DB) {
	if cfg.Observability.Tracing {
		if err := db.Otel(gdb); err != nil {
			zap.L().Warn("failed to enable gorm tracing", zap.Error(err))
		}
	}

	if cfg.Observability.Metrics {
		if err := db.Metric(cfg, gdb); err != nil {
			zap.L().Warn("failed to enable gorm metrics", zap.Error(err))
		}
	}
}
