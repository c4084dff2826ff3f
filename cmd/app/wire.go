//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/activity-for-you/internal/bootstrap"
	"github.com/yanqian/activity-for-you/internal/domain/activity"
	"github.com/yanqian/activity-for-you/internal/infra/config"
	"github.com/yanqian/activity-for-you/internal/infra/metrics"
	httpiface "github.com/yanqian/activity-for-you/internal/interface/http"
	"github.com/yanqian/activity-for-you/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideActivityConfig,
		provideDocumentSource,
		provideDocumentCache,
		metrics.NewLoadMetrics,
		provideMetricsHandler,
		wire.Bind(new(activity.Metrics), new(*metrics.LoadMetrics)),
		activity.NewService,
		activity.NewSessions,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
