package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/activity-for-you/internal/domain/activity"
	"github.com/yanqian/activity-for-you/internal/infra/config"
	"github.com/yanqian/activity-for-you/internal/infra/doccache"
	"github.com/yanqian/activity-for-you/internal/infra/metrics"
	"github.com/yanqian/activity-for-you/internal/infra/source/bucket"
	"github.com/yanqian/activity-for-you/internal/infra/source/localdir"
	"github.com/yanqian/activity-for-you/internal/infra/source/staticsite"
)

func provideActivityConfig(cfg *config.Config) activity.Config {
	ttl := time.Duration(0)
	if cfg.Cache.Enabled {
		ttl = cfg.Cache.TTL
	}
	return activity.Config{
		StalePolicy:          activity.StalePolicy(cfg.View.StalePolicy),
		TimestampPolicy:      activity.TimestampPolicy(cfg.View.TimestampPolicy),
		TimestampPlaceholder: cfg.View.TimestampPlaceholder,
		CacheTTL:             ttl,
		SessionIdleTTL:       cfg.View.SessionIdleTTL,
	}
}

func provideDocumentSource(cfg *config.Config, logger *slog.Logger) (activity.DocumentSource, error) {
	switch cfg.Source.Kind {
	case config.SourceHTTP:
		logger.Info("documents served from static site", "base_url", cfg.Source.BaseURL)
		return staticsite.NewClient(cfg.Source.BaseURL, cfg.Source.Timeout), nil
	case config.SourceBucket:
		src, err := bucket.NewSource(bucket.Options{
			Endpoint:  cfg.Source.Bucket.Endpoint,
			AccessKey: cfg.Source.Bucket.AccessKey,
			SecretKey: cfg.Source.Bucket.SecretKey,
			Bucket:    cfg.Source.Bucket.Bucket,
			Region:    cfg.Source.Bucket.Region,
			Prefix:    cfg.Source.Bucket.Prefix,
		}, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("documents served from bucket", "bucket", cfg.Source.Bucket.Bucket)
		return src, nil
	case config.SourceFile:
		logger.Info("documents served from directory", "dir", cfg.Source.Dir)
		return localdir.NewStore(cfg.Source.Dir), nil
	default:
		return nil, fmt.Errorf("unsupported source kind %q", cfg.Source.Kind)
	}
}

func provideDocumentCache(cfg *config.Config, logger *slog.Logger) activity.DocumentCache {
	if !cfg.Cache.Enabled {
		return nil
	}
	if strings.TrimSpace(cfg.Cache.Addr) == "" {
		logger.Info("document cache addr not set, using memory cache")
		return doccache.NewMemoryCache()
	}
	opt, err := buildValkeyOptions(cfg.Cache.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
		return doccache.NewMemoryCache()
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
		return doccache.NewMemoryCache()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		client.Close()
		return doccache.NewMemoryCache()
	}
	logger.Info("document valkey cache enabled", "addr", cfg.Cache.Addr)
	return doccache.NewValkeyCache(client, cfg.Cache.Prefix)
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideMetricsHandler(m *metrics.LoadMetrics) http.Handler {
	return m.Handler()
}
