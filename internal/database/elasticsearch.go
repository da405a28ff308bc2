package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/lucidpath/wellness-api/internal/config"
	"github.com/lucidpath/wellness-api/internal/logger"
	"go.uber.org/zap"
)

var (
	// ES is the shared elasticsearch client instance. It stays nil when
	// search is disabled in the configuration.
	ES    *elasticsearch.Client
	esOne sync.Once
)

// InitElasticsearch connects to the search cluster and runs a health check.
func InitElasticsearch() (*elasticsearch.Client, error) {
	cfg := config.GlobalConfig.Elasticsearch

	esConfig := elasticsearch.Config{
		Addresses: cfg.URLs,
	}
	if cfg.Username != "" && cfg.Password != "" {
		esConfig.Username = cfg.Username
		esConfig.Password = cfg.Password
	}

	client, err := elasticsearch.NewClient(esConfig)
	if err != nil {
		return nil, fmt.Errorf("connect elasticsearch: %w", err)
	}

	ctx := context.Background()
	info, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch health check: %w", err)
	}

	logger.Info("elasticsearch connected",
		zap.String("status", info.String()),
		zap.Strings("addresses", cfg.URLs),
	)
	return client, nil
}

// GetES returns the shared elasticsearch client, or nil when search is
// disabled.
func GetES() *elasticsearch.Client {
	if !config.GlobalConfig.Elasticsearch.Enabled {
		return nil
	}
	var err error
	esOne.Do(func() {
		ES, err = InitElasticsearch()
		if err != nil {
			panic(fmt.Sprintf("elasticsearch init failed: %v", err))
		}
	})
	return ES
}
