package services

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"fortuna/internal/datastore"
	"fortuna/internal/models"
	"fortuna/internal/pkg/caching"

	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceConfig struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	appConfig *models.AppConfig
}

func NewServiceConfig(container *do.Injector) (*ServiceConfig, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	appConfig, err := do.Invoke[*models.AppConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceConfig{container, postgresDB, readonlyPostgresDB, cache, readonlyCache, appConfig}, nil
}

func (service *ServiceConfig) AppConfig() *models.AppConfig {
	return service.appConfig
}

func (service *ServiceConfig) GetStringConfig(ctx context.Context, key string, defaultValue string) (string, error) {
	callback := func() (string, error) {
		config, err := datastore.GetConfigByKey(ctx, service.readonlyPostgresDB, key)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return defaultValue, nil
			}
			return defaultValue, err
		}
		return config.Value, nil
	}

	value, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyConfig(key), CACHE_TTL_5_MINS, callback)
	if err != nil {
		return defaultValue, err
	}

	return value, nil
}

func (service *ServiceConfig) GetIntConfig(ctx context.Context, key string, defaultValue int) (int, error) {
	callback := func() (int, error) {
		config, err := datastore.GetConfigByKey(ctx, service.readonlyPostgresDB, key)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return defaultValue, nil
			}
			return defaultValue, err
		}

		intValue, err := strconv.Atoi(config.Value)
		if err != nil {
			return defaultValue, err
		}

		return intValue, nil
	}

	value, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyConfig(key), CACHE_TTL_5_MINS, callback)
	if err != nil {
		return defaultValue, err
	}

	return value, nil
}

func (service *ServiceConfig) SetConfig(ctx context.Context, key string, value string) error {
	config, err := datastore.GetConfigByKey(ctx, service.postgresDB, key)
	if err != nil {
		err = datastore.InsertConfig(ctx, service.postgresDB, models.Config{Key: key, Value: value})
		if err != nil {
			return err
		}
	} else {
		config.Value = value
		_, err = datastore.EditConfig(ctx, service.postgresDB, config)
		if err != nil {
			return err
		}
	}

	return service.cache.Delete(ctx, DBKeyConfig(key))
}
