package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"fortuna/internal/datastore"
	"fortuna/internal/models"
	"fortuna/internal/pkg/caching"

	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceFeature struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	appConfig *models.AppConfig
}

func NewServiceFeature(container *do.Injector) (*ServiceFeature, error) {
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

	return &ServiceFeature{container, postgresDB, readonlyPostgresDB, cache, readonlyCache, appConfig}, nil
}

// GetSchedulesToday returns the schedule rows for the service-local day.
// The unique index on date keeps the calendar at one feature per day; more
// than one surviving row is broken configuration, not a longer calendar.
func (service *ServiceFeature) GetSchedulesToday(ctx context.Context, now time.Time) ([]*models.FeatureSchedule, error) {
	date := service.appConfig.Today(now)
	callback := func() ([]*models.FeatureSchedule, error) {
		return datastore.GetSchedulesForDate(ctx, service.readonlyPostgresDB, date)
	}

	schedules, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyFeatureToday(date), CACHE_TTL_1_MIN, callback)
	if err != nil {
		return nil, err
	}
	if len(schedules) > 1 {
		return nil, ErrInvalidConfig
	}
	return schedules, nil
}

// IsScheduledToday reports whether featureType is on today's calendar.
func (service *ServiceFeature) IsScheduledToday(ctx context.Context, featureType models.FeatureType, now time.Time) (bool, error) {
	schedules, err := service.GetSchedulesToday(ctx, now)
	if err != nil {
		return false, err
	}

	for _, s := range schedules {
		if s.FeatureType == featureType && s.IsActive {
			return true, nil
		}
	}
	return false, nil
}

var dailyLimitConfigKey = map[models.FeatureType]string{
	models.FeatureRoulette: CONFIG_ROULETTE_DAILY_LIMIT,
	models.FeatureDice:     CONFIG_DICE_DAILY_LIMIT,
	models.FeatureLottery:  CONFIG_LOTTERY_DAILY_LIMIT,
}

// GetFeatureConfig reads the feature row; with no row present the feature
// is on and the limit comes from the config table, then the built-in.
func (service *ServiceFeature) GetFeatureConfig(ctx context.Context, featureType models.FeatureType) (*models.FeatureConfig, error) {
	config, err := datastore.GetFeatureConfig(ctx, service.readonlyPostgresDB, featureType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.FeatureConfig{FeatureType: featureType, IsEnabled: true, DailyLimit: service.defaultDailyLimit(ctx, featureType)}, nil
		}
		return nil, err
	}
	return config, nil
}

func (service *ServiceFeature) defaultDailyLimit(ctx context.Context, featureType models.FeatureType) int {
	key, ok := dailyLimitConfigKey[featureType]
	if !ok {
		return DEFAULT_DAILY_PLAY_LIMIT
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](service.container)
	if err != nil {
		return DEFAULT_DAILY_PLAY_LIMIT
	}

	limit, err := serviceConfig.GetIntConfig(ctx, key, DEFAULT_DAILY_PLAY_LIMIT)
	if err != nil {
		log.Println(err)
		return DEFAULT_DAILY_PLAY_LIMIT
	}
	return limit
}

// BuildGate assembles the play gate for one user and feature at now.
func (service *ServiceFeature) BuildGate(ctx context.Context, userID int64, featureType models.FeatureType, now time.Time) (GateInput, error) {
	scheduled, err := service.IsScheduledToday(ctx, featureType, now)
	if err != nil {
		return GateInput{}, err
	}

	config, err := service.GetFeatureConfig(ctx, featureType)
	if err != nil {
		return GateInput{}, err
	}

	played, err := datastore.CountPlaysForDate(ctx, service.readonlyPostgresDB, userID, featureType, service.appConfig.Today(now))
	if err != nil {
		return GateInput{}, err
	}

	return GateInput{
		ScheduledToday: scheduled,
		GateEnforced:   service.appConfig.FeatureGateEnabled,
		FeatureEnabled: config.IsEnabled,
		PlayedToday:    played,
		DailyLimit:     config.DailyLimit,
	}, nil
}

func (service *ServiceFeature) ScheduleFeature(ctx context.Context, date string, featureType models.FeatureType) error {
	if !featureType.Valid() {
		return ErrInvalidConfig
	}

	err := datastore.UpsertFeatureSchedule(ctx, service.postgresDB, &models.FeatureSchedule{
		Date:        date,
		FeatureType: featureType,
		IsActive:    true,
	})
	if err != nil {
		return err
	}

	return service.cache.Delete(ctx, DBKeyFeatureToday(date))
}

func (service *ServiceFeature) SetFeatureConfig(ctx context.Context, featureType models.FeatureType, isEnabled bool, dailyLimit int) error {
	if !featureType.Valid() || dailyLimit < 0 {
		return ErrInvalidConfig
	}

	return datastore.UpsertFeatureConfig(ctx, service.postgresDB, &models.FeatureConfig{
		FeatureType: featureType,
		IsEnabled:   isEnabled,
		DailyLimit:  dailyLimit,
	})
}
