package datastore

import (
	"context"
	"fortuna/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableFeature(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.FeatureSchedule)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.FeatureSchedule)(nil)).Index("index_feature_schedule_date").IfNotExists().Unique().Column("date").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateTable().Model((*models.FeatureConfig)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.FeatureConfig)(nil)).Index("index_feature_config_feature_type").IfNotExists().Unique().Column("feature_type").Exec(ctx)
	return err
}

func GetSchedulesForDate(ctx context.Context, db bun.IDB, date string) ([]*models.FeatureSchedule, error) {
	var rows []*models.FeatureSchedule
	err := db.NewSelect().Model(&rows).Where("date = ?", date).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func GetFeatureConfig(ctx context.Context, db bun.IDB, featureType models.FeatureType) (*models.FeatureConfig, error) {
	var config models.FeatureConfig
	err := db.NewSelect().Model(&config).Where("feature_type = ?", featureType).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &config, nil
}

func UpsertFeatureConfig(ctx context.Context, db bun.IDB, config *models.FeatureConfig) error {
	_, err := db.NewInsert().Model(config).
		On("CONFLICT (feature_type) DO UPDATE").
		Set("is_enabled = EXCLUDED.is_enabled").
		Set("daily_limit = EXCLUDED.daily_limit").
		Exec(ctx)
	return err
}

// UpsertFeatureSchedule replaces the day's assignment; the unique index on
// date keeps the calendar at one feature per day.
func UpsertFeatureSchedule(ctx context.Context, db bun.IDB, schedule *models.FeatureSchedule) error {
	_, err := db.NewInsert().Model(schedule).
		On("CONFLICT (date) DO UPDATE").
		Set("feature_type = EXCLUDED.feature_type").
		Set("is_active = EXCLUDED.is_active").
		Exec(ctx)
	return err
}
