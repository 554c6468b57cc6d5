package datastore

import (
	"context"
	"fortuna/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableGameLog(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.GamePlayLog)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.GamePlayLog)(nil)).Index("index_game_play_log_user_feature_date").IfNotExists().Column("user_id", "feature_type", "date").Exec(ctx)
	return err
}

func InsertGamePlayLog(ctx context.Context, db bun.IDB, log *models.GamePlayLog) error {
	_, err := db.NewInsert().Model(log).Exec(ctx)
	return err
}

// CountPlaysForDate feeds the daily play gate; it runs inside the same
// transaction as the log insert that follows it.
func CountPlaysForDate(ctx context.Context, db bun.IDB, userID int64, featureType models.FeatureType, date string) (int, error) {
	return db.NewSelect().Model((*models.GamePlayLog)(nil)).
		Where("user_id = ? AND feature_type = ? AND date = ?", userID, featureType, date).
		Count(ctx)
}

func GetRecentPlays(ctx context.Context, db bun.IDB, userID int64, featureType models.FeatureType, limit int) ([]*models.GamePlayLog, error) {
	var logs []*models.GamePlayLog
	err := db.NewSelect().Model(&logs).
		Where("user_id = ? AND feature_type = ?", userID, featureType).
		Order("id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return logs, nil
}
