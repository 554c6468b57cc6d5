package datastore

import (
	"context"
	"fortuna/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableSeasonPass(ctx context.Context, db *bun.DB) error {
	for _, model := range []interface{}{
		(*models.Season)(nil),
		(*models.SeasonLevel)(nil),
		(*models.SeasonProgress)(nil),
		(*models.SeasonStampLog)(nil),
		(*models.SeasonRewardLog)(nil),
	} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}

	_, err := db.NewCreateIndex().Model((*models.SeasonLevel)(nil)).Index("index_season_level_season_id_level").IfNotExists().Unique().Column("season_id", "level").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.SeasonProgress)(nil)).Index("index_season_progress_user_id_season_id").IfNotExists().Unique().Column("user_id", "season_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.SeasonStampLog)(nil)).Index("index_season_stamp_log_user_season_date").IfNotExists().Unique().Column("user_id", "season_id", "date").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.SeasonRewardLog)(nil)).Index("index_season_reward_log_user_season_level").IfNotExists().Unique().Column("user_id", "season_id", "level").Exec(ctx)
	return err
}

func GetSeasonsCovering(ctx context.Context, db bun.IDB, date string) ([]*models.Season, error) {
	var seasons []*models.Season
	err := db.NewSelect().Model(&seasons).
		Where("start_date <= ?", date).
		Where("end_date >= ?", date).
		Where("is_active = true").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return seasons, nil
}

func InsertSeason(ctx context.Context, db bun.IDB, season *models.Season) error {
	_, err := db.NewInsert().Model(season).Exec(ctx)
	return err
}

func InsertSeasonLevels(ctx context.Context, db bun.IDB, levels []*models.SeasonLevel) error {
	if len(levels) == 0 {
		return nil
	}
	_, err := db.NewInsert().Model(&levels).Exec(ctx)
	return err
}

func GetSeasonLevels(ctx context.Context, db bun.IDB, seasonID int64) ([]*models.SeasonLevel, error) {
	var levels []*models.SeasonLevel
	err := db.NewSelect().Model(&levels).
		Where("season_id = ?", seasonID).
		Order("level ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return levels, nil
}

func GetSeasonLevel(ctx context.Context, db bun.IDB, seasonID int64, level int) (*models.SeasonLevel, error) {
	var row models.SeasonLevel
	err := db.NewSelect().Model(&row).
		Where("season_id = ? AND level = ?", seasonID, level).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &row, nil
}

// GetOrCreateProgress materializes the per-user season progress row on
// first interaction, insert-or-ignore under the unique index.
func GetOrCreateProgress(ctx context.Context, db bun.IDB, userID, seasonID int64) (*models.SeasonProgress, error) {
	progress := &models.SeasonProgress{UserID: userID, SeasonID: seasonID, CurrentLevel: 1}
	_, err := db.NewInsert().Model(progress).On("CONFLICT (user_id, season_id) DO NOTHING").Exec(ctx)
	if err != nil {
		return nil, err
	}

	err = db.NewSelect().Model(progress).Where("user_id = ? AND season_id = ?", userID, seasonID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return progress, nil
}

func UpdateProgress(ctx context.Context, db bun.IDB, progress *models.SeasonProgress) error {
	_, err := db.NewUpdate().Model(progress).
		Set("current_level = ?", progress.CurrentLevel).
		Set("current_xp = ?", progress.CurrentXP).
		Set("total_stamps = ?", progress.TotalStamps).
		Set("last_stamp_date = ?", progress.LastStampDate).
		Set("updated_at = current_timestamp").
		WherePK().
		Exec(ctx)
	return err
}

// InsertStampLog relies on the (user_id, season_id, date) unique index;
// false means the user already stamped that day.
func InsertStampLog(ctx context.Context, db bun.IDB, log *models.SeasonStampLog) (bool, error) {
	res, err := db.NewInsert().Model(log).On("CONFLICT (user_id, season_id, date) DO NOTHING").Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func HasStampForDate(ctx context.Context, db bun.IDB, userID, seasonID int64, date string) (bool, error) {
	count, err := db.NewSelect().Model((*models.SeasonStampLog)(nil)).
		Where("user_id = ? AND season_id = ? AND date = ?", userID, seasonID, date).
		Count(ctx)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// InsertRewardLog enforces one reward per (user, season, level); false
// means it was already claimed.
func InsertRewardLog(ctx context.Context, db bun.IDB, log *models.SeasonRewardLog) (bool, error) {
	res, err := db.NewInsert().Model(log).On("CONFLICT (user_id, season_id, level) DO NOTHING").Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func HasRewardLog(ctx context.Context, db bun.IDB, userID, seasonID int64, level int) (bool, error) {
	count, err := db.NewSelect().Model((*models.SeasonRewardLog)(nil)).
		Where("user_id = ? AND season_id = ? AND level = ?", userID, seasonID, level).
		Count(ctx)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
