package datastore

import (
	"context"
	"fortuna/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableActivity(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.UserActivity)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.UserActivity)(nil)).Index("index_user_activity_user_id").IfNotExists().Unique().Column("user_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateTable().Model((*models.UserActivityEvent)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.UserActivityEvent)(nil)).Index("index_user_activity_event_user_event").IfNotExists().Unique().Column("user_id", "event_id").Exec(ctx)
	return err
}

func GetOrCreateActivity(ctx context.Context, db bun.IDB, userID int64) (*models.UserActivity, error) {
	activity := &models.UserActivity{UserID: userID}
	_, err := db.NewInsert().Model(activity).On("CONFLICT (user_id) DO NOTHING").Exec(ctx)
	if err != nil {
		return nil, err
	}

	err = db.NewSelect().Model(activity).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return activity, nil
}

// InsertActivityEvent returns false for a replayed event id; the caller
// skips the counter mutation in that case.
func InsertActivityEvent(ctx context.Context, db bun.IDB, event *models.UserActivityEvent) (bool, error) {
	res, err := db.NewInsert().Model(event).On("CONFLICT (user_id, event_id) DO NOTHING").Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func UpdateActivity(ctx context.Context, db bun.IDB, activity *models.UserActivity) error {
	_, err := db.NewUpdate().Model(activity).
		Set("last_login_at = ?", activity.LastLoginAt).
		Set("last_charge_at = ?", activity.LastChargeAt).
		Set("roulette_plays = ?", activity.RoulettePlays).
		Set("dice_plays = ?", activity.DicePlays).
		Set("lottery_plays = ?", activity.LotteryPlays).
		Set("total_play_duration = ?", activity.TotalPlayDuration).
		Set("last_bonus_used_at = ?", activity.LastBonusUsedAt).
		Set("updated_at = current_timestamp").
		WherePK().
		Exec(ctx)
	return err
}
