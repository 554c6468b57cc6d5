package datastore

import (
	"context"
	"fortuna/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableNewMemberDice(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.NewMemberDiceEligibility)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.NewMemberDiceEligibility)(nil)).Index("index_new_member_dice_eligibility_user_id").IfNotExists().Unique().Column("user_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateTable().Model((*models.NewMemberDiceLog)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	// Single-use forever: the unique index is the gate, not a pre-check.
	_, err = db.NewCreateIndex().Model((*models.NewMemberDiceLog)(nil)).Index("index_new_member_dice_log_user_id").IfNotExists().Unique().Column("user_id").Exec(ctx)
	return err
}

func GetEligibility(ctx context.Context, db bun.IDB, userID int64) (*models.NewMemberDiceEligibility, error) {
	var row models.NewMemberDiceEligibility
	err := db.NewSelect().Model(&row).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &row, nil
}

func UpsertEligibility(ctx context.Context, db bun.IDB, row *models.NewMemberDiceEligibility) error {
	_, err := db.NewInsert().Model(row).
		On("CONFLICT (user_id) DO UPDATE").
		Set("is_eligible = EXCLUDED.is_eligible").
		Set("campaign_key = EXCLUDED.campaign_key").
		Set("granted_by = EXCLUDED.granted_by").
		Set("expires_at = EXCLUDED.expires_at").
		Set("revoked_at = EXCLUDED.revoked_at").
		Set("updated_at = current_timestamp").
		Exec(ctx)
	return err
}

func RevokeEligibility(ctx context.Context, db bun.IDB, userID int64) (bool, error) {
	res, err := db.NewUpdate().Model((*models.NewMemberDiceEligibility)(nil)).
		Set("revoked_at = current_timestamp").
		Set("updated_at = current_timestamp").
		Where("user_id = ?", userID).
		Where("revoked_at IS NULL").
		Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// InsertNewMemberDiceLog returns false when the user has already played;
// the unique index keeps a concurrent duplicate down to one success.
func InsertNewMemberDiceLog(ctx context.Context, db bun.IDB, log *models.NewMemberDiceLog) (bool, error) {
	res, err := db.NewInsert().Model(log).On("CONFLICT (user_id) DO NOTHING").Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func HasPlayedNewMemberDice(ctx context.Context, db bun.IDB, userID int64) (bool, error) {
	count, err := db.NewSelect().Model((*models.NewMemberDiceLog)(nil)).Where("user_id = ?", userID).Count(ctx)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
