package datastore

import (
	"context"
	"fortuna/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableRanking(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.RankingDaily)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.RankingDaily)(nil)).Index("index_ranking_daily_date_user").IfNotExists().Unique().Column("date", "user_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateTable().Model((*models.ExternalRanking)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.ExternalRanking)(nil)).Index("index_external_ranking_user_id").IfNotExists().Unique().Column("user_id").Exec(ctx)
	return err
}

func GetDailyRankingTop(ctx context.Context, db bun.IDB, date string, limit int) ([]*models.RankingDaily, error) {
	var rows []*models.RankingDaily
	err := db.NewSelect().Model(&rows).
		Where("date = ?", date).
		Order("rank ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func GetDailyRankingForUser(ctx context.Context, db bun.IDB, date string, userID int64) (*models.RankingDaily, error) {
	var row models.RankingDaily
	err := db.NewSelect().Model(&row).
		Where("date = ? AND user_id = ?", date, userID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &row, nil
}

// ReplaceDailyRanking swaps the whole leaderboard of one date. Run inside
// a transaction so readers never see a half-built day.
func ReplaceDailyRanking(ctx context.Context, db bun.IDB, date string, rows []*models.RankingDaily) error {
	_, err := db.NewDelete().Model((*models.RankingDaily)(nil)).Where("date = ?", date).Exec(ctx)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		return nil
	}
	_, err = db.NewInsert().Model(&rows).Exec(ctx)
	return err
}

func ListExternalRanking(ctx context.Context, db bun.IDB) ([]*models.ExternalRanking, error) {
	var rows []*models.ExternalRanking
	err := db.NewSelect().Model(&rows).
		OrderExpr("deposit_amount DESC, play_count DESC, user_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func GetExternalRankingByUser(ctx context.Context, db bun.IDB, userID int64) (*models.ExternalRanking, error) {
	var row models.ExternalRanking
	err := db.NewSelect().Model(&row).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &row, nil
}

func UpsertExternalRanking(ctx context.Context, db bun.IDB, row *models.ExternalRanking) error {
	_, err := db.NewInsert().Model(row).
		On("CONFLICT (user_id) DO UPDATE").
		Set("deposit_amount = EXCLUDED.deposit_amount").
		Set("play_count = EXCLUDED.play_count").
		Set("memo = EXCLUDED.memo").
		Set("updated_at = current_timestamp").
		Exec(ctx)
	return err
}

func GetExternalRankingTop(ctx context.Context, db bun.IDB, limit int) ([]*models.ExternalRanking, error) {
	var rows []*models.ExternalRanking
	err := db.NewSelect().Model(&rows).
		OrderExpr("deposit_amount DESC, play_count DESC, user_id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func DeleteExternalRanking(ctx context.Context, db bun.IDB, userID int64) (bool, error) {
	res, err := db.NewDelete().Model((*models.ExternalRanking)(nil)).Where("user_id = ?", userID).Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
