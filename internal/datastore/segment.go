package datastore

import (
	"context"
	"fortuna/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableSegment(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.SegmentRule)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.SegmentRule)(nil)).Index("index_segment_rule_priority").IfNotExists().Column("priority").Exec(ctx)
	return err
}

func ListActiveSegmentRules(ctx context.Context, db bun.IDB) ([]*models.SegmentRule, error) {
	var rules []*models.SegmentRule
	err := db.NewSelect().Model(&rules).
		Where("is_active = true").
		Order("priority ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return rules, nil
}

func InsertSegmentRule(ctx context.Context, db bun.IDB, rule *models.SegmentRule) error {
	_, err := db.NewInsert().Model(rule).Exec(ctx)
	return err
}

func UpdateSegmentRule(ctx context.Context, db bun.IDB, rule *models.SegmentRule) error {
	_, err := db.NewUpdate().Model(rule).
		Set("segment_key = ?", rule.SegmentKey).
		Set("priority = ?", rule.Priority).
		Set("condition = ?", rule.Condition).
		Set("is_active = ?", rule.IsActive).
		Set("updated_at = current_timestamp").
		WherePK().
		Exec(ctx)
	return err
}

func DeleteSegmentRule(ctx context.Context, db bun.IDB, ruleID int64) (bool, error) {
	res, err := db.NewDelete().Model((*models.SegmentRule)(nil)).Where("id = ?", ruleID).Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
