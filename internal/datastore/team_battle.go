package datastore

import (
	"context"
	"fortuna/internal/models"
	"time"

	"github.com/uptrace/bun"
)

func CreateTableTeamBattle(ctx context.Context, db *bun.DB) error {
	for _, model := range []interface{}{
		(*models.Team)(nil),
		(*models.TeamSeason)(nil),
		(*models.TeamMember)(nil),
		(*models.TeamScore)(nil),
		(*models.TeamEventLog)(nil),
	} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}

	_, err := db.NewCreateIndex().Model((*models.TeamScore)(nil)).Index("index_team_score_team_id_season_id").IfNotExists().Unique().Column("team_id", "season_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.TeamEventLog)(nil)).Index("index_team_event_log_season_user_action").IfNotExists().Column("season_id", "user_id", "action").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.TeamEventLog)(nil)).Index("index_team_event_log_created_at").IfNotExists().Column("created_at").Exec(ctx)
	return err
}

func InsertTeam(ctx context.Context, db bun.IDB, team *models.Team) error {
	_, err := db.NewInsert().Model(team).Exec(ctx)
	return err
}

func GetTeam(ctx context.Context, db bun.IDB, teamID int64) (*models.Team, error) {
	var team models.Team
	err := db.NewSelect().Model(&team).Where("id = ?", teamID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &team, nil
}

func InsertTeamSeason(ctx context.Context, db bun.IDB, season *models.TeamSeason) error {
	_, err := db.NewInsert().Model(season).Exec(ctx)
	return err
}

func GetTeamSeason(ctx context.Context, db bun.IDB, seasonID int64) (*models.TeamSeason, error) {
	var season models.TeamSeason
	err := db.NewSelect().Model(&season).Where("id = ?", seasonID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &season, nil
}

func GetActiveTeamSeasonAt(ctx context.Context, db bun.IDB, now time.Time) (*models.TeamSeason, error) {
	var season models.TeamSeason
	err := db.NewSelect().Model(&season).
		Where("is_active = true").
		Where("starts_at <= ?", now).
		Where("ends_at >= ?", now).
		Order("starts_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &season, nil
}

func FindOverlappingActiveSeason(ctx context.Context, db bun.IDB, startsAt, endsAt time.Time) (*models.TeamSeason, error) {
	var season models.TeamSeason
	err := db.NewSelect().Model(&season).
		Where("is_active = true").
		Where("ends_at >= ?", startsAt).
		Where("starts_at <= ?", endsAt).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &season, nil
}

func ListEndedActiveSeasons(ctx context.Context, db bun.IDB, now time.Time) ([]*models.TeamSeason, error) {
	var seasons []*models.TeamSeason
	err := db.NewSelect().Model(&seasons).
		Where("is_active = true").
		Where("ends_at < ?", now).
		Order("ends_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return seasons, nil
}

func DeactivateOtherSeasons(ctx context.Context, db bun.IDB, keepID int64) error {
	_, err := db.NewUpdate().Model((*models.TeamSeason)(nil)).
		Set("is_active = false").
		Where("id != ?", keepID).
		Where("is_active = true").
		Exec(ctx)
	return err
}

func SetTeamSeasonActive(ctx context.Context, db bun.IDB, seasonID int64, isActive bool) error {
	_, err := db.NewUpdate().Model((*models.TeamSeason)(nil)).
		Set("is_active = ?", isActive).
		Where("id = ?", seasonID).
		Exec(ctx)
	return err
}

func GetTeamMember(ctx context.Context, db bun.IDB, userID int64) (*models.TeamMember, error) {
	var member models.TeamMember
	err := db.NewSelect().Model(&member).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &member, nil
}

// InsertTeamMember is insert-or-ignore on the user primary key; false
// means the user already belongs to some team.
func InsertTeamMember(ctx context.Context, db bun.IDB, member *models.TeamMember) (bool, error) {
	res, err := db.NewInsert().Model(member).On("CONFLICT (user_id) DO NOTHING").Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func DeleteTeamMember(ctx context.Context, db bun.IDB, userID int64) (bool, error) {
	res, err := db.NewDelete().Model((*models.TeamMember)(nil)).Where("user_id = ?", userID).Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func ListTeamMembers(ctx context.Context, db bun.IDB, teamID int64) ([]*models.TeamMember, error) {
	var members []*models.TeamMember
	err := db.NewSelect().Model(&members).Where("team_id = ?", teamID).Order("user_id ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return members, nil
}

func GetOrCreateTeamScore(ctx context.Context, db bun.IDB, teamID, seasonID int64) (*models.TeamScore, error) {
	score := &models.TeamScore{TeamID: teamID, SeasonID: seasonID, Points: 0, UpdatedAt: time.Now()}
	_, err := db.NewInsert().Model(score).On("CONFLICT (team_id, season_id) DO NOTHING").Exec(ctx)
	if err != nil {
		return nil, err
	}

	err = db.NewSelect().Model(score).Where("team_id = ? AND season_id = ?", teamID, seasonID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return score, nil
}

func AddTeamScorePoints(ctx context.Context, db bun.IDB, scoreID, delta int64) error {
	_, err := db.NewUpdate().Model((*models.TeamScore)(nil)).
		Set("points = points + ?", delta).
		Set("updated_at = current_timestamp").
		Where("id = ?", scoreID).
		Exec(ctx)
	return err
}

func InsertTeamEventLog(ctx context.Context, db bun.IDB, log *models.TeamEventLog) error {
	_, err := db.NewInsert().Model(log).Exec(ctx)
	return err
}

// CountUserActionsBetween counts a user's same-action events inside the
// local day window; the caller compares against the per-user ceiling.
func CountUserActionsBetween(ctx context.Context, db bun.IDB, seasonID, userID int64, action models.TeamAction, from, to time.Time) (int, error) {
	return db.NewSelect().Model((*models.TeamEventLog)(nil)).
		Where("season_id = ? AND user_id = ? AND action = ?", seasonID, userID, action).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(ctx)
}

// GetTeamStandings ranks by points desc, latest event desc, team id asc.
// The order is total, so no tie survives.
func GetTeamStandings(ctx context.Context, db bun.IDB, seasonID int64) ([]*models.TeamStanding, error) {
	var standings []*models.TeamStanding
	err := db.NewSelect().
		ColumnExpr("ts.team_id AS team_id").
		ColumnExpr("t.name AS team_name").
		ColumnExpr("ts.points AS points").
		ColumnExpr("MAX(tel.created_at) AS last_event_at").
		TableExpr("team_score ts").
		Join("JOIN team t ON t.id = ts.team_id").
		Join("LEFT JOIN team_event_log tel ON tel.team_id = ts.team_id AND tel.season_id = ts.season_id").
		Where("ts.season_id = ?", seasonID).
		GroupExpr("ts.team_id, t.name, ts.points").
		OrderExpr("ts.points DESC, MAX(tel.created_at) DESC NULLS LAST, ts.team_id ASC").
		Scan(ctx, &standings)
	if err != nil {
		return nil, err
	}

	return standings, nil
}

func GetTeamContributors(ctx context.Context, db bun.IDB, teamID, seasonID int64, limit, offset int) ([]*models.TeamContribution, error) {
	var rows []*models.TeamContribution
	err := db.NewSelect().
		ColumnExpr("user_id").
		ColumnExpr("SUM(delta) AS points").
		TableExpr("team_event_log").
		Where("team_id = ? AND season_id = ?", teamID, seasonID).
		Where("user_id IS NOT NULL").
		GroupExpr("user_id").
		OrderExpr("SUM(delta) DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}

	return rows, nil
}
