package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"fortuna/internal/datastore"
	"fortuna/internal/datastore/redis_store"
	"fortuna/internal/models"

	"github.com/go-redsync/redsync/v4"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

const TEAM_POINTS_PER_PLAY = 10

type ServiceTeamBattle struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	rs                 *redsync.Redsync

	serviceWallet *ServiceWallet
	appConfig     *models.AppConfig
}

func NewServiceTeamBattle(container *do.Injector) (*ServiceTeamBattle, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		return nil, err
	}

	serviceWallet, err := do.Invoke[*ServiceWallet](container)
	if err != nil {
		return nil, err
	}

	appConfig, err := do.Invoke[*models.AppConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceTeamBattle{container, redisDB, postgresDB, readonlyPostgresDB, rs, serviceWallet, appConfig}, nil
}

// intConfig reads an operator override from the config table, falling back
// to the built-in value when the key is absent or the lookup fails.
func (service *ServiceTeamBattle) intConfig(ctx context.Context, key string, fallback int) int {
	serviceConfig, err := do.Invoke[*ServiceConfig](service.container)
	if err != nil {
		return fallback
	}

	value, err := serviceConfig.GetIntConfig(ctx, key, fallback)
	if err != nil {
		log.Println(err)
		return fallback
	}
	return value
}

// TeamSettleLabel is the per-season wallet label of the winner payout; the
// ledger index makes a re-run of settlement pay nobody twice.
func TeamSettleLabel(seasonID int64) string {
	return fmt.Sprintf("TEAMBATTLE_S%d_R1", seasonID)
}

func (service *ServiceTeamBattle) GetActiveSeason(ctx context.Context, now time.Time) (*models.TeamSeason, error) {
	season, err := datastore.GetActiveTeamSeasonAt(ctx, service.readonlyPostgresDB, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoActiveSeason
		}
		return nil, err
	}
	return season, nil
}

// CreateSeason rejects a new active season whose window overlaps an
// existing active one.
func (service *ServiceTeamBattle) CreateSeason(ctx context.Context, season *models.TeamSeason) (*models.TeamSeason, error) {
	if !season.EndsAt.After(season.StartsAt) {
		return nil, ErrInvalidConfig
	}

	if season.IsActive {
		_, err := datastore.FindOverlappingActiveSeason(ctx, service.postgresDB, season.StartsAt, season.EndsAt)
		if err == nil {
			return nil, ErrSeasonConflict
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}

	err := datastore.InsertTeamSeason(ctx, service.postgresDB, season)
	if err != nil {
		return nil, err
	}
	return season, nil
}

func (service *ServiceTeamBattle) SetSeasonActive(ctx context.Context, seasonID int64, isActive bool) error {
	_, err := datastore.GetTeamSeason(ctx, service.postgresDB, seasonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNoActiveSeason
		}
		return err
	}
	return datastore.SetTeamSeasonActive(ctx, service.postgresDB, seasonID, isActive)
}

func (service *ServiceTeamBattle) CreateTeam(ctx context.Context, name string, leaderUserID int64) (*models.Team, error) {
	team := &models.Team{Name: name, IsActive: true}
	err := datastore.InsertTeam(ctx, service.postgresDB, team)
	if err != nil {
		return nil, err
	}

	if leaderUserID != 0 {
		err = service.JoinTeam(ctx, team.ID, leaderUserID, "leader")
		if err != nil {
			return nil, err
		}
	}
	return team, nil
}

// JoinTeam relies on the user_id primary key: whoever inserts first owns
// the membership, a loser already on the same team is a no-op, anywhere
// else is a conflict.
func (service *ServiceTeamBattle) JoinTeam(ctx context.Context, teamID, userID int64, role string) error {
	team, err := datastore.GetTeam(ctx, service.postgresDB, teamID)
	if err != nil || !team.IsActive {
		return ErrTeamNotFound
	}

	if role == "" {
		role = "member"
	}
	inserted, err := datastore.InsertTeamMember(ctx, service.postgresDB, &models.TeamMember{
		UserID: userID,
		TeamID: teamID,
		Role:   role,
	})
	if err != nil {
		return err
	}
	if !inserted {
		existing, err := datastore.GetTeamMember(ctx, service.postgresDB, userID)
		if err != nil {
			return err
		}
		if existing.TeamID != teamID {
			return ErrAlreadyInTeam
		}
	}
	return nil
}

func (service *ServiceTeamBattle) LeaveTeam(ctx context.Context, userID int64) error {
	deleted, err := datastore.DeleteTeamMember(ctx, service.postgresDB, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotInTeam
	}
	return nil
}

func (service *ServiceTeamBattle) GetMembership(ctx context.Context, userID int64) (*models.TeamMember, error) {
	member, err := datastore.GetTeamMember(ctx, service.readonlyPostgresDB, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotInTeam
		}
		return nil, err
	}
	return member, nil
}

// AddPoints mutates a team's score and appends the event log in one
// transaction. Rate-limited actions are capped per user per local day.
func (service *ServiceTeamBattle) AddPoints(ctx context.Context, teamID int64, delta int64, action models.TeamAction, userID *int64, seasonID int64, meta map[string]interface{}, now time.Time) (*models.TeamScore, error) {
	if delta == 0 {
		return nil, ErrZeroDelta
	}

	var season *models.TeamSeason
	var err error
	if seasonID != 0 {
		season, err = datastore.GetTeamSeason(ctx, service.postgresDB, seasonID)
		if err != nil {
			return nil, ErrNoActiveSeason
		}
	} else {
		season, err = service.GetActiveSeason(ctx, now)
		if err != nil {
			return nil, err
		}
	}

	if action.RateLimited() && userID != nil {
		dayStart, dayEnd := service.localDayBounds(now)
		count, err := datastore.CountUserActionsBetween(ctx, service.readonlyPostgresDB, season.ID, *userID, action, dayStart, dayEnd)
		if err != nil {
			return nil, err
		}
		limit := service.intConfig(ctx, CONFIG_TEAM_DAILY_ACTION_LIMIT, service.appConfig.TeamDailyActionLimit)
		if count >= limit {
			return nil, ErrDailyLimitReached
		}
	}

	var score *models.TeamScore
	err = service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		score, err = datastore.GetOrCreateTeamScore(ctx, tx, teamID, season.ID)
		if err != nil {
			return err
		}

		err = datastore.AddTeamScorePoints(ctx, tx, score.ID, delta)
		if err != nil {
			return err
		}
		score.Points += delta

		return datastore.InsertTeamEventLog(ctx, tx, &models.TeamEventLog{
			TeamID:   teamID,
			SeasonID: season.ID,
			UserID:   userID,
			Action:   action,
			Delta:    delta,
			Meta:     meta,
		})
	})
	if err != nil {
		return nil, err
	}

	err = redis_store.DeleteTeamStandings(ctx, service.redisDB, season.ID)
	if err != nil {
		log.Println(err)
	}
	return score, nil
}

// RecordGamePlay is the game hook: a play scores for the player's team,
// silently skipping users with no team or no running season.
func (service *ServiceTeamBattle) RecordGamePlay(ctx context.Context, userID int64, featureType models.FeatureType, now time.Time) error {
	member, err := service.GetMembership(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotInTeam) {
			return nil
		}
		return err
	}

	_, err = service.AddPoints(ctx, member.TeamID, TEAM_POINTS_PER_PLAY, models.TeamActionGamePlay, &userID, 0, map[string]interface{}{
		"feature": featureType,
	}, now)
	if errors.Is(err, ErrNoActiveSeason) || errors.Is(err, ErrDailyLimitReached) {
		return nil
	}
	return err
}

// GetStandings ranks teams by points, breaking ties by most recent scoring
// event. The ranked slice is snapshotted in redis between refreshes.
func (service *ServiceTeamBattle) GetStandings(ctx context.Context, seasonID int64) ([]*models.TeamStanding, error) {
	standings, err := redis_store.GetTeamStandings(ctx, service.redisDB, seasonID)
	if err == nil && len(standings) > 0 {
		return standings, nil
	}

	standings, err = datastore.GetTeamStandings(ctx, service.readonlyPostgresDB, seasonID)
	if err != nil {
		return nil, err
	}
	for i := range standings {
		standings[i].Rank = i + 1
	}

	err = redis_store.SetTeamStandings(ctx, service.redisDB, seasonID, standings, CACHE_TTL_1_MIN)
	if err != nil {
		log.Println(err)
	}
	return standings, nil
}

func (service *ServiceTeamBattle) GetContributors(ctx context.Context, teamID, seasonID int64, limit, offset int) ([]*models.TeamContribution, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return datastore.GetTeamContributors(ctx, service.readonlyPostgresDB, teamID, seasonID, limit, offset)
}

// SettleRewards pays every member of the leading team. Membership is read
// at settlement time, and each payout carries the season label, so the
// whole call can be retried after a crash without double pay.
func (service *ServiceTeamBattle) SettleRewards(ctx context.Context, seasonID int64) (int, error) {
	mutex := service.rs.NewMutex(LockKeyTeamSettlement(seasonID))
	if err := mutex.TryLock(); err != nil {
		return 0, ErrSettlementLock
	}
	// nolint:errcheck
	defer mutex.Unlock()

	standings, err := datastore.GetTeamStandings(ctx, service.postgresDB, seasonID)
	if err != nil {
		return 0, err
	}
	if len(standings) == 0 {
		return 0, ErrNoStandings
	}

	winner := standings[0]
	members, err := datastore.ListTeamMembers(ctx, service.postgresDB, winner.TeamID)
	if err != nil {
		return 0, err
	}

	reward := int64(service.intConfig(ctx, CONFIG_TEAM_DAILY_REWARD_POINT, int(service.appConfig.TeamDailyRewardPoint)))

	label := TeamSettleLabel(seasonID)
	paid := 0
	for _, member := range members {
		_, applied, err := service.serviceWallet.Grant(ctx, member.UserID, models.TokenPoint, reward, models.ReasonTeamBattle, label, map[string]interface{}{
			"season_id": seasonID,
			"team_id":   winner.TeamID,
		})
		if err != nil {
			return paid, err
		}
		if applied {
			paid++
		}
	}

	return paid, nil
}

// SettleEndedSeasons settles and deactivates every season whose window has
// passed while still flagged active. Returns the number of payouts made.
func (service *ServiceTeamBattle) SettleEndedSeasons(ctx context.Context, now time.Time) (int, error) {
	seasons, err := datastore.ListEndedActiveSeasons(ctx, service.postgresDB, now)
	if err != nil {
		return 0, err
	}

	paid := 0
	for _, season := range seasons {
		n, err := service.SettleRewards(ctx, season.ID)
		paid += n
		if err != nil && !errors.Is(err, ErrNoStandings) && !errors.Is(err, ErrSettlementLock) {
			return paid, err
		}
		if err := datastore.SetTeamSeasonActive(ctx, service.postgresDB, season.ID, false); err != nil {
			return paid, err
		}
	}
	return paid, nil
}

// RotateSeason opens a fresh midnight-to-midnight season in the service
// timezone when auto-rotation is on and no window covers now.
func (service *ServiceTeamBattle) RotateSeason(ctx context.Context, now time.Time) (*models.TeamSeason, error) {
	season, err := service.GetActiveSeason(ctx, now)
	if err == nil {
		return season, nil
	}
	if !errors.Is(err, ErrNoActiveSeason) {
		return nil, err
	}

	if !service.appConfig.TeamSeasonAutoRotate {
		return nil, ErrNoActiveSeason
	}

	start, end := service.localDayBounds(now)
	next := &models.TeamSeason{
		Name:        fmt.Sprintf("AUTO-%s", service.appConfig.Today(now)),
		StartsAt:    start,
		EndsAt:      end,
		IsActive:    true,
		AutoRotated: true,
	}
	err = service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := datastore.InsertTeamSeason(ctx, tx, next)
		if err != nil {
			return err
		}
		return datastore.DeactivateOtherSeasons(ctx, tx, next.ID)
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

func (service *ServiceTeamBattle) localDayBounds(now time.Time) (time.Time, time.Time) {
	local := now.In(service.appConfig.Location)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, service.appConfig.Location)
	return start, start.Add(24 * time.Hour)
}
