package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fortuna/internal/datastore"
	"fortuna/internal/models"

	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceSeasonPass struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB

	serviceWallet *ServiceWallet
	appConfig     *models.AppConfig
}

func NewServiceSeasonPass(container *do.Injector) (*ServiceSeasonPass, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
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

	return &ServiceSeasonPass{container, postgresDB, readonlyPostgresDB, serviceWallet, appConfig}, nil
}

func SeasonRewardLabel(seasonID int64, level int) string {
	return fmt.Sprintf("SEASONPASS_S%d_L%d", seasonID, level)
}

// AchievedLevel returns the highest level whose required XP is covered by
// xp, or 0 when none is. Levels must be sorted ascending by level.
func AchievedLevel(levels []*models.SeasonLevel, xp int) int {
	achieved := 0
	for _, level := range levels {
		if level.RequiredXP <= xp {
			achieved = level.Level
		}
	}
	return achieved
}

// GetActiveSeason resolves the season covering now. Exactly one active
// season may cover a date; overlap is an operator mistake surfaced as
// ErrInvalidConfig rather than silently picking one.
func (service *ServiceSeasonPass) GetActiveSeason(ctx context.Context, now time.Time) (*models.Season, error) {
	seasons, err := datastore.GetSeasonsCovering(ctx, service.readonlyPostgresDB, service.appConfig.Today(now))
	if err != nil {
		return nil, err
	}

	if len(seasons) == 0 {
		return nil, ErrNoActiveSeason
	}
	if len(seasons) > 1 {
		return nil, ErrInvalidConfig
	}
	return seasons[0], nil
}

type SeasonPassStatus struct {
	Season       *models.Season         `json:"season"`
	Progress     *models.SeasonProgress `json:"progress"`
	Levels       []*models.SeasonLevel  `json:"levels"`
	Today        string                 `json:"today"`
	StampedToday bool                   `json:"stamped_today"`
}

func (service *ServiceSeasonPass) GetStatus(ctx context.Context, userID int64, now time.Time) (*SeasonPassStatus, error) {
	season, err := service.GetActiveSeason(ctx, now)
	if err != nil {
		return nil, err
	}

	progress, err := datastore.GetOrCreateProgress(ctx, service.postgresDB, userID, season.ID)
	if err != nil {
		return nil, err
	}

	levels, err := datastore.GetSeasonLevels(ctx, service.readonlyPostgresDB, season.ID)
	if err != nil {
		return nil, err
	}

	today := service.appConfig.Today(now)
	stamped, err := datastore.HasStampForDate(ctx, service.readonlyPostgresDB, userID, season.ID, today)
	if err != nil {
		return nil, err
	}

	return &SeasonPassStatus{
		Season:       season,
		Progress:     progress,
		Levels:       levels,
		Today:        today,
		StampedToday: stamped,
	}, nil
}

// AddStamp applies the daily stamp: XP, level-ups (a big XP bonus can jump
// several levels at once) and the auto-claim rewards of every newly
// reached level. The stamp log insert is first inside the transaction, so
// a concurrent duplicate rolls the whole thing back.
func (service *ServiceSeasonPass) AddStamp(ctx context.Context, userID int64, sourceFeature string, xpBonus int, now time.Time) (*models.StampResult, error) {
	season, err := service.GetActiveSeason(ctx, now)
	if err != nil {
		return nil, err
	}

	levels, err := datastore.GetSeasonLevels(ctx, service.readonlyPostgresDB, season.ID)
	if err != nil {
		return nil, err
	}

	today := service.appConfig.Today(now)
	xpToAdd := season.BaseXPPerStamp + xpBonus

	var result *models.StampResult
	err = service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		progress, err := datastore.GetOrCreateProgress(ctx, tx, userID, season.ID)
		if err != nil {
			return err
		}

		inserted, err := datastore.InsertStampLog(ctx, tx, &models.SeasonStampLog{
			UserID:        userID,
			SeasonID:      season.ID,
			ProgressID:    progress.ID,
			Date:          today,
			SourceFeature: sourceFeature,
			XPEarned:      xpToAdd,
		})
		if err != nil {
			return err
		}
		if !inserted {
			return ErrAlreadyStampedToday
		}

		previousLevel := progress.CurrentLevel
		progress.CurrentXP += xpToAdd
		progress.TotalStamps++
		stampDate := now.In(service.appConfig.Location)
		progress.LastStampDate = &stampDate

		achieved := AchievedLevel(levels, progress.CurrentXP)
		if achieved > progress.CurrentLevel {
			progress.CurrentLevel = achieved
		}

		rewards := []*models.SeasonRewardLog{}
		for _, level := range levels {
			if level.Level <= previousLevel || level.Level > progress.CurrentLevel || !level.AutoClaim {
				continue
			}

			rewardLog, err := service.claimLevelTx(ctx, tx, userID, season.ID, progress.ID, level, now)
			if err != nil {
				if errors.Is(err, ErrRewardAlreadyClaimed) {
					continue
				}
				return err
			}
			rewards = append(rewards, rewardLog)
		}

		err = datastore.UpdateProgress(ctx, tx, progress)
		if err != nil {
			return err
		}

		result = &models.StampResult{
			AddedStamp:   1,
			XPAdded:      xpToAdd,
			CurrentLevel: progress.CurrentLevel,
			LeveledUp:    progress.CurrentLevel > previousLevel,
			Rewards:      rewards,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	service.serviceWallet.ClearBalanceCache(ctx, userID, models.TokenPoint)
	return result, nil
}

// MaybeAddStamp is the hook the games call after a play. No active season
// and already-stamped are normal outcomes here, not errors.
func (service *ServiceSeasonPass) MaybeAddStamp(ctx context.Context, userID int64, sourceFeature string, now time.Time) (*models.StampResult, error) {
	result, err := service.AddStamp(ctx, userID, sourceFeature, 0, now)
	if err != nil {
		if errors.Is(err, ErrNoActiveSeason) || errors.Is(err, ErrAlreadyStampedToday) {
			return nil, nil
		}
		return nil, err
	}
	return result, nil
}

// ClaimReward claims a manual (non-auto) reward for a reached level.
func (service *ServiceSeasonPass) ClaimReward(ctx context.Context, userID int64, level int, now time.Time) (*models.SeasonRewardLog, error) {
	season, err := service.GetActiveSeason(ctx, now)
	if err != nil {
		return nil, err
	}

	levelRow, err := datastore.GetSeasonLevel(ctx, service.readonlyPostgresDB, season.ID, level)
	if err != nil {
		return nil, ErrLevelNotFound
	}
	if levelRow.AutoClaim {
		return nil, ErrAutoClaimLevel
	}

	var rewardLog *models.SeasonRewardLog
	err = service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		progress, err := datastore.GetOrCreateProgress(ctx, tx, userID, season.ID)
		if err != nil {
			return err
		}
		if progress.CurrentLevel < level {
			return ErrLevelNotReached
		}

		rewardLog, err = service.claimLevelTx(ctx, tx, userID, season.ID, progress.ID, levelRow, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	service.serviceWallet.ClearBalanceCache(ctx, userID, models.TokenPoint)
	return rewardLog, nil
}

// claimLevelTx writes the reward log and pays the reward. The unique index
// on (user, season, level) makes the claim at-most-once.
func (service *ServiceSeasonPass) claimLevelTx(ctx context.Context, tx bun.Tx, userID, seasonID, progressID int64, level *models.SeasonLevel, now time.Time) (*models.SeasonRewardLog, error) {
	rewardLog := &models.SeasonRewardLog{
		UserID:       userID,
		SeasonID:     seasonID,
		ProgressID:   progressID,
		Level:        level.Level,
		RewardType:   level.RewardType,
		RewardAmount: level.RewardAmount,
		ClaimedAt:    now,
	}

	inserted, err := datastore.InsertRewardLog(ctx, tx, rewardLog)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, ErrRewardAlreadyClaimed
	}

	if level.RewardType == models.RewardPoint && level.RewardAmount > 0 {
		_, _, err = service.serviceWallet.GrantTx(ctx, tx, userID, models.TokenPoint, level.RewardAmount, models.ReasonSeasonPass, SeasonRewardLabel(seasonID, level.Level), nil)
		if err != nil {
			return nil, err
		}
	}

	return rewardLog, nil
}

// CreateSeason is the admin entry for provisioning a season and its level
// ladder in one shot.
func (service *ServiceSeasonPass) CreateSeason(ctx context.Context, season *models.Season, levels []*models.SeasonLevel) (*models.Season, error) {
	if season.MaxLevel <= 0 || season.BaseXPPerStamp <= 0 || !season.EndDate.After(season.StartDate) {
		return nil, ErrInvalidConfig
	}

	err := service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := datastore.InsertSeason(ctx, tx, season)
		if err != nil {
			return err
		}

		for _, level := range levels {
			level.SeasonID = season.ID
		}
		return datastore.InsertSeasonLevels(ctx, tx, levels)
	})
	if err != nil {
		return nil, err
	}

	return season, nil
}
