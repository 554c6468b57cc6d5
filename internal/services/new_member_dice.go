package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fortuna/internal/datastore"
	"fortuna/internal/models"

	"github.com/go-redsync/redsync/v4"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceNewMemberDice struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	rs                 *redsync.Redsync

	serviceWallet *ServiceWallet
	appConfig     *models.AppConfig
	gacha         *ServiceGacha
}

func NewServiceNewMemberDice(container *do.Injector) (*ServiceNewMemberDice, error) {
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

	gacha, err := NewServiceGacha(NewMemberDiceSegments())
	if err != nil {
		return nil, err
	}

	return &ServiceNewMemberDice{container, postgresDB, readonlyPostgresDB, rs, serviceWallet, appConfig, gacha}, nil
}

type NewMemberDiceStatus struct {
	Eligible  bool       `json:"eligible"`
	Played    bool       `json:"played"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func (service *ServiceNewMemberDice) GetStatus(ctx context.Context, userID int64) (*NewMemberDiceStatus, error) {
	eligibility, err := datastore.GetEligibility(ctx, service.readonlyPostgresDB, userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	played, err := datastore.HasPlayedNewMemberDice(ctx, service.readonlyPostgresDB, userID)
	if err != nil {
		return nil, err
	}

	status := &NewMemberDiceStatus{
		Eligible: eligibility.Active(time.Now()) && !played,
		Played:   played,
	}
	if eligibility != nil {
		status.ExpiresAt = eligibility.ExpiresAt
	}
	return status, nil
}

// Play rolls the single-use welcome dice. The unique log row is the replay
// guard: a second attempt loses the insert and gets ErrAlreadyPlayed even
// when two requests race past the eligibility read.
func (service *ServiceNewMemberDice) Play(ctx context.Context, user *models.User) (*models.PlayResult, error) {
	mutex := service.rs.NewMutex(LockKeyUserPlay(string(models.FeatureNewMemberDice), user.ID))
	if err := mutex.TryLock(); err != nil {
		return nil, ErrUserPlayLock
	}
	// nolint:errcheck
	defer mutex.Unlock()

	now := time.Now()
	eligibility, err := datastore.GetEligibility(ctx, service.postgresDB, user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotEligible
		}
		return nil, err
	}
	if !eligibility.Active(now) {
		return nil, ErrNotEligible
	}

	segment := service.gacha.Pick()

	err = service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		inserted, err := datastore.InsertNewMemberDiceLog(ctx, tx, &models.NewMemberDiceLog{
			UserID:       user.ID,
			Outcome:      segment.Label,
			RewardAmount: segment.RewardAmount,
			PlayedAt:     now,
		})
		if err != nil {
			return err
		}
		if !inserted {
			return ErrAlreadyPlayed
		}

		err = datastore.InsertGamePlayLog(ctx, tx, &models.GamePlayLog{
			UserID:       user.ID,
			FeatureType:  models.FeatureNewMemberDice,
			Date:         service.appConfig.Today(now),
			Outcome:      segment.Label,
			RewardType:   segment.RewardType,
			RewardAmount: segment.RewardAmount,
		})
		if err != nil {
			return err
		}

		if segment.RewardAmount > 0 {
			_, _, err = service.serviceWallet.GrantTx(ctx, tx, user.ID, models.TokenPoint, segment.RewardAmount, models.ReasonGameReward, "", map[string]interface{}{
				"feature": models.FeatureNewMemberDice,
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	service.serviceWallet.ClearBalanceCache(ctx, user.ID, models.TokenPoint)

	return &models.PlayResult{
		Outcome:     segment.Label,
		Segment:     segment,
		PlayedToday: 1,
		DailyLimit:  1,
	}, nil
}

// GrantEligibility is the admin/ingestion entry; it upserts the flag and
// clears any previous revocation.
func (service *ServiceNewMemberDice) GrantEligibility(ctx context.Context, userID int64, campaignKey, grantedBy string, expiresAt *time.Time) error {
	return datastore.UpsertEligibility(ctx, service.postgresDB, &models.NewMemberDiceEligibility{
		UserID:      userID,
		IsEligible:  true,
		CampaignKey: campaignKey,
		GrantedBy:   grantedBy,
		ExpiresAt:   expiresAt,
	})
}

func (service *ServiceNewMemberDice) RevokeEligibility(ctx context.Context, userID int64) error {
	revoked, err := datastore.RevokeEligibility(ctx, service.postgresDB, userID)
	if err != nil {
		return err
	}
	if !revoked {
		return ErrNotEligible
	}
	return nil
}
