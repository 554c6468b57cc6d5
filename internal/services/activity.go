package services

import (
	"context"
	"time"

	"fortuna/internal/datastore"
	"fortuna/internal/interfaces"
	"fortuna/internal/models"

	"github.com/go-redis/redis_rate/v10"
	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceActivity struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	limiter            interfaces.Limiter
}

func NewServiceActivity(container *do.Injector) (*ServiceActivity, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	limiter, err := do.Invoke[interfaces.Limiter](container)
	if err != nil {
		return nil, err
	}

	return &ServiceActivity{container, postgresDB, readonlyPostgresDB, limiter}, nil
}

// Record ingests one client activity event. A client-supplied eventID makes
// the call idempotent: a replayed id inserts nothing and updates no counter.
// When the client sends none, a generated id keeps the event log complete.
func (service *ServiceActivity) Record(ctx context.Context, userID int64, eventType models.ActivityEventType, eventID string, value int) (*models.UserActivity, error) {
	if !eventType.Valid() {
		return nil, ErrInvalidEventType
	}

	err := service.limiter.Allow(ctx, LimitKeyActivityIngest(userID), redis_rate.PerMinute(ACTIVITY_INGEST_RATE_PER_MINUTE))
	if err != nil {
		return nil, err
	}

	if eventID == "" {
		eventID = uuid.NewString()
	}

	now := time.Now()
	var activity *models.UserActivity
	err = service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		activity, err = datastore.GetOrCreateActivity(ctx, tx, userID)
		if err != nil {
			return err
		}

		inserted, err := datastore.InsertActivityEvent(ctx, tx, &models.UserActivityEvent{
			UserID:    userID,
			EventID:   eventID,
			EventType: eventType,
		})
		if err != nil {
			return err
		}
		if !inserted {
			return nil
		}

		applyActivityEvent(activity, eventType, value, now)
		return datastore.UpdateActivity(ctx, tx, activity)
	})
	if err != nil {
		return nil, err
	}

	return activity, nil
}

// RecordPlay is the internal hook games call; no event id, no rate limit.
func (service *ServiceActivity) RecordPlay(ctx context.Context, userID int64, featureType models.FeatureType, now time.Time) error {
	var eventType models.ActivityEventType
	switch featureType {
	case models.FeatureRoulette:
		eventType = models.ActivityRoulettePlay
	case models.FeatureDice, models.FeatureNewMemberDice:
		eventType = models.ActivityDicePlay
	case models.FeatureLottery:
		eventType = models.ActivityLotteryPlay
	default:
		return nil
	}

	return service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		activity, err := datastore.GetOrCreateActivity(ctx, tx, userID)
		if err != nil {
			return err
		}

		applyActivityEvent(activity, eventType, 0, now)
		return datastore.UpdateActivity(ctx, tx, activity)
	})
}

func (service *ServiceActivity) TouchLogin(ctx context.Context, userID int64, now time.Time) error {
	return service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		activity, err := datastore.GetOrCreateActivity(ctx, tx, userID)
		if err != nil {
			return err
		}

		activity.LastLoginAt = &now
		return datastore.UpdateActivity(ctx, tx, activity)
	})
}

func (service *ServiceActivity) GetActivity(ctx context.Context, userID int64) (*models.UserActivity, error) {
	return datastore.GetOrCreateActivity(ctx, service.postgresDB, userID)
}

func applyActivityEvent(activity *models.UserActivity, eventType models.ActivityEventType, value int, now time.Time) {
	switch eventType {
	case models.ActivityRoulettePlay:
		activity.RoulettePlays++
	case models.ActivityDicePlay:
		activity.DicePlays++
	case models.ActivityLotteryPlay:
		activity.LotteryPlays++
	case models.ActivityBonusUsed:
		activity.LastBonusUsedAt = &now
	case models.ActivityPlayDuration:
		if value > 0 {
			activity.TotalPlayDuration += value
		}
	}
}
