package services

import (
	"context"
	"log"
	"time"

	"fortuna/internal/datastore"
	"fortuna/internal/models"

	"github.com/go-redsync/redsync/v4"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

// tokenForFeature maps a playable feature to the token it burns.
var tokenForFeature = map[models.FeatureType]models.TokenType{
	models.FeatureRoulette: models.TokenRoulette,
	models.FeatureDice:     models.TokenDice,
	models.FeatureLottery:  models.TokenLottery,
}

type ServiceMiniGame struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	rs                 *redsync.Redsync

	serviceWallet  *ServiceWallet
	serviceFeature *ServiceFeature
	appConfig      *models.AppConfig

	gachas map[models.FeatureType]*ServiceGacha
}

func NewServiceMiniGame(container *do.Injector) (*ServiceMiniGame, error) {
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

	serviceFeature, err := do.Invoke[*ServiceFeature](container)
	if err != nil {
		return nil, err
	}

	appConfig, err := do.Invoke[*models.AppConfig](container)
	if err != nil {
		return nil, err
	}

	gachas := map[models.FeatureType]*ServiceGacha{}
	for featureType, segments := range map[models.FeatureType][]models.PrizeSegment{
		models.FeatureRoulette: RouletteSegments(),
		models.FeatureDice:     DiceSegments(),
		models.FeatureLottery:  LotterySegments(),
	} {
		gacha, err := NewServiceGacha(segments)
		if err != nil {
			return nil, err
		}
		gachas[featureType] = gacha
	}

	return &ServiceMiniGame{container, postgresDB, readonlyPostgresDB, rs, serviceWallet, serviceFeature, appConfig, gachas}, nil
}

// Play runs one draw of a daily mini-game: gate check, token debit, prize
// draw, play log and reward credit in one transaction, then the side
// effects that may not fail the play (stamp, team points, activity).
func (service *ServiceMiniGame) Play(ctx context.Context, user *models.User, featureType models.FeatureType) (*models.PlayResult, error) {
	tokenType, ok := tokenForFeature[featureType]
	if !ok {
		return nil, ErrNoFeatureToday
	}

	mutex := service.rs.NewMutex(LockKeyUserPlay(string(featureType), user.ID))
	if err := mutex.TryLock(); err != nil {
		return nil, ErrUserPlayLock
	}
	// nolint:errcheck
	defer mutex.Unlock()

	now := time.Now()
	gate, err := service.serviceFeature.BuildGate(ctx, user.ID, featureType, now)
	if err != nil {
		return nil, err
	}
	if err := EvaluateGate(gate); err != nil {
		return nil, err
	}

	date := service.appConfig.Today(now)

	var segment models.PrizeSegment
	var tokensLeft int64
	err = service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		wallet, err := service.serviceWallet.SpendTx(ctx, tx, user.ID, tokenType, 1, models.ReasonGamePlay, map[string]interface{}{
			"feature": featureType,
		})
		if err != nil {
			return err
		}
		tokensLeft = wallet.Balance

		// Draw only after the debit held; a failed spend must not consume
		// randomness or record anything.
		segment = service.gachas[featureType].Pick()

		err = datastore.InsertGamePlayLog(ctx, tx, &models.GamePlayLog{
			UserID:       user.ID,
			FeatureType:  featureType,
			Date:         date,
			Outcome:      segment.Label,
			RewardType:   segment.RewardType,
			RewardAmount: segment.RewardAmount,
		})
		if err != nil {
			return err
		}

		return service.applyRewardTx(ctx, tx, user.ID, tokenType, segment, featureType, date)
	})
	if err != nil {
		return nil, err
	}

	service.serviceWallet.ClearBalanceCache(ctx, user.ID, tokenType)
	if segment.RewardType == models.RewardPoint {
		service.serviceWallet.ClearBalanceCache(ctx, user.ID, models.TokenPoint)
	}

	result := &models.PlayResult{
		Outcome:     segment.Label,
		Segment:     segment,
		TokensLeft:  tokensLeft,
		PlayedToday: gate.PlayedToday + 1,
		DailyLimit:  gate.DailyLimit,
	}

	service.afterPlay(ctx, user, featureType, result, now)
	return result, nil
}

// applyRewardTx credits the drawn prize. Coupons are fulfilled outside the
// wallet; the play log row is their record.
func (service *ServiceMiniGame) applyRewardTx(ctx context.Context, tx bun.Tx, userID int64, tokenType models.TokenType, segment models.PrizeSegment, featureType models.FeatureType, date string) error {
	if segment.RewardAmount <= 0 {
		return nil
	}

	switch segment.RewardType {
	case models.RewardPoint:
		_, _, err := service.serviceWallet.GrantTx(ctx, tx, userID, models.TokenPoint, segment.RewardAmount, models.ReasonGameReward, "", map[string]interface{}{
			"feature": featureType,
			"date":    date,
		})
		return err
	case models.RewardToken:
		_, _, err := service.serviceWallet.GrantTx(ctx, tx, userID, tokenType, segment.RewardAmount, models.ReasonGameReward, "", map[string]interface{}{
			"feature": featureType,
			"date":    date,
		})
		return err
	}

	return nil
}

// afterPlay runs the cross-feature hooks. Failures are logged, never
// surfaced: the draw already settled.
func (service *ServiceMiniGame) afterPlay(ctx context.Context, user *models.User, featureType models.FeatureType, result *models.PlayResult, now time.Time) {
	serviceSeasonPass, err := do.Invoke[*ServiceSeasonPass](service.container)
	if err == nil {
		stamp, err := serviceSeasonPass.MaybeAddStamp(ctx, user.ID, string(featureType), now)
		if err != nil {
			log.Println(err)
		} else {
			result.SeasonPass = stamp
		}
	}

	serviceTeamBattle, err := do.Invoke[*ServiceTeamBattle](service.container)
	if err == nil {
		err = serviceTeamBattle.RecordGamePlay(ctx, user.ID, featureType, now)
		if err != nil {
			log.Println(err)
		}
	}

	serviceActivity, err := do.Invoke[*ServiceActivity](service.container)
	if err == nil {
		err = serviceActivity.RecordPlay(ctx, user.ID, featureType, now)
		if err != nil {
			log.Println(err)
		}
	}
}

// GetTokensStatus summarizes balance and remaining plays for a game's
// status panel.
func (service *ServiceMiniGame) GetTokensStatus(ctx context.Context, userID int64, featureType models.FeatureType) (*models.TokensStatus, error) {
	tokenType, ok := tokenForFeature[featureType]
	if !ok {
		return nil, ErrNoFeatureToday
	}

	balance, err := service.serviceWallet.GetBalance(ctx, userID, tokenType)
	if err != nil {
		return nil, err
	}

	gate, err := service.serviceFeature.BuildGate(ctx, userID, featureType, time.Now())
	if err != nil {
		return nil, err
	}

	return &models.TokensStatus{
		Balance:     balance,
		PlayedToday: gate.PlayedToday,
		DailyLimit:  gate.DailyLimit,
		CanPlay:     balance > 0 && EvaluateGate(gate) == nil,
	}, nil
}

func (service *ServiceMiniGame) GetRecentPlays(ctx context.Context, userID int64, featureType models.FeatureType, limit int) ([]*models.GamePlayLog, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return datastore.GetRecentPlays(ctx, service.readonlyPostgresDB, userID, featureType, limit)
}

func (service *ServiceMiniGame) Segments(featureType models.FeatureType) []models.PrizeSegment {
	gacha, ok := service.gachas[featureType]
	if !ok {
		return nil
	}
	return gacha.Segments()
}
