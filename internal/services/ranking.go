package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"fortuna/internal/datastore"
	"fortuna/internal/datastore/redis_store"
	"fortuna/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

// Stamp sources fed by the partner-site ingestion.
const (
	STAMP_SOURCE_DEPOSIT_100K  = "EXTERNAL_DEPOSIT_100K"
	STAMP_SOURCE_SITE_PLAY     = "EXTERNAL_SITE_PLAY"
	STAMP_SOURCE_RANKING_TOP10 = "EXTERNAL_RANKING_TOP10"
)

type ServiceRanking struct {
	container          *do.Injector
	redisDB            redis.UniversalClient
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB

	serviceConfig *ServiceConfig
	appConfig     *models.AppConfig
}

func NewServiceRanking(container *do.Injector) (*ServiceRanking, error) {
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

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	appConfig, err := do.Invoke[*models.AppConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceRanking{container, redisDB, postgresDB, readonlyPostgresDB, serviceConfig, appConfig}, nil
}

// DepositSteps counts how many whole step boundaries the deposit crossed.
func DepositSteps(prevAmount, newAmount, stepAmount int64) int {
	if stepAmount <= 0 || newAmount <= prevAmount {
		return 0
	}
	return int(newAmount/stepAmount - prevAmount/stepAmount)
}

// GetToday returns the day's board plus the caller's own rows. The shared
// part is snapshotted in redis; the caller-specific rows are always read
// fresh.
func (service *ServiceRanking) GetToday(ctx context.Context, userID int64, now time.Time) (*models.RankingToday, error) {
	date := service.appConfig.Today(now)

	snapshot, err := redis_store.GetRankingSnapshot(ctx, service.redisDB, date)
	if err != nil || snapshot == nil {
		snapshot, err = service.buildSnapshot(ctx, date)
		if err != nil {
			return nil, err
		}

		err = redis_store.SetRankingSnapshot(ctx, service.redisDB, date, snapshot, CACHE_TTL_1_MIN)
		if err != nil {
			log.Println(err)
		}
	}

	result := &models.RankingToday{
		Date:            date,
		Entries:         snapshot.Entries,
		ExternalEntries: snapshot.ExternalEntries,
	}

	myEntry, err := datastore.GetDailyRankingForUser(ctx, service.readonlyPostgresDB, date, userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	result.MyEntry = myEntry

	for _, entry := range snapshot.ExternalEntries {
		if entry.UserID == userID {
			result.MyExternalEntry = entry
			break
		}
	}

	return result, nil
}

func (service *ServiceRanking) buildSnapshot(ctx context.Context, date string) (*models.RankingToday, error) {
	topN, err := service.serviceConfig.GetIntConfig(ctx, CONFIG_RANKING_TOP_N, DEFAULT_RANKING_TOP_N)
	if err != nil {
		topN = DEFAULT_RANKING_TOP_N
	}

	entries, err := datastore.GetDailyRankingTop(ctx, service.readonlyPostgresDB, date, topN)
	if err != nil {
		return nil, err
	}

	externalRows, err := datastore.ListExternalRanking(ctx, service.readonlyPostgresDB)
	if err != nil {
		return nil, err
	}

	externalEntries := make([]*models.ExternalRankingEntry, 0, len(externalRows))
	for i, row := range externalRows {
		externalEntries = append(externalEntries, &models.ExternalRankingEntry{
			Rank:          i + 1,
			UserID:        row.UserID,
			DepositAmount: row.DepositAmount,
			PlayCount:     row.PlayCount,
			Memo:          row.Memo,
		})
	}

	return &models.RankingToday{Date: date, Entries: entries, ExternalEntries: externalEntries}, nil
}

type ExternalRankingUpsert struct {
	UserID        int64  `json:"user_id"`
	ExternalID    string `json:"external_id"`
	DepositAmount int64  `json:"deposit_amount"`
	PlayCount     int    `json:"play_count"`
	Memo          string `json:"memo"`
}

// UpsertMany ingests a partner-site batch. Each row updates the mirror,
// then fires the funnel hooks: deposit-step stamps, first-play stamp and
// the vault unlock; finally the running top 10 get their daily stamp. A
// failing hook is logged and skipped, never poisons the batch.
func (service *ServiceRanking) UpsertMany(ctx context.Context, items []ExternalRankingUpsert, now time.Time) ([]*models.ExternalRanking, error) {
	results := make([]*models.ExternalRanking, 0, len(items))

	for _, item := range items {
		userID, err := service.resolveUserID(ctx, item)
		if err != nil {
			return nil, err
		}

		var prevDeposit int64
		var prevPlay int
		prev, err := datastore.GetExternalRankingByUser(ctx, service.postgresDB, userID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		if prev != nil && err == nil {
			prevDeposit = prev.DepositAmount
			prevPlay = prev.PlayCount
		}

		row := &models.ExternalRanking{
			UserID:        userID,
			DepositAmount: item.DepositAmount,
			PlayCount:     item.PlayCount,
			Memo:          item.Memo,
		}
		err = datastore.UpsertExternalRanking(ctx, service.postgresDB, row)
		if err != nil {
			return nil, err
		}
		results = append(results, row)

		service.runIngestHooks(ctx, userID, prevDeposit, item.DepositAmount, prevPlay, item.PlayCount, now)
	}

	service.stampTop10(ctx, now)

	err := redis_store.DeleteRankingSnapshot(ctx, service.redisDB, service.appConfig.Today(now))
	if err != nil {
		log.Println(err)
	}

	return results, nil
}

func (service *ServiceRanking) runIngestHooks(ctx context.Context, userID, prevDeposit, newDeposit int64, prevPlay, newPlay int, now time.Time) {
	serviceSeasonPass, err := do.Invoke[*ServiceSeasonPass](service.container)
	if err == nil {
		steps := DepositSteps(prevDeposit, newDeposit, service.appConfig.DepositStepAmount)
		// One stamp row per day survives either way; a zero stamp count
		// turns the hook off entirely.
		if steps*service.appConfig.DepositStepStamps > 0 {
			_, err = serviceSeasonPass.MaybeAddStamp(ctx, userID, STAMP_SOURCE_DEPOSIT_100K, now)
			if err != nil {
				log.Println(err)
			}
		}

		if prevPlay == 0 && newPlay > 0 {
			_, err = serviceSeasonPass.MaybeAddStamp(ctx, userID, STAMP_SOURCE_SITE_PLAY, now)
			if err != nil {
				log.Println(err)
			}
		}
	}

	serviceVault, err := do.Invoke[*ServiceVault](service.container)
	if err == nil && newDeposit > prevDeposit {
		_, err = serviceVault.HandleDepositIncrease(ctx, userID, newDeposit-prevDeposit, prevDeposit, newDeposit, now)
		if err != nil {
			log.Println(err)
		}
	}
}

func (service *ServiceRanking) stampTop10(ctx context.Context, now time.Time) {
	serviceSeasonPass, err := do.Invoke[*ServiceSeasonPass](service.container)
	if err != nil {
		return
	}

	top, err := datastore.GetExternalRankingTop(ctx, service.postgresDB, DEFAULT_RANKING_TOP_N)
	if err != nil {
		log.Println(err)
		return
	}

	for _, entry := range top {
		_, err = serviceSeasonPass.MaybeAddStamp(ctx, entry.UserID, STAMP_SOURCE_RANKING_TOP10, now)
		if err != nil {
			log.Println(err)
		}
	}
}

func (service *ServiceRanking) resolveUserID(ctx context.Context, item ExternalRankingUpsert) (int64, error) {
	if item.UserID != 0 {
		return item.UserID, nil
	}
	if item.ExternalID == "" {
		return 0, ErrUserNotFound
	}

	user, err := datastore.GetUserByExternalID(ctx, service.postgresDB, item.ExternalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return user.ID, nil
}

// BuildDailyRanking rebuilds the in-house daily board from the external
// mirror; the cron runs it shortly after each ingestion window.
func (service *ServiceRanking) BuildDailyRanking(ctx context.Context, now time.Time) (int, error) {
	date := service.appConfig.Today(now)

	rows, err := datastore.ListExternalRanking(ctx, service.readonlyPostgresDB)
	if err != nil {
		return 0, err
	}

	daily := make([]*models.RankingDaily, 0, len(rows))
	for i, row := range rows {
		daily = append(daily, &models.RankingDaily{
			Date:   date,
			UserID: row.UserID,
			Rank:   i + 1,
			Score:  row.DepositAmount,
		})
	}

	err = service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return datastore.ReplaceDailyRanking(ctx, tx, date, daily)
	})
	if err != nil {
		return 0, err
	}

	err = redis_store.DeleteRankingSnapshot(ctx, service.redisDB, date)
	if err != nil {
		log.Println(err)
	}
	return len(daily), nil
}

func (service *ServiceRanking) ListExternal(ctx context.Context) ([]*models.ExternalRanking, error) {
	return datastore.ListExternalRanking(ctx, service.readonlyPostgresDB)
}

func (service *ServiceRanking) DeleteExternal(ctx context.Context, userID int64) error {
	deleted, err := datastore.DeleteExternalRanking(ctx, service.postgresDB, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}
	return nil
}
