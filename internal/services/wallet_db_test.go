package services

import (
	"context"
	"database/sql"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"fortuna/internal/datastore"
	"fortuna/internal/models"

	gocache "github.com/go-redis/cache/v9"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// The tests below need a real Postgres because the ledger invariants live
// in its partial unique indexes and row locks. Set TEST_DB_DSN to run them.

type missCache struct{}

func (missCache) Get(ctx context.Context, key string, target any) error {
	return gocache.ErrCacheMiss
}

func (missCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return nil
}

func (missCache) Delete(ctx context.Context, key string) error { return nil }

var testUserSeq atomic.Int64

func nextTestUserID() int64 {
	return time.Now().UnixNano() + testUserSeq.Add(1)
}

func testWalletDB(t *testing.T) (*bun.DB, *ServiceWallet) {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	sqlDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqlDB, pgdialect.New())
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, datastore.CreateTableWallet(ctx, db))
	require.NoError(t, datastore.CreateTableSeasonPass(ctx, db))

	service := &ServiceWallet{
		postgresDB:         db,
		readonlyPostgresDB: db,
		cache:              missCache{},
		readonlyCache:      missCache{},
		appConfig:          models.DefaultAppConfig(time.UTC),
	}
	return db, service
}

func TestGrantLabelAtMostOnce(t *testing.T) {
	db, service := testWalletDB(t)
	ctx := context.Background()
	userID := nextTestUserID()

	wallet, applied, err := service.Grant(ctx, userID, models.TokenPoint, 100, models.ReasonAdminGrant, "GRANT_ONCE", nil)
	require.NoError(t, err)
	require.True(t, applied)
	require.EqualValues(t, 100, wallet.Balance)

	wallet, applied, err = service.Grant(ctx, userID, models.TokenPoint, 100, models.ReasonAdminGrant, "GRANT_ONCE", nil)
	require.NoError(t, err)
	require.False(t, applied)
	require.EqualValues(t, 100, wallet.Balance)

	count, err := datastore.CountLedgerEntries(ctx, db, userID, models.TokenPoint)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestRevokeInsufficientBalance(t *testing.T) {
	db, service := testWalletDB(t)
	ctx := context.Background()
	userID := nextTestUserID()

	_, err := service.Revoke(ctx, userID, models.TokenPoint, 100, nil)
	require.ErrorIs(t, err, ErrNotEnoughTokens)

	wallet, err := datastore.GetOrCreateWallet(ctx, db, userID, models.TokenPoint)
	require.NoError(t, err)
	require.EqualValues(t, 0, wallet.Balance)

	count, err := datastore.CountLedgerEntries(ctx, db, userID, models.TokenPoint)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestRevokeWritesOneLedgerEntry(t *testing.T) {
	db, service := testWalletDB(t)
	ctx := context.Background()
	userID := nextTestUserID()

	_, applied, err := service.Grant(ctx, userID, models.TokenPoint, 100, models.ReasonAdminGrant, "", nil)
	require.NoError(t, err)
	require.True(t, applied)

	wallet, err := service.Revoke(ctx, userID, models.TokenPoint, 40, nil)
	require.NoError(t, err)
	require.EqualValues(t, 60, wallet.Balance)

	count, err := datastore.CountLedgerEntries(ctx, db, userID, models.TokenPoint)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	entries, err := datastore.GetLedgerEntries(ctx, db, userID, models.TokenPoint, 1, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.EqualValues(t, -40, entries[0].Delta)
	require.EqualValues(t, 60, entries[0].BalanceAfter)
}

func TestStampLogUniquePerDay(t *testing.T) {
	db, _ := testWalletDB(t)
	ctx := context.Background()
	userID := nextTestUserID()

	first := &models.SeasonStampLog{
		UserID:        userID,
		SeasonID:      1,
		ProgressID:    1,
		Date:          "2026-08-28",
		SourceFeature: "DICE",
		XPEarned:      10,
	}
	inserted, err := datastore.InsertStampLog(ctx, db, first)
	require.NoError(t, err)
	require.True(t, inserted)

	second := &models.SeasonStampLog{
		UserID:        userID,
		SeasonID:      1,
		ProgressID:    1,
		Date:          "2026-08-28",
		SourceFeature: "ROULETTE",
		XPEarned:      10,
	}
	inserted, err = datastore.InsertStampLog(ctx, db, second)
	require.NoError(t, err)
	require.False(t, inserted)
}
