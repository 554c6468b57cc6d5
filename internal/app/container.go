package app

import (
	"database/sql"
	"os"
	"strconv"
	"time"

	"fortuna/internal/interfaces"
	"fortuna/internal/models"
	"fortuna/internal/pkg/caching"
	"fortuna/internal/pkg/limiter"
	"fortuna/internal/services"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/hiendaovinh/toolkit/pkg/db"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// NewContainer wires every binary's dependency graph: databases, redis
// pools, the app config and all domain services.
func NewContainer(vs map[string]string) *do.Injector {
	injector := do.New()
	vs["API_MODE"] = os.Getenv("API_MODE")
	vs["API_ORIGINS"] = os.Getenv("API_ORIGINS")
	vs["ADMIN_API_KEY"] = os.Getenv("ADMIN_API_KEY")

	if vs["API_MODE"] == "" {
		vs["API_MODE"] = "production"
	}
	if vs["API_ORIGINS"] == "" {
		vs["API_ORIGINS"] = "*"
	}

	do.ProvideNamedValue(injector, "envs", vs)

	do.Provide(injector, func(i *do.Injector) (*models.AppConfig, error) {
		tz := os.Getenv("SERVICE_TIMEZONE")
		if tz == "" {
			tz = "Asia/Seoul"
		}
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, err
		}

		cfg := models.DefaultAppConfig(loc)
		cfg.TestMode, _ = strconv.ParseBool(os.Getenv("TEST_MODE"))
		cfg.FeatureGateEnabled = os.Getenv("FEATURE_GATE_DISABLED") != "true"
		return cfg, nil
	})

	do.Provide(injector, func(i *do.Injector) (*bun.DB, error) {
		godotenv.Load()
		sqldb := sql.OpenDB(pgdriver.NewConnector(
			pgdriver.WithDSN(os.Getenv("DB_DSN")),
			pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
		))

		db := bun.NewDB(sqldb, pgdialect.New())
		return db, nil
	})

	do.ProvideNamed(injector, "db-readonly", func(i *do.Injector) (*bun.DB, error) {
		godotenv.Load()
		dsn := os.Getenv("DB_DSN_READONLY")
		if dsn == "" {
			dsn = os.Getenv("DB_DSN")
		}
		sqldb := sql.OpenDB(pgdriver.NewConnector(
			pgdriver.WithDSN(dsn),
			pgdriver.WithPassword(os.Getenv("DB_PASSWORD_READONLY")),
		))

		db := bun.NewDB(sqldb, pgdialect.New())
		return db, nil
	})

	do.ProvideNamed(injector, "redis-db", func(i *do.Injector) (redis.UniversalClient, error) {
		clusterURL := os.Getenv("CLUSTER_REDIS")
		if clusterURL != "" {
			clusterOpts, err := redis.ParseClusterURL(clusterURL)
			if err != nil {
				return nil, err
			}
			return redis.NewClusterClient(clusterOpts), nil
		}
		return db.InitRedis(&db.RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		})
	})

	do.ProvideNamed(injector, "redis-cache", func(i *do.Injector) (redis.UniversalClient, error) {
		url := os.Getenv("REDIS_CACHE")
		if url == "" {
			return do.InvokeNamed[redis.UniversalClient](i, "redis-db")
		}
		return db.InitRedis(&db.RedisConfig{URL: url})
	})

	do.ProvideNamed(injector, "redis-cache-readonly", func(i *do.Injector) (redis.UniversalClient, error) {
		url := os.Getenv("REDIS_CACHE_READONLY")
		if url == "" {
			return do.InvokeNamed[redis.UniversalClient](i, "redis-cache")
		}
		return db.InitRedis(&db.RedisConfig{URL: url})
	})

	do.ProvideNamed(injector, "redis-limiter", func(i *do.Injector) (redis.UniversalClient, error) {
		url := os.Getenv("REDIS_LIMITER")
		if url == "" {
			return do.InvokeNamed[redis.UniversalClient](i, "redis-db")
		}
		return db.InitRedis(&db.RedisConfig{URL: url})
	})

	do.ProvideNamed(injector, "redis-mutex", func(i *do.Injector) (redis.UniversalClient, error) {
		url := os.Getenv("REDIS_MUTEX")
		if url == "" {
			return do.InvokeNamed[redis.UniversalClient](i, "redis-db")
		}
		return db.InitRedis(&db.RedisConfig{URL: url})
	})

	do.Provide(injector, func(i *do.Injector) (caching.Cache, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-cache")
		if err != nil {
			return nil, err
		}

		return caching.NewCacheRedis(dbRedis, false)
	})

	do.Provide(injector, func(i *do.Injector) (caching.ReadOnlyCache, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-cache-readonly")
		if err != nil {
			return nil, err
		}

		return caching.NewCacheRedis(dbRedis, false)
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Limiter, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-limiter")
		if err != nil {
			return nil, err
		}

		return limiter.NewLimiter(dbRedis)
	})

	do.Provide(injector, func(i *do.Injector) (*redsync.Redsync, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-mutex")
		if err != nil {
			return nil, err
		}

		pool := goredis.NewPool(dbRedis)
		return redsync.New(pool), nil
	})

	do.Provide(injector, func(i *do.Injector) (*services.Authentication, error) {
		return services.NewAuthentication(vs["JWT_SECRET"])
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceConfig, error) {
		return services.NewServiceConfig(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceUser, error) {
		return services.NewServiceUser(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceWallet, error) {
		return services.NewServiceWallet(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceFeature, error) {
		return services.NewServiceFeature(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceMiniGame, error) {
		return services.NewServiceMiniGame(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceNewMemberDice, error) {
		return services.NewServiceNewMemberDice(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceSeasonPass, error) {
		return services.NewServiceSeasonPass(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceTeamBattle, error) {
		return services.NewServiceTeamBattle(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceVault, error) {
		return services.NewServiceVault(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceRanking, error) {
		return services.NewServiceRanking(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceActivity, error) {
		return services.NewServiceActivity(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceSegment, error) {
		return services.NewServiceSegment(injector)
	})

	return injector
}
