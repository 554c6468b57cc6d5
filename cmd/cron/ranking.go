package main

import (
	"context"
	"log"
	"time"

	"fortuna/internal/pkg/caching"
	"fortuna/internal/services"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/samber/do"
)

// RankingJob rebuilds the daily ranking table from the external ranking
// feed shortly after local midnight.
type RankingJob struct {
	container *do.Injector
}

func NewRankingJob(container *do.Injector) *RankingJob {
	return &RankingJob{container}
}

func (j *RankingJob) Start(cronRunner *cron.Cron) {
	ctx := context.Background()

	serviceConfig, err := do.Invoke[*services.ServiceConfig](j.container)
	if err != nil {
		log.Println(err)
		return
	}

	timeline, err := serviceConfig.GetStringConfig(ctx, services.CONFIG_CRONJOB_TIME_RANKING, "5 0 * * *")
	if err != nil {
		log.Println(err)
		return
	}

	_, err = cronRunner.AddFunc(timeline, j.run)
	log.Println("Ranking cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", timeline, err)
}

func (j *RankingJob) run() {
	ctx := context.Background()

	serviceRanking, err := do.Invoke[*services.ServiceRanking](j.container)
	if err != nil {
		log.Println(err)
		return
	}

	rows, err := serviceRanking.BuildDailyRanking(ctx, time.Now())
	if err != nil {
		log.Println(err)
		return
	}
	log.Println("Daily ranking rebuilt, rows:", rows)

	redisDB, err := do.InvokeNamed[redis.UniversalClient](j.container, "redis-db")
	if err != nil {
		log.Println(err)
		return
	}
	if err := caching.DeleteKeys(ctx, redisDB, "ranking:today:*"); err != nil {
		log.Println(err)
	}
}
