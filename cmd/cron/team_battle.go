package main

import (
	"context"
	"errors"
	"log"
	"time"

	"fortuna/internal/services"

	"github.com/robfig/cron/v3"
	"github.com/samber/do"
)

// TeamBattleJob settles seasons whose window has closed and opens the next
// one when auto-rotation is enabled.
type TeamBattleJob struct {
	container *do.Injector
}

func NewTeamBattleJob(container *do.Injector) *TeamBattleJob {
	return &TeamBattleJob{container}
}

func (j *TeamBattleJob) Start(cronRunner *cron.Cron) {
	ctx := context.Background()

	serviceConfig, err := do.Invoke[*services.ServiceConfig](j.container)
	if err != nil {
		log.Println(err)
		return
	}

	timeline, err := serviceConfig.GetStringConfig(ctx, services.CONFIG_CRONJOB_TIME_TEAM_BATTLE, "10 0 * * *")
	if err != nil {
		log.Println(err)
		return
	}

	_, err = cronRunner.AddFunc(timeline, j.run)
	log.Println("Team battle cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", timeline, err)
}

func (j *TeamBattleJob) run() {
	ctx := context.Background()
	now := time.Now()

	serviceTeamBattle, err := do.Invoke[*services.ServiceTeamBattle](j.container)
	if err != nil {
		log.Println(err)
		return
	}

	paid, err := serviceTeamBattle.SettleEndedSeasons(ctx, now)
	if err != nil {
		log.Println(err)
	}
	log.Println("Team battle settlement done, payouts:", paid)

	season, err := serviceTeamBattle.RotateSeason(ctx, now)
	if err != nil {
		if !errors.Is(err, services.ErrNoActiveSeason) {
			log.Println(err)
		}
		return
	}
	log.Println("Active team season:", season.ID, season.Name)
}
