package main

import (
	"log"
	"os"

	"fortuna/internal/app"

	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	cliApp := &cli.App{
		Name: "cronjob",
		Commands: []*cli.Command{
			commandCronjob(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandCronjob() *cli.Command {
	return &cli.Command{
		Name: "cron",
		Action: func(c *cli.Context) error {
			vs, err := env.EnvsRequired(
				"DB_DSN",
			)
			if err != nil {
				return err
			}
			container := app.NewContainer(vs)

			cronRunner := cron.New()

			rankingJob := NewRankingJob(container)
			rankingJob.Start(cronRunner)

			teamBattleJob := NewTeamBattleJob(container)
			teamBattleJob.Start(cronRunner)

			log.Println("Start cronjob")
			cronRunner.Run()
			return nil
		},
	}
}
