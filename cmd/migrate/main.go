package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"fortuna/internal/datastore"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
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
		Name: "migrate",
		Commands: []*cli.Command{
			commandUp(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandUp() *cli.Command {
	return &cli.Command{
		Name:  "up",
		Usage: "create every table and index",
		Action: func(c *cli.Context) error {
			db, err := getDb()
			if err != nil {
				return err
			}

			ctx := context.Background()
			steps := []struct {
				name string
				fn   func(context.Context, *bun.DB) error
			}{
				{"user", datastore.CreateTableUser},
				{"config", datastore.CreateTableConfig},
				{"wallet", datastore.CreateTableWallet},
				{"feature", datastore.CreateTableFeature},
				{"game_log", datastore.CreateTableGameLog},
				{"new_member_dice", datastore.CreateTableNewMemberDice},
				{"season_pass", datastore.CreateTableSeasonPass},
				{"team_battle", datastore.CreateTableTeamBattle},
				{"ranking", datastore.CreateTableRanking},
				{"activity", datastore.CreateTableActivity},
				{"segment", datastore.CreateTableSegment},
			}

			for _, step := range steps {
				if err := step.fn(ctx, db); err != nil {
					log.Println("migrate:", step.name, err)
					return err
				}
				log.Println("migrated:", step.name)
			}
			return nil
		},
	}
}

func getDb() (*bun.DB, error) {
	godotenv.Load()
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(os.Getenv("DB_DSN")),
		pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
	))

	db := bun.NewDB(sqldb, pgdialect.New())
	return db, nil
}
