package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"fortuna/internal/datastore"
	"fortuna/internal/models"

	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceUser struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB

	appConfig *models.AppConfig
}

func NewServiceUser(container *do.Injector) (*ServiceUser, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	appConfig, err := do.Invoke[*models.AppConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceUser{container, postgresDB, readonlyPostgresDB, appConfig}, nil
}

func (service *ServiceUser) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := datastore.GetUser(ctx, service.readonlyPostgresDB, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// FindOrCreate resolves the authenticated identity to a local user row,
// creating it on first login. Login side effects (last-login touch,
// activity timestamp, daily trial tokens) ride along here.
func (service *ServiceUser) FindOrCreate(ctx context.Context, auth *models.UserFromAuth) (*models.User, error) {
	user, err := datastore.GetUserByExternalID(ctx, service.postgresDB, auth.ExternalID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		user = &models.User{
			ExternalID: auth.ExternalID,
			Nickname:   auth.Nickname,
			Status:     "active",
		}
		err = datastore.InsertUser(ctx, service.postgresDB, user)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	err = datastore.TouchUserLastLogin(ctx, service.postgresDB, user.ID)
	if err != nil {
		log.Println(err)
	}

	serviceActivity, err := do.Invoke[*ServiceActivity](service.container)
	if err == nil {
		err = serviceActivity.TouchLogin(ctx, user.ID, now)
		if err != nil {
			log.Println(err)
		}
	}

	service.grantDailyTrials(ctx, user.ID, now)
	return user, nil
}

// grantDailyTrials tops up the day's free game tokens; the trial label
// collapses repeat logins into one grant per token per day.
func (service *ServiceUser) grantDailyTrials(ctx context.Context, userID int64, now time.Time) {
	serviceWallet, err := do.Invoke[*ServiceWallet](service.container)
	if err != nil {
		return
	}

	for _, tokenType := range []models.TokenType{models.TokenRoulette, models.TokenDice, models.TokenLottery} {
		_, err = serviceWallet.GrantTrial(ctx, userID, tokenType, 1, now)
		if err != nil {
			log.Println(err)
		}
	}
}
