package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"fortuna/internal/datastore"
	"fortuna/internal/models"
	"fortuna/internal/pkg/caching"

	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceWallet struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache

	appConfig *models.AppConfig
}

func NewServiceWallet(container *do.Injector) (*ServiceWallet, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	appConfig, err := do.Invoke[*models.AppConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceWallet{container, postgresDB, readonlyPostgresDB, cache, readonlyCache, appConfig}, nil
}

// TrialGrantLabel keys a trial top-up to one calendar day; the ledger's
// partial unique index makes replays of the same day no-ops.
func TrialGrantLabel(tokenType models.TokenType, date string) string {
	return fmt.Sprintf("TRIAL_%s_%s", tokenType, date)
}

func (service *ServiceWallet) GetBalance(ctx context.Context, userID int64, tokenType models.TokenType) (int64, error) {
	callback := func() (int64, error) {
		wallet, err := datastore.GetOrCreateWallet(ctx, service.postgresDB, userID, tokenType)
		if err != nil {
			return 0, err
		}
		return wallet.Balance, nil
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyWalletBalance(userID, string(tokenType)), CACHE_TTL_15_SECONDS, callback)
}

// Grant credits amount and returns the updated wallet. A non-empty label
// makes the grant at-most-once; applied=false means this label was already
// consumed and nothing changed.
func (service *ServiceWallet) Grant(ctx context.Context, userID int64, tokenType models.TokenType, amount int64, reason models.LedgerReason, label string, meta map[string]interface{}) (*models.UserWallet, bool, error) {
	if amount <= 0 {
		return nil, false, ErrInvalidTokenAmount
	}

	var wallet *models.UserWallet
	var applied bool
	err := service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		wallet, applied, err = applyDelta(ctx, tx, userID, tokenType, amount, reason, label, meta)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	service.clearBalanceCache(ctx, userID, tokenType)
	return wallet, applied, nil
}

// GrantTrial gives the day's free tokens. Calling it twice on the same day
// is harmless.
func (service *ServiceWallet) GrantTrial(ctx context.Context, userID int64, tokenType models.TokenType, amount int64, now time.Time) (bool, error) {
	label := TrialGrantLabel(tokenType, service.appConfig.Today(now))
	_, applied, err := service.Grant(ctx, userID, tokenType, amount, models.ReasonTrialGrant, label, nil)
	return applied, err
}

// Spend debits amount inside one transaction, holding the wallet row lock.
// In test mode a shortfall is covered by an auto top-up ledger entry
// instead of failing.
func (service *ServiceWallet) Spend(ctx context.Context, userID int64, tokenType models.TokenType, amount int64, reason models.LedgerReason, meta map[string]interface{}) (*models.UserWallet, error) {
	if amount <= 0 {
		return nil, ErrInvalidTokenAmount
	}

	var wallet *models.UserWallet
	err := service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		wallet, err = service.spendTx(ctx, tx, userID, tokenType, amount, reason, meta)
		return err
	})
	if err != nil {
		return nil, err
	}

	service.clearBalanceCache(ctx, userID, tokenType)
	return wallet, nil
}

// SpendTx is Spend for callers that already hold a transaction, so a game
// play can debit tokens and write its play log atomically.
func (service *ServiceWallet) SpendTx(ctx context.Context, tx bun.Tx, userID int64, tokenType models.TokenType, amount int64, reason models.LedgerReason, meta map[string]interface{}) (*models.UserWallet, error) {
	if amount <= 0 {
		return nil, ErrInvalidTokenAmount
	}
	return service.spendTx(ctx, tx, userID, tokenType, amount, reason, meta)
}

func (service *ServiceWallet) spendTx(ctx context.Context, tx bun.Tx, userID int64, tokenType models.TokenType, amount int64, reason models.LedgerReason, meta map[string]interface{}) (*models.UserWallet, error) {
	_, err := datastore.GetOrCreateWallet(ctx, tx, userID, tokenType)
	if err != nil {
		return nil, err
	}

	wallet, err := datastore.GetWalletForUpdate(ctx, tx, userID, tokenType)
	if err != nil {
		return nil, err
	}

	if wallet.Balance < amount {
		if !service.appConfig.TestMode {
			return nil, ErrNotEnoughTokens
		}

		shortfall := amount - wallet.Balance
		wallet.Balance += shortfall
		_, err = datastore.InsertLedgerEntry(ctx, tx, &models.WalletLedger{
			UserID:       userID,
			TokenType:    tokenType,
			Delta:        shortfall,
			BalanceAfter: wallet.Balance,
			Reason:       models.ReasonTestTopUp,
		})
		if err != nil {
			return nil, err
		}
	}

	wallet.Balance -= amount
	_, err = datastore.InsertLedgerEntry(ctx, tx, &models.WalletLedger{
		UserID:       userID,
		TokenType:    tokenType,
		Delta:        -amount,
		BalanceAfter: wallet.Balance,
		Reason:       reason,
		Meta:         meta,
	})
	if err != nil {
		return nil, err
	}

	err = datastore.UpdateWalletBalance(ctx, tx, wallet)
	if err != nil {
		return nil, err
	}

	return wallet, nil
}

// GrantTx credits inside the caller's transaction. See Grant.
func (service *ServiceWallet) GrantTx(ctx context.Context, tx bun.Tx, userID int64, tokenType models.TokenType, amount int64, reason models.LedgerReason, label string, meta map[string]interface{}) (*models.UserWallet, bool, error) {
	if amount <= 0 {
		return nil, false, ErrInvalidTokenAmount
	}
	return applyDelta(ctx, tx, userID, tokenType, amount, reason, label, meta)
}

// Revoke debits amount for admin claw-backs. Like Spend it refuses to go
// below zero, but it never auto-tops-up.
func (service *ServiceWallet) Revoke(ctx context.Context, userID int64, tokenType models.TokenType, amount int64, meta map[string]interface{}) (*models.UserWallet, error) {
	if amount <= 0 {
		return nil, ErrInvalidTokenAmount
	}

	var wallet *models.UserWallet
	err := service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := datastore.GetOrCreateWallet(ctx, tx, userID, tokenType)
		if err != nil {
			return err
		}

		wallet, err = datastore.GetWalletForUpdate(ctx, tx, userID, tokenType)
		if err != nil {
			return err
		}

		if amount > wallet.Balance {
			return ErrNotEnoughTokens
		}

		wallet.Balance -= amount
		_, err = datastore.InsertLedgerEntry(ctx, tx, &models.WalletLedger{
			UserID:       userID,
			TokenType:    tokenType,
			Delta:        -amount,
			BalanceAfter: wallet.Balance,
			Reason:       models.ReasonAdminRevoke,
			Meta:         meta,
		})
		if err != nil {
			return err
		}

		return datastore.UpdateWalletBalance(ctx, tx, wallet)
	})
	if err != nil {
		return nil, err
	}

	service.clearBalanceCache(ctx, userID, tokenType)
	return wallet, nil
}

func (service *ServiceWallet) GetLedger(ctx context.Context, userID int64, tokenType models.TokenType, limit, offset int) ([]*models.WalletLedger, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return datastore.GetLedgerEntries(ctx, service.readonlyPostgresDB, userID, tokenType, limit, offset)
}

func (service *ServiceWallet) clearBalanceCache(ctx context.Context, userID int64, tokenType models.TokenType) {
	err := service.cache.Delete(ctx, DBKeyWalletBalance(userID, string(tokenType)))
	if err != nil {
		log.Println(err)
	}
}

// ClearBalanceCache lets other services invalidate after a GrantTx inside
// their own transaction commits.
func (service *ServiceWallet) ClearBalanceCache(ctx context.Context, userID int64, tokenType models.TokenType) {
	service.clearBalanceCache(ctx, userID, tokenType)
}

func applyDelta(ctx context.Context, tx bun.Tx, userID int64, tokenType models.TokenType, amount int64, reason models.LedgerReason, label string, meta map[string]interface{}) (*models.UserWallet, bool, error) {
	_, err := datastore.GetOrCreateWallet(ctx, tx, userID, tokenType)
	if err != nil {
		return nil, false, err
	}

	wallet, err := datastore.GetWalletForUpdate(ctx, tx, userID, tokenType)
	if err != nil {
		return nil, false, err
	}

	entry := &models.WalletLedger{
		UserID:       userID,
		TokenType:    tokenType,
		Delta:        amount,
		BalanceAfter: wallet.Balance + amount,
		Reason:       reason,
		Meta:         meta,
	}
	if label != "" {
		entry.Label = &label
	}

	applied, err := datastore.InsertLedgerEntry(ctx, tx, entry)
	if err != nil {
		return nil, false, err
	}
	if !applied {
		return wallet, false, nil
	}

	wallet.Balance += amount
	err = datastore.UpdateWalletBalance(ctx, tx, wallet)
	if err != nil {
		return nil, false, err
	}

	return wallet, true, nil
}
