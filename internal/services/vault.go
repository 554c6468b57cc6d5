package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fortuna/internal/datastore"
	"fortuna/internal/models"

	"github.com/go-redsync/redsync/v4"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

// ServiceVault implements the deposit-driven unlock funnel. The locked
// balance on the user row is the source of truth; the legacy vault_balance
// column is mirrored after every mutation for older clients.
type ServiceVault struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	rs                 *redsync.Redsync

	serviceWallet *ServiceWallet
	appConfig     *models.AppConfig
}

func NewServiceVault(container *do.Injector) (*ServiceVault, error) {
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

	appConfig, err := do.Invoke[*models.AppConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceVault{container, postgresDB, readonlyPostgresDB, rs, serviceWallet, appConfig}, nil
}

// VaultUnlockLabel keys one unlock to one observed deposit transition, so
// replaying the same ingestion batch cannot pay twice.
func VaultUnlockLabel(prevAmount, newAmount int64) string {
	return fmt.Sprintf("VAULT_UNLOCK_%d_%d", prevAmount, newAmount)
}

// UnlockTierFor picks the unlock tier for a deposit increase. Tiers are
// ordered highest threshold first; nil means the delta is below every tier.
func UnlockTierFor(tiers []models.VaultTier, depositDelta int64) *models.VaultTier {
	if depositDelta <= 0 {
		return nil
	}
	for i := range tiers {
		if depositDelta >= tiers[i].MinDelta {
			return &tiers[i]
		}
	}
	return nil
}

type VaultStatus struct {
	Eligible      bool       `json:"eligible"`
	LockedBalance int64      `json:"locked_balance"`
	FillUsedAt    *time.Time `json:"fill_used_at"`
	FillAmount    int64      `json:"fill_amount"`
}

// GetStatus never seeds: the seed is granted by funnel events, not reads.
func (service *ServiceVault) GetStatus(ctx context.Context, userID int64) (*VaultStatus, error) {
	user, err := datastore.GetUser(ctx, service.readonlyPostgresDB, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	eligible, err := service.eligible(ctx, userID, time.Now())
	if err != nil {
		return nil, err
	}

	return &VaultStatus{
		Eligible:      eligible,
		LockedBalance: user.VaultLockedBalance,
		FillUsedAt:    user.VaultFillUsedAt,
		FillAmount:    service.appConfig.VaultFillAmount,
	}, nil
}

// FillFreeOnce adds the one-time free fill to the locked balance, seeding
// the vault first for a fresh user. Usable once per user, eligible users
// only.
func (service *ServiceVault) FillFreeOnce(ctx context.Context, userID int64, now time.Time) (*VaultStatus, error) {
	mutex := service.rs.NewMutex(LockKeyVaultUser(userID))
	if err := mutex.TryLock(); err != nil {
		return nil, ErrVaultLock
	}
	// nolint:errcheck
	defer mutex.Unlock()

	eligible, err := service.eligible(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, ErrVaultNotEligible
	}

	var user *models.User
	err = service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err = datastore.GetUserForUpdate(ctx, tx, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrUserNotFound
			}
			return err
		}

		if user.VaultFillUsedAt != nil {
			return ErrVaultFillUsed
		}

		if user.VaultLockedBalance == 0 {
			points, err := datastore.GetOrCreateWallet(ctx, tx, userID, models.TokenPoint)
			if err != nil {
				return err
			}
			if points.Balance == 0 {
				user.VaultLockedBalance = service.appConfig.VaultSeedAmount
			}
		}

		user.VaultLockedBalance += service.appConfig.VaultFillAmount
		user.VaultBalance = user.VaultLockedBalance
		user.VaultFillUsedAt = &now

		return datastore.UpdateUserVault(ctx, tx, user)
	})
	if err != nil {
		return nil, err
	}

	return &VaultStatus{
		Eligible:      true,
		LockedBalance: user.VaultLockedBalance,
		FillUsedAt:    user.VaultFillUsedAt,
		FillAmount:    service.appConfig.VaultFillAmount,
	}, nil
}

// HandleDepositIncrease converts an observed external deposit increase
// into an unlock: pick the tier, move min(locked, target) out of the vault
// and pay it as points. Ineligible users and sub-tier deltas return 0
// without error; ingestion keeps going.
func (service *ServiceVault) HandleDepositIncrease(ctx context.Context, userID, depositDelta, prevAmount, newAmount int64, now time.Time) (int64, error) {
	if depositDelta <= 0 {
		return 0, nil
	}

	eligible, err := service.eligible(ctx, userID, now)
	if err != nil || !eligible {
		return 0, err
	}

	tier := UnlockTierFor(service.appConfig.VaultTiers, depositDelta)
	if tier == nil {
		return 0, nil
	}

	mutex := service.rs.NewMutex(LockKeyVaultUser(userID))
	if err := mutex.TryLock(); err != nil {
		return 0, ErrVaultLock
	}
	// nolint:errcheck
	defer mutex.Unlock()

	var unlockAmount int64
	err = service.postgresDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := datastore.GetUserForUpdate(ctx, tx, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}

		if user.VaultLockedBalance <= 0 {
			return nil
		}

		unlockAmount = tier.Unlock
		if unlockAmount > user.VaultLockedBalance {
			unlockAmount = user.VaultLockedBalance
		}

		_, applied, err := service.serviceWallet.GrantTx(ctx, tx, userID, models.TokenPoint, unlockAmount, models.ReasonVaultUnlock, VaultUnlockLabel(prevAmount, newAmount), map[string]interface{}{
			"trigger":       "EXTERNAL_RANKING_DEPOSIT_INCREASE",
			"tier":          tier.Name,
			"unlock_target": tier.Unlock,
			"deposit_prev":  prevAmount,
			"deposit_new":   newAmount,
			"deposit_delta": depositDelta,
		})
		if err != nil {
			return err
		}
		if !applied {
			unlockAmount = 0
			return nil
		}

		user.VaultLockedBalance -= unlockAmount
		user.VaultBalance = user.VaultLockedBalance
		return datastore.UpdateUserVault(ctx, tx, user)
	})
	if err != nil {
		return 0, err
	}

	if unlockAmount > 0 {
		service.serviceWallet.ClearBalanceCache(ctx, userID, models.TokenPoint)
	}
	return unlockAmount, nil
}

func (service *ServiceVault) eligible(ctx context.Context, userID int64, now time.Time) (bool, error) {
	row, err := datastore.GetEligibility(ctx, service.readonlyPostgresDB, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return row.Active(now), nil
}
