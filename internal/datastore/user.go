package datastore

import (
	"context"
	"fortuna/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableUser(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.User)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.User)(nil)).Index("index_user_external_id").IfNotExists().Unique().Column("external_id").Exec(ctx)
	return err
}

func GetUser(ctx context.Context, db bun.IDB, userID int64) (*models.User, error) {
	var user models.User
	err := db.NewSelect().Model(&user).Where("id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetUserForUpdate takes the row lock that serializes vault mutations for
// one user.
func GetUserForUpdate(ctx context.Context, tx bun.Tx, userID int64) (*models.User, error) {
	var user models.User
	err := tx.NewSelect().Model(&user).Where("id = ?", userID).For("UPDATE").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func GetUserByExternalID(ctx context.Context, db bun.IDB, externalID string) (*models.User, error) {
	var user models.User
	err := db.NewSelect().Model(&user).Where("external_id = ?", externalID).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func InsertUser(ctx context.Context, db bun.IDB, user *models.User) error {
	_, err := db.NewInsert().Model(user).Exec(ctx)
	return err
}

func UpdateUserVault(ctx context.Context, db bun.IDB, user *models.User) error {
	_, err := db.NewUpdate().Model(user).
		Set("vault_locked_balance = ?", user.VaultLockedBalance).
		Set("vault_balance = ?", user.VaultBalance).
		Set("vault_fill_used_at = ?", user.VaultFillUsedAt).
		Set("updated_at = current_timestamp").
		WherePK().
		Exec(ctx)
	return err
}

func TouchUserLastLogin(ctx context.Context, db bun.IDB, userID int64) error {
	_, err := db.NewUpdate().Model((*models.User)(nil)).
		Set("last_login_at = current_timestamp").
		Where("id = ?", userID).
		Exec(ctx)
	return err
}
