package datastore

import (
	"context"
	"fortuna/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableWallet(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.UserWallet)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.UserWallet)(nil)).Index("index_user_wallet_user_id_token_type").IfNotExists().Unique().Column("user_id", "token_type").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateTable().Model((*models.WalletLedger)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.WalletLedger)(nil)).Index("index_wallet_ledger_user_id_token_type").IfNotExists().Column("user_id", "token_type").Exec(ctx)
	if err != nil {
		return err
	}

	// Labeled positive entries are at-most-once per user+token; the raw SQL
	// partial index is what makes ApplyLedgerDelta's conflict-ignore safe
	// under concurrent retries.
	_, err = db.ExecContext(ctx, `CREATE UNIQUE INDEX IF NOT EXISTS index_wallet_ledger_grant_label
		ON wallet_ledger (user_id, token_type, label) WHERE label IS NOT NULL AND delta > 0`)
	return err
}

// GetOrCreateWallet is insert-or-ignore under the wallet unique index, then
// a plain select: safe against concurrent first references.
func GetOrCreateWallet(ctx context.Context, db bun.IDB, userID int64, tokenType models.TokenType) (*models.UserWallet, error) {
	wallet := &models.UserWallet{UserID: userID, TokenType: tokenType, Balance: 0}
	_, err := db.NewInsert().Model(wallet).On("CONFLICT (user_id, token_type) DO NOTHING").Exec(ctx)
	if err != nil {
		return nil, err
	}

	err = db.NewSelect().Model(wallet).Where("user_id = ? AND token_type = ?", userID, tokenType).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return wallet, nil
}

func GetWalletForUpdate(ctx context.Context, tx bun.Tx, userID int64, tokenType models.TokenType) (*models.UserWallet, error) {
	var wallet models.UserWallet
	err := tx.NewSelect().Model(&wallet).
		Where("user_id = ? AND token_type = ?", userID, tokenType).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &wallet, nil
}

func UpdateWalletBalance(ctx context.Context, db bun.IDB, wallet *models.UserWallet) error {
	_, err := db.NewUpdate().Model(wallet).
		Set("balance = ?", wallet.Balance).
		Set("updated_at = current_timestamp").
		WherePK().
		Exec(ctx)
	return err
}

// InsertLedgerEntry appends one audit row. For labeled grants the partial
// unique index turns a replay into zero affected rows; the caller treats
// that as an idempotent no-op.
func InsertLedgerEntry(ctx context.Context, db bun.IDB, entry *models.WalletLedger) (bool, error) {
	q := db.NewInsert().Model(entry)
	if entry.Label != nil && entry.Delta > 0 {
		q = q.On("CONFLICT (user_id, token_type, label) WHERE label IS NOT NULL AND delta > 0 DO NOTHING")
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func CountLedgerEntries(ctx context.Context, db bun.IDB, userID int64, tokenType models.TokenType) (int, error) {
	return db.NewSelect().Model((*models.WalletLedger)(nil)).
		Where("user_id = ? AND token_type = ?", userID, tokenType).
		Count(ctx)
}

func GetLedgerEntries(ctx context.Context, db bun.IDB, userID int64, tokenType models.TokenType, limit, offset int) ([]*models.WalletLedger, error) {
	var entries []*models.WalletLedger
	err := db.NewSelect().Model(&entries).
		Where("user_id = ? AND token_type = ?", userID, tokenType).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return entries, nil
}
