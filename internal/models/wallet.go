package models

import (
	"time"

	"github.com/uptrace/bun"
)

type TokenType string

const (
	TokenRoulette TokenType = "ROULETTE_TOKEN"
	TokenDice     TokenType = "DICE_TOKEN"
	TokenLottery  TokenType = "LOTTERY_TICKET"
	TokenPoint    TokenType = "POINT"
)

func (t TokenType) Valid() bool {
	switch t {
	case TokenRoulette, TokenDice, TokenLottery, TokenPoint:
		return true
	}
	return false
}

type LedgerReason string

const (
	ReasonGamePlay    LedgerReason = "GAME_PLAY"
	ReasonGameReward  LedgerReason = "GAME_REWARD"
	ReasonTrialGrant  LedgerReason = "TRIAL_GRANT"
	ReasonAdminGrant  LedgerReason = "ADMIN_GRANT"
	ReasonAdminRevoke LedgerReason = "ADMIN_REVOKE"
	ReasonSeasonPass  LedgerReason = "SEASON_PASS_REWARD"
	ReasonTeamBattle  LedgerReason = "TEAM_BATTLE_DAILY_REWARD"
	ReasonVaultUnlock LedgerReason = "VAULT_UNLOCK"
	ReasonTestTopUp   LedgerReason = "TEST_TOP_UP"
)

type UserWallet struct {
	bun.BaseModel `bun:"table:user_wallet"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64     `bun:"user_id" json:"user_id"`
	TokenType     TokenType `bun:"token_type" json:"token_type"`
	Balance       int64     `bun:"balance,default:0" json:"balance"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at" json:"updated_at"`
}

// WalletLedger rows are append-only; BalanceAfter snapshots the post-mutation
// balance for audit replay. Label makes a grant at-most-once per
// (user, token, label).
type WalletLedger struct {
	bun.BaseModel `bun:"table:wallet_ledger"`
	ID            int64                  `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64                  `bun:"user_id" json:"user_id"`
	TokenType     TokenType              `bun:"token_type" json:"token_type"`
	Delta         int64                  `bun:"delta" json:"delta"`
	BalanceAfter  int64                  `bun:"balance_after" json:"balance_after"`
	Reason        LedgerReason           `bun:"reason" json:"reason"`
	Label         *string                `bun:"label" json:"label"`
	Meta          map[string]interface{} `bun:"meta,type:jsonb" json:"meta"`
	CreatedAt     time.Time              `bun:"created_at,default:current_timestamp" json:"created_at"`
}
