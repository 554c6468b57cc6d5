package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:user"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	ExternalID    string     `bun:"external_id" json:"external_id"`
	Nickname      string     `bun:"nickname" json:"nickname"`
	Status        string     `bun:"status" json:"status"`
	LastLoginAt   *time.Time `bun:"last_login_at" json:"last_login_at"`
	CreatedAt     time.Time  `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at" json:"updated_at"`

	// VaultLockedBalance is the source of truth; VaultBalance is a legacy
	// mirror kept equal to it after every mutation.
	VaultLockedBalance int64      `bun:"vault_locked_balance,default:0" json:"vault_locked_balance"`
	VaultBalance       int64      `bun:"vault_balance,default:0" json:"vault_balance"`
	VaultFillUsedAt    *time.Time `bun:"vault_fill_used_at" json:"vault_fill_used_at"`
}

// UserFromAuth only use in middleware
type UserFromAuth struct {
	ID         int64  `json:"id"`
	ExternalID string `json:"external_id"`
	Nickname   string `json:"nickname"`
}
