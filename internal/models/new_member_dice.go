package models

import (
	"time"

	"github.com/uptrace/bun"
)

type NewMemberDiceEligibility struct {
	bun.BaseModel `bun:"table:new_member_dice_eligibility"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64      `bun:"user_id" json:"user_id"`
	IsEligible    bool       `bun:"is_eligible" json:"is_eligible"`
	CampaignKey   string     `bun:"campaign_key" json:"campaign_key"`
	GrantedBy     string     `bun:"granted_by" json:"granted_by"`
	ExpiresAt     *time.Time `bun:"expires_at" json:"expires_at"`
	RevokedAt     *time.Time `bun:"revoked_at" json:"revoked_at"`
	CreatedAt     time.Time  `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at" json:"updated_at"`
}

// Active is the single eligibility predicate shared by the new-member dice
// and the vault funnel.
func (e *NewMemberDiceEligibility) Active(now time.Time) bool {
	if e == nil || !e.IsEligible {
		return false
	}
	if e.RevokedAt != nil {
		return false
	}
	if e.ExpiresAt != nil && !e.ExpiresAt.After(now) {
		return false
	}
	return true
}

// NewMemberDiceLog is unique per user: the dice is single-use forever.
type NewMemberDiceLog struct {
	bun.BaseModel `bun:"table:new_member_dice_log"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64     `bun:"user_id" json:"user_id"`
	Outcome       string    `bun:"outcome" json:"outcome"`
	RewardAmount  int64     `bun:"reward_amount" json:"reward_amount"`
	PlayedAt      time.Time `bun:"played_at,default:current_timestamp" json:"played_at"`
}
