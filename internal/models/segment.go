package models

import (
	"time"

	"github.com/uptrace/bun"
)

// SegmentRule is a DB-managed targeting rule. Condition is a JSON tree of
// all/any groups and field predicates; lower priority wins first.
type SegmentRule struct {
	bun.BaseModel `bun:"table:segment_rule"`
	ID            int64                  `bun:"id,pk,autoincrement" json:"id"`
	SegmentKey    string                 `bun:"segment_key" json:"segment_key"`
	Priority      int                    `bun:"priority,default:100" json:"priority"`
	Condition     map[string]interface{} `bun:"condition,type:jsonb" json:"condition"`
	IsActive      bool                   `bun:"is_active,default:true" json:"is_active"`
	CreatedAt     time.Time              `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time              `bun:"updated_at" json:"updated_at"`
}

// SegmentContext is the read-only activity snapshot the rule engine
// evaluates against.
type SegmentContext struct {
	LastLoginAt  *time.Time `json:"last_login_at"`
	LastChargeAt *time.Time `json:"last_charge_at"`
	LastActiveAt *time.Time `json:"last_active_at"`

	DaysSinceLastLogin  *int `json:"days_since_last_login"`
	DaysSinceLastCharge *int `json:"days_since_last_charge"`
	DaysSinceLastActive *int `json:"days_since_last_active"`

	DepositAmount     int64 `json:"deposit_amount"`
	RoulettePlays     int   `json:"roulette_plays"`
	DicePlays         int   `json:"dice_plays"`
	LotteryPlays      int   `json:"lottery_plays"`
	TotalPlayDuration int   `json:"total_play_duration"`
}
