package models

import (
	"time"

	"github.com/uptrace/bun"
)

type RewardType string

const (
	RewardPoint  RewardType = "POINT"
	RewardCoupon RewardType = "COUPON"
	RewardToken  RewardType = "GAME_TOKEN"
)

type Season struct {
	bun.BaseModel  `bun:"table:season"`
	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	SeasonName     string    `bun:"season_name" json:"season_name"`
	StartDate      time.Time `bun:"start_date" json:"start_date"`
	EndDate        time.Time `bun:"end_date" json:"end_date"`
	MaxLevel       int       `bun:"max_level" json:"max_level"`
	BaseXPPerStamp int       `bun:"base_xp_per_stamp" json:"base_xp_per_stamp"`
	IsActive       bool      `bun:"is_active" json:"is_active"`
	CreatedAt      time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`

	Levels []*SeasonLevel `bun:"rel:has-many,join:id=season_id" json:"levels,omitempty"`
}

type SeasonLevel struct {
	bun.BaseModel `bun:"table:season_level"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	SeasonID      int64      `bun:"season_id" json:"season_id"`
	Level         int        `bun:"level" json:"level"`
	RequiredXP    int        `bun:"required_xp" json:"required_xp"`
	RewardType    RewardType `bun:"reward_type" json:"reward_type"`
	RewardAmount  int64      `bun:"reward_amount" json:"reward_amount"`
	AutoClaim     bool       `bun:"auto_claim" json:"auto_claim"`
}

type SeasonProgress struct {
	bun.BaseModel `bun:"table:season_progress"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64      `bun:"user_id" json:"user_id"`
	SeasonID      int64      `bun:"season_id" json:"season_id"`
	CurrentLevel  int        `bun:"current_level,default:1" json:"current_level"`
	CurrentXP     int        `bun:"current_xp,default:0" json:"current_xp"`
	TotalStamps   int        `bun:"total_stamps,default:0" json:"total_stamps"`
	LastStampDate *time.Time `bun:"last_stamp_date" json:"last_stamp_date"`
	CreatedAt     time.Time  `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at" json:"updated_at"`
}

// SeasonStampLog has a unique index on (user_id, season_id, date); the
// one-stamp-per-day contract lives in storage, not in a pre-check.
type SeasonStampLog struct {
	bun.BaseModel `bun:"table:season_stamp_log"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64     `bun:"user_id" json:"user_id"`
	SeasonID      int64     `bun:"season_id" json:"season_id"`
	ProgressID    int64     `bun:"progress_id" json:"progress_id"`
	Date          string    `bun:"date" json:"date"`
	SourceFeature string    `bun:"source_feature" json:"source_feature"`
	XPEarned      int       `bun:"xp_earned" json:"xp_earned"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

// SeasonRewardLog has a unique index on (user_id, season_id, level):
// one reward per level per user, auto or manual.
type SeasonRewardLog struct {
	bun.BaseModel `bun:"table:season_reward_log"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64      `bun:"user_id" json:"user_id"`
	SeasonID      int64      `bun:"season_id" json:"season_id"`
	ProgressID    int64      `bun:"progress_id" json:"progress_id"`
	Level         int        `bun:"level" json:"level"`
	RewardType    RewardType `bun:"reward_type" json:"reward_type"`
	RewardAmount  int64      `bun:"reward_amount" json:"reward_amount"`
	ClaimedAt     time.Time  `bun:"claimed_at" json:"claimed_at"`
}

type StampResult struct {
	AddedStamp   int                `json:"added_stamp"`
	XPAdded      int                `json:"xp_added"`
	CurrentLevel int                `json:"current_level"`
	LeveledUp    bool               `json:"leveled_up"`
	Rewards      []*SeasonRewardLog `json:"rewards"`
}
