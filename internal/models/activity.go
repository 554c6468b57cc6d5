package models

import (
	"time"

	"github.com/uptrace/bun"
)

type ActivityEventType string

const (
	ActivityRoulettePlay ActivityEventType = "ROULETTE_PLAY"
	ActivityDicePlay     ActivityEventType = "DICE_PLAY"
	ActivityLotteryPlay  ActivityEventType = "LOTTERY_PLAY"
	ActivityBonusUsed    ActivityEventType = "BONUS_USED"
	ActivityPlayDuration ActivityEventType = "PLAY_DURATION"
)

func (t ActivityEventType) Valid() bool {
	switch t {
	case ActivityRoulettePlay, ActivityDicePlay, ActivityLotteryPlay, ActivityBonusUsed, ActivityPlayDuration:
		return true
	}
	return false
}

// UserActivity holds per-user rolling counters read by the segment engine.
type UserActivity struct {
	bun.BaseModel     `bun:"table:user_activity"`
	ID                int64      `bun:"id,pk,autoincrement" json:"id"`
	UserID            int64      `bun:"user_id" json:"user_id"`
	LastLoginAt       *time.Time `bun:"last_login_at" json:"last_login_at"`
	LastChargeAt      *time.Time `bun:"last_charge_at" json:"last_charge_at"`
	RoulettePlays     int        `bun:"roulette_plays,default:0" json:"roulette_plays"`
	DicePlays         int        `bun:"dice_plays,default:0" json:"dice_plays"`
	LotteryPlays      int        `bun:"lottery_plays,default:0" json:"lottery_plays"`
	TotalPlayDuration int        `bun:"total_play_duration,default:0" json:"total_play_duration"`
	LastBonusUsedAt   *time.Time `bun:"last_bonus_used_at" json:"last_bonus_used_at"`
	CreatedAt         time.Time  `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt         time.Time  `bun:"updated_at" json:"updated_at"`
}

// UserActivityEvent is unique per (user_id, event_id); replays of the same
// client event id leave counters untouched.
type UserActivityEvent struct {
	bun.BaseModel `bun:"table:user_activity_event"`
	ID            int64             `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64             `bun:"user_id" json:"user_id"`
	EventID       string            `bun:"event_id" json:"event_id"`
	EventType     ActivityEventType `bun:"event_type" json:"event_type"`
	CreatedAt     time.Time         `bun:"created_at,default:current_timestamp" json:"created_at"`
}
