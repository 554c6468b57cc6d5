package models

import (
	"time"

	"github.com/uptrace/bun"
)

// PrizeSegment is one slot of a weighted draw. Weights are positive
// integers; selection is proportional to weight over the segment set.
type PrizeSegment struct {
	Label        string     `json:"label"`
	Weight       int        `json:"weight"`
	RewardType   RewardType `json:"reward_type"`
	RewardAmount int64      `json:"reward_amount"`
}

// GamePlayLog records one resolved play. Daily play counts are a count
// query over (user_id, feature_type, date).
type GamePlayLog struct {
	bun.BaseModel `bun:"table:game_play_log"`
	ID            int64                  `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64                  `bun:"user_id" json:"user_id"`
	FeatureType   FeatureType            `bun:"feature_type" json:"feature_type"`
	Date          string                 `bun:"date" json:"date"`
	Outcome       string                 `bun:"outcome" json:"outcome"`
	RewardType    RewardType             `bun:"reward_type" json:"reward_type"`
	RewardAmount  int64                  `bun:"reward_amount" json:"reward_amount"`
	Meta          map[string]interface{} `bun:"meta,type:jsonb" json:"meta"`
	CreatedAt     time.Time              `bun:"created_at,default:current_timestamp" json:"created_at"`
}

type PlayResult struct {
	Outcome     string       `json:"outcome"`
	Segment     PrizeSegment `json:"segment"`
	TokensLeft  int64        `json:"tokens_left"`
	SeasonPass  *StampResult `json:"season_pass,omitempty"`
	PlayedToday int          `json:"played_today"`
	DailyLimit  int          `json:"daily_limit"`
}

type TokensStatus struct {
	Balance     int64 `json:"balance"`
	PlayedToday int   `json:"played_today"`
	DailyLimit  int   `json:"daily_limit"`
	CanPlay     bool  `json:"can_play"`
}
