package models

import (
	"time"

	"github.com/uptrace/bun"
)

type FeatureType string

const (
	FeatureRoulette      FeatureType = "ROULETTE"
	FeatureDice          FeatureType = "DICE"
	FeatureLottery       FeatureType = "LOTTERY"
	FeatureNewMemberDice FeatureType = "NEW_MEMBER_DICE"
	FeatureRanking       FeatureType = "RANKING"
	FeatureTeamBattle    FeatureType = "TEAM_BATTLE"
)

func (f FeatureType) Valid() bool {
	switch f {
	case FeatureRoulette, FeatureDice, FeatureLottery, FeatureNewMemberDice, FeatureRanking, FeatureTeamBattle:
		return true
	}
	return false
}

// FeatureSchedule assigns the feature of a calendar day; at most one row
// per date is valid configuration.
type FeatureSchedule struct {
	bun.BaseModel `bun:"table:feature_schedule"`
	ID            int64       `bun:"id,pk,autoincrement" json:"id"`
	Date          string      `bun:"date" json:"date"`
	FeatureType   FeatureType `bun:"feature_type" json:"feature_type"`
	IsActive      bool        `bun:"is_active,default:true" json:"is_active"`
	CreatedAt     time.Time   `bun:"created_at,default:current_timestamp" json:"created_at"`
}

type FeatureConfig struct {
	bun.BaseModel `bun:"table:feature_config"`
	ID            int64       `bun:"id,pk,autoincrement" json:"id"`
	FeatureType   FeatureType `bun:"feature_type" json:"feature_type"`
	IsEnabled     bool        `bun:"is_enabled,default:true" json:"is_enabled"`
	DailyLimit    int         `bun:"daily_limit,default:1" json:"daily_limit"`
	CreatedAt     time.Time   `bun:"created_at,default:current_timestamp" json:"created_at"`
}
