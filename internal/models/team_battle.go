package models

import (
	"time"

	"github.com/uptrace/bun"
)

type TeamAction string

const (
	TeamActionGamePlay TeamAction = "GAME_PLAY"
	TeamActionBonus    TeamAction = "BONUS"
	TeamActionAdmin    TeamAction = "ADMIN_ADJUST"
	TeamActionSettle   TeamAction = "DAILY_SETTLE"
)

// RateLimited reports whether this action counts against the per-user
// daily scoring ceiling.
func (a TeamAction) RateLimited() bool {
	return a == TeamActionGamePlay
}

type Team struct {
	bun.BaseModel `bun:"table:team"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Name          string    `bun:"name" json:"name"`
	IsActive      bool      `bun:"is_active,default:true" json:"is_active"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

type TeamSeason struct {
	bun.BaseModel `bun:"table:team_season"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Name          string    `bun:"name" json:"name"`
	StartsAt      time.Time `bun:"starts_at" json:"starts_at"`
	EndsAt        time.Time `bun:"ends_at" json:"ends_at"`
	IsActive      bool      `bun:"is_active" json:"is_active"`
	AutoRotated   bool      `bun:"auto_rotated" json:"auto_rotated"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

// TeamMember is keyed by user: a user belongs to at most one team.
type TeamMember struct {
	bun.BaseModel `bun:"table:team_member"`
	UserID        int64     `bun:"user_id,pk" json:"user_id"`
	TeamID        int64     `bun:"team_id" json:"team_id"`
	Role          string    `bun:"role,default:'member'" json:"role"`
	JoinedAt      time.Time `bun:"joined_at,default:current_timestamp" json:"joined_at"`
}

type TeamScore struct {
	bun.BaseModel `bun:"table:team_score"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	TeamID        int64     `bun:"team_id" json:"team_id"`
	SeasonID      int64     `bun:"season_id" json:"season_id"`
	Points        int64     `bun:"points,default:0" json:"points"`
	UpdatedAt     time.Time `bun:"updated_at" json:"updated_at"`
}

// TeamEventLog is append-only; it doubles as the per-user daily action
// counter for rate-limited actions.
type TeamEventLog struct {
	bun.BaseModel `bun:"table:team_event_log"`
	ID            int64                  `bun:"id,pk,autoincrement" json:"id"`
	TeamID        int64                  `bun:"team_id" json:"team_id"`
	SeasonID      int64                  `bun:"season_id" json:"season_id"`
	UserID        *int64                 `bun:"user_id" json:"user_id"`
	Action        TeamAction             `bun:"action" json:"action"`
	Delta         int64                  `bun:"delta" json:"delta"`
	Meta          map[string]interface{} `bun:"meta,type:jsonb" json:"meta"`
	CreatedAt     time.Time              `bun:"created_at,default:current_timestamp" json:"created_at"`
}

type TeamStanding struct {
	TeamID      int64      `bun:"team_id" json:"team_id"`
	TeamName    string     `bun:"team_name" json:"team_name"`
	Points      int64      `bun:"points" json:"points"`
	LastEventAt *time.Time `bun:"last_event_at" json:"last_event_at"`
	Rank        int        `bun:"-" json:"rank"`
}

type TeamContribution struct {
	UserID int64 `bun:"user_id" json:"user_id"`
	Points int64 `bun:"points" json:"points"`
}
