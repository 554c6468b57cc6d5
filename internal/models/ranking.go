package models

import (
	"time"

	"github.com/uptrace/bun"
)

type RankingDaily struct {
	bun.BaseModel `bun:"table:ranking_daily"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Date          string    `bun:"date" json:"date"`
	UserID        int64     `bun:"user_id" json:"user_id"`
	Rank          int       `bun:"rank" json:"rank"`
	Score         int64     `bun:"score" json:"score"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

// ExternalRanking mirrors the partner site's per-user totals; one row per
// user, bulk-upserted by the ingestion endpoint.
type ExternalRanking struct {
	bun.BaseModel `bun:"table:external_ranking"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64     `bun:"user_id" json:"user_id"`
	DepositAmount int64     `bun:"deposit_amount,default:0" json:"deposit_amount"`
	PlayCount     int       `bun:"play_count,default:0" json:"play_count"`
	Memo          string    `bun:"memo" json:"memo"`
	UpdatedAt     time.Time `bun:"updated_at" json:"updated_at"`
}

type ExternalRankingEntry struct {
	Rank          int    `json:"rank"`
	UserID        int64  `json:"user_id"`
	DepositAmount int64  `json:"deposit_amount"`
	PlayCount     int    `json:"play_count"`
	Memo          string `json:"memo"`
}

type RankingToday struct {
	Date            string                  `json:"date"`
	Entries         []*RankingDaily         `json:"entries"`
	MyEntry         *RankingDaily           `json:"my_entry"`
	ExternalEntries []*ExternalRankingEntry `json:"external_entries"`
	MyExternalEntry *ExternalRankingEntry   `json:"my_external_entry"`
}
