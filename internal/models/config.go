package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Config struct {
	bun.BaseModel `bun:"table:config"`
	Key           string `bun:"key,pk" json:"key"`
	Value         string `bun:"value" json:"value"`
}

// VaultTier maps a deposit-increase delta bracket to an unlock target.
type VaultTier struct {
	Name     string `json:"name"`
	MinDelta int64  `json:"min_delta"`
	Unlock   int64  `json:"unlock"`
}

// AppConfig is built once in the container and passed into every service
// constructor; there is no cached settings singleton.
type AppConfig struct {
	Location *time.Location

	// TestMode enables wallet auto-top-up and skips row locks for
	// single-writer embedded storage. Never on in production.
	TestMode           bool
	FeatureGateEnabled bool

	VaultSeedAmount int64
	VaultFillAmount int64
	// Evaluated highest tier first.
	VaultTiers []VaultTier

	DepositStepAmount int64
	DepositStepStamps int

	TeamDailyActionLimit int
	TeamDailyRewardPoint int64
	TeamSeasonAutoRotate bool
}

func DefaultAppConfig(loc *time.Location) *AppConfig {
	return &AppConfig{
		Location:        loc,
		VaultSeedAmount: 10_000,
		VaultFillAmount: 5_000,
		VaultTiers: []VaultTier{
			{Name: "B", MinDelta: 50_000, Unlock: 10_000},
			{Name: "A", MinDelta: 10_000, Unlock: 5_000},
		},
		DepositStepAmount:    100_000,
		DepositStepStamps:    1,
		TeamDailyActionLimit: 10,
		TeamDailyRewardPoint: 500,
		TeamSeasonAutoRotate: true,
	}
}

// Today formats now as the service-local calendar date used by every
// daily uniqueness key.
func (c *AppConfig) Today(now time.Time) string {
	return now.In(c.Location).Format("2006-01-02")
}
