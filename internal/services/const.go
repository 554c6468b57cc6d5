package services

import (
	"errors"
	"fmt"
	"time"
)

// Typed outcomes of the core engines; handlers wrap these with errorx
// kinds so clients can tell "you already did this" from a server fault.
var (
	ErrNoActiveSeason  = errors.New("NO_ACTIVE_SEASON")
	ErrNoFeatureToday  = errors.New("NO_FEATURE_TODAY")
	ErrFeatureDisabled = errors.New("FEATURE_DISABLED")
	ErrInvalidConfig   = errors.New("INVALID_CONFIG")

	ErrDailyLimitReached    = errors.New("DAILY_LIMIT_REACHED")
	ErrAlreadyStampedToday  = errors.New("ALREADY_STAMPED_TODAY")
	ErrRewardAlreadyClaimed = errors.New("REWARD_ALREADY_CLAIMED")
	ErrAlreadyPlayed        = errors.New("ALREADY_PLAYED")

	ErrNotEnoughTokens = errors.New("NOT_ENOUGH_TOKENS")

	ErrLevelNotReached = errors.New("LEVEL_NOT_REACHED")
	ErrLevelNotFound   = errors.New("LEVEL_NOT_FOUND")
	ErrAutoClaimLevel  = errors.New("AUTO_CLAIM_LEVEL")

	ErrNotEligible         = errors.New("NEW_MEMBER_DICE_NOT_ELIGIBLE")
	ErrVaultNotEligible    = errors.New("VAULT_NOT_ELIGIBLE")
	ErrVaultFillUsed       = errors.New("VAULT_FILL_ALREADY_USED")
	ErrNoStandings         = errors.New("NO_STANDINGS")
	ErrZeroDelta           = errors.New("ZERO_DELTA")
	ErrTeamNotFound        = errors.New("TEAM_NOT_FOUND")
	ErrAlreadyInTeam       = errors.New("ALREADY_IN_TEAM")
	ErrNotInTeam           = errors.New("NOT_IN_TEAM")
	ErrSeasonConflict      = errors.New("ACTIVE_SEASON_CONFLICT")
	ErrUserNotFound        = errors.New("USER_NOT_FOUND")
	ErrVaultLock           = errors.New("vault locked")
	ErrSettlementLock      = errors.New("settlement locked")
	ErrUserPlayLock        = errors.New("user play locked")
	ErrInvalidTokenAmount  = errors.New("INVALID_TOKEN_AMOUNT")
	ErrInvalidEventType    = errors.New("INVALID_EVENT_TYPE")
)

const (
	CONFIG_ROULETTE_DAILY_LIMIT    = "ROULETTE_DAILY_LIMIT"
	CONFIG_DICE_DAILY_LIMIT        = "DICE_DAILY_LIMIT"
	CONFIG_LOTTERY_DAILY_LIMIT     = "LOTTERY_DAILY_LIMIT"
	CONFIG_RANKING_TOP_N           = "RANKING_TOP_N"
	CONFIG_TEAM_DAILY_ACTION_LIMIT = "TEAM_DAILY_ACTION_LIMIT"
	CONFIG_TEAM_DAILY_REWARD_POINT = "TEAM_DAILY_REWARD_POINT"

	CONFIG_CRONJOB_TIME_RANKING     = "CRONJOB_TIME_RANKING"
	CONFIG_CRONJOB_TIME_TEAM_BATTLE = "CRONJOB_TIME_TEAM_BATTLE"

	DEFAULT_DAILY_PLAY_LIMIT = 1
	DEFAULT_RANKING_TOP_N    = 10

	ACTIVITY_INGEST_RATE_PER_MINUTE = 60
	ADMIN_UPSERT_RATE_PER_MINUTE    = 30

	CACHE_TTL_15_SECONDS = 15 * time.Second
	CACHE_TTL_1_MIN      = 1 * time.Minute
	CACHE_TTL_5_MINS     = 5 * time.Minute
	CACHE_TTL_1_HOUR     = 1 * time.Hour
)

func LockKeyVaultUser(userID int64) string {
	return fmt.Sprintf("lock:vault:%d", userID)
}

func LockKeyTeamSettlement(seasonID int64) string {
	return fmt.Sprintf("lock:team-settlement:%d", seasonID)
}

func LockKeyUserPlay(feature string, userID int64) string {
	return fmt.Sprintf("lock:play:%s:%d", feature, userID)
}

func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", key)
}

func DBKeyFeatureToday(date string) string {
	return fmt.Sprintf("feature:today:%s", date)
}

func DBKeyWalletBalance(userID int64, tokenType string) string {
	return fmt.Sprintf("wallet:%d:%s", userID, tokenType)
}

func DBKeySegmentRules() string {
	return "segment_rules:active"
}

func LimitKeyActivityIngest(userID int64) string {
	return fmt.Sprintf("limit:activity:%d", userID)
}

func LimitKeyAdminUpsert() string {
	return "limit:admin:external-ranking"
}
