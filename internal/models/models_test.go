package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenTypeValid(t *testing.T) {
	require.True(t, TokenRoulette.Valid())
	require.True(t, TokenDice.Valid())
	require.True(t, TokenLottery.Valid())
	require.True(t, TokenPoint.Valid())
	require.False(t, TokenType("GOLD").Valid())
	require.False(t, TokenType("").Valid())
}

func TestActivityEventTypeValid(t *testing.T) {
	require.True(t, ActivityRoulettePlay.Valid())
	require.True(t, ActivityPlayDuration.Valid())
	require.False(t, ActivityEventType("LOGIN").Valid())
}

func TestTeamActionRateLimited(t *testing.T) {
	require.True(t, TeamActionGamePlay.RateLimited())
	require.False(t, TeamActionBonus.RateLimited())
	require.False(t, TeamActionAdmin.RateLimited())
	require.False(t, TeamActionSettle.RateLimited())
}

func TestNewMemberDiceEligibilityActive(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	var nilEligibility *NewMemberDiceEligibility
	require.False(t, nilEligibility.Active(now))

	require.True(t, (&NewMemberDiceEligibility{IsEligible: true}).Active(now))
	require.False(t, (&NewMemberDiceEligibility{IsEligible: false}).Active(now))
	require.False(t, (&NewMemberDiceEligibility{IsEligible: true, RevokedAt: &past}).Active(now))
	require.True(t, (&NewMemberDiceEligibility{IsEligible: true, ExpiresAt: &future}).Active(now))
	require.False(t, (&NewMemberDiceEligibility{IsEligible: true, ExpiresAt: &past}).Active(now))
	require.False(t, (&NewMemberDiceEligibility{IsEligible: true, ExpiresAt: &now}).Active(now))
}

func TestAppConfigToday(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	cfg := DefaultAppConfig(seoul)

	// 16:00 UTC on the 27th is already the 28th in Seoul
	now := time.Date(2026, 8, 27, 16, 0, 0, 0, time.UTC)
	require.Equal(t, "2026-08-28", cfg.Today(now))
	require.Equal(t, "2026-08-27", cfg.Today(now.Add(-2*time.Hour)))
}

func TestDefaultAppConfigTierOrder(t *testing.T) {
	cfg := DefaultAppConfig(time.UTC)
	require.NotEmpty(t, cfg.VaultTiers)
	for i := 1; i < len(cfg.VaultTiers); i++ {
		require.Greater(t, cfg.VaultTiers[i-1].MinDelta, cfg.VaultTiers[i].MinDelta)
	}
}
