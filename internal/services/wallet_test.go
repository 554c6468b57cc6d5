package services

import (
	"testing"

	"fortuna/internal/models"

	"github.com/stretchr/testify/require"
)

func TestTrialGrantLabel(t *testing.T) {
	require.Equal(t, "TRIAL_ROULETTE_TOKEN_2026-08-28", TrialGrantLabel(models.TokenRoulette, "2026-08-28"))
	require.NotEqual(t,
		TrialGrantLabel(models.TokenDice, "2026-08-28"),
		TrialGrantLabel(models.TokenDice, "2026-08-29"))
}

func TestTeamSettleLabel(t *testing.T) {
	require.Equal(t, "TEAMBATTLE_S12_R1", TeamSettleLabel(12))
}
