package services

import (
	"testing"

	"fortuna/internal/models"

	"github.com/stretchr/testify/require"
)

func testLevels() []*models.SeasonLevel {
	return []*models.SeasonLevel{
		{Level: 1, RequiredXP: 0},
		{Level: 2, RequiredXP: 100},
		{Level: 3, RequiredXP: 250},
		{Level: 4, RequiredXP: 500},
	}
}

func TestAchievedLevel(t *testing.T) {
	levels := testLevels()

	require.Equal(t, 1, AchievedLevel(levels, 0))
	require.Equal(t, 1, AchievedLevel(levels, 99))
	require.Equal(t, 2, AchievedLevel(levels, 100))
	require.Equal(t, 3, AchievedLevel(levels, 499))
	require.Equal(t, 4, AchievedLevel(levels, 500))
	require.Equal(t, 4, AchievedLevel(levels, 10_000))
	require.Equal(t, 0, AchievedLevel(nil, 10_000))
}

func TestSeasonRewardLabel(t *testing.T) {
	require.Equal(t, "SEASONPASS_S7_L3", SeasonRewardLabel(7, 3))
}
