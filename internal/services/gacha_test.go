package services

import (
	"testing"

	"fortuna/internal/models"

	"github.com/stretchr/testify/require"
)

func TestDefaultPrizeTables(t *testing.T) {
	tables := map[string][]models.PrizeSegment{
		"roulette":        RouletteSegments(),
		"dice":            DiceSegments(),
		"lottery":         LotterySegments(),
		"new member dice": NewMemberDiceSegments(),
	}

	for name, segments := range tables {
		t.Run(name, func(t *testing.T) {
			require.NotEmpty(t, segments)
			for _, segment := range segments {
				require.Positive(t, segment.Weight, segment.Label)
				require.NotEmpty(t, segment.Label)
			}

			gacha, err := NewServiceGacha(segments)
			require.NoError(t, err)
			require.Len(t, gacha.Segments(), len(segments))
		})
	}
}

func TestNewMemberDiceAlwaysPays(t *testing.T) {
	for _, segment := range NewMemberDiceSegments() {
		require.Equal(t, models.RewardPoint, segment.RewardType, segment.Label)
		require.Positive(t, segment.RewardAmount, segment.Label)
	}
}

func TestGachaPickStaysInTable(t *testing.T) {
	segments := DiceSegments()
	gacha, err := NewServiceGacha(segments)
	require.NoError(t, err)

	labels := make(map[string]bool, len(segments))
	for _, segment := range segments {
		labels[segment.Label] = true
	}
	for i := 0; i < 200; i++ {
		require.True(t, labels[gacha.Pick().Label])
	}
}

func TestNewServiceGachaRejectsEmptyTable(t *testing.T) {
	_, err := NewServiceGacha(nil)
	require.Error(t, err)
}
