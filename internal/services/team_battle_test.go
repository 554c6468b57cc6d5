package services

import (
	"testing"
	"time"

	"fortuna/internal/models"

	"github.com/stretchr/testify/require"
)

func TestLocalDayBounds(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	service := &ServiceTeamBattle{appConfig: models.DefaultAppConfig(loc)}

	// 16:30 UTC on the 27th is already 01:30 on the 28th in Seoul.
	now := time.Date(2026, 8, 27, 16, 30, 0, 0, time.UTC)
	start, end := service.localDayBounds(now)

	require.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, loc), start)
	require.Equal(t, start.Add(24*time.Hour), end)
	require.False(t, now.Before(start))
	require.True(t, now.Before(end))
}
