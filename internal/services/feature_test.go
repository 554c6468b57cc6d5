package services

import (
	"context"
	"testing"
	"time"

	"fortuna/internal/models"

	"github.com/stretchr/testify/require"
)

// scheduleCacheStub serves canned schedule rows so the calendar reads never
// touch storage.
type scheduleCacheStub struct {
	rows []*models.FeatureSchedule
}

func (s *scheduleCacheStub) Get(ctx context.Context, key string, target any) error {
	*(target.(*[]*models.FeatureSchedule)) = s.rows
	return nil
}

func testServiceFeature(rows []*models.FeatureSchedule) *ServiceFeature {
	return &ServiceFeature{
		readonlyCache: &scheduleCacheStub{rows},
		appConfig:     models.DefaultAppConfig(time.UTC),
	}
}

func TestGetSchedulesTodaySingleRow(t *testing.T) {
	service := testServiceFeature([]*models.FeatureSchedule{
		{Date: "2026-08-28", FeatureType: models.FeatureDice, IsActive: true},
	})

	schedules, err := service.GetSchedulesToday(context.Background(), time.Now())
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	require.Equal(t, models.FeatureDice, schedules[0].FeatureType)
}

func TestGetSchedulesTodayConflictingRows(t *testing.T) {
	service := testServiceFeature([]*models.FeatureSchedule{
		{Date: "2026-08-28", FeatureType: models.FeatureDice, IsActive: true},
		{Date: "2026-08-28", FeatureType: models.FeatureRoulette, IsActive: true},
	})

	_, err := service.GetSchedulesToday(context.Background(), time.Now())
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestIsScheduledToday(t *testing.T) {
	service := testServiceFeature([]*models.FeatureSchedule{
		{Date: "2026-08-28", FeatureType: models.FeatureDice, IsActive: true},
	})

	scheduled, err := service.IsScheduledToday(context.Background(), models.FeatureDice, time.Now())
	require.NoError(t, err)
	require.True(t, scheduled)

	scheduled, err = service.IsScheduledToday(context.Background(), models.FeatureRoulette, time.Now())
	require.NoError(t, err)
	require.False(t, scheduled)
}

func TestIsScheduledTodaySurfacesBrokenCalendar(t *testing.T) {
	service := testServiceFeature([]*models.FeatureSchedule{
		{Date: "2026-08-28", FeatureType: models.FeatureDice, IsActive: true},
		{Date: "2026-08-28", FeatureType: models.FeatureLottery, IsActive: true},
	})

	_, err := service.IsScheduledToday(context.Background(), models.FeatureDice, time.Now())
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestIsScheduledTodayInactiveRow(t *testing.T) {
	service := testServiceFeature([]*models.FeatureSchedule{
		{Date: "2026-08-28", FeatureType: models.FeatureDice, IsActive: false},
	})

	scheduled, err := service.IsScheduledToday(context.Background(), models.FeatureDice, time.Now())
	require.NoError(t, err)
	require.False(t, scheduled)
}
