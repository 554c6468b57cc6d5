package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluateGate(t *testing.T) {
	cases := []struct {
		name string
		in   GateInput
		want error
	}{
		{
			name: "open",
			in:   GateInput{ScheduledToday: true, GateEnforced: true, FeatureEnabled: true, PlayedToday: 0, DailyLimit: 1},
			want: nil,
		},
		{
			name: "not scheduled",
			in:   GateInput{ScheduledToday: false, GateEnforced: true, FeatureEnabled: true, DailyLimit: 1},
			want: ErrNoFeatureToday,
		},
		{
			name: "gate off ignores schedule",
			in:   GateInput{ScheduledToday: false, GateEnforced: false, FeatureEnabled: true, DailyLimit: 1},
			want: nil,
		},
		{
			name: "schedule checked before switch",
			in:   GateInput{ScheduledToday: false, GateEnforced: true, FeatureEnabled: false, DailyLimit: 1},
			want: ErrNoFeatureToday,
		},
		{
			name: "feature disabled",
			in:   GateInput{ScheduledToday: true, GateEnforced: true, FeatureEnabled: false, DailyLimit: 1},
			want: ErrFeatureDisabled,
		},
		{
			name: "switch checked before ceiling",
			in:   GateInput{ScheduledToday: true, GateEnforced: true, FeatureEnabled: false, PlayedToday: 5, DailyLimit: 1},
			want: ErrFeatureDisabled,
		},
		{
			name: "limit reached",
			in:   GateInput{ScheduledToday: true, GateEnforced: true, FeatureEnabled: true, PlayedToday: 1, DailyLimit: 1},
			want: ErrDailyLimitReached,
		},
		{
			name: "zero limit is unlimited",
			in:   GateInput{ScheduledToday: true, GateEnforced: true, FeatureEnabled: true, PlayedToday: 100, DailyLimit: 0},
			want: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := EvaluateGate(tc.in)
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRemainingPlays(t *testing.T) {
	require.Equal(t, -1, RemainingPlays(0, 0))
	require.Equal(t, -1, RemainingPlays(3, -1))
	require.Equal(t, 1, RemainingPlays(0, 1))
	require.Equal(t, 0, RemainingPlays(1, 1))
	require.Equal(t, 0, RemainingPlays(5, 1))
}
