package services

import (
	"testing"
	"time"

	"fortuna/internal/models"

	"github.com/stretchr/testify/require"
)

func testSegmentContext() *models.SegmentContext {
	lastLogin := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	days := 27
	return &models.SegmentContext{
		LastLoginAt:        &lastLogin,
		LastChargeAt:       nil,
		DaysSinceLastLogin: &days,
		DepositAmount:      1_200_000,
		RoulettePlays:      14,
		DicePlays:          0,
	}
}

func TestMatchesCondition_Predicates(t *testing.T) {
	ctx := testSegmentContext()

	cases := []struct {
		name string
		cond map[string]interface{}
		want bool
	}{
		{"gte match", map[string]interface{}{"field": "deposit_amount", "op": ">=", "value": float64(1_000_000)}, true},
		{"gt miss", map[string]interface{}{"field": "deposit_amount", "op": ">", "value": float64(1_200_000)}, false},
		{"eq", map[string]interface{}{"field": "roulette_plays", "op": "==", "value": float64(14)}, true},
		{"neq", map[string]interface{}{"field": "roulette_plays", "op": "!=", "value": float64(14)}, false},
		{"lt", map[string]interface{}{"field": "dice_plays", "op": "<", "value": float64(1)}, true},
		{"lte", map[string]interface{}{"field": "dice_plays", "op": "<=", "value": float64(0)}, true},
		{"int value coerced", map[string]interface{}{"field": "roulette_plays", "op": ">", "value": 10}, true},
		{"datetime is_null", map[string]interface{}{"field": "last_charge_at", "op": "is_null"}, true},
		{"datetime not_null", map[string]interface{}{"field": "last_login_at", "op": "not_null"}, true},
		{"null field never compares", map[string]interface{}{"field": "days_since_last_charge", "op": ">", "value": float64(0)}, false},
		{"days comparison", map[string]interface{}{"field": "days_since_last_login", "op": ">=", "value": float64(14)}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := MatchesCondition(tc.cond, ctx)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestMatchesCondition_Groups(t *testing.T) {
	ctx := testSegmentContext()

	all := map[string]interface{}{
		"all": []interface{}{
			map[string]interface{}{"field": "deposit_amount", "op": ">=", "value": float64(1_000_000)},
			map[string]interface{}{"field": "last_charge_at", "op": "is_null"},
		},
	}
	got, err := MatchesCondition(all, ctx)
	require.NoError(t, err)
	require.True(t, got)

	all["all"] = append(all["all"].([]interface{}), map[string]interface{}{"field": "dice_plays", "op": ">", "value": float64(0)})
	got, err = MatchesCondition(all, ctx)
	require.NoError(t, err)
	require.False(t, got)

	any := map[string]interface{}{
		"any": []interface{}{
			map[string]interface{}{"field": "dice_plays", "op": ">", "value": float64(0)},
			map[string]interface{}{"field": "roulette_plays", "op": ">", "value": float64(0)},
		},
	}
	got, err = MatchesCondition(any, ctx)
	require.NoError(t, err)
	require.True(t, got)

	nested := map[string]interface{}{
		"all": []interface{}{
			map[string]interface{}{"field": "deposit_amount", "op": ">", "value": float64(0)},
			any,
		},
	}
	got, err = MatchesCondition(nested, ctx)
	require.NoError(t, err)
	require.True(t, got)
}

func TestMatchesCondition_Malformed(t *testing.T) {
	ctx := testSegmentContext()

	_, err := MatchesCondition(map[string]interface{}{"all": "nope"}, ctx)
	require.Error(t, err)

	_, err = MatchesCondition(map[string]interface{}{"field": "deposit_amount"}, ctx)
	require.Error(t, err)

	_, err = MatchesCondition(map[string]interface{}{"field": "no_such_field", "op": ">", "value": float64(1)}, ctx)
	require.Error(t, err)

	_, err = MatchesCondition(map[string]interface{}{"field": "deposit_amount", "op": "~=", "value": float64(1)}, ctx)
	require.Error(t, err)

	// datetime fields answer null checks only
	got, err := MatchesCondition(map[string]interface{}{"field": "last_login_at", "op": ">", "value": float64(1)}, ctx)
	require.NoError(t, err)
	require.False(t, got)

	// non-numeric comparison value never matches
	got, err = MatchesCondition(map[string]interface{}{"field": "deposit_amount", "op": ">", "value": "lots"}, ctx)
	require.NoError(t, err)
	require.False(t, got)
}
