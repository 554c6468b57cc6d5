package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDepositSteps(t *testing.T) {
	const step = int64(100_000)

	require.Equal(t, 0, DepositSteps(0, 0, step))
	require.Equal(t, 0, DepositSteps(0, 99_999, step))
	require.Equal(t, 1, DepositSteps(0, 100_000, step))
	require.Equal(t, 1, DepositSteps(50_000, 150_000, step))
	require.Equal(t, 2, DepositSteps(0, 250_000, step))
	require.Equal(t, 0, DepositSteps(100_000, 199_999, step))
	require.Equal(t, 3, DepositSteps(199_999, 500_000, step))

	// regressions and bad config never stamp
	require.Equal(t, 0, DepositSteps(200_000, 100_000, step))
	require.Equal(t, 0, DepositSteps(0, 500_000, 0))
}
