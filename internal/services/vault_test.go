package services

import (
	"testing"
	"time"

	"fortuna/internal/models"

	"github.com/stretchr/testify/require"
)

func TestUnlockTierFor(t *testing.T) {
	tiers := models.DefaultAppConfig(time.UTC).VaultTiers

	require.Nil(t, UnlockTierFor(tiers, 0))
	require.Nil(t, UnlockTierFor(tiers, -100))
	require.Nil(t, UnlockTierFor(tiers, 9_999))

	tier := UnlockTierFor(tiers, 10_000)
	require.NotNil(t, tier)
	require.Equal(t, "A", tier.Name)
	require.Equal(t, int64(5_000), tier.Unlock)

	tier = UnlockTierFor(tiers, 49_999)
	require.NotNil(t, tier)
	require.Equal(t, "A", tier.Name)

	tier = UnlockTierFor(tiers, 50_000)
	require.NotNil(t, tier)
	require.Equal(t, "B", tier.Name)
	require.Equal(t, int64(10_000), tier.Unlock)

	tier = UnlockTierFor(tiers, 1_000_000)
	require.NotNil(t, tier)
	require.Equal(t, "B", tier.Name)
}

func TestVaultUnlockLabel(t *testing.T) {
	require.Equal(t, "VAULT_UNLOCK_100000_250000", VaultUnlockLabel(100_000, 250_000))
	require.NotEqual(t, VaultUnlockLabel(0, 100_000), VaultUnlockLabel(100_000, 200_000))
}
