package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleCatalog(t *testing.T) {
	t.Parallel()

	catalog := sampleCatalog()

	require.NotEmpty(t, catalog.Missions)
	require.NotEmpty(t, catalog.Prizes)
	require.NotEmpty(t, catalog.Products)

	seen := make(map[string]bool)
	for _, m := range catalog.Missions {
		assert.False(t, seen[m.ID], "duplicate mission %s", m.ID)
		seen[m.ID] = true
		assert.True(t, m.IsActive)
		assert.Positive(t, m.RewardAmount)
		assert.True(t, m.RewardCurrency.IsValid())
	}
	for _, p := range catalog.Prizes {
		assert.NoError(t, p.Validate(), p.ID)
	}
	for _, p := range catalog.Products {
		assert.Positive(t, p.PointsRequired)
	}
}

func TestRootCommandTree(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{
		{"serve"},
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "status"},
		{"adjust-balance"},
		{"seed"},
	} {
		found, _, err := rootCmd.Find(args)
		require.NoError(t, err, args)
		assert.Equal(t, args[len(args)-1], found.Name())
	}
}
