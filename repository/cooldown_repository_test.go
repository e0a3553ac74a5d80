package repository

import (
	"context"
	"testing"
	"time"

	"pointsbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCooldownRepository_TouchAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewCooldownRepository(testDB.DB)
	ctx := context.Background()

	_, _, err := userRepo.Upsert(ctx, 100, "alice", "", "")
	require.NoError(t, err)

	t.Run("no prior message", func(t *testing.T) {
		state, err := repo.GetByUser(ctx, 100)
		require.NoError(t, err)
		assert.Nil(t, state)
	})

	t.Run("touch creates the row", func(t *testing.T) {
		first := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
		require.NoError(t, repo.Touch(ctx, 100, first))

		state, err := repo.GetByUser(ctx, 100)
		require.NoError(t, err)
		require.NotNil(t, state)
		assert.Equal(t, int64(100), state.UserID)
		assert.True(t, state.LastMessageTime.Equal(first))
	})

	t.Run("touch overwrites on repeat", func(t *testing.T) {
		second := time.Date(2026, 8, 30, 11, 30, 0, 0, time.UTC)
		require.NoError(t, repo.Touch(ctx, 100, second))

		state, err := repo.GetByUser(ctx, 100)
		require.NoError(t, err)
		require.NotNil(t, state)
		assert.True(t, state.LastMessageTime.Equal(second))
	})
}
