package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestConfig(t *testing.T) *Config {
	t.Helper()
	t.Setenv("ENVIRONMENT", "test")
	cfg, err := Load()
	require.NoError(t, err)
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadTestConfig(t)
	settings := cfg.Settings()

	assert.Equal(t, int64(5), settings.CheckinMin)
	assert.Equal(t, int64(10), settings.CheckinMax)
	assert.Equal(t, int64(1), settings.MessagePoints)
	assert.Equal(t, int64(1), settings.SearchCost)
	assert.Equal(t, int64(10), settings.MaxDailyMessagePoints)
	assert.Equal(t, 1, settings.MaxCheckinsPerDay)
	assert.Equal(t, 0, settings.RetentionDays)
	assert.Equal(t, 1, settings.CooldownHours)
	assert.Equal(t, 2, cfg.CleanupHour)
	assert.Equal(t, 0, cfg.CleanupMinute)
}

func TestLoad_ClampsCheckinLimit(t *testing.T) {
	t.Setenv("MAX_CHECKIN_PER_DAY", "5")
	cfg := loadTestConfig(t)

	assert.Equal(t, 1, cfg.Settings().MaxCheckinsPerDay,
		"one row per user per day is the hard limit")
}

func TestLoad_InvalidRewardRange(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("CHECKIN_POINTS_MIN", "20")
	t.Setenv("CHECKIN_POINTS_MAX", "10")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_AdminUserIDs(t *testing.T) {
	t.Setenv("ADMIN_USER_IDS", "111, 222,333")
	cfg := loadTestConfig(t)

	assert.True(t, cfg.IsAdmin(111))
	assert.True(t, cfg.IsAdmin(222))
	assert.True(t, cfg.IsAdmin(333))
	assert.False(t, cfg.IsAdmin(444))
}

func TestUpdateSetting(t *testing.T) {
	t.Setenv("ADMIN_USER_IDS", "111")
	cfg := loadTestConfig(t)

	t.Run("admin updates a setting", func(t *testing.T) {
		require.NoError(t, cfg.UpdateSetting(111, "message_points", 3))
		assert.Equal(t, int64(3), cfg.Settings().MessagePoints)
	})

	t.Run("non-admin is rejected", func(t *testing.T) {
		err := cfg.UpdateSetting(999, "message_points", 5)
		assert.Error(t, err)
		assert.Equal(t, int64(3), cfg.Settings().MessagePoints)
	})

	t.Run("unknown key is rejected", func(t *testing.T) {
		assert.Error(t, cfg.UpdateSetting(111, "bogus", 1))
	})

	t.Run("reward range stays consistent", func(t *testing.T) {
		err := cfg.UpdateSetting(111, "checkin_min", 50)
		assert.Error(t, err, "min must not exceed max")

		require.NoError(t, cfg.UpdateSetting(111, "checkin_max", 50))
		require.NoError(t, cfg.UpdateSetting(111, "checkin_min", 50))
		settings := cfg.Settings()
		assert.Equal(t, int64(50), settings.CheckinMin)
		assert.Equal(t, int64(50), settings.CheckinMax)
	})

	t.Run("negative values are rejected", func(t *testing.T) {
		assert.Error(t, cfg.UpdateSetting(111, "expire_days", -1))
	})
}
