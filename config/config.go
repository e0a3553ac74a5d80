package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Settings holds the point parameters that administrators may adjust at
// runtime. Read through Config.Settings(), mutated only through
// Config.UpdateSetting.
type Settings struct {
	CheckinMin            int64 // minimum randomized check-in reward
	CheckinMax            int64 // maximum randomized check-in reward
	MessagePoints         int64 // credit per qualifying message
	SearchCost            int64 // balance cost per gated-group message
	MaxDailyMessagePoints int64 // per-user per-group daily engagement cap
	MaxCheckinsPerDay     int   // effectively 1, see Load
	RetentionDays         int   // 0 = points never expire
	CooldownHours         int   // gated-group cooldown for low-balance users
}

// Config holds all application configuration. The static fields are set
// once at load; the tunable Settings section is guarded by a mutex.
type Config struct {
	// Database configuration
	DatabaseURL string

	// Group configuration
	CheckinGroupID int64
	SearchGroupID  int64

	// Administrators allowed to adjust balances and runtime settings
	AdminUserIDs []int64

	// Daily expiration sweep schedule (local time)
	CleanupHour   int
	CleanupMinute int

	// Environment: "development", "production" or "test"
	Environment string

	mu       sync.RWMutex
	settings Settings
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	config := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		CheckinGroupID: envInt64("CHECKIN_GROUP_ID", 0),
		SearchGroupID:  envInt64("SEARCH_GROUP_ID", 0),
		CleanupHour:    envInt("CLEANUP_HOUR", 2),
		CleanupMinute:  envInt("CLEANUP_MINUTE", 0),
		Environment:    os.Getenv("ENVIRONMENT"),
		settings: Settings{
			CheckinMin:            envInt64("CHECKIN_POINTS_MIN", 5),
			CheckinMax:            envInt64("CHECKIN_POINTS_MAX", 10),
			MessagePoints:         envInt64("MESSAGE_POINTS", 1),
			SearchCost:            envInt64("SEARCH_MESSAGE_COST", 1),
			MaxDailyMessagePoints: envInt64("MAX_MESSAGE_POINTS_PER_DAY", 10),
			MaxCheckinsPerDay:     envInt("MAX_CHECKIN_PER_DAY", 1),
			RetentionDays:         envInt("POINTS_EXPIRE_DAYS", 0),
			CooldownHours:         envInt("ZERO_POINTS_COOLDOWN_HOURS", 1),
		},
	}

	// Parse admin user IDs
	if adminIDs := os.Getenv("ADMIN_USER_IDS"); adminIDs != "" {
		for _, idStr := range strings.Split(adminIDs, ",") {
			idStr = strings.TrimSpace(idStr)
			if idStr == "" {
				continue
			}
			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid ADMIN_USER_IDS entry %q: %w", idStr, err)
			}
			config.AdminUserIDs = append(config.AdminUserIDs, id)
		}
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	// The (user_id, checkin_date) unique constraint is the concurrency
	// guard for check-ins and admits one row per user per day, so any
	// configured limit above 1 cannot take effect.
	if config.settings.MaxCheckinsPerDay > 1 {
		log.WithField("configured", config.settings.MaxCheckinsPerDay).
			Warn("MAX_CHECKIN_PER_DAY above 1 is not supported by the per-day unique constraint, clamping to 1")
		config.settings.MaxCheckinsPerDay = 1
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.settings.CheckinMin < 0 || c.settings.CheckinMax < c.settings.CheckinMin {
		return fmt.Errorf("invalid check-in reward range [%d, %d]", c.settings.CheckinMin, c.settings.CheckinMax)
	}
	if c.CleanupHour < 0 || c.CleanupHour > 23 || c.CleanupMinute < 0 || c.CleanupMinute > 59 {
		return fmt.Errorf("invalid cleanup time %02d:%02d", c.CleanupHour, c.CleanupMinute)
	}

	if c.Environment != "test" {
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
		if c.CheckinGroupID == 0 {
			return fmt.Errorf("CHECKIN_GROUP_ID is required")
		}
		if c.SearchGroupID == 0 {
			return fmt.Errorf("SEARCH_GROUP_ID is required")
		}
	}

	return nil
}

// Settings returns a snapshot of the tunable settings.
func (c *Config) Settings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// IsAdmin reports whether the given user may use administrative operations.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// UpdateSetting changes one tunable setting. Only administrators may
// call it; unknown keys and out-of-range values are rejected.
func (c *Config) UpdateSetting(adminID int64, key string, value int64) error {
	if !c.IsAdmin(adminID) {
		return fmt.Errorf("user %d is not an administrator", adminID)
	}
	if value < 0 {
		return fmt.Errorf("setting %q must not be negative", key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch key {
	case "checkin_min":
		if value > c.settings.CheckinMax {
			return fmt.Errorf("checkin_min %d exceeds checkin_max %d", value, c.settings.CheckinMax)
		}
		c.settings.CheckinMin = value
	case "checkin_max":
		if value < c.settings.CheckinMin {
			return fmt.Errorf("checkin_max %d below checkin_min %d", value, c.settings.CheckinMin)
		}
		c.settings.CheckinMax = value
	case "message_points":
		c.settings.MessagePoints = value
	case "search_cost":
		c.settings.SearchCost = value
	case "max_daily_points":
		c.settings.MaxDailyMessagePoints = value
	case "expire_days":
		c.settings.RetentionDays = int(value)
	case "cooldown_hours":
		c.settings.CooldownHours = int(value)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}

	log.WithFields(log.Fields{
		"adminID": adminID,
		"key":     key,
		"value":   value,
	}).Info("Runtime setting updated")

	return nil
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}
