package models

import (
	"time"
)

// SearchCooldown holds the last time a user posted in the cost-gated
// group. One row per user, overwritten on every accepted message.
type SearchCooldown struct {
	UserID          int64     `db:"user_id"`
	LastMessageTime time.Time `db:"last_message_time"`
}
