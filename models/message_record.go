package models

import (
	"time"
)

// MessageRecord aggregates one user's daily engagement in one group.
// PointsEarned is monotonically non-decreasing and capped by the tracker;
// MessageCount keeps growing after the cap is reached.
type MessageRecord struct {
	ID           int64     `db:"id"`
	UserID       int64     `db:"user_id"`
	GroupID      int64     `db:"group_id"`
	MessageDate  time.Time `db:"message_date"`
	PointsEarned int64     `db:"points_earned"`
	MessageCount int64     `db:"message_count"`
	CreatedAt    time.Time `db:"created_at"`
}
