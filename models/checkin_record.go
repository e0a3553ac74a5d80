package models

import (
	"time"
)

// CheckinRecord represents one successful daily check-in.
// Rows are immutable; the (user_id, checkin_date) unique constraint
// guarantees at most one per user per calendar day.
type CheckinRecord struct {
	ID           int64     `db:"id"`
	UserID       int64     `db:"user_id"`
	CheckinDate  time.Time `db:"checkin_date"`
	PointsEarned int64     `db:"points_earned"`
	CreatedAt    time.Time `db:"created_at"`
}

// CheckinResult is returned to the caller after a successful check-in.
type CheckinResult struct {
	PointsEarned int64
	TotalPoints  int64
}
