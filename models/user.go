package models

import (
	"time"
)

// User represents a chat user with a point balance.
// The user ID is assigned by the chat platform and never generated here.
type User struct {
	UserID      int64     `db:"user_id"`
	Username    string    `db:"username"`
	FirstName   string    `db:"first_name"`
	LastName    string    `db:"last_name"`
	TotalPoints int64     `db:"total_points"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// DisplayName returns the best available name for the user.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return ""
}
