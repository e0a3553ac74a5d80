package testutil

import (
	"time"

	"pointsbot/models"
)

// CreateTestUser creates a test user with default values
func CreateTestUser(userID int64, username string) *models.User {
	now := time.Now()
	return &models.User{
		UserID:    userID,
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestCheckin creates a test check-in record for today
func CreateTestCheckin(userID int64, pointsEarned int64) *models.CheckinRecord {
	now := time.Now()
	return &models.CheckinRecord{
		UserID:       userID,
		CheckinDate:  time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		PointsEarned: pointsEarned,
	}
}

// CreateTestTransaction creates a test ledger entry
func CreateTestTransaction(userID int64, change int64, txType models.TransactionType) *models.PointsTransaction {
	return &models.PointsTransaction{
		UserID:          userID,
		PointsChange:    change,
		TransactionType: txType,
		Description:     "test transaction",
	}
}
