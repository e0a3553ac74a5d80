package repository

import (
	"context"
	"fmt"
	"time"

	"pointsbot/database"
	"pointsbot/models"

	"github.com/jackc/pgx/v5"
)

// MessageRecordRepository implements the service.MessageRecordRepository interface
type MessageRecordRepository struct {
	q queryable
}

// NewMessageRecordRepository creates a new message record repository
func NewMessageRecordRepository(db *database.DB) *MessageRecordRepository {
	return &MessageRecordRepository{q: db.Pool}
}

// newMessageRecordRepositoryWithTx creates a new message record repository with a transaction
func newMessageRecordRepositoryWithTx(tx queryable) *MessageRecordRepository {
	return &MessageRecordRepository{q: tx}
}

// GetDailyPoints returns the points already credited to a user for
// messages in one group on one calendar date. Zero if no record exists.
func (r *MessageRecordRepository) GetDailyPoints(ctx context.Context, userID, groupID int64, date time.Time) (int64, error) {
	query := `
		SELECT COALESCE(SUM(points_earned), 0)
		FROM message_records
		WHERE user_id = $1 AND group_id = $2 AND message_date = $3
	`

	var points int64
	err := r.q.QueryRow(ctx, query, userID, groupID, date).Scan(&points)
	if err != nil {
		return 0, fmt.Errorf("failed to get daily points for user %d in group %d: %w", userID, groupID, err)
	}

	return points, nil
}

// GetForUpdate retrieves the day's record for a user in a group and
// locks it for the duration of the current transaction. Returns nil if
// no messages were recorded yet.
func (r *MessageRecordRepository) GetForUpdate(ctx context.Context, userID, groupID int64, date time.Time) (*models.MessageRecord, error) {
	query := `
		SELECT id, user_id, group_id, message_date, points_earned, message_count, created_at
		FROM message_records
		WHERE user_id = $1 AND group_id = $2 AND message_date = $3
		FOR UPDATE
	`

	var record models.MessageRecord
	err := r.q.QueryRow(ctx, query, userID, groupID, date).Scan(
		&record.ID,
		&record.UserID,
		&record.GroupID,
		&record.MessageDate,
		&record.PointsEarned,
		&record.MessageCount,
		&record.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock message record for user %d in group %d: %w", userID, groupID, err)
	}

	return &record, nil
}

// Upsert records one observed message atomically: it inserts the
// (user, group, date) row or, on conflict, adds the credited points and
// increments the message count on the existing row. The count advances
// even when the daily cap reduced the credit to zero.
func (r *MessageRecordRepository) Upsert(ctx context.Context, userID, groupID int64, date time.Time, creditedPoints int64) (*models.MessageRecord, error) {
	query := `
		INSERT INTO message_records (user_id, group_id, message_date, points_earned, message_count)
		VALUES ($1, $2, $3, $4, 1)
		ON CONFLICT (user_id, group_id, message_date) DO UPDATE
		SET points_earned = message_records.points_earned + EXCLUDED.points_earned,
		    message_count = message_records.message_count + 1
		RETURNING id, user_id, group_id, message_date, points_earned, message_count, created_at
	`

	var record models.MessageRecord
	err := r.q.QueryRow(ctx, query, userID, groupID, date, creditedPoints).Scan(
		&record.ID,
		&record.UserID,
		&record.GroupID,
		&record.MessageDate,
		&record.PointsEarned,
		&record.MessageCount,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert message record for user %d in group %d: %w", userID, groupID, err)
	}

	return &record, nil
}
