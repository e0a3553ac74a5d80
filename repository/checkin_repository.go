package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pointsbot/database"
	"pointsbot/models"
	"pointsbot/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// CheckinRepository implements the service.CheckinRepository interface
type CheckinRepository struct {
	q queryable
}

// NewCheckinRepository creates a new check-in repository
func NewCheckinRepository(db *database.DB) *CheckinRepository {
	return &CheckinRepository{q: db.Pool}
}

// newCheckinRepositoryWithTx creates a new check-in repository with a transaction
func newCheckinRepositoryWithTx(tx queryable) *CheckinRepository {
	return &CheckinRepository{q: tx}
}

// GetByUserAndDate retrieves a user's check-in for a calendar date.
// Returns nil if the user has not checked in on that date.
func (r *CheckinRepository) GetByUserAndDate(ctx context.Context, userID int64, date time.Time) (*models.CheckinRecord, error) {
	query := `
		SELECT id, user_id, checkin_date, points_earned, created_at
		FROM checkin_records
		WHERE user_id = $1 AND checkin_date = $2
	`

	var record models.CheckinRecord
	err := r.q.QueryRow(ctx, query, userID, date).Scan(
		&record.ID,
		&record.UserID,
		&record.CheckinDate,
		&record.PointsEarned,
		&record.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get check-in for user %d: %w", userID, err)
	}

	return &record, nil
}

// Create inserts a check-in record. The (user_id, checkin_date) unique
// constraint is the authoritative once-per-day guard: a constraint
// violation is reported as a duplicate check-in, not a storage failure.
func (r *CheckinRepository) Create(ctx context.Context, record *models.CheckinRecord) error {
	query := `
		INSERT INTO checkin_records (user_id, checkin_date, points_earned)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		record.UserID,
		record.CheckinDate,
		record.PointsEarned,
	).Scan(&record.ID, &record.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("user %d on %s: %w", record.UserID, record.CheckinDate.Format("2006-01-02"), service.ErrAlreadyCheckedIn)
		}
		return fmt.Errorf("failed to create check-in for user %d: %w", record.UserID, err)
	}

	return nil
}
