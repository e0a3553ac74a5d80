package repository

import (
	"context"
	"fmt"
	"time"

	"pointsbot/database"
	"pointsbot/models"

	"github.com/jackc/pgx/v5"
)

// CooldownRepository implements the service.CooldownRepository interface
type CooldownRepository struct {
	q queryable
}

// NewCooldownRepository creates a new cooldown repository
func NewCooldownRepository(db *database.DB) *CooldownRepository {
	return &CooldownRepository{q: db.Pool}
}

// newCooldownRepositoryWithTx creates a new cooldown repository with a transaction
func newCooldownRepositoryWithTx(tx queryable) *CooldownRepository {
	return &CooldownRepository{q: tx}
}

// Touch records the time of a user's latest gated-group message,
// creating the row on first message.
func (r *CooldownRepository) Touch(ctx context.Context, userID int64, at time.Time) error {
	query := `
		INSERT INTO search_cooldowns (user_id, last_message_time)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET last_message_time = EXCLUDED.last_message_time
	`

	if _, err := r.q.Exec(ctx, query, userID, at); err != nil {
		return fmt.Errorf("failed to touch cooldown for user %d: %w", userID, err)
	}

	return nil
}

// GetByUser returns the user's cooldown state, or nil if they never
// posted in the gated group.
func (r *CooldownRepository) GetByUser(ctx context.Context, userID int64) (*models.SearchCooldown, error) {
	query := `
		SELECT user_id, last_message_time
		FROM search_cooldowns
		WHERE user_id = $1
	`

	var cooldown models.SearchCooldown
	err := r.q.QueryRow(ctx, query, userID).Scan(&cooldown.UserID, &cooldown.LastMessageTime)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cooldown for user %d: %w", userID, err)
	}

	return &cooldown, nil
}
