package repository

import (
	"context"
	"fmt"

	"pointsbot/database"
	"pointsbot/models"
	"pointsbot/service"

	"github.com/jackc/pgx/v5"
)

// UserRepository implements the service.UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// Upsert creates the user row if it does not exist and refreshes the
// display name fields if it does (last write wins). Inside a
// transaction the returned row is locked, which serializes all
// mutating operations for the same user. The second return value
// reports whether this call inserted the row: xmax is zero only on a
// fresh insert, so of two concurrent first-sight calls exactly one
// sees true.
func (r *UserRepository) Upsert(ctx context.Context, userID int64, username, firstName, lastName string) (*models.User, bool, error) {
	query := `
		INSERT INTO users (user_id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    updated_at = NOW()
		RETURNING user_id, username, first_name, last_name, total_points, created_at, updated_at,
		          (xmax = 0) AS created
	`

	var user models.User
	var created bool
	err := r.q.QueryRow(ctx, query, userID, username, firstName, lastName).Scan(
		&user.UserID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.TotalPoints,
		&user.CreatedAt,
		&user.UpdatedAt,
		&created,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert user %d: %w", userID, err)
	}

	return &user, created, nil
}

// EnsureExists creates the user row with empty name fields if it does
// not exist, leaving existing name fields untouched. Used by operations
// that only know the user ID, such as administrative adjustments.
func (r *UserRepository) EnsureExists(ctx context.Context, userID int64) (*models.User, error) {
	query := `
		INSERT INTO users (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE
		SET updated_at = NOW()
		RETURNING user_id, username, first_name, last_name, total_points, created_at, updated_at
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&user.UserID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.TotalPoints,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure user %d exists: %w", userID, err)
	}

	return &user, nil
}

// GetByID retrieves a user by their chat platform ID
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	query := `
		SELECT user_id, username, first_name, last_name, total_points, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&user.UserID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.TotalPoints,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	return &user, nil
}

// GetForUpdate retrieves a user and locks their row for the duration of
// the current transaction. Returns nil if the user does not exist.
func (r *UserRepository) GetForUpdate(ctx context.Context, userID int64) (*models.User, error) {
	query := `
		SELECT user_id, username, first_name, last_name, total_points, created_at, updated_at
		FROM users
		WHERE user_id = $1
		FOR UPDATE
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&user.UserID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.TotalPoints,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock user %d: %w", userID, err)
	}

	return &user, nil
}

// AddPoints credits a user's balance atomically and returns the new total
func (r *UserRepository) AddPoints(ctx context.Context, userID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET total_points = total_points + $1, updated_at = NOW()
		WHERE user_id = $2
		RETURNING total_points
	`

	var newTotal int64
	err := r.q.QueryRow(ctx, query, amount, userID).Scan(&newTotal)
	if err == pgx.ErrNoRows {
		return 0, fmt.Errorf("user %d: %w", userID, service.ErrUserNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to add points for user %d: %w", userID, err)
	}

	return newTotal, nil
}

// DeductPoints debits a user's balance atomically, failing without any
// mutation when the balance would go below zero. A user that was never
// seen has nothing to deduct and is reported the same way.
func (r *UserRepository) DeductPoints(ctx context.Context, userID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET total_points = total_points - $1, updated_at = NOW()
		WHERE user_id = $2 AND total_points >= $1
		RETURNING total_points
	`

	var newTotal int64
	err := r.q.QueryRow(ctx, query, amount, userID).Scan(&newTotal)
	if err == pgx.ErrNoRows {
		user, getErr := r.GetByID(ctx, userID)
		if getErr != nil {
			return 0, fmt.Errorf("failed to check user %d: %w", userID, getErr)
		}
		if user == nil {
			return 0, fmt.Errorf("user %d has no balance: %w", userID, service.ErrInsufficientBalance)
		}
		return 0, fmt.Errorf("user %d has %d points, need %d: %w", userID, user.TotalPoints, amount, service.ErrInsufficientBalance)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to deduct points for user %d: %w", userID, err)
	}

	return newTotal, nil
}

// Rank returns the user's 1-based leaderboard position and the total
// number of known users. Users with equal balances share a rank; a user
// never seen ranks with a zero balance.
func (r *UserRepository) Rank(ctx context.Context, userID int64) (int64, int64, error) {
	query := `
		SELECT
			(SELECT COUNT(*) + 1 FROM users
			 WHERE total_points > COALESCE((SELECT total_points FROM users WHERE user_id = $1), 0)),
			(SELECT COUNT(*) FROM users)
	`

	var rank, total int64
	err := r.q.QueryRow(ctx, query, userID).Scan(&rank, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get rank for user %d: %w", userID, err)
	}

	return rank, total, nil
}

// TopUsers returns the highest-balance users in descending order
func (r *UserRepository) TopUsers(ctx context.Context, limit int) ([]*models.User, error) {
	query := `
		SELECT user_id, username, first_name, last_name, total_points, created_at, updated_at
		FROM users
		ORDER BY total_points DESC, user_id ASC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.UserID,
			&user.Username,
			&user.FirstName,
			&user.LastName,
			&user.TotalPoints,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}
