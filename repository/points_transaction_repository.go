package repository

import (
	"context"
	"fmt"
	"time"

	"pointsbot/database"
	"pointsbot/models"
)

// PointsTransactionRepository implements the service.PointsTransactionRepository interface
type PointsTransactionRepository struct {
	q queryable
}

// NewPointsTransactionRepository creates a new points transaction repository
func NewPointsTransactionRepository(db *database.DB) *PointsTransactionRepository {
	return &PointsTransactionRepository{q: db.Pool}
}

// newPointsTransactionRepositoryWithTx creates a new points transaction repository with a transaction
func newPointsTransactionRepositoryWithTx(tx queryable) *PointsTransactionRepository {
	return &PointsTransactionRepository{q: tx}
}

// Record appends one ledger entry. Entries are never updated or deleted.
func (r *PointsTransactionRepository) Record(ctx context.Context, txn *models.PointsTransaction) error {
	query := `
		INSERT INTO points_transactions (user_id, points_change, transaction_type, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		txn.UserID,
		txn.PointsChange,
		txn.TransactionType,
		txn.Description,
	).Scan(&txn.ID, &txn.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record points transaction for user %d: %w", txn.UserID, err)
	}

	return nil
}

// GetByUser returns a user's most recent ledger entries
func (r *PointsTransactionRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.PointsTransaction, error) {
	query := `
		SELECT id, user_id, points_change, transaction_type, description, created_at
		FROM points_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions for user %d: %w", userID, err)
	}
	defer rows.Close()

	var txns []*models.PointsTransaction
	for rows.Next() {
		var txn models.PointsTransaction
		err := rows.Scan(
			&txn.ID,
			&txn.UserID,
			&txn.PointsChange,
			&txn.TransactionType,
			&txn.Description,
			&txn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan points transaction: %w", err)
		}
		txns = append(txns, &txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate points transactions: %w", err)
	}

	return txns, nil
}

// SumPositiveOlderThan returns the sum of a user's positive ledger
// entries created before the cutoff. Zero if there are none. The sum
// deliberately ignores later debits; the expiration sweep clamps the
// deduction to the user's current balance.
func (r *PointsTransactionRepository) SumPositiveOlderThan(ctx context.Context, userID int64, cutoff time.Time) (int64, error) {
	query := `
		SELECT COALESCE(SUM(points_change), 0)
		FROM points_transactions
		WHERE user_id = $1 AND points_change > 0 AND created_at < $2
	`

	var sum int64
	err := r.q.QueryRow(ctx, query, userID, cutoff).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum aged credits for user %d: %w", userID, err)
	}

	return sum, nil
}

// UsersWithAgedCredit returns the IDs of every user with at least one
// positive ledger entry older than the cutoff. The sweep recomputes
// each user's aged sum under their row lock, so this enumeration only
// has to be a candidate list.
func (r *PointsTransactionRepository) UsersWithAgedCredit(ctx context.Context, cutoff time.Time) ([]int64, error) {
	query := `
		SELECT DISTINCT user_id
		FROM points_transactions
		WHERE points_change > 0 AND created_at < $1
		ORDER BY user_id
	`

	rows, err := r.q.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to get users with aged credit: %w", err)
	}
	defer rows.Close()

	var userIDs []int64
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users with aged credit: %w", err)
	}

	return userIDs, nil
}
