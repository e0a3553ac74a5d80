package service

import (
	"context"
	"time"

	"pointsbot/events"
	"pointsbot/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Upsert creates the user or refreshes their name fields, locking
	// the row when called inside a transaction. The bool reports
	// whether this call inserted the row.
	Upsert(ctx context.Context, userID int64, username, firstName, lastName string) (*models.User, bool, error)

	// EnsureExists creates the user with empty name fields if needed
	EnsureExists(ctx context.Context, userID int64) (*models.User, error)

	// GetByID retrieves a user, nil if never seen
	GetByID(ctx context.Context, userID int64) (*models.User, error)

	// GetForUpdate retrieves a user and locks their row, nil if never seen
	GetForUpdate(ctx context.Context, userID int64) (*models.User, error)

	// AddPoints credits the balance atomically and returns the new total
	AddPoints(ctx context.Context, userID int64, amount int64) (int64, error)

	// DeductPoints debits the balance atomically, failing with
	// ErrInsufficientBalance if it would go below zero
	DeductPoints(ctx context.Context, userID int64, amount int64) (int64, error)

	// Rank returns the user's 1-based position and the total user
	// count, ranking a user never seen with a zero balance
	Rank(ctx context.Context, userID int64) (int64, int64, error)

	// TopUsers returns the highest-balance users in descending order
	TopUsers(ctx context.Context, limit int) ([]*models.User, error)
}

// CheckinRepository defines the interface for check-in data access
type CheckinRepository interface {
	// GetByUserAndDate retrieves the day's check-in, nil if none
	GetByUserAndDate(ctx context.Context, userID int64, date time.Time) (*models.CheckinRecord, error)

	// Create inserts a check-in record, returning ErrAlreadyCheckedIn
	// on the per-day uniqueness violation
	Create(ctx context.Context, record *models.CheckinRecord) error
}

// MessageRecordRepository defines the interface for message engagement data access
type MessageRecordRepository interface {
	// GetDailyPoints returns points credited for (user, group, date)
	GetDailyPoints(ctx context.Context, userID, groupID int64, date time.Time) (int64, error)

	// GetForUpdate retrieves and locks the day's record, nil if none
	GetForUpdate(ctx context.Context, userID, groupID int64, date time.Time) (*models.MessageRecord, error)

	// Upsert atomically adds credited points and bumps the message count
	Upsert(ctx context.Context, userID, groupID int64, date time.Time, creditedPoints int64) (*models.MessageRecord, error)
}

// PointsTransactionRepository defines the interface for the append-only ledger log
type PointsTransactionRepository interface {
	// Record appends one ledger entry
	Record(ctx context.Context, txn *models.PointsTransaction) error

	// GetByUser returns a user's most recent entries
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.PointsTransaction, error)

	// SumPositiveOlderThan sums a user's positive entries before the
	// cutoff, feeding the expiration sweep's per-user deduction
	SumPositiveOlderThan(ctx context.Context, userID int64, cutoff time.Time) (int64, error)

	// UsersWithAgedCredit lists users with any positive entry before the cutoff
	UsersWithAgedCredit(ctx context.Context, cutoff time.Time) ([]int64, error)
}

// CooldownRepository defines the interface for gated-group cooldown state
type CooldownRepository interface {
	// Touch upserts the user's last gated message time
	Touch(ctx context.Context, userID int64, at time.Time) error

	// GetByUser returns the user's cooldown state, nil if none
	GetByUser(ctx context.Context, userID int64) (*models.SearchCooldown, error)
}

// LedgerService defines the interface for balance operations
type LedgerService interface {
	// GetOrCreateUser retrieves a user, creating them on first sight
	// and refreshing name fields on every call
	GetOrCreateUser(ctx context.Context, userID int64, username, firstName, lastName string) (*models.User, error)

	// AdjustBalance applies a signed balance change with its ledger
	// entry in one transaction. Debits that would breach zero fail
	// with ErrInsufficientBalance and leave no trace.
	AdjustBalance(ctx context.Context, userID int64, change int64, txType models.TransactionType, description string) (int64, error)

	// GetBalance returns the user's balance, zero if never seen
	GetBalance(ctx context.Context, userID int64) (int64, error)

	// GetRank returns the user's leaderboard position and total user
	// count. A user never seen ranks with a zero balance.
	GetRank(ctx context.Context, userID int64) (int64, int64, error)

	// GetTopUsers returns the leaderboard
	GetTopUsers(ctx context.Context, limit int) ([]*models.User, error)

	// GetTransactionHistory returns a user's recent ledger entries
	GetTransactionHistory(ctx context.Context, userID int64, limit int) ([]*models.PointsTransaction, error)
}

// CheckinService defines the interface for daily check-in operations
type CheckinService interface {
	// CanCheckinToday reports whether the user has not yet checked in today
	CanCheckinToday(ctx context.Context, userID int64) (bool, error)

	// PerformCheckin credits a randomized reward once per day, failing
	// with ErrAlreadyCheckedIn on the second attempt
	PerformCheckin(ctx context.Context, userID int64, username, firstName, lastName string) (*models.CheckinResult, error)
}

// EngagementService defines the interface for per-group message credits
type EngagementService interface {
	// GetDailyPoints returns points already credited today for the user in a group
	GetDailyPoints(ctx context.Context, userID, groupID int64) (int64, error)

	// RecordMessage credits one observed message up to the daily cap
	// and returns the record after the update
	RecordMessage(ctx context.Context, userID, groupID int64, username, firstName, lastName string) (*models.MessageRecord, error)
}

// GateService defines the interface for the gated-group cooldown check
type GateService interface {
	// CanSendGatedMessage reports whether the cooldown allows posting.
	// Fails open: storage errors are logged and reported as allowed.
	CanSendGatedMessage(ctx context.Context, userID int64) bool

	// RecordGatedMessage stamps the user's last gated message time
	RecordGatedMessage(ctx context.Context, userID int64) error
}

// ExpirationService defines the interface for the retention sweep
type ExpirationService interface {
	// CleanupExpiredPoints debits stale earned credit for every
	// affected user and returns how many users were debited
	CleanupExpiredPoints(ctx context.Context) (int, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	CheckinRepository() CheckinRepository
	MessageRecordRepository() MessageRecordRepository
	PointsTransactionRepository() PointsTransactionRepository
	CooldownRepository() CooldownRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
