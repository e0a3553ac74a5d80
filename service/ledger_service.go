package service

import (
	"context"
	"fmt"

	"pointsbot/events"
	"pointsbot/models"
)

// ledgerService implements the LedgerService interface
type ledgerService struct {
	uowFactory UnitOfWorkFactory
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory UnitOfWorkFactory) LedgerService {
	return &ledgerService{uowFactory: uowFactory}
}

// GetOrCreateUser retrieves a user, creating them on first sight. Name
// fields are refreshed on every call, last write wins. Only the call
// that actually inserts the row publishes UserCreatedEvent, so the
// event fires exactly once per user even under concurrent first sight.
func (s *ledgerService) GetOrCreateUser(ctx context.Context, userID int64, username, firstName, lastName string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, created, err := uow.UserRepository().Upsert(ctx, userID, username, firstName, lastName)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	if created {
		uow.EventBus().Publish(events.UserCreatedEvent{
			UserID:   user.UserID,
			Username: user.Username,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// AdjustBalance applies a signed balance change together with its
// ledger entry in one transaction. A positive change implicitly creates
// the user; a debit that would take the balance below zero fails with
// ErrInsufficientBalance and writes nothing.
func (s *ledgerService) AdjustBalance(ctx context.Context, userID int64, change int64, txType models.TransactionType, description string) (int64, error) {
	if change == 0 {
		return 0, fmt.Errorf("balance change must be non-zero")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// The upsert locks the user row, serializing concurrent ledger
	// operations for the same user.
	var user *models.User
	var err error
	if change > 0 {
		user, err = uow.UserRepository().EnsureExists(ctx, userID)
		if err != nil {
			return 0, fmt.Errorf("failed to ensure user exists: %w", err)
		}
	} else {
		user, err = uow.UserRepository().GetForUpdate(ctx, userID)
		if err != nil {
			return 0, fmt.Errorf("failed to get user: %w", err)
		}
		if user == nil {
			return 0, fmt.Errorf("user %d has no balance: %w", userID, ErrInsufficientBalance)
		}
	}

	var newTotal int64
	if change > 0 {
		newTotal, err = uow.UserRepository().AddPoints(ctx, userID, change)
	} else {
		newTotal, err = uow.UserRepository().DeductPoints(ctx, userID, -change)
	}
	if err != nil {
		return 0, err
	}

	txn := &models.PointsTransaction{
		UserID:          userID,
		PointsChange:    change,
		TransactionType: txType,
		Description:     description,
	}
	if err := uow.PointsTransactionRepository().Record(ctx, txn); err != nil {
		return 0, err
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          userID,
		OldBalance:      user.TotalPoints,
		NewBalance:      newTotal,
		ChangeAmount:    change,
		TransactionType: txType,
	})

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return newTotal, nil
}

// GetBalance returns the user's balance, zero for a user never seen
func (s *ledgerService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return 0, nil
	}

	return user.TotalPoints, nil
}

// GetRank returns the user's 1-based leaderboard position and the
// total number of known users. A user never seen ranks with a zero
// balance, the same way GetBalance reads them.
func (s *ledgerService) GetRank(ctx context.Context, userID int64) (int64, int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	rank, total, err := uow.UserRepository().Rank(ctx, userID)
	if err != nil {
		return 0, 0, err
	}

	return rank, total, nil
}

// GetTopUsers returns the leaderboard
func (s *ledgerService) GetTopUsers(ctx context.Context, limit int) ([]*models.User, error) {
	if limit <= 0 {
		limit = 10
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	users, err := uow.UserRepository().TopUsers(ctx, limit)
	if err != nil {
		return nil, err
	}

	return users, nil
}

// GetTransactionHistory returns a user's most recent ledger entries
func (s *ledgerService) GetTransactionHistory(ctx context.Context, userID int64, limit int) ([]*models.PointsTransaction, error) {
	if limit <= 0 {
		limit = 20
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	txns, err := uow.PointsTransactionRepository().GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	return txns, nil
}
