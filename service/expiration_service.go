package service

import (
	"context"
	"fmt"
	"time"

	"pointsbot/config"
	"pointsbot/events"
	"pointsbot/models"

	log "github.com/sirupsen/logrus"
)

// expirationService implements the ExpirationService interface
type expirationService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
	now        func() time.Time
}

// NewExpirationService creates a new expiration service
func NewExpirationService(uowFactory UnitOfWorkFactory, cfg *config.Config) ExpirationService {
	return &expirationService{
		uowFactory: uowFactory,
		config:     cfg,
		now:        time.Now,
	}
}

// CleanupExpiredPoints debits stale earned credit. For every user the
// aged credit is the sum of their positive ledger entries older than
// the retention cutoff, clamped to their current balance; which
// specific earned amounts remain unspent is deliberately not tracked.
// Each user is handled in their own transaction, with the aged sum
// recomputed under the user's row lock, so a failure mid-sweep keeps
// the progress made so far.
func (s *expirationService) CleanupExpiredPoints(ctx context.Context) (int, error) {
	retentionDays := s.config.Settings().RetentionDays
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays)

	userIDs, err := s.agedCreditUsers(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	cleaned := 0
	for _, userID := range userIDs {
		debited, err := s.expireForUser(ctx, userID, cutoff)
		if err != nil {
			log.WithFields(log.Fields{
				"userID": userID,
				"error":  err,
			}).Error("Failed to expire points for user")
			continue
		}
		if debited {
			cleaned++
		}
	}

	log.WithFields(log.Fields{
		"usersAffected": cleaned,
		"retentionDays": retentionDays,
	}).Info("Expiration sweep completed")

	return cleaned, nil
}

func (s *expirationService) agedCreditUsers(ctx context.Context, cutoff time.Time) ([]int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.PointsTransactionRepository().UsersWithAgedCredit(ctx, cutoff)
}

func (s *expirationService) expireForUser(ctx context.Context, userID int64, cutoff time.Time) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetForUpdate(ctx, userID)
	if err != nil {
		return false, err
	}
	if user == nil || user.TotalPoints <= 0 {
		return false, nil
	}

	// The aged sum is read under the user's row lock, so ledger writes
	// that landed since the candidate enumeration are accounted for
	aged, err := uow.PointsTransactionRepository().SumPositiveOlderThan(ctx, userID, cutoff)
	if err != nil {
		return false, err
	}

	// Clamp to the current balance so the debit never breaches zero
	deduction := aged
	if user.TotalPoints < deduction {
		deduction = user.TotalPoints
	}
	if deduction <= 0 {
		return false, nil
	}

	newTotal, err := uow.UserRepository().DeductPoints(ctx, userID, deduction)
	if err != nil {
		return false, err
	}

	retentionDays := s.config.Settings().RetentionDays
	txn := &models.PointsTransaction{
		UserID:          userID,
		PointsChange:    -deduction,
		TransactionType: models.TransactionTypeExpire,
		Description:     fmt.Sprintf("expired credit older than %d days", retentionDays),
	}
	if err := uow.PointsTransactionRepository().Record(ctx, txn); err != nil {
		return false, err
	}

	uow.EventBus().Publish(events.PointsExpiredEvent{
		UserID:        userID,
		PointsExpired: deduction,
	})
	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          userID,
		OldBalance:      user.TotalPoints,
		NewBalance:      newTotal,
		ChangeAmount:    -deduction,
		TransactionType: models.TransactionTypeExpire,
	})

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}
