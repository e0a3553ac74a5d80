package service

import (
	"context"
	"fmt"
	"time"

	"pointsbot/config"
	"pointsbot/events"
	"pointsbot/models"
)

// engagementService implements the EngagementService interface
type engagementService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
	now        func() time.Time
}

// NewEngagementService creates a new engagement service
func NewEngagementService(uowFactory UnitOfWorkFactory, cfg *config.Config) EngagementService {
	return &engagementService{
		uowFactory: uowFactory,
		config:     cfg,
		now:        time.Now,
	}
}

// GetDailyPoints returns the points already credited today for the
// user's messages in one group
func (s *engagementService) GetDailyPoints(ctx context.Context, userID, groupID int64) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	points, err := uow.MessageRecordRepository().GetDailyPoints(ctx, userID, groupID, dateOf(s.now()))
	if err != nil {
		return 0, err
	}

	return points, nil
}

// RecordMessage credits one observed message. The per-message credit is
// reduced so that the (user, group, day) total never exceeds the daily
// cap; past the cap the message count still advances with zero credit.
func (s *engagementService) RecordMessage(ctx context.Context, userID, groupID int64, username, firstName, lastName string) (*models.MessageRecord, error) {
	settings := s.config.Settings()
	today := dateOf(s.now())

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// The user upsert locks the user row, so the credited-so-far read
	// below cannot race with another message from the same user.
	if _, _, err := uow.UserRepository().Upsert(ctx, userID, username, firstName, lastName); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	existing, err := uow.MessageRecordRepository().GetForUpdate(ctx, userID, groupID, today)
	if err != nil {
		return nil, err
	}

	var creditedSoFar int64
	if existing != nil {
		creditedSoFar = existing.PointsEarned
	}

	credit := settings.MessagePoints
	if remaining := settings.MaxDailyMessagePoints - creditedSoFar; credit > remaining {
		credit = remaining
	}
	if credit < 0 {
		credit = 0
	}

	record, err := uow.MessageRecordRepository().Upsert(ctx, userID, groupID, today, credit)
	if err != nil {
		return nil, err
	}

	if credit > 0 {
		newTotal, err := uow.UserRepository().AddPoints(ctx, userID, credit)
		if err != nil {
			return nil, err
		}

		txn := &models.PointsTransaction{
			UserID:          userID,
			PointsChange:    credit,
			TransactionType: models.TransactionTypeMessage,
			Description:     fmt.Sprintf("message reward in group %d", groupID),
		}
		if err := uow.PointsTransactionRepository().Record(ctx, txn); err != nil {
			return nil, err
		}

		uow.EventBus().Publish(events.BalanceChangeEvent{
			UserID:          userID,
			OldBalance:      newTotal - credit,
			NewBalance:      newTotal,
			ChangeAmount:    credit,
			TransactionType: models.TransactionTypeMessage,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return record, nil
}
