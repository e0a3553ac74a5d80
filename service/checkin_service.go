package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"pointsbot/config"
	"pointsbot/events"
	"pointsbot/models"
)

// checkinService implements the CheckinService interface
type checkinService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
	now        func() time.Time
}

// NewCheckinService creates a new check-in service
func NewCheckinService(uowFactory UnitOfWorkFactory, cfg *config.Config) CheckinService {
	return &checkinService{
		uowFactory: uowFactory,
		config:     cfg,
		now:        time.Now,
	}
}

// CanCheckinToday reports whether the user has not yet checked in today
func (s *checkinService) CanCheckinToday(ctx context.Context, userID int64) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	record, err := uow.CheckinRepository().GetByUserAndDate(ctx, userID, dateOf(s.now()))
	if err != nil {
		return false, err
	}

	return record == nil, nil
}

// PerformCheckin credits a uniformly random reward in the configured
// range, at most once per user per calendar day. The per-day unique
// constraint on check-in records is the only concurrency guard: of two
// concurrent attempts exactly one inserts, the other gets
// ErrAlreadyCheckedIn and its transaction writes nothing.
func (s *checkinService) PerformCheckin(ctx context.Context, userID int64, username, firstName, lastName string) (*models.CheckinResult, error) {
	settings := s.config.Settings()
	reward := rollReward(settings.CheckinMin, settings.CheckinMax)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, _, err := uow.UserRepository().Upsert(ctx, userID, username, firstName, lastName); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	record := &models.CheckinRecord{
		UserID:       userID,
		CheckinDate:  dateOf(s.now()),
		PointsEarned: reward,
	}
	if err := uow.CheckinRepository().Create(ctx, record); err != nil {
		return nil, err
	}

	newTotal, err := uow.UserRepository().AddPoints(ctx, userID, reward)
	if err != nil {
		return nil, err
	}

	txn := &models.PointsTransaction{
		UserID:          userID,
		PointsChange:    reward,
		TransactionType: models.TransactionTypeCheckin,
		Description:     "daily check-in reward",
	}
	if err := uow.PointsTransactionRepository().Record(ctx, txn); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.CheckinEvent{
		UserID:       userID,
		PointsEarned: reward,
	})
	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          userID,
		OldBalance:      newTotal - reward,
		NewBalance:      newTotal,
		ChangeAmount:    reward,
		TransactionType: models.TransactionTypeCheckin,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.CheckinResult{
		PointsEarned: reward,
		TotalPoints:  newTotal,
	}, nil
}

// rollReward picks a uniformly random reward in [min, max]
func rollReward(min, max int64) int64 {
	if max <= min {
		return min
	}
	return min + rand.Int63n(max-min+1)
}
