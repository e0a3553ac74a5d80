package service

import (
	"context"
	"fmt"
	"time"

	"pointsbot/config"

	log "github.com/sirupsen/logrus"
)

// gateService implements the GateService interface
type gateService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
	now        func() time.Time
}

// NewGateService creates a new gated-group cooldown service
func NewGateService(uowFactory UnitOfWorkFactory, cfg *config.Config) GateService {
	return &gateService{
		uowFactory: uowFactory,
		config:     cfg,
		now:        time.Now,
	}
}

// CanSendGatedMessage reports whether the cooldown allows the user to
// post. The gate fails open: a storage error is logged and the post is
// allowed, trading strict enforcement for availability.
func (s *gateService) CanSendGatedMessage(ctx context.Context, userID int64) bool {
	allowed, err := s.checkCooldown(ctx, userID)
	if err != nil {
		log.WithFields(log.Fields{
			"userID": userID,
			"error":  err,
		}).Warn("Cooldown check failed, allowing message")
		return true
	}
	return allowed
}

func (s *gateService) checkCooldown(ctx context.Context, userID int64) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	state, err := uow.CooldownRepository().GetByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if state == nil {
		return true, nil
	}

	cooldown := time.Duration(s.config.Settings().CooldownHours) * time.Hour
	return s.now().Sub(state.LastMessageTime) >= cooldown, nil
}

// RecordGatedMessage stamps the user's last gated message time,
// creating the user row on first sight.
func (s *gateService) RecordGatedMessage(ctx context.Context, userID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := uow.UserRepository().EnsureExists(ctx, userID); err != nil {
		return fmt.Errorf("failed to ensure user exists: %w", err)
	}

	if err := uow.CooldownRepository().Touch(ctx, userID, s.now()); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
