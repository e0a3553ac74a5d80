package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pointsbot/models"

	"github.com/stretchr/testify/assert"
)

func createTestGateService(t *testing.T) (*gateService, *MockUnitOfWork, *MockUserRepository, *MockCooldownRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockCooldownRepo := new(MockCooldownRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, mockCooldownRepo)
	mockFactory.On("Create").Return(mockUoW)

	service := NewGateService(mockFactory, testConfig(t)).(*gateService)
	return service, mockUoW, mockUserRepo, mockCooldownRepo
}

func TestGateService_CanSendGatedMessage_Cooldown(t *testing.T) {
	ctx := context.Background()
	service, mockUoW, _, mockCooldownRepo := createTestGateService(t)

	fixedNow := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return fixedNow }

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	t.Run("first message is allowed", func(t *testing.T) {
		mockCooldownRepo.On("GetByUser", ctx, int64(111)).Return(nil, nil).Once()

		assert.True(t, service.CanSendGatedMessage(ctx, 111))
	})

	t.Run("immediate second attempt is rejected", func(t *testing.T) {
		state := &models.SearchCooldown{UserID: 222, LastMessageTime: fixedNow.Add(-1 * time.Minute)}
		mockCooldownRepo.On("GetByUser", ctx, int64(222)).Return(state, nil).Once()

		assert.False(t, service.CanSendGatedMessage(ctx, 222))
	})

	t.Run("allowed again after the cooldown elapses", func(t *testing.T) {
		// Default cooldown is 1 hour
		state := &models.SearchCooldown{UserID: 333, LastMessageTime: fixedNow.Add(-61 * time.Minute)}
		mockCooldownRepo.On("GetByUser", ctx, int64(333)).Return(state, nil).Once()

		assert.True(t, service.CanSendGatedMessage(ctx, 333))
	})
}

func TestGateService_CanSendGatedMessage_FailsOpen(t *testing.T) {
	ctx := context.Background()
	service, mockUoW, _, mockCooldownRepo := createTestGateService(t)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockCooldownRepo.On("GetByUser", ctx, int64(123456)).
		Return(nil, errors.New("connection reset"))

	assert.True(t, service.CanSendGatedMessage(ctx, 123456),
		"a storage failure must not block the user")
}

func TestGateService_RecordGatedMessage(t *testing.T) {
	ctx := context.Background()
	service, mockUoW, mockUserRepo, mockCooldownRepo := createTestGateService(t)

	fixedNow := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return fixedNow }

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("EnsureExists", ctx, int64(123456)).Return(&models.User{UserID: 123456}, nil)
	mockCooldownRepo.On("Touch", ctx, int64(123456), fixedNow).Return(nil)

	err := service.RecordGatedMessage(ctx, 123456)

	assert.NoError(t, err)

	mockUoW.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockCooldownRepo.AssertExpectations(t)
}
