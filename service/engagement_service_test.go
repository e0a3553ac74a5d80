package service

import (
	"context"
	"testing"
	"time"

	"pointsbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func createTestEngagementService(t *testing.T) (*engagementService, *MockUnitOfWork, *MockUserRepository, *MockMessageRecordRepository, *MockPointsTransactionRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockMessageRepo := new(MockMessageRecordRepository)
	mockTxnRepo := new(MockPointsTransactionRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, mockMessageRepo, mockTxnRepo, nil)
	mockFactory.On("Create").Return(mockUoW)

	service := NewEngagementService(mockFactory, testConfig(t)).(*engagementService)
	return service, mockUoW, mockUserRepo, mockMessageRepo, mockTxnRepo
}

func TestEngagementService_RecordMessage_FirstMessage(t *testing.T) {
	ctx := context.Background()
	service, mockUoW, mockUserRepo, mockMessageRepo, mockTxnRepo := createTestEngagementService(t)

	fixedNow := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return fixedNow }
	today := dateOf(fixedNow)

	user := &models.User{UserID: 123456, Username: "testuser"}
	record := &models.MessageRecord{UserID: 123456, GroupID: 777, MessageDate: today, PointsEarned: 1, MessageCount: 1}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("Upsert", ctx, int64(123456), "testuser", "", "").Return(user, false, nil)
	mockMessageRepo.On("GetForUpdate", ctx, int64(123456), int64(777), today).Return(nil, nil)

	// Default per-message credit is 1
	mockMessageRepo.On("Upsert", ctx, int64(123456), int64(777), today, int64(1)).Return(record, nil)
	mockUserRepo.On("AddPoints", ctx, int64(123456), int64(1)).Return(int64(1), nil)

	mockTxnRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.PointsTransaction) bool {
		return txn.UserID == 123456 &&
			txn.PointsChange == 1 &&
			txn.TransactionType == models.TransactionTypeMessage
	})).Return(nil)

	got, err := service.RecordMessage(ctx, 123456, 777, "testuser", "", "")

	assert.NoError(t, err)
	assert.Equal(t, record, got)

	mockUoW.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockMessageRepo.AssertExpectations(t)
	mockTxnRepo.AssertExpectations(t)
}

func TestEngagementService_RecordMessage_PartialCreditAtCap(t *testing.T) {
	ctx := context.Background()
	t.Setenv("MESSAGE_POINTS", "3")
	t.Setenv("MAX_MESSAGE_POINTS_PER_DAY", "10")
	service, mockUoW, mockUserRepo, mockMessageRepo, mockTxnRepo := createTestEngagementService(t)

	fixedNow := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return fixedNow }
	today := dateOf(fixedNow)

	user := &models.User{UserID: 123456}
	existing := &models.MessageRecord{UserID: 123456, GroupID: 777, MessageDate: today, PointsEarned: 9, MessageCount: 3}
	updated := &models.MessageRecord{UserID: 123456, GroupID: 777, MessageDate: today, PointsEarned: 10, MessageCount: 4}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("Upsert", ctx, int64(123456), "testuser", "", "").Return(user, false, nil)
	mockMessageRepo.On("GetForUpdate", ctx, int64(123456), int64(777), today).Return(existing, nil)

	// 9 already credited, cap 10: only 1 of the 3 per-message points lands
	mockMessageRepo.On("Upsert", ctx, int64(123456), int64(777), today, int64(1)).Return(updated, nil)
	mockUserRepo.On("AddPoints", ctx, int64(123456), int64(1)).Return(int64(10), nil)
	mockTxnRepo.On("Record", ctx, mock.Anything).Return(nil)

	got, err := service.RecordMessage(ctx, 123456, 777, "testuser", "", "")

	assert.NoError(t, err)
	assert.Equal(t, int64(10), got.PointsEarned)

	mockMessageRepo.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
}

func TestEngagementService_RecordMessage_CapReached(t *testing.T) {
	ctx := context.Background()
	service, mockUoW, mockUserRepo, mockMessageRepo, mockTxnRepo := createTestEngagementService(t)

	fixedNow := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return fixedNow }
	today := dateOf(fixedNow)

	user := &models.User{UserID: 123456}
	existing := &models.MessageRecord{UserID: 123456, GroupID: 777, MessageDate: today, PointsEarned: 10, MessageCount: 10}
	updated := &models.MessageRecord{UserID: 123456, GroupID: 777, MessageDate: today, PointsEarned: 10, MessageCount: 11}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("Upsert", ctx, int64(123456), "testuser", "", "").Return(user, false, nil)
	mockMessageRepo.On("GetForUpdate", ctx, int64(123456), int64(777), today).Return(existing, nil)

	// The count still advances past the cap, with zero credit
	mockMessageRepo.On("Upsert", ctx, int64(123456), int64(777), today, int64(0)).Return(updated, nil)

	got, err := service.RecordMessage(ctx, 123456, 777, "testuser", "", "")

	assert.NoError(t, err)
	assert.Equal(t, int64(10), got.PointsEarned)
	assert.Equal(t, int64(11), got.MessageCount)
	assert.Empty(t, mockUoW.PublishedEvents())

	mockUserRepo.AssertNotCalled(t, "AddPoints")
	mockTxnRepo.AssertNotCalled(t, "Record")
	mockUoW.AssertExpectations(t)
}

func TestEngagementService_GetDailyPoints(t *testing.T) {
	ctx := context.Background()
	service, mockUoW, _, mockMessageRepo, _ := createTestEngagementService(t)

	fixedNow := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return fixedNow }
	today := dateOf(fixedNow)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockMessageRepo.On("GetDailyPoints", ctx, int64(123456), int64(777), today).Return(int64(4), nil)

	points, err := service.GetDailyPoints(ctx, 123456, 777)

	assert.NoError(t, err)
	assert.Equal(t, int64(4), points)
}
