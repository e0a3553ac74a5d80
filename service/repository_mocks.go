package service

import (
	"context"
	"time"

	"pointsbot/events"
	"pointsbot/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Upsert(ctx context.Context, userID int64, username, firstName, lastName string) (*models.User, bool, error) {
	args := m.Called(ctx, userID, username, firstName, lastName)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.User), args.Bool(1), args.Error(2)
}

func (m *MockUserRepository) EnsureExists(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetForUpdate(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) AddPoints(ctx context.Context, userID int64, amount int64) (int64, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) DeductPoints(ctx context.Context, userID int64, amount int64) (int64, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Rank(ctx context.Context, userID int64) (int64, int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) TopUsers(ctx context.Context, limit int) ([]*models.User, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

// MockCheckinRepository is a mock implementation of CheckinRepository
type MockCheckinRepository struct {
	mock.Mock
}

func (m *MockCheckinRepository) GetByUserAndDate(ctx context.Context, userID int64, date time.Time) (*models.CheckinRecord, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CheckinRecord), args.Error(1)
}

func (m *MockCheckinRepository) Create(ctx context.Context, record *models.CheckinRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockMessageRecordRepository is a mock implementation of MessageRecordRepository
type MockMessageRecordRepository struct {
	mock.Mock
}

func (m *MockMessageRecordRepository) GetDailyPoints(ctx context.Context, userID, groupID int64, date time.Time) (int64, error) {
	args := m.Called(ctx, userID, groupID, date)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageRecordRepository) GetForUpdate(ctx context.Context, userID, groupID int64, date time.Time) (*models.MessageRecord, error) {
	args := m.Called(ctx, userID, groupID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MessageRecord), args.Error(1)
}

func (m *MockMessageRecordRepository) Upsert(ctx context.Context, userID, groupID int64, date time.Time, creditedPoints int64) (*models.MessageRecord, error) {
	args := m.Called(ctx, userID, groupID, date, creditedPoints)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MessageRecord), args.Error(1)
}

// MockPointsTransactionRepository is a mock implementation of PointsTransactionRepository
type MockPointsTransactionRepository struct {
	mock.Mock
}

func (m *MockPointsTransactionRepository) Record(ctx context.Context, txn *models.PointsTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockPointsTransactionRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.PointsTransaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PointsTransaction), args.Error(1)
}

func (m *MockPointsTransactionRepository) SumPositiveOlderThan(ctx context.Context, userID int64, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, userID, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPointsTransactionRepository) UsersWithAgedCredit(ctx context.Context, cutoff time.Time) ([]int64, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockCooldownRepository is a mock implementation of CooldownRepository
type MockCooldownRepository struct {
	mock.Mock
}

func (m *MockCooldownRepository) Touch(ctx context.Context, userID int64, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

func (m *MockCooldownRepository) GetByUser(ctx context.Context, userID int64) (*models.SearchCooldown, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SearchCooldown), args.Error(1)
}

// RecordingEventPublisher captures published events for assertions
type RecordingEventPublisher struct {
	Events []events.Event
}

func (p *RecordingEventPublisher) Publish(event events.Event) {
	p.Events = append(p.Events, event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork backed by the
// repository mocks set on it
type MockUnitOfWork struct {
	mock.Mock
	userRepo     UserRepository
	checkinRepo  CheckinRepository
	messageRepo  MessageRecordRepository
	txnRepo      PointsTransactionRepository
	cooldownRepo CooldownRepository
	eventBus     *RecordingEventPublisher
}

// SetRepositories wires the repository mocks the unit of work hands out
func (m *MockUnitOfWork) SetRepositories(
	userRepo UserRepository,
	checkinRepo CheckinRepository,
	messageRepo MessageRecordRepository,
	txnRepo PointsTransactionRepository,
	cooldownRepo CooldownRepository,
) {
	m.userRepo = userRepo
	m.checkinRepo = checkinRepo
	m.messageRepo = messageRepo
	m.txnRepo = txnRepo
	m.cooldownRepo = cooldownRepo
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) CheckinRepository() CheckinRepository {
	return m.checkinRepo
}

func (m *MockUnitOfWork) MessageRecordRepository() MessageRecordRepository {
	return m.messageRepo
}

func (m *MockUnitOfWork) PointsTransactionRepository() PointsTransactionRepository {
	return m.txnRepo
}

func (m *MockUnitOfWork) CooldownRepository() CooldownRepository {
	return m.cooldownRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		m.eventBus = &RecordingEventPublisher{}
	}
	return m.eventBus
}

// PublishedEvents returns the events published through this unit of work
func (m *MockUnitOfWork) PublishedEvents() []events.Event {
	if m.eventBus == nil {
		return nil
	}
	return m.eventBus.Events
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
