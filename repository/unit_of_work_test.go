package repository

import (
	"context"
	"testing"
	"time"

	"pointsbot/events"
	"pointsbot/models"
	"pointsbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitAppliesAllWrites(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	bus := events.NewBus()
	factory := NewUnitOfWorkFactory(testDB.DB, bus)
	ctx := context.Background()

	received := make(chan events.Event, 1)
	bus.Subscribe(events.EventTypeCheckin, func(ctx context.Context, event events.Event) {
		received <- event
	})

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	_, _, err := uow.UserRepository().Upsert(ctx, 100, "alice", "", "")
	require.NoError(t, err)

	record := testutil.CreateTestCheckin(100, 7)
	require.NoError(t, uow.CheckinRepository().Create(ctx, record))

	newTotal, err := uow.UserRepository().AddPoints(ctx, 100, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), newTotal)

	require.NoError(t, uow.PointsTransactionRepository().Record(ctx,
		testutil.CreateTestTransaction(100, 7, models.TransactionTypeCheckin)))

	uow.EventBus().Publish(events.CheckinEvent{UserID: 100, PointsEarned: 7})

	require.NoError(t, uow.Commit())

	// All writes are visible after commit
	user, err := NewUserRepository(testDB.DB).GetByID(ctx, 100)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, int64(7), user.TotalPoints)

	txns, err := NewPointsTransactionRepository(testDB.DB).GetByUser(ctx, 100, 10)
	require.NoError(t, err)
	assert.Len(t, txns, 1)

	select {
	case event := <-received:
		checkinEvent, ok := event.(events.CheckinEvent)
		require.True(t, ok)
		assert.Equal(t, int64(7), checkinEvent.PointsEarned)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered after commit")
	}
}

func TestUnitOfWork_RollbackDiscardsWritesAndEvents(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	bus := events.NewBus()
	factory := NewUnitOfWorkFactory(testDB.DB, bus)
	ctx := context.Background()

	received := make(chan events.Event, 1)
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) {
		received <- event
	})

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	_, _, err := uow.UserRepository().Upsert(ctx, 200, "bob", "", "")
	require.NoError(t, err)
	_, err = uow.UserRepository().AddPoints(ctx, 200, 50)
	require.NoError(t, err)

	uow.EventBus().Publish(events.BalanceChangeEvent{UserID: 200, NewBalance: 50})

	require.NoError(t, uow.Rollback())

	user, err := NewUserRepository(testDB.DB).GetByID(ctx, 200)
	require.NoError(t, err)
	assert.Nil(t, user, "rolled back user must not exist")

	select {
	case <-received:
		t.Fatal("event was delivered despite rollback")
	case <-time.After(200 * time.Millisecond):
	}
}
