package cmd

import (
	"context"
	"fmt"
	"time"

	"pointsbot/config"
	"pointsbot/database"
	"pointsbot/events"
	"pointsbot/repository"
	"pointsbot/service"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// App bundles the wired services handed to the chat dispatch layer.
type App struct {
	Config     *config.Config
	Ledger     service.LedgerService
	Checkin    service.CheckinService
	Engagement service.EngagementService
	Gate       service.GateService
	Expiration service.ExpirationService
}

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting points bot...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	// Initialize event bus and unit of work factory
	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	app := &App{
		Config:     cfg,
		Ledger:     service.NewLedgerService(uowFactory),
		Checkin:    service.NewCheckinService(uowFactory, cfg),
		Engagement: service.NewEngagementService(uowFactory, cfg),
		Gate:       service.NewGateService(uowFactory, cfg),
		Expiration: service.NewExpirationService(uowFactory, cfg),
	}
	log.Info("Services initialized")

	subscribeEventLogging(eventBus)

	// Schedule the daily expiration sweep
	scheduler := cron.New()
	schedule := fmt.Sprintf("%d %d * * *", cfg.CleanupMinute, cfg.CleanupHour)
	_, err = scheduler.AddFunc(schedule, func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		cleaned, err := app.Expiration.CleanupExpiredPoints(sweepCtx)
		if err != nil {
			log.WithError(err).Error("Expiration sweep failed")
			return
		}
		log.WithField("usersAffected", cleaned).Info("Expiration sweep finished")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule expiration sweep: %w", err)
	}
	scheduler.Start()
	log.WithField("schedule", schedule).Info("Expiration sweep scheduled")

	log.WithField("environment", cfg.Environment).Info("Points bot is running")
	<-ctx.Done()

	log.Info("Shutting down...")
	cronCtx := scheduler.Stop()
	select {
	case <-cronCtx.Done():
	case <-time.After(10 * time.Second):
		log.Warn("Timed out waiting for running jobs")
	}

	log.Info("Shutdown completed")
	return nil
}

// subscribeEventLogging attaches audit log handlers to the event bus
func subscribeEventLogging(bus *events.Bus) {
	bus.Subscribe(events.EventTypeUserCreated, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.UserCreatedEvent); ok {
			log.WithFields(log.Fields{
				"userID":   e.UserID,
				"username": e.Username,
			}).Info("New user registered")
		}
	})

	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.BalanceChangeEvent); ok {
			log.WithFields(log.Fields{
				"userID":     e.UserID,
				"change":     e.ChangeAmount,
				"newBalance": e.NewBalance,
				"type":       e.TransactionType,
			}).Debug("Balance changed")
		}
	})

	bus.Subscribe(events.EventTypePointsExpired, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.PointsExpiredEvent); ok {
			log.WithFields(log.Fields{
				"userID":  e.UserID,
				"expired": e.PointsExpired,
			}).Info("Stale points expired")
		}
	})
}
