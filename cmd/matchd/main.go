package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	crmapp "github.com/bara/backend/internal/application/crm"
	matchingapp "github.com/bara/backend/internal/application/matching"
	"github.com/bara/backend/internal/domain/matching"
	"github.com/bara/backend/internal/infrastructure/config"
	"github.com/bara/backend/internal/infrastructure/logger"
	"github.com/bara/backend/internal/infrastructure/persistence"
	"github.com/bara/backend/internal/infrastructure/scheduler"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting matchd",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("driver", cfg.Database.Driver),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Sqlite installs carry their schema with the binary; postgres
	// deployments run the migration CLI instead.
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}

	// Repositories
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	phoneRepo := persistence.NewGormCustomerPhoneRepository(db.DB)
	addressRepo := persistence.NewGormCustomerAddressRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	clusterRepo := persistence.NewGormClusterRepository(db.DB)
	assignmentStore := persistence.NewGormAssignmentStore(db.DB)

	// The daemon runs the maintenance passes; order entry and customer
	// identification are served in-process by the embedding POS through the
	// application services.
	assigner := matching.NewAssigner(matching.AssignConfig{
		PartyWeight:     cfg.Matching.PartyWeight,
		TemporalWeight:  cfg.Matching.TemporalWeight,
		ItemWeight:      cfg.Matching.ItemWeight,
		AssignThreshold: cfg.Matching.AssignThreshold,
		TieBand:         cfg.Matching.TieBand,
	})
	assignmentService := matchingapp.NewAssignmentService(clusterRepo, orderRepo, assignmentStore, assigner).
		WithCandidateWindow(cfg.Matching.CandidateDaysBack, cfg.Matching.CandidateLimit)
	rescoringService := matchingapp.NewRescoringService(clusterRepo, log.Named("rescoring"))
	customerService := crmapp.NewCustomerService(customerRepo, phoneRepo, addressRepo)

	// Background maintenance
	sched := scheduler.NewScheduler(cfg.Scheduler, log.Named("scheduler"))
	sched.Register(scheduler.Job{
		Name:     "rescore_clusters",
		Interval: cfg.Scheduler.RescoreInterval,
		Run: func(ctx context.Context) error {
			stats, err := rescoringService.RescoreBatch(ctx, cfg.Scheduler.RescoreBatchSize)
			if err != nil {
				return err
			}
			log.Info("Cluster rescoring pass finished",
				zap.Int("processed", stats.Processed),
				zap.Int("updated", stats.Updated),
				zap.Int("conflicts", stats.Conflicts),
				zap.Int("failed", stats.Failed),
			)
			return nil
		},
	})
	sched.Register(scheduler.Job{
		Name:     "assign_backlog",
		Interval: cfg.Scheduler.SweepInterval,
		Run: func(ctx context.Context) error {
			assigned, err := assignmentService.AssignBacklog(ctx, cfg.Scheduler.SweepBatchSize)
			if err != nil {
				return err
			}
			if assigned > 0 {
				log.Info("Backlog assignment pass finished", zap.Int("assigned", assigned))
			}
			return nil
		},
	})
	sched.Register(scheduler.Job{
		Name:     "validate_addresses",
		Interval: cfg.Scheduler.ValidationInterval,
		Run: func(ctx context.Context) error {
			validated, err := customerService.ValidatePendingAddresses(ctx, cfg.Scheduler.ValidationBatchSize)
			if err != nil {
				return err
			}
			if validated > 0 {
				log.Info("Address validation pass finished", zap.Int("validated", validated))
			}
			return nil
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Scheduler.Enabled {
		if err := sched.Start(ctx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
	} else {
		log.Info("Scheduler disabled by configuration")
	}

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sched.Stop(shutdownCtx); err != nil {
		log.Error("Scheduler did not stop cleanly", zap.Error(err))
		os.Exit(1)
	}

	log.Info("matchd stopped")
}
