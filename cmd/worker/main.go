package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/pflag"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/auth"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/catalog"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/config"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/onboarding"
	"github.com/Wolf-Quiteque/100destinosBackend/pkg/logger"
)

const defaultTemporalHost = "localhost:7233"

func main() {
	configPath := pflag.String("config", "", "path to a YAML config file")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", "error", err)
	}
	log := logger.NewLogger(cfg.LogLevel)

	ctx := context.Background()

	// Connect to database
	log.Info("Connecting to database...")
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database", "error", err)
	}

	db, err := catalog.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to open catalog store", "error", err)
	}
	log.Info("Connected to database")

	// Connect to Temporal
	temporalHost := cfg.TemporalHost
	if temporalHost == "" {
		temporalHost = defaultTemporalHost
	}
	log.Info("Connecting to Temporal...", "host", temporalHost)
	c, err := client.Dial(client.Options{
		HostPort: temporalHost,
		Logger:   log,
	})
	if err != nil {
		log.Fatal("Failed to connect to Temporal", "error", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.TaskQueue, worker.Options{})

	w.RegisterWorkflowWithOptions(onboarding.EmployeeOnboardingWorkflow, workflow.RegisterOptions{Name: onboarding.WorkflowName})

	acts := onboarding.NewActivities(auth.NewStore(pool), catalog.NewRepository(db), log)
	acts.Register(w)

	log.Info("Starting Temporal worker...", "task_queue", cfg.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatal("Worker failed", "error", err)
	}
}
