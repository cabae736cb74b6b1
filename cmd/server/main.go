package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.temporal.io/sdk/client"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/auth"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/bookinglist"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/catalog"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/config"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/database"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/handlers"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/onboarding"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/realtime"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/router"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/service"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/storage"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/websocket"
	"github.com/Wolf-Quiteque/100destinosBackend/pkg/logger"
	"github.com/Wolf-Quiteque/100destinosBackend/pkg/metrics"
)

func main() {
	configPath := pflag.String("config", "", "path to a YAML config file")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", "error", err)
	}

	log := logger.NewLogger(cfg.LogLevel)
	m := metrics.NewMetrics(cfg.MetricsNamespace, prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres
	log.Info("Connecting to database...")
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer pool.Close()

	repo := database.NewRepository(pool)
	if err := repo.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database", "error", err)
	}
	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal("Failed to migrate database", "error", err)
	}
	log.Info("Connected to database")

	db, err := catalog.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to open catalog store", "error", err)
	}
	catalogRepo := catalog.NewRepository(db)

	// File storage
	mongoClient, err := storage.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal("Failed to connect to file storage", "error", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(shutdownCtx)
	}()
	files := storage.NewGridFSStore(mongoClient.Database(cfg.MongoDB), cfg.PublicBaseURL)

	// Change feed
	broker := realtime.NewBroker(log, 0)
	defer broker.Close()

	var wg sync.WaitGroup
	listenCtx, stopListener := context.WithCancel(ctx)
	listener := database.NewListener(cfg.DatabaseURL, broker, log, m)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := listener.Run(listenCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Change listener stopped", "error", err)
		}
	}()

	hub := websocket.NewHub(log, m, cfg.AllowedOrigins)
	go hub.Run()
	hubSub := broker.Subscribe(realtime.AllTables, realtime.EventAll, hub.BroadcastChange)

	views := bookinglist.NewRegistry(repo, broker, log, m, cfg.BookingsPageSize, cfg.CompanyBookingsPageSize)
	views.SetCompanyLimit(cfg.MaxCompanyViews)
	if _, err := views.Global(ctx); err != nil {
		log.Fatal("Failed to open booking view", "error", err)
	}

	// Onboarding
	var onboarder onboarding.Onboarder
	if cfg.TemporalHost != "" {
		temporalClient, err := client.Dial(client.Options{
			HostPort: cfg.TemporalHost,
			Logger:   log,
		})
		if err != nil {
			log.Fatal("Failed to create Temporal client", "error", err)
		}
		defer temporalClient.Close()
		onboarder = onboarding.NewTemporalOnboarder(temporalClient, cfg.TaskQueue)
		log.Info("Employee onboarding runs on Temporal", "host", cfg.TemporalHost, "task_queue", cfg.TaskQueue)
	} else {
		acts := onboarding.NewActivities(auth.NewStore(pool), catalogRepo, log)
		onboarder = onboarding.NewDirectOnboarder(acts, log)
		log.Info("Employee onboarding runs in-process")
	}

	// Services and HTTP
	bookingService := service.NewBookingService(views, repo, log, m)
	catalogService := service.NewCatalogService(catalogRepo, files, onboarder, service.CatalogConfig{
		PageSize:          cfg.CatalogPageSize,
		LogoBucket:        cfg.LogoBucket,
		DefaultTotalSeats: cfg.DefaultTotalSeats,
	}, log, m)
	reportService := service.NewReportService(views, repo, cfg.DefaultTotalSeats, log, m)

	h := handlers.NewHandler(bookingService, catalogService, reportService, log)
	r := router.SetupRouter(h, router.Options{
		Hub:            hub,
		Log:            log,
		Metrics:        m,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("API server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	views.Close()
	hubSub.Close()
	stopListener()
	wg.Wait()
	hub.Stop()

	log.Info("Server stopped")
}
