package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"mentordash/internal/domain/audit"
	"mentordash/internal/domain/auth"
	"mentordash/internal/domain/mentor"
	"mentordash/internal/domain/payment"
	"mentordash/internal/domain/reports"
	"mentordash/internal/domain/task"
	"mentordash/internal/domain/team"
	"mentordash/internal/platform/config"
	"mentordash/internal/platform/db"
	"mentordash/internal/platform/jobs"
	"mentordash/internal/platform/metrics"
	"mentordash/internal/transport/http/api"
	audithandler "mentordash/internal/transport/http/handlers/audit"
	authhandler "mentordash/internal/transport/http/handlers/auth"
	mentorshandler "mentordash/internal/transport/http/handlers/mentors"
	paymentshandler "mentordash/internal/transport/http/handlers/payments"
	reportshandler "mentordash/internal/transport/http/handlers/reports"
	taskshandler "mentordash/internal/transport/http/handlers/tasks"
	teamshandler "mentordash/internal/transport/http/handlers/teams"
	"mentordash/internal/transport/http/middleware"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Hub     *task.Hub
	Jobs    *jobs.Service
	Metrics *metrics.Collector
	Logger  *slog.Logger
}

// New connects to the database, prepares the schema when configured to and
// wires every component.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		applied, err := db.Migrate(ctx, pool, cfg.MigrationsDir)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
		if len(applied) > 0 {
			logger.Info("migrations applied", "versions", applied)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed failed: %w", err)
		}
	}

	return Assemble(cfg, pool, logger), nil
}

// Assemble builds the services, background workers and router around pool.
func Assemble(cfg config.Config, pool *pgxpool.Pool, logger *slog.Logger) *App {
	collector := metrics.New()

	authStore := auth.NewStore(pool)
	authSvc := auth.NewService(authStore, cfg.JWTSecret)
	auditSvc := audit.New(pool)

	mentorStore := mentor.NewStore(pool)
	mentorSvc := mentor.NewService(mentorStore)
	mentorSvc.DefaultRate = cfg.DefaultBaseRate
	teamStore := team.NewStore(pool)
	taskStore := task.NewStore(pool)
	taskSvc := task.NewService(taskStore)
	hub := task.NewHub(pool, logger)

	paymentSvc := payment.NewService(taskStore, mentorStore)
	archive := payment.NewArchive(pool)

	reportStore := reports.NewStore(pool)
	reportSvc := reports.NewService(reportStore, paymentSvc)

	jobSvc := jobs.New(pool, cfg)
	jobSvc.Payments = paymentSvc
	jobSvc.Archive = archive
	jobSvc.Mentors = mentorStore
	jobSvc.Sessions = authStore

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Metrics(collector))
	router.Use(middleware.Auth(cfg.JWTSecret, authSvc))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if pool == nil {
			http.Error(w, "db not configured", http.StatusServiceUnavailable)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authSvc, auditSvc).RegisterRoutes(r)
		mentorshandler.NewHandler(mentorSvc, auditSvc).RegisterRoutes(r)
		teamshandler.NewHandler(teamStore, mentorSvc, auditSvc).RegisterRoutes(r)

		tasksHandler := taskshandler.NewHandler(taskSvc, hub, paymentSvc)
		tasksHandler.Idempotency = middleware.NewIdempotencyStore(pool)
		tasksHandler.Audit = auditSvc
		tasksHandler.Metrics = collector
		tasksHandler.RegisterRoutes(r)

		paymentsHandler := paymentshandler.NewHandler(paymentSvc, mentorSvc, archive, collector)
		paymentsHandler.Weeks = cfg.StatementWeeks
		paymentsHandler.RegisterRoutes(r)

		reportshandler.NewHandler(reportSvc, reportStore, jobSvc).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc).RegisterRoutes(r)
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	return &App{
		Config:  cfg,
		DB:      pool,
		Router:  router,
		Hub:     hub,
		Jobs:    jobSvc,
		Metrics: collector,
		Logger:  logger,
	}
}

// Start launches the change listener and the job runner. Both stop with ctx.
func (a *App) Start(ctx context.Context) {
	go a.Hub.Run(ctx)
	a.Jobs.Start(ctx)
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests.
func Run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()
	app.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mentordash server listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
