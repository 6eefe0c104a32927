package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/leave-backend-go/internal/config"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/leave-backend-go/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/leave-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/leave-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/leave-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/leave-backend-go/internal/repository/postgresql"
	leaveService "github.com/cmlabs-hris/leave-backend-go/internal/service/leave"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

type storage struct {
	tx        leave.Transactor
	records   leave.LeaveRecordRepository
	tranches  leave.TrancheRepository
	directory employee.Directory
	auditLog  audit.Log
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.App.LogLevel),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "driver", cfg.App.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer store.close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	leaveMetrics := metrics.NewLeaveMetrics(registry)

	provisioner := leaveService.NewProvisioner(store.records, store.directory, store.auditLog, leaveMetrics, cfg.Leave.DefaultAllocation)
	service := leaveService.NewLeaveService(
		store.tx,
		store.records,
		store.tranches,
		store.directory,
		store.auditLog,
		provisioner,
		leaveMetrics,
	)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, time.Hour)
	leaveHandler := appHTTP.NewLeaveHandler(service)
	router := appHTTP.NewRouter(JWTService, leaveHandler, appHTTP.RouterOptions{
		Env:            cfg.App.Env,
		AllowedOrigins: cfg.App.CORSAllowedOrigins,
		Metrics:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		RateLimiter:    middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	})

	scheduler := cron.NewScheduler()
	cron.NewLeaveJobs(service, cfg.Leave.ProvisionInterval, cfg.Leave.ProvisionOnStartup).RegisterJobs(scheduler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server running", "addr", server.Addr, "storage", cfg.App.StorageDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		scheduler.Start()
		<-gctx.Done()
		scheduler.Stop()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		slog.Info("Shutting down server")
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Exited with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.App.StorageDriver == config.StorageDriverMemory {
		store := memory.NewStore()
		directory := memory.NewDirectory()
		if cfg.App.SeedDemoData {
			n := fixtures.SeedDirectory(directory)
			slog.Info("Seeded demo employees", "count", n)
		}
		return &storage{
			tx:        store,
			records:   memory.NewLeaveRecordRepository(store),
			tranches:  memory.NewTrancheRepository(store),
			directory: directory,
			auditLog:  memory.NewAuditLog(),
			close:     func() {},
		}, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := postgresql.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		slog.Info("Database schema applied")
	}

	return &storage{
		tx:        postgresql.NewTransactor(db),
		records:   postgresql.NewLeaveRecordRepository(db),
		tranches:  postgresql.NewTrancheRepository(db),
		directory: postgresql.NewEmployeeDirectory(db),
		auditLog:  postgresql.NewAuditTrailRepository(db),
		close:     db.Close,
	}, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
