package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chocoalano/esas-api/internal/config"
	appHTTP "github.com/chocoalano/esas-api/internal/handler/http"
	"github.com/chocoalano/esas-api/internal/pkg/cache"
	"github.com/chocoalano/esas-api/internal/pkg/clock"
	"github.com/chocoalano/esas-api/internal/pkg/cron"
	"github.com/chocoalano/esas-api/internal/pkg/database"
	"github.com/chocoalano/esas-api/internal/pkg/jwt"
	"github.com/chocoalano/esas-api/internal/pkg/seal"
	"github.com/chocoalano/esas-api/internal/pkg/sse"
	"github.com/chocoalano/esas-api/internal/repository/postgresql"
	attendanceService "github.com/chocoalano/esas-api/internal/service/attendance"
	presenceService "github.com/chocoalano/esas-api/internal/service/presence"
	"github.com/go-chi/httplog/v3"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "esas-api"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	clk := clock.New(loc)

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{MaxConns: cfg.Database.MaxConns})
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		slog.Info("Database schema applied")
	}

	var monthlyCache cache.Cache = cache.Noop{}
	if cfg.RedisEnabled() {
		redisClient, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer redisClient.Close()
		monthlyCache = cache.NewRedisCache(redisClient)
		slog.Info("Attendance cache enabled", "addr", cfg.RedisAddr())
	}

	sealer, err := seal.New(cfg.Presence.TokenSecret)
	if err != nil {
		return fmt.Errorf("failed to initialize token sealer: %w", err)
	}

	transactor := postgresql.NewTransactor(db)
	tokenRepo := postgresql.NewPresenceTokenRepository(db)
	transactionRepo := postgresql.NewPresenceTransactionRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	employmentRepo := postgresql.NewEmploymentRepository(db)
	companyRepo := postgresql.NewCompanyRepository(db)
	shiftRepo := postgresql.NewShiftRepository(db)
	scheduleRepo := postgresql.NewScheduleRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, monthlyCache, clk, cfg.Presence.CacheTTL)
	presenceSvc := presenceService.NewPresenceService(
		transactor,
		tokenRepo,
		transactionRepo,
		attendanceRepo,
		employmentRepo,
		companyRepo,
		shiftRepo,
		scheduleRepo,
		clk,
		sealer,
		attendanceSvc,
		sse.NewHub(),
		cfg.Presence.TokenTTL,
	)

	scheduler := cron.NewScheduler(ctx)
	cron.NewPresenceJobs(tokenRepo, clk, cfg.Presence.PurgeAfter).RegisterJobs(scheduler, cfg.Presence.PurgeInterval)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			Logger:         logger,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
		},
		JWTService,
		appHTTP.NewPresenceHandler(presenceSvc),
		appHTTP.NewAttendanceHandler(attendanceSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
