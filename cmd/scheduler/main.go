package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/course-scheduler/internal/application"
	"github.com/example/course-scheduler/internal/config"
	httptransport "github.com/example/course-scheduler/internal/http"
	"github.com/example/course-scheduler/internal/persistence"
	"github.com/example/course-scheduler/internal/persistence/sqlite"
	"github.com/example/course-scheduler/internal/persistence/sqlite/migration"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))

	pool, err := sqlite.NewConnectionPool(sqlite.DefaultConfig(cfg.SQLiteDSN))
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := migration.NewManager(pool.DB(), logger).Run(ctx); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	srv := newServer(pool, cfg.SessionTTL, logger)

	if cfg.BootstrapAdminEmail != "" {
		if err := bootstrapAdmin(ctx, srv.accounts, cfg, uuid.NewString, logger); err != nil {
			logger.Error("failed to bootstrap administrator account", "error", err)
			os.Exit(1)
		}
	}

	go pruneSessions(ctx, srv.sessions, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           srv.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("timetable API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// server bundles the wired HTTP handler with the repositories main needs for
// background upkeep and bootstrap.
type server struct {
	handler  http.Handler
	accounts persistence.AccountRepository
	sessions persistence.SessionRepository
}

// newServer wires the repositories, application services, and HTTP transport
// on top of an open, migrated connection pool.
func newServer(pool *sqlite.ConnectionPool, sessionTTL time.Duration, logger *slog.Logger) *server {
	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	accountStore := sqlite.NewAccountRepository(pool)
	sessionStore := sqlite.NewSessionRepository(pool)
	dayStore := sqlite.NewDayRepository(pool)
	timeSlotStore := sqlite.NewTimeSlotRepository(pool)
	unitStore := sqlite.NewUnitRepository(pool)
	scheduleStore := sqlite.NewScheduleRepository(pool)
	enrollmentStore := sqlite.NewEnrollmentRepository(pool)

	scheduleRepo := newScheduleRepositoryAdapter(scheduleStore, unitStore, timeSlotStore, dayStore)
	bookings := newBookingSourceAdapter(scheduleStore, unitStore, timeSlotStore, dayStore)
	unitRepo := newUnitRepositoryAdapter(unitStore)
	timeSlotRepo := newTimeSlotRepositoryAdapter(timeSlotStore)
	dayRepo := newDayRepositoryAdapter(dayStore)
	enrollmentRepo := newEnrollmentRepositoryAdapter(enrollmentStore)
	accountRepo := newAccountRepositoryAdapter(accountStore)
	credentials := newCredentialStoreAdapter(accountStore)
	sessionRepo := newSessionRepositoryAdapter(sessionStore)

	timeSlotService := application.NewTimeSlotServiceWithLogger(timeSlotRepo, bookings, enrollmentStore, now, logger)
	unitService := application.NewUnitServiceWithLogger(unitRepo, newScheduleCounterAdapter(scheduleStore), now, logger)
	scheduleService := application.NewScheduleServiceWithLogger(scheduleRepo, unitRepo, timeSlotRepo, dayRepo, bookings, enrollmentStore, now, logger)
	dayService := application.NewDayService(dayRepo)
	enrollmentService := application.NewEnrollmentServiceWithLogger(enrollmentRepo, scheduleRepo, enrollmentStore, now, logger)
	accountService := application.NewAccountService(accountRepo, idGenerator, now)
	authService := application.NewAuthServiceWithLogger(credentials, sessionRepo, nil, tokenGenerator, now, sessionTTL, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:        httptransport.NewAuthHandler(authService, logger),
		Accounts:    httptransport.NewAccountHandler(accountService, logger),
		Days:        httptransport.NewDayHandler(dayService, logger),
		TimeSlots:   httptransport.NewTimeSlotHandler(timeSlotService, logger),
		Units:       httptransport.NewUnitHandler(unitService, logger),
		Schedules:   httptransport.NewScheduleHandler(scheduleService, logger),
		Enrollments: httptransport.NewEnrollmentHandler(enrollmentService, logger),
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicRoute(r) {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	return &server{handler: handler, accounts: accountStore, sessions: sessionStore}
}

// isPublicRoute reports whether the request may proceed without a session.
// Sign-in must stay reachable, and refresh authenticates through the token it
// rotates rather than the middleware.
func isPublicRoute(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}
	path := strings.TrimSuffix(r.URL.Path, "/")
	return path == "/sessions" || path == "/sessions/refresh"
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// bootstrapAdmin seeds the configured administrator account when it does not
// exist yet. An already present account is left untouched.
func bootstrapAdmin(ctx context.Context, accounts persistence.AccountRepository, cfg config.Config, idGenerator func() string, logger *slog.Logger) error {
	_, err := accounts.GetAccountByEmail(ctx, cfg.BootstrapAdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		return err
	}

	hash, err := application.CreatePasswordHash(cfg.BootstrapAdminPassword, application.DefaultArgon2idParams)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	account := persistence.Account{
		ID:           idGenerator(),
		Email:        cfg.BootstrapAdminEmail,
		DisplayName:  "Administrator",
		PasswordHash: hash,
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := accounts.CreateAccount(ctx, account); err != nil {
		return err
	}
	logger.Info("administrator account created", "email", cfg.BootstrapAdminEmail)
	return nil
}

// pruneSessions periodically removes sessions whose expiry has passed.
func pruneSessions(ctx context.Context, sessions persistence.SessionRepository, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sessions.DeleteExpiredSessions(ctx, time.Now().UTC()); err != nil {
				logger.Warn("failed to prune expired sessions", "error", err)
			}
		}
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
