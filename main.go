package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/msomdec/code-journal/internal/handler"
	"github.com/msomdec/code-journal/internal/repository/blob"
	"github.com/msomdec/code-journal/internal/repository/userstore"
	"github.com/msomdec/code-journal/internal/service"
)

func main() {
	// Optional; real deployments set env vars directly.
	_ = godotenv.Load()

	logOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, logOpts))
	slog.SetDefault(logger)

	port := envOrDefault("PORT", "8080")
	dataDir := envOrDefault("DATA_DIR", "data")
	backend := envOrDefault("STORAGE_BACKEND", "file")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if len(jwtSecret) < 32 {
		slog.Error("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
		os.Exit(1)
	}

	// Default to secure cookies; disable only for local development.
	cookieSecure := os.Getenv("COOKIE_SECURE") != "false"

	bcryptCost := 12
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			slog.Error("invalid BCRYPT_COST", "error", err)
			os.Exit(1)
		}
		if parsed < 4 || parsed > 14 {
			slog.Error("BCRYPT_COST must be between 4 and 14", "value", parsed)
			os.Exit(1)
		}
		bcryptCost = parsed
	}

	blobs, err := openBackend(backend, dataDir)
	if err != nil {
		slog.Error("failed to open storage backend", "backend", backend, "error", err)
		os.Exit(1)
	}
	defer blobs.Close()
	slog.Info("storage backend ready", "backend", backend, "dir", dataDir)

	users, err := userstore.New(context.Background(), blobs)
	if err != nil {
		slog.Error("failed to initialize user store", "error", err)
		os.Exit(1)
	}

	// Recovery path: reconstruct the master index from the user documents.
	if os.Getenv("REBUILD_INDEX") == "1" {
		index, err := users.RebuildIndex(context.Background())
		if err != nil {
			slog.Error("failed to rebuild index", "error", err)
			os.Exit(1)
		}
		slog.Info("master index rebuilt", "users", len(index.Users))
	}

	authService := service.NewAuthService(users, jwtSecret, bcryptCost)
	sessionService := service.NewSessionService(users)
	projectService := service.NewProjectService(users)
	statsService := service.NewStatsService(users)

	// 10 attempts, refilling one every 6 seconds.
	limiter := service.NewLoginLimiter(1.0/6.0, 10)
	defer limiter.Close()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Services{
		Users:        users,
		Auth:         authService,
		Sessions:     sessionService,
		Projects:     projectService,
		Stats:        statsService,
		Limiter:      limiter,
		CookieSecure: cookieSecure,
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler.SecurityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openBackend selects the persistence backend. The file backend keeps one
// JSON document per user; sqlite and bolt store the same documents in a
// single database file.
func openBackend(backend, dataDir string) (blob.Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	switch backend {
	case "sqlite":
		return blob.NewSQLiteStore(context.Background(), filepath.Join(dataDir, "code-journal.db"))
	case "bolt":
		return blob.NewBoltStore(filepath.Join(dataDir, "code-journal.bolt"))
	default:
		return blob.NewFileStore(dataDir)
	}
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
