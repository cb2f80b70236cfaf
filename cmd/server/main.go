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

	"github.com/redis/go-redis/v9"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/billdesk/internal/auth"
	"github.com/mmynk/billdesk/internal/billing"
	"github.com/mmynk/billdesk/internal/config"
	"github.com/mmynk/billdesk/internal/email"
	"github.com/mmynk/billdesk/internal/filestore"
	"github.com/mmynk/billdesk/internal/metrics"
	"github.com/mmynk/billdesk/internal/middleware"
	"github.com/mmynk/billdesk/internal/pdf"
	"github.com/mmynk/billdesk/internal/sentry"
	"github.com/mmynk/billdesk/internal/sequence"
	"github.com/mmynk/billdesk/internal/service"
	"github.com/mmynk/billdesk/internal/storage"
	"github.com/mmynk/billdesk/internal/storage/postgres"
	"github.com/mmynk/billdesk/internal/storage/sqlite"
	"github.com/mmynk/billdesk/pkg/logging"
)

// pingStore is a store that can report its health.
type pingStore interface {
	storage.Store
	Ping(ctx context.Context) error
}

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Configure(cfg.Logging.Level, cfg.Logging.Format)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Configuration, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reporter, err := sentry.New(sentry.Config{DSN: cfg.Sentry.DSN, Environment: cfg.Sentry.Environment})
	if err != nil {
		return fmt.Errorf("failed to initialize sentry: %w", err)
	}
	defer reporter.Flush(2 * time.Second)

	store, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := auth.EnsureAdmin(ctx, store, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, cfg.Auth.AdminName, logger); err != nil {
		return err
	}

	files, err := openFileStore(ctx, cfg.Uploads)
	if err != nil {
		return err
	}

	mailer, err := email.New(email.Config{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		ReplyTo:     cfg.Email.ReplyTo,
		APIKey:      cfg.Email.APIKey,
		SMTPHost:    cfg.Email.SMTPHost,
		SMTPPort:    cfg.Email.SMTPPort,
		SMTPUser:    cfg.Email.SMTPUser,
		SMTPPass:    cfg.Email.SMTPPass,
	})
	if err != nil {
		return fmt.Errorf("failed to configure email: %w", err)
	}
	logger.Info("Email dispatch configured", "provider", cfg.Email.Provider)

	m := metrics.New()

	locker, closeLocker, err := newLocker(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer closeLocker()

	allocator := sequence.NewAllocator(store, locker,
		sequence.WithMaxRetries(cfg.Issuance.AllocationRetries),
		sequence.WithRetryObserver(m.NumberingRetried),
		sequence.WithLogger(logger),
	)
	renderer := pdf.NewRenderer()

	issuer := billing.NewIssuer(store, allocator, renderer, mailer,
		billing.WithTimeouts(cfg.Issuance.RenderTimeout, cfg.Issuance.EmailTimeout),
		billing.WithLogos(files),
		billing.WithMetrics(m),
		billing.WithSentry(reporter),
		billing.WithLogger(logger),
	)
	queries := billing.NewQueries(store, renderer, files, cfg.Issuance.RenderTimeout, logger)
	profiles := billing.NewProfiles(store, files, cfg.Uploads.MaxLogoBytes, logger)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	handlers := &service.Handlers{
		Bills:     service.NewBillService(issuer, queries, logger),
		Profiles:  service.NewProfileService(profiles),
		Customers: service.NewCustomerService(billing.NewCustomers(store)),
		Auth:      service.NewAuthService(authenticator, store, jwtManager, logger),
		Admin:     service.NewAdminService(store, authenticator, logger),
		Files:     service.NewFileHandlers(queries, profiles, cfg.Uploads.MaxLogoBytes, logger),
	}

	var limiter *middleware.RateLimiter
	if cfg.Server.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateLimit)
	}

	mux := http.NewServeMux()
	handlers.Mount(mux, service.MountOptions{
		JWT:     jwtManager,
		Logger:  logger,
		Metrics: m,
		Sentry:  reporter,
		Limiter: limiter,
	})
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			logger.Warn("Health check failed", "error", err)
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	if local, ok := files.(*filestore.LocalStore); ok {
		prefix := cfg.Uploads.PublicBaseURL + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(local.Dir()))))
		logger.Info("Serving uploads", "path", local.Dir(), "url", prefix)
	}

	// h2c serves HTTP/2 without TLS, which Connect clients use.
	handler := h2c.NewHandler(corsMiddleware(cfg.Server.CORSOrigin, mux), &http2.Server{})

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Connect server starting", "address", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (pingStore, error) {
	switch cfg.Driver {
	case "postgres":
		store, err := postgres.Open(ctx, postgres.Config{DSN: cfg.PostgresDSN})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres storage: %w", err)
		}
		logger.Info("Storage initialized", "driver", "postgres")
		return store, nil
	default:
		store, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite storage: %w", err)
		}
		logger.Info("Storage initialized", "driver", "sqlite", "database", cfg.SQLitePath)
		return store, nil
	}
}

func openFileStore(ctx context.Context, cfg config.UploadsConfig) (filestore.Store, error) {
	if cfg.Provider == "s3" {
		store, err := filestore.NewS3Store(ctx, filestore.S3Config{
			Bucket:        cfg.Bucket,
			Region:        cfg.Region,
			KeyPrefix:     cfg.KeyPrefix,
			PublicBaseURL: cfg.PublicBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize s3 uploads: %w", err)
		}
		return store, nil
	}
	store, err := filestore.NewLocalStore(cfg.LocalDir, cfg.PublicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize local uploads: %w", err)
	}
	return store, nil
}

// newLocker returns the Redis lock when Redis is configured and a
// process-local lock otherwise.
func newLocker(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (sequence.Locker, func(), error) {
	if cfg.Address == "" {
		logger.Info("Bill numbering uses a process-local lock")
		return sequence.NewLocalLocker(), func() {}, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("Bill numbering uses a redis lock", "address", cfg.Address)
	return sequence.NewRedisLocker(rdb, cfg.LockTTL), func() { rdb.Close() }, nil
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms, Content-Disposition")
		if origin != "*" {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
