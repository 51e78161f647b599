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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/dashboard"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/domain"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/geolocation"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/handler"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/i18n"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/infrastructure/logger"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/observability/metrics"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/observability/tracing"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/persistence"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/reliability/retry"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/security"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/security/audit"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/security/auth"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/security/middleware"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/security/ratelimit"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/service"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/worker"
	"github.com/sakhrdev1-ctrl/Mangsales/pkg/config"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

const reportCacheTTL = 30 * time.Second

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	slog.SetDefault(log)
	log.Info("starting sales tracker server",
		slog.String("environment", cfg.Environment),
		slog.String("version", version),
	)

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			log.Error("JWT_SECRET is required in production")
			os.Exit(1)
		}
		log.Warn("JWT_SECRET not set, using the development secret")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Tracing
	shutdownTracing, err := tracing.Init(ctx, tracing.Options{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: "salestrack",
		Environment: cfg.Environment,
		Version:     version,
	}, log)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Storage backend; the database may still be starting
	backend, err := retry.Do(ctx, retry.DefaultConfig(), log, "open storage",
		func(ctx context.Context) (persistence.Backend, error) {
			b, err := persistence.Open(ctx, persistence.Options{
				Driver:      cfg.StorageDriver,
				SQLitePath:  cfg.SQLitePath,
				DatabaseURL: cfg.DatabaseURL,
				RedisURL:    cfg.RedisURL,
				RedisPrefix: cfg.RedisPrefix,
			}, log)
			if errors.Is(err, persistence.ErrUnknownDriver) {
				return nil, retry.Permanent(err)
			}
			return b, err
		})
	if err != nil {
		log.Error("failed to open storage",
			slog.String("driver", cfg.StorageDriver),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
	defer backend.Close()

	// 5. Application state
	store := service.NewStore(ctx, persistence.NewAdapter(backend, log), i18n.Language(cfg.DefaultLanguage), log)
	reporter := dashboard.NewReporter(store, cfg.Location, reportCacheTTL, log)

	// 6. Security components
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "salestrack", cfg.JWTTTL())
	authz := security.NewAuthorizationService(log)
	loginLimiter := ratelimit.NewLimiter(cfg.LoginRateLimit, time.Minute)
	auditLogger := audit.NewLogger(log)

	// 7. Routes
	mux := handler.Routes(handler.Deps{
		Store:          store,
		Reporter:       reporter,
		Provider:       newLocationProvider(cfg, log),
		Tokens:         tokenManager,
		Authz:          authz,
		Gate:           security.NewGate(authz),
		Audit:          auditLogger,
		LoginLimiter:   loginLimiter,
		TrustedProxies: cfg.TrustedProxies,
		Backend:        backend,
		StorageDriver:  cfg.StorageDriver,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         log,
	})

	// Chain middleware: request ID -> CORS -> tracing -> content type -> metrics -> mux
	rootHandler := middleware.RequestID(log)(
		withCORS(cfg.CORSAllowedOrigins)(
			otelhttp.NewHandler(
				middleware.ValidateJSONContentType(log)(metrics.HTTPMetricsMiddleware(mux)),
				"salestrack",
			),
		),
	)

	// 8. End the session once its token has lapsed
	go worker.NewSessionReaper(store, cfg.JWTTTL(), time.Minute, log).Start(ctx)

	// 9. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("storage", cfg.StorageDriver),
		slog.String("geolocation", cfg.GeolocationMode),
		slog.String("language", cfg.DefaultLanguage),
		slog.Int("login_rate_limit", cfg.LoginRateLimit),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
			sigChan <- syscall.SIGTERM
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	cancel() // stops the session reaper
	loginLimiter.Stop()
	log.Info("server stopped")
}

func newLocationProvider(cfg *config.Config, log *slog.Logger) *geolocation.Provider {
	var source geolocation.Source
	switch cfg.GeolocationMode {
	case config.GeolocationIP:
		source = geolocation.NewIPSource(cfg.GeolocationURL, log)
	case config.GeolocationStatic:
		source = geolocation.StaticSource{Coordinates: domain.Coordinates{
			Latitude:  cfg.StaticLatitude,
			Longitude: cfg.StaticLongitude,
		}}
	}
	// a nil source reports every request as unsupported
	return geolocation.NewProvider(source, geolocation.DefaultOptions(), log)
}

// withCORS honours the configured origins
func withCORS(allowed []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if originAllowed(allowed, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			} else if len(allowed) > 0 {
				w.Header().Set("Access-Control-Allow-Origin", allowed[0])
			}
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization, X-Request-ID")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID, Retry-After")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}
