package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/voltmap/chargepoint/internal/auth"
	"github.com/voltmap/chargepoint/internal/config"
	"github.com/voltmap/chargepoint/internal/database"
	"github.com/voltmap/chargepoint/internal/handlers"
	"github.com/voltmap/chargepoint/internal/logger"
	"github.com/voltmap/chargepoint/internal/middleware"
	"github.com/voltmap/chargepoint/internal/services/googleauth"
	"github.com/voltmap/chargepoint/internal/services/identity"
	"github.com/voltmap/chargepoint/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

const serviceName = "chargepoint-api"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		// Sync errors on shutdown are not actionable
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.Bool("google_signin_configured", cfg.GoogleClientID != ""),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// OpenTelemetry tracing, if enabled
	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), serviceName, cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized",
					zap.String("endpoint", cfg.OTELEndpoint),
				)
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	// Redis backs the rate limit store
	redisLimiter, err := middleware.NewRedisRateLimiter(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	defer func() {
		if err := redisLimiter.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_redis")

	// Repositories
	userRepo := database.NewUserRepository(db)
	stationRepo := database.NewStationRepository(db)

	// Services
	issuer := auth.NewTokenIssuer([]byte(cfg.JWTSecret))
	jwksManager := googleauth.NewJWKSManager()
	verifier := googleauth.NewVerifier(jwksManager, cfg.GoogleClientID, cfg.GoogleJWKSURL)
	reconciler := identity.NewReconciler(userRepo, zapLogger)

	var oauthClient *googleauth.Client
	if cfg.GoogleClientID != "" {
		oauthClient = googleauth.NewClient(cfg.GoogleClientID, cfg.BaseURL+"/api/auth/google/callback")
	} else {
		zapLogger.Warn("google_client_id_not_configured_google_signin_disabled")
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, issuer, verifier, reconciler, oauthClient, zapLogger)
	stationHandler := handlers.NewStationHandler(stationRepo, zapLogger)
	healthChecker := handlers.NewHealthChecker(db, redisLimiter.Client())

	r := mux.NewRouter()

	// Middleware ordering follows registration order: the first Use wraps
	// outermost and runs first.
	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	rateLimitMW, err := middleware.RateLimit(redisLimiter.Client(), middleware.DefaultAuthRate)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	authMW := middleware.Auth(issuer, zapLogger)

	// Public endpoints
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", versionInfo).Methods("GET")

	openAPIHandler := handlers.NewOpenAPIHandler(filepath.Join("api", "openapi", "openapi.yaml"))
	openAPIHandler.RegisterRoutes(r)

	// Auth endpoints, rate limited: these are the ones worth brute-forcing
	authRouter := r.PathPrefix("/api/auth").Subrouter()
	authRouter.Use(rateLimitMW)
	authHandler.RegisterRoutes(authRouter)

	meRouter := r.PathPrefix("/api/auth").Subrouter()
	meRouter.Use(authMW)
	meRouter.HandleFunc("/me", authHandler.GetMe).Methods("GET")

	// Station catalog: reads are public, mutations require a bearer token
	publicStations := r.PathPrefix("/api/stations").Subrouter()
	stationHandler.RegisterPublicRoutes(publicStations)

	protectedStations := r.PathPrefix("/api/stations").Subrouter()
	protectedStations.Use(authMW)
	stationHandler.RegisterProtectedRoutes(protectedStations)

	// Preflight requests may not match any route above; CORS headers are
	// already set by the middleware.
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting",
			zap.String("port", cfg.ServerPort),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

func versionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprintf(w, `{"version":"1.0.0","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = err
	}
}
