package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"ecommerce-dashboard/internal/api"
	"ecommerce-dashboard/internal/config"
	"ecommerce-dashboard/internal/dashboard"
	"ecommerce-dashboard/internal/logger"
	"ecommerce-dashboard/internal/metrics"
	"ecommerce-dashboard/internal/store"
)

const (
	defaultAppName = "EcommerceDashboard" // App name for logger
)

func main() {
	ctx := context.Background()

	envErr := godotenv.Load() // Loads .env from the current directory by default

	// --- Configuration Loading ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: defaultAppName,
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})
	if envErr != nil {
		logg.Info(ctx, "No .env file found, relying on system environment")
	}
	logg.Info(logg.WithFields(ctx, map[string]any{
		"app_env":        cfg.AppEnv,
		"log_level":      cfg.LogLevel,
		"dataset_source": cfg.Dataset.Source,
	}), "Configuration loaded")

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(registry)

	// --- Dataset Loading ---
	source, closer, err := openSource(ctx, cfg)
	if err != nil {
		logg.Fatal(ctx, "Failed to open dataset source", err)
	}
	loader := store.NewLoader(source, logg, recorder)
	tables, err := loader.Load(ctx)
	if err != nil {
		logg.Fatal(ctx, "Failed to load datasets", err)
	}
	dash := dashboard.New(logg.WithField(ctx, "load_id", loader.LoadID()), tables, logg, recorder)

	// --- Initialize API Handlers ---
	httpAPIHandler := api.NewHTTPHandler(dash, logg)
	grpcAPIHandler := api.NewGRPCHandler(dash, logg)

	// --- Setup & Start HTTP Server ---
	httpRouter := chi.NewRouter()
	setupBaseMiddleware(httpRouter, logg)
	registerHealthCheck(httpRouter, logg, loader, dash)
	httpRouter.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	httpAPIHandler.RegisterRoutes(httpRouter)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      httpRouter,
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}

	go func() {
		logg.Infof(ctx, "HTTP server listening on port %s", cfg.HttpServer.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal(ctx, "HTTP server ListenAndServe error", err)
		}
		logg.Info(ctx, "HTTP server has stopped")
	}()

	// --- Setup & Start gRPC Server ---
	var grpcServer *grpc.Server
	if cfg.GrpcServer.Enabled {
		grpcServer = setupGRPCServer(ctx, logg, grpcAPIHandler)
		grpcListener, err := net.Listen("tcp", ":"+cfg.GrpcServer.Port)
		if err != nil {
			logg.Fatal(ctx, "Failed to listen for gRPC on port "+cfg.GrpcServer.Port, err)
		}

		go func() {
			logg.Infof(ctx, "gRPC server listening on port %s", cfg.GrpcServer.Port)
			if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				logg.Fatal(ctx, "gRPC server Serve error", err)
			}
			logg.Info(ctx, "gRPC server has stopped")
		}()
	}

	// --- Graceful Shutdown ---
	shutdownComplete := make(chan struct{})
	go waitForShutdown(logg, httpServer, grpcServer, closer, shutdownComplete)

	<-shutdownComplete // Block until graceful shutdown is complete
	logg.Info(ctx, "Service shutdown sequence finished")
}

// openSource builds the dataset source named by DATASET_SOURCE. The returned
// closer is nil unless the source holds a connection pool.
func openSource(ctx context.Context, cfg *config.Config) (store.Source, io.Closer, error) {
	files := store.TableNames{
		OrderItems:   cfg.Dataset.OrderItems,
		OrderReviews: cfg.Dataset.OrderReviews,
		Products:     cfg.Dataset.Products,
		Sellers:      cfg.Dataset.Sellers,
	}

	switch cfg.Dataset.Source {
	case "csv":
		return store.NewCSVSource(cfg.Dataset.Dir, files), nil, nil
	case "filesql":
		return store.NewFileSQLSource(cfg.Dataset.Dir, files), nil, nil
	case "sqlite":
		return store.NewSQLiteSource(cfg.SQLite.Path, store.DefaultTableNames()), nil, nil
	case "postgres":
		db, err := sql.Open("postgres", cfg.Postgres.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		src := store.NewPostgresSource(db, cfg.Postgres.Schema, store.DefaultTableNames())
		return src, src, nil
	default:
		return nil, nil, fmt.Errorf("unknown dataset source %q", cfg.Dataset.Source)
	}
}

func setupBaseMiddleware(router *chi.Mux, logg *logger.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(api.RequestLogger(logg))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second)) // Default timeout for requests
	logg.Info(context.Background(), "Base HTTP middleware registered")
}

func registerHealthCheck(router *chi.Mux, logg *logger.Logger, loader *store.Loader, dash *dashboard.Service) {
	healthPath := "/api/v1/healthz"
	router.Get(healthPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(map[string]interface{}{
			"status":      "healthy",
			"serviceName": defaultAppName,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"load_id":     loader.LoadID(),
			"rows":        dash.Rows(),
		}); err != nil {
			logg.Error(r.Context(), "Failed to encode health response", err)
		}
	})
	logg.Infof(context.Background(), "HTTP health check registered at %s", healthPath)
}

func setupGRPCServer(ctx context.Context, logg *logger.Logger, grpcAPIHandler *api.GRPCHandler) *grpc.Server {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(api.UnaryLoggingInterceptor(logg)))

	api.RegisterDashboardServer(s, grpcAPIHandler)
	logg.Info(ctx, "DashboardService gRPC service registered")

	// Register gRPC Health Checking Protocol service.
	grpc_health_v1.RegisterHealthServer(s, health.NewServer())
	logg.Info(ctx, "gRPC health check service registered")

	// Enable gRPC server reflection (useful for tools like grpcurl).
	reflection.Register(s)
	logg.Info(ctx, "gRPC reflection service registered")

	return s
}

func waitForShutdown(
	logg *logger.Logger,
	httpServer *http.Server,
	grpcServer *grpc.Server, // nil when gRPC is disabled
	closer io.Closer,
	shutdownComplete chan struct{},
) {
	defer close(shutdownComplete)
	ctx := context.Background()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-sigChan
	logg.Infof(ctx, "Received signal: %s. Starting graceful shutdown...", receivedSignal)

	shutdownCtx, cancelShutdown := context.WithTimeout(ctx, 30*time.Second)
	defer cancelShutdown()

	stoppedGrpc := make(chan struct{})
	if grpcServer != nil {
		logg.Info(ctx, "Attempting to gracefully shut down gRPC server...")
		go func() {
			grpcServer.GracefulStop()
			close(stoppedGrpc)
		}()
	} else {
		close(stoppedGrpc)
	}

	logg.Info(ctx, "Attempting to gracefully shut down HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "HTTP server graceful shutdown failed", err)
	} else {
		logg.Info(ctx, "HTTP server gracefully shut down")
	}

	// Wait for gRPC to finish shutting down or timeout
	select {
	case <-stoppedGrpc:
		logg.Info(ctx, "gRPC server gracefully shut down")
	case <-shutdownCtx.Done():
		logg.Error(ctx, "gRPC server graceful shutdown timed out, forcing stop", shutdownCtx.Err())
		grpcServer.Stop()
	}

	if closer != nil {
		if err := closer.Close(); err != nil {
			logg.Error(ctx, "Error closing dataset source", err)
		}
	}

	logg.Info(ctx, "Graceful shutdown sequence completed")
}
