package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"session-hub/config"
	"session-hub/gateway"
	"session-hub/handler"
	appmiddleware "session-hub/middleware"
	"session-hub/session"
	"session-hub/utils/logger"
	"session-hub/utils/otel"
	"session-hub/validation"
)

func main() {
	// Handle healthcheck subcommand (for Docker healthcheck in distroless image)
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		if err := runHealthcheck(); err != nil {
			fmt.Fprintf(os.Stderr, "Healthcheck failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Initialize OpenTelemetry
	otelCfg := otel.ConfigFromEnv()
	otelShutdown, err := otel.InitProvider(ctx, otelCfg)
	if err != nil {
		slog.Warn("failed to initialize OpenTelemetry, continuing without tracing", "error", err)
		otelCfg.Enabled = false
		otelShutdown = func(context.Context) error { return nil }
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	// Initialize structured logger
	logger.Init(otelCfg.Enabled)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.InfoContext(ctx, "configuration loaded",
		"api_base_url", cfg.APIBaseURL,
		"port", cfg.Port,
		"refresh_interval", cfg.RefreshInterval)

	// Initialize the API gateway
	var gwOpts []gateway.Option
	if cfg.RetryOn401 {
		gwOpts = append(gwOpts, gateway.WithRetryOn401())
	}
	gw, err := gateway.New(cfg.APIBaseURL, cfg.RequestTimeout, gwOpts...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create API gateway", "error", err)
		os.Exit(1)
	}

	// Initialize the session store; a persisted snapshot is only a hint and
	// is confirmed against the backend before anything protected renders.
	snapshot := session.NewFileSnapshot(cfg.SnapshotPath)
	store := session.NewStore(gw, snapshot, session.WithErrorTTL(cfg.ErrorTTL))
	store.Hydrate()
	if store.State().Undetermined() {
		go func() {
			confirmCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
			defer cancel()
			if err := store.ConfirmIdentity(confirmCtx); err != nil {
				slog.InfoContext(ctx, "snapshot confirmation failed, starting anonymous", "error", err)
			}
		}()
	}

	// Start the proactive refresh loop
	refresher := session.NewRefresher(store, cfg.RefreshInterval, cfg.RefreshLead, gw.TokenExpiry)
	go refresher.Run(ctx)

	// Initialize handlers
	v := validation.New()
	authHandler := handler.NewAuthHandler(store, v)
	sessionHandler := handler.NewSessionHandler(store)
	userHandler := handler.NewUserHandler(store)
	addressHandler := handler.NewAddressHandler(gw, v)
	healthHandler := handler.NewHealthHandler()

	// Setup Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	if otelCfg.Enabled {
		e.Use(otelecho.Middleware(otelCfg.ServiceName))
	}

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			if v.Error == nil {
				slog.InfoContext(ctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				slog.ErrorContext(ctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))

	e.Use(middleware.Recover())
	e.Use(appmiddleware.SecurityHeaders())

	// Public routes
	loginLimiter := appmiddleware.NewLoginLimiter(cfg.LoginRatePerSec, cfg.LoginRateBurst)
	e.POST(handler.LoginPath, authHandler.Login, loginLimiter.Middleware())
	e.POST("/register", authHandler.Register)
	e.GET("/session", sessionHandler.Handle)
	e.GET("/healthz", healthHandler.Handle)

	// Protected routes behind the route guard
	guard := appmiddleware.Guard(store, handler.LoginPath)
	protected := e.Group("", guard)
	protected.GET("/dashboard", userHandler.Dashboard)
	protected.GET("/profile", userHandler.Profile)
	protected.GET("/addresses", addressHandler.List)
	protected.POST("/addresses", addressHandler.Create)
	protected.POST("/logout", authHandler.Logout)
	protected.POST("/refresh", authHandler.Refresh)

	// Start server
	address := fmt.Sprintf(":%s", cfg.Port)

	go func() {
		slog.InfoContext(ctx, "starting session-hub server", "address", address)
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "server failed to start", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited properly")
}

// runHealthcheck performs a health check against the local server
func runHealthcheck() error {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8090"
	}

	client := &http.Client{
		Timeout: 2 * time.Second,
	}

	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%s/healthz", port))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status: %d", resp.StatusCode)
	}

	return nil
}
