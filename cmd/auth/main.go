package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auth/internal/config"
	"auth/internal/observability/logging"
	"auth/internal/observability/metrics"
	impl "auth/internal/service/impl"
	"auth/internal/sms"
	"auth/internal/store"
	httpx "auth/internal/transport/http"
	"auth/pkg/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: "auth",
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)
	logger.Info("starting service")

	metrics.MustRegister("auth")

	gdb, err := db.OpenGorm(db.Config{
		DSN:             cfg.DatabaseURL,
		LogSQL:          cfg.LogSQL,
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}
	st := store.New(gdb)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Migrate {
		if err := st.RunMigrations(ctx); err != nil {
			logger.Error("migrations failed", "error", err)
			os.Exit(1)
		}
	}

	ts := impl.NewTokenServiceHS256(impl.TokenConfig{
		Issuer:     cfg.Issuer,
		AccessTTL:  cfg.AccessTTL,
		SigningKey: []byte(cfg.SigningKey),
	})
	as := impl.NewAuthServiceImpl(st, cfg, sms.NewClient(cfg.SMSGatewayURL, cfg.SMSTimeout), ts)

	router := httpx.NewRouter(as, ts, st, httpx.Options{
		TrustProxy:  cfg.TrustProxy,
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   cfg.HTTPRateLimit,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}()

	slog.Info("auth service listening", "addr", srv.Addr, "issuer", cfg.Issuer)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("auth service stopped")
}
