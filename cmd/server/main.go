package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"ontheway/internal/config"
	"ontheway/internal/devotional"
	"ontheway/internal/handlers"
	"ontheway/internal/logger"
	"ontheway/internal/repository"
	"ontheway/internal/security"
	"ontheway/internal/service"
)

const (
	stepStore      = "Database connection"
	stepDevotional = "Devotional provider"
	stepServices   = "Services"
)

func main() {
	var envFile, addr string

	root := &cobra.Command{
		Use:           "server",
		Short:         "On The Way reading plan API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnvFile(envFile); err != nil {
				return fmt.Errorf("failed to load env file: %w", err)
			}
			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			log, err := logger.New(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if addr == "" {
				addr = ":" + cfg.ServerPort
			}
			return run(ctx, cfg, addr, log)
		},
	}
	root.Flags().StringVar(&envFile, "env-file", "", "path to a .env file (default: ./.env when present)")
	root.Flags().StringVar(&addr, "addr", "", "listen address (default: :$PORT)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, addr string, log *zap.Logger) error {
	startup := handlers.NewStartupStatus(stepStore, stepDevotional, stepServices)
	checks := map[string]handlers.HealthCheck{}

	startup.SetCurrentStep(stepStore)
	store, err := repository.OpenStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()
	checks["store"] = store.Ping
	startup.CompleteStep(stepStore)
	log.Info("store ready", zap.String("type", cfg.DatabaseType))

	startup.SetCurrentStep(stepDevotional)
	devotionals, closeCache := newDevotionalService(ctx, cfg, store, checks, log)
	defer closeCache()
	startup.CompleteStep(stepDevotional)

	startup.SetCurrentStep(stepServices)
	loc := cfg.Location()
	tokens := security.NewTokenIssuer(cfg.TokenSecret)
	authService := service.NewAuthService(store, store, tokens, cfg.SessionDuration, cfg.PlanYear, cfg.AvatarMaxBytes, log)
	readings := service.NewReadingService(store, store, cfg.PlanYear, loc, log)

	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, log)
	if err != nil {
		log.Warn("reminder emails disabled", zap.Error(err))
		emailService, _ = service.NewEmailService(ctx, "", "", "", "", log)
	}
	reminders := service.NewReminderService(store, store, store, emailService, cfg.PlanYear, cfg.ReminderHour, loc, log)

	var googleProvider *handlers.OAuthProvider
	if cfg.GoogleOAuthEnabled() {
		googleProvider = &handlers.OAuthProvider{
			Name: "google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		}
	}

	router := handlers.NewRouter(handlers.Handlers{
		Middleware: handlers.NewMiddleware(authService, security.NewRateLimiter(cfg.RateLimitPerMinute), log),
		Auth:       handlers.NewAuthHandler(authService, googleProvider, cfg.OAuthRedirectBaseURL, security.NewStateSigner(cfg.TokenSecret), log),
		Profile:    handlers.NewProfileHandler(service.NewProfileService(store, store, cfg.AvatarMaxBytes), log),
		Plan:       handlers.NewPlanHandler(readings, log),
		Ranking:    handlers.NewRankingHandler(service.NewRankingService(store), log),
		Devotional: handlers.NewDevotionalHandler(devotionals, readings, log),
		Health:     handlers.NewHealthHandler(startup, checks, log),
	})
	startup.CompleteStep(stepServices)

	go cleanupExpiredSessions(ctx, authService, log)
	go reminders.Run(ctx, 15*time.Minute)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // devotional generation can take a while
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	startup.MarkReady()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// newDevotionalService layers Redis in front of the store when REDIS_ADDR is
// set. Without a Gemini key stored devotionals are still served.
func newDevotionalService(ctx context.Context, cfg *config.Config, store repository.Store,
	checks map[string]handlers.HealthCheck, log *zap.Logger) (*devotional.Service, func()) {
	closeFn := func() {}
	var cache devotional.Cache = devotional.NewStoreCache(store)

	if cfg.RedisAddr != "" {
		client := devotional.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		redisCache := devotional.NewRedisCache(client, cfg.RedisCacheTTL)
		cache = devotional.NewTieredCache(log, redisCache, cache)
		checks["redis"] = redisCache.Ping
		closeFn = func() { client.Close() }
		log.Info("devotional redis cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	var provider devotional.Provider
	if cfg.GeminiAPIKey != "" {
		p, err := devotional.NewGenAIProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.DevotionalLanguage)
		if err != nil {
			log.Warn("devotional provider disabled", zap.Error(err))
		} else {
			provider = p
		}
	} else {
		log.Info("devotional provider disabled: GEMINI_API_KEY not configured")
	}

	return devotional.NewService(provider, cache, log), closeFn
}

// cleanupExpiredSessions periodically removes expired sessions
func cleanupExpiredSessions(ctx context.Context, authService *service.AuthService, log *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := authService.CleanupExpiredSessions(ctx); err != nil {
				log.Error("failed to clean up expired sessions", zap.Error(err))
			}
		}
	}
}
