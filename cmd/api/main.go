// Command api runs the KVANTUM site backend: the chat widget API, the
// consultation booking endpoints, auth, and the admin review surface.
package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/baitursagynbekov3-stack/Kvantum/internal/admin"
	"github.com/baitursagynbekov3-stack/Kvantum/internal/api/router"
	"github.com/baitursagynbekov3-stack/Kvantum/internal/auth"
	"github.com/baitursagynbekov3-stack/Kvantum/internal/bookings"
	"github.com/baitursagynbekov3-stack/Kvantum/internal/chat"
	appconfig "github.com/baitursagynbekov3-stack/Kvantum/internal/config"
	"github.com/baitursagynbekov3-stack/Kvantum/internal/notify"
	"github.com/baitursagynbekov3-stack/Kvantum/internal/payments"
	"github.com/baitursagynbekov3-stack/Kvantum/internal/webchat"
	"github.com/baitursagynbekov3-stack/Kvantum/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting kvantum API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient = redis.NewClient(opts)
		defer func() { _ = redisClient.Close() }()
	} else {
		logger.Warn("REDIS_ADDR not set, knowledge base served from built-in document")
	}

	// Chat pipeline.
	knowledge := chat.NewKnowledgeStore(redisClient, cfg.KnowledgeCacheTTL)
	cache := chat.NewSessionCache(cfg.SessionTTL, cfg.SessionCacheLimit, cfg.ChatHistoryTurns*2)
	chatStore := chat.NewStore(pool)

	var llm *chat.LLMResponder
	if cfg.GeminiAPIKey != "" {
		gemini, err := chat.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		defer func() { _ = gemini.Close() }()
		llm = chat.NewLLMResponder(gemini, knowledge, cfg.LLMTimeout, logger)
		logger.Info("llm responder enabled", "model", cfg.GeminiModelID)
	} else {
		logger.Warn("GEMINI_API_KEY not set, chat replies use the rule table only")
	}
	rules := chat.NewRuleResponder(knowledge)

	// Booking notifications.
	var sender notify.EmailSender
	if cfg.SendGridAPIKey != "" {
		sender = notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
	} else {
		sender = notify.NewStubEmailSender(logger)
	}
	notifySvc := notify.NewService(sender, cfg.NotifyEmail, cfg.PublicBaseURL, logger)

	bookingsRepo := bookings.NewRepository(pool)
	bookingsSvc := bookings.NewService(bookingsRepo, notifySvc, logger)

	chatSvc := chat.NewService(cache, chatStore, llm, rules, bookingsSvc, logger)

	authRepo := auth.NewRepository(pool)
	authSvc := auth.NewService(authRepo, cfg.JWTSecret, logger)

	paymentsRepo := payments.NewRepository(pool)
	paymentsSvc := payments.NewService(paymentsRepo, logger)

	routerCfg := &router.Config{
		Logger: logger,
		DB:     pool,

		ChatHandler:     chat.NewHandler(chatSvc, logger),
		WebchatHandler:  webchat.NewHandler(chatSvc, chatStore, logger),
		BookingsHandler: bookings.NewHandler(bookingsSvc, logger),
		NotifyHandler:   notify.NewHandler(notifySvc),
		AuthHandler:     auth.NewHandler(authSvc, logger),
		AuthService:     authSvc,
		PaymentsHandler: payments.NewHandler(paymentsSvc, logger),
		AdminHandler:    admin.NewHandler(authRepo, bookingsRepo, paymentsRepo, chatStore, knowledge, logger),

		AdminEmails:       cfg.AdminEmails,
		AllowDemoPayments: cfg.AllowDemoPayments,

		CORSAllowedOrigins: cfg.AllowedOrigins,
		ChatRatePerSecond:  cfg.ChatRatePerSecond,
		ChatRateBurst:      cfg.ChatRateBurst,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
