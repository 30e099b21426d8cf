package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"unitex/internal/config"
	"unitex/internal/db"
	"unitex/internal/email"
	apihttp "unitex/internal/http"
	"unitex/internal/metrics"
	"unitex/internal/repository"
	"unitex/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	var logger *zap.Logger
	if cfg.IsDevelopment() {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, leaderboard cache will fail open", zap.Error(err))
		}
		cancel()
	}
	leaderboard := service.NewRedisLeaderboardCache(redisClient, logger, cfg.LeaderboardCacheTTL())

	var emailSender email.Sender = email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
			UseTLS:   cfg.SMTPUseTLS,
		})
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}
	emailSender = email.NewLoggingSender(logger, emailSender)

	m := metrics.New()
	store := repository.NewPgStore(pool)
	jwtSvc := service.NewJWTService(cfg.JWTSecret, cfg.JWTTTL())
	ledger := service.NewXPLedger(logger, store, m)

	otpSvc := service.NewOTPService(logger, store, emailSender)
	userSvc := service.NewUserService(logger, store, ledger, jwtSvc, leaderboard)
	referralSvc := service.NewReferralService(logger, store, ledger, leaderboard)
	friendshipSvc := service.NewFriendshipService(logger, store)
	conversationSvc := service.NewConversationService(logger, store)
	vaultSvc := service.NewVaultService(store)

	router := apihttp.NewRouter(logger, apihttp.RouterDeps{
		Auth:      jwtSvc,
		Users:     apihttp.NewUserHandler(logger, otpSvc, userSvc),
		Friends:   apihttp.NewFriendHandler(logger, friendshipSvc),
		Messages:  apihttp.NewMessageHandler(logger, conversationSvc),
		Referrals: apihttp.NewReferralHandler(logger, referralSvc),
		Vault:     apihttp.NewVaultHandler(logger, vaultSvc),
		Health:    apihttp.NewHealthHandler(logger, pool),
		Metrics:   m,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}
