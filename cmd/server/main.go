package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/arvelez/debt-ledger/internal/config"
	"github.com/arvelez/debt-ledger/internal/database"
	"github.com/arvelez/debt-ledger/internal/handler"
	"github.com/arvelez/debt-ledger/internal/logger"
	"github.com/arvelez/debt-ledger/internal/middleware"
	"github.com/arvelez/debt-ledger/internal/queue"
	"github.com/arvelez/debt-ledger/internal/repository"
	"github.com/arvelez/debt-ledger/internal/router"
	"github.com/arvelez/debt-ledger/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real environments set vars directly

	cfg := config.Load()
	if err := logger.Init(cfg.Env); err != nil {
		log.Fatalf("logger init: %v", err)
	}
	zlog := logger.L()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		zlog.Fatal("database connect failed", zap.Error(err))
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		zlog.Warn("redis unavailable, rate limiting and response cache disabled")
	}

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	businesses := repository.NewBusinessRepo(db)
	memberships := repository.NewBusinessUserRepo(db)
	debtors := repository.NewDebtorRepo(db)
	debts := repository.NewDebtRepo(db)
	payments := repository.NewPaymentRepo(db)
	invitations := repository.NewInvitationRepo(db)

	// Services.
	publisher := queue.NewPublisher(queue.BrokerURL(), zlog)
	authSvc := service.NewAuthService(users, tokens, cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays, cfg.BcryptCost)
	userSvc := service.NewUserService(users, tokens, debtors, cfg.BcryptCost)
	businessSvc := service.NewBusinessService(businesses, memberships, users, cfg.DefaultCurrency)
	debtorSvc := service.NewDebtorService(debtors, users)
	debtSvc := service.NewDebtService(debts, debtors, payments, publisher)
	invitationSvc := service.NewInvitationService(invitations, businesses, debtors, cfg.InvitationTTLDays)

	// Background consumer mirrors recorded movements to logs/payments.log.
	go queue.StartPaymentConsumer(zlog)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())
	e.Use(logger.RequestLogger())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.Register(e, router.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Users:       handler.NewUserHandler(userSvc),
		Businesses:  handler.NewBusinessHandler(businessSvc),
		Members:     handler.NewMemberHandler(businessSvc),
		Debtors:     handler.NewDebtorHandler(debtorSvc, debtSvc),
		Debts:       handler.NewDebtHandler(debtSvc),
		Invitations: handler.NewInvitationHandler(invitationSvc),
	}, cfg.JWTSecret, memberships)

	addr := ":" + cfg.Port
	zlog.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
