package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"marketplace/internal/config"
	"marketplace/internal/handler"
	"marketplace/internal/infra/db"
	"marketplace/internal/infra/messaging"
	infraRepo "marketplace/internal/infra/repository"
	"marketplace/internal/infra/telemetry"
	"marketplace/internal/server"
	"marketplace/internal/usecase"
	"marketplace/internal/validator"
)

const serviceVersion = "0.1.0"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	//.envはあれば読む
	config.LoadDotEnv(".env", "../.env")
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//トレースは有効時のみ、メトリクスは常に/metricsで出す
	if cfg.OTelEnabled {
		shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.OTelEndpoint, cfg.ServiceName, serviceVersion)
		if err != nil {
			logger.Error("failed to init tracer", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() { _ = shutdownTracer(context.Background()) }()
	}
	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(cfg.ServiceName, serviceVersion)
	if err != nil {
		logger.Error("failed to init meter", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(context.Background()) }()

	//スキーマ
	if cfg.MigrateOnStart {
		if err := db.MigrateUp(cfg.DSN()); err != nil {
			logger.Error("failed to migrate", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	//DB接続
	gormDB, err := db.Connect(cfg.DSN(), logger)
	if err != nil {
		logger.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Error("failed to get sql db", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = sqlDB.Close() }()

	//Repository（GORM実装）
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	profileRepo := infraRepo.NewProfileGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//order.placedの送信先。brokers未設定なら送らない
	var publisher usecase.OrderEventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := messaging.NewProducer(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		defer func() { _ = producer.Close() }()
		publisher = producer
	}

	//Usecase
	issuer := usecase.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	directory := usecase.NewCustomerDirectory(userRepo, profileRepo)
	authUC := usecase.NewAuthUsecase(userRepo, txm, validator.NewAuthValidator(userRepo), issuer, logger)
	profileUC := usecase.NewProfileUsecase(userRepo, profileRepo, txm, issuer, logger)
	productUC := usecase.NewProductUsecase(productRepo, txm, logger)
	cartUC := usecase.NewCartUsecase(cartRepo, cartItemRepo, productRepo, logger)
	checkoutUC := usecase.NewCheckoutUsecase(txm, publisher, logger, cfg.CheckoutMaxAttempts)
	orderUC := usecase.NewOrderUsecase(orderRepo, orderItemRepo, txm, logger)

	//Handler
	handlers := server.Handlers{
		Auth:          handler.NewAuthHandler(authUC),
		Me:            handler.NewMeHandler(profileUC),
		Products:      handler.NewProductHandler(productUC),
		SellerProduct: handler.NewSellerProductHandler(productUC, directory),
		Cart:          handler.NewCartHandler(cartUC, checkoutUC, directory),
		Orders:        handler.NewOrderHandler(orderUC, directory),
		SellerOrders:  handler.NewSellerOrderHandler(orderUC, directory),
		Health:        handler.NewHealthHandler(sqlDB, metricsHandler),
	}

	e := server.New(cfg, logger, userRepo, handlers)
	if err := server.Start(ctx, ":"+cfg.Port, e, logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
