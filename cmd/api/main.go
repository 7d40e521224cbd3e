package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"perfumeshop/internal/config"
	"perfumeshop/internal/handler"
	"perfumeshop/internal/infra/cache"
	"perfumeshop/internal/infra/db"
	"perfumeshop/internal/infra/logging"
	"perfumeshop/internal/infra/outbox"
	"perfumeshop/internal/infra/payment"
	infraRepo "perfumeshop/internal/infra/repository"
	"perfumeshop/internal/infra/token"
	"perfumeshop/internal/server"
	"perfumeshop/internal/usecase"
	"perfumeshop/internal/validator"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func main() {
	//.envは無くてもよい（本番は環境変数）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("api stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otel.SetTextMapPropagator(propagation.TraceContext{})

	//DB接続
	gormDB, err := db.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	catalogRepo := infraRepo.NewCatalogGormRepository(gormDB)
	cartRepo := infraRepo.NewCartLineGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderLineRepo := infraRepo.NewOrderLineGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	profileRepo := infraRepo.NewProfileGormRepository(gormDB)
	statsRepo := infraRepo.NewStatsGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//二重送信ガード（Redisが無ければ一意制約だけ）
	var guard usecase.CheckoutGuard = cache.NoopGuard{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		guard = cache.NewCheckoutGuard(rdb, cfg.CheckoutLockTTL)
	}

	var payments usecase.PaymentVerifier = payment.MockGateway{}
	if !cfg.PaymentMock {
		payments = payment.NewPaystackGateway(cfg.PaymentBaseURL, cfg.PaymentSecretKey, cfg.PaymentHTTPTimeout)
	} else {
		log.Warn("payment verification is mocked")
	}

	jwtIssuer := token.NewJWT(cfg.JWTSecret, cfg.AccessTTL)
	checkoutValidator := validator.NewCheckoutValidator()

	//Usecase生成
	authUC := usecase.NewAuthUsecase(userRepo, auditRepo, jwtIssuer, validator.NewAuthValidator(userRepo))
	catalogUC := usecase.NewCatalogUsecase(productRepo, catalogRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(orderRepo, orderLineRepo)
	checkoutUC := usecase.NewCheckoutUsecase(usecase.CheckoutDeps{
		Tx:         txm,
		CartLines:  cartRepo,
		Orders:     orderRepo,
		OrderLines: orderLineRepo,
		Inventory:  inventoryRepo,
		Validator:  checkoutValidator,
		Payments:   payments,
		Guard:      guard,
		Currency:   cfg.PaymentCurrency,
		Log:        log,
	})
	profileUC := usecase.NewProfileUsecase(profileRepo, checkoutValidator)
	adminProductUC := usecase.NewAdminProductUsecase(txm, productRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, orderRepo, orderLineRepo, statsRepo, auditRepo)

	e := server.New(cfg, log)
	server.RegisterRoutes(e, server.Handlers{
		Auth:         handler.NewAuthHandler(authUC),
		Product:      handler.NewProductHandler(catalogUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC, checkoutUC),
		Profile:      handler.NewProfileHandler(profileUC),
		AdminProduct: handler.NewAdminProductHandler(adminProductUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		AdminUser:    handler.NewAdminUserHandler(authUC),
	}, jwtIssuer, userRepo)

	//outbox relay（Kafkaが無ければ積むだけ）
	if len(cfg.KafkaBrokers) > 0 {
		pool, err := db.ConnectPool(ctx, cfg.DSN())
		if err != nil {
			return err
		}
		defer pool.Close()

		writer := outbox.NewWriter(cfg.KafkaBrokers)
		defer writer.Close()

		relay := outbox.NewRelay(log, outbox.NewPgxStore(pool),
			outbox.NewDispatcher(log, writer, cfg.OutboxTopic),
			"api-"+uuid.NewString(), cfg.OutboxPollEvery)
		relayDone := make(chan struct{})
		go func() {
			defer close(relayDone)
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("outbox relay stopped", "err", err)
			}
		}()
		// pool と writer を閉じる前に送信中の Tick を終わらせる
		defer func() {
			stop()
			<-relayDone
		}()
	} else {
		log.Info("kafka brokers not configured, outbox relay disabled")
	}

	return server.Run(ctx, e, ":"+cfg.Port, log)
}
