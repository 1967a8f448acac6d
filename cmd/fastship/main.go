package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fastship/fastship/pkg/app/auth"
	appshipment "github.com/fastship/fastship/pkg/app/shipment"
	"github.com/fastship/fastship/pkg/config"
	handlers "github.com/fastship/fastship/pkg/handlers/http"
	"github.com/fastship/fastship/pkg/identity"
	"github.com/fastship/fastship/pkg/infra/database"
	"github.com/fastship/fastship/pkg/infra/jwt"
	infraLogger "github.com/fastship/fastship/pkg/infra/logger"
	"github.com/fastship/fastship/pkg/infra/repository"
	"github.com/fastship/fastship/pkg/infra/store"
	"github.com/fastship/fastship/pkg/middleware"
	"github.com/fastship/fastship/pkg/policy"
	"github.com/fastship/fastship/pkg/ratelimit"
	"github.com/fastship/fastship/pkg/respcache"
	"github.com/fastship/fastship/pkg/revocation"
	"github.com/fastship/fastship/pkg/server"
	"github.com/fastship/fastship/pkg/server/router"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger()

	cfg, err := config.Load("./config")
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.Security.JWTSecret == "" {
		logger.Fatal("security.jwt_secret is required")
	}

	db, err := database.NewDB(logger, &cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		logger.Fatalf("failed to run migrations: %v", err)
	}

	// Shared key-value store behind the admission pipeline.
	redisClient := store.NewRedisClient(store.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	storeClient := store.NewClient(
		redisClient,
		time.Duration(cfg.Admission.StoreTimeoutMS)*time.Millisecond,
		logger,
	)
	defer storeClient.Close()

	matcher, err := policy.NewMatcher(cfg.Admission)
	if err != nil {
		logger.Fatalf("invalid admission policies: %v", err)
	}
	failMode, err := revocation.ParseFailMode(cfg.Admission.RevocationFailMode)
	if err != nil {
		logger.Fatalf("invalid admission config: %v", err)
	}

	tokens := jwt.NewManager(cfg.Security.JWTSecret, nil)
	resolver := identity.NewResolver(tokens, cfg.Server.TrustProxyHeaders)
	limiter := ratelimit.NewLimiter(storeClient, logger, nil)
	responseCache := respcache.NewCache(storeClient, logger)
	revocations := revocation.NewRegistry(storeClient, failMode, logger, nil)

	// repository
	sellerRepository := repository.NewSellerRepository(db.DB)
	partnerRepository := repository.NewPartnerRepository(db.DB)
	shipmentRepository := repository.NewShipmentRepository(db.DB)

	// service
	tokenTTL := time.Duration(cfg.Security.TokenTTLMinutes) * time.Minute
	authService := auth.NewService(sellerRepository, partnerRepository, tokens, revocations, logger, tokenTTL)
	shipmentService := appshipment.NewService(shipmentRepository, partnerRepository, logger)

	middlewareTransport := &middleware.Transport{
		RequestLogger: middleware.NewRequestLoggerMiddleware(logger),
		PanicRecover:  middleware.NewPanicRecoverMiddleware(logger),
		Admission:     middleware.NewAdmissionMiddleware(matcher, resolver),
		RateLimit:     middleware.NewRateLimitMiddleware(logger, limiter),
		ResponseCache: middleware.NewResponseCacheMiddleware(logger, responseCache),
		Auth:          middleware.NewAuthMiddleware(logger, tokens, revocations),
	}

	logoutHandler := handlers.NewLogoutHandler(logger, authService)
	handlerTransport := handlers.HandlerTransport{
		HealthHandler: handlers.NewHealthHandler(),

		SellerSignupHandler: handlers.NewSellerSignupHandler(logger, authService),
		SellerTokenHandler:  handlers.NewSellerTokenHandler(logger, authService),
		SellerMeHandler:     handlers.NewSellerMeHandler(logger, sellerRepository),
		SellerLogoutHandler: logoutHandler,

		PartnerSignupHandler: handlers.NewPartnerSignupHandler(logger, authService),
		PartnerTokenHandler:  handlers.NewPartnerTokenHandler(logger, authService),
		PartnerLogoutHandler: logoutHandler,

		CreateShipmentHandler: handlers.NewCreateShipmentHandler(logger, shipmentService),
		GetShipmentHandler:    handlers.NewGetShipmentHandler(logger, shipmentService),
		UpdateShipmentHandler: handlers.NewUpdateShipmentHandler(logger, shipmentService),
		DeleteShipmentHandler: handlers.NewDeleteShipmentHandler(logger, shipmentService),
		TrackShipmentHandler:  handlers.NewTrackShipmentHandler(logger, shipmentService),
	}

	apiServer := server.NewAPIServer(cfg, logger, router.NewAPIRouter(middlewareTransport, handlerTransport))

	go func() {
		if err := apiServer.Run(); err != nil {
			logger.Fatalf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := apiServer.Shutdown(); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}
