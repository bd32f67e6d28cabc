package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"authlink/config"
	"authlink/database"
	accountRepo "authlink/database/repository/account"
	"authlink/handlers"
	"authlink/middleware"
	"authlink/routes"
	"authlink/services/account"
	"authlink/services/auth"
	"authlink/services/gateway"
	"authlink/services/session"
	"authlink/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	cfg := config.AppConfig

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Account mirror, fed by the session cache.
	var accounts *account.DefaultAccountService
	if database.MongoClient != nil {
		repo, err := accountRepo.NewMongoAccountRepo(database.Database())
		if err != nil {
			logger.Fatal("Failed to initialize account repository", zap.Error(err))
		}
		accounts = account.NewDefaultAccountService(repo, logger.Named("account"), 256)
	} else {
		accounts = account.NewDefaultAccountService(nil, logger.Named("account"), 1)
	}
	go accounts.Run(ctx)

	// Session cache and the gateway that publishes into it.
	sessionStore := session.NewRedisStore(utils.GetSessionCacheClient(), utils.SessionCacheTTL)
	sessions := session.NewCache(sessionStore, logger.Named("session"))
	unsubscribe := sessions.Subscribe(accounts.Observe)
	defer unsubscribe()

	renewer, err := gateway.NewSecureToken(ctx, option.WithAPIKey(cfg.FirebaseAPIKey))
	if err != nil {
		logger.Fatal("failed to build token renewer", zap.Error(err))
	}
	gw := gateway.NewIdentityToolkit(
		utils.IdentityToolkit,
		utils.FirebaseAuth,
		renewer,
		sessions,
		cfg.FirebaseRequestURI,
		logger.Named("gateway"),
	)

	authService := &auth.DefaultAuthService{
		Gateway:          gw,
		Flows:            auth.NewRedisFlowStore(utils.GetFlowCacheClient(), cfg.PhoneFlowTTL),
		Tracker:          auth.NewTracker(),
		Throttle:         auth.NewOTPThrottle(cfg.OTPSendsPerHour),
		RejectConcurrent: cfg.AuthRejectConcurrent,
		Logger:           logger.Named("auth"),
	}

	utils.StartHealthMonitor(ctx,
		[]*redis.Client{utils.GetSessionCacheClient(), utils.GetFlowCacheClient()},
		database.MongoClient,
	)

	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLoggerMiddleware(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	handlerBundle := handlers.NewHandlerBundle(
		sessions,
		handlers.NewAuthHandler(authService, cfg.AppTokenTTL, cfg.RecaptchaTokenTTL),
		handlers.NewAccountHandler(accounts),
		handlers.HealthHandler(database.MongoClient != nil),
	)
	routes.RegisterRoutes(router, handlerBundle)

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}
	database.CloseDB(shutdownCtx)
	_ = logger.Sync()

	logger.Sugar().Info("main: server stopped gracefully")
}
