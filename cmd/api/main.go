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

	_ "receipts/api/swagger" // swagger docs
	"receipts/internal/auth"
	"receipts/internal/cache"
	"receipts/internal/config"
	"receipts/internal/database"
	"receipts/internal/events"
	"receipts/internal/handler"
	"receipts/internal/janitor"
	"receipts/internal/logging"
	"receipts/internal/receipt"
	"receipts/internal/repository"
	"receipts/internal/service"
	"receipts/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

// @title           Receipts API
// @version         1.0
// @description     Receipts backend: accounts, receipt calculation and printable artifacts.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("error").Error("config load failed", "error", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(cfg.DB.DSN())
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	log.Info("connected to PostgreSQL")

	// A missing Redis only disables the user cache.
	var userCache cache.Cache
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Warn("redis unavailable, user cache disabled", "addr", cfg.Redis.Addr, "error", err)
	} else {
		defer redisClient.Close()
		userCache = cache.NewRedisCache(redisClient)
	}

	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	var publisher events.Publisher = hub
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		publisher = events.Multi{hub, kp}
		log.Info("publishing receipt events to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, auth.WithTTLs(cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL))

	// Set up dependencies (Repository -> Service -> Handler)
	userRepo := repository.NewUserRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)
	statsRepo := repository.NewStatisticsRepository(db)
	txManager := repository.NewTransactionManager(db)

	authService := service.NewAuthService(userRepo, tokens, userCache, cfg.Redis.UserCacheTTL, log)
	receiptService := service.NewReceiptService(receiptRepo, txManager, publisher, time.Now, log)
	artifactService := service.NewArtifactService(
		receiptRepo,
		receipt.NewRenderer(receipt.WithSellerName(cfg.SellerName)),
		receipt.NewPNGEncoder(0),
		service.ArtifactConfig{
			TextDir:       cfg.TextArtifactDir,
			QRDir:         cfg.QRArtifactDir,
			PublicBaseURL: cfg.PublicBaseURL,
		},
		log,
	)
	statisticsService := service.NewStatisticsService(statsRepo)

	sweeper := janitor.New(cfg.TextArtifactDir, cfg.QRArtifactDir, cfg.JanitorGrace, log)
	if err := sweeper.Start(cfg.JanitorInterval); err != nil {
		log.Error("janitor start failed", "error", err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := handler.NewRouter(handler.RouterDeps{
		Logger:            log,
		Registry:          registry,
		CORSOrigins:       cfg.CORSOrigins,
		StaticDir:         cfg.StaticDir,
		AuthService:       authService,
		ReceiptService:    receiptService,
		ArtifactService:   artifactService,
		StatisticsService: statisticsService,
		Hub:               hub,
		PingDB: func(ctx context.Context) error {
			return database.Ping(ctx, db)
		},
		Now: time.Now,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	closeDB(db, log)
}

func closeDB(db *gorm.DB, log *slog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("database close failed", "error", err)
	}
}
