package handler

import (
	"context"
	"log/slog"
	"time"

	"receipts/internal/middleware"
	"receipts/internal/service"
	"receipts/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterDeps is everything the HTTP surface needs
type RouterDeps struct {
	Logger            *slog.Logger
	Registry          *prometheus.Registry
	CORSOrigins       []string
	StaticDir         string
	AuthService       service.AuthService
	ReceiptService    service.ReceiptService
	ArtifactService   service.ArtifactService
	StatisticsService service.StatisticsService
	Hub               *websocket.Hub
	PingDB            func(ctx context.Context) error
	Now               func() time.Time
}

// NewRouter assembles middleware and routes
func NewRouter(d RouterDeps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(d.Logger))

	if d.Registry != nil {
		router.Use(middleware.NewMetrics(d.Registry).Middleware())
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = d.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	if len(corsConfig.AllowOrigins) > 0 {
		router.Use(cors.New(corsConfig))
	}

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if d.StaticDir != "" {
		router.Static("/static", d.StaticDir)
	}

	if d.Hub != nil {
		router.GET("/ws", func(c *gin.Context) {
			websocket.ServeWs(d.Hub, d.AuthService, c)
		})
	}

	root := router.Group("")
	NewHealthHandler(d.PingDB).RegisterRoutes(root)
	NewAuthHandler(d.AuthService).RegisterRoutes(root)
	NewReceiptHandler(d.ReceiptService, d.ArtifactService, d.AuthService).RegisterRoutes(root)
	NewStatisticsHandler(d.StatisticsService, d.AuthService, d.Now).RegisterRoutes(root)

	return router
}
