package main

import (
	"puntoventa-be/internal/config"
	"puntoventa-be/internal/dashboard"
	"puntoventa-be/internal/db"
	"puntoventa-be/internal/handler"
	"puntoventa-be/internal/inventory"
	"puntoventa-be/internal/invoice"
	"puntoventa-be/internal/logger"
	"puntoventa-be/internal/merchant"
	"puntoventa-be/internal/numbering"
	"puntoventa-be/internal/order"
	"puntoventa-be/internal/payment"
	"puntoventa-be/internal/product"
	"puntoventa-be/internal/settlement"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	ledger := inventory.NewLedger()
	orderRepo := order.NewRepository(database, ledger)
	orderSvc := order.NewService(orderRepo, nil)

	paymentRepo := payment.NewRepository(database)
	gateway := payment.NewSimulatedGateway(cfg.CaptureDelay)

	numbers := numbering.NewAuthority(database, cfg.InvoicePrefix)
	invoiceRepo := invoice.NewRepository(database)
	renderer := invoice.NewHTTPRenderer(cfg.RendererURL)

	settlementSvc := settlement.NewService(
		orderRepo, paymentRepo, gateway, numbers, invoiceRepo, renderer,
		settlement.Config{
			CaptureTimeout: cfg.CaptureTimeout,
			StoreRetries:   cfg.SettleRetries,
			StoreBackoff:   cfg.SettleBackoff,
		},
		nil,
	)

	merchantRepo := merchant.NewRepository(database)
	merchantSvc := merchant.NewService(merchantRepo, cfg.JWTSecret)

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo)

	dashboardRepo := dashboard.NewRepository(database)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := handler.New(
		merchantSvc, productSvc, orderSvc, paymentRepo,
		settlementSvc, invoiceRepo, dashboardRepo, cfg.JWTSecret,
	)
	h.RegisterRoutes(router)

	logger.L().Info("server listening", zap.String("port", cfg.AppPort))
	if err := router.Run(":" + cfg.AppPort); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
