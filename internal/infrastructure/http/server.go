package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	handlers "github.com/lumenlabs/lumen-payments/internal/adapter/handler/http"
	"github.com/lumenlabs/lumen-payments/internal/config"
	domainProvider "github.com/lumenlabs/lumen-payments/internal/domain/provider"
	"github.com/lumenlabs/lumen-payments/internal/infrastructure/database"
	"github.com/lumenlabs/lumen-payments/internal/usecase"
)

type Server struct {
	config *config.Config
	logger *zap.Logger
	echo   *echo.Echo
	repos  *database.Repositories
	client domainProvider.PaymentClient
}

func NewServer(cfg *config.Config, logger *zap.Logger, repos *database.Repositories, client domainProvider.PaymentClient) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewRequestValidator()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.ClientURL},
		AllowMethods: []string{echo.GET, echo.POST},
	}))

	return &Server{
		config: cfg,
		logger: logger,
		echo:   e,
		repos:  repos,
		client: client,
	}
}

func (s *Server) Start() error {
	// Setup routes
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	// Usecases
	reconciler := usecase.NewReconcileService(s.repos.Entitlement, s.repos.EventLedger, s.logger)
	verify := usecase.NewVerifyService(s.client, reconciler, s.logger)
	usage := usecase.NewUsageService(s.repos.Entitlement, s.config.Usage.CostPerImage, s.logger)
	entitlements := usecase.NewEntitlementService(s.repos.Entitlement, s.logger)

	// Handlers
	webhookHandler := handlers.NewWebhookHandler(s.logger, s.client, reconciler)
	verifyHandler := handlers.NewVerifyHandler(s.logger, verify)
	statusHandler := handlers.NewStatusHandler(s.logger, entitlements)
	usageHandler := handlers.NewUsageHandler(s.logger, usage)
	checkoutHandler := handlers.NewCheckoutHandler(s.logger, s.client, s.config.Service.ClientURL)

	api := s.echo.Group("/api")

	api.POST("/webhooks", webhookHandler.HandleWebhook)
	api.POST("/verify-payment", verifyHandler.VerifyPayment)
	api.POST("/check-payment-status", statusHandler.CheckPaymentStatus)
	api.POST("/track-usage", usageHandler.TrackUsage)
	api.POST("/checkout", checkoutHandler.CreateCheckout)

	// Legacy unsigned ingress, off unless explicitly enabled.
	if s.config.Service.EnableUnsignedWebhook {
		paymentWebhookHandler := handlers.NewPaymentWebhookHandler(s.logger, reconciler)
		api.POST("/webhooks/payment", paymentWebhookHandler.HandleWebhook)
	}
}
