package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/centimeapp/centime-backend/internal/config"
	"github.com/centimeapp/centime-backend/internal/handler"
	"github.com/centimeapp/centime-backend/internal/middleware"
	"github.com/centimeapp/centime-backend/internal/repository/postgres"
	"github.com/centimeapp/centime-backend/internal/repository/storage"
	"github.com/centimeapp/centime-backend/internal/service"
	"github.com/centimeapp/centime-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if !cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	expenseRepo := postgres.NewExpenseRepository(pool)
	vatPaymentRepo := postgres.NewVatPaymentRepository(pool)
	urssafPaymentRepo := postgres.NewUrssafPaymentRepository(pool)
	incomeTaxPaymentRepo := postgres.NewIncomeTaxPaymentRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)
	bracketRepo := postgres.NewTaxBracketRepository(pool)
	balanceRepo := postgres.NewAccountBalanceRepository(pool)

	// Receipt storage is optional: without S3 credentials the API runs
	// with uploads disabled.
	var receiptStorage storage.ReceiptRepository
	if cfg.S3.AccessKeyID != "" {
		s3Repo, err := storage.NewS3ReceiptRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize receipt storage")
		}
		receiptStorage = s3Repo
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Receipt storage enabled")
	} else {
		log.Warn().Msg("S3 credentials not set; receipt uploads disabled")
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, settingsRepo)
	invoiceService := service.NewInvoiceService(invoiceRepo)
	expenseService := service.NewExpenseService(expenseRepo)
	settingsService := service.NewSettingsService(settingsRepo)
	vatService := service.NewVatService(invoiceRepo, expenseRepo)
	vatPaymentService := service.NewVatPaymentService(vatPaymentRepo)
	urssafService := service.NewUrssafService(invoiceRepo, urssafPaymentRepo, settingsService)
	urssafPaymentService := service.NewUrssafPaymentService(urssafPaymentRepo)
	incomeTaxService := service.NewIncomeTaxService(invoiceRepo, bracketRepo, settingsService)
	incomeTaxPaymentService := service.NewIncomeTaxPaymentService(incomeTaxPaymentRepo)
	bracketService := service.NewBracketService(bracketRepo)
	balanceService := service.NewBalanceService(balanceRepo)
	availabilityService := service.NewAvailabilityService(
		balanceRepo, vatPaymentRepo, urssafPaymentRepo, incomeTaxPaymentRepo,
		vatService, urssafService, incomeTaxService, settingsService,
	)
	dashboardService := service.NewDashboardService(invoiceRepo, expenseRepo, urssafService, incomeTaxService)
	receiptService := service.NewReceiptService(invoiceRepo, expenseRepo, receiptStorage)

	// WebSocket hub for live entity updates
	hub := websocket.NewHub()
	invoiceService.SetEventPublisher(hub)
	expenseService.SetEventPublisher(hub)
	vatPaymentService.SetEventPublisher(hub)
	urssafPaymentService.SetEventPublisher(hub)
	incomeTaxPaymentService.SetEventPublisher(hub)
	settingsService.SetEventPublisher(hub)
	balanceService.SetEventPublisher(hub)

	// Create user provider adapter for auth middleware
	userProvider := &userProviderAdapter{authService: authService}

	// Initialize auth middleware
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience, userProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}

	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// WebSocket token validator shares the user lookup
	wsValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience, userProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create websocket validator")
	}

	// Initialize handlers
	handlers := handler.Handlers{
		Auth:             handler.NewAuthHandler(authService),
		Invoice:          handler.NewInvoiceHandler(invoiceService),
		Expense:          handler.NewExpenseHandler(expenseService),
		Vat:              handler.NewVatHandler(vatService),
		VatPayment:       handler.NewVatPaymentHandler(vatPaymentService),
		Urssaf:           handler.NewUrssafHandler(urssafService),
		UrssafPayment:    handler.NewUrssafPaymentHandler(urssafPaymentService),
		IncomeTax:        handler.NewIncomeTaxHandler(incomeTaxService),
		IncomeTaxPayment: handler.NewIncomeTaxPaymentHandler(incomeTaxPaymentService),
		Settings:         handler.NewSettingsHandler(settingsService),
		Bracket:          handler.NewBracketHandler(bracketService, incomeTaxService),
		Balance:          handler.NewBalanceHandler(balanceService),
		Dashboard:        handler.NewDashboardHandler(dashboardService, availabilityService),
		Receipt:          handler.NewReceiptHandler(receiptService),
		WebSocket:        handler.NewWebSocketHandler(hub, wsValidator, cfg.CORSOrigins),
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, handlers)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// userProviderAdapter adapts AuthService to middleware.UserProvider and
// websocket.UserLookup.
type userProviderAdapter struct {
	authService *service.AuthService
}

// ResolveUser implements middleware.UserProvider. The user row is created
// on first login, so every authenticated request resolves to an account.
func (a *userProviderAdapter) ResolveUser(auth0ID string, email string, name *string) (uuid.UUID, error) {
	if email == "" {
		// Tokens without an email claim can only resolve existing users
		user, err := a.authService.GetUserByAuth0ID(auth0ID)
		if err != nil {
			return uuid.Nil, err
		}
		return user.ID, nil
	}
	result, err := a.authService.AuthenticateUser(auth0ID, email, name)
	if err != nil {
		return uuid.Nil, err
	}
	return result.User.ID, nil
}

// GetUserIDByAuth0ID implements websocket.UserLookup
func (a *userProviderAdapter) GetUserIDByAuth0ID(auth0ID string) (uuid.UUID, error) {
	user, err := a.authService.GetUserByAuth0ID(auth0ID)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
