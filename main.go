// main.go - Entry point for the marketplace backend server

package main // Declares the package name

import ( // Import required packages
	"context"   // Background worker lifetime
	"errors"    // Server shutdown check
	"net/http"  // HTTP server
	"os"        // Exit codes
	"os/signal" // Graceful shutdown
	"syscall"   // SIGTERM
	"time"      // Shutdown timeout

	"go-marketplace-backend/config"     // Project config management
	"go-marketplace-backend/database"   // Database connection and setup
	"go-marketplace-backend/handlers"   // HTTP handlers for API endpoints
	"go-marketplace-backend/identity"   // Identity provider webhook and API client
	"go-marketplace-backend/logger"     // Structured logging
	"go-marketplace-backend/metrics"    // Prometheus registry
	"go-marketplace-backend/middleware" // Authentication, RBAC, rate limiting
	"go-marketplace-backend/models"     // Roles
	"go-marketplace-backend/mqtt"       // MQTT change notifications
	"go-marketplace-backend/outbox"     // Role sync dispatcher

	"github.com/gin-gonic/gin" // Gin web framework
)

func main() { // Main function, program entry point
	// STEP 1: Load configuration and establish connections
	cfg, err := config.Load() // Load configuration (DB, identity provider, MQTT broker, session secret)
	if err != nil {
		logger.Error("config error", "err", err)
		os.Exit(1)
	}
	logger.Init(logger.Config{Level: cfg.LogLevel, JSON: cfg.LogJSON})

	if err := database.Connect(cfg); err != nil { // Connect to the database, migrate, seed admin
		logger.Error("DB connection error", "err", err)
		os.Exit(1)
	}
	if err := mqtt.Connect(cfg.MQTTBroker, cfg.MQTTClientID); err != nil { // Connect to the MQTT broker (optional)
		logger.Error("MQTT connection error", "err", err)
		os.Exit(1)
	}
	defer mqtt.Disconnect()

	verifier, err := identity.NewVerifier(cfg.WebhookSecret)
	if err != nil {
		logger.Error("webhook secret error", "err", err)
		os.Exit(1)
	}

	// STEP 2: Start the role sync dispatcher (background worker)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := outbox.NewDispatcher(database.DB,
		identity.NewClient(cfg.IdPAPIURL, cfg.IdPSecretKey, cfg.IdPTimeout),
		outbox.Options{MaxRetries: cfg.OutboxMaxAttempts, PollInterval: cfg.OutboxInterval, InlineTimeout: cfg.OutboxInlineTimeout},
	)
	go dispatcher.Run(ctx) // Retries pushes the request path left pending
	dispatcher.Notify()    // Drain whatever was left pending by the previous run

	// STEP 3: Create Gin router and configure routes
	r, err := setupRouter(cfg, handlers.NewUsers(verifier, dispatcher))
	if err != nil {
		logger.Error("router setup error", "err", err)
		os.Exit(1)
	}

	// STEP 4: Start the web server and stop on SIGINT/SIGTERM
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

// setupRouter - Registers every route on a new Gin engine
func setupRouter(cfg *config.Config, users *handlers.Users) (*gin.Engine, error) {
	r := gin.Default() // Create a new Gin router (logger + recovery)

	webhookLimit, err := middleware.RateLimit(cfg.WebhookRate)
	if err != nil {
		return nil, err
	}

	// Public routes (no authentication required)
	r.GET("/healthz", handlers.Health)                       // Liveness/readiness
	r.GET("/metrics", gin.WrapH(metrics.Handler()))          // Prometheus scrape
	r.POST("/api/webhooks", webhookLimit, users.Webhook)     // Identity provider events (signature-checked)
	r.GET("/api/categories", handlers.GetCategories)         // Catalog reads
	r.GET("/api/categories/:id", handlers.GetCategory)       //
	r.GET("/api/subcategories", handlers.GetSubCategories)   // ?limit=&random=
	r.GET("/api/subcategories/:id", handlers.GetSubCategory) //

	// Dashboard routes redirect instead of failing
	dash := r.Group("/dashboard", middleware.OptionalAuth(cfg.SessionSecret))
	{
		dash.GET("", handlers.Dashboard)
		dash.GET("/admin", handlers.AdminDashboard)
		dash.GET("/seller", handlers.SellerDashboard)
		dash.GET("/seller/stores/:url", handlers.SellerStoreDashboard)
	}

	// Admin routes (session + ADMIN role, re-read from the database on every request)
	admin := r.Group("/api/admin", middleware.AdminMiddleware(cfg.SessionSecret))
	{
		admin.POST("/categories", handlers.UpsertCategory)
		admin.PUT("/categories/:id", handlers.UpsertCategory)
		admin.DELETE("/categories/:id", handlers.DeleteCategory)
		admin.POST("/subcategories", handlers.UpsertSubCategory)
		admin.PUT("/subcategories/:id", handlers.UpsertSubCategory)
		admin.DELETE("/subcategories/:id", handlers.DeleteSubCategory)
		admin.GET("/users", users.ListUsers)
		admin.PUT("/users/:id/role", users.SetRole)
	}

	// Seller routes
	seller := r.Group("/api/seller", middleware.AuthMiddleware(cfg.SessionSecret), middleware.RequireRole(models.RoleSeller))
	{
		seller.GET("/stores", handlers.GetSellerStores)
		seller.POST("/stores", handlers.UpsertStore)
		seller.PUT("/stores/:id", handlers.UpsertStore)
	}

	return r, nil
}
