package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledgerly-backend/internal/auth"
	"ledgerly-backend/internal/cache"
	"ledgerly-backend/internal/config"
	"ledgerly-backend/internal/database"
	"ledgerly-backend/internal/db"
	"ledgerly-backend/internal/handlers"
	"ledgerly-backend/internal/health"
	h "ledgerly-backend/internal/http"
	"ledgerly-backend/internal/middleware"
	"ledgerly-backend/internal/monitoring"
	"ledgerly-backend/internal/repositories"
	"ledgerly-backend/internal/services"
)

// startOverdueSweeper periodically flips past-due sent invoices to
// overdue. Runs once at startup and then hourly.
func startOverdueSweeper(invoiceRepo *repositories.InvoiceRepository) {
	sweep := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		n, err := invoiceRepo.MarkOverdue(ctx)
		if err != nil {
			log.Printf("[Sweeper] overdue sweep failed: %v", err)
			return
		}
		if n > 0 {
			log.Printf("[Sweeper] marked %d invoices overdue", n)
		}
	}

	go func() {
		sweep()
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			sweep()
		}
	}()
}

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()

	if *port != 0 {
		cfg.Server.Port = *port
	}

	// Connect to PostgreSQL
	pool := db.Connect(cfg)
	defer pool.Close()

	// Initialize Redis cache (optional - graceful fallback if unavailable)
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (login will use bcrypt only)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}
	defer cache.Close()

	// Run database migrations
	log.Println("Running database migrations...")
	migrator := database.NewMigrator(pool)
	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := migrator.RunMigrations(migrateCtx); err != nil {
		cancelMigrate()
		log.Fatalf("Failed to run migrations: %v", err)
	}
	cancelMigrate()

	// Initialize health checker
	healthChecker := health.NewHealthChecker(pool)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(pool)
	clientRepo := repositories.NewClientRepository(pool)
	invoiceRepo := repositories.NewInvoiceRepository(pool)
	paymentRepo := repositories.NewPaymentRepository(pool)
	usageRepo := repositories.NewUsageRepository(pool)
	settingsRepo := repositories.NewSettingsRepository(pool)
	subscriptionRepo := repositories.NewSubscriptionRepository(pool)
	auditLogRepo := repositories.NewAuditLogRepository(pool)
	notificationRepo := repositories.NewNotificationRepository(pool)

	// Start monitoring server in background
	go monitoring.NewMonitoringServer(pool, invoiceRepo, cfg.Monitoring.Port).Start()

	// Initialize services
	auditService := services.NewAuditService(auditLogRepo)
	defer auditService.Close()
	notificationService := services.NewNotificationService(notificationRepo)
	defer notificationService.Close()

	totpService := services.NewTOTPService(userRepo)
	userService := services.NewUserService(userRepo, subscriptionRepo, jwtManager, totpService, auditService)
	clientService := services.NewClientService(clientRepo)
	settingsService := services.NewSettingsService(settingsRepo)
	paymentService := services.NewPaymentService(paymentRepo)
	invoiceService := services.NewInvoiceService(invoiceRepo, usageRepo, settingsService,
		paymentService, notificationService, auditService)
	razorpayService := services.NewRazorpayService(
		cfg.Razorpay.KeyID,
		cfg.Razorpay.KeySecret,
		cfg.Razorpay.WebhookSecret,
		cfg.Razorpay.ProPlanID,
		subscriptionRepo,
		userRepo,
		paymentService,
		notificationService,
	)
	pdfService := services.NewPDFService()
	archiveService := services.NewArchiveService(cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	totpHandler := handlers.NewTOTPHandler(totpService, userService, auditService)
	clientHandler := handlers.NewClientHandler(clientService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	settingsHandler := handlers.NewSettingsHandler(settingsService, auditService)
	billingHandler := handlers.NewBillingHandler(razorpayService)
	pdfHandler := handlers.NewPDFHandler(invoiceService, settingsService, pdfService, archiveService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	router := h.NewRouter(
		authHandler,
		totpHandler,
		clientHandler,
		invoiceHandler,
		paymentHandler,
		settingsHandler,
		billingHandler,
		pdfHandler,
		notificationHandler,
		healthHandler,
		authMiddleware,
	)

	// Wrap with panic recovery, metrics, and CORS
	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	// Start overdue invoice sweeper
	startOverdueSweeper(invoiceRepo)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
