package http

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ledgerly-backend/internal/handlers"
	"ledgerly-backend/internal/middleware"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	totpHandler *handlers.TOTPHandler,
	clientHandler *handlers.ClientHandler,
	invoiceHandler *handlers.InvoiceHandler,
	paymentHandler *handlers.PaymentHandler,
	settingsHandler *handlers.SettingsHandler,
	billingHandler *handlers.BillingHandler,
	pdfHandler *handlers.PDFHandler,
	notificationHandler *handlers.NotificationHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthHandler.Check).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Public auth routes
	r.HandleFunc("/api/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/auth/login/2fa", authHandler.LoginTOTP).Methods("POST")

	// Billing webhook authenticates via signature, not JWT
	r.HandleFunc("/api/billing/webhook", billingHandler.Webhook).Methods("POST")

	// Authenticated auth routes
	authAPI := r.PathPrefix("/api/auth").Subrouter()
	authAPI.Use(authMiddleware.Authenticate)
	authAPI.HandleFunc("/me", authHandler.Me).Methods("GET")
	authAPI.HandleFunc("/change-password", authHandler.ChangePassword).Methods("POST")
	authAPI.HandleFunc("/2fa/setup", totpHandler.Setup).Methods("POST")
	authAPI.HandleFunc("/2fa/verify", totpHandler.Verify).Methods("POST")
	authAPI.HandleFunc("/2fa/disable", totpHandler.Disable).Methods("POST")

	// Clients
	clientsAPI := r.PathPrefix("/api/clients").Subrouter()
	clientsAPI.Use(authMiddleware.Authenticate)
	clientsAPI.HandleFunc("", clientHandler.List).Methods("GET")
	clientsAPI.HandleFunc("", clientHandler.Create).Methods("POST")
	clientsAPI.HandleFunc("/{id}", clientHandler.Get).Methods("GET")
	clientsAPI.HandleFunc("/{id}", clientHandler.Update).Methods("PUT")
	clientsAPI.HandleFunc("/{id}", clientHandler.Delete).Methods("DELETE")

	// Invoices
	invoicesAPI := r.PathPrefix("/api/invoices").Subrouter()
	invoicesAPI.Use(authMiddleware.Authenticate)
	invoicesAPI.HandleFunc("", invoiceHandler.List).Methods("GET")
	invoicesAPI.HandleFunc("", invoiceHandler.Create).Methods("POST")
	invoicesAPI.HandleFunc("/{id}", invoiceHandler.Get).Methods("GET")
	invoicesAPI.HandleFunc("/{id}", invoiceHandler.Update).Methods("PUT")
	invoicesAPI.HandleFunc("/{id}", invoiceHandler.Delete).Methods("DELETE")
	invoicesAPI.HandleFunc("/{id}/recalculate", invoiceHandler.Recalculate).Methods("POST")
	invoicesAPI.HandleFunc("/{id}/duplicate", invoiceHandler.Duplicate).Methods("POST")
	invoicesAPI.HandleFunc("/{id}/send", invoiceHandler.Send).Methods("POST")
	invoicesAPI.HandleFunc("/{id}/status", invoiceHandler.UpdateStatus).Methods("PATCH")

	// Usage quota
	usageAPI := r.PathPrefix("/api/usage").Subrouter()
	usageAPI.Use(authMiddleware.Authenticate)
	usageAPI.HandleFunc("", invoiceHandler.Usage).Methods("GET")

	// Payments
	paymentsAPI := r.PathPrefix("/api/payments").Subrouter()
	paymentsAPI.Use(authMiddleware.Authenticate)
	paymentsAPI.HandleFunc("", paymentHandler.List).Methods("GET")

	// Settings
	settingsAPI := r.PathPrefix("/api/settings").Subrouter()
	settingsAPI.Use(authMiddleware.Authenticate)
	settingsAPI.HandleFunc("/invoice", settingsHandler.Get).Methods("GET")
	settingsAPI.HandleFunc("/invoice", settingsHandler.Update).Methods("PUT")
	settingsAPI.HandleFunc("/security-audit", settingsHandler.SecurityAudit).Methods("GET")

	// Billing
	billingAPI := r.PathPrefix("/api/billing").Subrouter()
	billingAPI.Use(authMiddleware.Authenticate)
	billingAPI.HandleFunc("/checkout", billingHandler.Checkout).Methods("POST")
	billingAPI.HandleFunc("/portal", billingHandler.Portal).Methods("POST")

	// PDF rendering
	pdfAPI := r.PathPrefix("/api/pdf").Subrouter()
	pdfAPI.Use(authMiddleware.Authenticate)
	pdfAPI.HandleFunc("/{id}", pdfHandler.Render).Methods("GET")

	// Notifications
	notificationsAPI := r.PathPrefix("/api/notifications").Subrouter()
	notificationsAPI.Use(authMiddleware.Authenticate)
	notificationsAPI.HandleFunc("", notificationHandler.List).Methods("GET")
	notificationsAPI.HandleFunc("/read-all", notificationHandler.MarkAllRead).Methods("POST")
	notificationsAPI.HandleFunc("/{id}/read", notificationHandler.MarkRead).Methods("POST")

	return r
}
