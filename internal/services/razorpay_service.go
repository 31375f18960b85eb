package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"

	razorpay "github.com/razorpay/razorpay-go"

	"ledgerly-backend/internal/billing"
	"ledgerly-backend/internal/metrics"
	"ledgerly-backend/internal/models"
	"ledgerly-backend/internal/repositories"
)

var (
	ErrBillingNotConfigured = errors.New("billing is not configured")
	ErrAlreadySubscribed    = errors.New("subscription is already active")
)

// RazorpayService drives the pro plan subscription lifecycle. Plan
// changes only ever happen through verified webhook events, never from
// client-supplied state.
type RazorpayService struct {
	keyID         string
	keySecret     string
	webhookSecret string
	proPlanID     string

	subRepo    *repositories.SubscriptionRepository
	userRepo   *repositories.UserRepository
	paymentSvc *PaymentService
	notify     notifier
}

func NewRazorpayService(keyID, keySecret, webhookSecret, proPlanID string,
	subRepo *repositories.SubscriptionRepository, userRepo *repositories.UserRepository,
	paymentSvc *PaymentService, notify notifier) *RazorpayService {
	return &RazorpayService{
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		proPlanID:     proPlanID,
		subRepo:       subRepo,
		userRepo:      userRepo,
		paymentSvc:    paymentSvc,
		notify:        notify,
	}
}

func (s *RazorpayService) client() *razorpay.Client {
	if s.keyID == "" || s.keySecret == "" {
		return nil
	}
	return razorpay.NewClient(s.keyID, s.keySecret)
}

// CreateCheckout creates a Razorpay subscription for the pro plan and
// returns the hosted checkout link
func (s *RazorpayService) CreateCheckout(ctx context.Context, user *models.User) (*models.CheckoutResponse, error) {
	client := s.client()
	if client == nil || s.proPlanID == "" {
		return nil, ErrBillingNotConfigured
	}

	existing, err := s.subRepo.GetByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if existing.IsPro() {
		return nil, ErrAlreadySubscribed
	}

	data := map[string]interface{}{
		"plan_id":         s.proPlanID,
		"total_count":     12,
		"customer_notify": 1,
		"notes": map[string]interface{}{
			"user_id": fmt.Sprintf("%d", user.ID),
			"email":   user.Email,
		},
	}

	sub, err := client.Subscription.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	subID, _ := sub["id"].(string)
	shortURL, _ := sub["short_url"].(string)

	// Store the pending subscription; the plan flips to pro only when
	// the activation webhook arrives
	existing.UserID = user.ID
	existing.RazorpaySubscriptionID = subID
	if err := s.subRepo.Upsert(ctx, existing); err != nil {
		return nil, err
	}

	return &models.CheckoutResponse{
		SubscriptionID: subID,
		CheckoutURL:    shortURL,
		KeyID:          s.keyID,
	}, nil
}

// GetPortal returns the hosted management link for the user's
// subscription
func (s *RazorpayService) GetPortal(ctx context.Context, userID int) (*models.PortalResponse, error) {
	client := s.client()
	if client == nil {
		return nil, ErrBillingNotConfigured
	}

	sub, err := s.subRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub.RazorpaySubscriptionID == "" {
		return nil, errors.New("no subscription on record")
	}

	remote, err := client.Subscription.Fetch(sub.RazorpaySubscriptionID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscription: %w", err)
	}

	shortURL, _ := remote["short_url"].(string)
	return &models.PortalResponse{PortalURL: shortURL}, nil
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header
// against the raw body
func (s *RazorpayService) VerifyWebhookSignature(body []byte, signature string) bool {
	if s.webhookSecret == "" || signature == "" {
		return false
	}
	h := hmac.New(sha256.New, []byte(s.webhookSecret))
	h.Write(body)
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ProcessWebhook applies a verified webhook event
func (s *RazorpayService) ProcessWebhook(ctx context.Context, event string, payload map[string]interface{}) error {
	metrics.WebhookEventsTotal.WithLabelValues(event).Inc()

	switch event {
	case "subscription.activated":
		return s.handleSubscriptionActivated(ctx, payload)
	case "subscription.cancelled":
		return s.handleSubscriptionCancelled(ctx, payload)
	case "subscription.charged":
		return s.handleSubscriptionCharged(ctx, payload)
	default:
		log.Printf("[Razorpay] Unhandled webhook event: %s", event)
		return nil
	}
}

// subscriptionEntity digs the subscription entity out of the webhook
// payload shape
func subscriptionEntity(payload map[string]interface{}) map[string]interface{} {
	wrapper, ok := payload["subscription"].(map[string]interface{})
	if !ok {
		return nil
	}
	entity, ok := wrapper["entity"].(map[string]interface{})
	if !ok {
		return wrapper
	}
	return entity
}

func (s *RazorpayService) subscriptionFor(ctx context.Context, payload map[string]interface{}) (*models.Subscription, error) {
	entity := subscriptionEntity(payload)
	if entity == nil {
		return nil, errors.New("missing subscription entity in webhook")
	}
	subID, _ := entity["id"].(string)
	if subID == "" {
		return nil, errors.New("missing subscription id in webhook")
	}
	return s.subRepo.GetByRazorpaySubscription(ctx, subID)
}

func (s *RazorpayService) handleSubscriptionActivated(ctx context.Context, payload map[string]interface{}) error {
	sub, err := s.subscriptionFor(ctx, payload)
	if err != nil {
		return err
	}

	sub.Plan = models.PlanPro
	sub.Status = models.SubscriptionStatusActive
	if err := s.subRepo.Upsert(ctx, sub); err != nil {
		return err
	}
	if err := s.userRepo.UpdatePlan(ctx, sub.UserID, models.PlanPro); err != nil {
		return err
	}

	log.Printf("[Razorpay] user %d upgraded to pro", sub.UserID)
	return nil
}

func (s *RazorpayService) handleSubscriptionCancelled(ctx context.Context, payload map[string]interface{}) error {
	sub, err := s.subscriptionFor(ctx, payload)
	if err != nil {
		return err
	}

	sub.Plan = models.PlanFree
	sub.Status = models.SubscriptionStatusCanceled
	if err := s.subRepo.Upsert(ctx, sub); err != nil {
		return err
	}
	if err := s.userRepo.UpdatePlan(ctx, sub.UserID, models.PlanFree); err != nil {
		return err
	}

	log.Printf("[Razorpay] user %d downgraded to free", sub.UserID)
	return nil
}

func (s *RazorpayService) handleSubscriptionCharged(ctx context.Context, payload map[string]interface{}) error {
	sub, err := s.subscriptionFor(ctx, payload)
	if err != nil {
		return err
	}

	var amountCents int64
	currency := "INR"
	paymentID := ""
	if wrapper, ok := payload["payment"].(map[string]interface{}); ok {
		entity, ok := wrapper["entity"].(map[string]interface{})
		if !ok {
			entity = wrapper
		}
		// Razorpay reports amounts in the currency's smallest unit
		if amount, ok := entity["amount"].(float64); ok {
			amountCents = int64(amount)
		}
		if c, ok := entity["currency"].(string); ok {
			currency = c
		}
		paymentID, _ = entity["id"].(string)
	}

	if _, err := s.paymentSvc.RecordSubscriptionCharge(ctx, sub.UserID, amountCents, currency, paymentID); err != nil {
		return err
	}
	if s.notify != nil {
		s.notify.Push(sub.UserID, models.NotificationPaymentRecorded,
			"Payment recorded",
			fmt.Sprintf("Subscription charge of %s %s was received.",
				billing.FormatCents(amountCents), currency))
	}
	return nil
}
