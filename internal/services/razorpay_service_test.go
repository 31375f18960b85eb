package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	svc := NewRazorpayService("key", "secret", "whsec_test", "plan_pro", nil, nil, nil, nil)

	body := []byte(`{"event":"subscription.activated","payload":{}}`)
	valid := signBody("whsec_test", body)

	assert.True(t, svc.VerifyWebhookSignature(body, valid))
	assert.False(t, svc.VerifyWebhookSignature(body, "deadbeef"))
	assert.False(t, svc.VerifyWebhookSignature(body, ""))

	// Signature over a different body must not verify
	assert.False(t, svc.VerifyWebhookSignature([]byte(`{"event":"tampered"}`), valid))
}

func TestVerifyWebhookSignatureNoSecret(t *testing.T) {
	svc := NewRazorpayService("key", "secret", "", "plan_pro", nil, nil, nil, nil)

	body := []byte(`{}`)
	// Without a configured secret nothing verifies, not even an
	// empty-secret HMAC
	assert.False(t, svc.VerifyWebhookSignature(body, signBody("", body)))
}

func TestSubscriptionEntityShapes(t *testing.T) {
	// Standard webhook shape: payload.subscription.entity
	nested := map[string]interface{}{
		"subscription": map[string]interface{}{
			"entity": map[string]interface{}{"id": "sub_123"},
		},
	}
	entity := subscriptionEntity(nested)
	assert.Equal(t, "sub_123", entity["id"])

	// Some events omit the entity wrapper
	flat := map[string]interface{}{
		"subscription": map[string]interface{}{"id": "sub_456"},
	}
	entity = subscriptionEntity(flat)
	assert.Equal(t, "sub_456", entity["id"])

	assert.Nil(t, subscriptionEntity(map[string]interface{}{}))
}

func TestCreateCheckoutUnconfigured(t *testing.T) {
	svc := NewRazorpayService("", "", "", "", nil, nil, nil, nil)

	ctx := context.Background()

	_, err := svc.CreateCheckout(ctx, nil)
	assert.ErrorIs(t, err, ErrBillingNotConfigured)

	_, err = svc.GetPortal(ctx, 1)
	assert.ErrorIs(t, err, ErrBillingNotConfigured)
}
