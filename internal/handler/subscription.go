package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkordes/citizenship-tracker/backend/internal/domain"
)

// SignatureHeader carries the hex HMAC-SHA256 of a webhook's raw body.
const SignatureHeader = "X-Webhook-Signature"

// SubscriptionResponse is the body of GET /subscription.
type SubscriptionResponse struct {
	Status    domain.SubscriptionStatus `json:"status"`
	ExpiresAt *time.Time                `json:"expiresAt,omitempty"`
	Features  domain.Features           `json:"features"`
}

// WebhookEvent is the body the payment provider posts.
// CurrentPeriodEnd is a Unix timestamp in seconds.
type WebhookEvent struct {
	Type             string `json:"type"`
	UserId           string `json:"userId"`
	SubscriptionId   string `json:"subscriptionId"`
	CurrentPeriodEnd int64  `json:"currentPeriodEnd"`
}

// WebhookAck acknowledges a delivery. Applied is false for event types that
// are received but not acted on.
type WebhookAck struct {
	Received bool `json:"received"`
	Applied  bool `json:"applied"`
}

// GetSubscription handles GET /subscription.
func (s *Server) GetSubscription(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	plan, err := s.subscriptions.Status(r.Context(), uid)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, SubscriptionResponse{
		Status:    plan.Status,
		ExpiresAt: plan.Subscription.ExpiresAt,
		Features:  plan.Features,
	})
}

// PostSubscriptionWebhook handles POST /webhooks/subscription. The request is
// authenticated by its signature, not by a bearer token.
func (s *Server) PostSubscriptionWebhook(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("payload_too_large", "request body too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", "could not read body"))
		return
	}
	if !validSignature(s.opts.WebhookSecret, raw, r.Header.Get(SignatureHeader)) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid_signature", "webhook signature verification failed"))
		return
	}

	var body WebhookEvent
	if err := json.Unmarshal(raw, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", "webhook body must be valid JSON"))
		return
	}

	ev := domain.SubscriptionEvent{
		Type:           domain.SubscriptionEventType(body.Type),
		UserID:         body.UserId,
		SubscriptionID: body.SubscriptionId,
	}
	if body.CurrentPeriodEnd > 0 {
		ev.CurrentPeriodEnd = time.Unix(body.CurrentPeriodEnd, 0).UTC()
	}

	applied, err := s.subscriptions.ApplyEvent(r.Context(), ev)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, WebhookAck{Received: true, Applied: applied})
}

// Sign returns the signature header value for body. The payment provider
// side and tests use it to produce valid deliveries.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func validSignature(secret, body []byte, header string) bool {
	if len(secret) == 0 || header == "" {
		return false
	}
	got, err := hex.DecodeString(strings.TrimSpace(header))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}
