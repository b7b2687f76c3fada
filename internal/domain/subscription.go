package domain

import "time"

// SubscriptionStatus is the billing state reported by the payment provider.
type SubscriptionStatus string

const (
	SubscriptionFree          SubscriptionStatus = "free"
	SubscriptionPremium       SubscriptionStatus = "premium"
	SubscriptionExpired       SubscriptionStatus = "expired"
	SubscriptionCancelled     SubscriptionStatus = "cancelled"
	SubscriptionPaymentFailed SubscriptionStatus = "payment_failed"
)

// Subscription is a user's current plan.
// ExpiresAt is nil for plans without an end (free).
type Subscription struct {
	UserID     string
	Status     SubscriptionStatus
	ExpiresAt  *time.Time
	ExternalID string
	UpdatedAt  time.Time
}

// EffectiveStatus reports the status as of now: a premium plan whose paid
// period has ended is expired even before the provider says so.
func (s Subscription) EffectiveStatus(now time.Time) SubscriptionStatus {
	if s.Status == "" {
		return SubscriptionFree
	}
	if s.Status == SubscriptionPremium && s.ExpiresAt != nil && now.After(*s.ExpiresAt) {
		return SubscriptionExpired
	}
	return s.Status
}

// Features lists what a plan unlocks.
type Features struct {
	CloudSync         bool `json:"cloudSync"`
	Sharing           bool `json:"sharing"`
	AdvancedAnalytics bool `json:"advancedAnalytics"`
	PrioritySupport   bool `json:"prioritySupport"`
}

// FeaturesFor returns the features unlocked by status. Only premium unlocks anything.
func FeaturesFor(status SubscriptionStatus) Features {
	on := status == SubscriptionPremium
	return Features{CloudSync: on, Sharing: on, AdvancedAnalytics: on, PrioritySupport: on}
}

// SubscriptionEventType names a billing change reported by the payment provider.
type SubscriptionEventType string

const (
	EventSubscriptionActivated     SubscriptionEventType = "subscription.activated"
	EventSubscriptionRenewed       SubscriptionEventType = "subscription.renewed"
	EventSubscriptionCancelled     SubscriptionEventType = "subscription.cancelled"
	EventSubscriptionExpired       SubscriptionEventType = "subscription.expired"
	EventSubscriptionPaymentFailed SubscriptionEventType = "subscription.payment_failed"
)

// SubscriptionEvent is one verified webhook delivery.
// CurrentPeriodEnd is zero when the provider did not send one.
type SubscriptionEvent struct {
	Type             SubscriptionEventType
	UserID           string
	SubscriptionID   string
	CurrentPeriodEnd time.Time
}

// Plan is a subscription as seen at one instant.
type Plan struct {
	Subscription Subscription
	Status       SubscriptionStatus
	Features     Features
}

// PlanOf evaluates sub as of now.
func PlanOf(sub Subscription, now time.Time) Plan {
	status := sub.EffectiveStatus(now)
	return Plan{Subscription: sub, Status: status, Features: FeaturesFor(status)}
}
