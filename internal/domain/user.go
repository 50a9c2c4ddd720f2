package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"

	RoleUser  = "user"
	RoleAdmin = "admin"

	PlanFree = "free"
	PlanPro  = "pro"

	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
	SubscriptionPastDue   = "past_due"
)

// Free tier limits, applied at account creation.
const (
	FreePostsLimit         = 10
	FreeAIGenerationsLimit = 30
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"    json:"id"`
	Email        string             `bson:"email"            json:"email"`
	Name         string             `bson:"name"             json:"name"`
	Avatar       string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Auth         AuthInfo           `bson:"auth"             json:"auth"`
	Subscription Subscription       `bson:"subscription"     json:"subscription"`
	Usage        Usage              `bson:"usage"            json:"usage"`
	Settings     Settings           `bson:"settings"         json:"settings"`
	Role         string             `bson:"role"             json:"role"` // "user" | "admin"
	CreatedAt    time.Time          `bson:"created_at"       json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"       json:"updated_at"`
	LastLogin    *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
}

// AuthInfo holds the identity's credentials. Exactly one of PasswordHash or
// GoogleID is set, depending on Provider. The OTP fields are reserved for an
// email verification flow that has no endpoint yet.
type AuthInfo struct {
	Provider      string     `bson:"provider"                json:"provider"` // "email" | "google"
	GoogleID      string     `bson:"google_id,omitempty"     json:"-"`        // Google sub
	PasswordHash  string     `bson:"password_hash,omitempty" json:"-"`
	EmailVerified bool       `bson:"email_verified"          json:"email_verified"`
	OTPCode       string     `bson:"otp_code,omitempty"      json:"-"`
	OTPExpires    *time.Time `bson:"otp_expires,omitempty"   json:"-"`
}

// Subscription is written only by billing webhooks, never by the auth flows.
type Subscription struct {
	Plan                 string     `bson:"plan"   json:"plan"`   // "free" | "pro"
	Status               string     `bson:"status" json:"status"` // "active" | "cancelled" | "past_due"
	StripeCustomerID     string     `bson:"stripe_customer_id,omitempty"     json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string     `bson:"stripe_subscription_id,omitempty" json:"stripe_subscription_id,omitempty"`
	CurrentPeriodStart   *time.Time `bson:"current_period_start,omitempty"   json:"current_period_start,omitempty"`
	CurrentPeriodEnd     *time.Time `bson:"current_period_end,omitempty"     json:"current_period_end,omitempty"`
}

type Usage struct {
	PostsThisMonth         int           `bson:"posts_this_month"          json:"posts_this_month"`
	PostsLimit             int           `bson:"posts_limit"               json:"posts_limit"`
	AIGenerationsThisMonth int           `bson:"ai_generations_this_month" json:"ai_generations_this_month"`
	AIGenerationsLimit     int           `bson:"ai_generations_limit"      json:"ai_generations_limit"`
	LastReset              time.Time     `bson:"last_reset"                json:"last_reset"`
	LifetimeStats          LifetimeStats `bson:"lifetime_stats"            json:"lifetime_stats"`
}

type LifetimeStats struct {
	TotalPosts         int `bson:"total_posts"          json:"total_posts"`
	TotalAIGenerations int `bson:"total_ai_generations" json:"total_ai_generations"`
}

type Settings struct {
	Timezone      string        `bson:"timezone"      json:"timezone"`
	Notifications Notifications `bson:"notifications" json:"notifications"`
}

type Notifications struct {
	EmailOnPostPublished bool `bson:"email_on_post_published" json:"email_on_post_published"`
	EmailOnPostFailed    bool `bson:"email_on_post_failed"    json:"email_on_post_failed"`
}

// NewUser builds an identity with the free-tier defaults. The caller fills in
// Auth before persisting.
func NewUser(email, name string) *User {
	now := time.Now().UTC()
	return &User{
		Email: email,
		Name:  name,
		Role:  RoleUser,
		Subscription: Subscription{
			Plan:   PlanFree,
			Status: SubscriptionActive,
		},
		Usage: Usage{
			PostsLimit:         FreePostsLimit,
			AIGenerationsLimit: FreeAIGenerationsLimit,
			LastReset:          now,
		},
		Settings: Settings{
			Timezone: "America/New_York",
			Notifications: Notifications{
				EmailOnPostPublished: true,
				EmailOnPostFailed:    true,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
