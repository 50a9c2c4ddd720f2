package payments

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
)

// CheckoutClient creates a hosted payment session and returns its redirect URL.
type CheckoutClient interface {
	CreateCheckoutSession(ctx context.Context) (string, error)
}

// StripeClient sells exactly one thing: the Pro Plan monthly subscription.
// Subscription state reconciliation happens through Stripe webhooks, not here.
type StripeClient struct {
	frontendURL string
}

func NewStripe(secretKey, frontendURL string) *StripeClient {
	stripe.Key = secretKey
	return &StripeClient{frontendURL: frontendURL}
}

func (s *StripeClient) CreateCheckoutSession(ctx context.Context) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Params:             stripe.Params{Context: ctx},
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("Pro Plan"),
						Description: stripe.String("Monthly subscription"),
					},
					UnitAmount: stripe.Int64(999), // $9.99
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String(string(stripe.PriceRecurringIntervalMonth)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.frontendURL + "/payment/success"),
		CancelURL:  stripe.String(s.frontendURL + "/payment/cancel"),
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}
