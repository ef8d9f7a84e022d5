// internal/payment/stripe.go
package payment

import (
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/checkout/session"
	"github.com/stripe/stripe-go/v72/webhook"
)

type Config struct {
	SecretKey  string
	PublicKey  string
	WebhookKey string
	PriceID    string
}

type StripeClient struct {
	secretKey     string
	publicKey     string
	webhookSecret string
	priceID       string
}

func NewStripeClient(cfg Config) *StripeClient {
	// Set the secret key for backend operations
	stripe.Key = cfg.SecretKey

	return &StripeClient{
		secretKey:     cfg.SecretKey,
		publicKey:     cfg.PublicKey,
		webhookSecret: cfg.WebhookKey,
		priceID:       cfg.PriceID,
	}
}

func (s *StripeClient) GetWebhookSecret() string {
	return s.webhookSecret
}

func (s *StripeClient) GetPriceID() string {
	return s.priceID
}

// CreateCheckoutSession opens a one-off payment session for the premium
// subscription. The Telegram ID rides along as the client reference so
// the webhook can attribute the payment.
func (s *StripeClient) CreateCheckoutSession(telegramID int64, successURL, cancelURL string) (string, string, error) {
	if stripe.Key != s.secretKey {
		stripe.Key = s.secretKey
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{
			"card",
		}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
		ClientReferenceID: stripe.String(strconv.FormatInt(telegramID, 10)),
	}

	sess, err := session.New(params)
	if err != nil {
		return "", "", fmt.Errorf("failed to create checkout session: %v", err)
	}

	return sess.ID, sess.URL, nil
}

func (s *StripeClient) VerifyWebhookSignature(payload []byte, sig string, webhookSecret string) (stripe.Event, error) {
	if webhookSecret == "" {
		return stripe.Event{}, fmt.Errorf("webhook secret is not configured")
	}
	return webhook.ConstructEvent(payload, sig, webhookSecret)
}
