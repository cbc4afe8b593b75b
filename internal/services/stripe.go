package services

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v80"
	checkoutsession "github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"github.com/stripe/stripe-go/v80/refund"
	"github.com/stripe/stripe-go/v80/webhook"

	"online-cinema/internal/config"
)

// StripeGateway implements PaymentGateway against the Stripe API
type StripeGateway struct {
	webhookSecret string
}

// NewStripeGateway creates a new Stripe-backed payment gateway
func NewStripeGateway(cfg config.StripeConfig) *StripeGateway {
	stripe.Key = cfg.SecretKey
	return &StripeGateway{webhookSecret: cfg.WebhookSecret}
}

// CreateIntent creates a payment intent for the given amount in cents
func (g *StripeGateway) CreateIntent(amount int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
	}
	for key, value := range metadata {
		params.AddMetadata(key, value)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, &GatewayError{Op: "create intent", Err: err}
	}

	return fromStripeIntent(pi), nil
}

// RetrieveIntent fetches the current state of a payment intent
func (g *StripeGateway) RetrieveIntent(id string) (*PaymentIntent, error) {
	pi, err := paymentintent.Get(id, nil)
	if err != nil {
		return nil, &GatewayError{Op: "retrieve intent", Err: err}
	}

	return fromStripeIntent(pi), nil
}

// CreateCheckoutSession opens a Stripe-hosted checkout page with one line
// per movie. The metadata is copied onto the underlying payment intent so
// the webhook flow sees the same keys as the direct intent flow.
func (g *StripeGateway) CreateCheckoutSession(items []CheckoutLineItem, currency string, metadata map[string]string, successURL, cancelURL string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: metadata,
		},
	}
	for _, item := range items {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(item.Amount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
			Quantity: stripe.Int64(1),
		})
	}
	for key, value := range metadata {
		params.AddMetadata(key, value)
	}

	cs, err := checkoutsession.New(params)
	if err != nil {
		return nil, &GatewayError{Op: "create checkout session", Err: err}
	}

	return &CheckoutSession{
		ID:       cs.ID,
		URL:      cs.URL,
		Amount:   cs.AmountTotal,
		Currency: currency,
		Metadata: metadata,
	}, nil
}

// CreateRefund refunds the given amount of a captured payment intent
func (g *StripeGateway) CreateRefund(externalPaymentID string, amount int64, reason string) (*RefundResult, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(externalPaymentID),
		Amount:        stripe.Int64(amount),
	}
	if reason != "" {
		params.Reason = stripe.String(reason)
	}

	ref, err := refund.New(params)
	if err != nil {
		return nil, &GatewayError{Op: "create refund", Err: err}
	}

	return &RefundResult{
		ID:     ref.ID,
		Amount: ref.Amount,
		Status: string(ref.Status),
		Reason: string(ref.Reason),
	}, nil
}

// ParseWebhookEvent verifies the Stripe signature and extracts the intent
// from the payload
func (g *StripeGateway) ParseWebhookEvent(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, &GatewayError{Op: "verify webhook", Err: err}
	}

	parsed := &WebhookEvent{Type: string(event.Type)}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded, stripe.EventTypePaymentIntentPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("failed to parse webhook intent: %w", err)
		}
		parsed.Intent = fromStripeIntent(&pi)
	case stripe.EventTypeCheckoutSessionCompleted:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("failed to parse webhook session: %w", err)
		}
		parsed.Intent = fromStripeSession(&cs)
	}

	return parsed, nil
}

// fromStripeSession projects a completed checkout session onto the intent
// view the payment service works with. An asynchronous payment method can
// complete the session before the money clears, so the status only reads
// succeeded once the session reports paid.
func fromStripeSession(cs *stripe.CheckoutSession) *PaymentIntent {
	intent := &PaymentIntent{
		Amount:   cs.AmountTotal,
		Currency: string(cs.Currency),
		Status:   IntentStatusProcessing,
		Metadata: cs.Metadata,
	}
	if cs.PaymentIntent != nil {
		intent.ID = cs.PaymentIntent.ID
	}
	if cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
		intent.Status = IntentStatusSucceeded
	}
	return intent
}

func fromStripeIntent(pi *stripe.PaymentIntent) *PaymentIntent {
	return &PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		Metadata:     pi.Metadata,
	}
}
