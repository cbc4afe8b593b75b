package services

import "fmt"

// Payment intent statuses as reported by the gateway.
const (
	IntentStatusRequiresPayment = "requires_payment_method"
	IntentStatusProcessing      = "processing"
	IntentStatusSucceeded       = "succeeded"
	IntentStatusCanceled        = "canceled"
)

// Webhook event types the payment service reacts to.
const (
	EventPaymentSucceeded  = "payment_intent.succeeded"
	EventPaymentFailed     = "payment_intent.payment_failed"
	EventCheckoutCompleted = "checkout.session.completed"
)

// Metadata keys attached to every payment intent so webhook payloads can
// be tied back to the order that produced them.
const (
	MetadataOrderID = "order_id"
	MetadataUserID  = "user_id"
	MetadataEmail   = "user_email"
)

// PaymentIntent is the gateway-neutral view of a payment attempt.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       string
	Metadata     map[string]string
}

// CheckoutLineItem is one purchasable line on a hosted checkout page.
type CheckoutLineItem struct {
	Name   string
	Amount int64
}

// CheckoutSession is a provider-hosted payment page. The customer is
// redirected to URL and the provider reports the outcome by webhook.
type CheckoutSession struct {
	ID       string
	URL      string
	Amount   int64
	Currency string
	Metadata map[string]string
}

// RefundResult describes a refund issued at the gateway. Amount is what
// the provider reports as refunded, which is authoritative over whatever
// was requested.
type RefundResult struct {
	ID     string
	Amount int64
	Status string
	Reason string
}

// WebhookEvent is a verified, parsed gateway notification.
type WebhookEvent struct {
	Type   string
	Intent *PaymentIntent
}

// PaymentGateway abstracts the external payment provider
type PaymentGateway interface {
	CreateIntent(amount int64, currency string, metadata map[string]string) (*PaymentIntent, error)
	RetrieveIntent(id string) (*PaymentIntent, error)
	CreateCheckoutSession(items []CheckoutLineItem, currency string, metadata map[string]string, successURL, cancelURL string) (*CheckoutSession, error)
	CreateRefund(externalPaymentID string, amount int64, reason string) (*RefundResult, error)
	ParseWebhookEvent(payload []byte, signature string) (*WebhookEvent, error)
}

// GatewayError wraps a provider-side failure so handlers can distinguish
// it from local validation problems.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway %s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
