package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// FakeGateway is an in-memory PaymentGateway for development and tests.
// It mimics the intent lifecycle of a real provider: intents are created
// in requires_payment_method and move to succeeded or canceled through
// the ConfirmIntent and FailIntent hooks.
type FakeGateway struct {
	mu            sync.Mutex
	intents       map[string]*PaymentIntent
	refunds       map[string]int64  // intent id -> refunded amount
	refundReasons map[string]string // intent id -> last refund reason
	sessions      map[string]string // session id -> intent id
	webhookSecret string
}

// NewFakeGateway creates a new in-memory payment gateway
func NewFakeGateway(webhookSecret string) *FakeGateway {
	return &FakeGateway{
		intents:       make(map[string]*PaymentIntent),
		refunds:       make(map[string]int64),
		refundReasons: make(map[string]string),
		sessions:      make(map[string]string),
		webhookSecret: webhookSecret,
	}
}

// CreateIntent creates a new fake payment intent
func (g *FakeGateway) CreateIntent(amount int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := "pi_test_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	intent := &PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret",
		Amount:       amount,
		Currency:     currency,
		Status:       IntentStatusRequiresPayment,
		Metadata:     metadata,
	}
	g.intents[id] = intent

	return copyIntent(intent), nil
}

// RetrieveIntent returns the current state of a fake intent
func (g *FakeGateway) RetrieveIntent(id string) (*PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	intent, ok := g.intents[id]
	if !ok {
		return nil, &GatewayError{Op: "retrieve intent", Err: fmt.Errorf("no such intent: %s", id)}
	}

	return copyIntent(intent), nil
}

// CreateCheckoutSession opens a fake hosted checkout backed by a fresh
// intent carrying the same metadata
func (g *FakeGateway) CreateCheckoutSession(items []CheckoutLineItem, currency string, metadata map[string]string, successURL, cancelURL string) (*CheckoutSession, error) {
	var amount int64
	for _, item := range items {
		amount += item.Amount
	}

	intent, err := g.CreateIntent(amount, currency, metadata)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	id := "cs_test_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	g.sessions[id] = intent.ID

	return &CheckoutSession{
		ID:       id,
		URL:      "https://checkout.example.com/pay/" + id,
		Amount:   amount,
		Currency: currency,
		Metadata: intent.Metadata,
	}, nil
}

// CompleteSession simulates the customer finishing hosted checkout. It
// returns the session's now-captured intent.
func (g *FakeGateway) CompleteSession(id string) (*PaymentIntent, error) {
	g.mu.Lock()
	intentID, ok := g.sessions[id]
	g.mu.Unlock()

	if !ok {
		return nil, &GatewayError{Op: "complete session", Err: fmt.Errorf("no such session: %s", id)}
	}
	return g.ConfirmIntent(intentID)
}

// CreateRefund records a refund against a succeeded intent
func (g *FakeGateway) CreateRefund(externalPaymentID string, amount int64, reason string) (*RefundResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	intent, ok := g.intents[externalPaymentID]
	if !ok {
		return nil, &GatewayError{Op: "create refund", Err: fmt.Errorf("no such intent: %s", externalPaymentID)}
	}
	if intent.Status != IntentStatusSucceeded {
		return nil, &GatewayError{Op: "create refund", Err: fmt.Errorf("intent %s is not captured", externalPaymentID)}
	}
	if g.refunds[externalPaymentID]+amount > intent.Amount {
		return nil, &GatewayError{Op: "create refund", Err: fmt.Errorf("refund exceeds captured amount")}
	}
	g.refunds[externalPaymentID] += amount
	g.refundReasons[externalPaymentID] = reason

	return &RefundResult{
		ID:     "re_test_" + strings.ReplaceAll(uuid.New().String(), "-", ""),
		Amount: amount,
		Status: "succeeded",
		Reason: reason,
	}, nil
}

type fakeWebhookPayload struct {
	Type     string `json:"type"`
	IntentID string `json:"intent_id"`
}

// ParseWebhookEvent accepts a JSON payload of {"type", "intent_id"} signed
// with the plain webhook secret
func (g *FakeGateway) ParseWebhookEvent(payload []byte, signature string) (*WebhookEvent, error) {
	if signature != g.webhookSecret {
		return nil, &GatewayError{Op: "verify webhook", Err: fmt.Errorf("signature mismatch")}
	}

	var body fakeWebhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	event := &WebhookEvent{Type: body.Type}
	if body.IntentID != "" {
		intent, err := g.RetrieveIntent(body.IntentID)
		if err != nil {
			return nil, err
		}
		event.Intent = intent
	}

	return event, nil
}

// ConfirmIntent simulates the customer completing the payment
func (g *FakeGateway) ConfirmIntent(id string) (*PaymentIntent, error) {
	return g.setStatus(id, IntentStatusSucceeded)
}

// FailIntent simulates the payment being declined
func (g *FakeGateway) FailIntent(id string) (*PaymentIntent, error) {
	return g.setStatus(id, IntentStatusCanceled)
}

func (g *FakeGateway) setStatus(id, status string) (*PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	intent, ok := g.intents[id]
	if !ok {
		return nil, &GatewayError{Op: "update intent", Err: fmt.Errorf("no such intent: %s", id)}
	}
	intent.Status = status

	return copyIntent(intent), nil
}

func copyIntent(intent *PaymentIntent) *PaymentIntent {
	out := *intent
	out.Metadata = make(map[string]string, len(intent.Metadata))
	for key, value := range intent.Metadata {
		out.Metadata[key] = value
	}
	return &out
}
