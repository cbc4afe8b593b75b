package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeGateway_IntentLifecycle(t *testing.T) {
	gateway := NewFakeGateway(testWebhookSecret)

	intent, err := gateway.CreateIntent(2298, "usd", map[string]string{MetadataOrderID: "1"})
	require.NoError(t, err)
	assert.Contains(t, intent.ID, "pi_test_")
	assert.Equal(t, IntentStatusRequiresPayment, intent.Status)

	confirmed, err := gateway.ConfirmIntent(intent.ID)
	require.NoError(t, err)
	assert.Equal(t, IntentStatusSucceeded, confirmed.Status)

	reloaded, err := gateway.RetrieveIntent(intent.ID)
	require.NoError(t, err)
	assert.Equal(t, IntentStatusSucceeded, reloaded.Status)
	assert.Equal(t, "1", reloaded.Metadata[MetadataOrderID])

	_, err = gateway.RetrieveIntent("pi_test_missing")
	var gwErr *GatewayError
	assert.ErrorAs(t, err, &gwErr)
}

func TestFakeGateway_RetrieveReturnsCopy(t *testing.T) {
	gateway := NewFakeGateway(testWebhookSecret)

	intent, err := gateway.CreateIntent(999, "usd", map[string]string{MetadataOrderID: "1"})
	require.NoError(t, err)

	intent.Metadata[MetadataOrderID] = "tampered"
	intent.Amount = 1

	reloaded, err := gateway.RetrieveIntent(intent.ID)
	require.NoError(t, err)
	assert.Equal(t, "1", reloaded.Metadata[MetadataOrderID])
	assert.Equal(t, int64(999), reloaded.Amount)
}

func TestFakeGateway_CheckoutSessions(t *testing.T) {
	gateway := NewFakeGateway(testWebhookSecret)

	items := []CheckoutLineItem{{Name: "Heat", Amount: 999}, {Name: "Ran", Amount: 1299}}
	session, err := gateway.CreateCheckoutSession(items, "usd", map[string]string{MetadataOrderID: "1"}, "https://a", "https://b")
	require.NoError(t, err)
	assert.Contains(t, session.ID, "cs_test_")
	assert.Contains(t, session.URL, session.ID)
	assert.Equal(t, int64(2298), session.Amount)

	intent, err := gateway.CompleteSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, IntentStatusSucceeded, intent.Status)
	assert.Equal(t, int64(2298), intent.Amount)
	assert.Equal(t, "1", intent.Metadata[MetadataOrderID])

	_, err = gateway.CompleteSession("cs_test_missing")
	var gwErr *GatewayError
	assert.ErrorAs(t, err, &gwErr)
}

func TestFakeGateway_Refunds(t *testing.T) {
	gateway := NewFakeGateway(testWebhookSecret)

	intent, err := gateway.CreateIntent(1000, "usd", nil)
	require.NoError(t, err)

	t.Run("uncaptured intent", func(t *testing.T) {
		_, err := gateway.CreateRefund(intent.ID, 1000, "")
		var gwErr *GatewayError
		assert.ErrorAs(t, err, &gwErr)
	})

	_, err = gateway.ConfirmIntent(intent.ID)
	require.NoError(t, err)

	t.Run("partial refunds accumulate", func(t *testing.T) {
		first, err := gateway.CreateRefund(intent.ID, 400, "duplicate")
		require.NoError(t, err)
		assert.Contains(t, first.ID, "re_test_")
		assert.Equal(t, "duplicate", first.Reason)

		_, err = gateway.CreateRefund(intent.ID, 600, "")
		require.NoError(t, err)

		_, err = gateway.CreateRefund(intent.ID, 1, "")
		var gwErr *GatewayError
		assert.ErrorAs(t, err, &gwErr, "refunds past the captured amount must fail")
	})
}

func TestFakeGateway_ParseWebhookEvent(t *testing.T) {
	gateway := NewFakeGateway(testWebhookSecret)

	intent, err := gateway.CreateIntent(999, "usd", nil)
	require.NoError(t, err)

	payload := []byte(`{"type":"payment_intent.succeeded","intent_id":"` + intent.ID + `"}`)

	event, err := gateway.ParseWebhookEvent(payload, testWebhookSecret)
	require.NoError(t, err)
	assert.Equal(t, EventPaymentSucceeded, event.Type)
	require.NotNil(t, event.Intent)
	assert.Equal(t, intent.ID, event.Intent.ID)

	_, err = gateway.ParseWebhookEvent(payload, "wrong")
	var gwErr *GatewayError
	assert.ErrorAs(t, err, &gwErr)
}
