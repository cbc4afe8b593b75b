package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"online-cinema/internal/models"
)

const testWebhookSecret = "whsec_test"

func newPaymentFixture(orders ...*models.Order) (*PaymentService, *stubOrderRepo, *stubPaymentRepo, *FakeGateway, *MockEmailService) {
	orderRepo := newStubOrderRepo(orders...)
	paymentRepo := newStubPaymentRepo()
	gateway := NewFakeGateway(testWebhookSecret)
	emails := NewMockEmailService()
	service := NewPaymentService(orderRepo, paymentRepo, gateway, emails, "usd")
	return service, orderRepo, paymentRepo, gateway, emails
}

func TestPaymentService_CreateIntent(t *testing.T) {
	order := pendingOrder(1, 7, 999, 1299)
	service, _, _, _, _ := newPaymentFixture(order)

	intent, err := service.CreateIntent(1, 7, "viewer@example.com")
	require.NoError(t, err)

	assert.Equal(t, int64(2298), intent.Amount)
	assert.Equal(t, "usd", intent.Currency)
	assert.Equal(t, IntentStatusRequiresPayment, intent.Status)
	assert.Equal(t, "1", intent.Metadata[MetadataOrderID])
	assert.Equal(t, "7", intent.Metadata[MetadataUserID])
	assert.Equal(t, "viewer@example.com", intent.Metadata[MetadataEmail])
}

func TestPaymentService_CreateIntent_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		order   *models.Order
		userID  int
		wantErr error
	}{
		{
			name:    "foreign order",
			order:   pendingOrder(1, 7, 999),
			userID:  8,
			wantErr: models.ErrUnauthorized,
		},
		{
			name: "paid order",
			order: func() *models.Order {
				o := pendingOrder(1, 7, 999)
				o.Status = models.OrderPaid
				return o
			}(),
			userID:  7,
			wantErr: models.ErrOrderPaid,
		},
		{
			name: "canceled order",
			order: func() *models.Order {
				o := pendingOrder(1, 7, 999)
				o.Status = models.OrderCanceled
				return o
			}(),
			userID:  7,
			wantErr: models.ErrOrderCanceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, _, _, _ := newPaymentFixture(tt.order)
			_, err := service.CreateIntent(tt.order.ID, tt.userID, "viewer@example.com")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("missing order", func(t *testing.T) {
		service, _, _, _, _ := newPaymentFixture()
		_, err := service.CreateIntent(99, 7, "viewer@example.com")
		assert.ErrorIs(t, err, models.ErrOrderNotFound)
	})
}

func TestPaymentService_CreateIntent_RepairsTotalDrift(t *testing.T) {
	order := pendingOrder(1, 7, 999)
	order.TotalAmount = 1 // stale cache
	service, orderRepo, _, _, _ := newPaymentFixture(order)

	intent, err := service.CreateIntent(1, 7, "viewer@example.com")
	require.NoError(t, err)

	assert.Equal(t, int64(999), intent.Amount, "the quote must come from the items, not the cache")
	assert.Equal(t, []int64{999}, orderRepo.totalUpdates)
	assert.Equal(t, int64(999), order.TotalAmount)
}

func TestPaymentService_CreateCheckoutSession(t *testing.T) {
	order := pendingOrder(1, 7, 999, 1299)
	service, _, _, _, _ := newPaymentFixture(order)

	session, err := service.CreateCheckoutSession(1, 7, "viewer@example.com", "https://shop.example.com/thanks", "https://shop.example.com/cart")
	require.NoError(t, err)

	assert.Contains(t, session.ID, "cs_test_")
	assert.Equal(t, int64(2298), session.Amount)
	assert.Equal(t, "1", session.Metadata[MetadataOrderID])
	assert.Equal(t, "viewer@example.com", session.Metadata[MetadataEmail])

	t.Run("foreign order", func(t *testing.T) {
		_, err := service.CreateCheckoutSession(1, 8, "other@example.com", "https://a", "https://b")
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})

	t.Run("paid order", func(t *testing.T) {
		order.Status = models.OrderPaid
		defer func() { order.Status = models.OrderPending }()

		_, err := service.CreateCheckoutSession(1, 7, "viewer@example.com", "https://a", "https://b")
		assert.ErrorIs(t, err, models.ErrOrderPaid)
	})
}

func TestPaymentService_HandleWebhook_CheckoutCompleted(t *testing.T) {
	order := pendingOrder(1, 7, 999)
	service, _, paymentRepo, gateway, _ := newPaymentFixture(order)

	session, err := service.CreateCheckoutSession(1, 7, "viewer@example.com", "https://shop.example.com/thanks", "https://shop.example.com/cart")
	require.NoError(t, err)

	t.Run("session not paid yet", func(t *testing.T) {
		// The backing intent is still uncaptured, so the event must be
		// acknowledged without fulfilling the order.
		intent, err := gateway.RetrieveIntent(gateway.sessions[session.ID])
		require.NoError(t, err)

		require.NoError(t, service.HandleWebhook(webhookBody(t, EventCheckoutCompleted, intent.ID), testWebhookSecret))
		assert.Equal(t, models.OrderPending, order.Status)
		assert.Empty(t, paymentRepo.payments)
	})

	intent, err := gateway.CompleteSession(session.ID)
	require.NoError(t, err)

	require.NoError(t, service.HandleWebhook(webhookBody(t, EventCheckoutCompleted, intent.ID), testWebhookSecret))
	assert.Equal(t, models.OrderPaid, order.Status)
	require.Len(t, paymentRepo.payments, 1)
	assert.Equal(t, intent.ID, paymentRepo.payments[1].ExternalPaymentID)
}

func TestPaymentService_ConfirmPayment(t *testing.T) {
	order := pendingOrder(1, 7, 999)
	service, _, paymentRepo, gateway, emails := newPaymentFixture(order)

	intent, err := service.CreateIntent(1, 7, "viewer@example.com")
	require.NoError(t, err)
	_, err = gateway.ConfirmIntent(intent.ID)
	require.NoError(t, err)

	payment, err := service.ConfirmPayment(7, intent.ID)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentSuccessful, payment.Status)
	assert.Equal(t, intent.ID, payment.ExternalPaymentID)
	assert.Equal(t, models.OrderPaid, order.Status)
	assert.Len(t, paymentRepo.payments, 1)

	assert.Eventually(t, func() bool {
		confirmations, _ := emails.Sent()
		return len(confirmations) == 1 && confirmations[0].To == "viewer@example.com"
	}, time.Second, 10*time.Millisecond)
}

func TestPaymentService_ConfirmPayment_Rejections(t *testing.T) {
	order := pendingOrder(1, 7, 999)
	service, _, _, gateway, _ := newPaymentFixture(order)

	intent, err := service.CreateIntent(1, 7, "viewer@example.com")
	require.NoError(t, err)

	t.Run("not captured yet", func(t *testing.T) {
		_, err := service.ConfirmPayment(7, intent.ID)
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})

	_, err = gateway.ConfirmIntent(intent.ID)
	require.NoError(t, err)

	t.Run("wrong user", func(t *testing.T) {
		_, err := service.ConfirmPayment(8, intent.ID)
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})

	t.Run("unknown intent", func(t *testing.T) {
		_, err := service.ConfirmPayment(7, "pi_test_missing")
		var gwErr *GatewayError
		assert.ErrorAs(t, err, &gwErr)
	})
}

func TestPaymentService_ConfirmPayment_AmountMismatch(t *testing.T) {
	order := pendingOrder(1, 7, 999)
	service, _, paymentRepo, gateway, _ := newPaymentFixture(order)

	intent, err := service.CreateIntent(1, 7, "viewer@example.com")
	require.NoError(t, err)
	_, err = gateway.ConfirmIntent(intent.ID)
	require.NoError(t, err)

	// The order contents changed between intent creation and capture
	order.Items[0].PriceAtOrder = 1999

	_, err = service.ConfirmPayment(7, intent.ID)
	assert.ErrorIs(t, err, models.ErrAmountMismatch)
	assert.Empty(t, paymentRepo.payments)
	assert.Equal(t, models.OrderPending, order.Status)
}

func webhookBody(t *testing.T, eventType, intentID string) []byte {
	t.Helper()

	body, err := json.Marshal(map[string]string{"type": eventType, "intent_id": intentID})
	require.NoError(t, err)
	return body
}

func TestPaymentService_HandleWebhook(t *testing.T) {
	order := pendingOrder(1, 7, 999)
	service, _, paymentRepo, gateway, _ := newPaymentFixture(order)

	intent, err := service.CreateIntent(1, 7, "viewer@example.com")
	require.NoError(t, err)
	_, err = gateway.ConfirmIntent(intent.ID)
	require.NoError(t, err)

	payload := webhookBody(t, EventPaymentSucceeded, intent.ID)

	require.NoError(t, service.HandleWebhook(payload, testWebhookSecret))
	assert.Equal(t, models.OrderPaid, order.Status)
	assert.Len(t, paymentRepo.payments, 1)

	t.Run("replayed event acknowledges", func(t *testing.T) {
		require.NoError(t, service.HandleWebhook(payload, testWebhookSecret))
		assert.Len(t, paymentRepo.payments, 1, "a replay must not create a second payment")
	})

	t.Run("bad signature", func(t *testing.T) {
		err := service.HandleWebhook(payload, "wrong")
		var gwErr *GatewayError
		assert.ErrorAs(t, err, &gwErr)
	})
}

func TestPaymentService_HandleWebhook_FailureAndNoise(t *testing.T) {
	order := pendingOrder(1, 7, 999)
	service, _, paymentRepo, gateway, _ := newPaymentFixture(order)

	intent, err := service.CreateIntent(1, 7, "viewer@example.com")
	require.NoError(t, err)
	_, err = gateway.FailIntent(intent.ID)
	require.NoError(t, err)

	require.NoError(t, service.HandleWebhook(webhookBody(t, EventPaymentFailed, intent.ID), testWebhookSecret))
	assert.Equal(t, models.OrderPending, order.Status, "a failed payment leaves the order open")
	assert.Empty(t, paymentRepo.payments)

	require.NoError(t, service.HandleWebhook(webhookBody(t, "charge.updated", ""), testWebhookSecret))
}

func TestPaymentService_GetPayment(t *testing.T) {
	order := pendingOrder(1, 7, 999)
	service, _, paymentRepo, _, _ := newPaymentFixture(order)

	payment, err := paymentRepo.ApplyPayment(order, "pi_test_1", 999)
	require.NoError(t, err)

	got, err := service.GetPayment(payment.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, payment.ID, got.ID)

	_, err = service.GetPayment(payment.ID, 8)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = service.GetPayment(99, 7)
	assert.ErrorIs(t, err, models.ErrPaymentNotFound)
}

func TestPaymentService_ListUserPayments(t *testing.T) {
	first := pendingOrder(1, 7, 999)
	second := pendingOrder(2, 8, 1299)
	service, _, paymentRepo, _, _ := newPaymentFixture(first, second)

	_, err := paymentRepo.ApplyPayment(first, "pi_test_1", 999)
	require.NoError(t, err)
	_, err = paymentRepo.ApplyPayment(second, "pi_test_2", 1299)
	require.NoError(t, err)

	payments, total, err := service.ListUserPayments(7, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, payments, 1)
	assert.Equal(t, 1, payments[0].OrderID)
}
