package services

import (
	"fmt"
	"log"
	"strconv"
	"sync"

	"online-cinema/internal/models"
	"online-cinema/internal/repositories"
)

// PaymentService handles the payment lifecycle: creating intents for
// pending orders, applying captured intents, and answering payment queries.
type PaymentService struct {
	orderRepo   OrderRepository
	paymentRepo PaymentRepository
	gateway     PaymentGateway
	emails      EmailSender
	currency    string

	// First-line webhook dedupe. The unique external_payment_id column
	// remains the authority; this only short-circuits obvious retries.
	mu        sync.Mutex
	processed map[string]struct{}
}

// PaymentRepository interface for payment data operations
type PaymentRepository interface {
	ApplyPayment(order *models.Order, externalPaymentID string, amount int64) (*models.Payment, error)
	GetByID(id int) (*models.Payment, error)
	GetSuccessfulByOrder(orderID int) (*models.Payment, error)
	MarkRefunded(paymentID, orderID int) error
	Search(filters repositories.PaymentSearchFilters) ([]*models.Payment, int, error)
}

// EmailSender interface for transactional notifications
type EmailSender interface {
	SendPaymentConfirmation(email string, order *models.Order, payment *models.Payment) error
	SendRefundNotification(email string, order *models.Order, amount int64) error
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	orderRepo OrderRepository,
	paymentRepo PaymentRepository,
	gateway PaymentGateway,
	emails EmailSender,
	currency string,
) *PaymentService {
	return &PaymentService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		gateway:     gateway,
		emails:      emails,
		currency:    currency,
		processed:   make(map[string]struct{}),
	}
}

// chargeableOrder loads an order and verifies it can still be charged by
// the given user. The amount is recomputed from the order items, never
// taken from the client, and a drifted total cache is repaired on the way.
func (s *PaymentService) chargeableOrder(orderID, userID int) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, models.ErrUnauthorized
	}

	switch {
	case order.IsPaid():
		return nil, models.ErrOrderPaid
	case order.IsCanceled():
		return nil, models.ErrOrderCanceled
	}

	if amount := order.ItemsTotal(); amount != order.TotalAmount {
		if err := s.orderRepo.UpdateTotalAmount(order.ID, amount); err != nil {
			return nil, fmt.Errorf("failed to reconcile order total: %w", err)
		}
	}

	return order, nil
}

func intentMetadata(order *models.Order, userEmail string) map[string]string {
	return map[string]string{
		MetadataOrderID: strconv.Itoa(order.ID),
		MetadataUserID:  strconv.Itoa(order.UserID),
		MetadataEmail:   userEmail,
	}
}

// CreateIntent opens a payment intent for a pending order
func (s *PaymentService) CreateIntent(orderID, userID int, userEmail string) (*PaymentIntent, error) {
	order, err := s.chargeableOrder(orderID, userID)
	if err != nil {
		return nil, err
	}

	return s.gateway.CreateIntent(order.ItemsTotal(), s.currency, intentMetadata(order, userEmail))
}

// CreateCheckoutSession opens a provider-hosted checkout page for a
// pending order, one line per movie. Fulfillment arrives by webhook when
// the session completes.
func (s *PaymentService) CreateCheckoutSession(orderID, userID int, userEmail, successURL, cancelURL string) (*CheckoutSession, error) {
	order, err := s.chargeableOrder(orderID, userID)
	if err != nil {
		return nil, err
	}

	items := make([]CheckoutLineItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, CheckoutLineItem{Name: item.MovieTitle, Amount: item.PriceAtOrder})
	}

	return s.gateway.CreateCheckoutSession(items, s.currency, intentMetadata(order, userEmail), successURL, cancelURL)
}

// ConfirmPayment applies a captured intent on behalf of the customer who
// just completed the gateway flow. Webhooks make this optional, but it
// removes the delivery delay from the happy path.
func (s *PaymentService) ConfirmPayment(userID int, intentID string) (*models.Payment, error) {
	intent, err := s.gateway.RetrieveIntent(intentID)
	if err != nil {
		return nil, err
	}

	if intent.Metadata[MetadataUserID] != strconv.Itoa(userID) {
		return nil, models.ErrUnauthorized
	}
	if intent.Status != IntentStatusSucceeded {
		return nil, fmt.Errorf("%w: payment has not been captured", models.ErrInvalidInput)
	}

	return s.applyIntent(intent)
}

// HandleWebhook verifies and applies a gateway notification. Retried or
// already-applied events acknowledge cleanly.
func (s *PaymentService) HandleWebhook(payload []byte, signature string) error {
	event, err := s.gateway.ParseWebhookEvent(payload, signature)
	if err != nil {
		return err
	}

	switch event.Type {
	case EventPaymentSucceeded, EventCheckoutCompleted:
		if event.Intent == nil {
			return fmt.Errorf("%w: event carries no intent", models.ErrInvalidInput)
		}
		if event.Intent.Status != IntentStatusSucceeded {
			// A session can complete before an asynchronous payment
			// method clears; the capture event follows later.
			log.Printf("Webhook: intent %s not captured yet", event.Intent.ID)
			return nil
		}
		_, err := s.applyIntent(event.Intent)
		if err == models.ErrDuplicateEntry || err == models.ErrOrderNotPending {
			log.Printf("Webhook: intent %s already applied", event.Intent.ID)
			return nil
		}
		return err
	case EventPaymentFailed:
		if event.Intent != nil {
			log.Printf("Webhook: intent %s failed, order stays pending", event.Intent.ID)
		}
		return nil
	default:
		log.Printf("Webhook: ignoring event type %s", event.Type)
		return nil
	}
}

// applyIntent turns a captured intent into a recorded payment. The order
// id comes from the intent metadata, and the captured amount has to match
// the order's item sum exactly.
func (s *PaymentService) applyIntent(intent *PaymentIntent) (*models.Payment, error) {
	orderID, err := strconv.Atoi(intent.Metadata[MetadataOrderID])
	if err != nil {
		return nil, fmt.Errorf("%w: intent %s carries no order id", models.ErrInvalidInput, intent.ID)
	}

	if !s.markProcessing(intent.ID) {
		return nil, models.ErrDuplicateEntry
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		s.unmark(intent.ID)
		return nil, err
	}

	if intent.Amount != order.ItemsTotal() {
		s.unmark(intent.ID)
		return nil, models.ErrAmountMismatch
	}

	payment, err := s.paymentRepo.ApplyPayment(order, intent.ID, intent.Amount)
	if err != nil {
		if err != models.ErrDuplicateEntry && err != models.ErrOrderNotPending {
			s.unmark(intent.ID)
		}
		return nil, err
	}

	if email := intent.Metadata[MetadataEmail]; email != "" {
		go func() {
			if err := s.emails.SendPaymentConfirmation(email, order, payment); err != nil {
				log.Printf("Failed to send payment confirmation for order %d: %v", order.ID, err)
			}
		}()
	}

	return payment, nil
}

func (s *PaymentService) markProcessing(intentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, seen := s.processed[intentID]; seen {
		return false
	}
	s.processed[intentID] = struct{}{}
	return true
}

func (s *PaymentService) unmark(intentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.processed, intentID)
}

// GetPayment returns a payment, restricted to its owner
func (s *PaymentService) GetPayment(paymentID, requestingUserID int) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	if payment.UserID != requestingUserID {
		return nil, models.ErrUnauthorized
	}

	return payment, nil
}

// ListUserPayments returns the user's payments, newest first
func (s *PaymentService) ListUserPayments(userID, limit, offset int) ([]*models.Payment, int, error) {
	return s.paymentRepo.Search(repositories.PaymentSearchFilters{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
}

// ListAllPayments returns payments across all users for admin views
func (s *PaymentService) ListAllPayments(filters repositories.PaymentSearchFilters) ([]*models.Payment, int, error) {
	return s.paymentRepo.Search(filters)
}
