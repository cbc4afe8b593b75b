package services

import (
	"fmt"
	"log"

	"online-cinema/internal/models"
)

// RefundService reverses captured payments. Refunds are an admin
// operation: the refund at the gateway, the payment and order status
// flips, and the revocation of the purchase grants happen as one unit
// on our side.
type RefundService struct {
	orderRepo   OrderRepository
	paymentRepo PaymentRepository
	gateway     PaymentGateway
	emails      EmailSender
}

// NewRefundService creates a new refund service
func NewRefundService(
	orderRepo OrderRepository,
	paymentRepo PaymentRepository,
	gateway PaymentGateway,
	emails EmailSender,
) *RefundService {
	return &RefundService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		gateway:     gateway,
		emails:      emails,
	}
}

// RefundOrder refunds a paid order. A zero amount means a full refund;
// a partial amount still cancels the order and revokes the grants, it
// just returns less money. The reason is forwarded to the gateway, which
// may record it against the refund.
func (s *RefundService) RefundOrder(orderID int, amount int64, reason string) (*models.Payment, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	switch {
	case order.IsPending():
		return nil, models.ErrOrderNotPending
	case order.IsCanceled():
		return nil, models.ErrOrderCanceled
	}

	payment, err := s.paymentRepo.GetSuccessfulByOrder(orderID)
	if err != nil {
		if err == models.ErrPaymentNotFound {
			// A paid order always has a successful payment; this is data
			// corruption, not a caller mistake.
			return nil, fmt.Errorf("order %d is paid but has no successful payment: %w", orderID, err)
		}
		return nil, err
	}

	if amount == 0 {
		amount = payment.Amount
	}
	if amount < 0 || amount > payment.Amount {
		return nil, models.ErrRefundTooLarge
	}

	result, err := s.gateway.CreateRefund(payment.ExternalPaymentID, amount, reason)
	if err != nil {
		return nil, err
	}

	if err := s.paymentRepo.MarkRefunded(payment.ID, orderID); err != nil {
		// The money already moved at the gateway; surface the failure
		// loudly so the books get reconciled.
		return nil, fmt.Errorf("refund %s issued but not recorded: %w", result.ID, err)
	}

	// The customer is told what the gateway actually refunded, not what
	// was asked for.
	s.notify(payment, order, result.Amount)

	payment.Status = models.PaymentRefunded
	return payment, nil
}

func (s *RefundService) notify(payment *models.Payment, order *models.Order, amount int64) {
	intent, err := s.gateway.RetrieveIntent(payment.ExternalPaymentID)
	if err != nil {
		log.Printf("Refund: could not load intent %s for notification: %v", payment.ExternalPaymentID, err)
		return
	}

	email := intent.Metadata[MetadataEmail]
	if email == "" {
		return
	}

	go func() {
		if err := s.emails.SendRefundNotification(email, order, amount); err != nil {
			log.Printf("Failed to send refund notification for order %d: %v", order.ID, err)
		}
	}()
}
