package services

import (
	"sync"

	"online-cinema/internal/models"
)

// MockEmailService records sent emails instead of delivering them
type MockEmailService struct {
	mu            sync.Mutex
	Confirmations []MockEmail
	Refunds       []MockEmail
	FailWith      error
}

// MockEmail is one recorded notification
type MockEmail struct {
	To      string
	OrderID int
	Amount  int64
}

// NewMockEmailService creates a new recording email service
func NewMockEmailService() *MockEmailService {
	return &MockEmailService{}
}

func (s *MockEmailService) SendPaymentConfirmation(email string, order *models.Order, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return s.FailWith
	}
	s.Confirmations = append(s.Confirmations, MockEmail{To: email, OrderID: order.ID, Amount: payment.Amount})
	return nil
}

func (s *MockEmailService) SendRefundNotification(email string, order *models.Order, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return s.FailWith
	}
	s.Refunds = append(s.Refunds, MockEmail{To: email, OrderID: order.ID, Amount: amount})
	return nil
}

// Sent reports recorded confirmations and refunds under the lock
func (s *MockEmailService) Sent() (confirmations, refunds []MockEmail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]MockEmail(nil), s.Confirmations...), append([]MockEmail(nil), s.Refunds...)
}
