package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/smtp"

	"online-cinema/internal/config"
	"online-cinema/internal/models"
)

// SMTPEmailService sends transactional emails over plain SMTP
type SMTPEmailService struct {
	config    config.EmailConfig
	templates map[string]*template.Template
}

// NewEmailService creates a new SMTP email service
func NewEmailService(cfg config.EmailConfig) *SMTPEmailService {
	service := &SMTPEmailService{
		config:    cfg,
		templates: make(map[string]*template.Template),
	}
	service.loadTemplates()
	return service
}

const paymentConfirmationTemplate = `
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>Thank you for your purchase!</h2>
	<p>Your payment for order #{{.OrderID}} has been received.</p>
	<table style="border-collapse: collapse;">
		{{range .Items}}
		<tr>
			<td style="padding: 4px 12px 4px 0;">{{.Title}}</td>
			<td style="padding: 4px 0;">${{.Price}}</td>
		</tr>
		{{end}}
	</table>
	<p><strong>Total: ${{.Total}}</strong></p>
	<p>The movies are now available in your library.</p>
</body>
</html>
`

const refundNotificationTemplate = `
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>Your refund has been processed</h2>
	<p>Order #{{.OrderID}} has been canceled and ${{.Amount}} is on its way back to your payment method.</p>
	<p>Access to the movies from this order has been removed.</p>
</body>
</html>
`

func (s *SMTPEmailService) loadTemplates() {
	for name, text := range map[string]string{
		"payment_confirmation": paymentConfirmationTemplate,
		"refund_notification":  refundNotificationTemplate,
	} {
		tmpl, err := template.New(name).Parse(text)
		if err != nil {
			log.Printf("Failed to parse email template %s: %v", name, err)
			continue
		}
		s.templates[name] = tmpl
	}
}

type paymentEmailItem struct {
	Title string
	Price string
}

// SendPaymentConfirmation emails the customer their purchase receipt
func (s *SMTPEmailService) SendPaymentConfirmation(email string, order *models.Order, payment *models.Payment) error {
	items := make([]paymentEmailItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, paymentEmailItem{
			Title: item.MovieTitle,
			Price: fmt.Sprintf("%.2f", float64(item.PriceAtOrder)/100),
		})
	}

	body, err := s.render("payment_confirmation", struct {
		OrderID int
		Items   []paymentEmailItem
		Total   string
	}{
		OrderID: order.ID,
		Items:   items,
		Total:   fmt.Sprintf("%.2f", float64(payment.Amount)/100),
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Your order #%d is complete", order.ID)
	return s.send(email, subject, body)
}

// SendRefundNotification emails the customer that their order was refunded
func (s *SMTPEmailService) SendRefundNotification(email string, order *models.Order, amount int64) error {
	body, err := s.render("refund_notification", struct {
		OrderID int
		Amount  string
	}{
		OrderID: order.ID,
		Amount:  fmt.Sprintf("%.2f", float64(amount)/100),
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Refund processed for order #%d", order.ID)
	return s.send(email, subject, body)
}

func (s *SMTPEmailService) render(name string, data interface{}) (string, error) {
	tmpl, ok := s.templates[name]
	if !ok {
		return "", fmt.Errorf("email template %s not loaded", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email %s: %w", name, err)
	}
	return buf.String(), nil
}

func (s *SMTPEmailService) send(to, subject, htmlBody string) error {
	// Without SMTP credentials, log instead of sending. Keeps local
	// development working against the real service wiring.
	if s.config.SMTPHost == "" {
		log.Printf("Email (not sent, SMTP unconfigured) to %s: %s", to, subject)
		return nil
	}

	from := fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		from, to, subject, htmlBody)

	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)
	auth := smtp.PlainAuth("", s.config.SMTPUser, s.config.SMTPPassword, s.config.SMTPHost)

	if err := smtp.SendMail(addr, auth, s.config.FromEmail, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
