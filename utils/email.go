// utils/email.go
package utils

import (
	"fmt"
	"html"
	"log"
	"strings"
	"sync"

	"github.com/keighl/postmark"

	"chocobliss/models"
	"chocobliss/services"
)

type mailSender interface {
	SendEmail(email postmark.Email) (postmark.EmailResponse, error)
}

// EmailService handles sending emails using Postmark
type EmailService struct {
	client mailSender
	from   string
	wg     sync.WaitGroup
}

// NewEmailService returns nil when no API token is configured, which
// disables mail.
func NewEmailService(apiToken, from string) *EmailService {
	if apiToken == "" {
		return nil
	}
	return &EmailService{client: postmark.NewClient(apiToken, ""), from: from}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	_, err := es.client.SendEmail(postmark.Email{
		From:     es.from,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: stripTags(htmlContent),
		Tag:      "order",
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendOrderConfirmationEmail sends an order confirmation email to the customer
func (es *EmailService) SendOrderConfirmationEmail(order models.Order) error {
	method := "Online payment"
	if order.Payment.Provider == models.ProviderCOD {
		method = "Cash on delivery"
	}
	subject := "Your D's Choco Bliss order is confirmed"
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Thank you for your order (ID: %s).<br><br>Total Amount: <strong>₹%.2f</strong><br>Payment Method: <strong>%s</strong><br><br>We will let you know when it is on its way.",
		html.EscapeString(order.Customer.Name),
		order.ID.Hex(),
		order.TotalAmount,
		method,
	)
	return es.SendEmail(order.Customer.Email, subject, htmlContent)
}

// SendStatusEmail tells the customer their order moved to a new status.
func (es *EmailService) SendStatusEmail(order models.Order) error {
	subject := "Order update: " + string(order.Status)
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Your order (ID: %s) is now <strong>%s</strong>.",
		html.EscapeString(order.Customer.Name),
		order.ID.Hex(),
		html.EscapeString(string(order.Status)),
	)
	return es.SendEmail(order.Customer.Email, subject, htmlContent)
}

// OrderChanged mails the customer in the background. Failures are logged.
// A payment that lands on an already cancelled order is not confirmed.
func (es *EmailService) OrderChanged(ev services.OrderEvent) {
	var send func(models.Order) error
	switch ev.Type {
	case services.EventOrderPaid, services.EventOrderCOD:
		if ev.Order.Status == models.OrderCancelled {
			return
		}
		send = es.SendOrderConfirmationEmail
	case services.EventOrderStatusChange:
		send = es.SendStatusEmail
	default:
		return
	}
	if ev.Order.Customer.Email == "" {
		return
	}

	es.wg.Add(1)
	go func(o models.Order) {
		defer es.wg.Done()
		if err := send(o); err != nil {
			log.Printf("email order=%s event=%s: %v", o.ID.Hex(), ev.Type, err)
		}
	}(ev.Order)
}

// Wait blocks until queued mails have been handed to Postmark.
func (es *EmailService) Wait() { es.wg.Wait() }

func stripTags(s string) string {
	s = strings.ReplaceAll(s, "<br>", "\n")
	var b strings.Builder
	in := false
	for _, r := range s {
		switch {
		case r == '<':
			in = true
		case r == '>':
			in = false
		case !in:
			b.WriteRune(r)
		}
	}
	return html.UnescapeString(b.String())
}
