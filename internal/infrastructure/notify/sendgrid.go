package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/onlinestore/product-store/internal/core/domain"
)

const (
	defaultHost  = "https://api.sendgrid.com"
	mailEndpoint = "/v3/mail/send"
	senderName   = "Online Store"
)

// SendGridNotifier e-mails order notifications through the SendGrid v3 API.
type SendGridNotifier struct {
	apiKey string
	from   string
	host   string
}

// NewSendGridNotifier builds a notifier sending from the given address.
// An empty host targets the public SendGrid API.
func NewSendGridNotifier(apiKey, from, host string) *SendGridNotifier {
	if host == "" {
		host = defaultHost
	}
	return &SendGridNotifier{apiKey: apiKey, from: from, host: host}
}

func (s *SendGridNotifier) Notify(ctx context.Context, n domain.OrderNotification) error {
	subject, body := render(n)
	message := mail.NewSingleEmail(
		mail.NewEmail(senderName, s.from),
		subject,
		mail.NewEmail("", n.Email),
		body,
		"<p>"+body+"</p>",
	)

	req := sendgrid.GetRequest(s.apiKey, mailEndpoint, s.host)
	req.Method = "POST"
	req.Body = mail.GetRequestBody(message)

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: unexpected status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func render(n domain.OrderNotification) (subject, body string) {
	if n.Status == domain.OrderPending {
		return fmt.Sprintf("Order %s received", n.OrderNumber),
			fmt.Sprintf("Thanks for your order %s. Total: %.2f.", n.OrderNumber, n.Total)
	}
	return fmt.Sprintf("Order %s is %s", n.OrderNumber, n.Status),
		fmt.Sprintf("Your order %s is now %s.", n.OrderNumber, n.Status)
}
