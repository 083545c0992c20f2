package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridTransport sends mail through the SendGrid API.
type SendGridTransport struct {
	client     *sendgrid.Client
	sender     string
	senderName string
}

// NewSendGridTransport creates a transport backed by the SendGrid v3 API.
func NewSendGridTransport(apiKey, sender, senderName string) *SendGridTransport {
	return &SendGridTransport{
		client:     sendgrid.NewSendClient(apiKey),
		sender:     sender,
		senderName: senderName,
	}
}

// Send delivers one HTML message. 4xx responses are classified as permanent
// bounces (invalid recipient class); 5xx and network errors stay transient
// so the retry queue reschedules them.
func (t *SendGridTransport) Send(ctx context.Context, to string, subject string, htmlBody string) (string, error) {
	from := mail.NewEmail(t.senderName, t.sender)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), "", htmlBody)

	resp, err := t.client.SendWithContext(ctx, message)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		apiErr := fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body)
		if resp.StatusCode < 500 {
			return "", Permanent(apiErr)
		}
		return "", apiErr
	}

	if ids := resp.Headers["X-Message-Id"]; len(ids) > 0 {
		return ids[0], nil
	}
	return "", nil
}
