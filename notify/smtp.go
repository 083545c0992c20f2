package notify

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// SMTPTransport sends mail through a plain SMTP relay.
type SMTPTransport struct {
	Host       string
	Port       string
	Sender     string
	SenderName string
	Password   string
}

// NewSMTPTransport creates a transport for the given relay credentials.
func NewSMTPTransport(host, port, sender, senderName, password string) *SMTPTransport {
	return &SMTPTransport{
		Host:       host,
		Port:       port,
		Sender:     sender,
		SenderName: senderName,
		Password:   password,
	}
}

// Send delivers one HTML message. net/smtp has no native cancellation, so
// the call runs in a goroutine and the wait is bounded by ctx; a timed-out
// send is compensated for by the retry queue, not cancelled mid-flight.
func (t *SMTPTransport) Send(ctx context.Context, to string, subject string, htmlBody string) (string, error) {
	// MIME basics
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: %s <%s>\r\n", t.SenderName, t.Sender)
	msg += fmt.Sprintf("To: %s\r\n", to)
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", t.Sender, t.Password, t.Host)
	addr := t.Host + ":" + t.Port

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, t.Sender, []string{to}, []byte(msg))
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Printf("[MAIL] SMTP send to %s failed: %v", to, err)
			if isPermanentSMTPError(err) {
				return "", Permanent(err)
			}
			return "", err
		}
		// SMTP offers no provider message id
		return "", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// isPermanentSMTPError classifies 5xx recipient rejections as bounces.
func isPermanentSMTPError(err error) bool {
	s := err.Error()
	for _, code := range []string{"550", "551", "553", "554"} {
		if strings.Contains(s, code) {
			return true
		}
	}
	return false
}
