package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"github.com/sethvargo/go-retry"
)

// sendMail is a seam for testing smtp.SendMail.
var sendMail = smtp.SendMail

// SMTPNotifier delivers confirmation links over SMTP. Transient delivery
// failures are retried with exponential backoff before being reported to
// the caller.
type SMTPNotifier struct {
	addr    string
	from    string
	baseURL string
}

// NewSMTPNotifier constructs a notifier sending through the SMTP server at
// addr (host:port), using from as the envelope sender and baseURL to build
// confirmation links.
func NewSMTPNotifier(addr, from, baseURL string) *SMTPNotifier {
	return &SMTPNotifier{addr: addr, from: from, baseURL: baseURL}
}

// SendConfirmationLink emails the confirmation link to the recipient,
// retrying up to three times on failure.
func (n *SMTPNotifier) SendConfirmationLink(ctx context.Context, email, token string) error {
	link := ConfirmationLink(n.baseURL, token)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Confirm your email\r\n\r\n"+
			"Please confirm your account by following the link below. "+
			"The link expires shortly after registration.\r\n%s\r\n",
		n.from, email, link))

	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := sendMail(n.addr, nil, n.from, []string{email}, msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sending confirmation mail: %w", err)
	}
	return nil
}
