// Package notifier delivers account-confirmation links to freshly
// registered users. Delivery transport is behind the Notifier interface so
// the activation workflow stays unaware of how mail leaves the process.
package notifier

import (
	"context"
	"fmt"
	"net/url"
)

// Notifier sends the confirmation link for a registration.
type Notifier interface {
	SendConfirmationLink(ctx context.Context, email, token string) error
}

// ConfirmationLink builds the public URL the recipient must visit to
// activate the account.
func ConfirmationLink(baseURL, token string) string {
	return fmt.Sprintf("%s/api/v1/registration/confirm?token=%s", baseURL, url.QueryEscape(token))
}
