package notifier

import (
	"context"

	"github.com/avetisov/credkeeper/internal/logging"
)

// LogNotifier writes confirmation links to the log instead of sending
// mail. Used in development when no SMTP address is configured.
type LogNotifier struct {
	logger  logging.Logger
	baseURL string
}

// NewLogNotifier constructs a notifier that logs confirmation links.
func NewLogNotifier(logger logging.Logger, baseURL string) *LogNotifier {
	return &LogNotifier{logger: logger.With("module", "notifier"), baseURL: baseURL}
}

func (n *LogNotifier) SendConfirmationLink(ctx context.Context, email, token string) error {
	n.logger.Info(ctx, "confirmation link issued", "email", email, "link", ConfirmationLink(n.baseURL, token))
	return nil
}
